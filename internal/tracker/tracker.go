// Package tracker guards banner click idempotency on the client. It is a
// fast-path optimization only: state lives in memory per process, and the
// ledger service independently rejects duplicate claims.
package tracker

import (
	"sync"
	"time"
)

// Tracker records which banners have had their reward claimed during the
// current eligibility period (one calendar day).
type Tracker struct {
	mu     sync.Mutex
	claims map[string]time.Time
	now    func() time.Time
}

func New() *Tracker {
	return &Tracker{
		claims: make(map[string]time.Time),
		now:    time.Now,
	}
}

// NewWithClock injects the clock, for tests exercising day boundaries.
func NewWithClock(now func() time.Time) *Tracker {
	t := New()
	t.now = now
	return t
}

// Eligible reports whether bannerID may be claimed: no recorded claim, or the
// last claim happened on an earlier calendar day.
func (t *Tracker) Eligible(bannerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	claimedAt, ok := t.claims[bannerID]
	if !ok {
		return true
	}
	return !sameDay(claimedAt, t.now())
}

// MarkClaimed records a confirmed reward grant. Callers must invoke this only
// after the ledger service confirms the reward, never optimistically.
func (t *Tracker) MarkClaimed(bannerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.claims[bannerID] = t.now()
}

// Reset clears all recorded claims. This is the client-only refresh action;
// the server's duplicate rejection still applies afterwards.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.claims = make(map[string]time.Time)
}

// Claimed reports whether bannerID is claimed for the current period.
func (t *Tracker) Claimed(bannerID string) bool {
	return !t.Eligible(bannerID)
}

// States returns the claimed flag per banner ID so rendering can be a pure
// function of tracker state.
func (t *Tracker) States() map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	states := make(map[string]bool, len(t.claims))
	now := t.now()
	for id, claimedAt := range t.claims {
		states[id] = sameDay(claimedAt, now)
	}
	return states
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
