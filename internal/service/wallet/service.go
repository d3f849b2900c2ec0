// Package wallet orchestrates the client-side session state: it consults the
// local guards, calls the ledger service, and on every confirmed response
// atomically replaces the cached wallet snapshot and republishes it.
package wallet

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"banner-earn-client/internal/cache"
	apperrors "banner-earn-client/internal/common/errors"
	"banner-earn-client/internal/common/logger"
	"banner-earn-client/internal/domain/session"
	"banner-earn-client/internal/metrics"
	"banner-earn-client/internal/tracker"
	"banner-earn-client/internal/withdraw"
)

// Ledger is the remote boundary the service talks to. Satisfied by
// *ledger.Client; tests substitute a fake.
type Ledger interface {
	FetchUser(ctx context.Context, email string) (*session.UserSession, error)
	Login(ctx context.Context, email, password string) (*session.UserSession, error)
	Register(ctx context.Context, name, email, phone, password string) (*session.UserSession, error)
	ClickBanner(ctx context.Context, email string) (*session.UserSession, error)
	Withdraw(ctx context.Context, req withdraw.Request) (*session.UserSession, error)
	Transactions(ctx context.Context, email string) ([]session.Transaction, error)
}

// Observer receives every snapshot replacement. A nil snapshot means the
// session ended.
type Observer func(*session.UserSession)

// ClickResult is the outcome of a banner click attempt.
type ClickResult struct {
	// Session is the current snapshot: the server-returned one on a grant,
	// the unchanged prior one on a local rejection.
	Session *session.UserSession

	// AlreadyClaimed is set when the tracker rejected the click locally.
	// This is an informational notice, not an error, and costs no round trip.
	AlreadyClaimed bool
}

// RestoreResult is the outcome of reloading a persisted session.
type RestoreResult struct {
	Session *session.UserSession

	// Stale is set when the cached snapshot could not be revalidated against
	// the ledger service and must not be treated as authoritative.
	Stale bool
}

// Service owns the current session snapshot. It is the single writer; every
// write replaces the whole object, never individual fields.
type Service struct {
	mu      sync.RWMutex
	current *session.UserSession

	ledger    Ledger
	sessions  *cache.SessionCache
	tracker   *tracker.Tracker
	observers []Observer
	log       zerolog.Logger
}

func New(ledger Ledger, sessions *cache.SessionCache, banners *tracker.Tracker) *Service {
	return &Service{
		ledger:   ledger,
		sessions: sessions,
		tracker:  banners,
		log:      logger.With("wallet"),
	}
}

// Subscribe registers an observer for snapshot replacements. Not safe to call
// concurrently with operations; wire observers during startup.
func (s *Service) Subscribe(obs Observer) {
	s.observers = append(s.observers, obs)
}

// Current returns a copy of the current snapshot, or nil when unauthenticated.
func (s *Service) Current() *session.UserSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Authenticated reports whether a session is active.
func (s *Service) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Restore reloads the persisted session and revalidates it against the
// ledger service. No persisted session yields an empty result, not an error.
// A network failure surfaces the cached snapshot marked stale.
func (s *Service) Restore(ctx context.Context) (RestoreResult, error) {
	cached, err := s.sessions.Load(ctx)
	if err != nil {
		return RestoreResult{}, err
	}
	if cached == nil {
		return RestoreResult{}, nil
	}

	fresh, err := s.ledger.FetchUser(ctx, cached.Email)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.IsNetwork() {
			s.log.Warn().Err(err).Str("email", cached.Email).
				Msg("Ledger unreachable; serving cached snapshot as stale")
			s.setCurrent(ctx, cached, false)
			return RestoreResult{Session: cached.Clone(), Stale: true}, nil
		}
		// The server no longer recognizes the session; drop the cache
		if clearErr := s.sessions.Clear(ctx); clearErr != nil {
			s.log.Warn().Err(clearErr).Msg("Failed to clear rejected session")
		}
		return RestoreResult{}, err
	}

	s.setCurrent(ctx, fresh, true)
	return RestoreResult{Session: fresh.Clone()}, nil
}

// Login authenticates against the ledger service and installs the returned
// session.
func (s *Service) Login(ctx context.Context, email, password string) (*session.UserSession, error) {
	fresh, err := s.ledger.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.setCurrent(ctx, fresh, true)
	s.log.Info().Str("email", fresh.Email).Msg("User logged in")
	return fresh.Clone(), nil
}

// Register creates an account (signup bonus applied server-side) and installs
// the returned session.
func (s *Service) Register(ctx context.Context, name, email, phone, password string) (*session.UserSession, error) {
	fresh, err := s.ledger.Register(ctx, name, email, phone, password)
	if err != nil {
		return nil, err
	}
	s.setCurrent(ctx, fresh, true)
	s.log.Info().Str("email", fresh.Email).Msg("User registered")
	return fresh.Clone(), nil
}

// ClickBanner claims the reward for bannerID. The tracker short-circuits
// duplicates locally; the tracker is marked only after the server confirms,
// so a failed round trip never leaves a false claimed state.
func (s *Service) ClickBanner(ctx context.Context, bannerID string) (ClickResult, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	if current == nil {
		return ClickResult{}, apperrors.NewUnauthenticatedError()
	}

	if !s.tracker.Eligible(bannerID) {
		metrics.BannerClicksRejected.WithLabelValues("local_duplicate").Inc()
		return ClickResult{Session: current.Clone(), AlreadyClaimed: true}, nil
	}

	fresh, err := s.ledger.ClickBanner(ctx, current.Email)
	if err != nil {
		metrics.BannerClicksRejected.WithLabelValues("remote").Inc()
		return ClickResult{}, err
	}

	s.tracker.MarkClaimed(bannerID)
	s.setCurrent(ctx, fresh, true)
	metrics.BannerClicksGranted.Inc()
	s.log.Info().Str("banner_id", bannerID).Float64("balance", fresh.WalletBalance).
		Msg("Banner reward granted")
	return ClickResult{Session: fresh.Clone()}, nil
}

// Withdraw validates the payout request locally, submits it, and installs the
// server-returned snapshot. Local rejections cost no round trip.
func (s *Service) Withdraw(ctx context.Context, req withdraw.Request) (*session.UserSession, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	if current == nil {
		return nil, apperrors.NewUnauthenticatedError()
	}

	req.Email = current.Email
	normalized, err := withdraw.Validate(req, current.WalletBalance)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			metrics.WithdrawalsRejected.WithLabelValues(string(appErr.Code)).Inc()
		}
		return nil, err
	}

	fresh, err := s.ledger.Withdraw(ctx, normalized)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			metrics.WithdrawalsRejected.WithLabelValues(string(appErr.Code)).Inc()
		}
		return nil, err
	}

	s.setCurrent(ctx, fresh, true)
	metrics.WithdrawalsSubmitted.Inc()
	s.log.Info().Float64("amount", normalized.Amount).Str("method", normalized.Method).
		Msg("Withdrawal submitted")
	return fresh.Clone(), nil
}

// Transactions fetches the user's history in server order.
func (s *Service) Transactions(ctx context.Context) ([]session.Transaction, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()
	if current == nil {
		return nil, apperrors.NewUnauthenticatedError()
	}
	return s.ledger.Transactions(ctx, current.Email)
}

// RefreshBanners clears the local claim state. The reset is client-only; the
// ledger service still rejects same-day duplicates, and that rejection is the
// source of truth.
func (s *Service) RefreshBanners() {
	s.tracker.Reset()
	s.log.Warn().Msg("Banner claim state reset locally; server-side duplicate rejection still applies")
}

// BannerClaimed reports whether bannerID is claimed for the current period.
func (s *Service) BannerClaimed(bannerID string) bool {
	return s.tracker.Claimed(bannerID)
}

// BannerStates returns the claimed flag per banner ID.
func (s *Service) BannerStates() map[string]bool {
	return s.tracker.States()
}

// Logout drops the in-memory session and the persisted cache.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.notify(nil)
	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	s.log.Info().Msg("User logged out")
	return nil
}

// setCurrent atomically replaces the snapshot with the server-returned object
// and republishes it. Cache write failures are logged, not fatal: the
// in-memory snapshot already holds the authoritative value.
func (s *Service) setCurrent(ctx context.Context, fresh *session.UserSession, persist bool) {
	cp := fresh.Clone()
	s.mu.Lock()
	s.current = cp
	s.mu.Unlock()

	if persist {
		if err := s.sessions.Save(ctx, cp); err != nil {
			s.log.Warn().Err(err).Msg("Failed to persist session snapshot")
		}
	}
	s.notify(cp)
}

func (s *Service) notify(snapshot *session.UserSession) {
	for _, obs := range s.observers {
		obs(snapshot.Clone())
	}
}
