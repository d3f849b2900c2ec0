// Package notify manages user-facing notices. Each alert carries a
// cancellable dismissal timer, replacing the original UI's fire-and-forget
// timeout with an explicit handle.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level is the alert severity shown to the user.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Alert is a single notice.
type Alert struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type entry struct {
	alert Alert
	timer *time.Timer
}

// Center holds active alerts and auto-dismisses each after the configured
// TTL unless it is dismissed explicitly first.
type Center struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	closed  bool
}

func NewCenter(ttl time.Duration) *Center {
	return &Center{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

// Publish records a notice and schedules its dismissal.
func (c *Center) Publish(level Level, message string) Alert {
	alert := Alert{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return alert
	}

	c.entries[alert.ID] = &entry{
		alert: alert,
		timer: time.AfterFunc(c.ttl, func() { c.Dismiss(alert.ID) }),
	}
	return alert
}

// Dismiss cancels the timer and removes the alert. It reports whether the
// alert was still active.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(c.entries, id)
	return true
}

// Active returns the alerts not yet dismissed, oldest first.
func (c *Center) Active() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()

	alerts := make([]Alert, 0, len(c.entries))
	for _, e := range c.entries {
		alerts = append(alerts, e.alert)
	}
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.Before(alerts[j].CreatedAt)
	})
	return alerts
}

// Close stops all pending timers.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, e := range c.entries {
		e.timer.Stop()
		delete(c.entries, id)
	}
	c.closed = true
}
