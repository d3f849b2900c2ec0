// Package cache holds the durable session cache: a dumb key-value mirror of
// the authenticated identity and the last-known wallet snapshot. It performs
// no validation and is never treated as authoritative; the controller
// revalidates against the ledger service before trusting it.
package cache

import (
	"context"
	"encoding/json"
	"errors"

	apperrors "banner-earn-client/internal/common/errors"
	"banner-earn-client/internal/domain/session"
)

// ErrNotFound is returned by a Store when a key has no value.
var ErrNotFound = errors.New("cache: key not found")

// Store persists keyed entries across process restarts.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// The two entries mirror the original client's persisted state: the identity
// saved at login and the snapshot refreshed on every confirmed mutation.
const (
	keyIdentity = "session:identity"
	keySnapshot = "session:snapshot"
)

// SessionCache stores the user session on a Store backend.
type SessionCache struct {
	store Store
}

func NewSessionCache(store Store) *SessionCache {
	return &SessionCache{store: store}
}

// Save replaces both persisted entries with the given session.
func (c *SessionCache) Save(ctx context.Context, s *session.UserSession) error {
	b, err := json.Marshal(s)
	if err != nil {
		return apperrors.NewCacheError("marshal session", err)
	}
	if err := c.store.Put(ctx, keyIdentity, b); err != nil {
		return apperrors.NewCacheError("save identity", err)
	}
	if err := c.store.Put(ctx, keySnapshot, b); err != nil {
		return apperrors.NewCacheError("save snapshot", err)
	}
	return nil
}

// SaveSnapshot replaces only the wallet snapshot entry.
func (c *SessionCache) SaveSnapshot(ctx context.Context, s *session.UserSession) error {
	b, err := json.Marshal(s)
	if err != nil {
		return apperrors.NewCacheError("marshal session", err)
	}
	if err := c.store.Put(ctx, keySnapshot, b); err != nil {
		return apperrors.NewCacheError("save snapshot", err)
	}
	return nil
}

// Load returns the last saved session, preferring the snapshot entry over the
// identity entry. A missing session returns (nil, nil).
func (c *SessionCache) Load(ctx context.Context) (*session.UserSession, error) {
	for _, key := range []string{keySnapshot, keyIdentity} {
		b, err := c.store.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperrors.NewCacheError("load session", err)
		}
		var s session.UserSession
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, apperrors.NewCacheError("decode session", err)
		}
		if s.Email == "" {
			continue
		}
		return &s, nil
	}
	return nil, nil
}

// Clear removes both persisted entries.
func (c *SessionCache) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, keySnapshot); err != nil {
		return apperrors.NewCacheError("clear snapshot", err)
	}
	if err := c.store.Delete(ctx, keyIdentity); err != nil {
		return apperrors.NewCacheError("clear identity", err)
	}
	return nil
}

// Close releases the underlying store.
func (c *SessionCache) Close() error {
	return c.store.Close()
}
