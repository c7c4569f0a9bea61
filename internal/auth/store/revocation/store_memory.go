// Package revocation stores the JTIs of logged-out access tokens until the
// tokens would have expired anyway. REST auth and the websocket gate both
// consult it.
package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryTRL is a process-local token revocation list for single-instance
// and test deployments.
type InMemoryTRL struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // jti -> expiry
	clock   Clock
}

// InMemoryTRLOption configures an InMemoryTRL instance.
type InMemoryTRLOption func(*InMemoryTRL)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) InMemoryTRLOption {
	return func(trl *InMemoryTRL) {
		if clock != nil {
			trl.clock = clock
		}
	}
}

func NewInMemoryTRL(opts ...InMemoryTRLOption) *InMemoryTRL {
	trl := &InMemoryTRL{
		revoked: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(trl)
	}
	return trl
}

// RevokeToken adds a token to the revocation list with TTL.
func (t *InMemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if jti == "" {
		return nil
	}
	now := t.clock()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = now.Add(ttl)
	// opportunistic sweep keeps the map bounded by live tokens
	for k, exp := range t.revoked {
		if now.After(exp) {
			delete(t.revoked, k)
		}
	}
	return nil
}

// IsRevoked checks if a token is in the revocation list.
func (t *InMemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	exp, ok := t.revoked[jti]
	if !ok {
		return false, nil
	}
	return !t.clock().After(exp), nil
}
