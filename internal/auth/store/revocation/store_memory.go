package revocation

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InMemoryTRL keeps revoked token IDs with their expiry in process memory.
type InMemoryTRL struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// Option configures an InMemoryTRL.
type Option func(*InMemoryTRL)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(t *InMemoryTRL) {
		if now != nil {
			t.now = now
		}
	}
}

func NewInMemoryTRL(opts ...Option) *InMemoryTRL {
	t := &InMemoryTRL{revoked: make(map[string]time.Time), now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *InMemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = t.now().Add(ttl)
	return nil
}

func (t *InMemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	expiresAt, ok := t.revoked[jti]
	if !ok {
		return false, nil
	}
	if !t.now().Before(expiresAt) {
		delete(t.revoked, jti)
		return false, nil
	}
	return true, nil
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	return nil
}
