package verification

import (
	"context"
	"sync"
	"time"

	"campus/internal/auth/models"
	"campus/pkg/platform/sentinel"
)

type key struct {
	email   string
	purpose models.Purpose
}

// InMemoryStore keeps pending codes in memory. Expired entries read as absent.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[key]models.Verification
	now     func() time.Time
}

// Option configures an InMemoryStore.
type Option func(*InMemoryStore)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewInMemory(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		entries: make(map[key]models.Verification),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func keyOf(email string, purpose models.Purpose) key {
	return key{email: models.NormalizeEmail(email), purpose: purpose}
}

// Save stores v, replacing any pending code for the same (email, purpose).
func (s *InMemoryStore) Save(_ context.Context, v *models.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[keyOf(v.Email, v.Purpose)] = *v
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, email string, purpose models.Purpose) (*models.Verification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyOf(email, purpose)
	v, ok := s.entries[k]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if v.IsExpired(s.now()) {
		delete(s.entries, k)
		return nil, sentinel.ErrNotFound
	}
	return &v, nil
}

// MarkVerified flags the pending code as confirmed without extending its expiry.
func (s *InMemoryStore) MarkVerified(_ context.Context, email string, purpose models.Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyOf(email, purpose)
	v, ok := s.entries[k]
	if !ok || v.IsExpired(s.now()) {
		return sentinel.ErrNotFound
	}
	v.Verified = true
	s.entries[k] = v
	return nil
}

// Delete removes the pending code. Deleting an absent code is not an error.
func (s *InMemoryStore) Delete(_ context.Context, email string, purpose models.Purpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, keyOf(email, purpose))
	return nil
}
