package user

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"campus/internal/auth/models"
	"campus/pkg/platform/sentinel"
)

// InMemoryUserStore keeps users in process memory keyed by ID with an email index.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create inserts user. A second user with the same email yields sentinel.ErrConflict.
func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	key := models.NormalizeEmail(user.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	s.users[user.ID] = *user
	s.byEmail[key] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

// Update replaces the stored record for user.ID. The email index is not changed.
func (s *InMemoryUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.users[user.ID] = *user
	return nil
}

func (s *InMemoryUserStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}
