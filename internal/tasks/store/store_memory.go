package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"campus/internal/tasks/models"
	"campus/pkg/platform/sentinel"
)

// InMemoryStore keeps tasks in process memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]models.Task
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{tasks: make(map[uuid.UUID]models.Task)}
}

func (s *InMemoryStore) Create(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.ID]; exists {
		return sentinel.ErrConflict
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, owner, id uuid.UUID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != owner {
		return nil, sentinel.ErrNotFound
	}
	return &t, nil
}

// ListByOwner returns the owner's tasks oldest first.
func (s *InMemoryStore) ListByOwner(_ context.Context, owner uuid.UUID) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Task, 0)
	for _, t := range s.tasks {
		if t.OwnerID == owner {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return sentinel.ErrNotFound
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, owner, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != owner {
		return sentinel.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}
