package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"campus/internal/tasks/models"
	"campus/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	owner uuid.UUID
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.owner = uuid.New()
}

func newTask(owner uuid.UUID, title string, created time.Time) *models.Task {
	return &models.Task{
		ID:        uuid.New(),
		OwnerID:   owner,
		Title:     title,
		Status:    models.StatusTodo,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func (s *InMemoryStoreSuite) TestOwnerScoping() {
	ctx := context.Background()
	mine := newTask(s.owner, "mine", time.Now())
	theirs := newTask(uuid.New(), "theirs", time.Now())
	s.Require().NoError(s.store.Create(ctx, mine))
	s.Require().NoError(s.store.Create(ctx, theirs))

	s.Run("find only sees own tasks", func() {
		_, err := s.store.FindByID(ctx, s.owner, theirs.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)

		got, err := s.store.FindByID(ctx, s.owner, mine.ID)
		s.Require().NoError(err)
		s.Equal("mine", got.Title)
	})

	s.Run("list only returns own tasks", func() {
		list, err := s.store.ListByOwner(ctx, s.owner)
		s.Require().NoError(err)
		s.Len(list, 1)
	})

	s.Run("cannot delete or update someone else's task", func() {
		s.ErrorIs(s.store.Delete(ctx, s.owner, theirs.ID), sentinel.ErrNotFound)

		hijack := *theirs
		hijack.OwnerID = s.owner
		s.ErrorIs(s.store.Update(ctx, &hijack), sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestListOrder() {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.store.Create(ctx, newTask(s.owner, "second", base.Add(time.Minute))))
	s.Require().NoError(s.store.Create(ctx, newTask(s.owner, "first", base)))

	list, err := s.store.ListByOwner(ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("first", list[0].Title)
	s.Equal("second", list[1].Title)
}

func (s *InMemoryStoreSuite) TestUpdateAndDelete() {
	ctx := context.Background()
	task := newTask(s.owner, "draft", time.Now())
	s.Require().NoError(s.store.Create(ctx, task))

	task.Status = models.StatusDone
	s.Require().NoError(s.store.Update(ctx, task))
	got, err := s.store.FindByID(ctx, s.owner, task.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusDone, got.Status)

	s.Require().NoError(s.store.Delete(ctx, s.owner, task.ID))
	s.ErrorIs(s.store.Delete(ctx, s.owner, task.ID), sentinel.ErrNotFound)

	list, err := s.store.ListByOwner(ctx, s.owner)
	s.Require().NoError(err)
	s.NotNil(list)
	s.Empty(list)
}
