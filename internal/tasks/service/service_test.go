package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"campus/internal/platform/logger"
	"campus/internal/tasks/models"
	"campus/internal/tasks/store"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/requestcontext"
)

type TaskServiceSuite struct {
	suite.Suite
	service *Service
	alice   context.Context
	bob     context.Context
}

func TestTaskServiceSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceSuite))
}

func (s *TaskServiceSuite) SetupTest() {
	s.service = New(store.NewInMemory(), WithLogger(logger.Discard()))
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	base := requestcontext.WithTime(context.Background(), now)
	s.alice = requestcontext.WithPrincipal(base, requestcontext.Principal{UserID: uuid.NewString()})
	s.bob = requestcontext.WithPrincipal(base, requestcontext.Principal{UserID: uuid.NewString()})
}

func (s *TaskServiceSuite) TestCreate() {
	s.Run("defaults status to todo and trims the title", func() {
		task, err := s.service.Create(s.alice, models.CreateTaskRequest{Title: "  Grade essays "})
		s.Require().NoError(err)
		s.Equal("Grade essays", task.Title)
		s.Equal(models.StatusTodo, task.Status)
		s.Equal(task.CreatedAt, task.UpdatedAt)
	})

	s.Run("blank title is a validation error", func() {
		_, err := s.service.Create(s.alice, models.CreateTaskRequest{Title: "   "})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown status is a validation error", func() {
		_, err := s.service.Create(s.alice, models.CreateTaskRequest{Title: "x", Status: "blocked"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("anonymous caller is unauthorized", func() {
		_, err := s.service.Create(context.Background(), models.CreateTaskRequest{Title: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *TaskServiceSuite) TestOwnership() {
	task, err := s.service.Create(s.alice, models.CreateTaskRequest{Title: "Alice's task"})
	s.Require().NoError(err)

	_, err = s.service.Get(s.bob, task.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.Delete(s.bob, task.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	list, err := s.service.List(s.bob)
	s.Require().NoError(err)
	s.Empty(list)

	list, err = s.service.List(s.alice)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *TaskServiceSuite) TestUpdate() {
	task, err := s.service.Create(s.alice, models.CreateTaskRequest{Title: "Draft", Description: "keep"})
	s.Require().NoError(err)

	s.Run("applies only provided fields", func() {
		done := models.StatusDone
		updated, err := s.service.Update(s.alice, task.ID, models.UpdateTaskRequest{Status: &done})
		s.Require().NoError(err)
		s.Equal(models.StatusDone, updated.Status)
		s.Equal("Draft", updated.Title)
		s.Equal("keep", updated.Description)
	})

	s.Run("blank title is rejected", func() {
		blank := " "
		_, err := s.service.Update(s.alice, task.ID, models.UpdateTaskRequest{Title: &blank})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing task is not found", func() {
		_, err := s.service.Update(s.alice, uuid.New(), models.UpdateTaskRequest{})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *TaskServiceSuite) TestDelete() {
	task, err := s.service.Create(s.alice, models.CreateTaskRequest{Title: "Temp"})
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.alice, task.ID))
	_, err = s.service.Get(s.alice, task.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
