package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"campus/internal/platform/metrics"
	"campus/internal/tasks/models"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, owner, id uuid.UUID) (*models.Task, error)
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

// Service manages the caller's tasks. Every operation is scoped to the
// authenticated user; other users' tasks read as not found.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func owner(ctx context.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(requestcontext.UserID(ctx))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return id, nil
}

func translate(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "task not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
}

func (s *Service) List(ctx context.Context) ([]*models.Task, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, translate(err, "list tasks")
	}
	s.metrics.IncTaskOperation("list")
	return tasks, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.store.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, translate(err, "load task")
	}
	s.metrics.IncTaskOperation("get")
	return task, nil
}

func (s *Service) Create(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	status := req.Status
	if status == "" {
		status = models.StatusTodo
	}
	if !status.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown status")
	}

	now := requestcontext.Now(ctx).UTC()
	task := &models.Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: req.Description,
		Status:      status,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, task); err != nil {
		return nil, translate(err, "create task")
	}
	s.metrics.IncTaskOperation("create")
	s.logger.InfoContext(ctx, "task created",
		"task_id", task.ID.String(),
		"user_id", ownerID.String(),
	)
	return task, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.store.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, translate(err, "load task")
	}
	req.Apply(task)
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if !task.Status.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown status")
	}
	task.UpdatedAt = requestcontext.Now(ctx).UTC()
	if err := s.store.Update(ctx, task); err != nil {
		return nil, translate(err, "update task")
	}
	s.metrics.IncTaskOperation("update")
	return task, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ownerID, err := owner(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return translate(err, "delete task")
	}
	s.metrics.IncTaskOperation("delete")
	return nil
}
