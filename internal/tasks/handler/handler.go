package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"campus/internal/tasks/models"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/httputil"
	"campus/pkg/platform/validation"
	"campus/pkg/requestcontext"
)

// Service defines the task operations the handler exposes.
type Service interface {
	List(ctx context.Context) ([]*models.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error)
	Update(ctx context.Context, id uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	tasks       Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

func New(tasks Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{tasks: tasks, logger: logger, requireAuth: requireAuth}
}

// Register registers the task routes. All of them require a bearer token.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

type listResponse struct {
	Tasks []*models.Task `json:"tasks"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		h.fail(w, r, "list tasks", err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Tasks: tasks})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	task, err := h.tasks.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, "create task", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, task)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get task", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, task)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var req models.UpdateTaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	task, err := h.tasks.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, "update task", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, task)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	if err := h.tasks.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid task id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		httputil.WriteError(w, err)
		return false
	}
	if err := validation.Struct(dst); err != nil {
		httputil.WriteError(w, err)
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(r.Context(), op+" failed",
			"error", err,
			"user_id", requestcontext.UserID(r.Context()),
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}
	httputil.WriteError(w, err)
}
