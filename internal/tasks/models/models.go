package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is a to-do item owned by one user.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Status      Status     `json:"status,omitempty" validate:"omitempty,oneof=todo in-progress done"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// UpdateTaskRequest is the body of PATCH /tasks/{id}. Nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *Status    `json:"status,omitempty" validate:"omitempty,oneof=todo in-progress done"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Apply copies the set fields of req onto t.
func (req UpdateTaskRequest) Apply(t *Task) {
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.DueDate != nil {
		due := *req.DueDate
		t.DueDate = &due
	}
}
