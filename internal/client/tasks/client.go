// Package tasks is the portal client for the task collection.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"campus/internal/client/api"
	"campus/internal/client/session"
	"campus/internal/tasks/models"
)

const collection = "/tasks"

// Transport sends one JSON request. *api.HTTPClient satisfies it.
type Transport interface {
	Do(ctx context.Context, method, path, token string, body, out any) error
}

// Credentials supplies the bearer token and is told when the server rejects it.
// *session.Manager satisfies it.
type Credentials interface {
	Token() string
	HandleUnauthorized()
}

type Client struct {
	transport Transport
	creds     Credentials
	busy      *session.BusyFlag
	logger    *slog.Logger
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(transport Transport, creds Credentials, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		creds:     creds,
		busy:      session.NewBusyFlag(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Busy() bool {
	return c.busy.Busy()
}

func (c *Client) SubscribeBusy(fn func(bool)) (unsubscribe func()) {
	return c.busy.Subscribe(fn)
}

type listResponse struct {
	Tasks []*models.Task `json:"tasks"`
}

func (c *Client) List(ctx context.Context) ([]*models.Task, error) {
	var out listResponse
	if err := c.do(ctx, http.MethodGet, collection, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodGet, itemPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodPost, collection, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodPatch, itemPath(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

// do runs one request with the busy flag raised. A 401 signs the session out
// and comes back as KindUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	release := c.busy.Acquire()
	defer release()

	token := c.creds.Token()
	if token == "" {
		return session.NewError(session.KindUnauthorized, "")
	}

	err := c.transport.Do(ctx, method, path, token, body, out)
	if err == nil {
		return nil
	}

	var respErr *api.ResponseError
	if errors.As(err, &respErr) && respErr.Status == http.StatusUnauthorized {
		c.logger.Info("task request rejected, session expired", "method", method, "path", path)
		c.creds.HandleUnauthorized()
		return session.WrapError(session.KindUnauthorized, "", err)
	}
	c.logger.Warn("task request failed", "method", method, "path", path, "error", err)
	return err
}

func itemPath(id uuid.UUID) string {
	return collection + "/" + url.PathEscape(id.String())
}
