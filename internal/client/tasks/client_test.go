package tasks

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"campus/internal/client/api"
	"campus/internal/client/session"
	"campus/internal/tasks/models"
)

type fakeCredentials struct {
	token        string
	unauthorized int
}

func (f *fakeCredentials) Token() string { return f.token }

func (f *fakeCredentials) HandleUnauthorized() {
	f.unauthorized++
	f.token = ""
}

// taskServer is a scripted /tasks collection that accepts one bearer token.
type taskServer struct {
	mu    sync.Mutex
	token string
	tasks map[uuid.UUID]*models.Task
}

func (s *taskServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") != "Bearer "+s.token {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/tasks", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		list := make([]*models.Task, 0, len(s.tasks))
		for _, t := range s.tasks {
			list = append(list, t)
		}
		writeJSON(w, http.StatusOK, map[string]any{"tasks": list})
	})
	r.Post("/tasks", func(w http.ResponseWriter, req *http.Request) {
		var body models.CreateTaskRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Title == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "validation_error", "error_description": "title is required"})
			return
		}
		now := time.Now().UTC()
		t := &models.Task{ID: uuid.New(), Title: body.Title, Status: models.StatusTodo, CreatedAt: now, UpdatedAt: now}
		s.mu.Lock()
		s.tasks[t.ID] = t
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, t)
	})
	r.Get("/tasks/{id}", func(w http.ResponseWriter, req *http.Request) {
		if t := s.lookup(req); t != nil {
			writeJSON(w, http.StatusOK, t)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	})
	r.Patch("/tasks/{id}", func(w http.ResponseWriter, req *http.Request) {
		t := s.lookup(req)
		if t == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
			return
		}
		var body models.UpdateTaskRequest
		_ = json.NewDecoder(req.Body).Decode(&body)
		s.mu.Lock()
		body.Apply(t)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, t)
	})
	r.Delete("/tasks/{id}", func(w http.ResponseWriter, req *http.Request) {
		t := s.lookup(req)
		if t == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
			return
		}
		s.mu.Lock()
		delete(s.tasks, t.ID)
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func (s *taskServer) lookup(req *http.Request) *models.Task {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type ClientSuite struct {
	suite.Suite
	server *taskServer
	http   *httptest.Server
	creds  *fakeCredentials
	client *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.server = &taskServer{token: "good-token", tasks: make(map[uuid.UUID]*models.Task)}
	s.http = httptest.NewServer(s.server.routes())
	s.creds = &fakeCredentials{token: "good-token"}
	s.client = New(api.NewHTTPClient(s.http.URL), s.creds,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func (s *ClientSuite) TearDownTest() {
	s.http.Close()
}

func (s *ClientSuite) TestCRUD() {
	ctx := context.Background()

	created, err := s.client.Create(ctx, models.CreateTaskRequest{Title: "Grade essays"})
	s.Require().NoError(err)
	s.Equal("Grade essays", created.Title)
	s.Equal(models.StatusTodo, created.Status)

	list, err := s.client.List(ctx)
	s.Require().NoError(err)
	s.Len(list, 1)

	got, err := s.client.Get(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)

	done := models.StatusDone
	updated, err := s.client.Update(ctx, created.ID, models.UpdateTaskRequest{Status: &done})
	s.Require().NoError(err)
	s.Equal(models.StatusDone, updated.Status)
	s.Equal("Grade essays", updated.Title)

	s.Require().NoError(s.client.Delete(ctx, created.ID))
	_, err = s.client.Get(ctx, created.ID)
	s.True(session.IsKind(err, session.KindNotFound))
}

func (s *ClientSuite) TestEmptyListIsNotAnError() {
	list, err := s.client.List(context.Background())
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *ClientSuite) TestValidationFailureSurfacesServerMessage() {
	_, err := s.client.Create(context.Background(), models.CreateTaskRequest{})
	s.Require().Error(err)
	s.True(session.IsKind(err, session.KindValidation))
	s.Contains(err.Error(), "title is required")
	s.Zero(s.creds.unauthorized)
}

func (s *ClientSuite) TestUnauthorizedSignsOut() {
	s.server.token = "rotated"

	_, err := s.client.List(context.Background())

	s.True(session.IsKind(err, session.KindUnauthorized))
	s.Equal(1, s.creds.unauthorized)
	s.False(s.client.Busy())
}

func (s *ClientSuite) TestNoTokenSkipsTheRequest() {
	s.creds.token = ""

	_, err := s.client.List(context.Background())

	s.True(session.IsKind(err, session.KindUnauthorized))
	s.Zero(s.creds.unauthorized)
}

func (s *ClientSuite) TestBusyFlagToggles() {
	var events []bool
	unsubscribe := s.client.SubscribeBusy(func(v bool) { events = append(events, v) })
	defer unsubscribe()

	_, err := s.client.List(context.Background())

	s.Require().NoError(err)
	s.Equal([]bool{true, false}, events)
}

func (s *ClientSuite) TestTransportFailure() {
	s.http.Close()

	_, err := s.client.List(context.Background())

	s.True(session.IsKind(err, session.KindTransport))
	s.Zero(s.creds.unauthorized)
}
