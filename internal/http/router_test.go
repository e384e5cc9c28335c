package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authhandler "campus/internal/auth/handler"
	"campus/internal/auth/mailer"
	authmodels "campus/internal/auth/models"
	authservice "campus/internal/auth/service"
	"campus/internal/auth/store/revocation"
	userstore "campus/internal/auth/store/user"
	"campus/internal/auth/store/verification"
	"campus/internal/dashboard"
	jwttoken "campus/internal/jwt_token"
	"campus/internal/platform/logger"
	"campus/internal/platform/metrics"
	"campus/internal/platform/middleware"
	taskhandler "campus/internal/tasks/handler"
	taskmodels "campus/internal/tasks/models"
	taskservice "campus/internal/tasks/service"
	taskstore "campus/internal/tasks/store"
	"campus/pkg/testutil"
)

const fixedCode = "424242"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.Discard()
	m := metrics.New()

	users := userstore.New()
	trl := revocation.NewInMemoryTRL()
	jwt := jwttoken.NewJWTService("test-signing-key", "campus-test")
	auth := authservice.New(
		users,
		verification.NewInMemory(),
		trl,
		jwt,
		mailer.NewLogMailer("no-reply@campus.test", log),
		authservice.Config{},
		authservice.WithLogger(log),
		authservice.WithMetrics(m),
		authservice.WithCodeGenerator(func() (string, error) { return fixedCode, nil }),
	)
	requireAuth := middleware.RequireAuth(jwttoken.NewMiddlewareValidator(jwt), trl, log)

	return NewRouter(
		Config{Logger: log, Metrics: m},
		authhandler.New(auth, log, requireAuth),
		taskhandler.New(taskservice.New(taskstore.NewInMemory(), taskservice.WithMetrics(m)), log, requireAuth),
		dashboard.NewHandler(dashboard.NewService(users, log), log, requireAuth),
	)
}

func send(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, path, body)
	if token != "" {
		testutil.WithBearer(req, token)
	}
	return testutil.DoRequest(router, req)
}

func TestAccountLifecycle(t *testing.T) {
	router := newTestRouter(t)
	var token string

	testutil.NewScenario(t).
		Given("a newly registered account", func(t *testing.T) {
			rr := send(t, router, http.MethodPost, "/auth/register", "", map[string]string{
				"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "password": "engines1",
			})
			require.Equal(t, http.StatusCreated, rr.Code)
		}).
		When("logging in before verification", func(t *testing.T) {
			rr := send(t, router, http.MethodPost, "/auth/login", "", map[string]string{
				"email": "ada@example.com", "password": "engines1",
			})
			testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
		}).
		And("a wrong code is submitted", func(t *testing.T) {
			rr := send(t, router, http.MethodPost, "/auth/verify-code", "", map[string]string{
				"email": "ada@example.com", "code": "000000",
			})
			testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_code")
		}).
		And("the mailed code is submitted", func(t *testing.T) {
			rr := send(t, router, http.MethodPost, "/auth/verify-code", "", map[string]string{
				"email": "ada@example.com", "code": fixedCode,
			})
			require.Equal(t, http.StatusOK, rr.Code)
		}).
		Then("login returns a token", func(t *testing.T) {
			rr := send(t, router, http.MethodPost, "/auth/login", "", map[string]string{
				"email": "ada@example.com", "password": "engines1",
			})
			require.Equal(t, http.StatusOK, rr.Code)
			resp := testutil.UnmarshalResponse[authmodels.LoginResponse](t, rr)
			require.NotEmpty(t, resp.Token)
			assert.Equal(t, "Ada", resp.User.FirstName)
			token = resp.Token
		}).
		And("the token reaches protected routes", func(t *testing.T) {
			rr := send(t, router, http.MethodGet, "/auth/me", token, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			me := testutil.UnmarshalResponse[authmodels.UserResponse](t, rr)
			assert.Equal(t, "ada@example.com", me.Email)
			assert.True(t, me.Verified)

			rr = send(t, router, http.MethodGet, "/dashboard/student", token, nil)
			assert.Equal(t, http.StatusOK, rr.Code)
		}).
		When("logging out", func(t *testing.T) {
			rr := send(t, router, http.MethodPost, "/auth/logout", token, nil)
			require.Equal(t, http.StatusNoContent, rr.Code)
		}).
		Then("the token is revoked", func(t *testing.T) {
			rr := send(t, router, http.MethodGet, "/auth/me", token, nil)
			testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
		})
}

func TestPasswordResetFlow(t *testing.T) {
	router := newTestRouter(t)
	rr := send(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"firstName": "Grace", "email": "grace@example.com", "password": "cobol123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	testutil.NewScenario(t).
		Given("a reset code was requested", func(t *testing.T) {
			rr := send(t, router, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "grace@example.com"})
			require.Equal(t, http.StatusOK, rr.Code)
		}).
		When("the code is verified", func(t *testing.T) {
			rr := send(t, router, http.MethodPost, "/auth/verify-code", "", map[string]string{
				"email": "grace@example.com", "code": fixedCode, "purpose": "password-reset",
			})
			require.Equal(t, http.StatusOK, rr.Code)
		}).
		And("the password is reset without repeating the code", func(t *testing.T) {
			rr := send(t, router, http.MethodPost, "/auth/reset-password", "", map[string]string{
				"email": "grace@example.com", "newPassword": "fortran77",
			})
			require.Equal(t, http.StatusOK, rr.Code)
		}).
		Then("the new password logs in", func(t *testing.T) {
			rr := send(t, router, http.MethodPost, "/auth/login", "", map[string]string{
				"email": "grace@example.com", "password": "fortran77",
			})
			assert.Equal(t, http.StatusOK, rr.Code)
		}).
		And("the code cannot be used again", func(t *testing.T) {
			rr := send(t, router, http.MethodPost, "/auth/reset-password", "", map[string]string{
				"email": "grace@example.com", "newPassword": "another1", "code": fixedCode,
			})
			testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
		})
}

func TestTasksRequireOwnership(t *testing.T) {
	router := newTestRouter(t)
	login := func(email string) string {
		send(t, router, http.MethodPost, "/auth/register", "", map[string]string{
			"firstName": "User", "email": email, "password": "secret12",
		})
		send(t, router, http.MethodPost, "/auth/verify-code", "", map[string]string{"email": email, "code": fixedCode})
		rr := send(t, router, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "secret12"})
		require.Equal(t, http.StatusOK, rr.Code)
		return testutil.UnmarshalResponse[authmodels.LoginResponse](t, rr).Token
	}
	alice := login("alice@example.com")
	bob := login("bob@example.com")

	rr := send(t, router, http.MethodPost, "/tasks", alice, map[string]string{"title": "Mark tests"})
	require.Equal(t, http.StatusCreated, rr.Code)
	task := testutil.UnmarshalResponse[taskmodels.Task](t, rr)

	rr = send(t, router, http.MethodGet, "/tasks/"+task.ID.String(), bob, nil)
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")

	rr = send(t, router, http.MethodGet, "/tasks/"+task.ID.String(), alice, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = send(t, router, http.MethodGet, "/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestOperationalRoutes(t *testing.T) {
	t.Run("healthz reports failing checks", func(t *testing.T) {
		router := NewRouter(Config{
			Logger: logger.Discard(),
			Health: map[string]HealthCheck{
				"redis":    func(context.Context) error { return nil },
				"postgres": func(context.Context) error { return errors.New("connection refused") },
			},
		})
		rr := send(t, router, http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Contains(t, rr.Body.String(), "connection refused")
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		router := newTestRouter(t)
		send(t, router, http.MethodGet, "/healthz", "", nil)
		rr := send(t, router, http.MethodGet, "/metrics", "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unknown routes use the error envelope", func(t *testing.T) {
		router := newTestRouter(t)
		rr := send(t, router, http.MethodGet, "/nowhere", "", nil)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}
