package session_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus/internal/client/api"
	"campus/internal/client/session"
	"campus/internal/client/tokenstore"
	"campus/pkg/testutil"
)

func fixedCode() (string, error) { return "424242", nil }

func newFlowManager(t *testing.T, mock *api.Mock, tokens session.TokenStore) *session.Manager {
	t.Helper()
	m := session.New(mock, tokens, session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(m.Close)
	return m
}

func TestDemoAccountLogin(t *testing.T) {
	ctx := context.Background()
	mock := api.NewMock()
	tokens := tokenstore.NewMemory()
	m := newFlowManager(t, mock, tokens)

	res := m.Login(ctx, "jane@example.com", "password456")
	require.True(t, res.OK(), "login failed: %v", res.Err)
	assert.Equal(t, "Jane Smith", res.Session.DisplayName)
	assert.Equal(t, "teacher", res.Session.Role)
	assert.Equal(t, session.StateAuthenticated, m.State())

	stored, ok, err := tokens.Load()
	require.NoError(t, err)
	require.True(t, ok)

	restored := newFlowManager(t, mock, tokenstore.NewMemoryWith(stored))
	require.NotNil(t, restored.Current(), "a second manager picks the session up from the token slot")
	assert.Equal(t, res.Session.UserID, restored.Current().UserID)

	res = m.Login(ctx, "jane@example.com", "wrong")
	require.False(t, res.OK())
	assert.Equal(t, session.KindInvalidCredentials, res.Err.Kind)
}

func TestGarbageTokenStartsSignedOut(t *testing.T) {
	tokens := tokenstore.NewMemoryWith("not-a-token")
	m := newFlowManager(t, api.NewMock(), tokens)

	assert.Nil(t, m.Current())
	assert.Equal(t, session.StateAnonymous, m.State())
	_, ok, _ := tokens.Load()
	assert.False(t, ok)
}

func TestRegistrationWithVerification(t *testing.T) {
	ctx := context.Background()
	mock := api.NewMock(api.WithRegistrationVerification(), api.WithMockCodeGenerator(fixedCode))
	m := newFlowManager(t, mock, tokenstore.NewMemory())
	const addr = "ada@example.com"

	testutil.NewScenario(t).
		Given("a new registration", func(t *testing.T) {
			res := m.Register(ctx, "Ada Lovelace", addr, "engines1")
			require.True(t, res.OK(), "register failed: %v", res.Err)
			assert.Nil(t, res.Session)
			assert.Equal(t, session.StateVerificationPending, m.State())
		}).
		When("logging in before verifying", func(t *testing.T) {
			res := m.Login(ctx, addr, "engines1")
			require.False(t, res.OK())
			assert.Equal(t, session.KindInvalidCredentials, res.Err.Kind)
			assert.Contains(t, res.Err.Message(), "verify your email")
		}).
		And("a wrong code is entered", func(t *testing.T) {
			res := m.VerifyCode(ctx, addr, "000000")
			require.False(t, res.OK())
			assert.Equal(t, session.KindInvalidCode, res.Err.Kind)
			code, ok := mock.LastCode(addr, session.PurposeRegistration)
			assert.True(t, ok, "a wrong guess does not spend the code")
			assert.Equal(t, "424242", code)
		}).
		Then("the mailed code verifies the account", func(t *testing.T) {
			res := m.VerifyCode(ctx, addr, "424242")
			require.True(t, res.OK(), "verify failed: %v", res.Err)
		}).
		And("login succeeds", func(t *testing.T) {
			res := m.Login(ctx, addr, "engines1")
			require.True(t, res.OK(), "login failed: %v", res.Err)
			assert.Equal(t, "Ada Lovelace", res.Session.DisplayName)
			assert.Equal(t, "student", res.Session.Role)
		}).
		And("registering the address again conflicts", func(t *testing.T) {
			res := m.Register(ctx, "Ada Again", addr, "engines2")
			require.False(t, res.OK())
			assert.Equal(t, session.KindConflict, res.Err.Kind)
		})
}

func TestRegistrationSignsInDirectly(t *testing.T) {
	m := newFlowManager(t, api.NewMock(), tokenstore.NewMemory())

	res := m.Register(context.Background(), "Grace Hopper", "grace@example.com", "cobol59")

	require.True(t, res.OK(), "register failed: %v", res.Err)
	require.NotNil(t, res.Session)
	assert.Equal(t, "Grace Hopper", res.Session.DisplayName)
	assert.Equal(t, session.StateAuthenticated, m.State())
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	mock := api.NewMock(api.WithMockCodeGenerator(fixedCode))
	m := newFlowManager(t, mock, tokenstore.NewMemory())
	const addr = "john@example.com"

	testutil.NewScenario(t).
		Given("a reset was requested", func(t *testing.T) {
			res := m.RequestPasswordReset(ctx, addr)
			require.True(t, res.OK(), "request failed: %v", res.Err)
		}).
		When("the code is verified", func(t *testing.T) {
			res := m.VerifyCode(ctx, addr, "424242")
			require.True(t, res.OK(), "verify failed: %v", res.Err)
		}).
		And("a new password is set", func(t *testing.T) {
			res := m.ResetPassword(ctx, addr, "brand-new")
			require.True(t, res.OK(), "reset failed: %v", res.Err)
		}).
		Then("the old password no longer works", func(t *testing.T) {
			res := m.Login(ctx, addr, "password123")
			require.False(t, res.OK())
			assert.Equal(t, session.KindInvalidCredentials, res.Err.Kind)
		}).
		And("the new one does", func(t *testing.T) {
			res := m.Login(ctx, addr, "brand-new")
			require.True(t, res.OK(), "login failed: %v", res.Err)
		}).
		And("the spent code is rejected", func(t *testing.T) {
			res := m.VerifyCode(ctx, addr, "424242")
			require.False(t, res.OK())
			assert.Equal(t, session.KindNotFound, res.Err.Kind)
		})
}

func TestUnknownAddressCannotReset(t *testing.T) {
	m := newFlowManager(t, api.NewMock(), tokenstore.NewMemory())

	res := m.RequestPasswordReset(context.Background(), "nobody@example.com")

	require.False(t, res.OK())
	assert.Equal(t, session.KindNotFound, res.Err.Kind)
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	mock := api.NewMock()
	tokens := tokenstore.NewMemory()
	m := newFlowManager(t, mock, tokens)

	res := m.Login(ctx, "john@example.com", "password123")
	require.True(t, res.OK())
	token := res.Session.Token

	assert.True(t, m.Logout(ctx).OK())
	assert.True(t, m.Logout(ctx).OK())

	assert.True(t, mock.Revoked(token))
	assert.Nil(t, m.Current())
	_, ok, _ := tokens.Load()
	assert.False(t, ok)
}
