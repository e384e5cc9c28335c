package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"

	"campus/internal/auth/secrets"
	"campus/internal/client/session"
	jwttoken "campus/internal/jwt_token"
)

type mockAccount struct {
	id        uuid.UUID
	firstName string
	lastName  string
	role      string
	password  string
	verified  bool
}

type mockCode struct {
	code     string
	verified bool
}

type codeKey struct {
	email   string
	purpose session.Purpose
}

// Mock is an in-memory auth endpoint. It issues real signed tokens so the
// session manager can decode them, and keeps mailed codes readable through
// LastCode in place of an inbox.
type Mock struct {
	mu                  sync.Mutex
	accounts            map[string]*mockAccount
	codes               map[codeKey]*mockCode
	revoked             map[string]bool
	tokens              *jwttoken.JWTService
	tokenTTL            time.Duration
	generateCode        func() (string, error)
	requireVerification bool
}

type MockOption func(*Mock)

// WithRegistrationVerification makes Register withhold the token until the
// registration code is verified, as the real endpoint does.
func WithRegistrationVerification() MockOption {
	return func(m *Mock) {
		m.requireVerification = true
	}
}

func WithMockCodeGenerator(gen func() (string, error)) MockOption {
	return func(m *Mock) {
		m.generateCode = gen
	}
}

// DemoAccount seeds the mock.
type DemoAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

var DemoAccounts = []DemoAccount{
	{Email: "jane@example.com", Password: "password456", FirstName: "Jane", LastName: "Smith", Role: "teacher"},
	{Email: "john@example.com", Password: "password123", FirstName: "John", LastName: "Doe", Role: "student"},
}

// NewMock returns a Mock seeded with DemoAccounts.
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		accounts:     make(map[string]*mockAccount),
		codes:        make(map[codeKey]*mockCode),
		revoked:      make(map[string]bool),
		tokens:       jwttoken.NewJWTService(randomKey(), "campus-mock"),
		tokenTTL:     24 * time.Hour,
		generateCode: secrets.GenerateCode,
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, a := range DemoAccounts {
		m.accounts[a.Email] = &mockAccount{
			id:        uuid.New(),
			firstName: a.FirstName,
			lastName:  a.LastName,
			role:      a.Role,
			password:  a.Password,
			verified:  true,
		}
	}
	return m
}

func randomKey() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func (m *Mock) Login(_ context.Context, email, password string) (*session.AuthResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[email]
	if !ok || acct.password != password {
		return nil, session.NewError(session.KindInvalidCredentials, "")
	}
	if !acct.verified {
		return nil, session.NewError(session.KindInvalidCredentials, "Please verify your email before logging in.")
	}
	return m.signIn(email, acct)
}

func (m *Mock) Register(_ context.Context, in session.RegisterInput) (*session.RegisterResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[in.Email]; exists {
		return nil, session.NewError(session.KindConflict, "")
	}
	acct := &mockAccount{
		id:        uuid.New(),
		firstName: in.FirstName,
		lastName:  in.LastName,
		role:      "student",
		password:  in.Password,
		verified:  !m.requireVerification,
	}
	if err := m.issueCode(in.Email, session.PurposeRegistration); err != nil {
		return nil, err
	}
	m.accounts[in.Email] = acct

	resp := &session.RegisterResponse{Message: "User registered. Check your email for verification code."}
	if m.requireVerification {
		return resp, nil
	}
	signedIn, err := m.signIn(in.Email, acct)
	if err != nil {
		delete(m.accounts, in.Email)
		delete(m.codes, codeKey{email: in.Email, purpose: session.PurposeRegistration})
		return nil, err
	}
	resp.Token = signedIn.Token
	resp.User = &signedIn.User
	return resp, nil
}

func (m *Mock) RequestPasswordReset(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[email]; !ok {
		return session.NewError(session.KindNotFound, "")
	}
	return m.issueCode(email, session.PurposePasswordReset)
}

func (m *Mock) VerifyCode(_ context.Context, email, code string, purpose session.Purpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[email]
	if !ok {
		return session.NewError(session.KindNotFound, "")
	}
	key := codeKey{email: email, purpose: purpose}
	pending, ok := m.codes[key]
	if !ok {
		if purpose == session.PurposeRegistration && acct.verified {
			return nil
		}
		return session.NewError(session.KindNotFound, "")
	}
	if pending.code != code {
		return session.NewError(session.KindInvalidCode, "")
	}
	if purpose == session.PurposeRegistration {
		acct.verified = true
		delete(m.codes, key)
		return nil
	}
	pending.verified = true
	return nil
}

func (m *Mock) ResetPassword(_ context.Context, email, newPassword, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[email]
	if !ok {
		return session.NewError(session.KindNotFound, "")
	}
	key := codeKey{email: email, purpose: session.PurposePasswordReset}
	pending, ok := m.codes[key]
	if !ok {
		return session.NewError(session.KindNotFound, "")
	}
	if code != "" && pending.code != code {
		return session.NewError(session.KindInvalidCode, "")
	}
	if code == "" && !pending.verified {
		return session.NewError(session.KindInvalidCode, "The reset code has not been verified.")
	}
	acct.password = newPassword
	acct.verified = true
	delete(m.codes, key)
	return nil
}

func (m *Mock) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[token] = true
	return nil
}

// LastCode returns the code most recently mailed to email for purpose.
func (m *Mock) LastCode(email string, purpose session.Purpose) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[codeKey{email: email, purpose: purpose}]
	if !ok {
		return "", false
	}
	return c.code, true
}

func (m *Mock) Revoked(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[token]
}

// issueCode replaces any pending code for (email, purpose). Callers hold m.mu.
func (m *Mock) issueCode(email string, purpose session.Purpose) error {
	code, err := m.generateCode()
	if err != nil {
		return session.WrapError(session.KindTransport, "", err)
	}
	m.codes[codeKey{email: email, purpose: purpose}] = &mockCode{code: code}
	return nil
}

// signIn issues a token for acct. Callers hold m.mu.
func (m *Mock) signIn(email string, acct *mockAccount) (*session.AuthResponse, error) {
	token, _, err := m.tokens.GenerateAccessToken(jwttoken.Subject{
		UserID:    acct.id,
		Email:     email,
		FirstName: acct.firstName,
		LastName:  acct.lastName,
		Role:      acct.role,
	}, m.tokenTTL)
	if err != nil {
		return nil, session.WrapError(session.KindTransport, "", err)
	}
	return &session.AuthResponse{
		User: session.UserInfo{
			ID:        acct.id.String(),
			Email:     email,
			FirstName: acct.firstName,
			LastName:  acct.lastName,
			Role:      acct.role,
		},
		Token: token,
	}, nil
}
