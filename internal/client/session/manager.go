// Package session keeps the portal client's authentication state: the current
// session, the flows that create it, and the persisted bearer token.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"campus/pkg/email"
)

// State is the position of a Manager in the authentication flow.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateVerificationPending
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateVerificationPending:
		return "verification_pending"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the signed-in user as the client knows it.
type Session struct {
	UserID      string
	Email       string
	DisplayName string
	Role        string
	Token       string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// pendingCode remembers which flow a code was requested for, and the code
// once it has been verified for a password reset.
type pendingCode struct {
	purpose      Purpose
	verifiedCode string
}

// Manager owns the current session. It is safe for concurrent use.
type Manager struct {
	api    AuthAPI
	tokens TokenStore
	logger *slog.Logger
	now    func() time.Time

	busy    *BusyFlag
	session *Signal[*Session]

	mu      sync.Mutex
	state   State
	pending map[string]*pendingCode
	closed  bool
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New builds a Manager and restores the session from the token slot when it
// holds a well-formed, unexpired token. Anything else is cleared silently.
func New(api AuthAPI, tokens TokenStore, opts ...Option) *Manager {
	m := &Manager{
		api:     api,
		tokens:  tokens,
		logger:  slog.Default(),
		now:     time.Now,
		busy:    NewBusyFlag(),
		session: NewSignal[*Session](nil),
		pending: make(map[string]*pendingCode),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.rehydrate()
	return m
}

func (m *Manager) rehydrate() {
	token, ok, err := m.tokens.Load()
	if err != nil {
		m.logger.Warn("failed to read stored token", "error", err)
		return
	}
	if !ok || token == "" {
		return
	}
	claims, err := ParseClaims(token)
	if err == nil && claims.Expired(m.now()) {
		err = fmt.Errorf("token expired at %s", claims.ExpiresAt.Format(time.RFC3339))
	}
	if err != nil {
		m.logger.Debug("discarding stored token", "error", err)
		if clearErr := m.tokens.Clear(); clearErr != nil {
			m.logger.Warn("failed to clear stored token", "error", clearErr)
		}
		return
	}

	s := &Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: displayName(claims.FirstName, claims.LastName, claims.Email),
		Role:        claims.Role,
		Token:       token,
		IssuedAt:    claims.IssuedAt,
		ExpiresAt:   claims.ExpiresAt,
	}
	m.state = StateAuthenticated
	m.session.Set(s)
}

// Current returns the active session, or nil.
func (m *Manager) Current() *Session {
	return m.session.Get()
}

// Subscribe calls fn with the new session (nil when signed out) on every change.
func (m *Manager) Subscribe(fn func(*Session)) (unsubscribe func()) {
	return m.session.Subscribe(fn)
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Busy reports whether an auth operation is in flight.
func (m *Manager) Busy() bool {
	return m.busy.Busy()
}

func (m *Manager) SubscribeBusy(fn func(bool)) (unsubscribe func()) {
	return m.busy.Subscribe(fn)
}

// Token returns the bearer token of the active session, or "".
func (m *Manager) Token() string {
	if s := m.Current(); s != nil {
		return s.Token
	}
	return ""
}

// Close stops the manager from applying further state changes. Operations
// still in flight complete and return their result, but leave state untouched.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// HandleUnauthorized drops the session after a downstream 401.
func (m *Manager) HandleUnauthorized() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	hadSession := m.session.Get() != nil
	if hadSession {
		m.state = StateAnonymous
	}
	m.mu.Unlock()

	if !hadSession {
		return
	}
	m.logger.Info("session rejected by server, signing out")
	m.clearToken()
	m.session.Set(nil)
}

// transition sets the state unless the manager is closed.
func (m *Manager) transition(to State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.state = to
	}
}

// settle returns to the resting state: Authenticated with a session,
// otherwise fallback.
func (m *Manager) settle(fallback State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if m.session.Get() != nil {
		m.state = StateAuthenticated
		return
	}
	m.state = fallback
}

// establish persists token and publishes the session built from user.
func (m *Manager) establish(user UserInfo, token string) (*Session, bool) {
	s := &Session{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: displayName(user.FirstName, user.LastName, user.Email),
		Role:        user.Role,
		Token:       token,
		IssuedAt:    m.now(),
	}
	if claims, err := ParseClaims(token); err == nil {
		if !claims.IssuedAt.IsZero() {
			s.IssuedAt = claims.IssuedAt
		}
		s.ExpiresAt = claims.ExpiresAt
		if s.Role == "" {
			s.Role = claims.Role
		}
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return s, false
	}
	m.state = StateAuthenticated
	m.mu.Unlock()

	if err := m.tokens.Save(token); err != nil {
		m.logger.Error("failed to persist token", "error", err)
	}
	m.session.Set(s)
	return s, true
}

func (m *Manager) clearToken() {
	if err := m.tokens.Clear(); err != nil {
		m.logger.Error("failed to clear stored token", "error", err)
	}
}

func (m *Manager) rememberCode(addr string, purpose Purpose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.pending[addr] = &pendingCode{purpose: purpose}
}

// Expect records that a code for purpose was mailed to addr outside this
// manager, such as by an earlier process, so VerifyCode checks it against
// the right flow.
func (m *Manager) Expect(addr string, purpose Purpose) {
	m.rememberCode(email.Normalize(addr), purpose)
	m.settle(StateVerificationPending)
}

func (m *Manager) purposeFor(addr string) Purpose {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pending[addr]; ok {
		return p.purpose
	}
	return PurposeRegistration
}

func displayName(first, last, addr string) string {
	if name := email.JoinDisplayName(first, last); name != "" {
		return name
	}
	return addr
}
