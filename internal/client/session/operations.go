package session

import (
	"context"
	"fmt"
	"regexp"

	"campus/pkg/email"
)

const minPasswordLength = 6

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Login signs in with the remote endpoint and publishes the new session.
func (m *Manager) Login(ctx context.Context, addr, password string) (res Result) {
	release := m.busy.Acquire()
	defer release()
	defer m.recoverPanic("login", &res)

	addr = email.Normalize(addr)
	if err := validateEmail(addr); err != nil {
		return m.fail("login", err)
	}
	if password == "" {
		return m.fail("login", NewError(KindValidation, "Please enter your password."))
	}

	m.transition(StateAuthenticating)
	resp, err := m.api.Login(ctx, addr, password)
	if err != nil {
		m.settle(StateAnonymous)
		return m.fail("login", asAuthError(err))
	}
	if resp == nil || resp.Token == "" {
		m.settle(StateAnonymous)
		return m.fail("login", NewError(KindTransport, "The server did not return a token."))
	}
	s, _ := m.establish(resp.User, resp.Token)
	m.logger.Info("signed in", "user_id", s.UserID)
	return Result{Session: s}
}

// Register creates an account. name is split at its first space into first
// and last name. Unless the endpoint signs the user in directly, the manager
// waits for the emailed registration code.
func (m *Manager) Register(ctx context.Context, name, addr, password string) (res Result) {
	release := m.busy.Acquire()
	defer release()
	defer m.recoverPanic("register", &res)

	first, last := email.SplitDisplayName(name)
	addr = email.Normalize(addr)
	if first == "" {
		return m.fail("register", NewError(KindValidation, "Please enter your name."))
	}
	if err := validateEmail(addr); err != nil {
		return m.fail("register", err)
	}
	if err := validatePassword(password); err != nil {
		return m.fail("register", err)
	}

	m.transition(StateAuthenticating)
	resp, err := m.api.Register(ctx, RegisterInput{
		FirstName: first,
		LastName:  last,
		Email:     addr,
		Password:  password,
	})
	if err != nil {
		m.settle(StateAnonymous)
		return m.fail("register", asAuthError(err))
	}

	if resp != nil && resp.Token != "" {
		user := UserInfo{Email: addr, FirstName: first, LastName: last}
		if resp.User != nil {
			user = *resp.User
		}
		s, _ := m.establish(user, resp.Token)
		return Result{Session: s}
	}
	m.rememberCode(addr, PurposeRegistration)
	m.settle(StateVerificationPending)
	return Result{}
}

// RequestPasswordReset asks the endpoint to mail a reset code.
func (m *Manager) RequestPasswordReset(ctx context.Context, addr string) (res Result) {
	release := m.busy.Acquire()
	defer release()
	defer m.recoverPanic("request password reset", &res)

	addr = email.Normalize(addr)
	if err := validateEmail(addr); err != nil {
		return m.fail("request password reset", err)
	}
	if err := m.api.RequestPasswordReset(ctx, addr); err != nil {
		return m.fail("request password reset", asAuthError(err))
	}
	m.rememberCode(addr, PurposePasswordReset)
	m.settle(StateVerificationPending)
	return Result{}
}

// VerifyCode checks code against the one mailed to addr, for whichever flow
// last requested a code for that address (registration when none did).
func (m *Manager) VerifyCode(ctx context.Context, addr, code string) (res Result) {
	release := m.busy.Acquire()
	defer release()
	defer m.recoverPanic("verify code", &res)

	addr = email.Normalize(addr)
	if err := validateEmail(addr); err != nil {
		return m.fail("verify code", err)
	}
	if !codePattern.MatchString(code) {
		return m.fail("verify code", NewError(KindValidation, "The code must be 6 digits."))
	}

	purpose := m.purposeFor(addr)
	if err := m.api.VerifyCode(ctx, addr, code, purpose); err != nil {
		if m.State() == StateVerificationPending {
			m.settle(StateAnonymous)
		}
		return m.fail("verify code", asAuthError(err))
	}

	m.mu.Lock()
	closed := m.closed
	if !closed {
		if purpose == PurposePasswordReset {
			m.pending[addr] = &pendingCode{purpose: purpose, verifiedCode: code}
		} else {
			delete(m.pending, addr)
		}
	}
	m.mu.Unlock()

	if purpose == PurposePasswordReset {
		m.settle(StateVerificationPending)
	} else {
		m.settle(StateAnonymous)
	}
	return Result{}
}

// ResetPassword sets a new password using the reset code verified earlier for addr.
func (m *Manager) ResetPassword(ctx context.Context, addr, newPassword string) (res Result) {
	release := m.busy.Acquire()
	defer release()
	defer m.recoverPanic("reset password", &res)

	addr = email.Normalize(addr)
	if err := validateEmail(addr); err != nil {
		return m.fail("reset password", err)
	}
	if err := validatePassword(newPassword); err != nil {
		return m.fail("reset password", err)
	}

	m.mu.Lock()
	var code string
	if p, ok := m.pending[addr]; ok {
		code = p.verifiedCode
	}
	m.mu.Unlock()

	if err := m.api.ResetPassword(ctx, addr, newPassword, code); err != nil {
		return m.fail("reset password", asAuthError(err))
	}

	m.mu.Lock()
	if !m.closed {
		// The purpose is kept so the spent code is checked against the reset flow.
		m.pending[addr] = &pendingCode{purpose: PurposePasswordReset}
	}
	m.mu.Unlock()
	m.settle(StateAnonymous)
	return Result{}
}

// Logout clears the stored token and publishes no session. It always
// succeeds; revoking the token remotely is best effort.
func (m *Manager) Logout(ctx context.Context) (res Result) {
	release := m.busy.Acquire()
	defer release()
	defer m.recoverPanic("logout", &res)

	token := m.Token()

	m.mu.Lock()
	if m.closed {
		// State is frozen once closed, the persisted token still goes.
		m.mu.Unlock()
		m.clearToken()
		return Result{}
	}
	m.state = StateAnonymous
	clear(m.pending)
	m.mu.Unlock()

	m.clearToken()
	m.session.Set(nil)

	if token != "" {
		m.revokeRemote(ctx, token)
	}
	return Result{}
}

func (m *Manager) revokeRemote(ctx context.Context, token string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("token revocation panicked", "panic", fmt.Sprint(r))
		}
	}()
	if err := m.api.Revoke(ctx, token); err != nil {
		m.logger.Warn("failed to revoke token remotely", "error", err)
	}
}

func (m *Manager) fail(op string, err *AuthError) Result {
	m.logger.Warn("auth operation failed",
		"op", op,
		"kind", err.Kind.String(),
		"error", err,
	)
	return failure(err)
}

// recoverPanic turns a panic in a collaborator into a transport failure.
func (m *Manager) recoverPanic(op string, res *Result) {
	if r := recover(); r != nil {
		m.logger.Error("auth operation panicked", "op", op, "panic", fmt.Sprint(r))
		m.settle(StateAnonymous)
		*res = failure(WrapError(KindTransport, "", fmt.Errorf("panic: %v", r)))
	}
}

func validateEmail(addr string) *AuthError {
	if !email.IsValid(addr) {
		return NewError(KindValidation, "Please enter a valid email address.")
	}
	return nil
}

func validatePassword(password string) *AuthError {
	if len(password) < minPasswordLength {
		return NewError(KindValidation, fmt.Sprintf("Password must be at least %d characters.", minPasswordLength))
	}
	return nil
}
