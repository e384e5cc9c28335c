package session

import "context"

// Purpose says which flow a verification code belongs to.
type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePasswordReset Purpose = "password-reset"
)

// UserInfo is the account view returned by the auth endpoint.
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role,omitempty"`
}

type AuthResponse struct {
	User  UserInfo `json:"user"`
	Token string   `json:"token"`
}

type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// RegisterResponse acknowledges a registration. Token and User are only set
// by backends that sign the user in immediately.
type RegisterResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token,omitempty"`
	User    *UserInfo `json:"user,omitempty"`
}

// AuthAPI is the remote auth endpoint. Implementations return *AuthError for
// failures the endpoint reports; any other error is treated as a transport
// failure.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, in RegisterInput) (*RegisterResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string, purpose Purpose) error
	ResetPassword(ctx context.Context, email, newPassword, code string) error
	Revoke(ctx context.Context, token string) error
}

// TokenStore is the single persisted token slot.
type TokenStore interface {
	Load() (token string, ok bool, err error)
	Save(token string) error
	Clear() error
}
