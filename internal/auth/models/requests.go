package models

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=student teacher parent admin"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyCodeRequest is the body of POST /auth/verify-code.
type VerifyCodeRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Code    string `json:"code" validate:"required,len=6,numeric"`
	Purpose string `json:"purpose,omitempty" validate:"omitempty,oneof=registration password-reset reset password_reset"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password. Code is
// optional when the reset code was already confirmed through verify-code.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
	Code        string `json:"code,omitempty" validate:"omitempty,len=6,numeric"`
}

// MessageResponse is the body of endpoints that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Verified  bool   `json:"verified"`
}

// LoginResponse is the body of a successful POST /auth/login.
type LoginResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// LoginResult is what the service hands back to the transport.
type LoginResult struct {
	User  *User
	Token string
}

// ToResponse builds the public view of u.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role.String(),
		Verified:  u.Verified,
	}
}
