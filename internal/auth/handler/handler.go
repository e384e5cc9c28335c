package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campus/internal/auth/models"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/httputil"
	"campus/pkg/platform/validation"
	"campus/pkg/requestcontext"
)

// Service defines the auth operations the handler exposes.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) error
	ResendCode(ctx context.Context, email string, purpose models.Purpose) error
	VerifyCode(ctx context.Context, email, code string, purpose models.Purpose) (string, error)
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, newPassword, code string) error
	Me(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
}

// Handler serves the /auth endpoints.
type Handler struct {
	auth        Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

// New creates an auth Handler. requireAuth guards /auth/me and /auth/logout.
func New(auth Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{auth: auth, logger: logger, requireAuth: requireAuth}
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/resend-code", h.handleResendCode)
		r.Post("/verify-code", h.handleVerifyCode)
		r.Post("/login", h.handleLogin)
		r.Post("/forgot-password", h.handleForgotPassword)
		r.Post("/reset-password", h.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/me", h.handleMe)
			r.Post("/logout", h.handleLogout)
		})
	})
}

// decode reads and validates a request body, writing the error response itself.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
		httputil.WriteError(w, err)
		return false
	}
	if err := validation.Struct(dst); err != nil {
		httputil.WriteError(w, err)
		return false
	}
	return true
}

// fail writes err, logging server-side failures with their cause.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable:
		h.logger.ErrorContext(r.Context(), op+" failed",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}
	httputil.WriteError(w, err)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.auth.Register(r.Context(), req); err != nil {
		h.fail(w, r, "register", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.MessageResponse{
		Message: "User registered. Check your email for verification code.",
	})
}

type resendCodeRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Purpose string `json:"purpose,omitempty" validate:"omitempty,oneof=registration password-reset reset password_reset"`
}

func (h *Handler) handleResendCode(w http.ResponseWriter, r *http.Request) {
	var req resendCodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	purpose, _ := models.ParsePurpose(req.Purpose)
	if err := h.auth.ResendCode(r.Context(), req.Email, purpose); err != nil {
		h.fail(w, r, "resend code", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "A new code has been sent."})
}

func (h *Handler) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCodeRequest
	if !h.decode(w, r, &req) {
		return
	}
	purpose, _ := models.ParsePurpose(req.Purpose)
	msg, err := h.auth.VerifyCode(r.Context(), req.Email, req.Code, purpose)
	if err != nil {
		h.fail(w, r, "verify code", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: msg})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.LoginResponse{
		User:  result.User.ToResponse(),
		Token: result.Token,
	})
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		h.fail(w, r, "forgot password", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MessageResponse{
		Message: "If the account exists, a reset code has been sent.",
	})
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req.Email, req.NewPassword, req.Code); err != nil {
		h.fail(w, r, "reset password", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Password has been reset."})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Me(r.Context())
	if err != nil {
		h.fail(w, r, "me", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user.ToResponse())
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.fail(w, r, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
