package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"campus/internal/audit"
	"campus/internal/auth/models"
	"campus/internal/auth/secrets"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/email"
	"campus/pkg/platform/sentinel"
)

const minPasswordLength = 6

// Register creates an unverified account and mails a registration code.
// A mail failure is logged but does not undo the registration; the caller can
// ask for a new code through ResendCode.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (err error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer func() { endSpan(span, err) }()

	addr := email.Normalize(req.Email)
	if !email.IsValid(addr) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return dErrors.New(dErrors.CodeValidation, "first name is required")
	}
	if len(req.Password) < minPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "unknown role")
	}

	hash, err := secrets.Hash(req.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return dErrors.New(dErrors.CodeValidation, "password is not acceptable")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := s.now(ctx)
	user := &models.User{
		ID:           uuid.New(),
		Email:        addr,
		FirstName:    firstName,
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "user already exists")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	s.metrics.IncUsersRegistered()
	s.logAudit(ctx, audit.ActionUserRegistered, audit.Event{
		UserID: user.ID.String(),
		Email:  user.Email,
	})

	if err := s.issueCode(ctx, user, models.PurposeRegistration); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) {
			return nil
		}
		return err
	}
	return nil
}

// ResendCode issues a new code for purpose, replacing the pending one.
// Registration codes are only issued to accounts that are not verified yet.
func (s *Service) ResendCode(ctx context.Context, addr string, purpose models.Purpose) (err error) {
	ctx, span := s.startSpan(ctx, "ResendCode", attribute.String("purpose", purpose.String()))
	defer func() { endSpan(span, err) }()

	user, err := s.findUserByEmail(ctx, addr)
	if err != nil {
		return err
	}
	if purpose == models.PurposeRegistration && user.Verified {
		return dErrors.New(dErrors.CodeConflict, "account already verified")
	}
	return s.issueCode(ctx, user, purpose)
}
