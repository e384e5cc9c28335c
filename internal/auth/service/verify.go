package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"campus/internal/audit"
	"campus/internal/auth/models"
	dErrors "campus/pkg/domain-errors"
)

const (
	msgVerified        = "Email verified successfully. You can now login."
	msgAlreadyVerified = "Account already verified"
	msgResetVerified   = "Code verified. You can now reset your password."
)

// VerifyCode checks code against the pending code for (email, purpose).
//
// For registration a match marks the account verified and consumes the code.
// For password reset a match only marks the code confirmed; it is consumed by
// ResetPassword.
func (s *Service) VerifyCode(ctx context.Context, addr, code string, purpose models.Purpose) (msg string, err error) {
	ctx, span := s.startSpan(ctx, "VerifyCode", attribute.String("purpose", purpose.String()))
	defer func() { endSpan(span, err) }()

	if code == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email and code are required")
	}
	user, err := s.findUserByEmail(ctx, addr)
	if err != nil {
		return "", err
	}

	switch purpose {
	case models.PurposePasswordReset:
		if _, err := s.checkCode(ctx, user, purpose, code); err != nil {
			return "", err
		}
		if err := s.verifications.MarkVerified(ctx, user.Email, purpose); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to confirm verification code")
		}
		return msgResetVerified, nil

	default:
		if user.Verified {
			return msgAlreadyVerified, nil
		}
		if _, err := s.checkCode(ctx, user, models.PurposeRegistration, code); err != nil {
			return "", err
		}
		user.Verified = true
		user.UpdatedAt = s.now(ctx)
		if err := s.users.Update(ctx, user); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
		}
		if err := s.verifications.Delete(ctx, user.Email, models.PurposeRegistration); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete used verification code",
				"error", err,
				"user_id", user.ID.String(),
			)
		}
		s.logAudit(ctx, audit.ActionUserVerified, audit.Event{
			UserID: user.ID.String(),
			Email:  user.Email,
		})
		return msgVerified, nil
	}
}
