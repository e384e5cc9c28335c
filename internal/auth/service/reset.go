package service

import (
	"context"

	"campus/internal/audit"
	"campus/internal/auth/models"
	"campus/internal/auth/secrets"
	dErrors "campus/pkg/domain-errors"
)

// ForgotPassword mails a password-reset code to a known account.
func (s *Service) ForgotPassword(ctx context.Context, addr string) (err error) {
	ctx, span := s.startSpan(ctx, "ForgotPassword")
	defer func() { endSpan(span, err) }()

	user, err := s.findUserByEmail(ctx, addr)
	if err != nil {
		return err
	}
	if err := s.issueCode(ctx, user, models.PurposePasswordReset); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) {
			_ = s.verifications.Delete(ctx, user.Email, models.PurposePasswordReset)
		}
		return err
	}
	return nil
}

// ResetPassword replaces the password once the reset code is proven, either by
// an earlier VerifyCode or by code matching here. The code is consumed.
func (s *Service) ResetPassword(ctx context.Context, addr, newPassword, code string) (err error) {
	ctx, span := s.startSpan(ctx, "ResetPassword")
	defer func() { endSpan(span, err) }()

	if len(newPassword) < minPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	user, err := s.findUserByEmail(ctx, addr)
	if err != nil {
		return err
	}

	if code != "" {
		if _, err := s.checkCode(ctx, user, models.PurposePasswordReset, code); err != nil {
			return err
		}
	} else {
		v, err := s.verifications.Find(ctx, user.Email, models.PurposePasswordReset)
		if err != nil {
			return s.translateMissingCode(err)
		}
		if !v.Verified {
			return dErrors.New(dErrors.CodeInvalidCode, "reset code has not been verified")
		}
	}

	hash, err := secrets.Hash(newPassword)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return dErrors.New(dErrors.CodeValidation, "password is not acceptable")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	user.PasswordHash = hash
	// Receiving the code proves ownership of the address.
	user.Verified = true
	user.UpdatedAt = s.now(ctx)
	if err := s.users.Update(ctx, user); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update password")
	}

	if err := s.verifications.Delete(ctx, user.Email, models.PurposePasswordReset); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete used reset code",
			"error", err,
			"user_id", user.ID.String(),
		)
	}
	s.metrics.IncPasswordReset()
	s.logAudit(ctx, audit.ActionPasswordReset, audit.Event{
		UserID: user.ID.String(),
		Email:  user.Email,
	})
	return nil
}
