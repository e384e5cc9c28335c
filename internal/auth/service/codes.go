package service

import (
	"context"
	"errors"

	"campus/internal/audit"
	"campus/internal/auth/mailer"
	"campus/internal/auth/models"
	"campus/internal/auth/secrets"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/sentinel"
)

var defaultCodeGenerator = secrets.GenerateCode

// issueCode stores a fresh code for (user.Email, purpose), replacing any
// pending one, and mails it.
func (s *Service) issueCode(ctx context.Context, user *models.User, purpose models.Purpose) error {
	code, err := s.generateCode()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification code")
	}

	v := &models.Verification{
		Email:     user.Email,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: s.now(ctx).Add(s.cfg.VerificationTTL),
	}
	if err := s.verifications.Save(ctx, v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification code")
	}
	s.metrics.IncCodeIssued(purpose.String())
	s.logAudit(ctx, audit.ActionCodeIssued, audit.Event{
		UserID: user.ID.String(),
		Email:  user.Email,
		Reason: purpose.String(),
	})

	err = s.mailer.SendVerification(ctx, mailer.Message{
		To:      user.Email,
		Name:    user.FirstName,
		Code:    code,
		Purpose: purpose,
		TTL:     s.cfg.VerificationTTL,
	})
	if err != nil {
		s.metrics.IncMail("failed")
		s.logger.ErrorContext(ctx, "failed to send verification email",
			"error", err,
			"purpose", purpose,
			"user_id", user.ID.String(),
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to send verification email")
	}
	s.metrics.IncMail("sent")
	return nil
}

// checkCode loads the pending code and compares it with code. A mismatch
// leaves the stored code in place.
func (s *Service) checkCode(ctx context.Context, user *models.User, purpose models.Purpose, code string) (*models.Verification, error) {
	v, err := s.verifications.Find(ctx, user.Email, purpose)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncCodeCheck(purpose.String(), "missing")
			return nil, dErrors.New(dErrors.CodeNotFound, "no verification code found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification code")
	}
	if v.Code != code {
		s.metrics.IncCodeCheck(purpose.String(), "mismatch")
		s.authFailure(ctx, audit.ActionCodeRejected, "code_mismatch", audit.Event{
			UserID: user.ID.String(),
			Email:  user.Email,
		})
		return nil, dErrors.New(dErrors.CodeInvalidCode, "invalid or expired verification code")
	}
	s.metrics.IncCodeCheck(purpose.String(), "match")
	return v, nil
}

func (s *Service) findUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}
