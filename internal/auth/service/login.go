package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"campus/internal/audit"
	"campus/internal/auth/models"
	"campus/internal/auth/secrets"
	jwttoken "campus/internal/jwt_token"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/sentinel"
)

// Login checks credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller; an unverified account
// is reported after the password matched.
func (s *Service) Login(ctx context.Context, addr, password string) (result *models.LoginResult, err error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer func() { endSpan(span, err) }()

	if addr == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncLogin("unknown_user")
			s.authFailure(ctx, audit.ActionLoginFailed, "unknown_user", audit.Event{Email: addr})
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.metrics.IncLogin("bad_password")
			s.authFailure(ctx, audit.ActionLoginFailed, "bad_password", audit.Event{
				UserID: user.ID.String(),
				Email:  user.Email,
			})
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}

	if !user.Verified {
		s.metrics.IncLogin("unverified")
		s.authFailure(ctx, audit.ActionLoginFailed, "unverified", audit.Event{
			UserID: user.ID.String(),
			Email:  user.Email,
		})
		return nil, dErrors.New(dErrors.CodeForbidden, "account not verified")
	}

	token, _, err := s.jwt.GenerateAccessToken(jwttoken.Subject{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role.String(),
	}, s.cfg.TokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	s.metrics.IncLogin("success")
	s.logAudit(ctx, audit.ActionLoginSucceeded, audit.Event{
		UserID: user.ID.String(),
		Email:  user.Email,
	})

	return &models.LoginResult{User: user, Token: token}, nil
}
