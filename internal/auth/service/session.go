package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"campus/internal/audit"
	"campus/internal/auth/models"
	dErrors "campus/pkg/domain-errors"
	"campus/pkg/platform/sentinel"
	"campus/pkg/requestcontext"
)

// Me returns the account behind the authenticated request.
func (s *Service) Me(ctx context.Context) (*models.User, error) {
	principal, ok := requestcontext.CurrentPrincipal(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(principal.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	s.logAudit(ctx, audit.ActionUserInfoAccessed, audit.Event{UserID: user.ID.String()})
	return user, nil
}

// Logout revokes the token behind the authenticated request until it would
// have expired anyway.
func (s *Service) Logout(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "Logout")
	defer func() { endSpan(span, err) }()

	principal, ok := requestcontext.CurrentPrincipal(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	ttl := principal.ExpiresAt.Sub(s.now(ctx))
	if principal.TokenID == "" || ttl <= 0 {
		return nil
	}
	if err := s.trl.RevokeToken(ctx, principal.TokenID, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}
	s.logAudit(ctx, audit.ActionTokenRevoked, audit.Event{UserID: principal.UserID})
	return nil
}

func (s *Service) translateMissingCode(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "no verification code found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification code")
}
