package dashboard

import (
	"context"
	"log/slog"
	"strings"

	dErrors "campus/pkg/domain-errors"
)

// UserCounter reports how many accounts exist. The auth user stores satisfy it.
type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

type Service struct {
	users  UserCounter
	logger *slog.Logger
}

func NewService(users UserCounter, logger *slog.Logger) *Service {
	return &Service{users: users, logger: logger}
}

// For returns the dashboard for role. Unknown roles are not found.
func (s *Service) For(ctx context.Context, role string) (*Dashboard, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	d, ok := seeded(role)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown dashboard")
	}
	if d.Statistics != nil && s.users != nil {
		count, err := s.users.Count(ctx)
		if err != nil {
			// statistics stay partial; the rest of the page is static
			s.logger.WarnContext(ctx, "failed to count users", "error", err)
		} else {
			d.Statistics.RegisteredUsers = count
		}
	}
	return d, nil
}
