package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"campus/internal/auth/models"
	"campus/internal/auth/secrets"
	"campus/pkg/platform/sentinel"
)

// DemoAccount is a verified account created at startup in development.
type DemoAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      models.Role
}

// DemoAccounts are the accounts the mock client backend also knows.
var DemoAccounts = []DemoAccount{
	{Email: "jane@example.com", Password: "password456", FirstName: "Jane", LastName: "Smith", Role: models.RoleTeacher},
	{Email: "john@example.com", Password: "password123", FirstName: "John", LastName: "Doe", Role: models.RoleStudent},
}

// SeedDemoAccounts creates any missing demo account, already verified.
func (s *Service) SeedDemoAccounts(ctx context.Context, accounts []DemoAccount) error {
	for _, acct := range accounts {
		hash, err := secrets.Hash(acct.Password)
		if err != nil {
			return err
		}
		now := s.now(ctx)
		err = s.users.Create(ctx, &models.User{
			ID:           uuid.New(),
			Email:        models.NormalizeEmail(acct.Email),
			FirstName:    acct.FirstName,
			LastName:     acct.LastName,
			PasswordHash: hash,
			Role:         acct.Role,
			Verified:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil && !errors.Is(err, sentinel.ErrConflict) {
			return err
		}
		if err == nil {
			s.logger.InfoContext(ctx, "seeded demo account", "email", acct.Email, "role", acct.Role)
		}
	}
	return nil
}
