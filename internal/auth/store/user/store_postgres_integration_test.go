//go:build integration

package user_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"campus/internal/auth/models"
	"campus/internal/auth/store/user"
	"campus/internal/platform/postgres"
	"campus/pkg/platform/sentinel"
	"campus/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	db    *sql.DB
	store *user.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	pg := containers.NewPostgresContainer(s.T())
	db, err := sql.Open("postgres", pg.DSN)
	s.Require().NoError(err)
	_, err = db.Exec(postgres.Schema)
	s.Require().NoError(err)
	s.db = db
	s.store = user.NewPostgres(db)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.db.Close()
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE users`)
	s.Require().NoError(err)
}

func makeUser(email string) *models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    "John",
		LastName:     "Doe",
		PasswordHash: "hash",
		Role:         models.RoleTeacher,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	u := makeUser("john@example.com")
	s.Require().NoError(s.store.Create(ctx, u))

	byID, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.Email, byID.Email)
	s.Equal(models.RoleTeacher, byID.Role)

	byEmail, err := s.store.FindByEmail(ctx, "JOHN@example.com")
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)
}

func (s *PostgresStoreSuite) TestDuplicateEmailIsConflict() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, makeUser("dup@example.com")))
	err := s.store.Create(ctx, makeUser("dup@example.com"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	u := makeUser("verify@example.com")
	s.Require().NoError(s.store.Create(ctx, u))

	u.Verified = true
	u.UpdatedAt = time.Now().UTC()
	s.Require().NoError(s.store.Update(ctx, u))

	found, err := s.store.FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.True(found.Verified)

	err = s.store.Update(ctx, makeUser("missing@example.com"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestMissingIsNotFound() {
	_, err := s.store.FindByEmail(context.Background(), "nobody@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
