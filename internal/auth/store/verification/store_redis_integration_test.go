//go:build integration

package verification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"campus/internal/auth/models"
	"campus/internal/auth/store/verification"
	"campus/pkg/platform/sentinel"
	"campus/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *verification.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = verification.NewRedis(s.redis.Client.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestCodeLifecycle() {
	ctx := context.Background()
	v := &models.Verification{
		Email:     "Ada@Example.com",
		Purpose:   models.PurposePasswordReset,
		Code:      "123456",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	s.Require().NoError(s.store.Save(ctx, v))

	got, err := s.store.Find(ctx, "ada@example.com", models.PurposePasswordReset)
	s.Require().NoError(err)
	s.Equal("123456", got.Code)
	s.False(got.Verified)

	_, err = s.store.Find(ctx, "ada@example.com", models.PurposeRegistration)
	s.True(errors.Is(err, sentinel.ErrNotFound), "codes are kept per purpose")

	s.Require().NoError(s.store.MarkVerified(ctx, "ada@example.com", models.PurposePasswordReset))
	got, err = s.store.Find(ctx, "ada@example.com", models.PurposePasswordReset)
	s.Require().NoError(err)
	s.True(got.Verified)

	ttl, err := s.redis.Client.TTL(ctx, "verify:password-reset:ada@example.com").Result()
	s.Require().NoError(err)
	s.Greater(ttl, 50*time.Minute, "marking verified keeps the expiry")

	s.Require().NoError(s.store.Delete(ctx, "ada@example.com", models.PurposePasswordReset))
	_, err = s.store.Find(ctx, "ada@example.com", models.PurposePasswordReset)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *RedisStoreSuite) TestMarkVerifiedMissingCode() {
	err := s.store.MarkVerified(context.Background(), "ghost@example.com", models.PurposeRegistration)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}
