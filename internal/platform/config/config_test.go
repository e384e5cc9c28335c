package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("development generates a signing key per process", func(t *testing.T) {
		t.Setenv("CAMPUS_ENV", "development")
		t.Setenv("JWT_SIGNING_KEY", "")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Len(t, cfg.JWTSigningKey, 64)
		again, err := FromEnv()
		require.NoError(t, err)
		assert.NotEqual(t, cfg.JWTSigningKey, again.JWTSigningKey)
		assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
		assert.Equal(t, time.Hour, cfg.VerificationTTL)
	})

	t.Run("production refuses to start without a signing key", func(t *testing.T) {
		t.Setenv("CAMPUS_ENV", "production")
		t.Setenv("JWT_SIGNING_KEY", "")

		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("parses broker lists and durations", func(t *testing.T) {
		t.Setenv("CAMPUS_ENV", "development")
		t.Setenv("MAIL_KAFKA_BROKERS", "a:9092, b:9092,,")
		t.Setenv("TOKEN_TTL", "2h")
		t.Setenv("REDIS_POOL_SIZE", "not-a-number")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Mail.KafkaBrokers)
		assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
		assert.Equal(t, 10, cfg.Redis.PoolSize)
	})
}
