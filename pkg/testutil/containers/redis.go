//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"campus/internal/platform/config"
	platformredis "campus/internal/platform/redis"
)

// RedisContainer is a throwaway Redis reached through the same client the
// server builds from REDIS_URL.
type RedisContainer struct {
	URL    string
	Client *platformredis.Client
}

// NewRedisContainer starts Redis for the lifetime of t.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "start redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err, "redis connection string")

	client, err := platformredis.New(ctx, config.RedisConfig{URL: url, PoolSize: 4})
	require.NoError(t, err, "connect to redis container")
	t.Cleanup(func() { _ = client.Close() })

	return &RedisContainer{URL: url, Client: client}
}

// FlushAll empties the database between tests.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
