//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisCoordination(t *testing.T) {
	ctx := context.Background()
	coord := NewRedisCoordination(newRedisClient(t))
	assert.NoError(t, coord.Ping(ctx))

	t.Run("lock is exclusive and token checked", func(t *testing.T) {
		token, ok, err := coord.Locker.Acquire(ctx, "payment:sync:1", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = coord.Locker.Acquire(ctx, "payment:sync:1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, coord.Locker.Release(ctx, "payment:sync:1", "someone-else"))
		_, ok, _ = coord.Locker.Acquire(ctx, "payment:sync:1", time.Minute)
		assert.False(t, ok, "foreign token must not release")

		require.NoError(t, coord.Locker.Release(ctx, "payment:sync:1", token))
		_, ok, _ = coord.Locker.Acquire(ctx, "payment:sync:1", time.Minute)
		assert.True(t, ok)
	})

	t.Run("idempotency marks and forgets", func(t *testing.T) {
		fresh, err := coord.Idempotency.MarkProcessed(ctx, "polar:webhook:msg_1", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)

		fresh, err = coord.Idempotency.MarkProcessed(ctx, "polar:webhook:msg_1", time.Hour)
		require.NoError(t, err)
		assert.False(t, fresh)

		require.NoError(t, coord.Idempotency.Forget(ctx, "polar:webhook:msg_1"))
		fresh, err = coord.Idempotency.MarkProcessed(ctx, "polar:webhook:msg_1", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)
	})
}
