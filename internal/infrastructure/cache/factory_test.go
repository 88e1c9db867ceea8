package cache

import (
	"context"
	"testing"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewCoordination_Disabled(t *testing.T) {
	coord, err := NewCoordination(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	defer coord.Close()

	assert.Equal(t, "memory", coord.Backend)
	assert.IsType(t, &InMemoryLocker{}, coord.Locker)
	assert.IsType(t, &InMemoryIdempotencyStore{}, coord.Idempotency)
	assert.NoError(t, coord.Ping(context.Background()))
}

func TestNewCoordination_UnreachableRedis(t *testing.T) {
	unreachable := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	t.Run("falls back to memory with a warning", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)

		coord, err := NewCoordination(context.Background(), unreachable, WithLogger(zap.New(core)))
		require.NoError(t, err)
		defer coord.Close()

		assert.Equal(t, "memory", coord.Backend)
		assert.Equal(t, 1, logs.FilterMessageSnippet("falling back to in-memory").Len())
	})

	t.Run("fails when fallback is disabled", func(t *testing.T) {
		_, err := NewCoordination(context.Background(), unreachable, WithInMemoryFallback(false))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required but unavailable")
	})
}
