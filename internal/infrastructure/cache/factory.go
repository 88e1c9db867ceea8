package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// Coordination bundles the cross-request primitives: the sync lock and the
// webhook idempotency store. Both are Redis-backed when Redis is configured.
type Coordination struct {
	Locker      shared.Locker
	Idempotency shared.IdempotencyStore
	// Backend is "redis" or "memory"
	Backend string

	client  redis.UniversalClient
	closers []func() error
}

// Ping checks the Redis connection. It is a no-op for the in-memory backend.
func (c *Coordination) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Client returns the Redis client, or nil for the in-memory backend
func (c *Coordination) Client() redis.UniversalClient {
	return c.client
}

// Close releases Redis connections and background goroutines
func (c *Coordination) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// CoordinationOption configures NewCoordination
type CoordinationOption func(*coordinationOptions)

type coordinationOptions struct {
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) CoordinationOption {
	return func(o *coordinationOptions) {
		o.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// process memory instead of failing. Default true.
func WithInMemoryFallback(allow bool) CoordinationOption {
	return func(o *coordinationOptions) {
		o.allowInMemoryFallback = allow
	}
}

// NewCoordination builds the lock and idempotency store for cfg
func NewCoordination(ctx context.Context, cfg config.RedisConfig, opts ...CoordinationOption) (*Coordination, error) {
	o := coordinationOptions{logger: zap.NewNop(), allowInMemoryFallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !cfg.Enabled {
		o.logger.Info("Redis disabled, using in-memory sync lock and idempotency store")
		return newInMemoryCoordination(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if !o.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		o.logger.Warn("Redis unavailable, falling back to in-memory coordination. "+
			"Concurrent syncs and webhook redeliveries are only guarded per instance.",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return newInMemoryCoordination(), nil
	}

	o.logger.Info("Using Redis for sync lock and idempotency store", zap.String("addr", cfg.Addr()))
	return NewRedisCoordination(client), nil
}

// NewRedisCoordination builds Redis-backed primitives on an existing client
func NewRedisCoordination(client redis.UniversalClient) *Coordination {
	return &Coordination{
		Locker:      NewRedisLocker(client, "storefront:lock:"),
		Idempotency: NewRedisIdempotencyStore(client, "storefront:idempotency:"),
		Backend:     "redis",
		client:      client,
		closers:     []func() error{client.Close},
	}
}

func newInMemoryCoordination() *Coordination {
	locker := NewInMemoryLocker()
	store := NewInMemoryIdempotencyStore()
	sweeps := startSweeper(sweepInterval, locker.held.sweep, store.seen.sweep)
	return &Coordination{
		Locker:      locker,
		Idempotency: store,
		Backend:     "memory",
		closers:     []func() error{sweeps.Close},
	}
}
