package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already processed, e.g. provider
// webhook delivery ids.
type IdempotencyStore interface {
	// MarkProcessed returns true if key was newly marked, false if it was seen before
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Forget removes a mark so a failed delivery can be retried
	Forget(ctx context.Context, key string) error
}

// Locker hands out short-lived exclusive locks keyed by name
type Locker interface {
	// Acquire returns a release token, or ok=false when the key is already held
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Release frees the lock only if token still owns it
	Release(ctx context.Context, key, token string) error
}
