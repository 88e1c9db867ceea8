package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frozenClock pins l to a clock the test advances by hand.
func frozenClock[V comparable](l *leases[V]) *time.Time {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return &now
}

func TestLeases(t *testing.T) {
	l := newLeases[string]()
	now := frozenClock(l)

	require.True(t, l.claim("k", "a", time.Minute))
	assert.False(t, l.claim("k", "b", time.Minute), "live lease blocks")

	l.release("k", "b")
	assert.Equal(t, 1, l.size(), "release by a non-holder is ignored")

	*now = now.Add(time.Minute)
	assert.True(t, l.claim("k", "b", time.Minute), "lapsed lease can be retaken")

	require.True(t, l.claim("short", "x", time.Second))
	*now = now.Add(2 * time.Second)
	l.sweep()
	assert.Equal(t, 1, l.size())
}

func TestInMemoryLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire fails while held", func(t *testing.T) {
		locker := NewInMemoryLocker()

		token, ok, err := locker.Acquire(ctx, "payment:sync:1", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotEmpty(t, token)

		_, ok, err = locker.Acquire(ctx, "payment:sync:1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = locker.Acquire(ctx, "payment:sync:2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "other keys are independent")
	})

	t.Run("release frees the lock", func(t *testing.T) {
		locker := NewInMemoryLocker()
		token, _, _ := locker.Acquire(ctx, "k", time.Minute)

		require.NoError(t, locker.Release(ctx, "k", token))

		_, ok, err := locker.Acquire(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("stale token does not release a new holder", func(t *testing.T) {
		locker := NewInMemoryLocker()
		now := frozenClock(locker.held)

		stale, _, _ := locker.Acquire(ctx, "k", time.Second)
		*now = now.Add(2 * time.Second)
		fresh, ok, _ := locker.Acquire(ctx, "k", time.Minute)
		require.True(t, ok, "expired lock can be taken over")

		require.NoError(t, locker.Release(ctx, "k", stale))
		_, ok, _ = locker.Acquire(ctx, "k", time.Minute)
		assert.False(t, ok, "new holder keeps the lock")

		require.NoError(t, locker.Release(ctx, "k", fresh))
		_, ok, _ = locker.Acquire(ctx, "k", time.Minute)
		assert.True(t, ok)
	})
}

func TestInMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore()
	now := frozenClock(store.seen)

	fresh, err := store.MarkProcessed(ctx, "delivery-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = store.MarkProcessed(ctx, "delivery-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, fresh, "redelivery is a duplicate")

	require.NoError(t, store.Forget(ctx, "delivery-1"))
	fresh, _ = store.MarkProcessed(ctx, "delivery-1", time.Hour)
	assert.True(t, fresh, "forgotten key is new again")
	assert.NoError(t, store.Forget(ctx, "never-seen"))

	_, _ = store.MarkProcessed(ctx, "delivery-2", time.Minute)
	*now = now.Add(time.Minute)
	fresh, _ = store.MarkProcessed(ctx, "delivery-2", time.Minute)
	assert.True(t, fresh, "expired key is new again")
}

func TestInMemoryIdempotencyStore_ConcurrentMarks(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryIdempotencyStore()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fresh int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.MarkProcessed(ctx, "same-delivery", time.Hour)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fresh)
}

func TestSweeper(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	_, _ = store.MarkProcessed(context.Background(), "gone", time.Nanosecond)

	s := startSweeper(time.Millisecond, store.seen.sweep)
	assert.Eventually(t, func() bool { return store.Size() == 0 }, time.Second, time.Millisecond)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
