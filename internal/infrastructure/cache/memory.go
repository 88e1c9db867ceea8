package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

const sweepInterval = 5 * time.Minute

// leases is a key table whose entries lapse after their ttl. It backs both
// in-memory primitives, which therefore only coordinate within one process.
type leases[V comparable] struct {
	mu      sync.Mutex
	entries map[string]lease[V]
	now     func() time.Time
}

type lease[V comparable] struct {
	value V
	until time.Time
}

func newLeases[V comparable]() *leases[V] {
	return &leases[V]{entries: make(map[string]lease[V]), now: time.Now}
}

// claim takes key unless a live lease holds it.
func (l *leases[V]) claim(key string, value V, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if held, ok := l.entries[key]; ok && now.Before(held.until) {
		return false
	}
	l.entries[key] = lease[V]{value: value, until: now.Add(ttl)}
	return true
}

// release drops key only while value still holds it.
func (l *leases[V]) release(key string, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if held, ok := l.entries[key]; ok && held.value == value {
		delete(l.entries, key)
	}
}

func (l *leases[V]) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, held := range l.entries {
		if !now.Before(held.until) {
			delete(l.entries, key)
		}
	}
}

func (l *leases[V]) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// InMemoryLocker implements shared.Locker. Tokens are random, so a holder
// whose lease lapsed cannot release its successor.
type InMemoryLocker struct {
	held *leases[string]
}

func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{held: newLeases[string]()}
}

func (l *InMemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	if !l.held.claim(key, token, ttl) {
		return "", false, nil
	}
	return token, true, nil
}

func (l *InMemoryLocker) Release(_ context.Context, key, token string) error {
	l.held.release(key, token)
	return nil
}

// InMemoryIdempotencyStore implements shared.IdempotencyStore.
type InMemoryIdempotencyStore struct {
	seen *leases[struct{}]
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{seen: newLeases[struct{}]()}
}

// MarkProcessed reports whether key is new, remembering it for ttl.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return s.seen.claim(key, struct{}{}, ttl), nil
}

func (s *InMemoryIdempotencyStore) Forget(_ context.Context, key string) error {
	s.seen.release(key, struct{}{})
	return nil
}

// Size is the number of remembered keys, expired ones included until the
// next sweep.
func (s *InMemoryIdempotencyStore) Size() int {
	return s.seen.size()
}

// sweeper evicts lapsed leases periodically until stopped.
type sweeper struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func startSweeper(interval time.Duration, sweeps ...func()) *sweeper {
	s := &sweeper{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				for _, sweep := range sweeps {
					sweep()
				}
			}
		}
	}()
	return s
}

// Close is safe to call more than once.
func (s *sweeper) Close() error {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
	return nil
}

var (
	_ shared.Locker           = (*InMemoryLocker)(nil)
	_ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
)
