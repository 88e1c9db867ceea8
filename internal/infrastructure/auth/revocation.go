package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList answers whether a validated token was revoked before expiry.
// The session service writes revocations; this service only reads them.
type RevocationList interface {
	IsRevoked(ctx context.Context, claims *Claims) (bool, error)
}

const defaultRevocationPrefix = "storefront:revoked:"

// RedisRevocationList reads revocations from Redis. A "jti:<id>" key revokes
// one token; a "user:<id>" key holds a unix timestamp before which every token
// of that user is revoked.
type RedisRevocationList struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisRevocationList creates a RedisRevocationList. An empty prefix uses
// "storefront:revoked:".
func NewRedisRevocationList(client redis.UniversalClient, keyPrefix string) *RedisRevocationList {
	if keyPrefix == "" {
		keyPrefix = defaultRevocationPrefix
	}
	return &RedisRevocationList{client: client, keyPrefix: keyPrefix}
}

// IsRevoked implements RevocationList
func (r *RedisRevocationList) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if claims.ID != "" {
		exists, err := r.client.Exists(ctx, r.keyPrefix+"jti:"+claims.ID).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if exists > 0 {
			return true, nil
		}
	}

	raw, err := r.client.Get(ctx, r.keyPrefix+"user:"+claims.UserID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("invalid user revocation timestamp %q: %w", raw, err)
	}
	return claims.GetIssuedAtTime().Unix() < revokedAt, nil
}

// Revoke marks one token revoked until ttl passes
func (r *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.client.Set(ctx, r.keyPrefix+"jti:"+jti, "1", ttl).Err()
}

// RevokeUser revokes every token of userID issued before now
func (r *RedisRevocationList) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, r.keyPrefix+"user:"+userID, strconv.FormatInt(time.Now().Unix(), 10), ttl).Err()
}

// InMemoryRevocationList is the single-process RevocationList used when Redis
// is disabled
type InMemoryRevocationList struct {
	mu    sync.RWMutex
	jtis  map[string]time.Time
	users map[string]time.Time
	now   func() time.Time
}

// NewInMemoryRevocationList creates an empty InMemoryRevocationList
func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{
		jtis:  make(map[string]time.Time),
		users: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Revoke marks one token revoked until ttl passes
func (r *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jtis[jti] = r.now().Add(ttl)
	return nil
}

// RevokeUser revokes every token of userID issued before now
func (r *InMemoryRevocationList) RevokeUser(_ context.Context, userID string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID] = r.now()
	return nil
}

// IsRevoked implements RevocationList
func (r *InMemoryRevocationList) IsRevoked(_ context.Context, claims *Claims) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if expiry, ok := r.jtis[claims.ID]; ok && r.now().Before(expiry) {
		return true, nil
	}
	if revokedAt, ok := r.users[claims.UserID]; ok {
		return claims.GetIssuedAtTime().Before(revokedAt), nil
	}
	return false, nil
}

var (
	_ RevocationList = (*RedisRevocationList)(nil)
	_ RevocationList = (*InMemoryRevocationList)(nil)
)
