package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RevocationLog records refresh tokens that were explicitly invalidated
// before their natural expiry. Inserts are idempotent; a completed Revoke is
// visible to every subsequent IsRevoked.
type RevocationLog interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// MemoryRevocationLog keeps revoked tokens in process memory together with
// their embedded expiry, so entries that can no longer pass verification are
// swept instead of accumulating forever.
type MemoryRevocationLog struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewMemoryRevocationLog creates an empty in-memory revocation log.
func NewMemoryRevocationLog() *MemoryRevocationLog {
	return &MemoryRevocationLog{entries: make(map[string]time.Time)}
}

// Revoke records the token. Re-revoking a recorded token is a no-op.
func (l *MemoryRevocationLog) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.entries[token]; exists {
		return nil
	}
	l.entries[token] = expiresAt
	return nil
}

// IsRevoked reports whether the token was recorded.
func (l *MemoryRevocationLog) IsRevoked(_ context.Context, token string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, revoked := l.entries[token]
	return revoked, nil
}

// Sweep removes entries whose embedded expiry has passed and returns the
// number removed. An expired token can never verify again, revoked or not.
func (l *MemoryRevocationLog) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for token, expiresAt := range l.entries {
		if now.After(expiresAt) {
			delete(l.entries, token)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until the context is done.
func (l *MemoryRevocationLog) StartSweeper(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if removed := l.Sweep(now); removed > 0 && logger != nil {
					logger.Debug("swept revocation log", zap.Int("removed", removed))
				}
			}
		}
	}()
}

const revocationKeyPrefix = "revoked_refresh:"

// RedisRevocationLog stores revoked tokens in Redis, keyed per token with a
// TTL matching the token's remaining lifetime. Expiry handles pruning.
type RedisRevocationLog struct {
	client *redis.Client
}

// NewRedisRevocationLog creates a Redis-backed revocation log.
func NewRedisRevocationLog(client *redis.Client) *RedisRevocationLog {
	return &RedisRevocationLog{client: client}
}

// Revoke records the token until its embedded expiry. SET is idempotent and
// refreshes nothing of consequence when called twice for the same token.
func (l *RedisRevocationLog) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already unusable; nothing worth recording.
		return nil
	}
	if err := l.client.Set(ctx, revocationKeyPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token is recorded.
func (l *RedisRevocationLog) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := l.client.Exists(ctx, revocationKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
