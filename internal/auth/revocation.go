package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList remembers logged-out session ids until they expire.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevocationList is a process-local RevocationList. Expired entries
// are dropped on every Revoke so the set stays bounded by live sessions.
type MemoryRevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (l *MemoryRevocationList) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleanupLocked(l.now())
	l.entries[tokenID] = expiresAt
	return nil
}

func (l *MemoryRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, exists := l.entries[tokenID]
	return exists, nil
}

// Cleanup removes entries whose token has expired and returns how many
// were removed.
func (l *MemoryRevocationList) Cleanup(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cleanupLocked(now)
}

// Len returns the number of tracked entries.
func (l *MemoryRevocationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *MemoryRevocationList) cleanupLocked(now time.Time) int {
	removed := 0
	for id, expiresAt := range l.entries {
		if now.After(expiresAt) {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

const revokedKeyPrefix = "session:revoked:"

// RedisRevocationList shares revocations between server replicas. Keys
// carry the token's remaining lifetime as TTL so Redis drops them itself.
type RedisRevocationList struct {
	client *redis.Client
}

func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func (l *RedisRevocationList) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := l.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close closes the underlying Redis client.
func (l *RedisRevocationList) Close() error {
	return l.client.Close()
}
