package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrResetTokenInvalid covers unknown, expired and already used tokens.
var ErrResetTokenInvalid = errors.New("reset token invalid or expired")

// ResetTokenStore issues single-use password reset tokens.
type ResetTokenStore interface {
	Issue(ctx context.Context, userID string, ttl time.Duration) (string, error)
	Consume(ctx context.Context, token string) (string, error)
}

const resetKeyPrefix = "password_reset:"

// RedisResetStore keeps tokens as keys that expire on their own.
type RedisResetStore struct {
	client *redis.Client
}

func NewRedisResetStore(client *redis.Client) *RedisResetStore {
	return &RedisResetStore{client: client}
}

func (s *RedisResetStore) Issue(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, resetKeyPrefix+token, userID, ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Consume deletes the token while reading it so it cannot be replayed.
func (s *RedisResetStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, resetKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrResetTokenInvalid
	}
	return userID, err
}

type memoryResetEntry struct {
	userID    string
	expiresAt time.Time
}

// MemoryResetStore is the process-local fallback.
type MemoryResetStore struct {
	mu      sync.Mutex
	entries map[string]memoryResetEntry
	now     func() time.Time
}

func NewMemoryResetStore(now func() time.Time) *MemoryResetStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryResetStore{entries: make(map[string]memoryResetEntry), now: now}
}

func (s *MemoryResetStore) Issue(_ context.Context, userID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.entries[token] = memoryResetEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	return token, nil
}

func (s *MemoryResetStore) Consume(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	delete(s.entries, token)
	if !ok || !s.now().Before(entry.expiresAt) {
		return "", ErrResetTokenInvalid
	}
	return entry.userID, nil
}
