package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptRecord is the login guard state for one session. LockedUntil is an
// absolute wall-clock instant so a reload does not restart the countdown.
type AttemptRecord struct {
	Count       int
	LockedUntil *time.Time
}

// AttemptStore keeps AttemptRecords keyed by session id. Reserve and Release
// must be atomic per session: concurrent logins on one session may never
// claim more than limit attempts between lockouts.
type AttemptStore interface {
	// Reserve counts one attempt before credentials are checked. It returns
	// false with the current record when the session is locked. Reaching
	// limit sets LockedUntil to now+lockout on the returned record.
	Reserve(ctx context.Context, session string, limit int, lockout time.Duration, now time.Time) (AttemptRecord, bool, error)
	// Release refunds a reserved attempt whose outcome was not a failed
	// login, lifting a lock that the refund takes back under limit.
	Release(ctx context.Context, session string, limit int) error
	Clear(ctx context.Context, session string) error
}

// reserveAttempt applies one reservation to rec.
func reserveAttempt(rec AttemptRecord, limit int, lockout time.Duration, now time.Time) (AttemptRecord, bool) {
	if rec.LockedUntil != nil {
		if now.Before(*rec.LockedUntil) {
			return rec, false
		}
		rec = AttemptRecord{}
	}
	rec.Count++
	if rec.Count >= limit {
		until := now.Add(lockout)
		rec.LockedUntil = &until
	}
	return rec, true
}

const attemptKeyPrefix = "login_attempts:"

// KEYS[1] session key; ARGV limit, lockout ms, now ms, ttl ms.
// Returns {allowed, count, locked_until_ms}.
var reserveScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local now = tonumber(ARGV[3])
local locked = tonumber(redis.call('HGET', key, 'locked_until') or '0')
if locked > 0 then
  if locked > now then
    return {0, tonumber(redis.call('HGET', key, 'count') or '0'), locked}
  end
  redis.call('DEL', key)
  locked = 0
end
local count = redis.call('HINCRBY', key, 'count', 1)
if count >= limit then
  locked = now + tonumber(ARGV[2])
  redis.call('HSET', key, 'locked_until', string.format('%d', locked))
end
redis.call('PEXPIRE', key, ARGV[4])
return {1, count, locked}
`)

// KEYS[1] session key; ARGV limit.
var releaseScript = redis.NewScript(`
local key = KEYS[1]
if redis.call('EXISTS', key) == 0 then
  return 0
end
local count = redis.call('HINCRBY', key, 'count', -1)
if count <= 0 then
  redis.call('DEL', key)
  return 0
end
if count < tonumber(ARGV[1]) then
  redis.call('HDEL', key, 'locked_until')
end
return count
`)

// RedisAttemptStore keeps records in Redis hashes updated by Lua scripts.
// Records expire with the session cookie.
type RedisAttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAttemptStore builds a Redis-backed store.
func NewRedisAttemptStore(client *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{client: client, ttl: sessionMaxAge}
}

func (s *RedisAttemptStore) Reserve(ctx context.Context, session string, limit int, lockout time.Duration, now time.Time) (AttemptRecord, bool, error) {
	res, err := reserveScript.Run(ctx, s.client, []string{attemptKeyPrefix + session},
		limit, lockout.Milliseconds(), now.UnixMilli(), s.ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return AttemptRecord{}, false, err
	}
	if len(res) != 3 {
		return AttemptRecord{}, false, fmt.Errorf("reserve attempt: unexpected reply %v", res)
	}
	rec := AttemptRecord{Count: int(res[1])}
	if res[2] > 0 {
		until := time.UnixMilli(res[2]).UTC()
		rec.LockedUntil = &until
	}
	return rec, res[0] == 1, nil
}

func (s *RedisAttemptStore) Release(ctx context.Context, session string, limit int) error {
	return releaseScript.Run(ctx, s.client, []string{attemptKeyPrefix + session}, limit).Err()
}

func (s *RedisAttemptStore) Clear(ctx context.Context, session string) error {
	return s.client.Del(ctx, attemptKeyPrefix+session).Err()
}

// MemoryAttemptStore is the process-local fallback used when Redis is
// unreachable and in tests.
type MemoryAttemptStore struct {
	mu      sync.Mutex
	records map[string]AttemptRecord
}

// NewMemoryAttemptStore builds an empty store.
func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{records: make(map[string]AttemptRecord)}
}

func (s *MemoryAttemptStore) Reserve(_ context.Context, session string, limit int, lockout time.Duration, now time.Time) (AttemptRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := reserveAttempt(s.records[session], limit, lockout, now)
	if ok {
		s.records[session] = rec
	}
	return rec, ok, nil
}

func (s *MemoryAttemptStore) Release(_ context.Context, session string, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[session]
	if !ok {
		return nil
	}
	rec.Count--
	if rec.Count <= 0 {
		delete(s.records, session)
		return nil
	}
	if rec.Count < limit {
		rec.LockedUntil = nil
	}
	s.records[session] = rec
	return nil
}

func (s *MemoryAttemptStore) Clear(_ context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, session)
	return nil
}
