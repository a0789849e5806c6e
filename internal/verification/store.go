package verification

import (
	"context"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// CodeStore holds verification codes and attempt counters with expiry.
// Implementations must treat a missing key as expired, not as an error.
type CodeStore interface {
	Put(ctx context.Context, key, code string, ttl time.Duration) error
	// Get returns the stored code, or "" if the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// IncrAttempts bumps the attempt counter for key and returns the new
	// value. The counter expires with the same ttl as the code.
	IncrAttempts(ctx context.Context, key string, ttl time.Duration) (int, error)
}

// RedisStore backs CodeStore with Redis TTL keys.
type RedisStore struct {
	client *goredis.Client
}

// NewRedisStore creates a Redis-backed code store.
func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, key, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, code, ttl).Err(); err != nil {
		return err
	}
	// Reset attempts whenever a fresh code is issued.
	return s.client.Del(ctx, key+":attempts").Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key, key+":attempts").Err()
}

func (s *RedisStore) IncrAttempts(ctx context.Context, key string, ttl time.Duration) (int, error) {
	attemptsKey := key + ":attempts"
	n, err := s.client.Incr(ctx, attemptsKey).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.client.Expire(ctx, attemptsKey, ttl).Err(); err != nil {
			return int(n), err
		}
	}
	return int(n), nil
}

type memoryEntry struct {
	code      string
	attempts  int
	expiresAt time.Time
}

// MemoryStore is an in-process CodeStore for tests and single-node use.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an in-memory code store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry), now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &memoryEntry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	if e == nil {
		return "", nil
	}
	return e.code, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) IncrAttempts(_ context.Context, key string, _ time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(key)
	if e == nil {
		return 1, nil
	}
	e.attempts++
	return e.attempts, nil
}

// live returns the entry for key, pruning it first if expired. Caller holds mu.
func (s *MemoryStore) live(key string) *memoryEntry {
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil
	}
	return e
}
