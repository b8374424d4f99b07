package assistant

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Session storage keys, mirroring the keys the web client keeps in browser
// storage. They exist only to avoid a remote round-trip on every session
// start and to gate the one-time welcome dialog.
const (
	KeyUserID       = "assistantUserId"
	KeyActive       = "assistantActive"
	KeyCategory     = "assistantSearchCategory"
	KeyCustomSearch = "assistantCustomSearch"
	KeyWelcomeShown = "assistantWelcomeShown"
)

// SessionStore is the storage port the controller persists its cached,
// non-authoritative session state through. The database stays
// authoritative; everything in here can be discarded and rebuilt.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemorySessionStore is an in-process SessionStore, used in tests and for
// single-process deployments.
type MemorySessionStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemorySessionStore creates an empty in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{values: make(map[string]string)}
}

func (s *MemorySessionStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemorySessionStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// RedisSessionStore keeps session state in Redis, namespaced per session so
// multiple browser sessions do not collide.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionStore creates a Redis-backed session store. sessionID
// namespaces the keys (one browser session each).
func NewRedisSessionStore(client *redis.Client, sessionID string) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		prefix: "assistant:session:" + sessionID + ":",
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get session key: %w", err)
	}
	return v, true, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set session key: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete session key: %w", err)
	}
	return nil
}

// Ensure implementations satisfy the port
var (
	_ SessionStore = (*MemorySessionStore)(nil)
	_ SessionStore = (*RedisSessionStore)(nil)
)
