// Package memory provides an in-process KeyValueStore for tests and one-shot sessions.
package memory

import (
	"context"
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/turtacn/cyberrisk/internal/domain/repository"
)

var _ repository.KeyValueStore = (*KVStore)(nil)

// KVStore keeps entries in a go-cache instance without expiration. A mutex
// serializes writers so that multi-key writes are observed together.
type KVStore struct {
	mu    sync.RWMutex
	cache *cache.Cache
}

// NewKVStore creates an empty store.
func NewKVStore() *KVStore {
	return &KVStore{cache: cache.New(cache.NoExpiration, 0)}
}

// Get returns the value stored at key.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, found := s.cache.Get(key)
	if !found {
		return "", false, nil
	}
	return v.(string), true, nil
}

// Set stores a single value.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

// SetMany stores every entry under one lock.
func (s *KVStore) SetMany(ctx context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range entries {
		s.cache.Set(k, v, cache.NoExpiration)
	}
	return nil
}

// Remove deletes keys under one lock.
func (s *KVStore) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		s.cache.Delete(k)
	}
	return nil
}

// Close is a no-op.
func (s *KVStore) Close() error {
	return nil
}
