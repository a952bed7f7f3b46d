// Package redis provides a Redis-backed KeyValueStore, letting several client
// processes share one session.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/cyberrisk/internal/domain/repository"
)

var _ repository.KeyValueStore = (*KVStore)(nil)

// KVStore stores each key under namespace+key with no TTL.
type KVStore struct {
	client    redis.UniversalClient
	namespace string
}

// NewKVStore wraps client. namespace is prepended to every key as a hash tag,
// so all keys of a store land in the same cluster slot and multi-key DEL and
// MULTI/EXEC stay valid in cluster mode.
func NewKVStore(client redis.UniversalClient, namespace string) *KVStore {
	return &KVStore{client: client, namespace: hashTagged(namespace)}
}

// hashTagged turns "cyberrisk:" into "{cyberrisk}:". A namespace that already
// carries a non-empty {tag} is kept as is.
func hashTagged(namespace string) string {
	if open := strings.IndexByte(namespace, '{'); open >= 0 {
		if end := strings.IndexByte(namespace[open+1:], '}'); end > 0 {
			return namespace
		}
	}
	tag := strings.Trim(namespace, "{}:")
	if tag == "" {
		tag = "session"
	}
	return "{" + tag + "}:"
}

func (s *KVStore) key(k string) string {
	return s.namespace + k
}

// Get returns the value stored at key.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil // Not found is not an error
		}
		return "", false, fmt.Errorf("failed to get %q from redis: %w", key, err)
	}
	return val, true, nil
}

// Set stores a single value.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %q in redis: %w", key, err)
	}
	return nil
}

// SetMany writes every entry inside MULTI/EXEC.
func (s *KVStore) SetMany(ctx context.Context, entries map[string]string) error {
	pipe := s.client.TxPipeline()
	for k, v := range entries {
		pipe.Set(ctx, s.key(k), v, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute redis transaction for set: %w", err)
	}
	return nil
}

// Remove deletes keys with a single DEL.
func (s *KVStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys from redis: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *KVStore) Close() error {
	return s.client.Close()
}
