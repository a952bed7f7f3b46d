package repository

import "context"

// KeyValueStore is durable string key/value persistence for client-side state.
// SetMany and Remove with several keys are atomic: either every key is written
// (or cleared) or none is.
type KeyValueStore interface {
	// Get returns the value stored at key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores a single value.
	Set(ctx context.Context, key, value string) error

	// SetMany stores every entry in one atomic write.
	SetMany(ctx context.Context, entries map[string]string) error

	// Remove deletes the given keys atomically. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error

	// Close releases the underlying resources.
	Close() error
}
