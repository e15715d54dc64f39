package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrKeyNotFound is returned by Get when the key does not exist.
	ErrKeyNotFound = errors.New("key not found")
	// ErrConflict is returned by Update when the watched key changed between read and write.
	ErrConflict = errors.New("concurrent modification")
)

// MutateFunc receives the current value of the watched key (nil when absent)
// and returns the full set of key/value pairs to write atomically.
// Returning an error aborts the update without writing anything.
type MutateFunc func(current []byte) (map[string][]byte, error)

// Cache defines the key/value operations interface following hexagonal architecture.
// This is a port that can be implemented by different providers (Redis, Memcached, etc.).
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound (wrapped) when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the specified key and TTL.
	// TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Update performs an optimistic read-modify-write guarded on key.
	// If key is modified by another client before the writes commit,
	// nothing is written and ErrConflict is returned.
	Update(ctx context.Context, key string, mutate MutateFunc) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Ping checks if the service is reachable.
	Ping(ctx context.Context) error

	// Close closes the connection.
	Close() error
}
