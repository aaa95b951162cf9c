// Package cache provides pluggable response caching for remote API clients.
//
// The scoring pipeline is fetch-heavy: every record touches up to three
// remote APIs. Caching responses keeps repeated runs over the same manifest
// cheap and avoids burning rate limits. Three backends are provided:
//
//   - FileCache: directory-backed, survives process restarts (CLI default)
//   - MemoryCache: bounded in-process LRU, for single-run batches
//   - RedisCache: shared cache for running the scorer on several machines
//   - NullCache: disables caching entirely
//
// Keys are opaque strings; backends hash them as needed. All backends are
// safe for concurrent use.
package cache

import (
	"context"
	"errors"
	"time"
)

// TTLDefault is the default time-to-live for cached API responses.
const TTLDefault = 24 * time.Hour

// ErrCacheMiss is returned by backends that distinguish miss from failure.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}
