package cache

import (
	"context"
	"time"
)

// Store is the shared cache backend used by the distributed field tier. Two
// implementations exist: the Redis client and a database-backed fallback for
// deployments without Redis.
//
// A store that is not currently reachable reports Ready() == false; callers
// treat that as a normal degraded state, not an error.
type Store interface {
	// Get retrieves a single value. The boolean reports presence.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// GetMany retrieves a batch of keys in one round trip. Missing keys have
	// no entry in the result.
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set stores a value with the supplied TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetMany stores a batch of values, applying the TTL to every key.
	SetMany(ctx context.Context, values map[string][]byte, ttl time.Duration) error

	// Exists counts how many of the supplied keys are present.
	Exists(ctx context.Context, keys ...string) (int64, error)

	// Delete removes keys, ignoring ones that do not exist.
	Delete(ctx context.Context, keys ...string) error

	// Keys expands a glob pattern to the concrete keys matching it.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Ping probes connectivity.
	Ping(ctx context.Context) error

	// Ready reports whether the backend is currently usable.
	Ready() bool
}
