package cache

import (
	"context"
	"time"
)

// Adapter is the full cache primitive contract a store must implement.
// Values are opaque bytes; Cache's typed Get/Put helpers marshal through
// pkg/serde so the same Adapter serves any payload type.
type Adapter interface {
	// Get returns the value stored at key, or (nil, false) if absent or
	// expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// GetAndRemove atomically reads and deletes key.
	GetAndRemove(ctx context.Context, key string) ([]byte, bool, error)
	// Add stores value at key only if key is currently absent (or
	// expired). Returns whether the write happened.
	Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Put stores value at key unconditionally. Returns true if it
	// replaced a live value, false if key was previously absent.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Update replaces value at key only if key is currently present
	// (and unexpired). Returns whether the write happened.
	Update(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Remove deletes key. Returns whether a value was removed.
	Remove(ctx context.Context, key string) (bool, error)
	// RemoveMany deletes every key in keys. Returns whether at least one
	// was removed.
	RemoveMany(ctx context.Context, keys []string) (bool, error)
	// RemoveAll clears every key this adapter manages.
	RemoveAll(ctx context.Context) error
	// RemoveByKeyPrefix deletes every key with the given prefix.
	RemoveByKeyPrefix(ctx context.Context, prefix string) (int, error)
	// Increment atomically adds delta to the integer stored at key,
	// creating it at delta if absent, and returns the new value.
	// Returns ErrNotInteger if the stored value cannot be parsed as one.
	Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
}
