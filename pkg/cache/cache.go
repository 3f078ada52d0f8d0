package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aegiskit/aegis/pkg/keyspace"
	"github.com/aegiskit/aegis/pkg/pipeline"
	"github.com/aegiskit/aegis/pkg/task"
	"github.com/aegiskit/aegis/pkg/xlog"
)

var defaultNamespace = keyspace.MustNew("cache")

// EventFunc receives every event a Cache operation dispatches.
type EventFunc func(event string, payload any)

// Cache is effectively immutable configuration wrapping an Adapter: a
// namespace, an optional default TTL, and an event callback. Every
// operation returns a *task.Task so callers can compose resilience
// middleware onto it before running it.
type Cache struct {
	adapter    Adapter
	namespace  *keyspace.Namespace
	defaultTTL time.Duration
	onEvent    EventFunc
	logger     xlog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithNamespace overrides the key namespace (default "cache").
func WithNamespace(ns *keyspace.Namespace) Option {
	return func(c *Cache) { c.namespace = ns }
}

// WithDefaultTTL sets the TTL used by operations that accept no
// explicit one. Zero means no expiration.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.defaultTTL = ttl }
}

// WithEventFunc registers a callback invoked on every dispatched event.
func WithEventFunc(fn EventFunc) Option {
	return func(c *Cache) { c.onEvent = fn }
}

// WithLogger attaches a Logger that records every dispatched event at
// Debug level, independent of any WithEventFunc callback.
func WithLogger(logger xlog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New builds a Cache over adapter.
func New(adapter Adapter, opts ...Option) (*Cache, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}
	c := &Cache{adapter: adapter, namespace: defaultNamespace}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Cache) emit(event string, payload any) {
	if c.logger != nil {
		c.logger.Debug(context.Background(), "cache event",
			slog.String(xlog.KeyComponent, "cache"),
			slog.String(xlog.KeyOperation, event),
		)
	}
	if c.onEvent != nil {
		c.onEvent(event, payload)
	}
}

func (c *Cache) prefixed(key string) (string, error) {
	ns := c.namespace
	if ns == nil {
		ns = defaultNamespace
	}
	k, err := ns.NewKey(key)
	if err != nil {
		return "", err
	}
	return k.Prefixed(), nil
}

func (c *Cache) ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return c.defaultTTL
}

// Get returns the raw bytes at key, or (nil, false) if absent or
// expired.
func (c *Cache) Get(key string) *task.Task[GetResult] {
	return task.New(func(ctx *pipeline.Ctx) (GetResult, error) {
		if key == "" {
			return GetResult{}, ErrEmptyKey
		}
		pk, err := c.prefixed(key)
		if err != nil {
			return GetResult{}, err
		}
		val, ok, err := c.adapter.Get(ctx, pk)
		if err != nil {
			return GetResult{}, err
		}
		if ok {
			c.emit(EventHit, key)
		} else {
			c.emit(EventMiss, key)
		}
		return GetResult{Value: val, Found: ok}, nil
	})
}

// GetResult is Get's return value: the raw bytes and whether key was
// found.
type GetResult struct {
	Value []byte
	Found bool
}

// GetOr returns the value at key, or defaultValue if absent.
func (c *Cache) GetOr(key string, defaultValue []byte) *task.Task[[]byte] {
	return task.New(func(ctx *pipeline.Ctx) ([]byte, error) {
		res, err := c.Get(key).Run(ctx)
		if err != nil {
			return nil, err
		}
		if !res.Found {
			return defaultValue, nil
		}
		return res.Value, nil
	})
}

// GetOrFail returns the value at key, failing with ErrKeyNotFound if
// absent.
func (c *Cache) GetOrFail(key string) *task.Task[[]byte] {
	return task.New(func(ctx *pipeline.Ctx) ([]byte, error) {
		res, err := c.Get(key).Run(ctx)
		if err != nil {
			return nil, err
		}
		if !res.Found {
			return nil, ErrKeyNotFound
		}
		return res.Value, nil
	})
}

// GetAndRemove atomically reads and deletes key.
func (c *Cache) GetAndRemove(key string) *task.Task[GetResult] {
	return task.New(func(ctx *pipeline.Ctx) (GetResult, error) {
		if key == "" {
			return GetResult{}, ErrEmptyKey
		}
		pk, err := c.prefixed(key)
		if err != nil {
			return GetResult{}, err
		}
		val, ok, err := c.adapter.GetAndRemove(ctx, pk)
		if err != nil {
			return GetResult{}, err
		}
		if ok {
			c.emit(EventHit, key)
			c.emit(EventRemoved, key)
		} else {
			c.emit(EventMiss, key)
		}
		return GetResult{Value: val, Found: ok}, nil
	})
}

// GetOrAdd returns the current value at key, or computes it via load,
// stores it with ttl, and returns it if absent.
func (c *Cache) GetOrAdd(key string, ttl time.Duration, load func(ctx *pipeline.Ctx) ([]byte, error)) *task.Task[[]byte] {
	return task.New(func(ctx *pipeline.Ctx) ([]byte, error) {
		res, err := c.Get(key).Run(ctx)
		if err != nil {
			return nil, err
		}
		if res.Found {
			return res.Value, nil
		}
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := c.Add(key, val, ttl).Run(ctx); err != nil {
			return nil, err
		}
		return val, nil
	})
}

// Add stores value at key only if absent (or expired).
func (c *Cache) Add(key string, value []byte, ttl time.Duration) *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		if key == "" {
			return false, ErrEmptyKey
		}
		pk, err := c.prefixed(key)
		if err != nil {
			return false, err
		}
		ok, err := c.adapter.Add(ctx, pk, value, c.ttlOrDefault(ttl))
		if err != nil {
			return false, err
		}
		if ok {
			c.emit(EventWritten, key)
		}
		return ok, nil
	})
}

// Put stores value at key unconditionally (replace-or-add).
func (c *Cache) Put(key string, value []byte, ttl time.Duration) *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		if key == "" {
			return false, ErrEmptyKey
		}
		pk, err := c.prefixed(key)
		if err != nil {
			return false, err
		}
		replaced, err := c.adapter.Put(ctx, pk, value, c.ttlOrDefault(ttl))
		if err != nil {
			return false, err
		}
		if replaced {
			c.emit(EventUpdated, key)
		} else {
			c.emit(EventWritten, key)
		}
		return replaced, nil
	})
}

// Update replaces value at key only if currently present.
func (c *Cache) Update(key string, value []byte, ttl time.Duration) *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		if key == "" {
			return false, ErrEmptyKey
		}
		pk, err := c.prefixed(key)
		if err != nil {
			return false, err
		}
		ok, err := c.adapter.Update(ctx, pk, value, c.ttlOrDefault(ttl))
		if err != nil {
			return false, err
		}
		if ok {
			c.emit(EventUpdated, key)
		}
		return ok, nil
	})
}

// Remove deletes key.
func (c *Cache) Remove(key string) *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		if key == "" {
			return false, ErrEmptyKey
		}
		pk, err := c.prefixed(key)
		if err != nil {
			return false, err
		}
		ok, err := c.adapter.Remove(ctx, pk)
		if err != nil {
			return false, err
		}
		if ok {
			c.emit(EventRemoved, key)
		}
		return ok, nil
	})
}

// RemoveMany deletes every key in keys.
func (c *Cache) RemoveMany(keys []string) *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		prefixed := make([]string, len(keys))
		for i, k := range keys {
			pk, err := c.prefixed(k)
			if err != nil {
				return false, err
			}
			prefixed[i] = pk
		}
		ok, err := c.adapter.RemoveMany(ctx, prefixed)
		if err != nil {
			return false, err
		}
		if ok {
			c.emit(EventRemoved, keys)
		}
		return ok, nil
	})
}

// RemoveAll clears every key this cache manages.
func (c *Cache) RemoveAll() *task.Task[struct{}] {
	return task.New(func(ctx *pipeline.Ctx) (struct{}, error) {
		if err := c.adapter.RemoveAll(ctx); err != nil {
			return struct{}{}, err
		}
		c.emit(EventCleared, nil)
		return struct{}{}, nil
	})
}

// RemoveByKeyPrefix deletes every key with the given (unprefixed-by-
// namespace) prefix, returning how many were removed.
func (c *Cache) RemoveByKeyPrefix(prefix string) *task.Task[int] {
	return task.New(func(ctx *pipeline.Ctx) (int, error) {
		pk, err := c.prefixed(prefix)
		if err != nil {
			return 0, err
		}
		n, err := c.adapter.RemoveByKeyPrefix(ctx, pk)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			c.emit(EventRemoved, prefix)
		}
		return n, nil
	})
}

// Increment atomically adds delta to the integer at key (creating it at
// delta if absent) and returns the new value.
func (c *Cache) Increment(key string, delta int64, ttl time.Duration) *task.Task[int64] {
	return task.New(func(ctx *pipeline.Ctx) (int64, error) {
		if key == "" {
			return 0, ErrEmptyKey
		}
		pk, err := c.prefixed(key)
		if err != nil {
			return 0, err
		}
		n, err := c.adapter.Increment(ctx, pk, delta, c.ttlOrDefault(ttl))
		if err != nil {
			return 0, err
		}
		c.emit(EventUpdated, key)
		return n, nil
	})
}

// Decrement is Increment with -delta.
func (c *Cache) Decrement(key string, delta int64, ttl time.Duration) *task.Task[int64] {
	return c.Increment(key, -delta, ttl)
}

// GetJSON fetches key and unmarshals it into a value of type T.
func GetJSON[T any](c *Cache, key string) *task.Task[T] {
	return task.New(func(ctx *pipeline.Ctx) (T, error) {
		var zero T
		raw, err := c.GetOrFail(key).Run(ctx)
		if err != nil {
			return zero, err
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return zero, err
		}
		return v, nil
	})
}

// PutJSON marshals value as JSON and stores it at key.
func PutJSON[T any](c *Cache, key string, value T, ttl time.Duration) *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		raw, err := json.Marshal(value)
		if err != nil {
			return false, err
		}
		return c.Put(key, raw, ttl).Run(ctx)
	})
}
