package cachememory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/aegiskit/aegis/pkg/cache"
)

// Ristretto is a cache.Adapter backed by dgraph-io/ristretto/v2, with
// native per-key TTL via SetWithTTL. Prefix scan and key enumeration
// (RemoveByKeyPrefix, Increment's read-modify-write) require tracking
// live keys separately since Ristretto itself does not expose an
// iterator.
type Ristretto struct {
	mu    sync.Mutex
	cache *ristretto.Cache[string, []byte]
	keys  map[string]struct{}
}

// RistrettoConfig mirrors the subset of ristretto.Config exposed as
// tunables.
type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// DefaultRistrettoConfig matches ristretto's own recommended defaults.
func DefaultRistrettoConfig() RistrettoConfig {
	return RistrettoConfig{NumCounters: 1e7, MaxCost: 1 << 30, BufferItems: 64}
}

// NewRistretto builds a Ristretto adapter from cfg.
func NewRistretto(cfg RistrettoConfig) (*Ristretto, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &Ristretto{cache: c, keys: make(map[string]struct{})}, nil
}

var _ cache.Adapter = (*Ristretto)(nil)

func (a *Ristretto) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := a.cache.Get(key)
	return val, ok, nil
}

func (a *Ristretto) GetAndRemove(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := a.cache.Get(key)
	if ok {
		a.cache.Del(key)
		a.mu.Lock()
		delete(a.keys, key)
		a.mu.Unlock()
	}
	return val, ok, nil
}

func (a *Ristretto) Add(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if _, ok := a.cache.Get(key); ok {
		return false, nil
	}
	a.set(key, value, ttl)
	return true, nil
}

func (a *Ristretto) Put(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	_, existed := a.cache.Get(key)
	a.set(key, value, ttl)
	return existed, nil
}

func (a *Ristretto) Update(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if _, ok := a.cache.Get(key); !ok {
		return false, nil
	}
	a.set(key, value, ttl)
	return true, nil
}

func (a *Ristretto) set(key string, value []byte, ttl time.Duration) {
	cost := int64(len(value))
	if ttl > 0 {
		a.cache.SetWithTTL(key, value, cost, ttl)
	} else {
		a.cache.Set(key, value, cost)
	}
	a.cache.Wait()
	a.mu.Lock()
	a.keys[key] = struct{}{}
	a.mu.Unlock()
}

func (a *Ristretto) Remove(_ context.Context, key string) (bool, error) {
	_, existed := a.cache.Get(key)
	a.cache.Del(key)
	a.mu.Lock()
	delete(a.keys, key)
	a.mu.Unlock()
	return existed, nil
}

func (a *Ristretto) RemoveMany(ctx context.Context, keys []string) (bool, error) {
	removed := false
	for _, k := range keys {
		ok, err := a.Remove(ctx, k)
		if err != nil {
			return false, err
		}
		removed = removed || ok
	}
	return removed, nil
}

func (a *Ristretto) RemoveAll(_ context.Context) error {
	a.cache.Clear()
	a.mu.Lock()
	a.keys = make(map[string]struct{})
	a.mu.Unlock()
	return nil
}

func (a *Ristretto) RemoveByKeyPrefix(ctx context.Context, prefix string) (int, error) {
	a.mu.Lock()
	var matches []string
	for k := range a.keys {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			matches = append(matches, k)
		}
	}
	a.mu.Unlock()

	n := 0
	for _, k := range matches {
		if ok, err := a.Remove(ctx, k); err == nil && ok {
			n++
		}
	}
	return n, nil
}

func (a *Ristretto) Increment(_ context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var current int64
	if val, ok := a.cache.Get(key); ok {
		n, err := strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			return 0, cache.ErrNotInteger
		}
		current = n
	}
	current += delta
	raw := []byte(strconv.FormatInt(current, 10))
	if ttl > 0 {
		a.cache.SetWithTTL(key, raw, int64(len(raw)), ttl)
	} else {
		a.cache.Set(key, raw, int64(len(raw)))
	}
	a.cache.Wait()
	a.keys[key] = struct{}{}
	return current, nil
}
