// Package cachememory implements cache.Adapter over two in-process
// backends: an LRU (github.com/hashicorp/golang-lru/v2) for bounded
// strict-recency eviction, and a Ristretto
// (github.com/dgraph-io/ristretto/v2) cost-aware cache for
// high-throughput workloads, offered side by side behind the same
// interface.
package cachememory

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aegiskit/aegis/pkg/cache"
)

type entry struct {
	value []byte
	exp   time.Time
}

func (e entry) expired() bool {
	return !e.exp.IsZero() && !time.Now().Before(e.exp)
}

// LRU is a cache.Adapter backed by a fixed-size hashicorp/golang-lru/v2
// cache. golang-lru has no native per-entry TTL, so LRU stores the
// expiration alongside the value and checks it lazily on read.
type LRU struct {
	mu    sync.Mutex
	cache *lru.Cache[string, entry]
}

// NewLRU builds an LRU adapter holding at most size entries.
func NewLRU(size int) (*LRU, error) {
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: c}, nil
}

var _ cache.Adapter = (*LRU)(nil)

func (a *LRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.cache.Get(key)
	if !ok || e.expired() {
		if ok {
			a.cache.Remove(key)
		}
		return nil, false, nil
	}
	return e.value, true, nil
}

func (a *LRU) GetAndRemove(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok, err := a.Get(ctx, key)
	if err != nil || !ok {
		return val, ok, err
	}
	a.mu.Lock()
	a.cache.Remove(key)
	a.mu.Unlock()
	return val, true, nil
}

func (a *LRU) Add(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.cache.Get(key); ok && !e.expired() {
		return false, nil
	}
	a.cache.Add(key, entry{value: value, exp: expiryFor(ttl)})
	return true, nil
}

func (a *LRU) Put(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, existed := a.cache.Get(key)
	replacing := existed && !e.expired()
	a.cache.Add(key, entry{value: value, exp: expiryFor(ttl)})
	return replacing, nil
}

func (a *LRU) Update(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.cache.Get(key)
	if !ok || e.expired() {
		return false, nil
	}
	a.cache.Add(key, entry{value: value, exp: expiryFor(ttl)})
	return true, nil
}

func (a *LRU) Remove(_ context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cache.Remove(key), nil
}

func (a *LRU) RemoveMany(_ context.Context, keys []string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	removed := false
	for _, k := range keys {
		if a.cache.Remove(k) {
			removed = true
		}
	}
	return removed, nil
}

func (a *LRU) RemoveAll(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache.Purge()
	return nil
}

func (a *LRU) RemoveByKeyPrefix(_ context.Context, prefix string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := 0
	for _, k := range a.cache.Keys() {
		if strings.HasPrefix(k, prefix) {
			if a.cache.Remove(k) {
				n++
			}
		}
	}
	return n, nil
}

func (a *LRU) Increment(_ context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.cache.Get(key)
	var current int64
	exp := expiryFor(ttl)
	if ok && !e.expired() {
		exp = e.exp
		n, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return 0, cache.ErrNotInteger
		}
		current = n
	}
	current += delta
	a.cache.Add(key, entry{value: []byte(strconv.FormatInt(current, 10)), exp: exp})
	return current, nil
}

// Sweep scans every entry and evicts the ones that have expired,
// returning how many were removed. golang-lru never does this on its
// own; without Sweep, an expired key nobody reads again sits in the
// cache (and counts against size) until evicted by recency.
func (a *LRU) Sweep(context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := 0
	for _, k := range a.cache.Keys() {
		if e, ok := a.cache.Peek(k); ok && e.expired() {
			a.cache.Remove(k)
			n++
		}
	}
	return n, nil
}

func expiryFor(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
