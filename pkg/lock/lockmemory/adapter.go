// Package lockmemory implements an in-process lock.Adapter over a
// per-key striped mutex, for single-instance operation, tests, and as a
// concrete default before wiring a distributed backend.
package lockmemory

import (
	"context"
	"sync"
	"time"

	"github.com/aegiskit/aegis/pkg/lock"
	"github.com/aegiskit/aegis/pkg/xkeylock"
)

type record struct {
	owner string
	exp   time.Time
}

func (r *record) expired() bool {
	return !r.exp.IsZero() && !time.Now().Before(r.exp)
}

// Adapter is a lock.Adapter backed by an in-process map. Per-key
// critical sections are serialized through a xkeylock.KeyLock rather
// than one adapter-wide mutex, so unrelated keys never contend.
type Adapter struct {
	keys    xkeylock.KeyLock
	records sync.Map // map[string]*record
}

// New builds an empty Adapter.
func New() *Adapter {
	return &Adapter{keys: xkeylock.New()}
}

var _ lock.Adapter = (*Adapter)(nil)

func (a *Adapter) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	h, err := a.keys.Acquire(ctx, key)
	if err != nil {
		return false, err
	}
	defer h.Unlock()

	if v, ok := a.records.Load(key); ok {
		if rec := v.(*record); !rec.expired() {
			return false, nil
		}
	}
	a.records.Store(key, &record{owner: owner, exp: expiryFor(ttl)})
	return true, nil
}

func (a *Adapter) Release(ctx context.Context, key, owner string) (lock.ReleaseResult, error) {
	h, err := a.keys.Acquire(ctx, key)
	if err != nil {
		return lock.NotFound, err
	}
	defer h.Unlock()

	v, ok := a.records.Load(key)
	if !ok {
		return lock.NotFound, nil
	}
	if v.(*record).owner != owner {
		return lock.UnownedRelease, nil
	}
	a.records.Delete(key)
	return lock.Released, nil
}

func (a *Adapter) ForceRelease(ctx context.Context, key string) (bool, error) {
	h, err := a.keys.Acquire(ctx, key)
	if err != nil {
		return false, err
	}
	defer h.Unlock()

	if _, ok := a.records.Load(key); !ok {
		return false, nil
	}
	a.records.Delete(key)
	return true, nil
}

func (a *Adapter) Refresh(ctx context.Context, key, owner string, ttl time.Duration) (lock.RefreshResult, error) {
	h, err := a.keys.Acquire(ctx, key)
	if err != nil {
		return lock.RefreshUnowned, err
	}
	defer h.Unlock()

	v, ok := a.records.Load(key)
	if !ok {
		return lock.RefreshUnowned, nil
	}
	rec := v.(*record)
	if rec.owner != owner {
		return lock.RefreshUnowned, nil
	}
	if rec.exp.IsZero() {
		return lock.RefreshUnexpirable, nil
	}
	rec.exp = expiryFor(ttl)
	return lock.Refreshed, nil
}

func (a *Adapter) State(_ context.Context, key string) (*lock.State, error) {
	v, ok := a.records.Load(key)
	if !ok {
		return nil, nil
	}
	rec := v.(*record)
	return &lock.State{Owner: rec.owner, Expiration: rec.exp}, nil
}

func expiryFor(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
