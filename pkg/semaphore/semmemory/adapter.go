// Package semmemory implements an in-process semaphore.Adapter over a
// per-key striped mutex, for single-instance operation, tests, and as a
// concrete default before wiring a distributed backend.
package semmemory

import (
	"context"
	"sync"
	"time"

	"github.com/aegiskit/aegis/pkg/semaphore"
	"github.com/aegiskit/aegis/pkg/xkeylock"
)

type slot struct {
	exp time.Time
}

func (s *slot) expired() bool {
	return !s.exp.IsZero() && !time.Now().Before(s.exp)
}

type keyEntry struct {
	limit int
	slots map[string]*slot
}

// Adapter is a semaphore.Adapter backed by an in-process map of
// key → (limit, slotId → slot). Each key's (limit, slots) entry is its
// own critical section, serialized through a xkeylock.KeyLock rather
// than one adapter-wide mutex.
type Adapter struct {
	keys  xkeylock.KeyLock
	store sync.Map // map[string]*keyEntry
}

// New builds an empty Adapter.
func New() *Adapter {
	return &Adapter{keys: xkeylock.New()}
}

var _ semaphore.Adapter = (*Adapter)(nil)

func (a *Adapter) Acquire(ctx context.Context, key, slotID string, limit int, ttl time.Duration) (bool, error) {
	h, err := a.keys.Acquire(ctx, key)
	if err != nil {
		return false, err
	}
	defer h.Unlock()

	entry := a.entry(key)
	entry.limit = limit

	if existing, ok := entry.slots[slotID]; ok && !existing.expired() {
		return false, nil
	}
	if liveCount(entry.slots, slotID) >= limit {
		return false, nil
	}
	entry.slots[slotID] = &slot{exp: expiryFor(ttl)}
	return true, nil
}

func (a *Adapter) entry(key string) *keyEntry {
	v, _ := a.store.LoadOrStore(key, &keyEntry{slots: make(map[string]*slot)})
	return v.(*keyEntry)
}

// liveCount counts unexpired slots excluding excludeSlotID (the slot a
// resurrect-on-acquire is about to overwrite, if any).
func liveCount(slots map[string]*slot, excludeSlotID string) int {
	n := 0
	for id, s := range slots {
		if id == excludeSlotID {
			continue
		}
		if !s.expired() {
			n++
		}
	}
	return n
}

func (a *Adapter) Release(ctx context.Context, key, slotID string) (bool, error) {
	h, err := a.keys.Acquire(ctx, key)
	if err != nil {
		return false, err
	}
	defer h.Unlock()

	v, ok := a.store.Load(key)
	if !ok {
		return false, nil
	}
	entry := v.(*keyEntry)
	if _, ok := entry.slots[slotID]; !ok {
		return false, nil
	}
	delete(entry.slots, slotID)
	if len(entry.slots) == 0 {
		a.store.Delete(key)
	}
	return true, nil
}

func (a *Adapter) ForceReleaseAll(ctx context.Context, key string) (bool, error) {
	h, err := a.keys.Acquire(ctx, key)
	if err != nil {
		return false, err
	}
	defer h.Unlock()

	if _, ok := a.store.Load(key); !ok {
		return false, nil
	}
	a.store.Delete(key)
	return true, nil
}

func (a *Adapter) Refresh(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error) {
	h, err := a.keys.Acquire(ctx, key)
	if err != nil {
		return false, err
	}
	defer h.Unlock()

	v, ok := a.store.Load(key)
	if !ok {
		return false, nil
	}
	s, ok := v.(*keyEntry).slots[slotID]
	if !ok {
		return false, nil
	}
	s.exp = expiryFor(ttl)
	return true, nil
}

func (a *Adapter) State(_ context.Context, key string) (*semaphore.State, error) {
	v, ok := a.store.Load(key)
	if !ok {
		return nil, nil
	}
	entry := v.(*keyEntry)
	st := &semaphore.State{Limit: entry.limit}
	for id, s := range entry.slots {
		st.AcquiredSlots = append(st.AcquiredSlots, semaphore.Slot{SlotID: id, Expiration: s.exp})
	}
	return st, nil
}

func expiryFor(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
