package semaphore

import (
	"context"
	"errors"
	"time"
)

// DatabaseAdapter is the narrow CRUD surface a store exposes when it
// cannot implement Adapter's acquire-under-limit check natively.
// InsertSlot must perform the count-then-insert-under-limit test
// atomically (a single conditional SQL statement or Lua script) so that
// Promote's result upholds the semaphore capacity invariant under
// concurrent callers; Promote itself adds no extra synchronization.
type DatabaseAdapter interface {
	// InsertSlot inserts (key, slotId, exp) iff the number of unexpired
	// slots currently held under key is below limit. Returns
	// ErrKeyAlreadyExists if slotId is already held (live) under key;
	// returns (false, nil) if the limit is currently reached.
	InsertSlot(ctx context.Context, key, slotID string, limit int, exp time.Time) (bool, error)
	// UpdateSlot refreshes an existing (key, slotId) row's expiration,
	// used by Promote's Acquire to resurrect an expired slot row in
	// place of inserting a fresh one.
	UpdateSlot(ctx context.Context, key, slotID string, exp time.Time) (bool, error)
	// RemoveSlot deletes the (key, slotId) row. Returns whether a row
	// was removed.
	RemoveSlot(ctx context.Context, key, slotID string) (bool, error)
	// RemoveAllSlots deletes every row held under key.
	RemoveAllSlots(ctx context.Context, key string) (bool, error)
	// FindSlot looks up (key, slotId)'s expiration, or nil if absent.
	FindSlot(ctx context.Context, key, slotID string) (*time.Time, error)
	// FindState lists every row held under key, or nil if none.
	FindState(ctx context.Context, key string) (*State, error)
}

// Promote lifts a DatabaseAdapter into a full Adapter, collapsing the
// insert/conflict/find/expired-check/update sequence the same way
// pkg/lock.Promote does for single-owner locks, generalized to a
// per-slot row under a shared key.
func Promote(db DatabaseAdapter) Adapter {
	return &promoted{db: db}
}

type promoted struct {
	db DatabaseAdapter
}

func (p *promoted) Acquire(ctx context.Context, key, slotID string, limit int, ttl time.Duration) (bool, error) {
	exp := expiryFor(ttl)

	ok, err := p.db.InsertSlot(ctx, key, slotID, limit, exp)
	if err == nil {
		return ok, nil
	}
	if !errors.Is(err, ErrKeyAlreadyExists) {
		return false, err
	}

	// slotId already has a row; resurrect it only if expired, otherwise
	// this is a genuine reacquire-while-held and must fail.
	existing, findErr := p.db.FindSlot(ctx, key, slotID)
	if findErr != nil {
		return false, findErr
	}
	if existing == nil {
		return false, nil
	}
	if !existing.IsZero() && !existing.After(time.Now()) {
		return p.db.UpdateSlot(ctx, key, slotID, exp)
	}
	return false, nil
}

func (p *promoted) Release(ctx context.Context, key, slotID string) (bool, error) {
	return p.db.RemoveSlot(ctx, key, slotID)
}

func (p *promoted) ForceReleaseAll(ctx context.Context, key string) (bool, error) {
	return p.db.RemoveAllSlots(ctx, key)
}

func (p *promoted) Refresh(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error) {
	existing, err := p.db.FindSlot(ctx, key, slotID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	return p.db.UpdateSlot(ctx, key, slotID, expiryFor(ttl))
}

func (p *promoted) State(ctx context.Context, key string) (*State, error) {
	return p.db.FindState(ctx, key)
}

func expiryFor(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
