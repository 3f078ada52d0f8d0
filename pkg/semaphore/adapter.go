package semaphore

import (
	"context"
	"time"
)

// Slot describes one held slot in a State snapshot.
type Slot struct {
	SlotID     string
	Expiration time.Time // zero means never expires
}

// Expired reports whether s's expiration has passed. A zero Expiration
// never expires.
func (s Slot) Expired() bool {
	return !s.Expiration.IsZero() && !s.Expiration.After(time.Now())
}

// State is a snapshot of a semaphore key's occupancy.
type State struct {
	Limit         int
	AcquiredSlots []Slot
}

// Adapter is the full semaphore primitive contract a store must
// implement directly, or receive via Promote from a DatabaseAdapter.
type Adapter interface {
	// Acquire claims slotId under key, succeeding only if the number of
	// currently unexpired slots held under key is below limit.
	Acquire(ctx context.Context, key, slotID string, limit int, ttl time.Duration) (bool, error)
	// Release frees slotId under key. Returns false if no such slot was
	// held.
	Release(ctx context.Context, key, slotID string) (bool, error)
	// ForceReleaseAll deletes every slot held under key.
	ForceReleaseAll(ctx context.Context, key string) (bool, error)
	// Refresh extends slotId's expiration under key. Returns false if no
	// such slot was held.
	Refresh(ctx context.Context, key, slotID string, ttl time.Duration) (bool, error)
	// State reports key's current occupancy, or nil if nothing is held.
	State(ctx context.Context, key string) (*State, error)
}
