package lock

import (
	"context"
	"time"
)

// State is the persisted record for a held lock, as reported by
// Adapter.State. A nil *State means no record exists for the key.
type State struct {
	Owner      string
	Expiration time.Time
}

// Expired reports whether the record's expiration has passed. A zero
// Expiration means no TTL was set (never expires).
func (s *State) Expired() bool {
	if s == nil || s.Expiration.IsZero() {
		return false
	}
	return !time.Now().Before(s.Expiration)
}

// Adapter is the full primitive contract a lock backend implements
// directly. Backends that only offer CRUD implement DatabaseAdapter
// instead and call Promote.
type Adapter interface {
	// Acquire stores (key, owner, ttl) iff the key is absent or its
	// existing record has expired. It returns whether the lock was
	// acquired; false with a nil error means the key is held live by
	// another owner.
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)

	// Release removes the record iff it is owned by owner.
	Release(ctx context.Context, key, owner string) (ReleaseResult, error)

	// ForceRelease removes the record regardless of owner, reporting
	// whether anything was removed.
	ForceRelease(ctx context.Context, key string) (bool, error)

	// Refresh extends the record's expiration iff it is owned by owner
	// and has an expiration to extend.
	Refresh(ctx context.Context, key, owner string, ttl time.Duration) (RefreshResult, error)

	// State returns the current record for key, or nil if absent.
	State(ctx context.Context, key string) (*State, error)
}
