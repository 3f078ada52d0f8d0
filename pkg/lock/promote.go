package lock

import (
	"context"
	"errors"
	"time"
)

// DatabaseAdapter is the narrower CRUD contract a plain key-value or SQL
// table can offer. Promote lifts it to a full Adapter.
type DatabaseAdapter interface {
	// Insert creates a new record. It must return an error satisfying
	// errors.Is(err, ErrKeyAlreadyExists) on a unique-key conflict so
	// Promote can distinguish that case from any other failure.
	Insert(ctx context.Context, key, owner string, exp time.Time) error

	// Update overwrites the record for key with (owner, exp) and reports
	// whether a row was actually changed. Callers only invoke this after
	// confirming via Find that the existing record is expired, so
	// implementations may perform this unconditionally or, for true
	// compare-and-set safety under concurrent promotion, condition it on
	// the expiration observed at Find time.
	Update(ctx context.Context, key, owner string, exp time.Time) (bool, error)

	// Remove deletes the record iff it is owned by owner, reporting
	// whether anything was removed.
	Remove(ctx context.Context, key, owner string) (bool, error)

	// RemoveUnowned deletes the record for key regardless of owner.
	RemoveUnowned(ctx context.Context, key string) (bool, error)

	// Refresh extends the record's expiration iff it is owned by owner
	// and its expiration is non-null, returning the tri-state outcome.
	Refresh(ctx context.Context, key, owner string, exp time.Time) (RefreshResult, error)

	// Find returns the current record for key, or nil if absent.
	Find(ctx context.Context, key string) (*State, error)
}

type promoted struct {
	db DatabaseAdapter
}

// Promote lifts a DatabaseAdapter to a full Adapter using the insert/
// find/compare-and-set collapse: try an insert; on a unique-key
// conflict, re-find the row; if it is unexpired, the lock is held live
// and acquisition fails; if it is expired, update it in place and report
// whether the update succeeded. This covers the three possible states
// (absent, expired, live) without requiring a cross-statement
// transaction from the backend.
func Promote(db DatabaseAdapter) Adapter {
	return &promoted{db: db}
}

func (p *promoted) Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	exp := expiryFor(ttl)
	err := p.db.Insert(ctx, key, owner, exp)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, ErrKeyAlreadyExists) {
		return false, err
	}

	st, ferr := p.db.Find(ctx, key)
	if ferr != nil {
		return false, ferr
	}
	if st == nil {
		// Raced with a concurrent release between Insert and Find; the
		// caller may retry.
		return false, nil
	}
	if !st.Expired() {
		return false, nil
	}
	return p.db.Update(ctx, key, owner, exp)
}

func (p *promoted) Release(ctx context.Context, key, owner string) (ReleaseResult, error) {
	st, err := p.db.Find(ctx, key)
	if err != nil {
		return NotFound, err
	}
	if st == nil {
		return NotFound, nil
	}
	if st.Owner != owner {
		return UnownedRelease, nil
	}
	removed, err := p.db.Remove(ctx, key, owner)
	if err != nil {
		return NotFound, err
	}
	if !removed {
		return NotFound, nil
	}
	return Released, nil
}

func (p *promoted) ForceRelease(ctx context.Context, key string) (bool, error) {
	return p.db.RemoveUnowned(ctx, key)
}

func (p *promoted) Refresh(ctx context.Context, key, owner string, ttl time.Duration) (RefreshResult, error) {
	return p.db.Refresh(ctx, key, owner, expiryFor(ttl))
}

func (p *promoted) State(ctx context.Context, key string) (*State, error) {
	return p.db.Find(ctx, key)
}

func expiryFor(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
