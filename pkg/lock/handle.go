package lock

import (
	"context"
	"errors"
	"time"

	"github.com/aegiskit/aegis/pkg/pipeline"
	"github.com/aegiskit/aegis/pkg/task"
)

// Handle represents one mint of a lock: a (key, owner) pair a caller can
// acquire, release, refresh, and run work under. Every operation is
// exposed as a *task.Task so a caller can compose retry, timeout, or any
// other middleware onto it before running it.
type Handle struct {
	provider *Provider
	key      string
	prefixed string
	lockID   string
	ttl      time.Duration
}

// Key returns the logical (unprefixed) key this handle was created for.
func (h *Handle) Key() string { return h.key }

// LockID returns this handle's unique owner identity.
func (h *Handle) LockID() string { return h.lockID }

// Acquire attempts a single, non-blocking acquisition.
func (h *Handle) Acquire() *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		ok, err := h.provider.adapter.Acquire(ctx, h.prefixed, h.lockID, h.ttl)
		if err != nil {
			return false, err
		}
		if ok {
			h.provider.emit(EventAcquired, h)
		} else {
			h.provider.emit(EventUnavailable, h)
		}
		return ok, nil
	})
}

// AcquireOrFail is Acquire but fails with ErrKeyAlreadyAcquired instead
// of returning false.
func (h *Handle) AcquireOrFail() *task.Task[struct{}] {
	return task.New(func(ctx *pipeline.Ctx) (struct{}, error) {
		ok, err := h.Acquire().Run(ctx)
		if err != nil {
			return struct{}{}, err
		}
		if !ok {
			return struct{}{}, ErrKeyAlreadyAcquired
		}
		return struct{}{}, nil
	})
}

// AcquireBlocking polls Acquire every interval until it succeeds or
// blockingTime elapses. Zero values fall back to the provider's
// defaults. Returns false (no error) on deadline; it is cancellable via
// the Task's ctx.
func (h *Handle) AcquireBlocking(blockingTime, interval time.Duration) *task.Task[bool] {
	if blockingTime <= 0 {
		blockingTime = h.provider.defaultBlockingTime
	}
	if interval <= 0 {
		interval = h.provider.defaultBlockingInterval
	}
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		deadline := time.Now().Add(blockingTime)
		for {
			ok, err := h.Acquire().Run(ctx)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
			if time.Now().After(deadline) {
				return false, nil
			}
			timer := time.NewTimer(interval)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return false, context.Cause(ctx)
			}
		}
	})
}

// AcquireBlockingOrFail is AcquireBlocking but fails with
// ErrBlockingTimeout instead of returning false.
func (h *Handle) AcquireBlockingOrFail(blockingTime, interval time.Duration) *task.Task[struct{}] {
	return task.New(func(ctx *pipeline.Ctx) (struct{}, error) {
		ok, err := h.AcquireBlocking(blockingTime, interval).Run(ctx)
		if err != nil {
			return struct{}{}, err
		}
		if !ok {
			return struct{}{}, ErrBlockingTimeout
		}
		return struct{}{}, nil
	})
}

// Release releases the lock iff this handle owns it.
func (h *Handle) Release() *task.Task[ReleaseResult] {
	return task.New(func(ctx *pipeline.Ctx) (ReleaseResult, error) {
		res, err := h.provider.adapter.Release(ctx, h.prefixed, h.lockID)
		if err != nil {
			return res, err
		}
		switch res {
		case Released:
			h.provider.emit(EventReleased, h)
		case NotFound:
			h.provider.emit(EventNotFound, h)
		case UnownedRelease:
			h.provider.emit(EventUnownedRelease, h)
		}
		return res, nil
	})
}

// ReleaseOrFail is Release but turns UnownedRelease into
// ErrUnownedRelease.
func (h *Handle) ReleaseOrFail() *task.Task[struct{}] {
	return task.New(func(ctx *pipeline.Ctx) (struct{}, error) {
		res, err := h.Release().Run(ctx)
		if err != nil {
			return struct{}{}, err
		}
		if res == UnownedRelease {
			return struct{}{}, ErrUnownedRelease
		}
		return struct{}{}, nil
	})
}

// ForceRelease removes the lock regardless of owner.
func (h *Handle) ForceRelease() *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		removed, err := h.provider.adapter.ForceRelease(ctx, h.prefixed)
		if err != nil {
			return false, err
		}
		if removed {
			h.provider.emit(EventForceReleased, h)
		}
		return removed, nil
	})
}

// Refresh extends the lock's TTL. ttl of zero reuses the TTL this handle
// was created with.
func (h *Handle) Refresh(ttl time.Duration) *task.Task[struct{}] {
	if ttl <= 0 {
		ttl = h.ttl
	}
	return task.New(func(ctx *pipeline.Ctx) (struct{}, error) {
		res, err := h.provider.adapter.Refresh(ctx, h.prefixed, h.lockID, ttl)
		if err != nil {
			return struct{}{}, err
		}
		switch res {
		case Refreshed:
			h.provider.emit(EventRefreshed, h)
			return struct{}{}, nil
		case RefreshUnowned:
			return struct{}{}, ErrUnownedRefresh
		case RefreshUnexpirable:
			return struct{}{}, ErrUnexpireableRefresh
		default:
			return struct{}{}, nil
		}
	})
}

// GetState returns the adapter's current record for this lock's key, or
// nil if no record exists.
func (h *Handle) GetState() *task.Task[*State] {
	return task.New(func(ctx *pipeline.Ctx) (*State, error) {
		return h.provider.adapter.State(ctx, h.prefixed)
	})
}

// IsLocked reports whether an unexpired record currently exists for this
// handle's key (regardless of owner).
func (h *Handle) IsLocked() *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		st, err := h.GetState().Run(ctx)
		if err != nil {
			return false, err
		}
		return st != nil && !st.Expired(), nil
	})
}

// IsExpired reports whether a record exists for this handle's key but
// has expired.
func (h *Handle) IsExpired() *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		st, err := h.GetState().Run(ctx)
		if err != nil {
			return false, err
		}
		return st != nil && st.Expired(), nil
	})
}

// GetRemainingTime returns the time remaining until this lock's record
// expires. A zero duration means either no record exists or it has no
// expiration.
func (h *Handle) GetRemainingTime() *task.Task[time.Duration] {
	return task.New(func(ctx *pipeline.Ctx) (time.Duration, error) {
		st, err := h.GetState().Run(ctx)
		if err != nil {
			return 0, err
		}
		if st == nil || st.Expiration.IsZero() {
			return 0, nil
		}
		if remaining := time.Until(st.Expiration); remaining > 0 {
			return remaining, nil
		}
		return 0, nil
	})
}

// Run acquires the lock, runs fn, and releases the lock afterward
// whether fn succeeds or fails; the release failure, if any, becomes
// part of fn's error chain via errors.Join-style wrapping. If the lock
// could not be acquired, fn is never invoked and Run returns (zero,
// false outcome) with no error — mirroring Acquire's own semantics.
func Run[T any](h *Handle, fn task.Thunk[T]) *task.Task[RunOutcome[T]] {
	return task.New(func(ctx *pipeline.Ctx) (RunOutcome[T], error) {
		return runUnder(ctx, h, h.Acquire(), fn)
	})
}

// RunOrFail is Run but fails with ErrKeyAlreadyAcquired instead of
// reporting Acquired=false.
func RunOrFail[T any](h *Handle, fn task.Thunk[T]) *task.Task[T] {
	return task.New(func(ctx *pipeline.Ctx) (T, error) {
		out, err := Run(h, fn).Run(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		if !out.Acquired {
			var zero T
			return zero, ErrKeyAlreadyAcquired
		}
		return out.Value, out.Err
	})
}

// RunBlocking is Run but uses AcquireBlocking to obtain the lock.
func RunBlocking[T any](h *Handle, blockingTime, interval time.Duration, fn task.Thunk[T]) *task.Task[RunOutcome[T]] {
	return task.New(func(ctx *pipeline.Ctx) (RunOutcome[T], error) {
		return runUnder(ctx, h, h.AcquireBlocking(blockingTime, interval), fn)
	})
}

// RunBlockingOrFail is RunBlocking but fails with ErrBlockingTimeout
// instead of reporting Acquired=false.
func RunBlockingOrFail[T any](h *Handle, blockingTime, interval time.Duration, fn task.Thunk[T]) *task.Task[T] {
	return task.New(func(ctx *pipeline.Ctx) (T, error) {
		out, err := RunBlocking(h, blockingTime, interval, fn).Run(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		if !out.Acquired {
			var zero T
			return zero, ErrBlockingTimeout
		}
		return out.Value, out.Err
	})
}

// RunOutcome is the result of a Run-family call: whether the lock was
// acquired at all, and if so, the wrapped function's own result.
type RunOutcome[T any] struct {
	Acquired bool
	Value    T
	Err      error
}

func runUnder[T any](ctx *pipeline.Ctx, h *Handle, acquire *task.Task[bool], fn task.Thunk[T]) (RunOutcome[T], error) {
	ok, err := acquire.Run(ctx)
	if err != nil {
		return RunOutcome[T]{}, err
	}
	if !ok {
		return RunOutcome[T]{Acquired: false}, nil
	}

	val, fnErr := fn(ctx)
	_, relErr := h.Release().Run(ctx)
	if relErr != nil {
		fnErr = errors.Join(fnErr, relErr)
	}
	return RunOutcome[T]{Acquired: true, Value: val, Err: fnErr}, nil
}

