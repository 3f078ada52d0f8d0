package semaphore

import (
	"context"
	"time"

	"github.com/aegiskit/aegis/pkg/pipeline"
	"github.com/aegiskit/aegis/pkg/task"
)

// Handle represents one claim on a semaphore key: a (key, slotId, limit)
// triple a caller can acquire, release, refresh, and run work under.
// Every operation is exposed as a *task.Task so a caller can compose
// retry, timeout, or any other middleware onto it before running it.
type Handle struct {
	provider *Provider
	key      string
	prefixed string
	slotID   string
	limit    int
	ttl      time.Duration
}

// Key returns the logical (unprefixed) key this handle was created for.
func (h *Handle) Key() string { return h.key }

// SlotID returns this handle's unique slot identity.
func (h *Handle) SlotID() string { return h.slotID }

// Limit returns the capacity this handle's key was created with.
func (h *Handle) Limit() int { return h.limit }

// Acquire attempts a single, non-blocking acquisition of this handle's
// slot, succeeding only if fewer than Limit unexpired slots are
// currently held under Key.
func (h *Handle) Acquire() *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		ok, err := h.provider.adapter.Acquire(ctx, h.prefixed, h.slotID, h.limit, h.ttl)
		if err != nil {
			return false, err
		}
		if ok {
			h.provider.emit(EventAcquired, h)
		} else {
			h.provider.emit(EventLimitReached, h)
		}
		return ok, nil
	})
}

// AcquireOrFail is Acquire but fails with ErrLimitReached instead of
// returning false.
func (h *Handle) AcquireOrFail() *task.Task[struct{}] {
	return task.New(func(ctx *pipeline.Ctx) (struct{}, error) {
		ok, err := h.Acquire().Run(ctx)
		if err != nil {
			return struct{}{}, err
		}
		if !ok {
			return struct{}{}, ErrLimitReached
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

// Release releases this handle's slot.
func (h *Handle) Release() *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		ok, err := h.provider.adapter.Release(ctx, h.prefixed, h.slotID)
		if err != nil {
			return false, err
		}
		if ok {
			h.provider.emit(EventReleased, h)
		} else {
			h.provider.emit(EventFailedRelease, h)
		}
		return ok, nil
	})
}

// ReleaseOrFail is Release but turns a false result into
// ErrFailedRelease.
func (h *Handle) ReleaseOrFail() *task.Task[struct{}] {
	return task.New(func(ctx *pipeline.Ctx) (struct{}, error) {
		ok, err := h.Release().Run(ctx)
		if err != nil {
			return struct{}{}, err
		}
		if !ok {
			return struct{}{}, ErrFailedRelease
		}
		return struct{}{}, nil
	})
}

// ForceReleaseAll removes every slot held under this handle's key,
// regardless of slotId.
func (h *Handle) ForceReleaseAll() *task.Task[bool] {
	return task.New(func(ctx *pipeline.Ctx) (bool, error) {
		removed, err := h.provider.adapter.ForceReleaseAll(ctx, h.prefixed)
		if err != nil {
			return false, err
		}
		if removed {
			h.provider.emit(EventForceReleased, h)
		}
		return removed, nil
	})
}

// Refresh extends this handle's slot TTL. ttl of zero reuses the TTL
// this handle was created with.
func (h *Handle) Refresh(ttl time.Duration) *task.Task[struct{}] {
	if ttl <= 0 {
		ttl = h.ttl
	}
	return task.New(func(ctx *pipeline.Ctx) (struct{}, error) {
		ok, err := h.provider.adapter.Refresh(ctx, h.prefixed, h.slotID, ttl)
		if err != nil {
			return struct{}{}, err
		}
		if ok {
			h.provider.emit(EventRefreshed, h)
			return struct{}{}, nil
		}
		h.provider.emit(EventFailedRefresh, h)
		return struct{}{}, ErrFailedRefresh
	})
}

// GetState returns the adapter's current occupancy snapshot for this
// handle's key, or nil if nothing is held.
func (h *Handle) GetState() *task.Task[*State] {
	return task.New(func(ctx *pipeline.Ctx) (*State, error) {
		return h.provider.adapter.State(ctx, h.prefixed)
	})
}

// Run acquires this handle's slot, runs fn, and releases the slot
// afterward whether fn succeeds or fails. If the slot could not be
// acquired, fn is never invoked and Run returns (zero, Acquired=false)
// with no error.
func Run[T any](h *Handle, fn task.Thunk[T]) *task.Task[RunOutcome[T]] {
	return task.New(func(ctx *pipeline.Ctx) (RunOutcome[T], error) {
		return runUnder(ctx, h, h.Acquire(), fn)
	})
}

// RunOrFail is Run but fails with ErrLimitReached instead of reporting
// Acquired=false.
func RunOrFail[T any](h *Handle, fn task.Thunk[T]) *task.Task[T] {
	return task.New(func(ctx *pipeline.Ctx) (T, error) {
		out, err := Run(h, fn).Run(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		if !out.Acquired {
			var zero T
			return zero, ErrLimitReached
		}
		return out.Value, out.Err
	})
}

// RunBlocking is Run but uses AcquireBlocking to obtain the slot.
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

// RunOutcome is the result of a Run-family call: whether the slot was
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
	if relErr != nil && fnErr == nil {
		fnErr = relErr
	}
	return RunOutcome[T]{Acquired: true, Value: val, Err: fnErr}, nil
}
