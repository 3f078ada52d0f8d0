package breaker

import (
	"errors"
	"time"

	"github.com/aegiskit/aegis/pkg/backoff"
	"github.com/aegiskit/aegis/pkg/pipeline"
	"github.com/aegiskit/aegis/pkg/task"
)

// Handle represents one circuit breaker key bound to a Policy, an
// Open→HalfOpen backoff, and a slow-call classification. Every
// operation is exposed as a *task.Task so callers can compose
// resilience middleware onto it.
type Handle struct {
	provider    *Provider
	key         string
	prefixed    string
	policy      Policy
	wait        backoff.Policy
	slowCall    time.Duration
	trigger     Trigger
	errorPolicy func(error) bool

	asyncTracking bool
}

// Key returns the logical (unprefixed) key this handle was created
// for.
func (h *Handle) Key() string { return h.key }

// WithAsyncTracking returns a copy of h that tracks call outcomes in a
// background goroutine instead of inline. RunOrFail still waits for the outcome of
// fn itself; only the adapter write is detached.
func (h *Handle) WithAsyncTracking() *Handle {
	cp := *h
	cp.asyncTracking = true
	return &cp
}

// trackOutcome persists failed/success for this handle's key. When
// asyncTracking is set, the adapter write happens in a background
// goroutine and trackOutcome returns immediately with no error (and no
// event emission, since the transition isn't known synchronously).
func (h *Handle) trackOutcome(ctx *pipeline.Ctx, failed bool) error {
	now := time.Now()
	apply := func() (Transition, error) {
		if failed {
			return h.provider.adapter.TrackFailure(ctx, h.prefixed, h.policy, now)
		}
		return h.provider.adapter.TrackSuccess(ctx, h.prefixed, h.policy, now)
	}

	if h.asyncTracking {
		go func() { _, _ = apply() }()
		return nil
	}

	t, err := apply()
	if err != nil {
		return err
	}
	if event, ok := eventFor(t); ok {
		h.provider.emit(event, h)
	}
	return nil
}

// GetState returns the current, wall-clock-reconciled status for this
// handle's key, applying the Open→HalfOpen transition if the backoff
// wait has elapsed.
func (h *Handle) GetState() *task.Task[State] {
	return task.New(func(ctx *pipeline.Ctx) (State, error) {
		t, err := h.provider.adapter.UpdateState(ctx, h.prefixed, h.policy, h.wait, time.Now())
		if err != nil {
			return State{}, err
		}
		if event, ok := eventFor(t); ok {
			h.provider.emit(event, h)
		}
		st, err := h.provider.adapter.GetState(ctx, h.prefixed, h.policy)
		if err != nil {
			return State{}, err
		}
		if st == nil {
			return InitialState(h.policy, time.Now()), nil
		}
		return *st, nil
	})
}

// Isolate latches this key to Isolated regardless of its current
// state.
func (h *Handle) Isolate() *task.Task[struct{}] {
	return task.New(func(ctx *pipeline.Ctx) (struct{}, error) {
		if _, err := h.provider.adapter.Isolate(ctx, h.prefixed, h.policy, time.Now()); err != nil {
			return struct{}{}, err
		}
		h.provider.emit(EventIsolated, h)
		return struct{}{}, nil
	})
}

// Reset returns this key to its initial Closed configuration.
func (h *Handle) Reset() *task.Task[struct{}] {
	return task.New(func(ctx *pipeline.Ctx) (struct{}, error) {
		_, err := h.provider.adapter.Reset(ctx, h.prefixed, h.policy, time.Now())
		if err != nil {
			return struct{}{}, err
		}
		h.provider.emit(EventReset, h)
		return struct{}{}, nil
	})
}

// RunOrFail is the circuit breaker's primary entry point: inspect the
// current state; if Open or Isolated, fail immediately with ErrOpen
// without invoking fn; otherwise run fn under a slow-call timer and
// classify the outcome per h's Trigger and error policy.
func RunOrFail[T any](h *Handle, fn task.Thunk[T]) *task.Task[T] {
	return task.New(func(ctx *pipeline.Ctx) (T, error) {
		var zero T

		st, err := h.GetState().Run(ctx)
		if err != nil {
			return zero, err
		}
		if st.Status == Open || st.Status == Isolated {
			return zero, ErrOpen
		}

		start := time.Now()
		val, fnErr := fn(ctx)
		elapsed := time.Since(start)
		slow := h.slowCall > 0 && elapsed > h.slowCall

		failed := classify(fnErr, slow, h.trigger, h.errorPolicy)
		if trackErr := h.trackOutcome(ctx, failed); trackErr != nil {
			if fnErr == nil {
				return zero, trackErr
			}
			return val, errors.Join(fnErr, trackErr)
		}
		return val, fnErr
	})
}

// classify decides whether a call outcome counts as a tracked failure:
// trigger selects which outcome kinds (thrown error, slow call) count toward failure at all,
// and a thrown error additionally passes through errorPolicy.
func classify(err error, slow bool, trigger Trigger, errorPolicy func(error) bool) bool {
	failed := false
	if err != nil && (trigger == TriggerOnlyError || trigger == TriggerBoth) {
		if errorPolicy == nil || errorPolicy(err) {
			failed = true
		}
	}
	if slow && (trigger == TriggerOnlySlowCall || trigger == TriggerBoth) {
		failed = true
	}
	return failed
}
