package breaker

import (
	"context"
	"time"

	"github.com/aegiskit/aegis/pkg/backoff"
)

// Adapter is the full circuit breaker primitive contract a store must
// implement. Every method except
// GetState runs under the store's own atomicity (compare-and-set,
// Redis Lua, SQL row lock, or an in-process mutex) so concurrent
// trackSuccess/trackFailure calls on the same key linearize.
type Adapter interface {
	// GetState returns the persisted state for key, or nil if the
	// circuit has never been touched (callers treat that as Closed).
	// policy is used only to recover a store's serialized Metrics shape.
	GetState(ctx context.Context, key string, policy Policy) (*State, error)
	// UpdateState re-evaluates the backoff-driven Open→HalfOpen
	// transition against the wall clock, without tracking an outcome.
	UpdateState(ctx context.Context, key string, policy Policy, wait backoff.Policy, now time.Time) (Transition, error)
	// TrackSuccess folds a successful call outcome into key's state.
	TrackSuccess(ctx context.Context, key string, policy Policy, now time.Time) (Transition, error)
	// TrackFailure folds a failed (or policy-classified) call outcome
	// into key's state.
	TrackFailure(ctx context.Context, key string, policy Policy, now time.Time) (Transition, error)
	// Isolate latches key to Isolated.
	Isolate(ctx context.Context, key string, policy Policy, now time.Time) (Transition, error)
	// Reset returns key to its initial Closed configuration.
	Reset(ctx context.Context, key string, policy Policy, now time.Time) (Transition, error)
}
