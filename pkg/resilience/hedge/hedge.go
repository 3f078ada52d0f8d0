// Package hedge implements the two hedging resilience middlewares:
// Parallel (fire every fallback concurrently, staggered, first success
// wins) and Sequential (run one attempt at a time, moving to the next on
// failure).
package hedge

import (
	"github.com/aegiskit/aegis/pkg/resilience"
	"github.com/aegiskit/aegis/pkg/task"
)

// Attempt is one named alternative a hedging middleware may run in place
// of, or alongside, the primary call. Name appears in HedgingError and in
// the OnHedgeAttempt/OnHedgeError callbacks.
type Attempt[T any] struct {
	Name  string
	Thunk task.Thunk[T]
}

type config[T any] struct {
	errorPolicy    resilience.ErrorPolicy[T]
	onHedgeAttempt resilience.OnHedgeAttempt
	onHedgeError   resilience.OnHedgeError
}

func defaultConfig[T any]() config[T] {
	return config[T]{errorPolicy: resilience.DefaultErrorPolicy[T]}
}

// Option configures a hedging middleware.
type Option[T any] func(*config[T])

// WithErrorPolicy overrides which outcomes count as a failed attempt.
// Result-typed attempts (a nil error but a value the policy classifies
// as a failure) only move on to the next fallback when this is set;
// the default policy treats any non-nil error as the only failure.
func WithErrorPolicy[T any](p resilience.ErrorPolicy[T]) Option[T] {
	return func(c *config[T]) {
		if p != nil {
			c.errorPolicy = p
		}
	}
}

// WithOnHedgeAttempt registers a callback fired when an attempt launches.
func WithOnHedgeAttempt[T any](f resilience.OnHedgeAttempt) Option[T] {
	return func(c *config[T]) { c.onHedgeAttempt = f }
}

// WithOnHedgeError registers a callback fired when an attempt fails.
func WithOnHedgeError[T any](f resilience.OnHedgeError) Option[T] {
	return func(c *config[T]) { c.onHedgeError = f }
}

var errResultFailure = errResultFailureValue{}

type errResultFailureValue struct{}

func (errResultFailureValue) Error() string {
	return "hedge: attempt returned a failure-classified value with a nil error"
}
