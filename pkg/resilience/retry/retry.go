// Package retry implements the Retry resilience middleware: re-invoke a
// task.Thunk up to a configured number of attempts, waiting between
// attempts per an injected backoff.Policy, until an attempt succeeds (per
// the configured ErrorPolicy) or attempts are exhausted.
package retry

import (
	"context"
	"time"

	"github.com/aegiskit/aegis/pkg/backoff"
	"github.com/aegiskit/aegis/pkg/pipeline"
	"github.com/aegiskit/aegis/pkg/resilience"
	"github.com/aegiskit/aegis/pkg/task"
)

type config[T any] struct {
	maxAttempts        int
	backoffPolicy      backoff.Policy
	errorPolicy        resilience.ErrorPolicy[T]
	onExecutionAttempt resilience.OnExecutionAttempt
	onRetryDelay       resilience.OnRetryDelay
}

func defaultConfig[T any]() config[T] {
	return config[T]{
		maxAttempts:   3,
		backoffPolicy: backoff.WithJitter(backoff.Exponential(50*time.Millisecond, 5*time.Second, 2), backoff.DefaultJitter, nil),
		errorPolicy:   resilience.DefaultErrorPolicy[T],
	}
}

// Option configures a Retry middleware.
type Option[T any] func(*config[T])

// WithMaxAttempts sets the maximum number of attempts, including the
// first. Values <= 0 are treated as 1 (a single attempt, no retries).
func WithMaxAttempts[T any](n int) Option[T] {
	return func(c *config[T]) {
		if n <= 0 {
			n = 1
		}
		c.maxAttempts = n
	}
}

// WithBackoff sets the wait-time policy between attempts.
func WithBackoff[T any](p backoff.Policy) Option[T] {
	return func(c *config[T]) {
		if p != nil {
			c.backoffPolicy = p
		}
	}
}

// WithErrorPolicy overrides which outcomes are treated as retryable
// failures.
func WithErrorPolicy[T any](p resilience.ErrorPolicy[T]) Option[T] {
	return func(c *config[T]) {
		if p != nil {
			c.errorPolicy = p
		}
	}
}

// WithOnExecutionAttempt registers a callback fired before every attempt.
func WithOnExecutionAttempt[T any](f resilience.OnExecutionAttempt) Option[T] {
	return func(c *config[T]) { c.onExecutionAttempt = f }
}

// WithOnRetryDelay registers a callback fired after a failed attempt,
// before the inter-attempt sleep.
func WithOnRetryDelay[T any](f resilience.OnRetryDelay) Option[T] {
	return func(c *config[T]) { c.onRetryDelay = f }
}

// New builds a Retry middleware. Composed onto a task.Task[T] via Pipe,
// it re-invokes the wrapped thunk until the configured ErrorPolicy
// reports success or maxAttempts is reached, sleeping per the backoff
// policy between attempts (the sleep itself honors ctx cancellation).
func New[T any](opts ...Option[T]) task.Middleware[T] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx *pipeline.Ctx, next task.Thunk[T]) (T, error) {
		var zero T
		var errs []error
		var lastVal T
		var anyRealErr bool

		for attempt := 1; ; attempt++ {
			var priorErr error
			if len(errs) > 0 {
				priorErr = errs[len(errs)-1]
			}
			if cfg.onExecutionAttempt != nil {
				cfg.onExecutionAttempt(attempt, priorErr)
			}

			val, err := next(ctx)
			if !cfg.errorPolicy(val, err) {
				return val, err
			}
			lastVal = val

			if err != nil {
				anyRealErr = true
			} else {
				err = errNonNilFailureValue
			}
			errs = append(errs, err)

			if attempt >= cfg.maxAttempts {
				if !anyRealErr {
					return lastVal, nil
				}
				return zero, &resilience.RetryError{Attempts: attempt, Errs: errs}
			}
			if ctx.Err() != nil {
				errs = append(errs, context.Cause(ctx))
				return zero, &resilience.RetryError{Attempts: attempt, Errs: errs}
			}

			wait := cfg.backoffPolicy.Next(attempt, err)
			if cfg.onRetryDelay != nil {
				cfg.onRetryDelay(attempt, wait)
			}

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				errs = append(errs, context.Cause(ctx))
				return zero, &resilience.RetryError{Attempts: attempt, Errs: errs}
			}
		}
	}
}

var errNonNilFailureValue = errFailureValue{}

type errFailureValue struct{}

func (errFailureValue) Error() string {
	return "retry: attempt returned a failure-classified value with a nil error"
}
