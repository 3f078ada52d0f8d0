package resilience

import "time"

// ErrorPolicy classifies the outcome of an attempt. It returns true when
// the outcome should be treated as a failure the middleware must act on
// (retry, time out, hedge, or fall back) and false when the outcome
// should be returned to the caller as-is, success or not.
//
// The default policy used by every middleware's constructor is
// DefaultErrorPolicy: act on any non-nil error, accept any value.
type ErrorPolicy[T any] func(value T, err error) bool

// DefaultErrorPolicy treats every non-nil error as actionable and every
// returned value, regardless of content, as acceptable.
func DefaultErrorPolicy[T any](_ T, err error) bool {
	return err != nil
}

// OnExecutionAttempt is invoked before each attempt a middleware makes,
// attempt is 1-based.
type OnExecutionAttempt func(attempt int, priorErr error)

// OnRetryDelay is invoked after an actionable attempt, before sleeping,
// with the computed wait duration.
type OnRetryDelay func(attempt int, wait time.Duration)

// OnTimeout is invoked when a Timeout middleware's deadline elapses,
// before it aborts the inner call.
type OnTimeout func(waitTime time.Duration)

// OnHedgeAttempt is invoked when a hedge middleware launches a named
// attempt (index 0 is the primary).
type OnHedgeAttempt func(index int, name string)

// OnHedgeError is invoked when a named hedge attempt fails.
type OnHedgeError func(index int, name string, err error)

// OnFallback is invoked when a Fallback middleware is about to resolve
// its fallback value, with the error that triggered it.
type OnFallback func(err error)
