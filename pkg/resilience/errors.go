package resilience

import (
	"fmt"
	"strings"
	"time"
)

// TimeoutError is the cause passed to Ctx.Abort when a Timeout
// middleware's deadline elapses, and the error a Timeout middleware
// ultimately returns.
type TimeoutError struct {
	WaitTime time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("resilience: timed out after %s", e.WaitTime)
}

// RetryError aggregates every error observed across a Retry middleware's
// attempts. Attempts is the number of tries made. Errs holds one error
// per attempt; when cancellation of the context ends the loop, the
// context's cause is appended as well, so len(Errs) is Attempts+1.
type RetryError struct {
	Attempts int
	Errs     []error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("resilience: retry exhausted after %d attempt(s): %s", e.Attempts, joinErrs(e.Errs))
}

func (e *RetryError) Unwrap() []error { return e.Errs }

// HedgeAttemptError names one failed leg of a hedging middleware.
type HedgeAttemptError struct {
	Name string
	Err  error
}

func (e *HedgeAttemptError) Error() string { return fmt.Sprintf("%s: %s", e.Name, e.Err) }
func (e *HedgeAttemptError) Unwrap() error { return e.Err }

// HedgingError aggregates the named failures of every hedged attempt
// when none of them succeeded.
type HedgingError struct {
	Attempts []*HedgeAttemptError
}

func (e *HedgingError) Error() string {
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Name
	}
	return fmt.Sprintf("resilience: all hedged attempts failed: %s", strings.Join(names, ", "))
}

func (e *HedgingError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return errs
}

func joinErrs(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}
