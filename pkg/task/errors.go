package task

import "errors"

var (
	// ErrNilThunk is returned by Run when the task was built from a nil thunk.
	ErrNilThunk = errors.New("task: thunk must not be nil")

	// ErrNoTasks is returned by Race and Any when called with an empty
	// task slice.
	ErrNoTasks = errors.New("task: no tasks supplied")

	// ErrAborted is matched by the *AbortedError that Delay and FromCallback
	// return when their context is cancelled, whether by a call to
	// (*pipeline.Ctx).Abort or by the caller's own context. Use errors.Is against this sentinel
	// to detect cancellation independent of the original cause; use
	// context.Cause(ctx) from within a middleware to recover the original
	// cause passed to Abort.
	ErrAborted = errors.New("task: aborted")
)

// AbortedError wraps the cause supplied to an abort so that
// errors.Is(err, ErrAborted) succeeds while errors.Unwrap(err) still
// yields the original cause (context.Canceled, a timeout error, or
// whatever the caller passed to Abort).
type AbortedError struct {
	Cause error
}

func (e *AbortedError) Error() string {
	if e.Cause == nil {
		return ErrAborted.Error()
	}
	return ErrAborted.Error() + ": " + e.Cause.Error()
}

func (e *AbortedError) Unwrap() []error { return []error{ErrAborted, e.Cause} }

// AggregateError carries every error observed across a set of concurrent
// attempts (used by Any; the retry and hedging middlewares report their
// attempts with their own error types).
type AggregateError struct {
	Errs []error
}

func (e *AggregateError) Error() string {
	if len(e.Errs) == 0 {
		return "task: all attempts failed"
	}
	msg := "task: all attempts failed: "
	for i, err := range e.Errs {
		if i > 0 {
			msg += "; "
		}
		msg += err.Error()
	}
	return msg
}

func (e *AggregateError) Unwrap() []error { return e.Errs }
