package task

import (
	"context"
	"time"

	"github.com/aegiskit/aegis/pkg/pipeline"
)

// Delay returns a Task that waits for d, or until the run's context is
// aborted or its deadline/cancellation fires, whichever comes first.
func Delay(d time.Duration) *Task[struct{}] {
	return New(func(ctx *pipeline.Ctx) (struct{}, error) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return struct{}{}, nil
		case <-ctx.Done():
			return struct{}{}, wrapAbort(ctx)
		}
	})
}

// FromCallback adapts a completion-style API — a function that starts
// work and invokes a callback with (T, error) when it finishes — into a
// Task. register is called with a callback; register must arrange for the
// callback to be invoked exactly once. If the run's context is aborted
// before the callback fires, FromCallback returns immediately with the
// abort error; the callback may still fire later and is ignored.
func FromCallback[T any](register func(callback func(T, error))) *Task[T] {
	return New(func(ctx *pipeline.Ctx) (T, error) {
		type outcome struct {
			val T
			err error
		}
		done := make(chan outcome, 1)
		register(func(v T, err error) {
			select {
			case done <- outcome{v, err}:
			default:
			}
		})
		select {
		case o := <-done:
			return o.val, o.err
		case <-ctx.Done():
			var zero T
			return zero, wrapAbort(ctx)
		}
	})
}

func wrapAbort(ctx context.Context) error {
	return &AbortedError{Cause: context.Cause(ctx)}
}
