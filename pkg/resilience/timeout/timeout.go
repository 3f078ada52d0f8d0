// Package timeout implements the Timeout resilience middleware: race the
// wrapped task.Thunk against a deadline, aborting it via its Ctx when the
// deadline elapses first.
package timeout

import (
	"time"

	"github.com/aegiskit/aegis/pkg/pipeline"
	"github.com/aegiskit/aegis/pkg/resilience"
	"github.com/aegiskit/aegis/pkg/task"
)

type config struct {
	onTimeout resilience.OnTimeout
	admit     func(*pipeline.Ctx) error
}

// Option configures a Timeout middleware.
type Option func(*config)

// WithOnTimeout registers a callback fired when the deadline elapses,
// before the inner call is aborted.
func WithOnTimeout(f resilience.OnTimeout) Option {
	return func(c *config) { c.onTimeout = f }
}

type outcome[T any] struct {
	val T
	err error
}

// New builds a Timeout middleware with the given wait time. On timeout it
// aborts the inner call's Ctx with a *resilience.TimeoutError and then
// waits for that call to actually return before reporting the timeout,
// so cleanup performed by the inner call is guaranteed to have run.
func New[T any](waitTime time.Duration, opts ...Option) task.Middleware[T] {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx *pipeline.Ctx, next task.Thunk[T]) (T, error) {
		var zero T
		if cfg.admit != nil {
			if err := cfg.admit(ctx); err != nil {
				return zero, err
			}
		}
		done := make(chan outcome[T], 1)
		go func() {
			v, err := next(ctx)
			done <- outcome[T]{v, err}
		}()

		timer := time.NewTimer(waitTime)
		defer timer.Stop()

		select {
		case out := <-done:
			return out.val, out.err
		case <-timer.C:
			if cfg.onTimeout != nil {
				cfg.onTimeout(waitTime)
			}
			cause := &resilience.TimeoutError{WaitTime: waitTime}
			ctx.Abort(cause)
			<-done
			return zero, cause
		}
	}
}
