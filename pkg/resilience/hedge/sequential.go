package hedge

import (
	"github.com/aegiskit/aegis/pkg/pipeline"
	"github.com/aegiskit/aegis/pkg/resilience"
	"github.com/aegiskit/aegis/pkg/task"
)

// NewSequential builds a Sequential Hedging middleware. It runs the
// wrapped thunk (named "primary"); on failure it aborts that attempt's
// Ctx and runs the next fallback, and so on until one succeeds or the
// list is exhausted, in which case it returns a *resilience.HedgingError
// listing every attempt.
func NewSequential[T any](fallbacks []Attempt[T], opts ...Option[T]) task.Middleware[T] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx *pipeline.Ctx, next task.Thunk[T]) (T, error) {
		var zero T
		attempts := make([]Attempt[T], 0, len(fallbacks)+1)
		attempts = append(attempts, Attempt[T]{Name: "primary", Thunk: next})
		attempts = append(attempts, fallbacks...)

		var failed []*resilience.HedgeAttemptError
		for i, a := range attempts {
			if ctx.Err() != nil {
				break
			}
			if cfg.onHedgeAttempt != nil {
				cfg.onHedgeAttempt(i, a.Name)
			}
			childCtx, cancel := pipeline.Derive(ctx, a.Name)
			val, err := a.Thunk(childCtx)
			if !cfg.errorPolicy(val, err) {
				cancel(nil)
				return val, nil
			}
			attemptErr := err
			if attemptErr == nil {
				attemptErr = errResultFailure
			}
			cancel(attemptErr)
			if cfg.onHedgeError != nil {
				cfg.onHedgeError(i, a.Name, attemptErr)
			}
			failed = append(failed, &resilience.HedgeAttemptError{Name: a.Name, Err: attemptErr})
		}
		return zero, &resilience.HedgingError{Attempts: failed}
	}
}
