package hedge

import (
	"context"
	"time"

	"github.com/aegiskit/aegis/pkg/pipeline"
	"github.com/aegiskit/aegis/pkg/resilience"
	"github.com/aegiskit/aegis/pkg/task"
)

type namedOutcome[T any] struct {
	index int
	name  string
	val   T
	err   error
}

// NewParallel builds a Parallel Hedging middleware. It fires the wrapped
// thunk (named "primary") immediately, then launches each fallback in
// order, waiting waitTime between successive launches. The first attempt
// to succeed wins: its value is returned and every other attempt is
// aborted via its own derived Ctx. If every attempt fails, it returns a
// *resilience.HedgingError listing them all.
func NewParallel[T any](waitTime time.Duration, fallbacks []Attempt[T], opts ...Option[T]) task.Middleware[T] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx *pipeline.Ctx, next task.Thunk[T]) (T, error) {
		var zero T
		attempts := make([]Attempt[T], 0, len(fallbacks)+1)
		attempts = append(attempts, Attempt[T]{Name: "primary", Thunk: next})
		attempts = append(attempts, fallbacks...)

		childCtxs := make([]*pipeline.Ctx, len(attempts))
		for i, a := range attempts {
			childCtxs[i], _ = pipeline.Derive(ctx, a.Name)
		}
		abortOthers := func(winner int) {
			for i, c := range childCtxs {
				if i != winner {
					c.Abort(nil)
				}
			}
		}
		defer abortOthers(-1)

		results := make(chan namedOutcome[T], len(attempts))
		stopLaunch := make(chan struct{})
		go func() {
			for i, a := range attempts {
				select {
				case <-stopLaunch:
					return
				case <-ctx.Done():
					return
				default:
				}
				i, a := i, a
				if cfg.onHedgeAttempt != nil {
					cfg.onHedgeAttempt(i, a.Name)
				}
				go func() {
					v, err := a.Thunk(childCtxs[i])
					select {
					case results <- namedOutcome[T]{i, a.Name, v, err}:
					default:
					}
				}()
				if i < len(attempts)-1 {
					timer := time.NewTimer(waitTime)
					select {
					case <-timer.C:
					case <-stopLaunch:
						timer.Stop()
						return
					case <-ctx.Done():
						timer.Stop()
						return
					}
				}
			}
		}()

		var failed []*resilience.HedgeAttemptError
		for i := 0; i < len(attempts); i++ {
			select {
			case out := <-results:
				if !cfg.errorPolicy(out.val, out.err) {
					close(stopLaunch)
					abortOthers(out.index)
					return out.val, nil
				}
				attemptErr := out.err
				if attemptErr == nil {
					attemptErr = errResultFailure
				}
				if cfg.onHedgeError != nil {
					cfg.onHedgeError(out.index, out.name, attemptErr)
				}
				failed = append(failed, &resilience.HedgeAttemptError{Name: out.name, Err: attemptErr})
			case <-ctx.Done():
				close(stopLaunch)
				failed = append(failed, &resilience.HedgeAttemptError{Name: "ctx", Err: context.Cause(ctx)})
				return zero, &resilience.HedgingError{Attempts: failed}
			}
		}
		close(stopLaunch)
		return zero, &resilience.HedgingError{Attempts: failed}
	}
}
