package task

import (
	"context"

	"github.com/aegiskit/aegis/pkg/pipeline"
)

// Thunk is the zero-argument computation a Task wraps.
type Thunk[T any] func(ctx *pipeline.Ctx) (T, error)

// Middleware wraps a Thunk invocation. See pkg/pipeline for the general
// contract; Task specializes pipeline.Hook to a thunk with no caller-
// visible arguments.
type Middleware[T any] func(ctx *pipeline.Ctx, next Thunk[T]) (T, error)

// Task is a lazy, cancellable, middleware-aware unit of work. The zero
// value is not usable; construct one with New.
type Task[T any] struct {
	thunk Thunk[T]
	chain pipeline.Chain[struct{}, T]
	name  string
}

// New constructs a Task from thunk with an empty middleware chain.
func New[T any](thunk Thunk[T]) *Task[T] {
	return &Task[T]{thunk: thunk}
}

// Named sets the name attached to this task's Ctx on Run, returning a new
// Task (the receiver is unmodified).
func (t *Task[T]) Named(name string) *Task[T] {
	cp := *t
	cp.name = name
	return &cp
}

// Pipe returns a new Task whose middleware chain is this task's chain
// with m appended. The receiver's chain is unmodified.
func (t *Task[T]) Pipe(m Middleware[T]) *Task[T] {
	cp := *t
	cp.chain = t.chain.Pipe(adaptMiddleware(m))
	return &cp
}

// PipeWhen is Pipe guarded by cond, useful for conditionally assembling a
// chain (e.g. only wrap with a circuit breaker when one was configured)
// without branching at every call site.
func (t *Task[T]) PipeWhen(cond bool, m Middleware[T]) *Task[T] {
	if !cond {
		return t
	}
	return t.Pipe(m)
}

// Run executes the task's thunk through its middleware chain exactly
// once. Each call to Run is an independent execution; nothing is
// memoized between calls. If ctx is nil, context.Background() is used.
// The task derives its own cancellable scope from ctx, so a middleware
// calling ctx.Abort only cancels this particular Run.
func (t *Task[T]) Run(ctx context.Context) (T, error) {
	if t.thunk == nil {
		var zero T
		return zero, ErrNilThunk
	}
	terminal := func(ctx *pipeline.Ctx, _ struct{}) (T, error) {
		return t.thunk(ctx)
	}
	return t.chain.Invoke(ctx, t.name, struct{}{}, terminal)
}

// adaptMiddleware lifts a Task Middleware into a pipeline.Hook over the
// empty Args type Task uses internally.
func adaptMiddleware[T any](m Middleware[T]) pipeline.Hook[struct{}, T] {
	return func(ctx *pipeline.Ctx, _ struct{}, next pipeline.Next[struct{}, T]) (T, error) {
		return m(ctx, func(ctx *pipeline.Ctx) (T, error) {
			return next(ctx, struct{}{})
		})
	}
}
