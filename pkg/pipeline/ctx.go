package pipeline

import "context"

// Ctx is the context object every hook receives alongside its arguments.
// It embeds context.Context so hooks can use it anywhere a stdlib context
// is expected, while also exposing the invocation Name and an Abort method
// hooks use to cancel the remainder of the chain with a caller-supplied
// cause.
type Ctx struct {
	context.Context

	// Name identifies the invocation for logging/observability. Set from
	// the name passed to Chain.Invoke.
	Name string

	cancel context.CancelCauseFunc
}

// Abort cancels the context carried by this invocation with the given
// cause. Inner hooks and the terminal function observe ctx.Err() ==
// context.Canceled and context.Cause(ctx) == cause. Calling Abort with a
// nil cause is equivalent to plain cancellation.
func (c *Ctx) Abort(cause error) {
	if c.cancel != nil {
		c.cancel(cause)
	}
}

// newCtx derives a cancellable Ctx from parent. The returned cancel func
// must be deferred by the caller to release resources.
func newCtx(parent context.Context, name string) (*Ctx, context.CancelCauseFunc) {
	inner, cancel := context.WithCancelCause(parent)
	return &Ctx{Context: inner, Name: name, cancel: cancel}, cancel
}

// Derive creates an independently abortable child Ctx from parent:
// calling the returned cancel func (or the child's own Abort) cancels
// only the child, while a parent cancellation still propagates down to
// it. Middlewares that fan out a single invocation into several
// concurrently racing sub-attempts (hedging, for instance) use this to
// give each attempt its own abort handle.
func Derive(parent *Ctx, name string) (*Ctx, context.CancelCauseFunc) {
	var parentCtx context.Context = context.Background()
	if parent != nil {
		parentCtx = parent
	}
	return newCtx(parentCtx, name)
}
