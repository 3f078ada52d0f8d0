package pipeline

import "context"

// Next is the continuation a Hook calls to run the rest of the chain.
type Next[A any, R any] func(ctx *Ctx, args A) (R, error)

// Hook wraps a call of shape (A) -> (R, error). It may transform args
// before calling next, transform or suppress the result/error next
// returns, short-circuit without calling next at all, or read/write
// values on ctx for hooks further out to observe.
type Hook[A any, R any] func(ctx *Ctx, args A, next Next[A, R]) (R, error)

// Chain is an immutable, ordered list of hooks. The zero value is an
// empty chain that invokes the terminal function directly.
type Chain[A any, R any] []Hook[A, R]

// Pipe returns a new Chain with h appended. The receiver is never
// mutated.
func (c Chain[A, R]) Pipe(h Hook[A, R]) Chain[A, R] {
	out := make(Chain[A, R], len(c), len(c)+1)
	copy(out, c)
	return append(out, h)
}

// PipeWhen is Pipe guarded by a boolean, for conditionally assembling a
// chain without branching call sites.
func (c Chain[A, R]) PipeWhen(cond bool, h Hook[A, R]) Chain[A, R] {
	if !cond {
		return c
	}
	return c.Pipe(h)
}

// Invoke runs the chain against terminal, under a Ctx derived from
// parent. name is attached to the Ctx for hooks to use in logging. Every
// call to Invoke creates a fresh cancellation scope: aborting the Ctx
// from inside one hook does not affect any other invocation of the same
// Chain.
func (c Chain[A, R]) Invoke(parent context.Context, name string, args A, terminal Next[A, R]) (R, error) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := newCtx(parent, name)
	defer cancel(nil)

	next := terminal
	for i := len(c) - 1; i >= 0; i-- {
		hook := c[i]
		inner := next
		next = func(ctx *Ctx, args A) (R, error) {
			return hook(ctx, args, inner)
		}
	}
	return next(ctx, args)
}
