package task

import (
	"context"

	"github.com/aegiskit/aegis/pkg/pipeline"
)

// SignalBinder adapts a thunk whose underlying function already takes its
// own cancellation parameter (rather than a bare context.Context) so that
// middleware-driven aborts still reach it. GetSignal extracts the current
// context from an Args value (so a middleware can check it); ForwardSignal
// injects a (possibly aborted) context back into a fresh Args value before
// the call into the adapted function.
type SignalBinder[Args any] struct {
	GetSignal     func(args Args) context.Context
	ForwardSignal func(args Args, ctx context.Context) Args
}

// Bind wraps fn — a function taking an Args value that itself carries a
// context — into a Thunk[T] that participates in the task's middleware
// chain. On every invocation, the binder forwards the task's Ctx into a
// fresh Args value via ForwardSignal before calling fn, so an abort
// triggered by an outer middleware (timeout, hedging, ...) is visible to
// fn exactly as if it had been passed ctx directly.
func Bind[Args any, T any](binder SignalBinder[Args], args Args, fn func(Args) (T, error)) Thunk[T] {
	return func(ctx *pipeline.Ctx) (T, error) {
		boundArgs := args
		if binder.ForwardSignal != nil {
			boundArgs = binder.ForwardSignal(args, ctx.Context)
		}
		return fn(boundArgs)
	}
}
