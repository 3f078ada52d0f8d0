// Package pipeline implements the ordered, context-carrying function
// wrapper used throughout aegis: a Hook inspects or rewrites arguments,
// decides whether/when to call the next hook, and may inspect or rewrite
// the result or error on the way back out.
//
// Given a Chain of hooks [h1, h2, h3] wrapping a terminal function f,
// invocation order is h1 -> h2 -> h3 -> f: h1 is outermost and sees
// errors raised by f (or by h2/h3) last, after they have already passed
// back through the inner hooks. Chains are immutable values; Pipe and
// PipeWhen return a new Chain rather than mutating the receiver.
//
// pkg/task builds its middleware-aware Task type directly on top of
// Chain, instantiating the Args type parameter with an empty struct
// since a Task's thunk takes no caller-visible arguments.
package pipeline
