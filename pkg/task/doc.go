// Package task implements the deferred, cancellable, middleware-aware
// unit of work every aegis primitive hands back to its caller.
//
// A Task is lazy and stateless: constructing one does nothing, and each
// call to Run executes the thunk through the task's middleware chain from
// scratch — there is no memoization between runs. A Task's chain is
// immutable; Pipe and PipeWhen return a new Task.
package task
