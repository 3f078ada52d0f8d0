// Package semaphore implements the distributed counting-semaphore
// primitive: up to limit concurrent holders of a key, each holding a
// distinct slot identified by a caller- or provider-assigned slotId.
//
// The shape mirrors pkg/lock: a Provider constructs Handles bound to a
// key, and Handle operations return pkg/task Tasks composed with the
// pkg/pipeline middleware chain. A SemaphoreAdapter gives the full
// primitive contract directly; a DatabaseAdapter gives a narrower CRUD
// surface that Promote lifts into one, using an atomic
// count-then-insert-under-limit step so that the limit invariant holds
// under concurrent acquire storms even on stores without a native
// acquire-if-below-limit operation.
package semaphore
