// Package lock implements the distributed mutual-exclusion lock
// primitive: a Provider holds an Adapter and a keyspace.Namespace and
// mints Handles; each Handle operation (Acquire, Release, Refresh, Run)
// returns a *task.Task so cancellation, retry, and the other resilience
// middlewares compose onto it exactly the way they compose onto any
// other unit of work.
//
// Backends plug in at the Adapter boundary. A backend that only exposes
// CRUD (most SQL and document stores) implements the narrower
// DatabaseAdapter contract instead and is lifted to a full Adapter by
// Promote, which encodes the insert/find/CAS collapse described for the
// database-backed adapter promotion.
package lock
