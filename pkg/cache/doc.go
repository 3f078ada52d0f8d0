// Package cache implements the distributed cache primitive: get/put/
// add/update/remove plus atomic increment/decrement, backed by an
// interchangeable Adapter (memory, Redis, SQL, MongoDB) storing opaque
// byte values with optional TTL.
//
// Unlike pkg/lock and pkg/semaphore, Cache has no separate Provider/
// Handle split: a Cache value is itself immutable configuration (an
// Adapter, a namespace, an event callback) and every key is addressed
// directly by its operation methods — same shape, implicit handle.
package cache
