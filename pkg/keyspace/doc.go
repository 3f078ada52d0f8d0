// Package keyspace gives every coordination primitive (lock, semaphore,
// cache, circuit breaker) a stable, collision-proof mapping from a
// caller-supplied logical key to the string an adapter actually stores.
//
// A Namespace owns an immutable root prefix and an optional group. Keys
// produced from the same Namespace and the same logical segments always
// serialize to the same prefixed string; keys from namespaces that differ
// in root, group, or delimiters never collide, even if the caller's raw
// segments happen to match.
package keyspace
