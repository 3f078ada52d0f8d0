// Package eventbus is the toolkit's core event dispatch surface (C9): a
// listener registry keyed by (eventName, listenerIdentity), used by the
// lock, semaphore, cache, and circuit breaker primitives to broadcast
// their lifecycle events for observability. Wire transports (webhooks,
// message queues, a UI feed) are external collaborators that subscribe
// to a Bus; the bus itself never dials out.
package eventbus
