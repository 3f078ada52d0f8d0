// Package resilience holds the shared contract every resilience
// middleware (pkg/resilience/retry, timeout, hedge, fallback) builds on:
// an ErrorPolicy that classifies an attempt's outcome as a failure worth
// acting on, and the callback shapes used for observability.
//
// Each middleware is a task.Middleware[T], so they compose by Task.Pipe
// the same way any other middleware does. The recommended outer-to-inner
// order is Fallback, Retry, Timeout, Hedging, circuit-breaker, operation
// — but nothing in this package enforces that order; composability is
// the only requirement.
package resilience
