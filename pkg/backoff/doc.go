// Package backoff implements the pure wait-time functions the resilience
// middlewares (pkg/resilience/retry, pkg/breaker) use between attempts.
//
// A Policy is a pure function of (attempt, error) to a duration — no
// clock reads, no I/O, no shared state beyond an injectable random
// source, so the exact wait sequence a policy produces is reproducible in
// tests. Four canonical shapes are provided (Constant, Linear,
// Exponential, Polynomial), each composable with a shared jitter
// transform, plus Dynamic for policies that re-select their parameters by
// inspecting the error.
package backoff
