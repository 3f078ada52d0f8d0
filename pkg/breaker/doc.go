// Package breaker implements the distributed circuit breaker primitive:
// a Closed/Open/HalfOpen/Isolated state machine whose transitions are
// driven by pure policy functions (no I/O, no clock reads outside an
// injected now) and persisted through an interchangeable Adapter
// (memory, Redis, SQL, MongoDB, or a process-local gobreaker-backed
// adapter), mirroring the Provider/Handle shape pkg/lock and
// pkg/semaphore already establish.
//
// Three policies ship: Consecutive (failure/success streaks),
// CountWindow (ratio over a bounded ring buffer of outcomes), and
// SamplingWindow (ratio over time-bucketed samples). Each implements
// Policy and owns its own Metrics shape.
package breaker
