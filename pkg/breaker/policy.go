package breaker

import "time"

// HalfOpenDecision is what a policy's WhenHalfOpened evaluation decides
// should happen to the circuit next.
type HalfOpenDecision int

const (
	// HalfOpenContinue keeps probing in HalfOpen.
	HalfOpenContinue HalfOpenDecision = iota
	// HalfOpenClose closes the circuit; metrics reset.
	HalfOpenClose
	// HalfOpenReopen re-opens the circuit, incrementing Attempt.
	HalfOpenReopen
)

// Policy is the pure, no-I/O, no-wall-clock-reads decision layer:
// every method takes `now` explicitly rather than calling
// time.Now() itself, so the state machine above it is the only thing
// that touches the clock.
type Policy interface {
	// Name identifies the policy for diagnostics and serialized state.
	Name() string
	// InitialMetrics is the zero-value Metrics a fresh Closed or
	// HalfOpen episode starts from.
	InitialMetrics() Metrics
	// TrackSuccess folds a success outcome into m.
	TrackSuccess(m Metrics, now time.Time) Metrics
	// TrackFailure folds a failure outcome into m.
	TrackFailure(m Metrics, now time.Time) Metrics
	// WhenClosed reports whether accumulated Closed-state metrics
	// warrant tripping to Open.
	WhenClosed(m Metrics) bool
	// WhenHalfOpened reports what accumulated HalfOpen-state metrics
	// warrant: closing, re-opening, or continuing to probe.
	WhenHalfOpened(m Metrics) HalfOpenDecision
	// IsEqual compares two Metrics values of this policy's own shape,
	// used by tests and by State.Equal.
	IsEqual(a, b Metrics) bool
	// DecodeMetrics rehydrates this policy's own Metrics shape from the
	// JSON raw bytes a DatabaseAdapter persisted as stateJSON.
	DecodeMetrics(raw []byte) (Metrics, error)
}

// Trigger selects which outcomes of a slow call count toward the
// breaker's failure tracking.
type Trigger int

const (
	// TriggerOnlyError counts only thrown errors as failures; a slow
	// but successful call still counts as success.
	TriggerOnlyError Trigger = iota
	// TriggerOnlySlowCall counts only calls over slowCallTime as
	// failures; a fast call that errors (and passes the error policy)
	// still counts as success.
	TriggerOnlySlowCall
	// TriggerBoth counts either an error or a slow call as failure.
	TriggerBoth
)
