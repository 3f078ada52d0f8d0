package breaker

import (
	"time"

	"github.com/aegiskit/aegis/pkg/backoff"
)

// UpdateState re-evaluates wall-clock-driven transitions that don't
// depend on a call outcome: Open → HalfOpen once the wait policy's delay
// for the current attempt has elapsed. Closed, HalfOpen, and Isolated
// pass through unchanged. This is the function a storage adapter's
// atomicUpdate(key, transform) runs on every acquire attempt.
func UpdateState(s State, policy Policy, wait backoff.Policy, now time.Time) State {
	if s.Status != Open {
		return s
	}
	if wait == nil {
		return s
	}
	if now.Sub(s.StartedAt) < wait.Next(s.Attempt, nil) {
		return s
	}
	return State{
		Status:    HalfOpen,
		Metrics:   policy.InitialMetrics(),
		Attempt:   s.Attempt,
		StartedAt: now,
	}
}

// TrackSuccess folds a successful outcome into s under policy, applying
// whatever status transition the policy's decision functions call for.
func TrackSuccess(s State, policy Policy, now time.Time) State {
	switch s.Status {
	case Closed:
		m := policy.TrackSuccess(s.Metrics, now)
		if policy.WhenClosed(m) {
			return openState(policy, s.Attempt+1, now)
		}
		return State{Status: Closed, Metrics: m, Attempt: s.Attempt, StartedAt: s.StartedAt}
	case HalfOpen:
		m := policy.TrackSuccess(s.Metrics, now)
		switch policy.WhenHalfOpened(m) {
		case HalfOpenClose:
			return State{Status: Closed, Metrics: policy.InitialMetrics(), Attempt: 0, StartedAt: now}
		case HalfOpenReopen:
			return openState(policy, s.Attempt+1, now)
		default:
			return State{Status: HalfOpen, Metrics: m, Attempt: s.Attempt, StartedAt: s.StartedAt}
		}
	default:
		return s
	}
}

// TrackFailure folds a failed (or policy-classified-as-failure) outcome
// into s under policy.
func TrackFailure(s State, policy Policy, now time.Time) State {
	switch s.Status {
	case Closed:
		m := policy.TrackFailure(s.Metrics, now)
		if policy.WhenClosed(m) {
			return openState(policy, s.Attempt+1, now)
		}
		return State{Status: Closed, Metrics: m, Attempt: s.Attempt, StartedAt: s.StartedAt}
	case HalfOpen:
		m := policy.TrackFailure(s.Metrics, now)
		switch policy.WhenHalfOpened(m) {
		case HalfOpenClose:
			return State{Status: Closed, Metrics: policy.InitialMetrics(), Attempt: 0, StartedAt: now}
		default:
			// a single failure in HalfOpen always re-opens
			return openState(policy, s.Attempt+1, now)
		}
	default:
		return s
	}
}

func openState(policy Policy, attempt int, now time.Time) State {
	return State{Status: Open, Metrics: policy.InitialMetrics(), Attempt: attempt, StartedAt: now}
}

// Isolate latches s to Isolated regardless of current status.
func Isolate(_ State, policy Policy, now time.Time) State {
	return State{Status: Isolated, Metrics: policy.InitialMetrics(), Attempt: 0, StartedAt: now}
}

// ResetState returns s to its initial Closed configuration.
func ResetState(_ State, policy Policy, now time.Time) State {
	return State{Status: Closed, Metrics: policy.InitialMetrics(), Attempt: 0, StartedAt: now}
}

// InitialState is the state a circuit starts in before any call.
func InitialState(policy Policy, now time.Time) State {
	return State{Status: Closed, Metrics: policy.InitialMetrics(), Attempt: 0, StartedAt: now}
}
