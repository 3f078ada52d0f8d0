// Package breakerlocal implements breaker.Adapter as a thin wrapper
// over the sony/gobreaker/v2-based pkg/resilience/xbreaker package, for
// single-instance deployments that want gobreaker's own sliding-window
// counters and Timeout-driven Open→HalfOpen recovery instead of the
// policy-pure breaker.Policy state machine.
//
// Only breaker.Consecutive translates faithfully onto gobreaker's
// ReadyToTrip hook (via xbreaker.NewConsecutiveFailures); every other
// Policy falls back to xbreaker's default consecutive-failures trip
// policy, since gobreaker's Settings has no notion of a sliding count
// or time window shaped like breaker.CountWindow/SamplingWindow.
// gobreaker also has no isolate concept, so Isolate/Reset are tracked
// here as a manual latch layered on top of the underlying breaker.
package breakerlocal

import (
	"context"
	"sync"
	"time"

	"github.com/aegiskit/aegis/pkg/backoff"
	"github.com/aegiskit/aegis/pkg/breaker"
	"github.com/aegiskit/aegis/pkg/resilience/xbreaker"
)

type entry struct {
	cb       *xbreaker.Breaker
	isolated bool
}

// Adapter is a breaker.Adapter backed by one xbreaker.Breaker per key.
type Adapter struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New builds an empty Adapter.
func New() *Adapter {
	return &Adapter{entries: make(map[string]*entry)}
}

var _ breaker.Adapter = (*Adapter)(nil)

func (a *Adapter) entryFor(key string, policy breaker.Policy) *entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.entries[key]
	if ok {
		return e
	}
	e = &entry{cb: newCircuitBreaker(key, policy)}
	a.entries[key] = e
	return e
}

func newCircuitBreaker(key string, policy breaker.Policy) *xbreaker.Breaker {
	opts := []xbreaker.BreakerOption{}
	if c, ok := policy.(*breaker.Consecutive); ok && c.FailureThreshold > 0 {
		opts = append(opts, xbreaker.WithTripPolicy(xbreaker.NewConsecutiveFailures(uint32(c.FailureThreshold))))
		if c.SuccessThreshold > 0 {
			opts = append(opts, xbreaker.WithMaxRequests(uint32(c.SuccessThreshold)))
		}
	}
	return xbreaker.NewBreaker(key, opts...)
}

func toStatus(s xbreaker.State) breaker.Status {
	switch s {
	case xbreaker.StateOpen:
		return breaker.Open
	case xbreaker.StateHalfOpen:
		return breaker.HalfOpen
	default:
		return breaker.Closed
	}
}

func (a *Adapter) GetState(_ context.Context, key string, policy breaker.Policy) (*breaker.State, error) {
	e := a.entryFor(key, policy)
	a.mu.Lock()
	isolated := e.isolated
	a.mu.Unlock()
	if isolated {
		return &breaker.State{Status: breaker.Isolated}, nil
	}
	return &breaker.State{Status: toStatus(e.cb.State())}, nil
}

// UpdateState is a no-op: gobreaker evaluates its own Open→HalfOpen
// recovery (driven by xbreaker.WithTimeout, not the wait backoff.Policy
// a distributed Adapter receives) the next time a call runs through it.
func (a *Adapter) UpdateState(_ context.Context, key string, policy breaker.Policy, _ backoff.Policy, _ time.Time) (breaker.Transition, error) {
	e := a.entryFor(key, policy)
	st := toStatus(e.cb.State())
	return breaker.Transition{From: st, To: st}, nil
}

func (a *Adapter) trackOutcome(key string, policy breaker.Policy, failed bool) breaker.Transition {
	e := a.entryFor(key, policy)
	before := toStatus(e.cb.State())
	_, _ = xbreaker.Execute(context.Background(), e.cb, func() (struct{}, error) {
		if failed {
			return struct{}{}, breaker.ErrOpen
		}
		return struct{}{}, nil
	})
	after := toStatus(e.cb.State())
	return breaker.Transition{From: before, To: after}
}

func (a *Adapter) TrackSuccess(_ context.Context, key string, policy breaker.Policy, _ time.Time) (breaker.Transition, error) {
	return a.trackOutcome(key, policy, false), nil
}

func (a *Adapter) TrackFailure(_ context.Context, key string, policy breaker.Policy, _ time.Time) (breaker.Transition, error) {
	return a.trackOutcome(key, policy, true), nil
}

func (a *Adapter) Isolate(_ context.Context, key string, policy breaker.Policy, _ time.Time) (breaker.Transition, error) {
	e := a.entryFor(key, policy)
	before := toStatus(e.cb.State())
	a.mu.Lock()
	e.isolated = true
	a.mu.Unlock()
	return breaker.Transition{From: before, To: breaker.Isolated}, nil
}

func (a *Adapter) Reset(_ context.Context, key string, policy breaker.Policy, _ time.Time) (breaker.Transition, error) {
	a.mu.Lock()
	before := breaker.Closed
	if e, ok := a.entries[key]; ok {
		if e.isolated {
			before = breaker.Isolated
		} else {
			before = toStatus(e.cb.State())
		}
	}
	a.entries[key] = &entry{cb: newCircuitBreaker(key, policy)}
	a.mu.Unlock()
	return breaker.Transition{From: before, To: breaker.Closed}, nil
}
