// Package breakermemory implements an in-process breaker.Adapter over a
// per-key striped mutex, for single-instance operation, tests, and as a
// concrete default before wiring a distributed backend.
package breakermemory

import (
	"context"
	"sync"
	"time"

	"github.com/aegiskit/aegis/pkg/backoff"
	"github.com/aegiskit/aegis/pkg/breaker"
	"github.com/aegiskit/aegis/pkg/xkeylock"
)

// Adapter is a breaker.Adapter backed by an in-process map of
// key → State. Each key's read-transform-write is serialized through a
// xkeylock.KeyLock rather than one adapter-wide mutex.
type Adapter struct {
	keys  xkeylock.KeyLock
	store sync.Map // map[string]breaker.State
}

// New builds an empty Adapter.
func New() *Adapter {
	return &Adapter{keys: xkeylock.New()}
}

var _ breaker.Adapter = (*Adapter)(nil)

func (a *Adapter) GetState(_ context.Context, key string, _ breaker.Policy) (*breaker.State, error) {
	v, ok := a.store.Load(key)
	if !ok {
		return nil, nil
	}
	s := v.(breaker.State)
	return &s, nil
}

func (a *Adapter) UpdateState(ctx context.Context, key string, policy breaker.Policy, wait backoff.Policy, now time.Time) (breaker.Transition, error) {
	return a.apply(ctx, key, func(s breaker.State) breaker.State {
		return breaker.UpdateState(s, policy, wait, now)
	}, policy, now)
}

func (a *Adapter) TrackSuccess(ctx context.Context, key string, policy breaker.Policy, now time.Time) (breaker.Transition, error) {
	return a.apply(ctx, key, func(s breaker.State) breaker.State {
		return breaker.TrackSuccess(s, policy, now)
	}, policy, now)
}

func (a *Adapter) TrackFailure(ctx context.Context, key string, policy breaker.Policy, now time.Time) (breaker.Transition, error) {
	return a.apply(ctx, key, func(s breaker.State) breaker.State {
		return breaker.TrackFailure(s, policy, now)
	}, policy, now)
}

func (a *Adapter) Isolate(ctx context.Context, key string, policy breaker.Policy, now time.Time) (breaker.Transition, error) {
	return a.apply(ctx, key, func(s breaker.State) breaker.State {
		return breaker.Isolate(s, policy, now)
	}, policy, now)
}

func (a *Adapter) Reset(ctx context.Context, key string, policy breaker.Policy, now time.Time) (breaker.Transition, error) {
	return a.apply(ctx, key, func(s breaker.State) breaker.State {
		return breaker.ResetState(s, policy, now)
	}, policy, now)
}

// apply acquires key's critical section, seeds the state if absent, runs
// transform, stores the result, and reports the resulting Transition.
func (a *Adapter) apply(ctx context.Context, key string, transform func(breaker.State) breaker.State, policy breaker.Policy, now time.Time) (breaker.Transition, error) {
	h, err := a.keys.Acquire(ctx, key)
	if err != nil {
		return breaker.Transition{}, err
	}
	defer h.Unlock()

	current := breaker.InitialState(policy, now)
	if v, ok := a.store.Load(key); ok {
		current = v.(breaker.State)
	}
	next := transform(current)
	a.store.Store(key, next)
	return breaker.Transition{From: current.Status, To: next.Status}, nil
}
