package breaker

import (
	"context"
	"time"

	"github.com/aegiskit/aegis/pkg/backoff"
)

// RawTransform is the function an atomic update runs against a key's
// stored bytes (nil if the key has never been persisted) and returns
// the next bytes to persist. DatabaseAdapter implementations run it
// under their own atomicity guarantee (a CAS loop, a server-side
// script, or a row lock) since the transform itself cannot be shipped
// into the store as arbitrary code.
type RawTransform func(raw []byte) ([]byte, error)

// DatabaseAdapter is the narrow CRUD surface a plain store (SQL,
// MongoDB, Redis) exposes; Promote turns it into a full Adapter by
// closing each domain operation over a RawTransform that decodes,
// applies the pure state machine, and re-encodes against the
// `{ key, stateJSON }` storage shape.
type DatabaseAdapter interface {
	// Find returns the persisted stateJSON bytes for key, or nil if
	// absent.
	Find(ctx context.Context, key string) ([]byte, error)
	// AtomicUpdate applies transform to key's current bytes (nil if
	// key has never been touched) and persists the result isolated
	// from any concurrent update.
	AtomicUpdate(ctx context.Context, key string, transform RawTransform) ([]byte, error)
}

// Promote adapts a DatabaseAdapter into a full breaker.Adapter.
func Promote(db DatabaseAdapter) Adapter {
	return &promoted{db: db}
}

type promoted struct {
	db DatabaseAdapter
}

var _ Adapter = (*promoted)(nil)

func (p *promoted) GetState(ctx context.Context, key string, policy Policy) (*State, error) {
	raw, err := p.db.Find(ctx, key)
	if err != nil {
		return nil, err
	}
	s, ok, err := DecodeState(raw, policy)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (p *promoted) apply(ctx context.Context, key string, policy Policy, now time.Time, step func(State) State) (Transition, error) {
	var tr Transition
	_, err := p.db.AtomicUpdate(ctx, key, func(raw []byte) ([]byte, error) {
		cur, ok, err := DecodeState(raw, policy)
		if err != nil {
			return nil, err
		}
		if !ok {
			cur = InitialState(policy, now)
		}
		next := step(cur)
		tr = Transition{From: cur.Status, To: next.Status}
		return EncodeState(next)
	})
	return tr, err
}

func (p *promoted) UpdateState(ctx context.Context, key string, policy Policy, wait backoff.Policy, now time.Time) (Transition, error) {
	return p.apply(ctx, key, policy, now, func(s State) State {
		return UpdateState(s, policy, wait, now)
	})
}

func (p *promoted) TrackSuccess(ctx context.Context, key string, policy Policy, now time.Time) (Transition, error) {
	return p.apply(ctx, key, policy, now, func(s State) State {
		return TrackSuccess(s, policy, now)
	})
}

func (p *promoted) TrackFailure(ctx context.Context, key string, policy Policy, now time.Time) (Transition, error) {
	return p.apply(ctx, key, policy, now, func(s State) State {
		return TrackFailure(s, policy, now)
	})
}

func (p *promoted) Isolate(ctx context.Context, key string, policy Policy, now time.Time) (Transition, error) {
	return p.apply(ctx, key, policy, now, func(s State) State {
		return Isolate(s, policy, now)
	})
}

func (p *promoted) Reset(ctx context.Context, key string, policy Policy, now time.Time) (Transition, error) {
	return p.apply(ctx, key, policy, now, func(s State) State {
		return ResetState(s, policy, now)
	})
}
