package lock

import (
	"strings"
	"time"

	"github.com/aegiskit/aegis/pkg/serde"
)

// Payload is the wire shape of a lock Handle: { key, ttlInMs, lockId }.
type Payload struct {
	Key     []string
	TTLInMs *int64
	LockID  string
}

// Transformer bridges lock.Handle to and from Payload for one Provider,
// implementing serde.Transformer.
type Transformer struct {
	provider    *Provider
	adapterType string
}

// NewTransformer builds a Transformer for p. adapterType names the
// concrete Adapter implementation p was built over (e.g. "lockredis"),
// and must match across processes for a serialized handle to resolve.
func NewTransformer(p *Provider, adapterType string) *Transformer {
	return &Transformer{provider: p, adapterType: adapterType}
}

var _ serde.Transformer = (*Transformer)(nil)

func (t *Transformer) Name() []string {
	ns := t.provider.namespace
	if ns == nil {
		ns = defaultNamespace
	}
	return serde.BuildName("lock", "lock", t.adapterType, strings.Join(ns.RootPrefix(), "/"))
}

func (t *Transformer) IsApplicable(v any) bool {
	h, ok := v.(*Handle)
	return ok && h.provider == t.provider
}

func (t *Transformer) Serialize(v any) (any, error) {
	h := v.(*Handle)
	p := Payload{Key: []string{h.key}, LockID: h.lockID}
	if h.ttl > 0 {
		ms := h.ttl.Milliseconds()
		p.TTLInMs = &ms
	}
	return p, nil
}

func (t *Transformer) Deserialize(payload any) (any, error) {
	p, ok := payload.(Payload)
	if !ok {
		return nil, ErrInvalidPayload
	}
	if len(p.Key) == 0 {
		return nil, ErrEmptyKey
	}
	ttl := time.Duration(0)
	if p.TTLInMs != nil {
		ttl = time.Duration(*p.TTLInMs) * time.Millisecond
	}

	ns := t.provider.namespace
	if ns == nil {
		ns = defaultNamespace
	}
	k, err := ns.NewKey(p.Key...)
	if err != nil {
		return nil, err
	}
	return &Handle{
		provider: t.provider,
		key:      strings.Join(p.Key, "/"),
		prefixed: k.Prefixed(),
		lockID:   p.LockID,
		ttl:      ttl,
	}, nil
}
