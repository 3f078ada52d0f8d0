package breaker

import (
	"strings"
	"time"

	"github.com/aegiskit/aegis/pkg/serde"
)

// PayloadSettings carries a breaker Handle's call-classification knobs
// across the wire. The Policy itself is never serialized:
// Deserialize rebinds the payload's key to this process's own
// Provider, which supplies its own default Policy and backoff.
type PayloadSettings struct {
	Trigger        Trigger
	SlowCallTimeMs int64
}

// Payload is the wire shape of a breaker Handle: { key, settings }.
type Payload struct {
	Key      []string
	Settings PayloadSettings
}

// Transformer bridges breaker.Handle to and from Payload for one
// Provider, implementing serde.Transformer.
type Transformer struct {
	provider    *Provider
	adapterType string
}

// NewTransformer builds a Transformer for p. adapterType names the
// concrete Adapter implementation p was built over (e.g.
// "breakerredis"), and must match across processes for a serialized
// handle to resolve.
func NewTransformer(p *Provider, adapterType string) *Transformer {
	return &Transformer{provider: p, adapterType: adapterType}
}

var _ serde.Transformer = (*Transformer)(nil)

func (t *Transformer) Name() []string {
	ns := t.provider.namespace
	if ns == nil {
		ns = defaultNamespace
	}
	return serde.BuildName("breaker", "breaker", t.adapterType, strings.Join(ns.RootPrefix(), "/"))
}

func (t *Transformer) IsApplicable(v any) bool {
	h, ok := v.(*Handle)
	return ok && h.provider == t.provider
}

func (t *Transformer) Serialize(v any) (any, error) {
	h := v.(*Handle)
	return Payload{
		Key: []string{h.key},
		Settings: PayloadSettings{
			Trigger:        h.trigger,
			SlowCallTimeMs: h.slowCall.Milliseconds(),
		},
	}, nil
}

func (t *Transformer) Deserialize(payload any) (any, error) {
	p, ok := payload.(Payload)
	if !ok {
		return nil, ErrInvalidPayload
	}
	if len(p.Key) == 0 {
		return nil, ErrEmptyKey
	}

	key := strings.Join(p.Key, "/")
	h, err := t.provider.Create(key,
		WithTrigger(p.Settings.Trigger),
		WithSlowCallTime(time.Duration(p.Settings.SlowCallTimeMs)*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}
