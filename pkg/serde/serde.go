// Package serde is the transformer registry that lets a coordination
// primitive's Handle cross a process boundary: a caller
// serializes a handle on process A, ships the payload over the wire,
// and deserializes it on process B, where it resolves to a handle
// bound to process B's own adapter for the same namespaced key.
//
// Each provider (lock, semaphore, circuit breaker) registers exactly
// one Transformer. The registry tries each registered Transformer's
// IsApplicable in registration order — a Chain, mirroring the
// middleware chain pkg/pipeline already uses elsewhere in this module —
// and the first match serializes or deserializes the value.
package serde

import "sync"

// Transformer bridges one concrete Handle type to and from its wire
// payload.
type Transformer interface {
	// Name is this transformer's discriminator, built from
	// [primitive, transformer name, adapter type name,
	// namespace prefix] with blank segments dropped. It travels
	// alongside the payload so Deserialize can find the right
	// Transformer again.
	Name() []string
	// IsApplicable reports whether v is a handle this transformer owns:
	// true iff its (serdeTransformerName, namespace, adapterType) all
	// match.
	IsApplicable(v any) bool
	// Serialize converts a handle this transformer owns into its wire
	// payload.
	Serialize(v any) (any, error)
	// Deserialize reconstructs a handle bound to this process's own
	// adapter from payload.
	Deserialize(payload any) (any, error)
}

// Registry holds every Transformer a process has registered, keyed by
// nothing more than registration order — matching is always a linear
// scan through IsApplicable, same as the rest of this module prefers
// explicit composition over indexed lookup.
type Registry struct {
	mu           sync.RWMutex
	transformers []Transformer
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds t to the registry. Order matters only in that the
// first IsApplicable match wins; distinct primitives should never
// overlap in practice since each checks its own concrete Handle type.
func (r *Registry) Register(t Transformer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transformers = append(r.transformers, t)
}

// Serialize finds the first registered Transformer whose IsApplicable
// matches v, and returns its Name alongside the serialized payload.
func (r *Registry) Serialize(v any) ([]string, any, error) {
	t := r.find(func(t Transformer) bool { return t.IsApplicable(v) })
	if t == nil {
		return nil, nil, ErrSerialization
	}
	payload, err := t.Serialize(v)
	if err != nil {
		return nil, nil, err
	}
	return t.Name(), payload, nil
}

// Deserialize finds the registered Transformer whose Name matches name
// and reconstructs a handle from payload.
func (r *Registry) Deserialize(name []string, payload any) (any, error) {
	t := r.find(func(t Transformer) bool { return sameName(t.Name(), name) })
	if t == nil {
		return nil, ErrDeserialization
	}
	v, err := t.Deserialize(payload)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Registry) find(match func(Transformer) bool) Transformer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transformers {
		if match(t) {
			return t
		}
	}
	return nil
}

func sameName(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// BuildName joins non-blank segments into a transformer Name:
// [primitive, transformer name, adapter type name, namespace prefix].
func BuildName(segments ...string) []string {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
