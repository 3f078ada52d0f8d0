package keyspace

import "strings"

// Key is a logical key bound to a Namespace. Two Keys are equal iff their
// Prefixed form is identical.
type Key struct {
	namespace *Namespace
	segments  []string
}

// Namespace returns the Namespace this key was constructed from.
func (k Key) Namespace() *Namespace { return k.namespace }

// Segments returns a copy of the logical segments supplied to NewKey.
func (k Key) Segments() []string { return cloneSegments(k.segments) }

// Prefixed renders the adapter-facing key:
//
//	_rt:<root>[:_gp:<group>]:_ky:<segments>
//
// where <root>, <group>, and <segments> are each the SegmentDelim-joined
// form of their respective segment slices.
func (k Key) Prefixed() string {
	parts := make([]string, 0, 6)
	parts = append(parts, sentinelRoot, joinSegments(k.namespace.rootPrefix))
	if len(k.namespace.group) > 0 {
		parts = append(parts, sentinelGroup, joinSegments(k.namespace.group))
	}
	parts = append(parts, sentinelKey, joinSegments(k.segments))
	return strings.Join(parts, IdentifierDelim)
}

// String implements fmt.Stringer and returns the Prefixed form, making
// Key safe to use directly as a log attribute or map key surrogate.
func (k Key) String() string { return k.Prefixed() }

// Equal reports whether two keys produce the same Prefixed form.
func (k Key) Equal(other Key) bool { return k.Prefixed() == other.Prefixed() }
