package keyspace

import "strings"

// Delimiters and sentinel tokens. These are reserved: a caller-supplied
// segment that equals a sentinel, or that contains a delimiter byte,
// is rejected at construction time (see validateSegment).
const (
	// IdentifierDelim separates the top-level parts of a prefixed key:
	// the root sentinel, the root prefix, the optional group, the key
	// sentinel, and the joined key segments.
	IdentifierDelim = ":"

	// SegmentDelim separates the individual segments within the root
	// prefix, the group, and the logical key.
	SegmentDelim = "/"

	sentinelRoot  = "_rt"
	sentinelGroup = "_gp"
	sentinelKey   = "_ky"
)

// Namespace is the naming authority for a family of keys. It is immutable
// after construction; WithGroup and AppendRoot return a new Namespace
// rather than mutating the receiver.
type Namespace struct {
	rootPrefix []string
	group      []string
}

// New constructs a Namespace from one or more root segments. Root segments
// are immutable for the lifetime of the Namespace; use AppendRoot to derive
// a namespace with an extended root.
func New(root ...string) (*Namespace, error) {
	if len(root) == 0 {
		return nil, ErrNoRoot
	}
	if err := validateSegments(root); err != nil {
		return nil, err
	}
	return &Namespace{rootPrefix: cloneSegments(root)}, nil
}

// MustNew is like New but panics on error. Intended for package-level
// namespace declarations where the root is a compile-time constant.
func MustNew(root ...string) *Namespace {
	ns, err := New(root...)
	if err != nil {
		panic(err)
	}
	return ns
}

// WithGroup returns a new Namespace sharing this namespace's root prefix
// but with the given group segments. An empty call clears the group.
func (n *Namespace) WithGroup(group ...string) (*Namespace, error) {
	if len(group) > 0 {
		if err := validateSegments(group); err != nil {
			return nil, err
		}
	}
	return &Namespace{
		rootPrefix: cloneSegments(n.rootPrefix),
		group:      cloneSegments(group),
	}, nil
}

// AppendRoot returns a new Namespace whose root prefix is this namespace's
// root prefix extended by the given segments. The group, if any, is
// preserved unchanged — AppendRoot never touches the group.
func (n *Namespace) AppendRoot(segments ...string) (*Namespace, error) {
	if len(segments) == 0 {
		return n, nil
	}
	if err := validateSegments(segments); err != nil {
		return nil, err
	}
	extended := make([]string, 0, len(n.rootPrefix)+len(segments))
	extended = append(extended, n.rootPrefix...)
	extended = append(extended, segments...)
	return &Namespace{
		rootPrefix: extended,
		group:      cloneSegments(n.group),
	}, nil
}

// RootPrefix returns a copy of the namespace's root segments.
func (n *Namespace) RootPrefix() []string { return cloneSegments(n.rootPrefix) }

// Group returns a copy of the namespace's group segments, or nil if none
// was set.
func (n *Namespace) Group() []string { return cloneSegments(n.group) }

// NewKey binds one or more logical key segments to this namespace,
// producing a Key whose Prefixed form is stable and collision-free with
// respect to any other (Namespace, segments) pair that differs in root,
// group, or segments.
func (n *Namespace) NewKey(segments ...string) (Key, error) {
	if len(segments) == 0 {
		return Key{}, ErrNoKeySegments
	}
	if err := validateSegments(segments); err != nil {
		return Key{}, err
	}
	return Key{
		namespace: n,
		segments:  cloneSegments(segments),
	}, nil
}

// validateSegments rejects empty segments and segments that would be
// ambiguous once joined: reserved sentinel tokens, and raw occurrences of
// either delimiter.
func validateSegments(segments []string) error {
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return ErrEmptySegment
		}
		switch s {
		case sentinelRoot, sentinelGroup, sentinelKey:
			return ErrReservedToken
		}
		if strings.Contains(s, IdentifierDelim) || strings.Contains(s, SegmentDelim) {
			return ErrReservedToken
		}
	}
	return nil
}

func cloneSegments(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// joinSegments is the SegmentDelim-joined form used inside one
// IdentifierDelim-separated part of the prefixed key.
func joinSegments(segments []string) string {
	return strings.Join(segments, SegmentDelim)
}
