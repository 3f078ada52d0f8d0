package keyspace

import "errors"

// Predefined errors. Use errors.Is for matching, e.g.:
//
//	if errors.Is(err, keyspace.ErrEmptySegment) {
//	    // reject the key
//	}
var (
	// ErrEmptySegment is returned when a root, group, or key segment is
	// empty or contains only whitespace.
	ErrEmptySegment = errors.New("keyspace: segment must not be empty")

	// ErrReservedToken is returned when a caller-supplied segment equals
	// one of the sentinel tokens reserved for internal use (_rt, _gp, _ky)
	// or contains one of the namespace delimiters.
	ErrReservedToken = errors.New("keyspace: segment contains a reserved token or delimiter")

	// ErrNoRoot is returned when constructing a Namespace with zero root
	// segments.
	ErrNoRoot = errors.New("keyspace: namespace requires at least one root segment")

	// ErrNoKeySegments is returned when NewKey is called with zero
	// segments.
	ErrNoKeySegments = errors.New("keyspace: key requires at least one segment")
)
