package cache

import "errors"

var (
	// ErrEmptyKey is returned when an operation is given an empty key.
	ErrEmptyKey = errors.New("cache: key must not be empty")
	// ErrNilAdapter is returned by New when adapter is nil.
	ErrNilAdapter = errors.New("cache: adapter must not be nil")

	// ErrKeyNotFound is the typed error GetOrFail (and GetJSON through
	// it) surfaces when a key has no value (or has expired).
	ErrKeyNotFound = errors.New("cache: key not found")
	// ErrNotInteger is returned by Increment/Decrement when the stored
	// value cannot be parsed as an integer.
	ErrNotInteger = errors.New("cache: value is not an integer")
)
