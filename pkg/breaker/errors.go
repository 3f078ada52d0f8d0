package breaker

import "errors"

var (
	// ErrEmptyKey is returned when an operation is given an empty key.
	ErrEmptyKey = errors.New("breaker: key must not be empty")
	// ErrNilAdapter is returned by NewProvider when adapter is nil.
	ErrNilAdapter = errors.New("breaker: adapter must not be nil")
	// ErrNilPolicy is returned when a Handle is created with no policy
	// and the provider has no default configured.
	ErrNilPolicy = errors.New("breaker: policy must not be nil")

	// ErrOpen is returned by RunOrFail when the circuit is Open or
	// Isolated and rejects the call without attempting it.
	ErrOpen = errors.New("breaker: circuit is open")

	// ErrConcurrentUpdate is returned by a DatabaseAdapter's AtomicUpdate
	// when its compare-and-set retry loop is exhausted under contention.
	ErrConcurrentUpdate = errors.New("breaker: too much contention updating state")

	// ErrInvalidPayload is returned by Transformer.Deserialize when the
	// payload is not a breaker.Payload.
	ErrInvalidPayload = errors.New("breaker: invalid serialized payload")
)
