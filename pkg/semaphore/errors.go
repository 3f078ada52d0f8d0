package semaphore

import "errors"

var (
	// ErrEmptyKey is returned by Provider.Create when the key is empty.
	ErrEmptyKey = errors.New("semaphore: key must not be empty")
	// ErrNilAdapter is returned by NewProvider when adapter is nil.
	ErrNilAdapter = errors.New("semaphore: adapter must not be nil")
	// ErrZeroLimit is returned by Provider.Create when limit <= 0.
	ErrZeroLimit = errors.New("semaphore: limit must be positive")

	// ErrLimitReached is the typed error AcquireOrFail surfaces when
	// every slot is held.
	ErrLimitReached = errors.New("semaphore: limit reached")
	// ErrFailedRelease is the typed error ReleaseOrFail surfaces when the
	// slot could not be released (not held, or held by another slotId).
	ErrFailedRelease = errors.New("semaphore: failed to release slot")
	// ErrFailedRefresh is the typed error RefreshOrFail surfaces when the
	// slot could not be refreshed.
	ErrFailedRefresh = errors.New("semaphore: failed to refresh slot")
	// ErrBlockingTimeout is returned by AcquireBlockingOrFail when the
	// deadline elapses without acquiring a slot.
	ErrBlockingTimeout = errors.New("semaphore: acquire blocking deadline exceeded")

	// ErrKeyAlreadyExists is returned by a DatabaseAdapter's InsertSlot
	// when the (key, slotId) pair already has a row; used by Promote to
	// detect a live-vs-expired collision exactly as pkg/lock does.
	ErrKeyAlreadyExists = errors.New("semaphore: slot already exists")

	// ErrInvalidPayload is returned by Transformer.Deserialize when the
	// payload is not a semaphore.Payload.
	ErrInvalidPayload = errors.New("semaphore: invalid serialized payload")
)
