package eventbus

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilListener is returned by AddListener (and its Subscribe/ListenOnce
// callers) when given a nil ListenerFunc.
var ErrNilListener = errors.New("eventbus: listener must not be nil")

// UnableToAddListenerError is returned when a listener could not be
// registered. Re-registering the same (eventName, listenerIdentity) pair
// is explicitly NOT an error — it is a no-op — so this only surfaces
// construction failures such as a nil listener.
type UnableToAddListenerError struct {
	EventName        string
	ListenerIdentity string
	Cause            error
}

func (e *UnableToAddListenerError) Error() string {
	return fmt.Sprintf("eventbus: unable to add listener %q for event %q: %s", e.ListenerIdentity, e.EventName, e.Cause)
}

func (e *UnableToAddListenerError) Unwrap() error { return e.Cause }

// UnableToDispatchError aggregates every listener error observed while
// dispatching one Event. A listener returning nil is not included.
type UnableToDispatchError struct {
	EventName string
	Errs      []error
}

func (e *UnableToDispatchError) Error() string {
	parts := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("eventbus: %d listener(s) failed dispatching %q: %s", len(e.Errs), e.EventName, strings.Join(parts, "; "))
}

func (e *UnableToDispatchError) Unwrap() []error { return e.Errs }
