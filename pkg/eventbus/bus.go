package eventbus

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Event is the unit of dispatch: an event name and an operation-specific
// payload (typically the primitive Handle the event occurred on).
type Event struct {
	Name    string
	Payload any
}

// ListenerFunc receives a dispatched Event. A non-nil return becomes part
// of the UnableToDispatchError raised for that Dispatch call; it does not
// stop other listeners from running.
type ListenerFunc func(Event) error

// Unsubscribe removes the listener a Subscribe/SubscribeOnce call
// registered. Safe to call more than once.
type Unsubscribe func()

// Bus is a mutable, concurrency-safe listener registry keyed by
// (eventName, listenerIdentity). The zero value is not usable; build one
// with New.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string]map[string]ListenerFunc
	tracer    trace.Tracer
}

// Option configures a Bus.
type Option func(*Bus)

// WithTracer attaches an otel Tracer; DispatchContext wraps each
// dispatch in an "eventbus.dispatch" span carrying the event name as its
// event.name attribute. Without a tracer (or with
// New's default), DispatchContext still runs but produces no span.
func WithTracer(tracer trace.Tracer) Option {
	return func(b *Bus) { b.tracer = tracer }
}

// New builds an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{listeners: make(map[string]map[string]ListenerFunc), tracer: noop.NewTracerProvider().Tracer("")}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddListener registers fn under (eventName, listenerIdentity).
// Re-registering the same pair is a no-op: the existing listener is left
// in place.
func (b *Bus) AddListener(eventName, listenerIdentity string, fn ListenerFunc) error {
	if fn == nil {
		return &UnableToAddListenerError{EventName: eventName, ListenerIdentity: listenerIdentity, Cause: ErrNilListener}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	byIdentity, ok := b.listeners[eventName]
	if !ok {
		byIdentity = make(map[string]ListenerFunc)
		b.listeners[eventName] = byIdentity
	}
	if _, exists := byIdentity[listenerIdentity]; exists {
		return nil
	}
	byIdentity[listenerIdentity] = fn
	return nil
}

// RemoveListener deregisters (eventName, listenerIdentity). A no-op if no
// such listener is registered.
func (b *Bus) RemoveListener(eventName, listenerIdentity string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	byIdentity, ok := b.listeners[eventName]
	if !ok {
		return
	}
	delete(byIdentity, listenerIdentity)
	if len(byIdentity) == 0 {
		delete(b.listeners, eventName)
	}
}

// ListenOnce registers fn under (eventName, listenerIdentity) and removes
// it as soon as it has run once, regardless of the error it returns.
func (b *Bus) ListenOnce(eventName, listenerIdentity string, fn ListenerFunc) error {
	if fn == nil {
		return &UnableToAddListenerError{EventName: eventName, ListenerIdentity: listenerIdentity, Cause: ErrNilListener}
	}
	var once sync.Once
	wrapped := func(e Event) error {
		var err error
		once.Do(func() {
			defer b.RemoveListener(eventName, listenerIdentity)
			err = fn(e)
		})
		return err
	}
	return b.AddListener(eventName, listenerIdentity, wrapped)
}

// Dispatch runs every listener registered for event.Name against a
// snapshot taken under read lock, so a listener is free to add or remove
// listeners (including itself) without deadlocking. Returns an
// UnableToDispatchError aggregating every listener error, or nil if every
// listener succeeded.
func (b *Bus) Dispatch(event Event) error {
	b.mu.RLock()
	byIdentity := b.listeners[event.Name]
	fns := make([]ListenerFunc, 0, len(byIdentity))
	for _, fn := range byIdentity {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	var errs []error
	for _, fn := range fns {
		if err := fn(event); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &UnableToDispatchError{EventName: event.Name, Errs: errs}
	}
	return nil
}

// DispatchContext is Dispatch wrapped in an otel span named
// "eventbus.dispatch" with an event.name attribute set to event.Name,
// recording the dispatch error (if any) on the span before returning it.
func (b *Bus) DispatchContext(ctx context.Context, event Event) error {
	_, span := b.tracer.Start(ctx, "eventbus.dispatch",
		trace.WithAttributes(attribute.String("event.name", event.Name)))
	defer span.End()

	err := b.Dispatch(event)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
