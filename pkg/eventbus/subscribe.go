package eventbus

import "github.com/google/uuid"

// Subscribe registers fn under a freshly generated listener identity and
// returns a function that deregisters it.
func (b *Bus) Subscribe(eventName string, fn ListenerFunc) (Unsubscribe, error) {
	identity := uuid.NewString()
	if err := b.AddListener(eventName, identity, fn); err != nil {
		return nil, err
	}
	return func() { b.RemoveListener(eventName, identity) }, nil
}

// SubscribeOnce is Subscribe, but fn is removed after its first run.
func (b *Bus) SubscribeOnce(eventName string, fn ListenerFunc) (Unsubscribe, error) {
	identity := uuid.NewString()
	if err := b.ListenOnce(eventName, identity, fn); err != nil {
		return nil, err
	}
	return func() { b.RemoveListener(eventName, identity) }, nil
}

// AsEventFunc adapts b into the EventFunc shape the lock, semaphore,
// cache, and breaker Providers' WithEventFunc option expects, so any of
// those primitives can broadcast through a shared Bus. Dispatch errors
// are swallowed: primitive event delivery is best-effort observability,
// never part of the operation's own result.
func AsEventFunc(b *Bus) func(eventName string, payload any) {
	return func(eventName string, payload any) {
		_ = b.Dispatch(Event{Name: eventName, Payload: payload})
	}
}
