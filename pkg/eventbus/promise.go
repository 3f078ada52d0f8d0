package eventbus

import (
	"context"

	"github.com/google/uuid"

	"github.com/aegiskit/aegis/pkg/pipeline"
	"github.com/aegiskit/aegis/pkg/task"
)

// AsPromise returns a Task that resolves with the next Event dispatched
// under eventName. If the Task's context is cancelled first, it returns
// the context's cause and deregisters the listener.
func (b *Bus) AsPromise(eventName string) *task.Task[Event] {
	return task.New(func(ctx *pipeline.Ctx) (Event, error) {
		ch := make(chan Event, 1)
		identity := uuid.NewString()

		err := b.ListenOnce(eventName, identity, func(e Event) error {
			select {
			case ch <- e:
			default:
			}
			return nil
		})
		if err != nil {
			var zero Event
			return zero, err
		}

		select {
		case e := <-ch:
			return e, nil
		case <-ctx.Done():
			b.RemoveListener(eventName, identity)
			var zero Event
			return zero, context.Cause(ctx)
		}
	})
}
