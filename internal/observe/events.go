package observe

import "context"

// Events is a queue of one-shot notifications. Each event is delivered once,
// to whichever reader receives it, and is never replayed.
type Events[T any] struct {
	q      *queue[T]
	cancel context.CancelFunc
}

func NewEvents[T any]() *Events[T] {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Events[T]{q: newQueue[T](), cancel: cancel}
	go e.q.pump(ctx, nil)
	return e
}

func (e *Events[T]) Emit(v T) {
	e.q.push(v)
}

// C returns the delivery channel. It is closed after Close.
func (e *Events[T]) C() <-chan T {
	return e.q.out
}

// Close ends the queue. Events nobody has received yet are dropped, so an
// abandoned reader does not keep the pump alive.
func (e *Events[T]) Close() {
	e.q.close()
	e.cancel()
}
