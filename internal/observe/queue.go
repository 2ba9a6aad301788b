package observe

import (
	"context"
	"sync"
)

// queue is an unbounded FIFO drained into out by a single pump goroutine,
// so producers never block on slow consumers and order is kept.
type queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	notify chan struct{}
	out    chan T
}

func newQueue[T any]() *queue[T] {
	return &queue[T]{
		notify: make(chan struct{}, 1),
		out:    make(chan T),
	}
}

func (q *queue[T]) push(v T) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, v)
	q.mu.Unlock()
	q.wake()
}

// close lets the pump deliver what is queued and then close out.
func (q *queue[T]) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *queue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// pump runs until the queue is closed and drained or ctx is done.
func (q *queue[T]) pump(ctx context.Context, onExit func()) {
	defer close(q.out)
	if onExit != nil {
		defer onExit()
	}

	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			var zero T
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()

			select {
			case q.out <- v:
			case <-ctx.Done():
				return
			}
			continue
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return
		}

		select {
		case <-q.notify:
		case <-ctx.Done():
			return
		}
	}
}
