// Package observe provides ordered state streams and one-shot event queues.
package observe

import (
	"context"
	"sync"
)

// Stream holds a current value and fans every published value out to its
// subscribers in publish order.
type Stream[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[*queue[T]]struct{}
	closed bool
}

func NewStream[T any](initial T) *Stream[T] {
	return &Stream[T]{
		value: initial,
		subs:  make(map[*queue[T]]struct{}),
	}
}

// Value returns the last published value.
func (s *Stream[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Publish replaces the current value and queues it for every subscriber.
// Publishing to a closed stream is a no-op.
func (s *Stream[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.value = v
	for q := range s.subs {
		q.push(v)
	}
}

// Subscribe returns a channel that first yields the current value and then
// every later one. The channel closes when ctx is done or the stream is closed.
func (s *Stream[T]) Subscribe(ctx context.Context) <-chan T {
	q := newQueue[T]()

	s.mu.Lock()
	q.push(s.value)
	if s.closed {
		q.close()
	} else {
		s.subs[q] = struct{}{}
	}
	s.mu.Unlock()

	go q.pump(ctx, func() {
		s.mu.Lock()
		delete(s.subs, q)
		s.mu.Unlock()
	})
	return q.out
}

// Close ends all subscriptions after they have drained.
func (s *Stream[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for q := range s.subs {
		q.close()
	}
}
