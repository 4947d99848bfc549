// Package dispatch delivers state-change events to a listener in the order
// they were produced, without running the listener under the producer's
// lock.
//
// A producer calls Enqueue while it still holds its own mutex, which fixes
// the order, and Flush after releasing it. Listeners may call straight back
// into the producer: a nested Flush returns at once and the outer one
// delivers the new event after the current listener returns.
package dispatch

import "sync"

type Queue[T any] struct {
	fn func(T)

	mu       sync.Mutex
	pending  []T
	draining bool
}

// New returns a queue for fn. A nil fn makes every call a no-op.
func New[T any](fn func(T)) *Queue[T] {
	return &Queue[T]{fn: fn}
}

func (q *Queue[T]) Enqueue(v T) {
	if q.fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, v)
	q.mu.Unlock()
}

// Flush delivers everything pending. Only one goroutine drains at a time;
// the others return immediately and their events are delivered by it.
func (q *Queue[T]) Flush() {
	if q.fn == nil {
		return
	}

	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true

	for len(q.pending) > 0 {
		v := q.pending[0]
		var zero T
		q.pending[0] = zero
		q.pending = q.pending[1:]

		q.mu.Unlock()
		q.fn(v)
		q.mu.Lock()
	}

	q.pending = nil
	q.draining = false
	q.mu.Unlock()
}
