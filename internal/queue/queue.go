// Package queue provides a fixed-capacity FIFO whose blocking operations are bounded by a timeout.
package queue

import (
	"time"
)

// Status is the result of a Push or Pop.
type Status int

const (
	// OK means the item was enqueued or dequeued.
	OK Status = iota
	// TimedOut means the timeout elapsed first.
	TimedOut
	// Stopped means the stop channel was closed first.
	Stopped
	// Drained means the eof channel was closed and the queue was empty.
	Drained
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case TimedOut:
		return "timed out"
	case Stopped:
		return "stopped"
	case Drained:
		return "drained"
	default:
		return "unknown"
	}
}

// Queue is a bounded blocking channel. Both Push and Pop wait at most the configured timeout.
// A zero timeout makes them non-blocking.
type Queue[T any] struct {
	items   chan T
	timeout time.Duration
}

// New creates a queue that holds at most capacity items.
func New[T any](capacity int, timeout time.Duration) *Queue[T] {
	if capacity <= 0 {
		panic("queue: capacity must be positive")
	}
	if timeout < 0 {
		panic("queue: timeout must be non-negative")
	}

	return &Queue[T]{
		items:   make(chan T, capacity),
		timeout: timeout,
	}
}

// TryPush enqueues item. It returns false if the queue stayed full for the whole timeout.
func (q *Queue[T]) TryPush(item T) bool {
	return q.Push(item, nil) == OK
}

// TryPop dequeues an item. It returns false if the queue stayed empty for the whole timeout.
func (q *Queue[T]) TryPop() (T, bool) {
	item, status := q.Pop(nil, nil)
	return item, status == OK
}

// Push is like TryPush, but also returns early with Stopped once stop is closed.
// A nil stop channel is never closed.
func (q *Queue[T]) Push(item T, stop <-chan struct{}) Status {
	// fast path: room available right now
	select {
	case q.items <- item:
		return OK
	default:
	}

	if q.timeout == 0 {
		return TimedOut
	}

	timer := time.NewTimer(q.timeout)
	defer timer.Stop()

	select {
	case q.items <- item:
		return OK
	case <-stop:
		return Stopped
	case <-timer.C:
		return TimedOut
	}
}

// Pop is like TryPop, but also returns early with Stopped once stop is closed,
// and with Drained once eof is closed and nothing is left in the queue.
// Closing eof is a promise that no more items will be pushed.
func (q *Queue[T]) Pop(stop, eof <-chan struct{}) (T, Status) {
	var zero T

	select {
	case item := <-q.items:
		return item, OK
	default:
	}

	if q.timeout == 0 {
		return zero, q.popEOF(eof)
	}

	timer := time.NewTimer(q.timeout)
	defer timer.Stop()

	select {
	case item := <-q.items:
		return item, OK
	case <-stop:
		return zero, Stopped
	case <-eof:
		// eof and an item may have been ready at the same time
		select {
		case item := <-q.items:
			return item, OK
		default:
			return zero, Drained
		}
	case <-timer.C:
		return zero, TimedOut
	}
}

func (q *Queue[T]) popEOF(eof <-chan struct{}) Status {
	select {
	case <-eof:
		return Drained
	default:
		return TimedOut
	}
}

// Len returns the number of queued items. The value may be stale in concurrent contexts.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Cap returns the capacity the queue was created with.
func (q *Queue[T]) Cap() int {
	return cap(q.items)
}
