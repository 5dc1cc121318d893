package core

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/destel/threach/internal/queue"
)

// ErrBreak is returned by a callback to stop the iteration without failing it.
var ErrBreak = errors.New("threach: break")

// PanicError wraps a value recovered from a panic in a callback or a traversal,
// together with the stack of the goroutine that panicked.
type PanicError struct {
	// Value is the original value passed to panic().
	Value any

	// Stack is the goroutine stack trace at the point of panic.
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

// recovered marks a panic caught by Run, as opposed to a *PanicError
// that a callback or a traversal returned as a regular error.
type recovered struct {
	*PanicError
}

func (r recovered) Unwrap() error {
	return r.PanicError
}

// Recovered reports whether err is a panic that Run caught itself, and returns it.
func Recovered(err error) (*PanicError, bool) {
	r, ok := err.(recovered)
	if !ok {
		return nil, false
	}
	return r.PanicError, true
}

func newPanicError(v any) *PanicError {
	// runtime.Stack truncates if the buffer is too small
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{
		Value: v,
		Stack: string(buf[:n]),
	}
}

func recoverPanic(v any) recovered {
	return recovered{newPanicError(v)}
}

// mailbox collects terminal errors. Every participant offers at most one error,
// so a capacity of participants+1 never rejects anything.
type mailbox struct {
	q *queue.Queue[error]
}

func newMailbox(capacity int) *mailbox {
	return &mailbox{q: queue.New[error](capacity, 0)}
}

// Offer records err without blocking. It returns false if the mailbox is full.
func (m *mailbox) Offer(err error) bool {
	return m.q.TryPush(err)
}

// First returns the earliest recorded error, or nil.
func (m *mailbox) First() error {
	err, _ := m.q.TryPop()
	return err
}

func (m *mailbox) Len() int {
	return m.q.Len()
}
