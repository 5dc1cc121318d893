package core

// Outcome is the terminal state of a single worker.
type Outcome int

const (
	// NormalExit means the worker saw the producer exhausted and the queue empty.
	NormalExit Outcome = iota
	// Cancelled means the worker observed bail raised by someone else.
	Cancelled
	// Faulted means the callback returned an error or panicked.
	Faulted
	// BrokeLoop means the callback returned ErrBreak.
	BrokeLoop
)

func (o Outcome) String() string {
	switch o {
	case NormalExit:
		return "normal exit"
	case Cancelled:
		return "cancelled"
	case Faulted:
		return "faulted"
	case BrokeLoop:
		return "broke loop"
	default:
		return "unknown"
	}
}
