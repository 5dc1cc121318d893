package threach

import (
	"github.com/destel/threach/internal/core"
)

// Break can be returned by the user function to stop the iteration early without failing it.
// Errors that wrap Break have the same effect.
var Break = core.ErrBreak

// PanicError holds a value recovered from a panic in a worker, along with the stack trace.
type PanicError = core.PanicError

// Outcome tells how a single worker finished. It is reported to the hook set by [WithOnWorkerDone].
type Outcome = core.Outcome

const (
	// NormalExit means the worker ran out of work after the traversal had ended.
	NormalExit = core.NormalExit
	// Cancelled means the worker stopped because some other participant broke the loop or failed.
	Cancelled = core.Cancelled
	// Faulted means the user function returned an error or panicked in this worker.
	Faulted = core.Faulted
	// BrokeLoop means the user function returned [Break] in this worker.
	BrokeLoop = core.BrokeLoop
)

// Each calls f for every element of src, using n goroutines.
// The traversal runs on the calling goroutine, only calls to f are parallelized.
//
// Each blocks until the traversal has ended and all calls to f have returned.
// When n = 0, Each is a plain sequential loop. It panics if n is negative.
//
// See the package documentation for more information on breaking and error handling.
func Each[A any](src Traversal[A], n int, f func(A) error, opts ...Option) error {
	if n < 0 {
		panic("threach: n must be non-negative")
	}

	cfg := buildConfig(opts)

	if n == 0 {
		return core.Sequential(src, f)
	}

	err := core.Run(cfg.core(n), src, f)
	return cfg.handle(err)
}

type pair[A, B any] struct {
	first  A
	second B
}

// Each2 is like [Each], but for traversals that yield two values per step.
// Both values of a step are always handed to the same call of f.
func Each2[A, B any](src Traversal2[A, B], n int, f func(A, B) error, opts ...Option) error {
	if n < 0 {
		panic("threach: n must be non-negative")
	}

	pairs := func(yield func(pair[A, B]) bool) error {
		return src(func(a A, b B) bool {
			return yield(pair[A, B]{a, b})
		})
	}
	call := func(p pair[A, B]) error {
		return f(p.first, p.second)
	}

	cfg := buildConfig(opts)

	if n == 0 {
		return core.Sequential(pairs, call)
	}

	err := core.Run(cfg.core(n), pairs, call)
	return cfg.handle(err)
}

func (c *config) handle(err error) error {
	pe, ok := core.Recovered(err)
	if !ok {
		return err
	}
	if !c.panicAsErr {
		panic(pe.Value)
	}
	return pe
}
