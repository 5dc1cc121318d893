package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/destel/threach/internal/queue"
)

// DefaultTimeout bounds every push and pop. It is also the worst case delay
// between a signal being raised and a participant noticing it.
const DefaultTimeout = 5 * time.Millisecond

// Config describes one parallel run.
type Config struct {
	Workers int

	// Capacity of the work queue. Zero means twice the number of workers.
	Capacity int

	// Timeout of a single push or pop. Zero means DefaultTimeout.
	Timeout time.Duration

	// Context, when cancelled, stops the run with context.Cause as the error.
	Context context.Context

	Logger *slog.Logger

	// OnWorkerDone is called from each worker goroutine right before it exits.
	OnWorkerDone func(worker int, o Outcome)
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = 2 * c.Workers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = Discard
	}
	return c
}

type run[A any] struct {
	log   *slog.Logger
	items *queue.Queue[A]
	errs  *mailbox
	st    state
	f     func(A) error
}

// Run calls f for every element of traverse using cfg.Workers goroutines.
// The traversal itself runs on the calling goroutine.
//
// Run returns after every worker has stopped. The result is the first error recorded
// by a worker, the traversal or the context, returned as is. A panic caught by Run is returned
// as an error that unwraps to *PanicError, see Recovered.
// A callback returning ErrBreak stops the run without an error.
func Run[A any](cfg Config, traverse func(yield func(A) bool) error, f func(A) error) error {
	if cfg.Workers <= 0 {
		panic("threach: Run requires at least one worker")
	}
	cfg = cfg.withDefaults()

	mailboxSize := cfg.Workers + 1 // workers and producer
	if cfg.Context != nil && cfg.Context.Done() != nil {
		mailboxSize++
	}

	r := &run[A]{
		log:   cfg.Logger,
		items: queue.New[A](cfg.Capacity, cfg.Timeout),
		errs:  newMailbox(mailboxSize),
		f:     f,
	}

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			finished := false
			defer func() {
				// runtime.Goexit in the callback
				if !finished {
					r.st.Bail.Set()
				}
			}()

			o := r.work(i)
			if cfg.OnWorkerDone != nil {
				cfg.OnWorkerDone(i, o)
			}
			finished = true
		}()
	}

	stopWatch := r.watch(cfg.Context)
	r.produce(traverse)

	wg.Wait()
	stopWatch()

	err := r.errs.First()
	if err != nil {
		r.log.Debug("joined with error", "error", err, "discarded", r.errs.Len())
	} else {
		r.log.Debug("joined")
	}
	return err
}

// fault records err and tells everyone to stop.
func (r *run[A]) fault(err error) {
	if !r.errs.Offer(err) {
		r.log.Debug("error dropped", "error", err)
	}
	r.st.Bail.Set()
}

// produce pushes every element into the queue until the traversal ends or bail is raised.
func (r *run[A]) produce(traverse func(yield func(A) bool) error) {
	returned := false
	defer func() {
		if v := recover(); v != nil {
			pe := recoverPanic(v)
			r.log.Error("producer: recovered panic", "value", v, "stack", pe.Stack)
			r.fault(pe)
			return
		}
		// runtime.Goexit in the traversal
		if !returned {
			r.log.Debug("producer: goroutine exited")
			r.st.Bail.Set()
		}
	}()

	err := traverse(func(a A) bool {
		for {
			if r.st.Bail.IsSet() {
				return false
			}

			switch r.items.Push(a, r.st.Bail.Done()) {
			case queue.OK:
				r.log.Debug("queued", "item", a)
				return true
			case queue.Stopped:
				return false
			}
			// timed out, the queue is full
		}
	})
	returned = true

	if err != nil {
		r.log.Debug("producer: traversal failed", "error", err)
		r.fault(err)
		return
	}

	if r.st.Bail.IsSet() {
		r.log.Debug("producer: bailing")
		return
	}

	r.log.Debug("producer: out of data")
	r.st.Exhausted.Set()
}

// work is the loop of a single worker.
func (r *run[A]) work(id int) Outcome {
	log := r.log.With("worker", id)

	for {
		a, status := r.items.Pop(r.st.Bail.Done(), r.st.Exhausted.Done())

		// checked regardless of status: an item popped after bail is dropped
		if r.st.Bail.IsSet() {
			log.Debug("bail")
			return Cancelled
		}

		switch status {
		case queue.Drained:
			log.Debug("end of run")
			return NormalExit
		case queue.TimedOut, queue.Stopped:
			continue
		}

		err := r.call(a)
		switch {
		case err == nil:
			continue
		case errors.Is(err, ErrBreak):
			log.Debug("broke out of loop")
			r.st.Bail.Set()
			return BrokeLoop
		default:
			log.Debug("fault", "error", err)
			r.fault(err)
			return Faulted
		}
	}
}

func (r *run[A]) call(a A) (err error) {
	defer func() {
		if v := recover(); v != nil {
			pe := recoverPanic(v)
			r.log.Error("recovered panic", "value", v, "stack", pe.Stack)
			err = pe
		}
	}()

	return r.f(a)
}

// watch raises bail when ctx is cancelled. The returned function stops watching and must be called after join.
func (r *run[A]) watch(ctx context.Context) (stop func()) {
	if ctx == nil || ctx.Done() == nil {
		return func() {}
	}

	if ctx.Err() != nil {
		r.log.Debug("context cancelled before start", "cause", context.Cause(ctx))
		r.fault(context.Cause(ctx))
		return func() {}
	}

	joined := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)

		select {
		case <-ctx.Done():
			select {
			case <-joined:
				return
			default:
			}
			if r.st.Bail.IsSet() {
				return
			}
			r.log.Debug("context cancelled", "cause", context.Cause(ctx))
			r.fault(context.Cause(ctx))
		case <-r.st.Bail.Done():
		case <-joined:
		}
	}()

	return func() {
		close(joined)
		<-finished
	}
}

// Sequential calls f for every element of traverse on the calling goroutine.
// It is the zero-worker form of Run and has the same error semantics, except that panics are not recovered.
func Sequential[A any](traverse func(yield func(A) bool) error, f func(A) error) error {
	var ferr error
	err := traverse(func(a A) bool {
		ferr = f(a)
		return ferr == nil
	})

	if ferr != nil {
		if errors.Is(ferr, ErrBreak) {
			return nil
		}
		return ferr
	}
	return err
}
