package threach

import (
	"context"
	"log/slog"
	"time"

	"github.com/destel/threach/internal/core"
)

type config struct {
	timeout      time.Duration
	capacity     int
	ctx          context.Context
	logger       *slog.Logger
	panicAsErr   bool
	onWorkerDone func(worker int, o Outcome)
}

// Option configures [Each] and [Each2]. Options have no effect when n = 0.
type Option func(*config)

func buildConfig(opts []Option) *config {
	c := &config{
		timeout: core.DefaultTimeout,
		logger:  core.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *config) core(n int) core.Config {
	return core.Config{
		Workers:      n,
		Capacity:     c.capacity,
		Timeout:      c.timeout,
		Context:      c.ctx,
		Logger:       c.logger,
		OnWorkerDone: c.onWorkerDone,
	}
}

// WithTimeout sets how long a single enqueue or dequeue may wait before the participant
// re-checks whether it should stop. The default is 5ms.
// It panics if d is not positive.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("threach: WithTimeout requires d > 0")
	}
	return func(c *config) {
		c.timeout = d
	}
}

// WithCapacity sets how many elements the traversal may queue ahead of the workers.
// The default is twice the number of workers. It panics if size is not positive.
func WithCapacity(size int) Option {
	if size <= 0 {
		panic("threach: WithCapacity requires size > 0")
	}
	return func(c *config) {
		c.capacity = size
	}
}

// WithContext stops the iteration when ctx is cancelled.
// Each then returns context.Cause(ctx), unless some other error was recorded first.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		c.ctx = ctx
	}
}

// WithLogger enables diagnostic tracing of producer and worker shutdown, at debug level.
// Recovered panics are logged at error level. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l == nil {
			l = core.Discard
		}
		c.logger = l
	}
}

// WithPanicAsError makes a panic in the user function or in the traversal come back
// as a [*PanicError] returned from Each, instead of being re-raised.
func WithPanicAsError() Option {
	return func(c *config) {
		c.panicAsErr = true
	}
}

// WithOnWorkerDone registers a hook called by every worker right before it exits.
// The hook runs on the worker's goroutine.
func WithOnWorkerDone(fn func(worker int, o Outcome)) Option {
	return func(c *config) {
		c.onWorkerDone = fn
	}
}
