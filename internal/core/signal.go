package core

import (
	"sync"
	"sync/atomic"
)

// Signal is a one-shot broadcast flag. Once set it stays set.
// The zero value is an unset signal ready to use.
type Signal struct {
	once     sync.Once
	fastSet  atomic.Bool   // used in IsSet
	done     chan struct{} // used in Done
	initOnce sync.Once
}

func (s *Signal) init() {
	s.initOnce.Do(func() {
		s.done = make(chan struct{})
	})
}

// Set raises the signal. It reports whether this call was the one that raised it.
func (s *Signal) Set() bool {
	raised := false
	s.once.Do(func() {
		s.init()
		s.fastSet.Store(true)
		close(s.done)
		raised = true
	})
	return raised
}

// IsSet is a lock-free check of the signal.
func (s *Signal) IsSet() bool {
	return s.fastSet.Load()
}

// Done returns a channel that is closed when the signal is raised.
func (s *Signal) Done() <-chan struct{} {
	s.init()
	return s.done
}

// state is shared by the producer and all workers of one run.
type state struct {
	// Bail means some participant faulted, broke the loop or the run was cancelled.
	Bail Signal
	// Exhausted means the producer has pushed every element.
	Exhausted Signal
}
