package th

import (
	"sync/atomic"
	"time"
)

// ConcurrencyMonitor records the peak number of goroutines running between Inc and Dec.
// Inc holds its caller until the level has been stable for the settle window,
// so every goroutine that can run concurrently gets the chance to show up in the peak.
type ConcurrencyMonitor struct {
	current    atomic.Int64
	peak       atomic.Int64
	lastChange atomic.Int64 // unix nanos
	window     time.Duration
}

func NewConcurrencyMonitor(window time.Duration) *ConcurrencyMonitor {
	return &ConcurrencyMonitor{window: window}
}

func (c *ConcurrencyMonitor) touch() {
	c.lastChange.Store(time.Now().UnixNano())
}

func (c *ConcurrencyMonitor) Inc() {
	cur := c.current.Add(1)
	c.touch()

	for {
		p := c.peak.Load()
		if cur <= p || c.peak.CompareAndSwap(p, cur) {
			break
		}
	}

	for time.Since(time.Unix(0, c.lastChange.Load())) < c.window {
		time.Sleep(c.window / 20)
	}
}

func (c *ConcurrencyMonitor) Dec() {
	c.current.Add(-1)
	c.touch()
}

func (c *ConcurrencyMonitor) Max() int {
	return int(c.peak.Load())
}
