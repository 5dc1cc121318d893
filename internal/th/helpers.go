package th

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type ordered interface {
	~int | ~int64 | ~string
}

// Range returns the integers in [start, end).
func Range(start, end int) []int {
	res := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		res = append(res, i)
	}
	return res
}

func Sort[A ordered](s []A) {
	sort.Slice(s, func(i, j int) bool {
		return s[i] < s[j]
	})
}

func DoConcurrentlyN(n int, f func(i int)) {
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f(i)
		}()
	}

	wg.Wait()
}

// Name generates a test name.
// Works the same way as fmt.Sprint, but adds spaces between all arguments.
func Name(args ...any) string {
	res := fmt.Sprintln(args...)
	return strings.TrimSpace(res)
}

// Collector is a goroutine-safe append-only slice.
type Collector[A any] struct {
	mu    sync.Mutex
	items []A
}

func (c *Collector[A]) Add(a A) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, a)
}

func (c *Collector[A]) Items() []A {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := make([]A, len(c.items))
	copy(res, c.items)
	return res
}

func (c *Collector[A]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
