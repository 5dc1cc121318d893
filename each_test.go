package threach

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/destel/threach/internal/th"
)

func TestEach(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5} {
		t.Run(th.Name("all processed", n), func(t *testing.T) {
			var seen th.Collector[int]

			err := Each(FromSlice(th.Range(0, 1000)), n, func(x int) error {
				seen.Add(x)
				return nil
			})

			th.ExpectNoError(t, err)
			th.ExpectSameElements(t, seen.Items(), th.Range(0, 1000))
		})

		t.Run(th.Name("break", n), func(t *testing.T) {
			th.ExpectNotHang(t, 10*time.Second, func() {
				var cnt atomic.Int64

				err := Each(FromSlice(th.Range(0, 10000)), n, func(x int) error {
					cnt.Add(1)
					if x == 100 {
						return Break
					}
					return nil
				})

				th.ExpectNoError(t, err)
				if cnt.Load() < 101 {
					t.Errorf("expected at least 101 calls, got %d", cnt.Load())
				}
				if cnt.Load() == 10000 {
					t.Errorf("early exit did not happen")
				}
			})
		})

		t.Run(th.Name("error", n), func(t *testing.T) {
			th.ExpectNotHang(t, 10*time.Second, func() {
				errOops := errors.New("oops")
				var faults atomic.Int64

				err := Each(FromSlice(th.Range(0, 10000)), n, func(x int) error {
					if x == 100 {
						faults.Add(1)
						return errOops
					}
					return nil
				})

				th.ExpectValue(t, err, errOops)
				th.ExpectValue(t, faults.Load(), 1)
			})
		})

		t.Run(th.Name("custom error type", n), func(t *testing.T) {
			err := Each(FromSlice(th.Range(0, 100)), n, func(x int) error {
				if x == 42 {
					return &elementError{x}
				}
				return nil
			})

			var ee *elementError
			if !errors.As(err, &ee) {
				t.Fatalf("expected *elementError, got %v", err)
			}
			th.ExpectValue(t, ee.x, 42)
		})

		t.Run(th.Name("returned panic error", n), func(t *testing.T) {
			th.ExpectNotHang(t, 10*time.Second, func() {
				returned := &PanicError{Value: "not raised"}

				err := Each(FromSlice(th.Range(0, 100)), n, func(x int) error {
					if x == 2 {
						return returned
					}
					return nil
				})

				th.ExpectValue(t, err, error(returned))
			})
		})

		t.Run(th.Name("error in traversal", n), func(t *testing.T) {
			errRead := errors.New("read failed")
			src := FromSeq2(func(yield func(int, error) bool) {
				for i := 0; i < 10; i++ {
					if !yield(i, nil) {
						return
					}
				}
				yield(0, errRead)
			})

			err := Each(src, n, func(x int) error {
				return nil
			})

			th.ExpectValue(t, err, errRead)
		})

		t.Run(th.Name("panic", n), func(t *testing.T) {
			th.ExpectNotHang(t, 10*time.Second, func() {
				v := th.ExpectPanic(t, func() {
					_ = Each(FromSlice(th.Range(0, 100)), n, func(x int) error {
						if x == 5 {
							panic("boom")
						}
						return nil
					})
				})

				th.ExpectValue(t, v, any("boom"))
			})
		})
	}

	t.Run("negative n", func(t *testing.T) {
		th.ExpectPanic(t, func() {
			_ = Each(FromSlice([]int{1}), -1, func(int) error { return nil })
		})
	})
}

type elementError struct {
	x int
}

func (e *elementError) Error() string {
	return fmt.Sprintf("bad element %d", e.x)
}

// The four scenarios from the original demo script: 1..10 with 3 workers.
func TestEachScenarios(t *testing.T) {
	oneToTen := th.Range(1, 11)
	errOops := errors.New("oops")

	t.Run("problem-free execution", func(t *testing.T) {
		var seen th.Collector[int]
		var outs sync.Map

		err := Each(FromSlice(oneToTen), 3, func(x int) error {
			seen.Add(x)
			time.Sleep(10 * time.Millisecond)
			return nil
		}, WithOnWorkerDone(func(worker int, o Outcome) {
			outs.Store(worker, o)
		}))

		th.ExpectNoError(t, err)
		th.ExpectSameElements(t, seen.Items(), oneToTen)

		for w := 0; w < 3; w++ {
			o, ok := outs.Load(w)
			th.ExpectValue(t, ok, true)
			th.ExpectValue(t, o, any(NormalExit))
		}
	})

	t.Run("break out of the block", func(t *testing.T) {
		var seen th.Collector[int]

		err := Each(FromSlice(oneToTen), 3, func(x int) error {
			seen.Add(x)
			if x == 5 {
				return Break
			}
			time.Sleep(10 * time.Millisecond)
			return nil
		})

		th.ExpectNoError(t, err)

		found := false
		for _, x := range seen.Items() {
			found = found || x == 5
		}
		th.ExpectValue(t, found, true)
	})

	t.Run("error passed to calling code", func(t *testing.T) {
		var seen th.Collector[int]

		err := Each(FromSlice(oneToTen), 3, func(x int) error {
			seen.Add(x)
			if x == 5 {
				return errOops
			}
			time.Sleep(10 * time.Millisecond)
			return nil
		})

		th.ExpectValue(t, err, errOops)
		if seen.Len() == 0 {
			t.Errorf("expected some elements to be processed")
		}
	})

	t.Run("error handled inside the block", func(t *testing.T) {
		var seen th.Collector[int]
		var handled atomic.Int64

		err := Each(FromSlice(oneToTen), 3, func(x int) error {
			seen.Add(x)
			err := func() error {
				if x == 5 {
					return errOops
				}
				time.Sleep(10 * time.Millisecond)
				return nil
			}()
			if err != nil {
				handled.Add(1)
			}
			return nil
		})

		th.ExpectNoError(t, err)
		th.ExpectValue(t, handled.Load(), 1)
		th.ExpectSameElements(t, seen.Items(), oneToTen)
	})
}

func TestEachSequential(t *testing.T) {
	t.Run("same as for-range", func(t *testing.T) {
		in := th.Range(0, 100)

		var baseline []int
		for _, x := range in {
			baseline = append(baseline, x*x)
		}

		var out []int
		err := Each(FromSlice(in), 0, func(x int) error {
			out = append(out, x*x)
			return nil
		})

		th.ExpectNoError(t, err)
		th.ExpectSlice(t, out, baseline)
	})

	t.Run("break stops right away", func(t *testing.T) {
		var out []int
		err := Each(FromSlice(th.Range(0, 100)), 0, func(x int) error {
			out = append(out, x)
			if x == 9 {
				return Break
			}
			return nil
		})

		th.ExpectNoError(t, err)
		th.ExpectSlice(t, out, th.Range(0, 10))
	})

	t.Run("runs on the calling goroutine", func(t *testing.T) {
		// unsynchronized access is fine when nothing runs concurrently
		calls := 0
		err := Each(FromSlice(th.Range(0, 100)), 0, func(x int) error {
			calls++
			return nil
		}, WithOnWorkerDone(func(int, Outcome) {
			t.Errorf("no workers expected")
		}))

		th.ExpectNoError(t, err)
		th.ExpectValue(t, calls, 100)
	})
}

func TestEachOptions(t *testing.T) {
	t.Run("panic as error", func(t *testing.T) {
		err := Each(FromSlice(th.Range(0, 100)), 3, func(x int) error {
			if x == 5 {
				panic("boom")
			}
			return nil
		}, WithPanicAsError())

		var pe *PanicError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *PanicError, got %v", err)
		}
		th.ExpectValue(t, pe.Value, any("boom"))
		if !strings.Contains(pe.Error(), "panic: boom") {
			t.Errorf("unexpected message %q", pe.Error())
		}
	})

	t.Run("panic in traversal", func(t *testing.T) {
		src := Traversal[int](func(yield func(int) bool) error {
			yield(1)
			panic("traversal boom")
		})

		v := th.ExpectPanic(t, func() {
			_ = Each(src, 3, func(x int) error { return nil })
		})
		th.ExpectValue(t, v, any("traversal boom"))
	})

	t.Run("context", func(t *testing.T) {
		th.ExpectNotHang(t, 5*time.Second, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			endless := FromSeq(func(yield func(int) bool) {
				for i := 0; yield(i); i++ {
				}
			})

			err := Each(endless, 3, func(x int) error {
				time.Sleep(time.Millisecond)
				return nil
			}, WithContext(ctx))

			th.ExpectValue(t, err, context.DeadlineExceeded)
		})
	})

	t.Run("capacity and timeout", func(t *testing.T) {
		var sum atomic.Int64

		err := Each(FromSlice(th.Range(0, 100)), 2, func(x int) error {
			sum.Add(int64(x))
			return nil
		}, WithCapacity(1), WithTimeout(time.Millisecond))

		th.ExpectNoError(t, err)
		th.ExpectValue(t, sum.Load(), 99*100/2)
	})

	t.Run("invalid", func(t *testing.T) {
		th.ExpectPanic(t, func() { WithCapacity(0) })
		th.ExpectPanic(t, func() { WithTimeout(0) })
	})

	t.Run("logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		err := Each(FromSlice(th.Range(0, 10)), 2, func(x int) error {
			if x == 3 {
				return Break
			}
			return nil
		}, WithLogger(logger))

		th.ExpectNoError(t, err)

		out := buf.String()
		for _, msg := range []string{"broke out of loop", "worker=", "joined"} {
			if !strings.Contains(out, msg) {
				t.Errorf("expected log to contain %q, got:\n%s", msg, out)
			}
		}
	})

	t.Run("nil logger", func(t *testing.T) {
		err := Each(FromSlice(th.Range(0, 10)), 2, func(x int) error {
			return nil
		}, WithLogger(nil))

		th.ExpectNoError(t, err)
	})
}

func TestEach2(t *testing.T) {
	for _, n := range []int{0, 1, 4} {
		t.Run(th.Name("map", n), func(t *testing.T) {
			m := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4}
			var seen th.Collector[string]

			err := Each2(FromMap(m), n, func(k string, v int) error {
				seen.Add(fmt.Sprintf("%s=%d", k, v))
				return nil
			})

			th.ExpectNoError(t, err)
			th.ExpectSameElements(t, seen.Items(), []string{"a=1", "b=2", "c=3", "d=4"})
		})

		t.Run(th.Name("indexed", n), func(t *testing.T) {
			in := []string{"x", "y", "z"}
			var bad atomic.Int64

			err := Each2(Indexed(in), n, func(i int, s string) error {
				if in[i] != s {
					bad.Add(1)
				}
				return nil
			})

			th.ExpectNoError(t, err)
			th.ExpectValue(t, bad.Load(), 0)
		})

		t.Run(th.Name("break and error", n), func(t *testing.T) {
			errOops := errors.New("oops")

			err := Each2(Indexed(th.Range(0, 1000)), n, func(i, x int) error {
				if i == 10 {
					return Break
				}
				return nil
			})
			th.ExpectNoError(t, err)

			err = Each2(Indexed(th.Range(0, 1000)), n, func(i, x int) error {
				if i == 10 {
					return errOops
				}
				return nil
			})
			th.ExpectValue(t, err, errOops)
		})
	}
}

func TestEachNestedPanicAsError(t *testing.T) {
	for _, n := range []int{0, 3} {
		t.Run(th.Name("outer", n), func(t *testing.T) {
			err := Each(FromSlice(th.Range(0, 10)), n, func(x int) error {
				return Each(FromSlice(th.Range(0, 10)), 2, func(y int) error {
					if x == 4 && y == 4 {
						panic("inner boom")
					}
					return nil
				}, WithPanicAsError())
			})

			var pe *PanicError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *PanicError, got %v", err)
			}
			th.ExpectValue(t, pe.Value, any("inner boom"))
		})
	}
}

func TestEachNested(t *testing.T) {
	files := map[string]string{
		"a.txt": "one\ntwo\nthree\n",
		"b.txt": "four\nfive\n",
		"c.txt": "six\nseven\neight\nnine\n",
	}

	var lines th.Collector[string]

	err := Each2(FromMap(files), 3, func(name, content string) error {
		return Each(Lines(strings.NewReader(content)), 2, func(line string) error {
			lines.Add(name + ": " + line)
			return nil
		})
	})

	th.ExpectNoError(t, err)
	th.ExpectValue(t, lines.Len(), 9)

	found := false
	for _, l := range lines.Items() {
		found = found || l == "c.txt: seven"
	}
	th.ExpectValue(t, found, true)
}
