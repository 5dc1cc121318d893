package threach

import (
	"bufio"
	"io"
	"iter"
)

// Traversal walks a collection, calling yield for each element.
// It must stop as soon as yield returns false, and return nil in that case.
// A non-nil error means the collection could not be walked to the end.
type Traversal[A any] func(yield func(A) bool) error

// Traversal2 is like [Traversal], but yields two values per step.
type Traversal2[A, B any] func(yield func(A, B) bool) error

// FromSeq converts an iterator into a traversal.
func FromSeq[A any](seq iter.Seq[A]) Traversal[A] {
	return func(yield func(A) bool) error {
		for a := range seq {
			if !yield(a) {
				return nil
			}
		}
		return nil
	}
}

// FromSeq2 converts a sequence of value-error pairs into a traversal.
// The first non-nil error ends the traversal and becomes its result.
func FromSeq2[A any](seq iter.Seq2[A, error]) Traversal[A] {
	return func(yield func(A) bool) error {
		for a, err := range seq {
			if err != nil {
				return err
			}
			if !yield(a) {
				return nil
			}
		}
		return nil
	}
}

// FromSlice returns a traversal over the elements of s.
func FromSlice[A any](s []A) Traversal[A] {
	return func(yield func(A) bool) error {
		for _, a := range s {
			if !yield(a) {
				return nil
			}
		}
		return nil
	}
}

// FromChan returns a traversal that receives from ch until it is closed.
// When the traversal is stopped early, the remaining items stay in the channel.
func FromChan[A any](ch <-chan A) Traversal[A] {
	return func(yield func(A) bool) error {
		for a := range ch {
			if !yield(a) {
				return nil
			}
		}
		return nil
	}
}

// Scan returns a traversal over the tokens of r, as split by split.
// Read errors end the traversal and become its result.
func Scan(r io.Reader, split bufio.SplitFunc) Traversal[string] {
	return func(yield func(string) bool) error {
		scanner := bufio.NewScanner(r)
		scanner.Split(split)

		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return nil
			}
		}
		return scanner.Err()
	}
}

// Lines returns a traversal over the lines of r, without line terminators.
func Lines(r io.Reader) Traversal[string] {
	return Scan(r, bufio.ScanLines)
}

// Words returns a traversal over the space-separated words of r.
func Words(r io.Reader) Traversal[string] {
	return Scan(r, bufio.ScanWords)
}

// FromPairs converts a two-value iterator into a traversal.
func FromPairs[A, B any](seq iter.Seq2[A, B]) Traversal2[A, B] {
	return func(yield func(A, B) bool) error {
		for a, b := range seq {
			if !yield(a, b) {
				return nil
			}
		}
		return nil
	}
}

// FromMap returns a traversal over the key/value pairs of m, in unspecified order.
func FromMap[K comparable, V any](m map[K]V) Traversal2[K, V] {
	return func(yield func(K, V) bool) error {
		for k, v := range m {
			if !yield(k, v) {
				return nil
			}
		}
		return nil
	}
}

// Indexed returns a traversal over the index/element pairs of s.
func Indexed[A any](s []A) Traversal2[int, A] {
	return func(yield func(int, A) bool) error {
		for i, a := range s {
			if !yield(i, a) {
				return nil
			}
		}
		return nil
	}
}
