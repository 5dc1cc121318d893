// Package threach runs the body of a "for each" loop on several goroutines while keeping the semantics
// of the plain sequential loop: breaking out of it, failing with an error, and using bounded memory.
// It is meant for parallelizing per-element work, such as per-line processing of files, without writing
// worker pool boilerplate.
//
// # Traversals
//
// A [Traversal] is anything that can hand out elements one by one. It is a function that calls yield
// for every element and stops as soon as yield returns false. The way a collection is walked is chosen by
// picking a traversal: [FromSlice] and [FromSeq] go element by element, [Lines] goes line by line,
// [Words] word by word, and [Scan] accepts any [bufio.SplitFunc].
// Traversals that produce two values per step, such as key/value pairs, are [Traversal2] values
// and are consumed with [Each2].
//
// # Workers
//
// [Each] walks the traversal on the calling goroutine and pushes elements into a bounded queue,
// which is drained by n worker goroutines calling the user function. The queue holds twice as many
// elements as there are workers, so the traversal never runs far ahead of the processing.
// The order in which elements are processed is not defined.
//
// When n = 0 no goroutines or queues are involved at all: the user function is called directly
// from the traversal, exactly like a regular for-range loop would do it.
//
// # Breaking and errors
//
// The user function controls the loop through its return value:
//   - nil continues the iteration.
//   - [Break] stops it. Each returns nil, as a break statement in a sequential loop would.
//   - Any other error stops it, and Each returns that error once all workers are done.
//     The error is returned as is, so it can be checked with == or [errors.Is].
//
// Stopping is cooperative. Workers that are in the middle of processing an element finish it,
// so a few elements may still be processed after a break or an error. When several workers fail
// at the same time, only the first error is returned.
//
// A panic in the user function or in the traversal also stops the loop. After all workers are done,
// it is re-raised on the calling goroutine with the original value, or returned as a [*PanicError]
// when [WithPanicAsError] is used.
//
// Everything the user function touches from several workers must be synchronized by the caller.
package threach
