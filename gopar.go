// Package gopar is a data-parallelism library: fork work across a
// work-stealing thread pool and fold the results back together, in the
// style of Rust's rayon crate.
//
// A ParallelIterator describes a source of items (today, a slice) plus
// how to split and recombine work over it; ForEach is the only terminal
// operation gopar ships. Join and JoinContext are the lower-level
// fork-join primitives the iterator machinery itself is built on, and are
// just as usable directly.
package gopar

import (
	"github.com/go-foundations/gopar/core"
	"github.com/go-foundations/gopar/plumbing"
)

// ParallelIterator describes a parallelizable source of T.
type ParallelIterator[T any] interface {
	// Len reports how many items remain.
	Len() int

	// Producer returns the plumbing.Producer backing this iterator. Most
	// callers never need this directly; it's exported for code building
	// new terminal operations alongside ForEach.
	Producer() plumbing.Producer[T]
}

// FromSlice builds a ParallelIterator over data. The returned iterator
// takes ownership of data in the sense that it must not be modified by
// the caller afterward: bridge splits are aliases into the same backing
// array.
func FromSlice[T any](data []T) ParallelIterator[T] {
	return &sliceIter[T]{data: data}
}

type sliceIter[T any] struct {
	data []T
}

func (it *sliceIter[T]) Len() int { return len(it.data) }

func (it *sliceIter[T]) Producer() plumbing.Producer[T] {
	return plumbing.NewSliceProducer(it.data)
}

// Drive pushes pi's items through consumer, splitting and folding across
// the pool as Bridge sees fit. It is the building block every terminal
// operation (ForEach today, Reduce/Collect/etc. tomorrow) is implemented
// with.
func Drive[T, R any](pi ParallelIterator[T], consumer plumbing.Consumer[T, R]) R {
	return plumbing.Bridge(pi.Len(), pi.Producer(), consumer)
}

// Join runs a and b, possibly in parallel, and returns both results. a
// runs on the calling goroutine if it is already a pool worker; otherwise
// the call is handed to a pool worker, a runs there, and Join blocks
// until both finish. b runs inline after a if nothing steals it first, or
// on whichever worker does.
func Join[RA, RB any](a func() RA, b func() RB) (RA, RB) {
	return core.Join(a, b)
}

// JoinContext is Join with each closure additionally told whether it
// migrated to a different goroutine than the one that called
// JoinContext.
func JoinContext[RA, RB any](a func(core.FnContext) RA, b func(core.FnContext) RB) (RA, RB) {
	return core.JoinContext(a, b)
}

// CurrentNumThreads reports the size of the pool the calling goroutine
// belongs to (its own, if it's already a worker; otherwise the global
// pool).
func CurrentNumThreads() int {
	return core.CurrentNumThreads()
}
