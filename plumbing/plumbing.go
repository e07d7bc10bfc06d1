// Package plumbing supplies the producer/consumer/folder/reducer
// interfaces that every parallel iterator operation is built from, plus
// the generic Bridge driver that recursively splits a producer/consumer
// pair across the pool and reduces their partial results back together.
//
// A ProducerCallback-style indirection isn't needed here: Go interfaces
// can't carry their own generic methods, so a ParallelIterator just
// returns a concrete Producer directly instead.
package plumbing

import "github.com/go-foundations/gopar/core"

// Producer knows how to hand its items to a Folder, or split itself in
// two at some index so each half can be driven independently.
type Producer[T any] interface {
	// IntoSlice exposes the producer's remaining items for folding.
	IntoSlice() []T

	// SplitAt divides the producer at index into a left and right half.
	SplitAt(index int) (Producer[T], Producer[T])

	// MinLen and MaxLen bound how finely Bridge is willing to split this
	// producer, mirroring Producer::min_len/max_len.
	MinLen() int
	MaxLen() int
}

// Folder consumes items one at a time (or in a batch, via ConsumeIter)
// and eventually yields a result.
type Folder[T, R any] interface {
	Consume(item T)
	ConsumeIter(items []T)
	Complete() R
	Full() bool
}

// Reducer combines two results produced by a split consumer back into
// one, after both halves have run (possibly on different workers).
type Reducer[R any] interface {
	Reduce(left, right R) R
}

// Consumer is a Folder factory that can itself be split in two,
// producing a Reducer to recombine whatever its two halves produce.
type Consumer[T, R any] interface {
	Full() bool
	SplitAt(index int) (Consumer[T, R], Consumer[T, R], Reducer[R])
	IntoFolder() Folder[T, R]
}

func foldWith[T, R any](p Producer[T], folder Folder[T, R]) Folder[T, R] {
	for _, item := range p.IntoSlice() {
		folder.Consume(item)
		if folder.Full() {
			break
		}
	}
	return folder
}

// splitter decides whether a producer/consumer pair should still be
// split further, biasing toward splitting a stolen job back down to the
// current thread count even after it had otherwise run out of splits.
type splitter struct {
	splits int
}

func newSplitter() splitter {
	return splitter{splits: core.CurrentNumThreads()}
}

func (s *splitter) trySplit(stolen bool) bool {
	if stolen {
		s.splits = max(core.CurrentNumThreads(), s.splits/2)
		return true
	}
	if s.splits > 0 {
		s.splits /= 2
		return true
	}
	return false
}

// lengthSplitter additionally refuses to split once a half would drop
// below minLen items, and pre-seeds the split budget from the producer's
// declared length bounds.
type lengthSplitter struct {
	inner splitter
	min   int
}

func newLengthSplitter(minLen, maxLen, length int) lengthSplitter {
	if minLen < 1 {
		minLen = 1
	}
	if maxLen < 1 {
		maxLen = 1
	}
	ls := lengthSplitter{inner: newSplitter(), min: minLen}
	if minSplits := length / maxLen; minSplits > ls.inner.splits {
		ls.inner.splits = minSplits
	}
	return ls
}

func (ls *lengthSplitter) trySplit(length int, stolen bool) bool {
	return length/2 >= ls.min && ls.inner.trySplit(stolen)
}

// Bridge drives producer through consumer, splitting recursively (and in
// parallel, via core.JoinContext) until the splitter calls a halt, then
// folding each leaf and reducing the results back together.
func Bridge[T, R any](length int, producer Producer[T], consumer Consumer[T, R]) R {
	splitter := newLengthSplitter(producer.MinLen(), producer.MaxLen(), length)
	return bridgeProducerConsumer(length, false, splitter, producer, consumer)
}

func bridgeProducerConsumer[T, R any](length int, migrated bool, splitter lengthSplitter, producer Producer[T], consumer Consumer[T, R]) R {
	if consumer.Full() {
		return consumer.IntoFolder().Complete()
	}
	if splitter.trySplit(length, migrated) {
		mid := length / 2
		leftProducer, rightProducer := producer.SplitAt(mid)
		leftConsumer, rightConsumer, reducer := consumer.SplitAt(mid)

		leftResult, rightResult := core.JoinContext(
			func(ctx core.FnContext) R {
				return bridgeProducerConsumer(mid, ctx.Migrated(), splitter, leftProducer, leftConsumer)
			},
			func(ctx core.FnContext) R {
				return bridgeProducerConsumer(length-mid, ctx.Migrated(), splitter, rightProducer, rightConsumer)
			},
		)
		return reducer.Reduce(leftResult, rightResult)
	}
	return foldWith(producer, consumer.IntoFolder()).Complete()
}
