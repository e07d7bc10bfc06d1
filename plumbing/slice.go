package plumbing

import "math"

// SliceProducer is the sole concrete Producer gopar ships: it walks a
// Go slice, splitting by re-slicing rather than any unsafe pointer
// arithmetic, since Go slices already share backing arrays safely across
// SplitAt.
//
// Callers are expected to give up the slice they pass to NewSliceProducer
// (via FromSlice at the iterator layer): both halves produced by SplitAt
// alias the original backing array.
type SliceProducer[T any] struct {
	slice []T
}

// NewSliceProducer wraps data for parallel consumption.
func NewSliceProducer[T any](data []T) *SliceProducer[T] {
	return &SliceProducer[T]{slice: data}
}

// IntoSlice implements Producer.
func (p *SliceProducer[T]) IntoSlice() []T { return p.slice }

// SplitAt implements Producer.
func (p *SliceProducer[T]) SplitAt(index int) (Producer[T], Producer[T]) {
	left := p.slice[:index]
	right := p.slice[index:]
	return &SliceProducer[T]{slice: left}, &SliceProducer[T]{slice: right}
}

// MinLen implements Producer.
func (p *SliceProducer[T]) MinLen() int { return 1 }

// MaxLen implements Producer.
func (p *SliceProducer[T]) MaxLen() int { return math.MaxInt }
