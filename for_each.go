package gopar

import "github.com/go-foundations/gopar/plumbing"

// ForEach runs op once for every item of pi, across the pool.
//
// forEachConsumer is a zero-result consumer/folder that never reports
// Full, paired with a noopReducer. Its Folder methods use a pointer
// receiver and keep no state of their own, since op itself is just a
// plain Go closure shared by every split.
func ForEach[T any](pi ParallelIterator[T], op func(item T)) {
	Drive[T, struct{}](pi, &forEachConsumer[T]{op: op})
}

type forEachConsumer[T any] struct {
	op func(T)
}

func (c *forEachConsumer[T]) Full() bool { return false }

func (c *forEachConsumer[T]) SplitAt(int) (plumbing.Consumer[T, struct{}], plumbing.Consumer[T, struct{}], plumbing.Reducer[struct{}]) {
	return &forEachConsumer[T]{op: c.op}, &forEachConsumer[T]{op: c.op}, noopReducer{}
}

func (c *forEachConsumer[T]) IntoFolder() plumbing.Folder[T, struct{}] { return c }

func (c *forEachConsumer[T]) Consume(item T) { c.op(item) }

func (c *forEachConsumer[T]) ConsumeIter(items []T) {
	for _, item := range items {
		c.op(item)
	}
}

func (c *forEachConsumer[T]) Complete() struct{} { return struct{}{} }

type noopReducer struct{}

func (noopReducer) Reduce(struct{}, struct{}) struct{} { return struct{}{} }
