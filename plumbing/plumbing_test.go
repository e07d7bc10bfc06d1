package plumbing

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type PlumbingTestSuite struct {
	suite.Suite
}

func TestPlumbingTestSuite(t *testing.T) {
	suite.Run(t, new(PlumbingTestSuite))
}

// sumReducer and sumFolder/sumConsumer implement the smallest possible
// Consumer[int, int] that adds up everything it sees, used to exercise
// Bridge's split/fold/reduce recursion end to end.

type sumReducer struct{}

func (sumReducer) Reduce(left, right int) int { return left + right }

type sumFolder struct {
	total int
}

func (f *sumFolder) Consume(item int)       { f.total += item }
func (f *sumFolder) ConsumeIter(items []int) {
	for _, item := range items {
		f.total += item
	}
}
func (f *sumFolder) Complete() int { return f.total }
func (f *sumFolder) Full() bool    { return false }

type sumConsumer struct{}

func (sumConsumer) Full() bool { return false }
func (sumConsumer) SplitAt(int) (Consumer[int, int], Consumer[int, int], Reducer[int]) {
	return sumConsumer{}, sumConsumer{}, sumReducer{}
}
func (sumConsumer) IntoFolder() Folder[int, int] { return &sumFolder{} }

func (ts *PlumbingTestSuite) TestBridgeSumsASlice() {
	data := make([]int, 200)
	want := 0
	for i := range data {
		data[i] = i + 1
		want += data[i]
	}

	producer := NewSliceProducer(data)
	got := Bridge[int, int](len(data), producer, sumConsumer{})
	ts.Equal(want, got)
}

func (ts *PlumbingTestSuite) TestSliceProducerSplitAtDividesAtIndex() {
	data := []int{1, 2, 3, 4, 5, 6}
	p := NewSliceProducer(data)

	left, right := p.SplitAt(3)
	ts.Equal([]int{1, 2, 3}, left.IntoSlice())
	ts.Equal([]int{4, 5, 6}, right.IntoSlice())
}

func (ts *PlumbingTestSuite) TestSliceProducerBounds() {
	p := NewSliceProducer([]int{1, 2, 3})
	ts.Equal(1, p.MinLen())
	ts.Greater(p.MaxLen(), 0)
}

// collectConsumer records every item it sees (under a mutex, since
// Bridge may hand items to folders running on different goroutines) so
// tests can assert every item was visited exactly once.

type collectConsumer struct {
	mu   *sync.Mutex
	seen *[]int
}

func newCollectConsumer() collectConsumer {
	return collectConsumer{mu: &sync.Mutex{}, seen: &[]int{}}
}

func (c collectConsumer) Full() bool { return false }
func (c collectConsumer) SplitAt(int) (Consumer[int, struct{}], Consumer[int, struct{}], Reducer[struct{}]) {
	return c, c, noopReducer{}
}
func (c collectConsumer) IntoFolder() Folder[int, struct{}] { return collectFolder(c) }

type collectFolder collectConsumer

func (f collectFolder) Consume(item int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.seen = append(*f.seen, item)
}
func (f collectFolder) ConsumeIter(items []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*f.seen = append(*f.seen, items...)
}
func (f collectFolder) Complete() struct{} { return struct{}{} }
func (f collectFolder) Full() bool         { return false }

type noopReducer struct{}

func (noopReducer) Reduce(struct{}, struct{}) struct{} { return struct{}{} }

func (ts *PlumbingTestSuite) TestBridgeVisitsEveryItemExactlyOnce() {
	data := make([]int, 500)
	for i := range data {
		data[i] = i
	}

	consumer := newCollectConsumer()
	Bridge[int, struct{}](len(data), NewSliceProducer(data), consumer)

	got := append([]int(nil), (*consumer.seen)...)
	sort.Ints(got)
	ts.Equal(data, got)
}
