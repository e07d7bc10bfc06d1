package core

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/suite"
)

type DequeTestSuite struct {
	suite.Suite
}

func TestDequeTestSuite(t *testing.T) {
	suite.Run(t, new(DequeTestSuite))
}

func refWithID(id int) JobRef {
	return JobRef{id: unsafe.Pointer(uintptr(id)), execute: func() {}}
}

func (ts *DequeTestSuite) TestEmptyDequeHasNoWork() {
	d := NewDeque()
	ts.True(d.IsEmpty())

	_, ok := d.PopBottom()
	ts.False(ok)

	_, ok = d.Steal()
	ts.False(ok)
}

func (ts *DequeTestSuite) TestPushBottomPopBottomIsLIFO() {
	d := NewDeque()
	d.PushBottom(refWithID(1))
	d.PushBottom(refWithID(2))

	job, ok := d.PopBottom()
	ts.True(ok)
	ts.True(job.Same(refWithID(2)))

	job, ok = d.PopBottom()
	ts.True(ok)
	ts.True(job.Same(refWithID(1)))

	ts.True(d.IsEmpty())
}

func (ts *DequeTestSuite) TestStealTakesFromTheOppositeEnd() {
	d := NewDeque()
	d.PushBottom(refWithID(1))
	d.PushBottom(refWithID(2))
	d.PushBottom(refWithID(3))

	stolen, ok := d.Steal()
	ts.True(ok)
	ts.True(stolen.Same(refWithID(1)))

	job, ok := d.PopBottom()
	ts.True(ok)
	ts.True(job.Same(refWithID(3)))
}

func (ts *DequeTestSuite) TestGrowPreservesOrder() {
	d := NewDeque()
	for i := 0; i < 64; i++ {
		d.PushBottom(refWithID(i))
	}
	for i := 0; i < 64; i++ {
		stolen, ok := d.Steal()
		ts.True(ok)
		ts.True(stolen.Same(refWithID(i)))
	}
	ts.True(d.IsEmpty())
}

func (ts *DequeTestSuite) TestInjectorIsFIFO() {
	q := NewInjector()
	ts.True(q.IsEmpty())

	wasEmpty := q.Push(refWithID(1))
	ts.True(wasEmpty)

	wasEmpty = q.Push(refWithID(2))
	ts.False(wasEmpty)

	job, ok := q.Pop()
	ts.True(ok)
	ts.True(job.Same(refWithID(1)))

	job, ok = q.Pop()
	ts.True(ok)
	ts.True(job.Same(refWithID(2)))

	_, ok = q.Pop()
	ts.False(ok)
}
