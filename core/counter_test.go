package core

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CounterTestSuite struct {
	suite.Suite
}

func TestCounterTestSuite(t *testing.T) {
	suite.Run(t, new(CounterTestSuite))
}

func (ts *CounterTestSuite) TestNewAtomicCountersStartsZero() {
	c := NewAtomicCounters()
	word := c.Load()
	ts.Equal(JobsEventCounter(0), word.JobsCounter())
	ts.Equal(0, word.InactiveThreads())
	ts.Equal(0, word.SleepingThreads())
}

func (ts *CounterTestSuite) TestAddInactiveThreadIncrements() {
	c := NewAtomicCounters()
	c.AddInactiveThread()
	c.AddInactiveThread()
	ts.Equal(2, c.Load().InactiveThreads())
}

func (ts *CounterTestSuite) TestSubInactiveThreadDecrementsAndCapsWake() {
	c := NewAtomicCounters()
	c.AddInactiveThread()
	c.AddInactiveThread()
	c.AddInactiveThread()

	toWake := c.SubInactiveThread()
	ts.LessOrEqual(toWake, 2)
	ts.Equal(2, c.Load().InactiveThreads())
}

func (ts *CounterTestSuite) TestSleepingThreadRoundTrip() {
	c := NewAtomicCounters()
	c.AddInactiveThread()

	ok := c.TryAddSleepingThread(c.Load())
	ts.True(ok)
	ts.Equal(1, c.Load().SleepingThreads())

	c.SubSleepingThread()
	ts.Equal(0, c.Load().SleepingThreads())
}

func (ts *CounterTestSuite) TestAwakeButIdleThreads() {
	c := NewAtomicCounters()
	c.AddInactiveThread()
	c.AddInactiveThread()
	ts.True(c.TryAddSleepingThread(c.Load()))

	word := c.Load()
	ts.Equal(2, word.InactiveThreads())
	ts.Equal(1, word.SleepingThreads())
	ts.Equal(1, word.AwakeButIdleThreads())
}

func (ts *CounterTestSuite) TestIncrementJobsEventCounterIfRespectsPredicate() {
	c := NewAtomicCounters()
	before := c.Load().JobsCounter()

	after := c.IncrementJobsEventCounterIf(func(JobsEventCounter) bool { return false })
	ts.Equal(before, after.JobsCounter())

	after = c.IncrementJobsEventCounterIf(func(JobsEventCounter) bool { return true })
	ts.Equal(before+1, after.JobsCounter())
}

func (ts *CounterTestSuite) TestJobsEventCounterSleepyActiveParity() {
	var even JobsEventCounter = 0
	var odd JobsEventCounter = 1

	ts.True(even.IsSleepy())
	ts.False(even.IsActive())
	ts.True(odd.IsActive())
	ts.False(odd.IsSleepy())
}
