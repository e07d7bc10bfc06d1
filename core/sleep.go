package core

import (
	"runtime"
	"sync"
)

// Rounds a worker spins/yields before escalating. ROUNDS_UNTIL_SLEEPING is
// one past ROUNDS_UNTIL_SLEEPY so that a worker spends exactly one extra
// round announcing sleepy before actually blocking.
const (
	roundsUntilSleepy    = 32
	roundsUntilSleeping  = roundsUntilSleepy + 1
	wakeOnSubInactiveCap = 2
)

// IdleState tracks one worker's progress through the backoff state
// machine across repeated calls to NoWorkFound.
type IdleState struct {
	workerIndex int
	rounds      uint32
	jobsCounter JobsEventCounter
}

func newIdleState(workerIndex int) IdleState {
	return IdleState{workerIndex: workerIndex, rounds: 0, jobsCounter: DummyJobsEventCounter}
}

// wakeFully resets the idle state as if this worker had just started
// looking for work from scratch.
func (s *IdleState) wakeFully() {
	s.rounds = 0
	s.jobsCounter = DummyJobsEventCounter
}

// wakePartly resets rounds to roundsUntilSleepy (not 0): the worker was
// sleepy, something changed, so it should re-announce sleepy on its very
// next round rather than spin through 32 rounds again.
func (s *IdleState) wakePartly() {
	s.rounds = roundsUntilSleepy
	s.jobsCounter = DummyJobsEventCounter
}

type workerSleepState struct {
	mu      sync.Mutex
	cnd     *sync.Cond
	isSleep bool
}

func newWorkerSleepState() *workerSleepState {
	s := &workerSleepState{}
	s.cnd = sync.NewCond(&s.mu)
	return s
}

// Sleep is the sleep/wake coordinator (C5): it owns the packed counter
// word and each worker's per-thread sleep flag + condvar, and implements
// the cooperative spin -> yield -> sleepy -> sleeping backoff protocol.
type Sleep struct {
	states   []*workerSleepState
	counters *AtomicCounters
}

// NewSleep builds a coordinator for the given number of workers.
func NewSleep(numThreads int) *Sleep {
	if numThreads > ThreadsMax {
		panic("gopar/core: thread count exceeds ThreadsMax")
	}
	states := make([]*workerSleepState, numThreads)
	for i := range states {
		states[i] = newWorkerSleepState()
	}
	return &Sleep{states: states, counters: NewAtomicCounters()}
}

// StartLooking marks workerIndex as inactive and returns a fresh IdleState
// for it to thread through subsequent NoWorkFound calls.
func (s *Sleep) StartLooking(workerIndex int) IdleState {
	s.counters.AddInactiveThread()
	return newIdleState(workerIndex)
}

// WorkFound marks one worker as no longer inactive and wakes up to two
// sleeping threads, biasing toward throughput.
func (s *Sleep) WorkFound() {
	toWake := s.counters.SubInactiveThread()
	s.wakeAnyThreads(toWake)
}

// NoWorkFound advances idle's round counter and, once escalated far
// enough, actually blocks on the per-worker condvar.
func (s *Sleep) NoWorkFound(idle *IdleState, latch *CoreLatch, hasInjectedJobs func() bool) {
	switch {
	case idle.rounds < roundsUntilSleepy:
		runtime.Gosched()
		idle.rounds++
	case idle.rounds == roundsUntilSleepy:
		idle.jobsCounter = s.announceSleepy()
		idle.rounds++
		runtime.Gosched()
	case idle.rounds < roundsUntilSleeping:
		idle.rounds++
		runtime.Gosched()
	default:
		s.sleep(idle, latch, hasInjectedJobs)
	}
}

func (s *Sleep) announceSleepy() JobsEventCounter {
	return s.counters.IncrementJobsEventCounterIf(JobsEventCounter.IsActive).JobsCounter()
}

func (s *Sleep) sleep(idle *IdleState, latch *CoreLatch, hasInjectedJobs func() bool) {
	workerIndex := idle.workerIndex

	if !latch.GetSleepy() {
		return
	}

	state := s.states[workerIndex]
	state.mu.Lock()

	if !latch.FallAsleep() {
		state.mu.Unlock()
		idle.wakeFully()
		return
	}

	for {
		counters := s.counters.Load()
		if counters.JobsCounter() != idle.jobsCounter {
			// A job was posted while we were getting sleepy but we
			// raced past seeing it. Back up to the sleepy round so we
			// search again before actually blocking.
			state.mu.Unlock()
			idle.wakePartly()
			latch.WakeUp()
			return
		}
		if s.counters.TryAddSleepingThread(counters) {
			break
		}
	}

	// Successfully registered as asleep. One last check for injected jobs
	// guards against the lost-wakeup window: an externally injected job
	// racing the jec rollover, with this worker being the last one still
	// awake to see it.
	if hasInjectedJobs() {
		s.counters.SubSleepingThread()
	} else {
		state.isSleep = true
		for state.isSleep {
			state.cnd.Wait()
		}
	}
	state.mu.Unlock()

	idle.wakeFully()
	latch.WakeUp()
}

// NewInternalJobs must be called after pushing n jobs onto a worker's own
// local deque.
func (s *Sleep) NewInternalJobs(numJobs int, queueWasEmpty bool) {
	s.newJobs(numJobs, queueWasEmpty)
}

// NewInjectedJobs must be called after pushing n jobs onto the shared
// injector queue. It additionally acts as a full fence before bumping the
// jobs-event counter, so a worker that cached its sleepy jec snapshot
// sees either the new job or the bumped jec, never neither.
func (s *Sleep) NewInjectedJobs(numJobs int, queueWasEmpty bool) {
	s.counters.Load() // force a read-side fence via the SeqCst atomic op
	s.newJobs(numJobs, queueWasEmpty)
}

func (s *Sleep) newJobs(numJobs int, queueWasEmpty bool) {
	counters := s.counters.IncrementJobsEventCounterIf(JobsEventCounter.IsSleepy)
	numAwakeButIdle := counters.AwakeButIdleThreads()
	numSleepers := counters.SleepingThreads()

	if numSleepers == 0 {
		return
	}

	if queueWasEmpty {
		s.wakeAnyThreads(min(numJobs, numSleepers))
		return
	}
	if numAwakeButIdle < numJobs {
		s.wakeAnyThreads(min(numJobs-numAwakeButIdle, numSleepers))
	}
}

func (s *Sleep) wakeAnyThreads(numToWake int) {
	if numToWake <= 0 {
		return
	}
	for i := range s.states {
		if s.WakeSpecificThread(i) {
			numToWake--
			if numToWake == 0 {
				return
			}
		}
	}
}

// WakeSpecificThread wakes worker index if it is currently asleep,
// reporting whether it actually was.
func (s *Sleep) WakeSpecificThread(index int) bool {
	state := s.states[index]
	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.isSleep {
		return false
	}
	state.isSleep = false
	state.cnd.Signal()
	s.counters.SubSleepingThread()
	return true
}
