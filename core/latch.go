package core

import (
	"sync"
	"sync/atomic"
)

// coreLatchState is the four-state machine backing CoreLatch.
type coreLatchState int32

const (
	latchUnset coreLatchState = iota
	latchSleepy
	latchSleeping
	latchSet
)

// Latch is a one-shot synchronization primitive; Set may only be called
// once per latch instance.
type Latch interface {
	Set()
}

// AsCoreLatch exposes the CoreLatch backing a latch implementation, so
// WaitUntil can probe it without depending on the concrete latch type.
type AsCoreLatch interface {
	AsCoreLatch() *CoreLatch
}

// CoreLatch is the atomic state machine shared by SpinLatch and OnceLatch:
// UNSET -> SLEEPY -> SLEEPING -> SET, with SLEEPING -> UNSET the only
// backward transition (performed by the owner after a spurious wake).
type CoreLatch struct {
	state atomic.Int32
}

// GetSleepy attempts UNSET -> SLEEPY.
func (c *CoreLatch) GetSleepy() bool {
	return c.state.CompareAndSwap(int32(latchUnset), int32(latchSleepy))
}

// FallAsleep attempts SLEEPY -> SLEEPING.
func (c *CoreLatch) FallAsleep() bool {
	return c.state.CompareAndSwap(int32(latchSleepy), int32(latchSleeping))
}

// WakeUp moves SLEEPING -> UNSET unless the latch has already been SET.
func (c *CoreLatch) WakeUp() {
	if !c.Probe() {
		c.state.CompareAndSwap(int32(latchSleeping), int32(latchUnset))
	}
}

// setCore unconditionally swaps in SET and reports whether the prior state
// was SLEEPING, so the caller knows whether a condvar notify is required.
func (c *CoreLatch) setCore() bool {
	old := c.state.Swap(int32(latchSet))
	return old == int32(latchSleeping)
}

// Probe reports whether the latch has been set.
func (c *CoreLatch) Probe() bool {
	return c.state.Load() == int32(latchSet)
}

// LockLatch is a mutex+condvar pair used by threads outside the pool that
// block waiting for a single posted job (the cold path of InWorker).
type LockLatch struct {
	mu  sync.Mutex
	cnd *sync.Cond
	set bool
}

// NewLockLatch returns a fresh, unset LockLatch.
func NewLockLatch() *LockLatch {
	l := &LockLatch{}
	l.cnd = sync.NewCond(&l.mu)
	return l
}

// Set satisfies Latch: lock, flip the flag, wake every waiter.
func (l *LockLatch) Set() {
	l.mu.Lock()
	l.set = true
	l.cnd.Broadcast()
	l.mu.Unlock()
}

// WaitAndReset blocks until Set is called, then clears the flag so the
// same latch can be waited on again after a later Set.
func (l *LockLatch) WaitAndReset() {
	l.mu.Lock()
	for !l.set {
		l.cnd.Wait()
	}
	l.set = false
	l.mu.Unlock()
}

// SpinLatch wraps a CoreLatch with the owning worker's registry and index,
// so that Set can notify the sleep coordinator when the owner was asleep.
//
// Set holds its own reference to the registry for the duration of the call,
// so the target worker waking and the registry being torn down can't race
// ahead of the notify itself.
type SpinLatch struct {
	core         CoreLatch
	registry     *Registry
	targetWorker int
}

// NewSpinLatch builds a SpinLatch that will wake thread's owner if needed.
func NewSpinLatch(thread *WorkerThread) *SpinLatch {
	return &SpinLatch{
		registry:     thread.registry,
		targetWorker: thread.index,
	}
}

// AsCoreLatch implements AsCoreLatch.
func (s *SpinLatch) AsCoreLatch() *CoreLatch { return &s.core }

// Probe reports whether the latch has been set.
func (s *SpinLatch) Probe() bool { return s.core.Probe() }

// Set implements Latch.
func (s *SpinLatch) Set() {
	registry := s.registry
	target := s.targetWorker
	if s.core.setCore() {
		registry.notifyWorkerLatchIsSet(target)
	}
}

// OnceLatch wraps a CoreLatch for the pool's terminate signal: workers
// wait_until it is set. Set only flips the state and does not notify the
// sleep coordinator; Registry.Terminate sets the core latch itself and
// wakes the worker when it was asleep.
type OnceLatch struct {
	core CoreLatch
}

// NewOnceLatch returns a fresh, unset OnceLatch.
func NewOnceLatch() *OnceLatch { return &OnceLatch{} }

// AsCoreLatch implements AsCoreLatch.
func (o *OnceLatch) AsCoreLatch() *CoreLatch { return &o.core }

// Set implements Latch.
func (o *OnceLatch) Set() { o.core.setCore() }
