package core

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAlreadyInitialized is returned when something tries to configure the
// global registry after it has already been built (explicitly or lazily,
// by the first call that needed it).
var ErrAlreadyInitialized = errors.New("gopar: global thread pool already initialized")

// DefaultNumThreads is used to build the global registry the first time
// it's needed without an explicit prior configuration call.
const DefaultNumThreads = 10

type threadInfo struct {
	primed    *LockLatch
	stopped   *LockLatch
	terminate *OnceLatch
	deque     *Deque
}

func newThreadInfo() *threadInfo {
	return &threadInfo{
		primed:    NewLockLatch(),
		stopped:   NewLockLatch(),
		terminate: NewOnceLatch(),
		deque:     NewDeque(),
	}
}

// Registry is the process-wide (or caller-owned) pool container: the set
// of worker goroutines, their deques, the shared injector, and the sleep
// coordinator they all share.
type Registry struct {
	threadInfos []*threadInfo
	injector    *Injector
	sleep       *Sleep
}

// NewRegistry builds and starts numThreads worker goroutines, blocking
// until every one of them has reported primed.
func NewRegistry(numThreads int) (*Registry, error) {
	if numThreads <= 0 {
		return nil, errors.New("gopar/core: num threads must be positive")
	}
	if numThreads > ThreadsMax {
		return nil, fmt.Errorf("gopar/core: num threads %d exceeds max of %d", numThreads, ThreadsMax)
	}

	infos := make([]*threadInfo, numThreads)
	for i := range infos {
		infos[i] = newThreadInfo()
	}

	reg := &Registry{
		threadInfos: infos,
		injector:    NewInjector(),
		sleep:       NewSleep(numThreads),
	}

	for i, info := range infos {
		go runWorker(reg, i, info)
	}
	for _, info := range infos {
		info.primed.WaitAndReset()
	}
	return reg, nil
}

// NumThreads reports how many workers this registry owns.
func (r *Registry) NumThreads() int { return len(r.threadInfos) }

// Inject hands a job to the shared injector queue and wakes a sleeping
// worker if one is available, for use by callers that are not themselves
// running on a worker goroutine.
func (r *Registry) Inject(job JobRef) {
	wasEmpty := r.injector.Push(job)
	r.sleep.NewInjectedJobs(1, wasEmpty)
}

func (r *Registry) popInjectedJob() (JobRef, bool) {
	return r.injector.Pop()
}

func (r *Registry) hasInjectedJobs() bool {
	return !r.injector.IsEmpty()
}

func (r *Registry) notifyWorkerLatchIsSet(index int) {
	r.sleep.WakeSpecificThread(index)
}

// Terminate signals every worker to stop once its current work (and
// anything it finds afterward, up to observing the terminate latch) is
// done, and blocks until all of them have exited their main loop. A
// Registry must not be used again afterward.
func (r *Registry) Terminate() {
	for i, info := range r.threadInfos {
		// A worker idling on its terminate latch may be blocked in the
		// sleep coordinator; wake it if the latch reports it was asleep.
		if info.terminate.AsCoreLatch().setCore() {
			r.notifyWorkerLatchIsSet(i)
		}
	}
	for _, info := range r.threadInfos {
		info.stopped.WaitAndReset()
	}
}

var (
	globalOnce sync.Once
	globalReg  *Registry
	globalErr  error
)

// buildGlobalRegistry configures the global registry with numThreads
// workers. It only has an effect the first time it (or any call that
// lazily triggers the default) runs; subsequent calls report
// ErrAlreadyInitialized.
func buildGlobalRegistry(numThreads int) error {
	ran := false
	globalOnce.Do(func() {
		ran = true
		globalReg, globalErr = NewRegistry(numThreads)
	})
	if !ran {
		return ErrAlreadyInitialized
	}
	return globalErr
}

// BuildGlobalRegistry is the Builder-facing entry point for explicitly
// sizing the global pool before anything implicitly initializes it with
// DefaultNumThreads.
func BuildGlobalRegistry(numThreads int) error {
	return buildGlobalRegistry(numThreads)
}

func globalRegistry() *Registry {
	globalOnce.Do(func() {
		globalReg, globalErr = NewRegistry(DefaultNumThreads)
	})
	if globalErr != nil {
		panic("gopar: global thread pool failed to initialize: " + globalErr.Error())
	}
	return globalReg
}

// CurrentNumThreads reports the size of whichever pool the calling
// goroutine belongs to: its own pool if it's a worker, otherwise the
// global pool (built lazily with DefaultNumThreads if needed).
func CurrentNumThreads() int {
	if w := CurrentWorker(); w != nil {
		return w.registry.NumThreads()
	}
	return globalRegistry().NumThreads()
}

// InWorker runs op on a worker thread. If the calling goroutine is
// already a worker, op runs inline with injected=false. Otherwise the
// call blocks, injecting a one-shot job into the global registry and
// waiting for some worker to pick it up, and op runs with injected=true.
func InWorker[R any](op func(w *WorkerThread, injected bool) R) R {
	if w := CurrentWorker(); w != nil {
		return op(w, false)
	}
	return inWorkerCold(globalRegistry(), op)
}

func inWorkerCold[R any](reg *Registry, op func(w *WorkerThread, injected bool) R) R {
	latch := NewLockLatch()
	job := NewStackJob(func(stolen bool) R {
		w := CurrentWorker()
		if w == nil {
			panic("gopar/core: injected job did not run on a worker thread")
		}
		return op(w, true)
	}, latch)

	reg.Inject(job.AsJobRef())
	latch.WaitAndReset()
	return job.IntoResult()
}
