package core

// WorkerThread owns one local deque and services it, plus whatever work
// it can find by stealing from peers or draining the injector, for as
// long as the pool lives.
type WorkerThread struct {
	deque    *Deque
	index    int
	registry *Registry
}

// Index returns this worker's position in the registry.
func (w *WorkerThread) Index() int { return w.index }

// Registry returns the pool this worker belongs to.
func (w *WorkerThread) Registry() *Registry { return w.registry }

// Push adds a job to this worker's own local deque and notifies the sleep
// coordinator that new work appeared.
func (w *WorkerThread) Push(job JobRef) {
	wasEmpty := w.deque.IsEmpty()
	w.deque.PushBottom(job)
	w.registry.sleep.NewInternalJobs(1, wasEmpty)
}

// TakeLocalJob pops a job from this worker's own deque, if any.
func (w *WorkerThread) TakeLocalJob() (JobRef, bool) {
	return w.deque.PopBottom()
}

// Execute runs a job that was found via TakeLocalJob, steal, or the
// injector.
func (w *WorkerThread) Execute(job JobRef) {
	job.Execute()
}

// WaitUntil is the central dispatch loop: return immediately if latch is
// already set; otherwise repeatedly look for work (local deque, steal,
// injector) and execute it, falling into the sleep coordinator's
// idle/backoff protocol whenever none is found, until latch is set.
func (w *WorkerThread) WaitUntil(latch *CoreLatch) {
	if latch.Probe() {
		return
	}
	w.waitUntilCold(latch)
}

func (w *WorkerThread) waitUntilCold(latch *CoreLatch) {
	idle := w.registry.sleep.StartLooking(w.index)
	for !latch.Probe() {
		if job, ok := w.findWork(); ok {
			w.registry.sleep.WorkFound()
			w.Execute(job)
			idle = w.registry.sleep.StartLooking(w.index)
			continue
		}
		w.registry.sleep.NoWorkFound(&idle, latch, w.registry.hasInjectedJobs)
	}
	w.registry.sleep.WorkFound()
}

// findWork tries, in order: the local deque, stealing from a peer, and
// finally the shared injector.
func (w *WorkerThread) findWork() (JobRef, bool) {
	if job, ok := w.TakeLocalJob(); ok {
		return job, true
	}
	if job, ok := w.steal(); ok {
		return job, true
	}
	return w.registry.popInjectedJob()
}

func (w *WorkerThread) steal() (JobRef, bool) {
	infos := w.registry.threadInfos
	n := len(infos)
	if n <= 1 {
		return JobRef{}, false
	}
	for i := 0; i < n; i++ {
		if i == w.index {
			continue
		}
		if job, ok := infos[i].deque.Steal(); ok {
			return job, true
		}
	}
	return JobRef{}, false
}

// runWorker is the goroutine body spawned once per worker by Registry:
// install the worker in the goroutine-local registry, announce primed,
// service jobs until told to terminate, then announce stopped.
func runWorker(registry *Registry, index int, info *threadInfo) {
	w := &WorkerThread{deque: info.deque, index: index, registry: registry}
	setCurrentWorker(w)
	defer clearCurrentWorker()

	info.primed.Set()
	w.WaitUntil(info.terminate.AsCoreLatch())

	if !w.deque.IsEmpty() {
		panic("gopar/core: worker shutting down with non-empty local queue")
	}
	info.stopped.Set()
}
