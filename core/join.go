package core

// FnContext is passed to both closures of JoinContext so each can tell
// whether it is still running on the original forking goroutine or was
// migrated elsewhere.
type FnContext struct {
	migrated bool
}

// Migrated reports whether the closure is running on a different
// goroutine than the one that called JoinContext.
func (c FnContext) Migrated() bool { return c.migrated }

func newFnContext(migrated bool) FnContext { return FnContext{migrated: migrated} }

// JoinContextOnWorker forks opA and opB, running opA inline (like rayon's
// join always does for the left branch) and opB either inline (if no
// thief steals A's sibling job before A finishes) or on whichever worker
// steals it. w must be the WorkerThread the calling goroutine is already
// running on; injected reports whether w itself got here via an injected
// job, and is passed through to both closures' FnContext so a nested
// split can tell it was reached via an injected job even before either
// half actually migrates.
func JoinContextOnWorker[RA, RB any](w *WorkerThread, injected bool, opA func(FnContext) RA, opB func(FnContext) RB) (RA, RB) {
	latchB := NewSpinLatch(w)

	jobB := NewStackJob(func(stolen bool) RB {
		return opB(newFnContext(stolen))
	}, latchB)
	jobBRef := jobB.AsJobRef()
	w.Push(jobBRef)

	var resultA RA
	var panicA any
	var hadPanicA bool

	func() {
		defer func() {
			if r := recover(); r != nil {
				panicA = r
				hadPanicA = true
			}
		}()
		resultA = opA(newFnContext(injected))
	}()

	var resultB RB
	gotB := false
	for !latchB.Probe() {
		popped, ok := w.TakeLocalJob()
		if !ok {
			w.WaitUntil(latchB.AsCoreLatch())
			break
		}
		if popped.Same(jobBRef) {
			resultB = jobB.RunInline(injected)
			gotB = true
			break
		}
		w.Execute(popped)
	}
	if !gotB {
		resultB = jobB.IntoResult()
	}

	if hadPanicA {
		panic(panicA)
	}
	return resultA, resultB
}

// JoinContext is the public, goroutine-agnostic entry point: it finds (or
// borrows, via an injected job) a worker to run on and then forks opA and
// opB on it.
func JoinContext[RA, RB any](opA func(FnContext) RA, opB func(FnContext) RB) (RA, RB) {
	type pair struct {
		a RA
		b RB
	}
	p := InWorker(func(w *WorkerThread, injected bool) pair {
		a, b := JoinContextOnWorker(w, injected, opA, opB)
		return pair{a: a, b: b}
	})
	return p.a, p.b
}

// Join is JoinContext without migration-awareness, matching rayon's plain
// join(a, b).
func Join[RA, RB any](a func() RA, b func() RB) (RA, RB) {
	return JoinContext(
		func(FnContext) RA { return a() },
		func(FnContext) RB { return b() },
	)
}
