package core

import "unsafe"

// JobRef is a type-erased, stealable reference to a unit of work: an
// identity token (the backing StackJob's address) plus a closure that
// executes it. Go closures aren't comparable, so identity here is carried
// by the pointer alone: a distinct job always has a distinct backing
// StackJob, which is sufficient for the "is this the job I pushed" check
// in join_context.
//
// The pointer given to a JobRef must outlive every executor that might
// observe it on a deque; callers guarantee this by waiting on the job's
// attached latch before letting the owning StackJob go out of scope.
type JobRef struct {
	id      unsafe.Pointer
	execute func()
}

// Execute runs the job.
func (r JobRef) Execute() { r.execute() }

// Same reports whether two JobRefs refer to the same backing job.
func (r JobRef) Same(other JobRef) bool { return r.id == other.id }

type jobResultState int32

const (
	jobResultNone jobResultState = iota
	jobResultOK
	jobResultPanic
)

// StackJob owns a single-shot closure slot, a result slot, and a
// completion latch. It is meant to live on the stack (or heap, in Go,
// since escape analysis will promote it once its address is taken, but
// never outside the lifetime of the call that waits on its latch) of the
// forking goroutine; a JobRef built from it may be pushed to any deque but
// must never outlive the StackJob itself.
type StackJob[R any] struct {
	latch Latch

	fn     func(stolen bool) R
	taken  bool
	result R
	panic  any
	state  jobResultState
}

// NewStackJob builds a StackJob around fn, to be completed by latch.
func NewStackJob[R any](fn func(stolen bool) R, latch Latch) *StackJob[R] {
	return &StackJob[R]{fn: fn, latch: latch}
}

// AsJobRef produces a stealable reference to this job.
func (j *StackJob[R]) AsJobRef() JobRef {
	return JobRef{
		id:      unsafe.Pointer(j),
		execute: j.execute,
	}
}

// take removes the closure from the slot; it must only ever happen once.
func (j *StackJob[R]) take() func(stolen bool) R {
	if j.taken {
		panic("gopar/core: stack job closure consumed twice")
	}
	j.taken = true
	f := j.fn
	j.fn = nil
	return f
}

// execute runs the job as if it were always "stolen" (func(true)): any job
// actually dequeued and executed, as opposed to run inline by its own
// forking goroutine, is by construction running somewhere other than
// where it was forked.
func (j *StackJob[R]) execute() {
	f := j.take()
	func() {
		defer j.latch.Set()
		defer func() {
			if r := recover(); r != nil {
				j.panic = r
				j.state = jobResultPanic
			}
		}()
		j.result = f(true)
		j.state = jobResultOK
	}()
}

// RunInline runs the job's closure directly on the calling goroutine,
// bypassing the latch entirely (the caller already knows it owns the
// only reference to this job and will consume the result itself).
func (j *StackJob[R]) RunInline(stolen bool) R {
	f := j.take()
	return f(stolen)
}

// IntoResult drains the result slot, re-panicking if the job's closure
// panicked. Must only be called after the attached latch has been
// observed set. RunInline returns its result directly and does not fill
// the result slot, so IntoResult after RunInline panics.
func (j *StackJob[R]) IntoResult() R {
	switch j.state {
	case jobResultOK:
		return j.result
	case jobResultPanic:
		panic(j.panic)
	default:
		panic("gopar/core: stack job result read before completion")
	}
}
