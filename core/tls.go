package core

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// Go has no native goroutine-local storage. This file emulates one,
// narrowly, so InWorker/JoinContext can discover whether the calling
// goroutine is already a pool worker without threading an explicit
// parameter through every public entry point.
//
// A goroutine's identity is stable for its entire lifetime, so keying a
// map by the id parsed out of runtime.Stack is safe here: a goroutine
// never becomes a different unit of work mid-flight. Each worker
// goroutine registers itself exactly once, at the top of its main loop,
// and clears the entry on exit.
var currentWorkers sync.Map // map[int64]*WorkerThread

func goroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, err := strconv.ParseInt(string(buf), 10, 64)
	if err != nil {
		panic("gopar/core: could not parse goroutine id: " + err.Error())
	}
	return id
}

func setCurrentWorker(w *WorkerThread) {
	currentWorkers.Store(goroutineID(), w)
}

func clearCurrentWorker() {
	currentWorkers.Delete(goroutineID())
}

// CurrentWorker returns the WorkerThread owning the calling goroutine, or
// nil if the caller is not a pool worker.
func CurrentWorker() *WorkerThread {
	v, ok := currentWorkers.Load(goroutineID())
	if !ok {
		return nil
	}
	return v.(*WorkerThread)
}
