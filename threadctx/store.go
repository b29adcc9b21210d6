package threadctx

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Store maps OS thread IDs to their Execution. Executions are created lazily on
// first use, mirroring thread-local storage.
//
// A Go caller that resolves its Execution through Store must pin its goroutine
// with runtime.LockOSThread for as long as it services the request.
type Store struct {
	executions sync.Map // map[int]*Execution
	size       atomic.Int64
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// ForThread returns the Execution bound to tid, creating it if necessary.
func (s *Store) ForThread(tid int) *Execution {
	if e, ok := s.executions.Load(tid); ok {
		return e.(*Execution)
	}
	e, loaded := s.executions.LoadOrStore(tid, NewExecution())
	if !loaded {
		s.size.Add(1)
	}
	return e.(*Execution)
}

// Current returns the Execution of the calling OS thread.
func (s *Store) Current() *Execution {
	return s.ForThread(unix.Gettid())
}

// Release forgets the Execution of tid, for example when a thread exits.
func (s *Store) Release(tid int) {
	if _, loaded := s.executions.LoadAndDelete(tid); loaded {
		s.size.Add(-1)
	}
}

// Len returns the number of threads with an Execution.
func (s *Store) Len() int {
	return int(s.size.Load())
}
