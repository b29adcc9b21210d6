// Package registry implements the process-wide map from file descriptor to the
// tracing record of the socket behind it.
//
// Lookups are the hot path: every intercepted syscall performs one. The map is
// therefore striped into shards, each guarded by its own sync.RWMutex, so that
// lookups never contend with each other and insert/remove only block the shard
// of the descriptor they touch.
//
// Descriptor numbers are recycled by the kernel as soon as close(2) returns.
// Callers must Remove a descriptor before the real close so that a concurrent
// accept that receives the same number always observes an empty slot.
package registry

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aalemi-dev/sockettrace/observability"
)

// DefaultShards is the number of lock stripes used by New.
const DefaultShards = 64

// Logger is the subset of the logger package used to report collisions.
type Logger interface {
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Registry maps descriptors to *V. The zero value is not usable; call New.
type Registry[V any] struct {
	shards   []shard[V]
	size     atomic.Int64
	logger   Logger
	observer observability.Observer
}

type shard[V any] struct {
	mu      sync.RWMutex
	entries map[int]*V
}

// New creates a Registry with DefaultShards stripes.
func New[V any]() *Registry[V] {
	return NewWithShards[V](DefaultShards)
}

// NewWithShards creates a Registry with n stripes (at least one).
func NewWithShards[V any](n int) *Registry[V] {
	if n < 1 {
		n = 1
	}
	r := &Registry[V]{shards: make([]shard[V], n)}
	for i := range r.shards {
		r.shards[i].entries = make(map[int]*V)
	}
	return r
}

// WithLogger attaches a logger used to report insert collisions.
func (r *Registry[V]) WithLogger(logger Logger) *Registry[V] {
	r.logger = logger
	return r
}

// WithObserver attaches an observer notified of collisions.
func (r *Registry[V]) WithObserver(observer observability.Observer) *Registry[V] {
	r.observer = observer
	return r
}

func (r *Registry[V]) shardFor(fd int) *shard[V] {
	idx := fd % len(r.shards)
	if idx < 0 {
		idx = -idx
	}
	return &r.shards[idx]
}

// Insert stores v for fd. An existing entry is overwritten and reported: it means
// a close was never observed for the previous socket with this number.
func (r *Registry[V]) Insert(fd int, v *V) (replaced bool) {
	s := r.shardFor(fd)
	s.mu.Lock()
	_, replaced = s.entries[fd]
	s.entries[fd] = v
	s.mu.Unlock()

	if replaced {
		if r.logger != nil {
			r.logger.WarnWithContext(context.Background(), "replacing leaked socket record", nil, map[string]interface{}{
				"fd": fd,
			})
		}
		if r.observer != nil {
			r.observer.ObserveOperation(observability.OperationContext{
				Component: "registry",
				Operation: "collision",
				Size:      1,
			})
		}
		return true
	}
	r.size.Add(1)
	return false
}

// Lookup returns the record of fd. A miss is the normal answer for descriptors
// that are not traced.
func (r *Registry[V]) Lookup(fd int) (*V, bool) {
	s := r.shardFor(fd)
	s.mu.RLock()
	v, ok := s.entries[fd]
	s.mu.RUnlock()
	return v, ok
}

// Remove deletes and returns the record of fd. Unknown descriptors are a no-op.
func (r *Registry[V]) Remove(fd int) (*V, bool) {
	s := r.shardFor(fd)
	s.mu.Lock()
	v, ok := s.entries[fd]
	if ok {
		delete(s.entries, fd)
	}
	s.mu.Unlock()

	if ok {
		r.size.Add(-1)
	}
	return v, ok
}

// Len returns the number of tracked descriptors.
func (r *Registry[V]) Len() int {
	return int(r.size.Load())
}
