package sink

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aalemi-dev/sockettrace/observability"
	"github.com/aalemi-dev/sockettrace/record"
)

// DefaultBufferSize is the queue length used when NewAsync is given zero.
const DefaultBufferSize = 1024

// Logger is the subset of the logger package used to report drops.
type Logger interface {
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Async queues records and forwards them to the next sink from a single
// collector goroutine. Log never blocks: when the queue is full the record is
// dropped and counted.
type Async struct {
	next     record.Sink
	records  chan record.RequestRecord
	done     chan struct{}
	logger   Logger
	observer observability.Observer

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// NewAsync starts an Async in front of next.
func NewAsync(next record.Sink, size int) *Async {
	if size <= 0 {
		size = DefaultBufferSize
	}
	a := &Async{
		next:    next,
		records: make(chan record.RequestRecord, size),
		done:    make(chan struct{}),
	}
	go a.collect()
	return a
}

// WithLogger attaches a logger used to report dropped records.
func (a *Async) WithLogger(logger Logger) *Async {
	a.logger = logger
	return a
}

// WithObserver attaches an observer notified of dropped records.
func (a *Async) WithObserver(observer observability.Observer) *Async {
	a.observer = observer
	return a
}

// Log enqueues r.
func (a *Async) Log(r record.RequestRecord) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.drop(r, "sink closed")
		return
	}
	select {
	case a.records <- r:
	default:
		a.drop(r, "record buffer full")
	}
}

// Dropped returns the number of records that could not be queued.
func (a *Async) Dropped() uint64 {
	return a.dropped.Load()
}

// Close stops accepting records and waits until the queue is drained or ctx
// is done.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.records)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) collect() {
	defer close(a.done)
	for r := range a.records {
		a.forward(r)
	}
}

// forward isolates the collector from a panicking sink.
func (a *Async) forward(r record.RequestRecord) {
	defer func() {
		if p := recover(); p != nil && a.logger != nil {
			a.logger.WarnWithContext(context.Background(), "record sink panicked", nil, map[string]interface{}{
				"panic":    p,
				"trace_id": r.TraceID.String(),
			})
		}
	}()
	a.next.Log(r)
}

func (a *Async) drop(r record.RequestRecord, reason string) {
	n := a.dropped.Add(1)
	if a.observer != nil {
		a.observer.ObserveOperation(observability.OperationContext{
			Component: "sink",
			Operation: "drop",
			Resource:  r.Role,
			Size:      1,
		})
	}
	if a.logger != nil && (n == 1 || n%1000 == 0) {
		a.logger.WarnWithContext(context.Background(), "dropping request record", nil, map[string]interface{}{
			"reason":   reason,
			"dropped":  n,
			"trace_id": r.TraceID.String(),
		})
	}
}
