// Package observability provides the single hook through which the tracing
// layer reports on its own operations.
//
// # Overview
//
// Every package that does work worth counting (the socket hooks, the context
// propagation path, the registry, the record sinks) accepts an optional Observer
// and calls it once per completed operation. Metrics, logging, or both can be
// layered behind it without the core packages knowing which.
//
// # Usage in Packages
//
// A package keeps the observer next to its logger and calls it through a nil-safe
// helper:
//
//	func (h *Hooks) observe(operation, resource string, duration time.Duration, err error) {
//	    if h.observer != nil {
//	        h.observer.ObserveOperation(observability.OperationContext{
//	            Component: "socket",
//	            Operation: operation,
//	            Resource:  resource,
//	            Duration:  duration,
//	            Error:     err,
//	        })
//	    }
//	}
//
// # Usage in Applications
//
// The metrics package ships TracingMetrics, which implements Observer with
// prometheus counters. Custom observers switch on Component and Operation:
//
//	func (o *AuditObserver) ObserveOperation(ctx observability.OperationContext) {
//	    switch ctx.Component {
//	    case "propagation":
//	        if ctx.Error != nil {
//	            o.logger.Warn("context block lost", zap.String("op", ctx.Operation))
//	        }
//	    case "socket":
//	        o.records.Add(1)
//	    }
//	}
//
// # FX Integration
//
//	fx.Provide(
//	    fx.Annotate(
//	        metrics.NewTracingMetrics,
//	        fx.As(new(observability.Observer)),
//	    ),
//	)
//
// # OperationContext Fields
//
//   - Component: which package (socket, propagation, registry, sink, kafka, ...)
//   - Operation: what was done (emit, send, receive, collision, drop, ...)
//   - Resource:  role or sink name
//   - SubResource: secondary detail such as the peer address
//   - Duration:  how long it took
//   - Error:     any error that occurred
//   - Size:      bytes or records involved
//   - Metadata:  additional context
//
// # Examples
//
// A finished server transaction:
//
//	OperationContext{
//	    Component: "socket",
//	    Operation: "emit",
//	    Resource:  "server",
//	    Duration:  4 * time.Millisecond,
//	    Size:      1,
//	}
//
// A context block that could not be written in full:
//
//	OperationContext{
//	    Component:   "propagation",
//	    Operation:   "send",
//	    SubResource: "10.0.3.7:8080",
//	    Error:       propagation.ErrSendFailed,
//	    Size:        12, // bytes that reached the socket
//	}
//
// # Thread Safety
//
// Observer implementations must be thread-safe. They are called from every
// thread doing I/O on a traced socket, inside the intercepted call, so they must
// also return quickly.
package observability
