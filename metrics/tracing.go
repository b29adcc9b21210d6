package metrics

import (
	"github.com/aalemi-dev/sockettrace/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultLost  = "lost"
)

// TracingMetrics turns observed tracing operations into Prometheus metrics. It
// implements observability.Observer and is safe for concurrent use.
//
//	<ns>_records_total{role}
//	<ns>_transaction_duration_seconds{role}
//	<ns>_context_blocks_total{direction,result}
//	<ns>_tracked_sockets
//	<ns>_registry_collisions_total
//	<ns>_hook_panics_total
//	<ns>_sink_writes_total{sink,result}
//	<ns>_sink_write_duration_seconds{sink}
//	<ns>_sink_dropped_total{sink}
//	<ns>_operations_total{component,operation,result}
type TracingMetrics struct {
	records        Counter
	duration       Histogram
	contextBlocks  Counter
	trackedSockets Gauge
	collisions     Counter
	hookPanics     Counter
	sinkWrites     Counter
	sinkDuration   Histogram
	sinkDropped    Counter
	operations     Counter
}

// NewTracingMetrics registers the tracing metrics on c. ns is the name prefix;
// pass (*Metrics).Namespace() or DefaultNamespace.
func NewTracingMetrics(c MetricsCollector, ns string) *TracingMetrics {
	if ns == "" {
		ns = DefaultNamespace
	}
	name := func(s string) string { return prometheus.BuildFQName(ns, "", s) }

	return &TracingMetrics{
		records: c.CreateCounter(name("records_total"),
			"Request records emitted, by role.", []string{"role"}),
		duration: c.CreateHistogram(name("transaction_duration_seconds"),
			"Duration of traced transactions, by role.", []string{"role"},
			prometheus.ExponentialBuckets(0.0005, 2, 16)),
		contextBlocks: c.CreateCounter(name("context_blocks_total"),
			"Context blocks sent or received, by outcome.", []string{"direction", "result"}),
		trackedSockets: c.CreateGauge(name("tracked_sockets"),
			"Sockets currently held in the descriptor registry.", nil),
		collisions: c.CreateCounter(name("registry_collisions_total"),
			"Registry inserts that replaced a record whose close was never seen.", nil),
		hookPanics: c.CreateCounter(name("hook_panics_total"),
			"Panics contained inside tracing hooks.", nil),
		sinkWrites: c.CreateCounter(name("sink_writes_total"),
			"Writes to record sinks, by sink and outcome.", []string{"sink", "result"}),
		sinkDuration: c.CreateHistogram(name("sink_write_duration_seconds"),
			"Duration of record sink writes.", []string{"sink"}, prometheus.DefBuckets),
		sinkDropped: c.CreateCounter(name("sink_dropped_total"),
			"Records dropped before reaching a sink.", []string{"sink"}),
		operations: c.CreateCounter(name("operations_total"),
			"Other observed operations.", []string{"component", "operation", "result"}),
	}
}

// ObserveOperation implements observability.Observer.
func (m *TracingMetrics) ObserveOperation(ctx observability.OperationContext) {
	switch {
	case ctx.Component == "socket" && ctx.Operation == "emit":
		m.records.WithLabelValues(ctx.Resource).Inc()
		m.duration.WithLabelValues(ctx.Resource).Observe(ctx.Duration.Seconds())
	case ctx.Component == "socket" && ctx.Operation == "hook_panic":
		m.hookPanics.Inc()
	case ctx.Component == "propagation":
		result := ResultOK
		if ctx.Error != nil {
			result = ResultLost
		}
		m.contextBlocks.WithLabelValues(ctx.Operation, result).Inc()
	case ctx.Component == "registry":
		m.observeRegistry(ctx.Operation)
	case ctx.Operation == "drop":
		m.sinkDropped.WithLabelValues(ctx.Component).Add(float64(max(ctx.Size, 1)))
	case isSinkWrite(ctx.Component, ctx.Operation):
		m.sinkWrites.WithLabelValues(ctx.Component, result(ctx.Error)).Inc()
		m.sinkDuration.WithLabelValues(ctx.Component).Observe(ctx.Duration.Seconds())
	default:
		m.operations.WithLabelValues(ctx.Component, ctx.Operation, result(ctx.Error)).Inc()
	}
}

func (m *TracingMetrics) observeRegistry(operation string) {
	switch operation {
	case "insert":
		m.trackedSockets.Inc()
	case "remove":
		m.trackedSockets.Dec()
	case "collision":
		m.collisions.Inc()
	}
}

func isSinkWrite(component, operation string) bool {
	switch component + "/" + operation {
	case "kafka/produce", "otlp/export", "recordstore/insert", "archive/upload":
		return true
	}
	return false
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
