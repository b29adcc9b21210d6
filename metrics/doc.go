// Package metrics exposes the tracer's own health as Prometheus metrics.
//
// NewMetrics builds two registries: a system registry with the Go runtime,
// process and build info collectors, and an application registry for the
// tracing metrics. Each can be served on its own address.
//
// TracingMetrics is an observability.Observer. Handing it to the hooks,
// registry and sinks (usually inside an observability.Funnel) yields counters
// for emitted records, delivered and lost context blocks, registry collisions
// and sink outcomes, a gauge of tracked sockets, and duration histograms.
package metrics
