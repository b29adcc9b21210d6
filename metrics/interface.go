package metrics

// MetricsCollector creates metrics on the application registry. Every metric
// carries the constant service label.
type MetricsCollector interface {
	// CreateCounter registers a counter vector.
	//
	//   c := m.CreateCounter("socktrace_records_total", "Records emitted", []string{"role"})
	//   c.WithLabelValues("server").Inc()
	CreateCounter(name, help string, labels []string) Counter

	// CreateHistogram registers a histogram vector with the given buckets.
	CreateHistogram(name, help string, labels []string, buckets []float64) Histogram

	// CreateGauge registers a gauge vector.
	CreateGauge(name, help string, labels []string) Gauge
}
