package observability

// NoOpObserver is an Observer that discards every event.
type NoOpObserver struct{}

// ObserveOperation does nothing.
func (n *NoOpObserver) ObserveOperation(ctx OperationContext) {}

// NewNoOpObserver creates a new NoOpObserver.
func NewNoOpObserver() Observer {
	return &NoOpObserver{}
}

// Funnel fans one event out to several observers. Nil entries are skipped.
type Funnel []Observer

// ObserveOperation forwards ctx to every observer in order.
func (f Funnel) ObserveOperation(ctx OperationContext) {
	for _, o := range f {
		if o != nil {
			o.ObserveOperation(ctx)
		}
	}
}
