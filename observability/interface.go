package observability

import "time"

// Observer receives one event per completed tracing operation. It is optional:
// every package works without one.
type Observer interface {
	// ObserveOperation is called when an operation completes.
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes one operation of the tracing layer.
type OperationContext struct {
	// Component identifies the package that performed the operation.
	// Examples: "socket", "propagation", "registry", "sink", "kafka", "otlp", "recordstore"
	Component string

	// Operation describes what was performed.
	// Examples:
	//   socket:      "emit", "resolve", "hook_panic"
	//   propagation: "send", "receive"
	//   registry:    "insert", "remove", "collision"
	//   sink:        "drop", "flush"
	Operation string

	// Resource identifies the primary subject, usually a role ("client", "server")
	// or a sink name.
	Resource string

	// SubResource provides additional context (optional), such as the peer
	// address of a socket.
	SubResource string

	// Duration is how long the operation took. For "emit" it is the duration of
	// the traced transaction.
	Duration time.Duration

	// Error is the error the operation produced, nil on success.
	Error error

	// Size is the amount of data involved (optional): bytes for propagation,
	// records for sinks.
	Size int64

	// Metadata carries anything that does not fit the fields above.
	Metadata map[string]interface{}
}
