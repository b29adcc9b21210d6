package kafka

import (
	"time"

	"github.com/aalemi-dev/sockettrace/observability"
)

// observeOperation reports one broker operation to the observer, if any.
func (s *Sink) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if s.observer != nil {
		s.observer.ObserveOperation(observability.OperationContext{
			Component:   "kafka",
			Operation:   operation,
			Resource:    resource,
			SubResource: subResource,
			Duration:    duration,
			Error:       err,
			Size:        size,
		})
	}
}
