package recordstore

import (
	"time"

	"github.com/aalemi-dev/sockettrace/observability"
)

// observeOperation notifies the observer about a store operation. The
// resource defaults to the table name.
func (s *Store) observeOperation(operation, resource string, duration time.Duration, err error, rows int64) {
	if s == nil || s.observer == nil {
		return
	}
	if resource == "" {
		resource = s.cfg.Table
	}
	s.observer.ObserveOperation(observability.OperationContext{
		Component:   "recordstore",
		Operation:   operation,
		Resource:    resource,
		SubResource: s.cfg.Driver,
		Duration:    duration,
		Error:       err,
		Size:        rows,
	})
}
