package minio

import (
	"time"

	"github.com/aalemi-dev/sockettrace/observability"
)

// observeOperation notifies the observer about an archive operation. size is
// the number of records involved.
func (a *Archive) observeOperation(operation, key string, duration time.Duration, err error, size int64) {
	if a == nil || a.observer == nil {
		return
	}
	a.observer.ObserveOperation(observability.OperationContext{
		Component:   "archive",
		Operation:   operation,
		Resource:    a.cfg.Bucket,
		SubResource: key,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}
