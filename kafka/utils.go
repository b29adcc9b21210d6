package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/aalemi-dev/sockettrace/record"
	"github.com/segmentio/kafka-go"
)

// Publish serializes r and writes it to the configured topic. The message key
// is the hex trace ID.
func (s *Sink) Publish(ctx context.Context, r record.RequestRecord) error {
	start := time.Now()
	var publishErr error
	var msgSize int64

	defer func() {
		s.observeOperation("produce", s.cfg.Topic, r.Role, time.Since(start), publishErr, msgSize)
	}()

	if err := ctx.Err(); err != nil {
		publishErr = err
		return publishErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.writer == nil {
		publishErr = ErrSinkClosed
		return publishErr
	}

	value, err := s.serializer.Serialize(r)
	if err != nil {
		publishErr = fmt.Errorf("failed to serialize record: %w", err)
		return publishErr
	}
	msgSize = int64(len(value))

	err = s.writer.WriteMessages(ctx, newMessage(r, value))
	if err != nil {
		publishErr = s.TranslateError(err)
		return publishErr
	}
	return nil
}

// Log publishes r under the configured write timeout. Failures are logged and
// observed, never returned.
func (s *Sink) Log(r record.RequestRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	if err := s.Publish(ctx, r); err != nil {
		s.logWarn(ctx, "Failed to publish request record", err, s.failureFields(err, map[string]interface{}{
			"topic":    s.cfg.Topic,
			"trace_id": r.TraceID.String(),
		}))
	}
}

// failureFields adds the classification of a produce error to fields.
func (s *Sink) failureFields(err error, fields map[string]interface{}) map[string]interface{} {
	fields["retryable"] = s.IsRetryableError(err)
	fields["permanent"] = s.IsPermanentError(err)
	fields["auth"] = s.IsAuthenticationError(err)
	return fields
}

func newMessage(r record.RequestRecord, value []byte) kafka.Message {
	return kafka.Message{
		Key:   []byte(r.TraceID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderRole, Value: []byte(r.Role)},
			{Key: HeaderService, Value: []byte(r.Service)},
			{Key: HeaderSpanID, Value: []byte(r.SpanID.String())},
		},
		Time: r.EndedAt(),
	}
}
