// Package kafka publishes finished request records to an Apache Kafka topic.
//
// Each record is serialized (JSON by default) and written with the trace ID as
// the message key, so every record of one trace lands in the same partition and
// downstream consumers can rebuild call trees in order. The role, service and
// span ID travel as message headers for consumers that route without decoding
// the body.
//
// The Sink satisfies record.Sink. Log never returns an error; failures are
// translated, logged and reported to the observer. Wrap it in sink.Async when
// the writer is not configured for async batching.
//
// Basic usage:
//
//	s, err := kafka.NewSink(kafka.Config{
//	    Brokers: []string{"localhost:9092"},
//	    Topic:   "request-records",
//	    Async:   true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer s.GracefulShutdown()
//
// With Fx, include kafka.FXModule and provide a kafka.Config.
package kafka
