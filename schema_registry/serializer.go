package schema_registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aalemi-dev/sockettrace/endpoint"
	"github.com/aalemi-dev/sockettrace/record"
	"go.opentelemetry.io/otel/trace"
)

// Schema types understood by the registry.
const (
	SchemaTypeAvro     = "AVRO"
	SchemaTypeJSON     = "JSON"
	SchemaTypeProtobuf = "PROTOBUF"
)

// RecordSchema is the JSON Schema of the request record message value.
const RecordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "RequestRecord",
  "type": "object",
  "properties": {
    "role": {"type": "string", "enum": ["client", "server"]},
    "service": {"type": "string"},
    "endpoint": {
      "type": "object",
      "properties": {
        "local_ip": {"type": "string"},
        "local_port": {"type": "integer"},
        "peer_ip": {"type": "string"},
        "peer_port": {"type": "integer"},
        "client_host": {"type": "string"},
        "server_host": {"type": "string"}
      }
    },
    "trace_id": {"type": "string", "pattern": "^[0-9a-f]{32}$"},
    "span_id": {"type": "string", "pattern": "^[0-9a-f]{16}$"},
    "parent_span_id": {"type": "string", "pattern": "^[0-9a-f]{16}$"},
    "started_at": {"type": "string", "format": "date-time"},
    "duration_ns": {"type": "integer", "minimum": 0},
    "transaction_count": {"type": "integer", "minimum": 1}
  },
  "required": ["role", "endpoint", "trace_id", "span_id", "parent_span_id", "started_at", "duration_ns", "transaction_count"]
}`

// RecordSerializer encodes request records as JSON framed with the Confluent
// schema ID header. It satisfies kafka.Serializer.
type RecordSerializer struct {
	registry Registry
	subject  string
}

// NewRecordSerializer registers RecordSchema lazily under subject on the first
// Serialize call. Later calls hit the client's cache.
func NewRecordSerializer(registry Registry, subject string) (*RecordSerializer, error) {
	if registry == nil {
		return nil, fmt.Errorf("schema registry is required")
	}
	if subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	return &RecordSerializer{registry: registry, subject: subject}, nil
}

// Subject returns the subject the schema is registered under.
func (s *RecordSerializer) Subject() string {
	return s.subject
}

// Serialize implements kafka.Serializer.
func (s *RecordSerializer) Serialize(r record.RequestRecord) ([]byte, error) {
	id, err := s.registry.RegisterSchema(context.Background(), s.subject, RecordSchema, SchemaTypeJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to register record schema: %w", err)
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return append(EncodeSchemaID(id), payload...), nil
}

// recordValue mirrors record.RequestRecord with the IDs as hex strings.
type recordValue struct {
	Role             string            `json:"role"`
	Service          string            `json:"service"`
	Endpoint         endpoint.Endpoint `json:"endpoint"`
	TraceID          string            `json:"trace_id"`
	SpanID           string            `json:"span_id"`
	ParentSpanID     string            `json:"parent_span_id"`
	StartedAt        time.Time         `json:"started_at"`
	Duration         time.Duration     `json:"duration_ns"`
	TransactionCount uint64            `json:"transaction_count"`
}

// DecodeRecord strips the header of a framed message and decodes the record.
// The schema ID is checked against the registry.
func DecodeRecord(ctx context.Context, registry Registry, data []byte) (int, record.RequestRecord, error) {
	var r record.RequestRecord
	id, payload, err := DecodeSchemaID(data)
	if err != nil {
		return 0, r, err
	}
	if _, err := registry.GetSchemaByID(ctx, id); err != nil {
		return id, r, fmt.Errorf("failed to retrieve schema %d: %w", id, err)
	}

	var v recordValue
	if err := json.Unmarshal(payload, &v); err != nil {
		return id, r, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	r = record.RequestRecord{
		Role:             v.Role,
		Service:          v.Service,
		Endpoint:         v.Endpoint,
		StartedAt:        v.StartedAt,
		Duration:         v.Duration,
		TransactionCount: v.TransactionCount,
	}
	if r.TraceID, err = trace.TraceIDFromHex(v.TraceID); err != nil {
		return id, r, fmt.Errorf("bad trace_id: %w", err)
	}
	if r.SpanID, err = trace.SpanIDFromHex(v.SpanID); err != nil {
		return id, r, fmt.Errorf("bad span_id: %w", err)
	}
	if r.ParentSpanID, err = trace.SpanIDFromHex(v.ParentSpanID); err != nil {
		return id, r, fmt.Errorf("bad parent_span_id: %w", err)
	}
	return id, r, nil
}
