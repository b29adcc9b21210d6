package recordstore

import (
	"fmt"
	"time"

	"github.com/aalemi-dev/sockettrace/endpoint"
	"github.com/aalemi-dev/sockettrace/record"
	"go.opentelemetry.io/otel/trace"
)

// Row is the table layout of one request record. IDs are stored as lowercase
// hex so they can be joined against other tracing backends.
type Row struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement"`
	TraceID          string    `gorm:"type:char(32);not null;index:idx_request_records_trace"`
	SpanID           string    `gorm:"type:char(16);not null"`
	ParentSpanID     string    `gorm:"type:char(16);not null"`
	Role             string    `gorm:"type:varchar(8);not null"`
	Service          string    `gorm:"type:varchar(255)"`
	LocalIP          string    `gorm:"type:varchar(45)"`
	LocalPort        int       `gorm:"not null;default:0"`
	PeerIP           string    `gorm:"type:varchar(45)"`
	PeerPort         int       `gorm:"not null;default:0"`
	ClientHost       string    `gorm:"type:varchar(255)"`
	ServerHost       string    `gorm:"type:varchar(255)"`
	StartedAt        time.Time `gorm:"not null;index:idx_request_records_started"`
	DurationNs       int64     `gorm:"not null"`
	TransactionCount uint64    `gorm:"not null"`
}

// FromRecord flattens r into a Row.
func FromRecord(r record.RequestRecord) Row {
	return Row{
		TraceID:          r.TraceID.String(),
		SpanID:           r.SpanID.String(),
		ParentSpanID:     r.ParentSpanID.String(),
		Role:             r.Role,
		Service:          r.Service,
		LocalIP:          r.Endpoint.LocalIP,
		LocalPort:        r.Endpoint.LocalPort,
		PeerIP:           r.Endpoint.PeerIP,
		PeerPort:         r.Endpoint.PeerPort,
		ClientHost:       r.Endpoint.ClientHost,
		ServerHost:       r.Endpoint.ServerHost,
		StartedAt:        r.StartedAt.UTC(),
		DurationNs:       r.Duration.Nanoseconds(),
		TransactionCount: r.TransactionCount,
	}
}

// Record rebuilds the request record stored in the row.
func (row Row) Record() (record.RequestRecord, error) {
	traceID, err := trace.TraceIDFromHex(row.TraceID)
	if err != nil {
		return record.RequestRecord{}, fmt.Errorf("row %d trace_id: %w", row.ID, err)
	}
	spanID, err := trace.SpanIDFromHex(row.SpanID)
	if err != nil {
		return record.RequestRecord{}, fmt.Errorf("row %d span_id: %w", row.ID, err)
	}
	parentID, err := trace.SpanIDFromHex(row.ParentSpanID)
	if err != nil {
		return record.RequestRecord{}, fmt.Errorf("row %d parent_span_id: %w", row.ID, err)
	}
	return record.RequestRecord{
		Role:    row.Role,
		Service: row.Service,
		Endpoint: endpoint.Endpoint{
			LocalIP:    row.LocalIP,
			LocalPort:  row.LocalPort,
			PeerIP:     row.PeerIP,
			PeerPort:   row.PeerPort,
			ClientHost: row.ClientHost,
			ServerHost: row.ServerHost,
		},
		TraceID:          traceID,
		SpanID:           spanID,
		ParentSpanID:     parentID,
		StartedAt:        row.StartedAt,
		Duration:         time.Duration(row.DurationNs),
		TransactionCount: row.TransactionCount,
	}, nil
}
