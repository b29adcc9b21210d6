package recordstore

import (
	"context"
	"time"

	"github.com/aalemi-dev/sockettrace/record"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm/clause"
)

// traceOrder sorts the hops of one trace by start time, then insertion order.
var traceOrder = clause.OrderBy{Columns: []clause.OrderByColumn{
	{Column: clause.Column{Name: "started_at"}},
	{Column: clause.Column{Name: "id"}},
}}

// FindByTrace returns every stored record of traceID ordered by start time.
func (s *Store) FindByTrace(ctx context.Context, traceID trace.TraceID) ([]record.RequestRecord, error) {
	db := s.DB()
	if db == nil {
		return nil, ErrStoreClosed
	}

	start := time.Now()
	var rows []Row
	result := db.WithContext(ctx).Table(s.cfg.Table).
		Where("trace_id = ?", traceID.String()).
		Clauses(traceOrder).
		Find(&rows)
	err := s.TranslateError(result.Error)
	s.observeOperation("find", "", time.Since(start), err, result.RowsAffected)
	if err != nil {
		return nil, err
	}

	records := make([]record.RequestRecord, 0, len(rows))
	for _, row := range rows {
		r, err := row.Record()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// Prune deletes records that started before cutoff and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	db := s.DB()
	if db == nil {
		return 0, ErrStoreClosed
	}

	start := time.Now()
	result := db.WithContext(ctx).Table(s.cfg.Table).
		Where("started_at < ?", cutoff.UTC()).
		Delete(&Row{})
	err := s.TranslateError(result.Error)
	s.observeOperation("prune", "", time.Since(start), err, result.RowsAffected)
	return result.RowsAffected, err
}
