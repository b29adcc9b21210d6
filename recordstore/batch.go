package recordstore

import (
	"context"
	"time"

	"github.com/aalemi-dev/sockettrace/record"
)

// writeTimeout bounds a single batch INSERT.
const writeTimeout = 10 * time.Second

// Log queues r for the next batch. It never blocks; when the queue is full or
// the store is closed the record is dropped and counted.
func (s *Store) Log(r record.RequestRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.drop()
		return
	}
	select {
	case s.queue <- r:
	default:
		s.drop()
	}
}

// Dropped returns the number of records Log could not queue.
func (s *Store) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Store) drop() {
	n := s.dropped.Add(1)
	if n == 1 || n%1000 == 0 {
		s.logWarn(context.Background(), "Record store queue full, dropping records", nil, map[string]interface{}{
			"dropped": n,
			"table":   s.cfg.Table,
		})
	}
	s.observeOperation("drop", "", 0, nil, 1)
}

// Flush writes every record queued so far and returns the error of the last
// batch write, if any.
func (s *Store) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case s.flushes <- reply:
	case <-s.stopped:
		return ErrStoreClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting records, writes what is queued and closes the
// database connection.
func (s *Store) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)

		select {
		case <-s.stopped:
		case <-ctx.Done():
			err = ctx.Err()
		}

		if db := s.client.Swap(nil); db != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				if cerr := sqlDB.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}
		}
	})
	return err
}

func (s *Store) collect() {
	defer close(s.stopped)

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]Row, 0, s.cfg.BatchSize)
	var lastErr error
	write := func() {
		if len(batch) == 0 {
			return
		}
		lastErr = s.writeBatch(batch)
		batch = make([]Row, 0, s.cfg.BatchSize)
	}
	add := func(r record.RequestRecord) {
		batch = append(batch, FromRecord(r))
		if len(batch) >= s.cfg.BatchSize {
			write()
		}
	}
	drain := func() {
		for {
			select {
			case r := <-s.queue:
				add(r)
			default:
				return
			}
		}
	}

	for {
		select {
		case r := <-s.queue:
			add(r)
		case <-ticker.C:
			write()
		case reply := <-s.flushes:
			lastErr = nil
			drain()
			write()
			reply <- lastErr
		case <-s.done:
			drain()
			write()
			return
		}
	}
}

func (s *Store) writeBatch(rows []Row) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	start := time.Now()
	err := s.insert(ctx, rows)
	s.observeOperation("insert", "", time.Since(start), err, int64(len(rows)))
	if err != nil {
		s.logError(ctx, "Failed to write request record batch", err, map[string]interface{}{
			"table": s.cfg.Table,
			"rows":  len(rows),
		})
	}
	return err
}

func (s *Store) insertRows(ctx context.Context, rows []Row) error {
	db := s.DB()
	if db == nil {
		return ErrStoreClosed
	}
	result := db.WithContext(ctx).Table(s.cfg.Table).CreateInBatches(rows, s.cfg.BatchSize)
	return s.TranslateError(result.Error)
}
