package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aalemi-dev/sockettrace/record"
)

// uploadTimeout bounds a single object upload.
const uploadTimeout = 30 * time.Second

// Log queues r for the next object. It never blocks; when the queue is full or
// the archive is closed the record is dropped and counted.
func (a *Archive) Log(r record.RequestRecord) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.drop()
		return
	}
	select {
	case a.queue <- r:
	default:
		a.drop()
	}
}

// Dropped returns the number of records Log could not queue.
func (a *Archive) Dropped() uint64 {
	return a.dropped.Load()
}

func (a *Archive) drop() {
	n := a.dropped.Add(1)
	if n == 1 || n%1000 == 0 {
		a.logWarn(context.Background(), "Record archive queue full, dropping records", nil, map[string]interface{}{
			"dropped": n,
			"bucket":  a.cfg.Bucket,
		})
	}
	a.observeOperation("drop", "", 0, nil, 1)
}

// Flush uploads every record queued so far and returns the error of the last
// upload, if any.
func (a *Archive) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case a.flushes <- reply:
	case <-a.stopped:
		return ErrArchiveClosed
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

// Close stops accepting records and uploads what is queued.
func (a *Archive) Close(ctx context.Context) error {
	var err error
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()
		close(a.done)

		select {
		case <-a.stopped:
		case <-ctx.Done():
			err = ctx.Err()
		}
	})
	return err
}

func (a *Archive) collect() {
	defer close(a.stopped)

	ticker := time.NewTicker(a.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]record.RequestRecord, 0, a.cfg.BatchSize)
	var lastErr error
	upload := func() {
		if len(batch) == 0 {
			return
		}
		lastErr = a.upload(batch)
		batch = make([]record.RequestRecord, 0, a.cfg.BatchSize)
	}
	add := func(r record.RequestRecord) {
		batch = append(batch, r)
		if len(batch) >= a.cfg.BatchSize {
			upload()
		}
	}
	drain := func() {
		for {
			select {
			case r := <-a.queue:
				add(r)
			default:
				return
			}
		}
	}

	for {
		select {
		case r := <-a.queue:
			add(r)
		case <-ticker.C:
			upload()
		case reply := <-a.flushes:
			lastErr = nil
			drain()
			upload()
			reply <- lastErr
		case <-a.done:
			drain()
			upload()
			return
		}
	}
}

func (a *Archive) upload(batch []record.RequestRecord) error {
	body, err := EncodeBatch(batch)
	if err != nil {
		return err
	}
	key := a.objectKey(time.Now().UTC())

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	start := time.Now()
	err = a.put(ctx, key, body)
	a.observeOperation("upload", key, time.Since(start), err, int64(len(batch)))
	if err != nil {
		a.logError(ctx, "Failed to upload request record batch", err, map[string]interface{}{
			"bucket":  a.cfg.Bucket,
			"key":     key,
			"records": len(batch),
		})
	}
	return err
}

// objectKey names a batch <prefix>/yyyy/mm/dd/hh/<unix-nanos>-<seq>.jsonl, so
// keys sort by upload time within an hour.
func (a *Archive) objectKey(now time.Time) string {
	name := fmt.Sprintf("%d-%06d.jsonl", now.UnixNano(), a.seq.Add(1))
	return path.Join(a.cfg.Prefix, now.Format("2006/01/02/15"), name)
}

// EncodeBatch renders records as JSON lines.
func EncodeBatch(batch []record.RequestRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range batch {
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("failed to encode record: %w", err)
		}
	}
	return buf.Bytes(), nil
}
