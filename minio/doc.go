// Package minio archives request records in an S3-compatible object store.
//
// Archive implements record.Sink. Records are queued without blocking, grouped
// into batches of Config.BatchSize (or whatever arrived within
// Config.FlushInterval) and uploaded as one JSON-lines object per batch:
//
//	records/2026/10/17/14/1792245600000000000-000042.jsonl
//
// The key layout lets lifecycle rules expire old hours and lets query engines
// partition by date. Close uploads what is still queued.
package minio
