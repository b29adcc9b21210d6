package minio

import (
	"errors"
	"net/http"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrMissingEndpoint is returned by NewArchive without an endpoint.
	ErrMissingEndpoint = errors.New("minio endpoint cannot be empty")

	// ErrArchiveClosed is returned by Flush after Close.
	ErrArchiveClosed = errors.New("record archive is closed")

	// ErrBucketNotFound is returned when the bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrAccessDenied is returned when the credentials may not write the bucket.
	ErrAccessDenied = errors.New("access denied")
)

// TranslateError maps S3 error responses onto the package errors. Other errors
// are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchBucket":
		return errors.Join(ErrBucketNotFound, err)
	case resp.Code == "AccessDenied" || resp.StatusCode == http.StatusForbidden:
		return errors.Join(ErrAccessDenied, err)
	}
	return err
}
