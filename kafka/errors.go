package kafka

import (
	"errors"
	"strings"
)

// Standardized errors reported when a record cannot be published.
var (
	// ErrConnectionFailed is returned when connection to Kafka cannot be established
	ErrConnectionFailed = errors.New("connection failed")

	// ErrConnectionLost is returned when connection to Kafka is lost
	ErrConnectionLost = errors.New("connection lost")

	// ErrBrokerNotAvailable is returned when broker is not available
	ErrBrokerNotAvailable = errors.New("broker not available")

	// ErrReplicaNotAvailable is returned when replica is not available
	ErrReplicaNotAvailable = errors.New("replica not available")

	// ErrAuthenticationFailed is returned when authentication fails
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrAuthorizationFailed is returned when authorization fails
	ErrAuthorizationFailed = errors.New("authorization failed")

	// ErrInvalidCredentials is returned when credentials are invalid
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTopicNotFound is returned when topic doesn't exist
	ErrTopicNotFound = errors.New("topic not found")

	// ErrPartitionNotFound is returned when partition doesn't exist
	ErrPartitionNotFound = errors.New("partition not found")

	// ErrInvalidPartition is returned when partition is invalid
	ErrInvalidPartition = errors.New("invalid partition")

	// ErrMessageTooLarge is returned when message exceeds size limits
	ErrMessageTooLarge = errors.New("message too large")

	// ErrInvalidMessage is returned when message format is invalid
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidMessageSize is returned when message size is invalid
	ErrInvalidMessageSize = errors.New("invalid message size")

	// ErrLeaderNotAvailable is returned when leader is not available
	ErrLeaderNotAvailable = errors.New("leader not available")

	// ErrNotLeaderForPartition is returned when broker is not the leader for partition
	ErrNotLeaderForPartition = errors.New("not leader for partition")

	// ErrRequestTimedOut is returned when request times out
	ErrRequestTimedOut = errors.New("request timed out")

	// ErrNetworkError is returned for network-related errors
	ErrNetworkError = errors.New("network error")

	// ErrProducerFenced is returned when producer is fenced
	ErrProducerFenced = errors.New("producer fenced")

	// ErrInvalidProducerEpoch is returned when producer epoch is invalid
	ErrInvalidProducerEpoch = errors.New("invalid producer epoch")

	// ErrUnsupportedVersion is returned when version is not supported
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrUnsupportedForMessageFormat is returned when message format is not supported
	ErrUnsupportedForMessageFormat = errors.New("unsupported for message format")

	// ErrInvalidRequest is returned when request is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid config")

	// ErrOutOfOrderSequence is returned when sequence is out of order
	ErrOutOfOrderSequence = errors.New("out of order sequence")

	// ErrDuplicateSequence is returned when sequence is duplicated
	ErrDuplicateSequence = errors.New("duplicate sequence")

	// ErrWriterNotInitialized is returned when writer is not initialized
	ErrWriterNotInitialized = errors.New("writer not initialized")

	// ErrSinkClosed is returned when publishing after GracefulShutdown
	ErrSinkClosed = errors.New("kafka sink closed")

	// ErrContextCanceled is returned when context is canceled
	ErrContextCanceled = errors.New("context canceled")

	// ErrContextDeadlineExceeded is returned when context deadline is exceeded
	ErrContextDeadlineExceeded = errors.New("context deadline exceeded")

)

// TranslateError maps kafka-go errors onto the package sentinels. Errors
// that match no known pattern are returned unchanged.
func (s *Sink) TranslateError(err error) error {
	if err == nil {
		return nil
	}

	// Check error message for common patterns
	errMsg := strings.ToLower(err.Error())
	return translateByErrorMessage(errMsg, err)
}

// translateByErrorMessage translates errors based on error message patterns
func translateByErrorMessage(errMsg string, originalErr error) error {
	switch {
	// Connection related
	case strings.Contains(errMsg, "connection refused"):
		return ErrConnectionFailed
	case strings.Contains(errMsg, "connection reset"):
		return ErrConnectionLost
	case strings.Contains(errMsg, "connection closed"):
		return ErrConnectionLost
	case strings.Contains(errMsg, "broker not available"):
		return ErrBrokerNotAvailable
	case strings.Contains(errMsg, "replica not available"):
		return ErrReplicaNotAvailable

	// Authentication and authorization
	case strings.Contains(errMsg, "authentication failed"):
		return ErrAuthenticationFailed
	case strings.Contains(errMsg, "sasl authentication failed"):
		return ErrAuthenticationFailed
	case strings.Contains(errMsg, "authorization failed"):
		return ErrAuthorizationFailed
	case strings.Contains(errMsg, "invalid credentials"):
		return ErrInvalidCredentials

	// Topic and partition errors
	case strings.Contains(errMsg, "topic not found"):
		return ErrTopicNotFound
	case strings.Contains(errMsg, "unknown topic"):
		return ErrTopicNotFound
	case strings.Contains(errMsg, "partition not found"):
		return ErrPartitionNotFound
	case strings.Contains(errMsg, "unknown partition"):
		return ErrPartitionNotFound
	case strings.Contains(errMsg, "invalid partition"):
		return ErrInvalidPartition

	// Message errors
	case strings.Contains(errMsg, "message too large"):
		return ErrMessageTooLarge
	case strings.Contains(errMsg, "record too large"):
		return ErrMessageTooLarge
	case strings.Contains(errMsg, "invalid message size"):
		return ErrInvalidMessageSize
	case strings.Contains(errMsg, "invalid message"):
		return ErrInvalidMessage

	// Leader errors
	case strings.Contains(errMsg, "leader not available"):
		return ErrLeaderNotAvailable
	case strings.Contains(errMsg, "not leader for partition"):
		return ErrNotLeaderForPartition

	// Timeout errors
	case strings.Contains(errMsg, "request timed out"):
		return ErrRequestTimedOut
	case strings.Contains(errMsg, "timeout"):
		return ErrRequestTimedOut
	case strings.Contains(errMsg, "deadline exceeded"):
		return ErrContextDeadlineExceeded

	// Network errors
	case strings.Contains(errMsg, "network"):
		return ErrNetworkError
	case strings.Contains(errMsg, "dial"):
		return ErrNetworkError
	case strings.Contains(errMsg, "i/o timeout"):
		return ErrNetworkError

	// Producer errors
	case strings.Contains(errMsg, "producer fenced"):
		return ErrProducerFenced
	case strings.Contains(errMsg, "invalid producer epoch"):
		return ErrInvalidProducerEpoch

	// Version errors
	case strings.Contains(errMsg, "unsupported version"):
		return ErrUnsupportedVersion
	case strings.Contains(errMsg, "unsupported for message format"):
		return ErrUnsupportedForMessageFormat

	// Configuration errors
	case strings.Contains(errMsg, "invalid request"):
		return ErrInvalidRequest
	case strings.Contains(errMsg, "invalid config"):
		return ErrInvalidConfig

	// Sequence errors
	case strings.Contains(errMsg, "out of order sequence"):
		return ErrOutOfOrderSequence
	case strings.Contains(errMsg, "duplicate sequence"):
		return ErrDuplicateSequence

	// Context errors
	case strings.Contains(errMsg, "context canceled"):
		return ErrContextCanceled
	case strings.Contains(errMsg, "context cancelled"):
		return ErrContextCanceled

	default:
		// Return the original error if no pattern matches
		return originalErr
	}
}

// IsRetryableError returns true if the error is retryable
func (s *Sink) IsRetryableError(err error) bool {
	switch {
	case errors.Is(err, ErrConnectionFailed),
		errors.Is(err, ErrConnectionLost),
		errors.Is(err, ErrBrokerNotAvailable),
		errors.Is(err, ErrReplicaNotAvailable),
		errors.Is(err, ErrLeaderNotAvailable),
		errors.Is(err, ErrNotLeaderForPartition),
		errors.Is(err, ErrRequestTimedOut),
		errors.Is(err, ErrNetworkError):
		return true
	default:
		return false
	}
}

// IsPermanentError returns true if the error is permanent and should not be retried
func (s *Sink) IsPermanentError(err error) bool {
	switch {
	case errors.Is(err, ErrAuthenticationFailed),
		errors.Is(err, ErrAuthorizationFailed),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrTopicNotFound),
		errors.Is(err, ErrPartitionNotFound),
		errors.Is(err, ErrInvalidPartition),
		errors.Is(err, ErrInvalidMessage),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnsupportedVersion),
		errors.Is(err, ErrContextCanceled):
		return true
	default:
		return false
	}
}

// IsAuthenticationError returns true if the error is authentication-related
func (s *Sink) IsAuthenticationError(err error) bool {
	switch {
	case errors.Is(err, ErrAuthenticationFailed),
		errors.Is(err, ErrAuthorizationFailed),
		errors.Is(err, ErrInvalidCredentials):
		return true
	default:
		return false
	}
}
