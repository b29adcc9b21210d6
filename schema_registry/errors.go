package schema_registry

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingURL is returned by NewClient when no URL is configured.
	ErrMissingURL = errors.New("schema registry URL is required")

	// ErrShortMessage is returned when a message is shorter than the wire header.
	ErrShortMessage = errors.New("message too short for schema registry header")

	// ErrInvalidMagicByte is returned when a message does not start with 0x0.
	ErrInvalidMagicByte = errors.New("invalid schema registry magic byte")
)

// StatusError is a non-200 answer from the registry.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("schema registry returned status %d: %s", e.Code, e.Body)
}
