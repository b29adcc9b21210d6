package propagation

import "errors"

var (
	// ErrShortBlock is returned when decoding fewer or more than BlockSize bytes.
	ErrShortBlock = errors.New("context block has wrong size")

	// ErrInvalidBlock is returned when a block carries no span ID.
	ErrInvalidBlock = errors.New("context block carries no span")

	// ErrSendFailed is returned when the full block could not be written.
	ErrSendFailed = errors.New("context block not fully sent")
)
