package socket

import "errors"

var (
	// ErrTransactionNotStarted is returned when reading the timing of a
	// transaction that was never begun.
	ErrTransactionNotStarted = errors.New("transaction not started")

	// ErrTransactionNotEnded is returned when asking for the duration of a
	// transaction that is still open.
	ErrTransactionNotEnded = errors.New("transaction not ended")

	// ErrModeAlreadySet is returned when the I/O mode of a record is set twice.
	ErrModeAlreadySet = errors.New("socket mode already set")

	// ErrUnknownServerKind is returned when parsing an unknown server kind.
	ErrUnknownServerKind = errors.New("unknown server kind")
)
