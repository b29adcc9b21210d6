package endpoint

import "errors"

var (
	// ErrNotInet is returned when a descriptor is not an IPv4/IPv6 socket.
	ErrNotInet = errors.New("not an inet socket")

	// ErrInvalidServiceEntry is returned for malformed side-table entries.
	ErrInvalidServiceEntry = errors.New("invalid service entry")
)
