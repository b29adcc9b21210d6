// Package propagation carries a trace context across a TCP connection between two
// instrumented peers.
//
// The context travels as a fixed 32-byte block written in front of the first
// request bytes of every client transaction:
//
//	offset  size  field
//	0       16    trace id
//	16      8     span id
//	24      8     parent span id
//
// There is no length prefix and no version byte. Both ends must run the same
// build; the block is only ever sent to peers listed in the service side-table.
//
// The receiving side reads exactly the missing part of the block directly from
// the descriptor, never more, so no application byte is consumed on its behalf.
// A partially received block survives "would block" results and is resumed on
// the next read.
package propagation
