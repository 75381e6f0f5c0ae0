// Package packet holds the result types and errors shared by both
// reference protocol codecs (spec.md §4.2): byte-stuffed framing
// ("Protocol B", package protocolb) and length-prefixed framing
// ("Protocol A", package protocola).
package packet

import "errors"

// ErrProtocol names a framing violation (spec.md §7, ProtocolError).
// Neither decoder returns it: protocola reports a discarded frame
// through Feed's resync result, and protocolb drops bad bytes with only
// a debug log line.
var ErrProtocol = errors.New("packet: protocol error")

// ErrShort names a frame in progress abandoned because a new frame
// start was seen before it completed (spec.md §4.2.1, "Short Packet").
// Neither decoder returns it; protocolb logs the short packet at debug
// level and starts the new frame.
var ErrShort = errors.New("packet: short packet")

// Reader is satisfied by anything a decoder can pull raw bytes from
// one at a time without blocking indefinitely — transport.Transport
// already has this shape via ReadBytes, but decoders are tested
// against an in-memory byte feed too, so the narrow interface lives
// here.
type Reader interface {
	ReadByte() (byte, error)
}
