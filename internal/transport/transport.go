// Package transport defines the transport-agnostic I/O contract
// braille drivers consume (spec.md §4.1), and the error taxonomy every
// variant collapses its failures into (spec.md §7).
package transport

import (
	"errors"
	"time"
)

// Errors every Transport variant reports through, collapsing whatever
// the underlying medium reports into the three outcomes the codec and
// driver actually need to distinguish (spec.md §4.1/§7).
var (
	// ErrWouldBlock means the call could not complete without
	// blocking past the requested deadline; the caller may retry.
	ErrWouldBlock = errors.New("transport: would block")

	// ErrTransientBusy means the device rejected the call temporarily;
	// the caller should retry on a later tick.
	ErrTransientBusy = errors.New("transport: transiently busy")

	// ErrFatalDisconnect means the medium is gone; the driver must
	// close and the dispatcher must surface RESTARTBRL.
	ErrFatalDisconnect = errors.New("transport: fatal disconnect")
)

// Transport is the contract of spec.md §4.1: open/close a named
// endpoint, await input, and read/write byte streams honouring both an
// initial and a subsequent timeout.
type Transport interface {
	// Open connects to endpoint. Other medium-specific settings (baud
	// list, USB channel definitions, RFCOMM channel) are the ones given
	// to the variant's constructor.
	Open(endpoint string) error

	// Close releases the endpoint. Close on an already-closed
	// Transport is a no-op.
	Close() error

	// AwaitInput blocks up to deadline for readable data, returning
	// true if data became available before the deadline.
	AwaitInput(deadline time.Duration) (readable bool, err error)

	// ReadBytes reads up to len(buf) bytes. initialTimeout bounds the
	// wait for the first byte; subsequentTimeout bounds the wait
	// between bytes once the frame has started. blockFirst controls
	// whether the call should wait at all for that first byte (a
	// driver polling for "is anything there right now" passes false).
	// Returning fewer bytes than len(buf) with a nil error is a valid
	// "ran out of time, here's what arrived" result; ErrWouldBlock is
	// returned only when zero bytes arrived at all.
	ReadBytes(buf []byte, initialTimeout, subsequentTimeout time.Duration, blockFirst bool) (n int, err error)

	// WriteBytes writes the entirety of buf or returns an error.
	WriteBytes(buf []byte) (n int, err error)
}

// Params carries the fields common to every Transport.Open call that
// aren't inherent to one medium (e.g. serial needs a baud rate, USB
// needs vendor/product IDs — those live on the specific variant's
// constructor instead). ChunkTimeout is the default "how long to wait
// for the next byte of an in-progress frame" used when a caller doesn't
// have a more specific value from its protocol.
type Params struct {
	ChunkTimeout time.Duration
}

// DefaultParams matches BRLTTY's historical 100ms inter-byte timeout
// (spec.md §4.1, "reads are reaping ... with a 100-ms chunk timeout").
func DefaultParams() Params {
	return Params{ChunkTimeout: 100 * time.Millisecond}
}
