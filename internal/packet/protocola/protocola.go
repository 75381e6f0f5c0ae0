// Package protocola implements "Protocol A" (spec.md §4.2.2):
// length-prefixed framing, STX, 'S'|'I'|'K', addr_hi, addr_lo, len_hi,
// len_lo, payload..., ETX, where len counts the whole frame. An error
// frame carries a single-byte type in place of the address/length
// tuple. Grounded on Drivers/Braille/Papenmeier/braille.c's
// readCommand1.
package protocola

import (
	"github.com/rs/zerolog"
)

const (
	STX = 0X02
	ETX = 0X03

	// TypeSend is the host-to-device command frame type.
	TypeSend = 'S'
	// TypeIdentify is the device identity-response frame type.
	TypeIdentify = 'I'
	// TypeReceive is the device-to-host key/event frame type.
	TypeReceive = 'K'
)

// Frame is one decoded Protocol A packet.
type Frame struct {
	Type    byte
	Address uint16 // valid for TypeSend/TypeReceive only
	Payload []byte // excludes the trailing ETX
	IsError bool
	ErrCode byte // valid when IsError
}

// ErrorMessage returns the human-readable meaning of a device error
// code, as logged by the original driver on receipt of an error frame.
func ErrorMessage(code byte) string {
	switch code {
	case 0X03:
		return "missing identification byte"
	case 0X04:
		return "data too long"
	case 0X05:
		return "data starts beyond end of structure"
	case 0X06:
		return "data extends beyond end of structure"
	case 0X07:
		return "data framing error"
	default:
		return "unknown error"
	}
}

// IdentityLength is the Papenmeier-family fixed total frame length of
// an identity response (STX, 'I', 8 payload+ETX bytes), per
// braille.c's readCommand1 ("const int length = 10").
const IdentityLength = 10

// ReceiveLength is the fixed total frame length of a TypeReceive
// ('K') key-event frame: STX, 'K', addr_hi, addr_lo, len_hi, len_lo, a
// 3-byte key-state payload, ETX. braille.c's readCommand1 hardcodes
// this as the same "const int length = 10" used for identity frames;
// unlike TypeSend, a 'K' frame's encoded length field is never trusted
// on its own.
const ReceiveLength = 10

type state int

const (
	stateIdle state = iota
	stateType
	stateIdentityBody
	stateHeader // collecting addr_hi, addr_lo, len_hi, len_lo (offsets 2..5)
	stateBody
	stateErrorBody
)

// Decoder is a pure byte-at-a-time state machine; like protocolb's, it
// never allocates per byte.
type Decoder struct {
	log zerolog.Logger

	state   state
	buf     [256]byte
	offset  int
	total   int // total frame length, header included; -1 until known
	typ     byte
	isError bool
}

// New creates a Decoder.
func New(log zerolog.Logger) *Decoder {
	return &Decoder{log: log.With().Str("protocol", "A").Logger()}
}

// Feed processes one byte, returning a decoded Frame when one
// completes on this call. A corrupt frame is discarded and reported
// through resync=true so the caller can optionally write a reset
// sequence to the device, per spec.md §4.2.2.
func (d *Decoder) Feed(b byte) (frame *Frame, resync bool) {
	switch d.state {
	case stateIdle:
		if b != STX {
			d.log.Debug().Uint8("byte", b).Msg("ignored byte")
			return nil, false
		}
		d.offset = 0
		d.buf[d.offset] = b
		d.offset++
		d.state = stateType
		return nil, false

	case stateType:
		d.typ = b
		d.buf[d.offset] = b
		d.offset++
		switch b {
		case TypeIdentify:
			d.total = IdentityLength
			d.state = stateIdentityBody
		case TypeSend, TypeReceive:
			d.total = -1
			d.state = stateHeader
		default:
			d.isError = true
			d.state = stateErrorBody
		}
		return nil, false

	case stateIdentityBody:
		d.buf[d.offset] = b
		d.offset++
		if d.offset == d.total {
			return d.finish()
		}
		return nil, false

	case stateHeader:
		// offsets 2,3 are addr_hi/addr_lo; 4,5 are len_hi/len_lo.
		d.buf[d.offset] = b
		d.offset++
		if d.offset < 6 {
			return nil, false
		}
		d.total = int(d.buf[4])<<8 | int(d.buf[5])
		if d.typ == TypeReceive && d.total != ReceiveLength {
			d.log.Debug().Int("len", d.total).Msg("receive frame length was not the fixed 10 bytes")
			d.reset()
			return nil, true
		}
		if d.total < 7 || d.total > len(d.buf) {
			d.log.Debug().Int("len", d.total).Msg("invalid frame length")
			d.reset()
			return nil, true
		}
		d.state = stateBody
		return nil, false

	case stateBody:
		d.buf[d.offset] = b
		d.offset++
		if d.offset == d.total {
			return d.finish()
		}
		return nil, false

	case stateErrorBody:
		d.buf[d.offset] = b
		d.offset++
		if d.offset == 3 {
			return d.finish()
		}
		return nil, false
	}
	return nil, false
}

func (d *Decoder) finish() (*Frame, bool) {
	n := d.offset
	if d.buf[n-1] != ETX {
		d.log.Debug().Bytes("frame", append([]byte(nil), d.buf[:n]...)).Msg("missing ETX")
		d.reset()
		return nil, true
	}

	f := &Frame{Type: d.typ}
	switch {
	case d.isError:
		f.IsError = true
		f.ErrCode = d.buf[1]
	case d.typ == TypeIdentify:
		f.Payload = append([]byte(nil), d.buf[2:n-1]...)
	default:
		f.Address = uint16(d.buf[2])<<8 | uint16(d.buf[3])
		f.Payload = append([]byte(nil), d.buf[6:n-1]...)
	}
	d.reset()
	return f, false
}

func (d *Decoder) reset() {
	d.state = stateIdle
	d.offset = 0
	d.total = 0
	d.isError = false
}

// Reset returns the decoder to Idle, discarding any in-progress frame.
func (d *Decoder) Reset() { d.reset() }

// Encode builds a 'S'-typed command frame addressed at addr with the
// given payload.
func Encode(addr uint16, payload []byte) []byte {
	total := 6 + len(payload) + 1
	out := make([]byte, 0, total)
	out = append(out, STX, TypeSend, byte(addr>>8), byte(addr))
	out = append(out, byte(total>>8), byte(total))
	out = append(out, payload...)
	out = append(out, ETX)
	return out
}
