// Package protocolb implements "Protocol B" (spec.md §4.2.1): a
// byte-stuffed frame format, ESC (0x1B) TYPE payload..., with a lone
// ESC in the payload doubled to escape it. It is grounded directly on
// BrailleDrivers/Baum/braille.c's readBaumPacket/writeBaumPacket state
// machine.
package protocolb

import (
	"github.com/rs/zerolog"
)

// Escape is the frame-start/escape byte.
const Escape = 0X1B

// LengthFunc returns the total frame length (type byte included) for a
// recognised type byte, and false if the type is not recognised. Some
// types have a length that depends on external state (spec.md §4.2.1:
// the routing-keys type's length depends on a previously learned cell
// count); LengthFunc closes over whatever state it needs for that.
type LengthFunc func(typ byte) (length int, recognized bool)

// Decoder is the Idle/WantType/WantBody state machine of spec.md
// §4.2.1. It never allocates per byte (spec.md §9): Feed writes into a
// fixed internal buffer and returns a slice of it, valid only until
// the next Feed call.
type Decoder struct {
	log     zerolog.Logger
	lengths LengthFunc

	escape  bool
	started bool
	offset  int
	length  int
	buf     [256]byte
}

// New creates a Decoder. lengths supplies the per-type frame length.
func New(log zerolog.Logger, lengths LengthFunc) *Decoder {
	return &Decoder{log: log.With().Str("protocol", "B").Logger(), lengths: lengths}
}

// Feed processes one byte, returning a complete frame (type byte plus
// payload, ESCESC already collapsed) when one finishes on this call.
func (d *Decoder) Feed(b byte) (frame []byte, complete bool) {
	if b == Escape {
		d.escape = !d.escape
		if d.escape {
			return nil, false
		}
	} else if d.escape {
		d.escape = false

		if d.offset > 0 {
			d.log.Debug().Bytes("partial", append([]byte(nil), d.buf[:d.offset]...)).Msg("short packet")
			d.offset = 0
		} else {
			d.started = true
		}
	}

	if !d.started {
		d.log.Debug().Uint8("byte", b).Msg("discarded byte")
		return nil, false
	}

	if d.offset == 0 {
		length, ok := d.lengths(b)
		if !ok {
			d.log.Debug().Uint8("byte", b).Msg("unknown packet type")
			d.started = false
			return nil, false
		}
		d.length = length
	}

	d.buf[d.offset] = b
	d.offset++
	if d.offset == d.length {
		d.started = false
		result := d.buf[:d.offset]
		d.offset = 0
		return result, true
	}
	return nil, false
}

// Reset returns the decoder to Idle, discarding any in-progress frame.
func (d *Decoder) Reset() {
	d.escape = false
	d.started = false
	d.offset = 0
}

// Encode byte-stuffs frame (type byte + payload) behind a leading
// Escape, doubling any Escape byte found in frame.
func Encode(frame []byte) []byte {
	out := make([]byte, 0, 1+2*len(frame))
	out = append(out, Escape)
	for _, b := range frame {
		out = append(out, b)
		if b == Escape {
			out = append(out, Escape)
		}
	}
	return out
}
