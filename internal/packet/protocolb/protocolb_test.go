package protocolb

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLength(n int) LengthFunc {
	return func(typ byte) (int, bool) {
		if typ == 'X' {
			return n, true
		}
		return 0, false
	}
}

func feedAll(d *Decoder, data []byte) ([]byte, bool) {
	var frame []byte
	var complete bool
	for _, b := range data {
		f, c := d.Feed(b)
		if c {
			frame = append([]byte(nil), f...)
			complete = true
		}
	}
	return frame, complete
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	d := New(zerolog.Nop(), fixedLength(3))
	original := []byte{'X', 1, 2}
	frame := Encode(original)

	got, complete := feedAll(d, frame)
	require.True(t, complete)
	assert.Equal(t, original, got)
}

func TestEncodeDecodeRoundTripWithEscapedByte(t *testing.T) {
	d := New(zerolog.Nop(), fixedLength(3))
	original := []byte{'X', Escape, 1}
	frame := Encode(original)

	got, complete := feedAll(d, frame)
	require.True(t, complete)
	assert.Equal(t, original, got)
}

func TestUnknownTypeIsDiscarded(t *testing.T) {
	d := New(zerolog.Nop(), fixedLength(3))
	frame := []byte{Escape, 'Y', 1, 2}

	_, complete := feedAll(d, frame)
	assert.False(t, complete)
}

func TestBytesBeforeEscapeAreDiscarded(t *testing.T) {
	d := New(zerolog.Nop(), fixedLength(3))
	data := append([]byte{0XAA, 0XBB}, Encode([]byte{'X', 1, 2})...)

	got, complete := feedAll(d, data)
	require.True(t, complete)
	assert.Equal(t, []byte{'X', 1, 2}, got)
}

func TestResetDiscardsInProgressFrame(t *testing.T) {
	d := New(zerolog.Nop(), fixedLength(3))
	frame := Encode([]byte{'X', 1, 2})

	// Feed everything but the last byte, then reset.
	for _, b := range frame[:len(frame)-1] {
		d.Feed(b)
	}
	d.Reset()

	got, complete := feedAll(d, frame)
	require.True(t, complete)
	assert.Equal(t, []byte{'X', 1, 2}, got)
}
