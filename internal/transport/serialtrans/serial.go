// Package serialtrans is the Serial Transport variant of spec.md §4.1:
// 8N1 framing, optional hardware flow control, and a CycleBaud method
// that switches the open port to another speed. It is grounded on github.com/daedaluz/goserial, which
// is the one serial-port library present in the retrieved pack.
package serialtrans

import (
	"errors"
	"time"

	goserial "github.com/daedaluz/goserial"
	"github.com/rs/zerolog"

	"github.com/brltty-go/brld/internal/transport"
)

// Transport is a serial-line transport.Transport.
type Transport struct {
	log      zerolog.Logger
	port     *goserial.Port
	flowCtrl bool
	bauds    []uint32
}

// New creates a Transport. flowControl requests RTS/CTS hardware flow
// control, as the original Baum serial driver does not but some
// devices in the wider pack (Papenmeier-family hardware) require.
// bauds is the candidate list: Open uses its first entry, and
// CycleBaud can switch the open port to another speed, though neither
// reference driver calls it. An empty list defaults to 19200.
func New(log zerolog.Logger, flowControl bool, bauds []uint32) *Transport {
	if len(bauds) == 0 {
		bauds = []uint32{19200}
	}
	return &Transport{log: log.With().Str("transport", "serial").Logger(), flowCtrl: flowControl, bauds: bauds}
}

// Open implements transport.Transport: connects and configures 8N1
// framing at the first configured baud rate; no other rate is tried.
// Actual device
// identification (whether the thing on the other end is the expected
// display) is the driver's job, performed over the resulting
// Transport by its probe logic (spec.md §4.2.3).
func (t *Transport) Open(endpoint string) error {
	opts := goserial.NewOptions()
	opts.SetReadTimeout(100 * time.Millisecond)

	port, err := goserial.Open(endpoint, opts)
	if err != nil {
		return errWrap(err)
	}
	t.port = port

	if err := t.configure(t.bauds[0]); err != nil {
		port.Close()
		t.port = nil
		return err
	}
	return nil
}

// CycleBaud reconfigures the already-open port to speed. No driver in
// this repository calls it.
func (t *Transport) CycleBaud(speed uint32) error {
	if t.port == nil {
		return errors.New("serialtrans: not open")
	}
	return t.configure(speed)
}

func (t *Transport) configure(speed uint32) error {
	attrs, err := t.port.GetAttr2()
	if err != nil {
		return errWrap(err)
	}

	attrs.ISpeed = speed
	attrs.OSpeed = speed
	attrs.Cflag = (attrs.Cflag &^ (goserial.CSIZE | goserial.PARENB | goserial.CSTOPB)) | goserial.CS8
	attrs.Cflag |= goserial.CLOCAL | goserial.CREAD
	attrs.Iflag &^= goserial.IXON | goserial.IXOFF
	if t.flowCtrl {
		attrs.Cflag |= goserial.CRTSCTS
	} else {
		attrs.Cflag &^= goserial.CRTSCTS
	}

	if err := t.port.SetAttr2(goserial.TCSANOW, attrs); err != nil {
		return errWrap(err)
	}
	t.log.Debug().Uint32("baud", speed).Msg("configured serial port")
	return nil
}

// Close implements transport.Transport.
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil && !errors.Is(err, goserial.ErrClosed) {
		return errWrap(err)
	}
	return nil
}

// AwaitInput implements transport.Transport.
func (t *Transport) AwaitInput(deadline time.Duration) (bool, error) {
	if t.port == nil {
		return false, transport.ErrFatalDisconnect
	}
	var probe [1]byte
	t.port.SetReadTimeout(deadline)
	n, err := t.port.ReadTimeout(probe[:], deadline)
	if err != nil {
		return false, nil // timeout: not readable, not an error condition
	}
	return n > 0, nil
}

// ReadBytes implements transport.Transport.
func (t *Transport) ReadBytes(buf []byte, initialTimeout, subsequentTimeout time.Duration, blockFirst bool) (int, error) {
	if t.port == nil {
		return 0, transport.ErrFatalDisconnect
	}

	total := 0
	timeout := initialTimeout
	if !blockFirst {
		timeout = 0
	}

	for total < len(buf) {
		n, err := t.port.ReadTimeout(buf[total:total+1], timeout)
		if err != nil || n == 0 {
			if total > 0 {
				return total, nil
			}
			return 0, transport.ErrWouldBlock
		}
		total += n
		timeout = subsequentTimeout
	}
	return total, nil
}

// WriteBytes implements transport.Transport.
func (t *Transport) WriteBytes(buf []byte) (int, error) {
	if t.port == nil {
		return 0, transport.ErrFatalDisconnect
	}
	n, err := t.port.Write(buf)
	if err != nil {
		return n, errWrap(err)
	}
	return n, nil
}

func errWrap(err error) error {
	if errors.Is(err, goserial.ErrClosed) {
		return transport.ErrFatalDisconnect
	}
	return transport.ErrFatalDisconnect
}

var _ transport.Transport = (*Transport)(nil)
