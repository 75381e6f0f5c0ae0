// Package usbtrans is the USB Transport variant of spec.md §4.1: an
// endpoint pair on a device matched by vendor/product/config/interface,
// with reads served from a continuously-primed input endpoint (spec.md
// §4.1). No chunk timeout is set on the endpoint: the reading goroutine
// waits in Read until data or an error arrives. Grounded on
// github.com/google/gousb,
// the USB library used by guiperry-HASHER's own device driver.
//
// gousb's bulk IN transfers must be kept continuously posted to the
// kernel or data is lost between reads; this is the one place in the
// whole subsystem that runs a background goroutine (see SPEC_FULL.md
// §8). It only ever feeds a buffered channel the Transport's own
// ReadBytes drains — nothing above this package observes concurrency.
package usbtrans

import (
	"time"

	"github.com/google/gousb"

	"github.com/brltty-go/brld/internal/transport"
)

// ChannelDefinition identifies one USB device/endpoint combination a
// driver is willing to talk to (spec.md §4.1, "endpoint-pair on a
// device matched by vendor/product/config/interface").
type ChannelDefinition struct {
	Vendor, Product gousb.ID
	Config          int
	Interface       int
	AltSetting      int
	InputEndpoint   int
	OutputEndpoint  int
}

type chunk struct {
	data []byte
	err  error
}

// Transport is a USB bulk transport.Transport.
type Transport struct {
	defs []ChannelDefinition

	ctx     *gousb.Context
	dev     *gousb.Device
	cfg     *gousb.Config
	intf    *gousb.Interface
	in      *gousb.InEndpoint
	out     *gousb.OutEndpoint
	chunks  chan chunk
	cancel  func()
	pending []byte
}

// New creates an unopened Transport that will claim the first of defs
// whose vendor/product matches a present device.
func New(defs []ChannelDefinition) *Transport {
	return &Transport{defs: defs}
}

// Open implements transport.Transport. endpoint is unused: USB devices
// here are addressed by the vendor/product/interface definitions
// given to New, not by a path string (spec.md §4.1).
func (t *Transport) Open(endpoint string) error {
	ctx := gousb.NewContext()

	var lastErr error
	for _, def := range t.defs {
		dev, err := ctx.OpenDeviceWithVIDPID(def.Vendor, def.Product)
		if err != nil || dev == nil {
			lastErr = err
			continue
		}

		cfg, err := dev.Config(def.Config)
		if err != nil {
			dev.Close()
			lastErr = err
			continue
		}

		intf, err := cfg.Interface(def.Interface, def.AltSetting)
		if err != nil {
			cfg.Close()
			dev.Close()
			lastErr = err
			continue
		}

		in, err := intf.InEndpoint(def.InputEndpoint)
		if err != nil {
			intf.Close()
			cfg.Close()
			dev.Close()
			lastErr = err
			continue
		}

		out, err := intf.OutEndpoint(def.OutputEndpoint)
		if err != nil {
			intf.Close()
			cfg.Close()
			dev.Close()
			lastErr = err
			continue
		}

		t.ctx, t.dev, t.cfg, t.intf, t.in, t.out = ctx, dev, cfg, intf, in, out
		t.chunks = make(chan chunk, 64)
		t.beginInput()
		return nil
	}

	ctx.Close()
	if lastErr == nil {
		lastErr = transport.ErrFatalDisconnect
	}
	return lastErr
}

// beginInput starts the continuous-priming goroutine (spec.md §4.1,
// "reads are reaping of a pre-primed input endpoint"). No read timeout
// is configured on the endpoint, so each Read blocks until data or an
// error arrives; the goroutine is a tight reap loop with no deadline of
// its own.
func (t *Transport) beginInput() {
	done := make(chan struct{})
	t.cancel = func() { close(done) }
	go func() {
		buf := make([]byte, 64)
		for {
			select {
			case <-done:
				return
			default:
			}
			n, err := t.in.Read(buf)
			if err != nil {
				select {
				case t.chunks <- chunk{err: err}:
				case <-done:
				}
				return
			}
			if n == 0 {
				continue
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case t.chunks <- chunk{data: data}:
			case <-done:
				return
			}
		}
	}()
}

// Close implements transport.Transport.
func (t *Transport) Close() error {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.intf != nil {
		t.intf.Close()
		t.intf = nil
	}
	if t.cfg != nil {
		t.cfg.Close()
		t.cfg = nil
	}
	if t.dev != nil {
		t.dev.Close()
		t.dev = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
	return nil
}

// AwaitInput implements transport.Transport.
func (t *Transport) AwaitInput(deadline time.Duration) (bool, error) {
	if len(t.pending) > 0 {
		return true, nil
	}
	select {
	case c := <-t.chunks:
		if c.err != nil {
			return false, transport.ErrFatalDisconnect
		}
		t.pending = append(t.pending, c.data...)
		return true, nil
	case <-time.After(deadline):
		return false, nil
	}
}

// ReadBytes implements transport.Transport.
func (t *Transport) ReadBytes(buf []byte, initialTimeout, subsequentTimeout time.Duration, blockFirst bool) (int, error) {
	deadline := subsequentTimeout
	if !blockFirst {
		deadline = 0
	} else if len(t.pending) == 0 {
		deadline = initialTimeout
	}

	n := 0
	for n < len(buf) {
		if len(t.pending) > 0 {
			c := copy(buf[n:], t.pending)
			t.pending = t.pending[c:]
			n += c
			deadline = subsequentTimeout
			continue
		}
		select {
		case c := <-t.chunks:
			if c.err != nil {
				if n > 0 {
					return n, nil
				}
				return 0, transport.ErrFatalDisconnect
			}
			t.pending = c.data
		case <-time.After(deadline):
			if n > 0 {
				return n, nil
			}
			return 0, transport.ErrWouldBlock
		}
	}
	return n, nil
}

// WriteBytes implements transport.Transport.
func (t *Transport) WriteBytes(buf []byte) (int, error) {
	n, err := t.out.Write(buf)
	if err != nil {
		return n, transport.ErrFatalDisconnect
	}
	return n, nil
}

var _ transport.Transport = (*Transport)(nil)
