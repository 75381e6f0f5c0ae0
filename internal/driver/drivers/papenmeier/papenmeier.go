// Package papenmeier is the Protocol A reference driver (spec.md §8
// Scenario 3). It ports the protocol-negotiation and key-decoding
// shape of Drivers/Braille/Papenmeier/braille.c's "protocol 1" path:
// a deliberately malformed probe packet, a 10-byte identity reply
// naming a model, and receive frames whose 16-bit key code is decoded
// into routing/front key events by range.
package papenmeier

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/brltty-go/brld/internal/braille"
	"github.com/brltty-go/brld/internal/driver"
	"github.com/brltty-go/brld/internal/packet/protocola"
	"github.com/brltty-go/brld/internal/transport"
)

// model describes one terminal this driver recognises, grounded on
// braille.c's modelTable (identifier, name, and cell geometry);
// the retrieved source excerpt did not include the full model table,
// so only a representative subset is carried here — see DESIGN.md.
type model struct {
	id            byte
	name          string
	textColumns   int
	statusColumns int
	frontKeys     int
}

var models = []model{
	{id: 0X02, name: "Papenmeier BRAILLEX 2D Screen Soft", textColumns: 80, statusColumns: 22, frontKeys: 13},
	{id: 0X06, name: "Papenmeier BRAILLEX Trio", textColumns: 40, statusColumns: 4, frontKeys: 13},
	{id: 0X0A, name: "Papenmeier BRAILLEX Live 40", textColumns: 40, statusColumns: 0, frontKeys: 9},
}

func findModel(id byte) (model, bool) {
	for _, m := range models {
		if m.id == id {
			return m, true
		}
	}
	return model{}, false
}

// Driver is a driver.Driver for Papenmeier terminals speaking
// Protocol A.
type Driver struct {
	log    zerolog.Logger
	t      transport.Transport
	dec    *protocola.Decoder
	output braille.OutputTable

	model model

	text     []byte
	status   []byte
	external []byte

	routingFirst, routingLast uint16
	frontFirst, frontLast     uint16

	havePending bool
	pending     driver.Command
}

// New creates a Driver that talks over t.
func New(log zerolog.Logger, t transport.Transport) *Driver {
	d := &Driver{log: log.With().Str("driver", "papenmeier").Logger(), t: t}
	d.output = braille.NewOutputTable([8]byte{0X01, 0X02, 0X04, 0X08, 0X10, 0X20, 0X40, 0X80})
	d.dec = protocola.New(d.log)
	return d
}

// Construct implements driver.Driver. It sends the 7-byte "bad packet"
// STX 'S' 0 0 0 0 ETX used by identifyTerminal1 to provoke an identity
// response, confirming Protocol A is in use (spec.md §4.2.3).
func (d *Driver) Construct(endpoint string) (driver.Display, error) {
	if err := d.t.Open(endpoint); err != nil {
		return driver.Display{}, err
	}

	badPacket := []byte{protocola.STX, protocola.TypeSend, 0, 0, 0, 0, protocola.ETX}
	deadline := time.Now().Add(2 * time.Second)

	for time.Now().Before(deadline) {
		if _, err := d.t.WriteBytes(badPacket); err != nil {
			d.t.Close()
			return driver.Display{}, err
		}

		readable, err := d.t.AwaitInput(500 * time.Millisecond)
		if err != nil {
			d.t.Close()
			return driver.Display{}, err
		}
		if !readable {
			continue
		}

		var buf [1]byte
		n, err := d.t.ReadBytes(buf[:], 0, 0, false)
		if err != nil || n == 0 {
			continue
		}
		frame, resync := d.dec.Feed(buf[0])
		if resync {
			d.dec.Reset()
			continue
		}
		if frame == nil || frame.Type != protocola.TypeIdentify || len(frame.Payload) < 4 {
			continue
		}

		id := frame.Payload[0]
		m, ok := findModel(id)
		if !ok {
			d.log.Warn().Uint8("id", id).Msg("unknown Papenmeier identity")
			continue
		}

		d.model = m
		d.text = make([]byte, m.textColumns)
		d.status = make([]byte, m.statusColumns)
		d.external = make([]byte, m.textColumns+m.statusColumns)

		d.routingFirst = 0
		d.routingLast = uint16((m.textColumns - 1) * 3)
		d.frontFirst = d.routingLast + 3
		d.frontLast = d.frontFirst + uint16((m.frontKeys-1)*3)

		return driver.Display{
			Name:          m.name,
			TextColumns:   m.textColumns,
			TextRows:      1,
			StatusColumns: m.statusColumns,
			StatusRows:    boolToRows(m.statusColumns > 0),
		}, nil
	}

	d.t.Close()
	return driver.Display{}, transport.ErrFatalDisconnect
}

func boolToRows(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Destruct implements driver.Driver.
func (d *Driver) Destruct() error { return d.t.Close() }

const (
	xmtBrlWrite = 0X0200
	xmtBrlCell  = 0X0300
)

// WriteWindow implements driver.Driver.
func (d *Driver) WriteWindow(cells []byte) error {
	copy(d.text, cells)
	return d.writeRegion(len(d.status), cells)
}

// WriteStatus implements driver.Driver.
func (d *Driver) WriteStatus(cells []byte) error {
	copy(d.status, cells)
	return d.writeRegion(0, cells)
}

func (d *Driver) writeRegion(startOffset int, cells []byte) error {
	payload := make([]byte, len(cells))
	for i, c := range cells {
		payload[i] = d.output.Translate(braille.Dots(c))
	}
	addr := uint16(xmtBrlCell) + uint16(startOffset)
	frame := protocola.Encode(addr, payload)
	_, err := d.t.WriteBytes(frame)
	return err
}

// SetFirmness implements driver.Driver; the identify payload does not
// report firmness capability in this reference driver, so this is a
// no-op (spec.md §7, firmness end-to-end wiring with no hardware
// effect where the device doesn't support it).
func (d *Driver) SetFirmness(level int) error { return nil }

// ReadCommand implements driver.Driver.
func (d *Driver) ReadCommand(ctx driver.Context) (driver.Command, error) {
	if d.havePending {
		d.havePending = false
		return d.pending, nil
	}

	var frame *protocola.Frame
	for frame == nil {
		var buf [1]byte
		n, err := d.t.ReadBytes(buf[:], 0, 0, false)
		if err != nil {
			if err == transport.ErrWouldBlock {
				return 0, driver.ErrNoCommand
			}
			return 0, err
		}
		if n == 0 {
			return 0, driver.ErrNoCommand
		}

		var resync bool
		frame, resync = d.dec.Feed(buf[0])
		if resync {
			d.dec.Reset()
			return 0, driver.ErrNoCommand
		}
	}

	if frame.IsError {
		d.log.Warn().Uint8("code", frame.ErrCode).Str("meaning", protocola.ErrorMessage(frame.ErrCode)).Msg("device reported protocol error")
		return 0, driver.ErrNoCommand
	}
	if frame.Type != protocola.TypeReceive || len(frame.Payload) < 3 {
		return 0, driver.ErrNoCommand
	}

	pressed := frame.Payload[0] != 0
	cmd, ok := d.decodeKey(frame.Address, pressed)
	if !ok {
		return 0, driver.ErrNoCommand
	}
	return cmd, nil
}

func (d *Driver) decodeKey(code uint16, pressed bool) (driver.Command, bool) {
	if !pressed {
		return 0, false
	}

	switch {
	case code >= d.routingFirst && code <= d.routingLast:
		key := int((code - d.routingFirst) / 3)
		return driver.BlkRoute | driver.Command(key), true

	case code >= d.frontFirst && code <= d.frontLast:
		key := int((code - d.frontFirst) / 3)
		return frontKeyCommand(key), true

	default:
		d.log.Debug().Uint16("code", code).Msg("unexpected key code")
		return 0, false
	}
}

// frontKeyCommand maps a front-bar key index to a navigation command.
// The original driver resolves this through a per-model key table
// (ktb_keyboard.c); a fixed small mapping stands in here (see
// DESIGN.md).
func frontKeyCommand(index int) driver.Command {
	table := []driver.Command{
		driver.CmdLnUp, driver.CmdLnDn,
		driver.CmdFWinLt, driver.CmdFWinRt,
		driver.CmdTop, driver.CmdBot,
		driver.CmdHome, driver.CmdCsrTrk,
		driver.CmdPrefMenu,
	}
	if index < 0 || index >= len(table) {
		return driver.CmdNoop
	}
	return table[index]
}
