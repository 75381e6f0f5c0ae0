// Package baum is the Protocol B reference driver for the Baum Vario
// family (spec.md §8 Scenarios 1–2). It is a close port of
// BrailleDrivers/Baum/braille.c: identity probe over REQ_DeviceIdentity,
// Vario model/cell-count detection from the identity string, and the
// top-key/routing-key chord table that resolves to driver.Commands.
package baum

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/brltty-go/brld/internal/braille"
	"github.com/brltty-go/brld/internal/driver"
	"github.com/brltty-go/brld/internal/packet/protocolb"
	"github.com/brltty-go/brld/internal/transport"
)

// Baum request codes.
const (
	reqDisplayData    = 0X01
	reqDeviceIdentity = 0X84
)

// Baum response codes.
const (
	rspCellCount            = 0X01
	rspVersionNumber        = 0X05
	rspModeSetting           = 0X11
	rspCommunicationChannel = 0X16
	rspRoutingKeys          = 0X22
	rspTopKeys              = 0X24
	rspErrorCode            = 0X40
	rspDeviceIdentity       = 0X84
	rspSerialNumber         = 0X8A
	rspBluetoothName        = 0X8C
)

const deviceIdentityLength = 16

// Top-key bit positions (BAUM_KEY_*).
const (
	keyTL1 = 0X01
	keyTL2 = 0X02
	keyTL3 = 0X04
	keyTR1 = 0X08
	keyTR2 = 0X10
	keyTR3 = 0X20
)

const maximumRoutingBytes = (85 + 7) / 8

// Driver is a driver.Driver for Baum Vario displays. It is
// transport-agnostic: Construct opens whichever transport.Transport it
// was built with (spec.md §4.1/§4.3: transport and driver are layered,
// not bundled).
type Driver struct {
	log       zerolog.Logger
	t         transport.Transport
	dec       *protocolb.Decoder
	cellCount int
	output    braille.OutputTable
	internal  []byte
	external  []byte
	updated   bool

	pressedTopKeys uint8
	pressedRouting []bool
	activeTopKeys  uint8
	activeRouting  []bool
	pending        driver.Command
	havePending    bool
}

// New creates a Driver that talks over t.
func New(log zerolog.Logger, t transport.Transport) *Driver {
	d := &Driver{log: log.With().Str("driver", "baum").Logger(), t: t}
	d.output = braille.NewOutputTable([8]byte{0X01, 0X02, 0X04, 0X08, 0X10, 0X20, 0X40, 0X80})
	d.dec = protocolb.New(d.log, d.packetLength)
	d.havePending = false
	return d
}

func (d *Driver) packetLength(typ byte) (int, bool) {
	switch typ {
	case rspCellCount, rspVersionNumber, rspCommunicationChannel, rspTopKeys, rspErrorCode:
		return 2, true
	case rspModeSetting:
		return 3, true
	case rspRoutingKeys:
		if d.cellCount > 40 {
			return 11, true
		}
		return 6, true
	case rspDeviceIdentity:
		return 1 + deviceIdentityLength, true
	case rspSerialNumber:
		return 9, true
	case rspBluetoothName:
		return 15, true
	default:
		return 0, false
	}
}

// Construct implements driver.Driver.
func (d *Driver) Construct(endpoint string) (driver.Display, error) {
	if err := d.t.Open(endpoint); err != nil {
		return driver.Display{}, err
	}

	request := protocolb.Encode([]byte{reqDeviceIdentity})
	for tries := 0; tries < 5; tries++ {
		if _, err := d.t.WriteBytes(request); err != nil {
			break
		}

		deadline := time.Now().Add(2500 * time.Millisecond)
		for time.Now().Before(deadline) {
			readable, err := d.t.AwaitInput(500 * time.Millisecond)
			if err != nil {
				d.t.Close()
				return driver.Display{}, err
			}
			if !readable {
				break
			}

			var buf [1]byte
			n, err := d.t.ReadBytes(buf[:], 0, 0, false)
			if err != nil || n == 0 {
				continue
			}

			frame, complete := d.dec.Feed(buf[0])
			if !complete {
				continue
			}
			if frame[0] != rspDeviceIdentity {
				continue
			}

			name, count, ok := identifyDisplay(frame[1:])
			if !ok {
				continue
			}

			d.cellCount = count
			d.internal = make([]byte, count)
			d.external = make([]byte, count)
			d.pressedRouting = make([]bool, count)
			d.activeRouting = make([]bool, count)
			d.havePending = false

			return driver.Display{Name: name, TextColumns: count, TextRows: 1}, nil
		}
	}

	d.t.Close()
	return driver.Display{}, transport.ErrFatalDisconnect
}

// identifyDisplay trims trailing spaces/NULs from the identity string
// and derives the cell count from the first embedded number, exactly
// as identifyDisplay does in the original driver.
func identifyDisplay(identity []byte) (name string, cellCount int, ok bool) {
	n := len(identity)
	for n > 0 && (identity[n-1] == ' ' || identity[n-1] == 0) {
		n--
	}
	name = string(identity[:n])

	start := strings.IndexAny(name, "0123456789")
	if start < 0 {
		return name, 0, false
	}
	end := start
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	count, err := strconv.Atoi(name[start:end])
	if err != nil {
		return name, 0, false
	}

	switch count {
	case 24, 32, 40, 64, 80:
		return name, count, true
	default:
		return name, 0, false
	}
}

// Destruct implements driver.Driver.
func (d *Driver) Destruct() error {
	return d.t.Close()
}

// WriteWindow implements driver.Driver: only the changed run of cells
// is retranslated, mirroring brl_writeWindow's diff. Nothing is sent
// when no cell changed; otherwise the whole window is sent, not just
// the changed run.
func (d *Driver) WriteWindow(cells []byte) error {
	count := len(cells)
	for count > 0 && cells[count-1] == d.internal[count-1] {
		count--
	}
	start := 0
	for start < count && cells[start] == d.internal[start] {
		start++
	}
	if start >= count {
		return nil
	}

	copy(d.internal[start:count], cells[start:count])
	for i := start; i < count; i++ {
		d.external[i] = d.output.Translate(braille.Dots(d.internal[i]))
	}
	d.updated = true
	return d.flush()
}

func (d *Driver) flush() error {
	if !d.updated {
		return nil
	}
	payload := make([]byte, 0, 1+len(d.external))
	payload = append(payload, reqDisplayData)
	payload = append(payload, d.external...)
	if _, err := d.t.WriteBytes(protocolb.Encode(payload)); err != nil {
		return err
	}
	d.updated = false
	return nil
}

// WriteStatus implements driver.Driver; the Vario family has no
// dedicated status cells (brl_writeStatus is a no-op in the original).
func (d *Driver) WriteStatus(cells []byte) error { return nil }

// SetFirmness implements driver.Driver; Vario displays have no
// firmness control.
func (d *Driver) SetFirmness(level int) error { return nil }

// ReadCommand implements driver.Driver.
func (d *Driver) ReadCommand(ctx driver.Context) (driver.Command, error) {
	if d.havePending {
		d.havePending = false
		return d.pending, nil
	}

	for {
		frame, err := d.readFrame()
		if err != nil {
			return 0, err
		}
		if frame == nil {
			return 0, driver.ErrNoCommand
		}

		keyPressed := d.applyFrame(frame)
		if keyPressed == nil {
			continue
		}
		if *keyPressed {
			d.activeTopKeys = d.pressedTopKeys
			copy(d.activeRouting, d.pressedRouting)
		}
		break
	}

	cmd, pressed := d.resolveChord()
	if pressed {
		cmd |= driver.FlgRepeatDelay
	} else {
		d.activeTopKeys = 0
		for i := range d.activeRouting {
			d.activeRouting[i] = false
		}
	}
	return cmd, nil
}

// readFrame drains one byte at a time from the transport's buffered
// input through the Protocol B decoder, returning nil if nothing is
// pending right now.
func (d *Driver) readFrame() ([]byte, error) {
	var buf [1]byte
	for {
		n, err := d.t.ReadBytes(buf[:], 0, 0, false)
		if err != nil {
			if err == transport.ErrWouldBlock {
				return nil, nil
			}
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}
		if frame, complete := d.dec.Feed(buf[0]); complete {
			return frame, nil
		}
	}
}

// applyFrame updates pressed-key state from one decoded frame,
// returning whether a key transitioned to pressed (nil if the frame
// isn't a key event at all, in which case the caller loops for
// another frame exactly as brl_readCommand's "goto nextPacket" does).
func (d *Driver) applyFrame(frame []byte) *bool {
	pressed := false
	switch frame[0] {
	case rspTopKeys:
		keys := frame[1]
		if keys&^d.pressedTopKeys != 0 {
			pressed = true
		}
		d.pressedTopKeys = keys

	case rspRoutingKeys:
		key := 0
		for _, b := range frame[1:] {
			for bit := 0; bit < 8 && key < len(d.pressedRouting); bit++ {
				mask := byte(1) << uint(bit)
				if b&mask == 0 {
					d.pressedRouting[key] = false
				} else if !d.pressedRouting[key] {
					d.pressedRouting[key] = true
					pressed = true
				}
				key++
			}
		}

	default:
		return nil
	}
	return &pressed
}

type chordEntry struct {
	keys uint8
	cmd  driver.Command
}

// noRoutingChords mirrors the routingCount==0 switch of
// brl_readCommand.
var noRoutingChords = []chordEntry{
	{keyTL2, driver.CmdFWinLt},
	{keyTR2, driver.CmdFWinRt},

	{keyTL1 | keyTL3, driver.CmdChrLt},
	{keyTR1 | keyTR3, driver.CmdChrRt},

	{keyTL1 | keyTL2 | keyTL3, driver.CmdLnBeg},
	{keyTR1 | keyTR2 | keyTR3, driver.CmdLnEnd},

	{keyTL1, driver.CmdLnUp},
	{keyTL3, driver.CmdLnDn},

	{keyTR1, driver.CmdTop},
	{keyTR3, driver.CmdBot},

	{keyTL2 | keyTL1, driver.CmdPrDifLn},
	{keyTL2 | keyTL3, driver.CmdNxDifLn},

	{keyTR2 | keyTR1, driver.CmdAttrUp},
	{keyTR2 | keyTR3, driver.CmdAttrDn},

	{keyTL1 | keyTR1, driver.CmdHome},
	{keyTL2 | keyTR2, driver.CmdPaste},
	{keyTL3 | keyTR3, driver.CmdCsrJmpVert},

	{keyTL1 | keyTL2 | keyTR1, driver.CmdFreeze},
	{keyTL1 | keyTL2 | keyTR2, driver.CmdHelp},
	{keyTL1 | keyTL2 | keyTL3 | keyTR1, driver.CmdPrefMenu},
	{keyTL1 | keyTL2 | keyTL3 | keyTR2, driver.CmdPrefLoad},
	{keyTL2 | keyTL3 | keyTR1, driver.CmdInfo},
	{keyTL2 | keyTL3 | keyTR1 | keyTR2, driver.CmdCsrTrk},
	{keyTL1 | keyTL3 | keyTR3, driver.CmdBack},
	{keyTL2 | keyTR1 | keyTR2 | keyTR3, driver.CmdPrefSave},
	{keyTL2 | keyTL3 | keyTR2, driver.CmdSixDots | driver.FlgToggleOn},
	{keyTL2 | keyTL3 | keyTR3, driver.CmdSixDots | driver.FlgToggleOff},
}

// singleRoutingChords mirrors the routingCount==1 switch, block offset
// by the routed key index.
var singleRoutingChords = []chordEntry{
	{0, driver.BlkRoute},

	{keyTL1, driver.BlkCutBegin},
	{keyTL2, driver.BlkCutAppend},
	{keyTR1, driver.BlkCutLine},
	{keyTR2, driver.BlkCutRect},

	{keyTL3, driver.BlkDescChar},
	{keyTR3, driver.BlkSetLeft},

	{keyTL2 | keyTL1, driver.BlkPrIndent},
	{keyTL2 | keyTL3, driver.BlkNxIndent},

	{keyTR2 | keyTR1, driver.BlkSetMark},
	{keyTR2 | keyTR3, driver.BlkGotoMark},
}

// resolveChord turns the current activeTopKeys/activeRouting snapshot
// into a command, and reports whether any key is still held (for the
// REPEAT_DELAY flag brl_readCommand attaches while a chord is held).
func (d *Driver) resolveChord() (driver.Command, bool) {
	routed := -1
	routedCount := 0
	for i, on := range d.activeRouting {
		if on {
			routed = i
			routedCount++
		}
	}

	held := d.activeTopKeys != 0 || routedCount > 0

	var cmd driver.Command
	switch routedCount {
	case 0:
		for _, e := range noRoutingChords {
			if e.keys == d.activeTopKeys {
				cmd = e.cmd
				break
			}
		}
	case 1:
		for _, e := range singleRoutingChords {
			if e.keys == d.activeTopKeys {
				cmd = e.cmd | driver.Command(routed)
				break
			}
		}
	}
	return cmd, held
}
