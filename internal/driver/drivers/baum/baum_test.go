package baum

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brltty-go/brld/internal/driver"
	"github.com/brltty-go/brld/internal/packet/protocolb"
	"github.com/brltty-go/brld/internal/transport"
)

// fakeTransport is an in-memory transport.Transport: WriteBytes
// records frames sent to the device, and Feed lets a test queue bytes
// for the driver to read back, one at a time, as a real serial link
// would deliver them.
type fakeTransport struct {
	in  []byte
	out [][]byte
}

func (f *fakeTransport) Open(string) error { return nil }
func (f *fakeTransport) Close() error       { return nil }

func (f *fakeTransport) AwaitInput(time.Duration) (bool, error) {
	return len(f.in) > 0, nil
}

func (f *fakeTransport) ReadBytes(buf []byte, _, _ time.Duration, _ bool) (int, error) {
	if len(f.in) == 0 {
		return 0, transport.ErrWouldBlock
	}
	n := copy(buf, f.in)
	f.in = f.in[n:]
	return n, nil
}

func (f *fakeTransport) WriteBytes(buf []byte) (int, error) {
	f.out = append(f.out, append([]byte(nil), buf...))
	return len(buf), nil
}

func (f *fakeTransport) Feed(b []byte) { f.in = append(f.in, b...) }

var _ transport.Transport = (*fakeTransport)(nil)

func identityFrame(name string, cellCount int) []byte {
	identity := make([]byte, deviceIdentityLength)
	copy(identity, name)
	payload := append([]byte{rspDeviceIdentity}, identity...)
	return protocolb.Encode(payload)
}

func TestConstructIdentifiesVarioDisplay(t *testing.T) {
	ft := &fakeTransport{}
	ft.Feed(identityFrame("Vario 40", 40))

	d := New(zerolog.Nop(), ft)
	disp, err := d.Construct("fake://")
	require.NoError(t, err)
	assert.Equal(t, "Vario 40", disp.Name)
	assert.Equal(t, 40, disp.TextColumns)
	assert.Equal(t, 1, disp.TextRows)
	assert.Len(t, ft.out, 1) // the identity probe
}

func TestConstructFailsOnUnrecognisedCellCount(t *testing.T) {
	ft := &fakeTransport{}
	ft.Feed(identityFrame("Vario 13", 13))

	d := New(zerolog.Nop(), ft)
	_, err := d.Construct("fake://")
	assert.Error(t, err)
}

func TestWriteWindowSendsOnlyWhenCellsChange(t *testing.T) {
	ft := &fakeTransport{}
	ft.Feed(identityFrame("Vario 40", 40))
	d := New(zerolog.Nop(), ft)
	_, err := d.Construct("fake://")
	require.NoError(t, err)

	ft.out = nil
	cells := make([]byte, 40)
	require.NoError(t, d.WriteWindow(cells)) // all-blank, matches internal state -> no write
	assert.Empty(t, ft.out)

	cells[5] = 0X01
	require.NoError(t, d.WriteWindow(cells))
	assert.Len(t, ft.out, 1)
}

func TestReadCommandResolvesTopKeyChord(t *testing.T) {
	ft := &fakeTransport{}
	ft.Feed(identityFrame("Vario 40", 40))
	d := New(zerolog.Nop(), ft)
	_, err := d.Construct("fake://")
	require.NoError(t, err)

	ft.Feed(protocolb.Encode([]byte{rspTopKeys, keyTL2}))
	cmd, err := d.ReadCommand(driver.CtxScreen)
	require.NoError(t, err)
	assert.Equal(t, driver.CmdFWinLt, cmd.Base())
	assert.NotZero(t, cmd.Flags()&driver.FlgRepeatDelay)
}

// TestReadCommandResolvesRoutingChordScenario2 is spec.md §8 Scenario
// 2: the left-most top key (TL2) held down together with routing key
// 17 must resolve to BLK_CUTAPPEND|17, the two key states arriving as
// separate frames exactly as a real Vario reports a top-key press and
// a routing-key press in distinct packets.
func TestReadCommandResolvesRoutingChordScenario2(t *testing.T) {
	ft := &fakeTransport{}
	ft.Feed(identityFrame("Vario 40", 40))
	d := New(zerolog.Nop(), ft)
	_, err := d.Construct("fake://")
	require.NoError(t, err)

	ft.Feed(protocolb.Encode([]byte{rspTopKeys, keyTL2}))
	_, err = d.ReadCommand(driver.CtxScreen)
	require.NoError(t, err)

	ft.Feed(protocolb.Encode([]byte{rspRoutingKeys, 0, 0, 0X02, 0, 0})) // bit 17
	cmd, err := d.ReadCommand(driver.CtxScreen)
	require.NoError(t, err)
	assert.Equal(t, driver.BlkCutAppend|driver.Command(17), cmd.Base())
	assert.NotZero(t, cmd.Flags()&driver.FlgRepeatDelay)
}

func TestReadCommandNoDataReturnsErrNoCommand(t *testing.T) {
	ft := &fakeTransport{}
	ft.Feed(identityFrame("Vario 40", 40))
	d := New(zerolog.Nop(), ft)
	_, err := d.Construct("fake://")
	require.NoError(t, err)

	_, err = d.ReadCommand(driver.CtxScreen)
	assert.ErrorIs(t, err, driver.ErrNoCommand)
}
