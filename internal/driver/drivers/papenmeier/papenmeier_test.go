package papenmeier

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brltty-go/brld/internal/driver"
	"github.com/brltty-go/brld/internal/packet/protocola"
	"github.com/brltty-go/brld/internal/transport"
)

// fakeTransport is an in-memory transport.Transport, the same shape
// used by the baum driver's tests: WriteBytes records outgoing
// frames, Feed queues bytes for the driver to read back one at a time.
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

func identityFrame(modelID byte) []byte {
	return []byte{protocola.STX, protocola.TypeIdentify, modelID, 0, 0, 0, 0, 0, 0, protocola.ETX}
}

func receiveFrame(addr uint16, pressed bool) []byte {
	payload := []byte{0, 0, 0}
	if pressed {
		payload[0] = 1
	}
	total := 6 + len(payload) + 1
	out := make([]byte, 0, total)
	out = append(out, protocola.STX, protocola.TypeReceive, byte(addr>>8), byte(addr))
	out = append(out, byte(total>>8), byte(total))
	out = append(out, payload...)
	out = append(out, protocola.ETX)
	return out
}

func TestConstructIdentifiesKnownModel(t *testing.T) {
	ft := &fakeTransport{}
	ft.Feed(identityFrame(0X0A)) // BRAILLEX Live 40

	d := New(zerolog.Nop(), ft)
	disp, err := d.Construct("fake://")
	require.NoError(t, err)
	assert.Equal(t, "Papenmeier BRAILLEX Live 40", disp.Name)
	assert.Equal(t, 40, disp.TextColumns)
	assert.Equal(t, 0, disp.StatusColumns)
}

func TestConstructRejectsUnknownModel(t *testing.T) {
	ft := &fakeTransport{}
	ft.Feed(identityFrame(0XFF))

	d := New(zerolog.Nop(), ft)
	_, err := d.Construct("fake://")
	assert.Error(t, err)
}

func TestReadCommandDecodesRoutingKey(t *testing.T) {
	ft := &fakeTransport{}
	ft.Feed(identityFrame(0X0A))
	d := New(zerolog.Nop(), ft)
	_, err := d.Construct("fake://")
	require.NoError(t, err)

	ft.Feed(receiveFrame(0, true)) // first routing key, pressed
	cmd, err := d.ReadCommand(driver.CtxScreen)
	require.NoError(t, err)
	assert.Equal(t, driver.BlkRoute, cmd.Block())
	assert.Equal(t, 0, cmd.Arg())
}

func TestReadCommandDecodesFrontKey(t *testing.T) {
	ft := &fakeTransport{}
	ft.Feed(identityFrame(0X0A))
	d := New(zerolog.Nop(), ft)
	_, err := d.Construct("fake://")
	require.NoError(t, err)

	ft.Feed(receiveFrame(d.frontFirst, true)) // first front-bar key
	cmd, err := d.ReadCommand(driver.CtxScreen)
	require.NoError(t, err)
	assert.Equal(t, driver.CmdLnUp, cmd)
}

func TestReadCommandIgnoresReleaseEvent(t *testing.T) {
	ft := &fakeTransport{}
	ft.Feed(identityFrame(0X0A))
	d := New(zerolog.Nop(), ft)
	_, err := d.Construct("fake://")
	require.NoError(t, err)

	ft.Feed(receiveFrame(0, false))
	_, err = d.ReadCommand(driver.CtxScreen)
	assert.ErrorIs(t, err, driver.ErrNoCommand)
}

func TestWriteWindowTranslatesAndSends(t *testing.T) {
	ft := &fakeTransport{}
	ft.Feed(identityFrame(0X0A))
	d := New(zerolog.Nop(), ft)
	_, err := d.Construct("fake://")
	require.NoError(t, err)

	ft.out = nil
	require.NoError(t, d.WriteWindow(make([]byte, 40)))
	assert.Len(t, ft.out, 1)
}
