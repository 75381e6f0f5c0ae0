package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brltty-go/brld/internal/braille"
	"github.com/brltty-go/brld/internal/braille/texttable"
	"github.com/brltty-go/brld/internal/driver"
	"github.com/brltty-go/brld/internal/prefs"
	"github.com/brltty-go/brld/internal/render"
	"github.com/brltty-go/brld/internal/screen/memscreen"
)

// fakeDriver is an in-memory driver.Driver double: ReadCommand drains
// a preloaded queue, WriteWindow/WriteStatus just records the last
// frame, and Construct/Destruct can be told to fail on demand.
type fakeDriver struct {
	display driver.Display

	commands []driver.Command
	cmdIndex int

	constructErr error
	destructErr  error
	writeErr     error

	constructs int
	destructs  int
	lastWindow []byte
}

func (f *fakeDriver) Construct(endpoint string) (driver.Display, error) {
	f.constructs++
	if f.constructErr != nil {
		return driver.Display{}, f.constructErr
	}
	return f.display, nil
}

func (f *fakeDriver) Destruct() error {
	f.destructs++
	return f.destructErr
}

func (f *fakeDriver) WriteWindow(cells []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.lastWindow = append([]byte(nil), cells...)
	return nil
}

func (f *fakeDriver) WriteStatus(cells []byte) error { return nil }

func (f *fakeDriver) ReadCommand(ctx driver.Context) (driver.Command, error) {
	if f.cmdIndex >= len(f.commands) {
		return 0, driver.ErrNoCommand
	}
	cmd := f.commands[f.cmdIndex]
	f.cmdIndex++
	return cmd, nil
}

func (f *fakeDriver) SetFirmness(level int) error { return nil }

var _ driver.Driver = (*fakeDriver)(nil)

func newTestDaemon(t *testing.T, drv driver.Driver) (*Daemon, *memscreen.Screen) {
	t.Helper()
	backend := memscreen.New(10, 4)
	table := texttable.NewASCII(braille.Dot7 | braille.Dot8)
	renderer := render.New(table, func(attr byte) (r, g, b uint8) { return 0, 0, 0 })
	p := prefs.Default()
	d := New(zerolog.Nop(), drv, backend, "fake://", &p, renderer)
	d.UpdateInterval = time.Millisecond
	require.NoError(t, d.Start())
	return d, backend
}

func TestStartBuildsSessionFromDisplayGeometry(t *testing.T) {
	drv := &fakeDriver{display: driver.Display{Name: "fake", TextColumns: 10, TextRows: 4}}
	d, _ := newTestDaemon(t, drv)
	assert.Equal(t, "fake", d.Display().Name)
	assert.Equal(t, 1, drv.constructs)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	drv := &fakeDriver{display: driver.Display{Name: "fake", TextColumns: 10, TextRows: 4}}
	d, _ := newTestDaemon(t, drv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	err := d.Run(ctx)
	assert.ErrorIs(t, err, ErrStopped)
}

func TestRunWritesWindowWhenContentChanges(t *testing.T) {
	drv := &fakeDriver{display: driver.Display{Name: "fake", TextColumns: 10, TextRows: 4}}
	d, backend := newTestDaemon(t, drv)
	backend.SetText(0, "hello", 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_ = d.Run(ctx)

	assert.NotEmpty(t, drv.lastWindow)
}

// TestRunShowsUnreadableMessage is spec.md §4.7/§8 Scenario 6: while
// the screen back-end reports itself unreadable, Run must write the
// back-end's human-readable message to the display every tick instead
// of skipping the update, and must not restart the driver — a
// screen-read failure isn't a driver fault.
func TestRunShowsUnreadableMessage(t *testing.T) {
	drv := &fakeDriver{display: driver.Display{Name: "fake", TextColumns: 10, TextRows: 4}}
	d, backend := newTestDaemon(t, drv)

	msg := "device locked"
	backend.SetUnreadable(&msg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_ = d.Run(ctx)

	require.NotEmpty(t, drv.lastWindow)
	assert.Equal(t, byte(d.Renderer.Translate('d')), drv.lastWindow[0])
	assert.Equal(t, 1, drv.constructs) // initial Start only, no restart
	assert.Equal(t, 0, drv.destructs)
}

func TestRunRestartsOnReadCommandError(t *testing.T) {
	drv := &fakeDriver{display: driver.Display{Name: "fake", TextColumns: 10, TextRows: 4}}
	d, _ := newTestDaemon(t, drv)

	// Swap in a driver that fails ReadCommand, so Run must restart.
	failing := &failingReadDriver{fakeDriver: drv}
	d.Driver = failing

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_ = d.Run(ctx)

	assert.GreaterOrEqual(t, drv.constructs, 2) // initial Start + at least one restart
}

type failingReadDriver struct {
	*fakeDriver
}

func (f *failingReadDriver) ReadCommand(ctx driver.Context) (driver.Command, error) {
	return 0, errors.New("transport gone")
}

func TestAdvanceBlinkFlipsOnExpiry(t *testing.T) {
	drv := &fakeDriver{display: driver.Display{Name: "fake", TextColumns: 10, TextRows: 4}}
	d, _ := newTestDaemon(t, drv)
	d.Prefs.BlinkingCursor = true
	d.resetBlinkTimers()

	before := d.blink.CursorOn
	d.advanceBlink(time.Duration(d.Prefs.CursorBlinkPeriodMs) * time.Millisecond)
	assert.NotEqual(t, before, d.blink.CursorOn)
}

func TestRestartCombinesDestructAndConstructErrors(t *testing.T) {
	drv := &fakeDriver{
		display:      driver.Display{Name: "fake", TextColumns: 10, TextRows: 4},
		destructErr:  errors.New("teardown failed"),
		constructErr: errors.New("reconnect failed"),
	}
	d, _ := newTestDaemon(t, drv)

	err := d.restart()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teardown failed")
	assert.Contains(t, err.Error(), "reconnect failed")
}

func TestRestartSucceedsDespiteDestructError(t *testing.T) {
	drv := &fakeDriver{
		display:     driver.Display{Name: "fake", TextColumns: 10, TextRows: 4},
		destructErr: errors.New("teardown failed"),
	}
	d, _ := newTestDaemon(t, drv)

	err := d.restart()
	assert.NoError(t, err)
}
