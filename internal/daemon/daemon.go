// Package daemon is the update loop (C7): on a fixed tick it reads one
// command from the display, dispatches it, advances the blink timers,
// re-renders the window and writes it to the display, restarting the
// driver if asked to. Grounded on Programs/brltty.c's main loop (the
// "while (doCommand(upd))" cycle, its blink-timer decrement block, and
// its braille-driver restart handling).
package daemon

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/brltty-go/brld/internal/braille"
	"github.com/brltty-go/brld/internal/clipboard"
	"github.com/brltty-go/brld/internal/command"
	"github.com/brltty-go/brld/internal/driver"
	"github.com/brltty-go/brld/internal/prefs"
	"github.com/brltty-go/brld/internal/render"
	"github.com/brltty-go/brld/internal/screen"
	"github.com/brltty-go/brld/internal/session"
)

// DefaultUpdateInterval is the tick period BRLTTY ships by default
// (DEFAULT_UPDATE_INTERVAL).
const DefaultUpdateInterval = 40 * time.Millisecond

// Daemon wires one driver.Driver to one screen.Backend through a
// session.Session, render.Renderer, clipboard.Clipboard and
// command.Dispatcher, and runs the update cycle.
type Daemon struct {
	log zerolog.Logger

	Driver   driver.Driver
	Backend  screen.Backend
	Renderer *render.Renderer
	Prefs    *prefs.Preferences

	sess       *session.Session
	cpb        *clipboard.Clipboard
	dispatch   *command.Dispatcher
	display    driver.Display
	endpoint   string

	UpdateInterval time.Duration

	cursorTimer, attributesTimer, capitalsTimer time.Duration
	blink                                        render.BlinkState

	repeat command.RepeatState
}

// New constructs a Daemon. endpoint is passed to Driver.Construct (and
// re-used on restart).
func New(log zerolog.Logger, drv driver.Driver, backend screen.Backend, endpoint string, p *prefs.Preferences, renderer *render.Renderer) *Daemon {
	return &Daemon{
		log:            log.With().Str("component", "daemon").Logger(),
		Driver:         drv,
		Backend:        backend,
		Renderer:       renderer,
		Prefs:          p,
		endpoint:       endpoint,
		UpdateInterval: DefaultUpdateInterval,
		cpb:            clipboard.New(),
	}
}

// Start opens the display and builds the session bound to its
// reported geometry. It must be called once before Run.
func (d *Daemon) Start() error {
	disp, err := d.Driver.Construct(d.endpoint)
	if err != nil {
		return err
	}
	d.display = disp
	d.sess = session.New(d.Backend, disp.TextColumns, disp.TextRows)
	d.dispatch = command.New(d.sess, d.cpb, d.Prefs)
	d.resetBlinkTimers()
	return nil
}

// Display returns the geometry reported by the last successful
// Start/restart.
func (d *Daemon) Display() driver.Display { return d.display }

func (d *Daemon) resetBlinkTimers() {
	d.cursorTimer = time.Duration(d.Prefs.CursorBlinkPeriodMs) * time.Millisecond
	d.attributesTimer = time.Duration(d.Prefs.AttributeBlinkPeriodMs) * time.Millisecond
	d.capitalsTimer = time.Duration(d.Prefs.CapitalBlinkPeriodMs) * time.Millisecond
	d.blink = render.BlinkState{CursorOn: true, AttributeOn: true, CapitalOn: true}
}

// advanceBlink decrements the three blink timers by elapsed and flips
// whichever phase(s) expire, mirroring the cursorTimer/attributesTimer
// /capitalsTimer block in the main loop.
func (d *Daemon) advanceBlink(elapsed time.Duration) {
	if d.Prefs.BlinkingCursor {
		d.cursorTimer -= elapsed
		if d.cursorTimer <= 0 {
			d.blink.CursorOn = !d.blink.CursorOn
			d.cursorTimer = time.Duration(d.Prefs.CursorBlinkPeriodMs) * time.Millisecond
		}
	}
	if d.Prefs.BlinkingAttributes {
		d.attributesTimer -= elapsed
		if d.attributesTimer <= 0 {
			d.blink.AttributeOn = !d.blink.AttributeOn
			d.attributesTimer = time.Duration(d.Prefs.AttributeBlinkPeriodMs) * time.Millisecond
		}
	}
	if d.Prefs.BlinkingCapitals {
		d.capitalsTimer -= elapsed
		if d.capitalsTimer <= 0 {
			d.blink.CapitalOn = !d.blink.CapitalOn
			d.capitalsTimer = time.Duration(d.Prefs.CapitalBlinkPeriodMs) * time.Millisecond
		}
	}
}

// ErrStopped is returned by Run when ctx is cancelled.
var ErrStopped = errors.New("daemon: stopped")

// Run drives the update cycle until ctx is cancelled or an
// unrecoverable driver error occurs. One iteration: read a command (or
// synthesize an autorepeat), dispatch it, advance blink state, and
// re-render+write the window if anything changed.
func (d *Daemon) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.UpdateInterval)
	defer ticker.Stop()

	renderOpts := d.renderOptions()
	lastWindow := render.Window{}

	for {
		select {
		case <-ctx.Done():
			return ErrStopped
		case <-ticker.C:
		}

		cmd, hasCmd, err := d.readCommand()
		if err != nil {
			if restartErr := d.restart(); restartErr != nil {
				return restartErr
			}
			continue
		}

		repeated, fired := d.repeat.HandleRepeatFlags(cmd, hasCmd,
			false, int(d.Prefs.RepeatInitialDelayMs), int(d.Prefs.RepeatIntervalMs), int(d.UpdateInterval/time.Millisecond))

		if fired {
			result := d.dispatch.Execute(d.Backend, repeated)
			if result.PrefsChanged {
				renderOpts = d.renderOptions()
			}
			if result.Restart {
				if err := d.restart(); err != nil {
					return err
				}
				continue
			}
		}

		d.advanceBlink(d.UpdateInterval)

		d.sess.TrackCursor(false, d.sessionOptions())

		win := d.sess.Window()
		desc := d.Backend.Describe()
		if desc.Unreadable != nil {
			d.writeUnreadable(*desc.Unreadable)
			continue
		}

		var rendered render.Window
		var cursorOK bool

		if renderOpts.Contracted && d.display.TextRows == 1 && d.Renderer.CanContract() {
			rowBox := screen.Box{Left: 0, Top: win.WinY, Width: desc.Columns, Height: 1}
			row := d.Backend.ReadCharacters(rowBox)
			text := make([]rune, len(row))
			for i, ch := range row {
				text[i] = ch.Text
			}

			cursorOK = desc.CursorY == win.WinY && desc.CursorX >= 0 && desc.CursorX < desc.Columns
			var newWinX int
			rendered, newWinX = d.Renderer.RenderContractedLine(text, d.display.TextColumns, desc.CursorX, cursorOK, win.WinX)
			d.sess.SetWinX(newWinX)
		} else {
			box := screen.Box{Left: win.WinX, Top: win.WinY, Width: d.display.TextColumns, Height: d.display.TextRows}
			chars := d.Backend.ReadCharacters(box)

			cursorCol, cursorRow := desc.CursorX-win.WinX, desc.CursorY-win.WinY
			cursorOK = cursorCol >= 0 && cursorCol < d.display.TextColumns && cursorRow >= 0 && cursorRow < d.display.TextRows

			rendered = d.Renderer.Render(chars, d.display.TextColumns, d.display.TextRows, cursorCol, cursorRow, cursorOK, renderOpts, d.blink)
		}

		if d.Prefs.SkipBlankWindows && isBlank(rendered) && !cursorOK {
			continue
		}
		if cellsEqual(rendered, lastWindow) {
			continue
		}
		lastWindow = rendered

		if err := d.Driver.WriteWindow(dotsToBytes(rendered.Cells)); err != nil {
			if restartErr := d.restart(); restartErr != nil {
				return restartErr
			}
		}
	}
}

// writeUnreadable shows the screen back-end's human-readable outage
// message on the display (spec.md §4.7 ScreenUnreadable, Scenario 6:
// the display shows the message during the outage, then resumes normal
// rendering once the screen is readable again; the driver itself is
// never reconstructed for this — a read failure isn't a driver fault).
func (d *Daemon) writeUnreadable(message string) {
	cells := make([]braille.Dots, d.display.TextColumns*d.display.TextRows)
	for i, ch := range []rune(message) {
		if i >= len(cells) {
			break
		}
		cells[i] = d.Renderer.Translate(ch)
	}
	if err := d.Driver.WriteWindow(dotsToBytes(cells)); err != nil {
		d.log.Warn().Err(err).Msg("failed to write unreadable-screen message")
	}
}

func (d *Daemon) readCommand() (driver.Command, bool, error) {
	cmd, err := d.Driver.ReadCommand(driver.CtxScreen)
	if err != nil {
		if errors.Is(err, driver.ErrNoCommand) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return cmd, true, nil
}

func (d *Daemon) restart() error {
	d.log.Warn().Msg("restarting braille driver")
	destructErr := d.Driver.Destruct()
	disp, constructErr := d.Driver.Construct(d.endpoint)
	if constructErr != nil {
		return multierr.Combine(destructErr, constructErr)
	}
	if destructErr != nil {
		d.log.Warn().Err(destructErr).Msg("driver teardown reported an error before reconnecting")
	}
	d.display = disp
	d.sess = session.New(d.Backend, disp.TextColumns, disp.TextRows)
	d.dispatch = command.New(d.sess, d.cpb, d.Prefs)
	d.resetBlinkTimers()
	d.repeat.Reset()
	return nil
}

func (d *Daemon) renderOptions() render.Options {
	win := d.sess.Window()
	return render.Options{
		DisplayMode:        win.DisplayMode,
		ShowCursor:         d.Prefs.ShowCursor,
		BlinkingCursor:     d.Prefs.BlinkingCursor,
		BlockCursor:        d.Prefs.BlockCursor,
		ShowAttributes:     d.Prefs.ShowAttributes,
		BlinkingAttributes: d.Prefs.BlinkingAttributes,
		BlinkingCapitals:   d.Prefs.BlinkingCapitals,
		SixDot:             d.Prefs.SixDot,
		Contracted:         d.Prefs.Contracted,
	}
}

func (d *Daemon) sessionOptions() session.Options {
	return session.Options{
		SlidingWindow:        d.Prefs.SlidingWindow,
		EagerSlidingWindow:   d.Prefs.EagerSlidingWindow,
		SkipIdenticalLines:   d.Prefs.SkipIdenticalLines,
		SkipBlankWindows:     d.Prefs.SkipBlankWindows,
		TrackCursor:          true,
		WindowFollowsPointer: d.Prefs.WindowFollowsPointer,
		HideCursor:           !d.Prefs.ShowCursor,
	}
}

func isBlank(w render.Window) bool {
	for _, c := range w.Cells {
		if c != 0 {
			return false
		}
	}
	return true
}

func cellsEqual(a, b render.Window) bool {
	if len(a.Cells) != len(b.Cells) {
		return false
	}
	for i := range a.Cells {
		if a.Cells[i] != b.Cells[i] {
			return false
		}
	}
	return a.Cursor == b.Cursor
}

func dotsToBytes(cells []braille.Dots) []byte {
	out := make([]byte, len(cells))
	for i, c := range cells {
		out[i] = byte(c)
	}
	return out
}
