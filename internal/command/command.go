// Package command is the command dispatcher (C6): it takes one
// driver.Command read from a display and applies it to a
// session.Session, clipboard.Clipboard and screen.Backend, exactly
// the role Programs/cmd.c and the relevant sections of brltty.c's
// main loop play between brl_readCommand and the screen update.
package command

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/brltty-go/brld/internal/clipboard"
	"github.com/brltty-go/brld/internal/driver"
	"github.com/brltty-go/brld/internal/prefs"
	"github.com/brltty-go/brld/internal/screen"
	"github.com/brltty-go/brld/internal/session"
)

// attributeColours is the legacy 16-colour console palette names, in
// SCR_ATTR low/high nibble order, ported from brltty.c's BRL_BLK_DESCCHAR
// handler.
var attributeColours = [16]string{
	"black", "blue", "green", "cyan",
	"red", "magenta", "brown", "light grey",
	"dark grey", "light blue", "light green", "light cyan",
	"light red", "light magenta", "yellow", "white",
}

const attrBlink = 0X80 // SCR_ATTR_BLINK

// describeCharacter renders the same "char N (0xXX): fg on bg [blink]"
// text BRL_BLK_DESCCHAR produces. Unlike the original (built with
// ICU's u_charName), there is no Unicode character-name database in
// this pack, so a double-width annotation from go-runewidth stands in
// as the supplementary bracketed detail (see DESIGN.md).
func describeCharacter(ch screen.Character) string {
	s := fmt.Sprintf("char %d (0X%02X): %s on %s",
		ch.Text, ch.Text,
		attributeColours[ch.Attributes&0X0F],
		attributeColours[(ch.Attributes&0X70)>>4])

	if ch.Attributes&attrBlink != 0 {
		s += " blink"
	}
	if runewidth.RuneWidth(ch.Text) == 2 {
		s += " [wide]"
	}
	return s
}

// RepeatState is the per-display autorepeat latch, ported from cmd.c's
// RepeatState/resetRepeatState/handleRepeatFlags.
type RepeatState struct {
	command driver.Command
	hasCmd  bool
	timeout int // milliseconds remaining until the next repeat fires
	started bool
}

// Reset clears the repeat state (resetRepeatState).
func (s *RepeatState) Reset() {
	s.hasCmd = false
	s.timeout = 0
	s.started = false
}

// isDelayedCommand reports whether cmd carries FlgRepeatDelay without
// FlgRepeatInitial having fired yet, mirroring cmd.h's
// IS_DELAYED_COMMAND macro as used inline by handleRepeatFlags.
func isDelayedCommand(cmd driver.Command) bool {
	f := cmd.Flags()
	return f&driver.FlgRepeatDelay != 0 && f&driver.FlgRepeatInitial == 0
}

// repeatableBlockless is the set of bare commands handleRepeatFlags
// allows to autorepeat; FWINLT/FWINRT additionally autorepeat only
// when panning is false (the display is not mid-pan).
func repeatableBlockless(cmd driver.Command, panning bool) bool {
	switch cmd.Base() {
	case driver.CmdFWinLt, driver.CmdFWinRt:
		return !panning
	case driver.CmdLnUp, driver.CmdLnDn, driver.CmdPrDifLn, driver.CmdNxDifLn,
		driver.CmdChrLt, driver.CmdChrRt,
		driver.CmdMenuPrevItem, driver.CmdMenuNextItem,
		driver.CmdMenuPrevSetting, driver.CmdMenuNextSetting,
		driver.BlkPassKey+driver.KeyBackspace, driver.BlkPassKey+driver.KeyDelete,
		driver.BlkPassKey+driver.KeyPageUp, driver.BlkPassKey+driver.KeyPageDown,
		driver.BlkPassKey+driver.KeyCursorUp, driver.BlkPassKey+driver.KeyCursorDown,
		driver.BlkPassKey+driver.KeyCursorLeft, driver.BlkPassKey+driver.KeyCursorRight:
		return true
	default:
		return false
	}
}

// HandleRepeatFlags applies handleRepeatFlags to cmd: it may turn an
// "no command this tick" signal (hasCmd==false) into a synthesized
// repeat of the last command, strip and act on FlgRepeatInitial/Delay
// on a freshly-read command, and collapse a would-be duplicate repeat
// into CmdNoop. panning reports whether the display is currently
// mid-pan (suppresses FWINLT/FWINRT autorepeat); delayMs/intervalMs
// are the configured repeat timings. elapsedMs is how much time has
// passed since the previous call.
func (s *RepeatState) HandleRepeatFlags(cmd driver.Command, hasCmd bool, panning bool, delayMs, intervalMs, elapsedMs int) (driver.Command, bool) {
	if !hasCmd {
		if s.timeout > 0 {
			s.timeout -= elapsedMs
			if s.timeout <= 0 {
				s.timeout = intervalMs
				s.started = true
				return s.command, true
			}
		}
		return 0, false
	}

	flags := cmd.Flags() & driver.FlgRepeatMask
	cmd &^= driver.FlgRepeatMask

	switch cmd.Block() {
	case driver.BlkPassChar, driver.BlkPassDots:
		// always repeatable, flags kept as read
	default:
		if !repeatableBlockless(cmd, panning) {
			if isDelayedCommand(flags) {
				cmd = driver.CmdNoop
			}
			flags = 0
		}
	}

	if s.started {
		s.started = false
		if cmd == s.command {
			cmd = driver.CmdNoop
			flags = 0
		}
	}
	s.command = cmd
	s.hasCmd = true

	switch {
	case flags&driver.FlgRepeatDelay != 0:
		s.timeout = delayMs
		if flags&driver.FlgRepeatInitial != 0 {
			s.started = true
		} else {
			cmd = driver.CmdNoop
		}
	case flags&driver.FlgRepeatInitial != 0:
		s.timeout = intervalMs
		s.started = true
	default:
		s.timeout = 0
	}

	return cmd, true
}

// Dispatcher applies driver.Commands to one virtual terminal's
// session, clipboard and screen backend (spec.md §5).
type Dispatcher struct {
	Session   *session.Session
	Clipboard *clipboard.Clipboard
	Prefs     *prefs.Preferences

	describeChar func(ch screen.Character) string
}

// New creates a Dispatcher wired to the given collaborators.
func New(sess *session.Session, cpb *clipboard.Clipboard, p *prefs.Preferences) *Dispatcher {
	return &Dispatcher{Session: sess, Clipboard: cpb, Prefs: p, describeChar: describeCharacter}
}

// Result reports what effect Execute's command had, for the update
// loop (C7) to act on: whether preferences changed and need saving,
// whether the display should restart, and an optional describe-
// character string to present (BRL_BLK_DESCCHAR).
type Result struct {
	PrefsChanged bool
	Restart      bool
	Describe     string
}

func opts(p *prefs.Preferences, win session.Window) session.Options {
	return session.Options{
		SlidingWindow:      p.SlidingWindow,
		EagerSlidingWindow: p.EagerSlidingWindow,
		SkipIdenticalLines: p.SkipIdenticalLines,
		SkipBlankWindows:   p.SkipBlankWindows,
		TrackCursor:        true,
		HideCursor:         !p.ShowCursor,
	}
}

// Execute applies one command to backend, updating sess/clipboard and
// the shared prefs as needed (spec.md §4-§5's per-block behaviour).
func (d *Dispatcher) Execute(backend screen.Backend, cmd driver.Command) Result {
	var res Result

	switch cmd.Base() {
	case driver.CmdNoop:
		// nothing

	case driver.CmdLnUp:
		if d.Prefs.SkipIdenticalLines {
			d.Session.UpDifferentLine(opts(d.Prefs, d.Session.Window()))
		} else {
			d.Session.UpOneLine()
		}
	case driver.CmdLnDn:
		if d.Prefs.SkipIdenticalLines {
			d.Session.DownDifferentLine(opts(d.Prefs, d.Session.Window()))
		} else {
			d.Session.DownOneLine()
		}
	case driver.CmdPrDifLn:
		d.Session.UpDifferentLine(opts(d.Prefs, d.Session.Window()))
	case driver.CmdNxDifLn:
		d.Session.DownDifferentLine(opts(d.Prefs, d.Session.Window()))
	case driver.CmdWinUp:
		for i := 0; i < windowRows(d.Session); i++ {
			d.Session.UpOneLine()
		}
	case driver.CmdWinDn:
		for i := 0; i < windowRows(d.Session); i++ {
			d.Session.DownOneLine()
		}

	case driver.CmdFWinLt:
		win := d.Session.Window()
		d.Session.PlaceWindowHorizontally(max(win.WinX-d.Session.TextColumns, 0))
	case driver.CmdFWinRt:
		win := d.Session.Window()
		d.Session.PlaceWindowHorizontally(win.WinX + d.Session.TextColumns)
	case driver.CmdLnBeg:
		d.Session.PlaceWindowHorizontally(0)
	case driver.CmdHWinLt:
		win := d.Session.Window()
		d.Session.PlaceWindowHorizontally(max(win.WinX-d.Session.TextColumns/2, 0))
	case driver.CmdHWinRt:
		win := d.Session.Window()
		d.Session.PlaceWindowHorizontally(win.WinX + d.Session.TextColumns/2)

	case driver.CmdTop:
		d.Session.PlaceWindowVertically(0)
	case driver.CmdBot:
		d.Session.PlaceWindowVertically(1 << 30)
	case driver.CmdTopLeft:
		d.Session.PlaceWindowHorizontally(0)
		d.Session.PlaceWindowVertically(0)
	case driver.CmdBotLeft:
		d.Session.PlaceWindowHorizontally(0)
		d.Session.PlaceWindowVertically(1 << 30)

	case driver.CmdHome, driver.CmdCsrTrk:
		d.Session.TrackCursor(true, opts(d.Prefs, d.Session.Window()))

	case driver.CmdDispMd:
		win := d.Session.Window()
		win.DisplayMode = !win.DisplayMode
		d.Session.SwitchTo(win.Number)

	case driver.CmdSixDots:
		d.Prefs.SixDot = !d.Prefs.SixDot
		res.PrefsChanged = true
	case driver.CmdSlideWin:
		d.Prefs.SlidingWindow = !d.Prefs.SlidingWindow
		res.PrefsChanged = true
	case driver.CmdSkpIdLns:
		d.Prefs.SkipIdenticalLines = !d.Prefs.SkipIdenticalLines
		res.PrefsChanged = true
	case driver.CmdSkpBlnkWins:
		d.Prefs.SkipBlankWindows = !d.Prefs.SkipBlankWindows
		res.PrefsChanged = true
	case driver.CmdCsrVis:
		d.Prefs.ShowCursor = !d.Prefs.ShowCursor
		res.PrefsChanged = true
	case driver.CmdCsrBlink:
		d.Prefs.BlinkingCursor = !d.Prefs.BlinkingCursor
		res.PrefsChanged = true
	case driver.CmdCsrSize:
		d.Prefs.BlockCursor = !d.Prefs.BlockCursor
		res.PrefsChanged = true
	case driver.CmdAttrVis:
		d.Prefs.ShowAttributes = !d.Prefs.ShowAttributes
		res.PrefsChanged = true
	case driver.CmdAttrBlink:
		d.Prefs.BlinkingAttributes = !d.Prefs.BlinkingAttributes
		res.PrefsChanged = true
	case driver.CmdCapBlink:
		d.Prefs.BlinkingCapitals = !d.Prefs.BlinkingCapitals
		res.PrefsChanged = true
	case driver.CmdAutorepeat:
		d.Prefs.Autorepeat = !d.Prefs.Autorepeat
		res.PrefsChanged = true
	case driver.CmdAutospeak:
		d.Prefs.AutoSpeak = !d.Prefs.AutoSpeak
		res.PrefsChanged = true
	case driver.CmdTunes:
		d.Prefs.AlertTunes = !d.Prefs.AlertTunes
		res.PrefsChanged = true

	case driver.CmdPrefSave:
		res.PrefsChanged = true
	case driver.CmdPrefLoad:
		res.PrefsChanged = true

	case driver.CmdRestartBrl:
		res.Restart = true

	case driver.CmdPaste:
		d.Clipboard.Paste(backend)

	case driver.CmdCsrJmpVert:
		win := d.Session.Window()
		backend.RouteCursor(win.WinX, win.WinY, -1)
	}

	switch cmd.Block() {
	case driver.BlkRoute:
		win := d.Session.Window()
		backend.RouteCursor(win.WinX+cmd.Arg(), win.WinY, -1)

	case driver.BlkCutBegin:
		win := d.Session.Window()
		d.Clipboard.Start(win.WinX+cmd.Arg(), win.WinY)
	case driver.BlkCutAppend:
		win := d.Session.Window()
		d.Clipboard.Extend(win.WinX+cmd.Arg(), win.WinY)
	case driver.BlkCutRect:
		win := d.Session.Window()
		d.Clipboard.RectangularCopy(backend, win.WinX+cmd.Arg(), win.WinY)
	case driver.BlkCutLine:
		win := d.Session.Window()
		d.Clipboard.LinearCopy(backend, win.WinX+cmd.Arg(), win.WinY)

	case driver.BlkSwitchVt:
		backend.SwitchVirtualTerminal(cmd.Arg())

	case driver.BlkSetMark:
		d.Session.SetMark()
	case driver.BlkGotoMark:
		d.Session.GoToMark()

	case driver.BlkDescChar:
		win := d.Session.Window()
		box := screen.Box{Left: win.WinX + cmd.Arg(), Top: win.WinY, Width: 1, Height: 1}
		chars := backend.ReadCharacters(box)
		if len(chars) > 0 && d.describeChar != nil {
			res.Describe = d.describeChar(chars[0])
		}

	case driver.BlkPassKey:
		backend.InsertKey(screen.Key{Sym: passKeySymbol(cmd.Arg())})
	case driver.BlkPassChar:
		backend.InsertKey(screen.Key{Rune: rune(cmd.Arg())})
	case driver.BlkPassDots:
		// Dot-pattern input mode is not wired to a host input method in
		// this daemon.
	}

	return res
}

// passKeySymbol maps a BRL_KEY argument to the screen package's
// Symbol enumeration (spec.md §4.3 passkey handling).
func passKeySymbol(arg int) screen.Symbol {
	switch driver.Command(arg) {
	case driver.KeyEnter:
		return screen.SymEnter
	case driver.KeyTab:
		return screen.SymTab
	case driver.KeyBackspace:
		return screen.SymBackspace
	case driver.KeyEscape:
		return screen.SymEscape
	case driver.KeyCursorLeft:
		return screen.SymCursorLeft
	case driver.KeyCursorRight:
		return screen.SymCursorRight
	case driver.KeyCursorUp:
		return screen.SymCursorUp
	case driver.KeyCursorDown:
		return screen.SymCursorDown
	case driver.KeyPageUp:
		return screen.SymPageUp
	case driver.KeyPageDown:
		return screen.SymPageDown
	case driver.KeyHome:
		return screen.SymHome
	case driver.KeyEnd:
		return screen.SymEnd
	case driver.KeyInsert:
		return screen.SymInsert
	case driver.KeyDelete:
		return screen.SymDelete
	default:
		return screen.SymFunctionBase + screen.Symbol(arg) - screen.Symbol(driver.KeyFunction)
	}
}

func windowRows(s *session.Session) int { return s.TextRows }
