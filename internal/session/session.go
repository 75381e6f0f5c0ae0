// Package session is the per-virtual-terminal window model (C5): the
// braille window's position over the screen, cursor tracking, and the
// different-line/different-character search commands. Grounded on
// Programs/brltty.c's ses->winx/winy state and its
// trackCursor/slideWindowVertically/toDifferentLine/findRow family.
package session

import "github.com/brltty-go/brld/internal/screen"

// Options configures window-tracking behaviour (spec.md §4.5,
// per-session preferences).
type Options struct {
	SlidingWindow       bool
	EagerSlidingWindow  bool
	SkipIdenticalLines  bool
	SkipBlankWindows    bool
	TrackCursor         bool
	WindowFollowsPointer bool
	HideCursor          bool
}

// Window is one virtual terminal's window position and display mode,
// the Go equivalent of BRLTTY's per-session "ses" structure.
type Window struct {
	Number      int
	WinX, WinY  int
	DisplayMode bool

	MarkX, MarkY int // BRL_BLK_SETMARK/GOTOMARK
}

// Session coordinates one Window against a screen.Backend and a fixed
// text-region geometry (columns visible per window, rows the display
// has).
type Session struct {
	Backend     screen.Backend
	TextColumns int
	TextRows    int

	win Window
}

// New creates a Session bound to backend with the given window
// geometry.
func New(backend screen.Backend, textColumns, textRows int) *Session {
	return &Session{Backend: backend, TextColumns: textColumns, TextRows: textRows}
}

// Window returns the current window state.
func (s *Session) Window() Window { return s.win }

// SwitchTo records number as the window's virtual terminal. The window
// position, display mode and mark are left as they are; positions are
// not remembered per terminal.
func (s *Session) SwitchTo(number int) {
	s.win.Number = number
}

func (s *Session) describe() screen.Description { return s.Backend.Describe() }

// PlaceWindowHorizontally aligns WinX to a window-width boundary
// containing column x (placeWindowHorizontally), clamped to never go
// negative (spec.md §8 invariant P1).
func (s *Session) PlaceWindowHorizontally(x int) {
	if x < 0 {
		x = 0
	}
	s.win.WinX = x / s.TextColumns * s.TextColumns
}

// SetWinX sets WinX to an arbitrary column, unlike
// PlaceWindowHorizontally's window-width snapping. Contracted braille
// (spec.md §4.4) positions the window at whatever column the contractor
// consumed up to or the nearest word boundary, not a fixed-width grid.
func (s *Session) SetWinX(x int) {
	if x < 0 {
		x = 0
	}
	s.win.WinX = x
}

// PlaceWindowVertically jumps WinY directly to row y, clamped to the
// screen (used by BRL_CMD_TOP/BOT/TOP_LEFT/BOT_LEFT, which jump rather
// than slide).
func (s *Session) PlaceWindowVertically(y int) {
	desc := s.describe()
	if bottom := desc.Rows - s.TextRows; y > bottom {
		y = bottom
	}
	if y < 0 {
		y = 0
	}
	s.win.WinY = y
}

// SlideWindowVertically moves WinY only far enough to bring row y
// into view (slideWindowVertically).
func (s *Session) SlideWindowVertically(y int) {
	if y < s.win.WinY {
		s.win.WinY = y
	} else if y >= s.win.WinY+s.TextRows {
		s.win.WinY = y - (s.TextRows - 1)
	}
}

// TrackCursor repositions the window to follow the screen cursor, per
// trackCursor. place, when true, first snaps the window fully onto
// the cursor if the cursor isn't already within it (the "place window"
// variant used on an explicit jump-to-cursor command, as opposed to
// ordinary post-motion tracking).
func (s *Session) TrackCursor(place bool, opts Options) bool {
	desc := s.describe()
	if desc.Unreadable != nil || !desc.Valid() {
		return false
	}

	if place {
		if desc.CursorX < s.win.WinX || desc.CursorX >= s.win.WinX+s.TextColumns ||
			desc.CursorY < s.win.WinY || desc.CursorY >= s.win.WinY+s.TextRows {
			s.PlaceWindowHorizontally(desc.CursorX)
		}
	}

	if opts.SlidingWindow {
		reset := s.TextColumns * 3 / 10
		trigger := 0
		if opts.EagerSlidingWindow {
			trigger = s.TextColumns * 3 / 20
		}
		switch {
		case desc.CursorX < s.win.WinX+trigger:
			s.win.WinX = max(desc.CursorX-reset, 0)
		case desc.CursorX >= s.win.WinX+s.TextColumns-trigger:
			s.win.WinX = max(min(desc.CursorX+reset+1, desc.Columns)-s.TextColumns, 0)
		}
	} else if desc.CursorX < s.win.WinX {
		s.win.WinX -= ((s.win.WinX-desc.CursorX-1)/s.TextColumns + 1) * s.TextColumns
		if s.win.WinX < 0 {
			s.win.WinX = 0
		}
	} else {
		s.win.WinX += (desc.CursorX - s.win.WinX) / s.TextColumns * s.TextColumns
	}

	s.SlideWindowVertically(desc.CursorY)
	return true
}

func (s *Session) canMoveUp() bool {
	return s.win.WinY > 0
}

func (s *Session) canMoveDown() bool {
	desc := s.describe()
	return s.win.WinY < desc.Rows-s.TextRows
}

// sameCharacter compares two screen.Characters the way isSameText or
// isSameAttributes does, chosen by displayMode exactly as
// toDifferentLine's isSameCharacter==isSameText && displayMode switch
// does.
func sameCharacter(displayMode bool) func(a, b screen.Character) bool {
	if displayMode {
		return func(a, b screen.Character) bool { return a.Attributes == b.Attributes }
	}
	return func(a, b screen.Character) bool { return a.Text == b.Text }
}

func sameRow(a, b []screen.Character, same func(a, b screen.Character) bool) bool {
	for i := range a {
		if !same(a[i], b[i]) {
			return false
		}
	}
	return true
}

// toDifferentLine implements toDifferentLine: it scans row by row in
// the given direction from column `from` across `width` columns until
// it finds one that differs from the starting row (by text, or by
// attributes in display mode), or the cursor enters the scanned band.
// It reports whether it found such a row. When the window cannot move
// at all it returns false without moving; when it reaches the edge
// without a find it returns false with the window left at that edge.
func (s *Session) toDifferentLine(canMove func() bool, amount, from, width int, opts Options) bool {
	if !canMove() {
		return false
	}

	same := sameCharacter(s.win.DisplayMode)
	box1 := screen.Box{Left: from, Top: s.win.WinY, Width: width, Height: 1}
	row1 := s.Backend.ReadCharacters(box1)

	for canMove() {
		s.win.WinY += amount
		box2 := screen.Box{Left: from, Top: s.win.WinY, Width: width, Height: 1}
		row2 := s.Backend.ReadCharacters(box2)

		desc := s.describe()
		cursorHere := !opts.HideCursor && desc.Unreadable == nil &&
			desc.CursorY == s.win.WinY && desc.CursorX >= from && desc.CursorX < from+width

		if !sameRow(row1, row2, same) || cursorHere {
			return true
		}
	}
	return false
}

// UpDifferentLine moves the window up to the nearest line that
// differs from the current one (BRL_CMD_PRDIFLN).
func (s *Session) UpDifferentLine(opts Options) bool {
	desc := s.describe()
	return s.toDifferentLine(s.canMoveUp, -1, 0, desc.Columns, opts)
}

// DownDifferentLine moves the window down to the nearest differing
// line.
func (s *Session) DownDifferentLine(opts Options) bool {
	desc := s.describe()
	return s.toDifferentLine(s.canMoveDown, 1, 0, desc.Columns, opts)
}

// UpOneLine and DownOneLine are the undifferentiated one-line motions
// used when SkipIdenticalLines is off (upOneLine/downOneLine).
func (s *Session) UpOneLine() bool {
	if s.win.WinY <= 0 {
		return false
	}
	s.win.WinY--
	return true
}

func (s *Session) DownOneLine() bool {
	desc := s.describe()
	if s.win.WinY >= desc.Rows-s.TextRows {
		return false
	}
	s.win.WinY++
	return true
}

// RowTester mirrors BRLTTY's RowTester: given a column and a candidate
// row, decide whether it's the target.
type RowTester func(column, row int) bool

// FindRow scans rows away from the current window in the given
// direction (+1/-1) until test reports true, moving WinY there, per
// findRow. It reports whether it found one.
func (s *Session) FindRow(column, increment int, test RowTester) bool {
	desc := s.describe()
	row := s.win.WinY + increment
	for row >= 0 && row <= desc.Rows-s.TextRows {
		if test(column, row) {
			s.win.WinY = row
			return true
		}
		row += increment
	}
	return false
}

// SetMark and GoToMark implement BRL_BLK_SETMARK/BRL_BLK_GOTOMARK: a
// single remembered window position per session.
func (s *Session) SetMark() {
	s.win.MarkX, s.win.MarkY = s.win.WinX, s.win.WinY
}

func (s *Session) GoToMark() {
	s.win.WinX, s.win.WinY = s.win.MarkX, s.win.MarkY
}

// FollowPointer moves the window to track the backend's pointer, when
// the backend exposes one and the option is enabled (spec.md §4.5).
func (s *Session) FollowPointer(opts Options) bool {
	if !opts.WindowFollowsPointer {
		return false
	}
	pb, ok := s.Backend.(screen.PointerBackend)
	if !ok {
		return false
	}
	col, row, ok := pb.PointerPosition()
	if !ok {
		return false
	}
	s.PlaceWindowHorizontally(col)
	s.SlideWindowVertically(row)
	return true
}
