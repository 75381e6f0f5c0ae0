// Package memscreen is an in-memory fake of the screen.Backend contract,
// playing the role that the teacher's mock and simulation packages play
// for tcell itself: an injectable double of the one external collaborator
// (spec.md §6) so every higher layer (renderer, session, dispatcher,
// update loop) can be exercised without a real console attached.
package memscreen

import (
	"sync"

	"github.com/brltty-go/brld/internal/screen"
)

// Screen is a fixed-size grid of screen.Character plus a cursor, an
// injectable pointer position, and an optional "unreadable" state.
type Screen struct {
	mu sync.Mutex

	cols, rows     int
	cursorX        int
	cursorY        int
	number         int
	cells          []screen.Character
	unreadable     *string
	pointerCol     int
	pointerRow     int
	pointerValid   bool
	keys           []screen.Key
	commands       []screen.Command
	currentVT      int
	highlightCalls int
}

// New creates a cols x rows screen, cursor at (0,0), filled with spaces.
func New(cols, rows int) *Screen {
	s := &Screen{cols: cols, rows: rows, number: 1, currentVT: 1}
	s.cells = make([]screen.Character, cols*rows)
	for i := range s.cells {
		s.cells[i] = screen.Character{Text: ' '}
	}
	return s
}

// SetText writes a row of text (and, optionally, a uniform attribute)
// starting at column 0 of row, truncating to the screen width.
func (s *Screen) SetText(row int, text string, attr byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runes := []rune(text)
	for col := 0; col < s.cols; col++ {
		var r rune = ' '
		if col < len(runes) {
			r = runes[col]
		}
		s.cells[row*s.cols+col] = screen.Character{Text: r, Attributes: attr}
	}
}

// SetCursor moves the simulated cursor.
func (s *Screen) SetCursor(col, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorX, s.cursorY = col, row
}

// SetUnreadable puts the screen into the suspended "unreadable" state
// described in spec.md §3/§7, or clears it when msg is nil.
func (s *Screen) SetUnreadable(msg *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unreadable = msg
}

// SetPointer sets or clears the simulated pointer device position.
func (s *Screen) SetPointer(col, row int, valid bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointerCol, s.pointerRow, s.pointerValid = col, row, valid
}

// Describe implements screen.Backend.
func (s *Screen) Describe() screen.Description {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unreadable != nil {
		msg := *s.unreadable
		return screen.Description{Unreadable: &msg}
	}
	return screen.Description{
		Columns: s.cols, Rows: s.rows,
		CursorX: s.cursorX, CursorY: s.cursorY,
		Number: s.number,
	}
}

// ReadCharacters implements screen.Backend.
func (s *Screen) ReadCharacters(box screen.Box) []screen.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]screen.Character, box.Width*box.Height)
	for row := 0; row < box.Height; row++ {
		srcRow := box.Top + row
		for col := 0; col < box.Width; col++ {
			srcCol := box.Left + col
			idx := row*box.Width + col
			if srcRow >= 0 && srcRow < s.rows && srcCol >= 0 && srcCol < s.cols {
				out[idx] = s.cells[srcRow*s.cols+srcCol]
			} else {
				out[idx] = screen.Character{Text: ' '}
			}
		}
	}
	return out
}

// ReadText implements screen.Backend.
func (s *Screen) ReadText(box screen.Box) []rune {
	chars := s.ReadCharacters(box)
	out := make([]rune, len(chars))
	for i, c := range chars {
		out[i] = c.Text
	}
	return out
}

// RouteCursor implements screen.Backend.
func (s *Screen) RouteCursor(col, row, screenNumber int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
		return false
	}
	s.cursorX, s.cursorY = col, row
	return true
}

// InsertKey implements screen.Backend, recording the key for inspection
// by tests (e.g. clipboard paste verification).
func (s *Screen) InsertKey(key screen.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	if key.Rune != 0 && s.cursorX < s.cols && s.cursorY < s.rows {
		s.cells[s.cursorY*s.cols+s.cursorX] = screen.Character{Text: key.Rune}
		s.cursorX++
		if s.cursorX >= s.cols {
			s.cursorX = 0
			if s.cursorY < s.rows-1 {
				s.cursorY++
			}
		}
	}
	return true
}

// InsertedKeys returns every key recorded by InsertKey so far.
func (s *Screen) InsertedKeys() []screen.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]screen.Key, len(s.keys))
	copy(out, s.keys)
	return out
}

// SwitchVirtualTerminal implements screen.Backend.
func (s *Screen) SwitchVirtualTerminal(number int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.number = number
	s.currentVT = number
	return true
}

// ExecuteCommand implements screen.Backend, recording the command.
func (s *Screen) ExecuteCommand(cmd screen.Command) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, cmd)
	return true
}

// CurrentVirtualTerminal implements screen.Backend.
func (s *Screen) CurrentVirtualTerminal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentVT
}

// HighlightRegion implements screen.Backend.
func (s *Screen) HighlightRegion(left, right, top, bottom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlightCalls++
}

// HighlightCalls reports how many times HighlightRegion was called.
func (s *Screen) HighlightCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlightCalls
}

// PointerPosition implements screen.PointerBackend.
func (s *Screen) PointerPosition() (col, row int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointerCol, s.pointerRow, s.pointerValid
}

var (
	_ screen.Backend        = (*Screen)(nil)
	_ screen.PointerBackend = (*Screen)(nil)
)
