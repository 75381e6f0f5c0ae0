// Package clipboard is the cut-buffer model (C8): accumulate a
// rectangular or line-wrapped screen region into an internal buffer,
// and paste it back as synthetic keystrokes. Ported from
// Programs/clipboard.c's cpbStart/cpbExtend/cpbRectangularCopy/
// cpbLinearCopy/cpbPaste, including its trailing-space trim and
// (linear copy only) paragraph-break collapse.
package clipboard

import (
	"unicode"

	hostclip "github.com/atotto/clipboard"

	"github.com/brltty-go/brld/internal/screen"
)

// Clipboard holds one accumulated cut buffer plus the in-progress
// selection's anchor (spec.md §4.8).
type Clipboard struct {
	buffer []rune

	beginColumn int
	beginRow    int
	beginOffset int // -1 until Start/Extend has been called
}

// New creates an empty Clipboard.
func New() *Clipboard {
	return &Clipboard{beginOffset: -1}
}

// Content returns the current buffer contents.
func (c *Clipboard) Content() []rune {
	return append([]rune(nil), c.buffer...)
}

// Clear empties the buffer.
func (c *Clipboard) Clear() {
	c.buffer = nil
}

// Start begins a new cut at (column, row), discarding any previous
// content (cpbStart).
func (c *Clipboard) Start(column, row int) {
	c.Clear()
	c.Extend(column, row)
}

// Extend moves the selection anchor without discarding the buffer, so
// a later copy appends rather than replaces (cpbExtend, used by
// BlkCutAppend).
func (c *Clipboard) Extend(column, row int) {
	c.beginColumn = column
	c.beginRow = row
	c.beginOffset = len(c.buffer)
}

// copyRegion reads fromColumn..toColumn, fromRow..toRow from backend,
// folding control/space characters to plain spaces and separating
// rows with '\r', exactly as copy() does.
func copyRegion(backend screen.Backend, fromColumn, fromRow, toColumn, toRow int) []rune {
	columns := toColumn - fromColumn + 1
	rows := toRow - fromRow + 1
	if columns < 1 || rows < 1 {
		return nil
	}

	out := make([]rune, 0, rows*(columns+1))
	for row := fromRow; row <= toRow; row++ {
		box := screen.Box{Left: fromColumn, Top: row, Width: columns, Height: 1}
		chars := backend.ReadCharacters(box)
		for _, ch := range chars {
			r := ch.Text
			if unicode.IsControl(r) || unicode.IsSpace(r) {
				r = ' '
			}
			out = append(out, r)
		}
		if row != toRow {
			out = append(out, '\r')
		}
	}
	return out
}

// trimTrailingSpaces collapses a run of spaces immediately preceding a
// '\r' or the end of the buffer, as the switch in cpbRectangularCopy
// does (spaces are only ever emitted once a non-space character, or
// the row separator, is reached).
func trimTrailingSpaces(in []rune) []rune {
	out := make([]rune, 0, len(in))
	spaces := 0
	for _, r := range in {
		switch r {
		case ' ':
			spaces++
			continue
		case '\r':
			spaces = 0
		}
		for ; spaces > 0; spaces-- {
			out = append(out, ' ')
		}
		out = append(out, r)
	}
	return out
}

// collapseParagraphs removes the '\r' row separators with
// cpbLinearCopy's newlines/spaces bookkeeping: a single break with no
// adjacent spaces is dropped, joining the two rows directly, while two
// or more breaks in a row, or a break adjacent to spaces, collapse with
// those spaces into one space. No row break survives in the output,
// and spaces or breaks at the very end are dropped.
func collapseParagraphs(in []rune) []rune {
	out := make([]rune, 0, len(in))
	spaces := 0
	newlines := 0
	for _, r := range in {
		switch r {
		case ' ':
			spaces++
			continue
		case '\r':
			newlines++
			continue
		}

		if newlines > 0 {
			if newlines > 1 || spaces > 0 {
				spaces = 1
			}
			newlines = 0
		}
		for ; spaces > 0; spaces-- {
			out = append(out, ' ')
		}
		out = append(out, r)
	}
	return out
}

func (c *Clipboard) append(text []rune) bool {
	if text == nil {
		return false
	}
	if c.buffer != nil {
		head := append([]rune(nil), c.buffer[:c.beginOffset]...)
		c.buffer = append(head, text...)
	} else {
		c.buffer = text
	}
	return true
}

// RectangularCopy appends the rectangle from the selection anchor to
// (column, row), trimming each row's trailing spaces (cpbRectangularCopy).
func (c *Clipboard) RectangularCopy(backend screen.Backend, column, row int) bool {
	if c.beginOffset < 0 {
		return false
	}
	text := copyRegion(backend, c.beginColumn, c.beginRow, column, row)
	return c.append(trimTrailingSpaces(text))
}

// LinearCopy appends the screen's line-wrapped text from the
// selection anchor through (column, row), collapsing wrapped-line
// breaks into spaces so consecutive screen rows read as one paragraph
// (cpbLinearCopy).
func (c *Clipboard) LinearCopy(backend screen.Backend, column, row int) bool {
	if c.beginOffset < 0 {
		return false
	}
	desc := backend.Describe()
	if desc.Unreadable != nil {
		return false
	}
	rightColumn := desc.Columns - 1

	text := copyRegion(backend, 0, c.beginRow, rightColumn, row)
	if text == nil {
		return false
	}

	if column < rightColumn {
		// Trim back to just past the last '\r' at or before column+1
		// worth of trailing text on the final row, as copy()'s
		// "adjustment" step does.
		cut := len(text)
		for cut > 0 && text[cut-1] != '\r' {
			cut--
		}
		allowed := cut + column + 1
		if allowed < len(text) {
			text = text[:allowed]
		}
	}

	if c.beginColumn > 0 {
		start := 0
		for start < len(text) && text[start] != '\r' {
			start++
		}
		if start > c.beginColumn {
			start = c.beginColumn
		}
		text = text[start:]
	}

	return c.append(collapseParagraphs(text))
}

// Paste synthesises the buffer's contents as keystrokes into backend
// (cpbPaste). It reports how many runes were inserted before the
// backend refused one, which is len(buffer) on full success.
func (c *Clipboard) Paste(backend screen.Backend) int {
	for i, r := range c.buffer {
		if !backend.InsertKey(screen.Key{Rune: r}) {
			return i
		}
	}
	return len(c.buffer)
}

// SyncToHost mirrors the buffer to the host OS clipboard, where one is
// available (spec.md §7 supplement: optional host clipboard bridge).
func (c *Clipboard) SyncToHost() error {
	return hostclip.WriteAll(string(c.buffer))
}

// SyncFromHost replaces the buffer with the host OS clipboard's
// current contents.
func (c *Clipboard) SyncFromHost() error {
	text, err := hostclip.ReadAll()
	if err != nil {
		return err
	}
	c.buffer = []rune(text)
	c.beginOffset = len(c.buffer)
	return nil
}
