// Package screen defines the one external contract this subsystem
// consumes that it does not itself implement: the textual console
// ("screen") back-end (spec.md §6). Everything in this package is an
// interface or a plain value type; the real back-end (a Linux VT, an
// X11 terminal emulator, an Android accessibility tree, ...) lives
// outside this repository and is an external collaborator per
// spec.md §1.
package screen

// Character is one screen cell: a Unicode code point plus an 8-bit
// attribute byte (spec.md §3, ScreenCharacter{text, attributes}).
type Character struct {
	Text       rune
	Attributes byte
}

// Box is a rectangular region of the screen, used by ReadCharacters
// and ReadText.
type Box struct {
	Left, Top, Width, Height int
}

// Description is a Screen snapshot (spec.md §3). When Unreadable is
// non-nil, Columns/Rows/CursorX/CursorY are meaningless and Unreadable
// carries the back-end's human-readable explanation instead
// (spec.md §7, ScreenUnreadable).
type Description struct {
	Columns, Rows    int
	CursorX, CursorY int
	Number           int
	Unreadable       *string
}

// Valid reports whether the cursor position satisfies spec.md §3's
// invariant (0 <= posx < cols, 0 <= posy < rows) whenever the screen is
// readable. It is always true when Unreadable is set, since the
// invariant is explicitly suspended in that case.
func (d Description) Valid() bool {
	if d.Unreadable != nil {
		return true
	}
	return d.CursorX >= 0 && d.CursorX < d.Columns &&
		d.CursorY >= 0 && d.CursorY < d.Rows
}

// Key is a synthetic keystroke injected back into the screen, as
// produced by the command dispatcher's passkey/passchar/passdots
// handling and by clipboard paste.
type Key struct {
	Rune rune // 0 if this is a non-printable symbolic key
	Sym  Symbol
}

// Symbol names a non-printable key for InsertKey, mirroring brldefs.h's
// BRL_KEY_* enumeration (spec.md §4.3).
type Symbol int

const (
	SymNone Symbol = iota
	SymEnter
	SymTab
	SymBackspace
	SymEscape
	SymCursorLeft
	SymCursorRight
	SymCursorUp
	SymCursorDown
	SymPageUp
	SymPageDown
	SymHome
	SymEnd
	SymInsert
	SymDelete
	SymFunctionBase // SymFunctionBase+n is function key n
)

// Command is an opaque, back-end-defined high-level command forwarded
// by the "passthrough" dispatcher path (spec.md §6,
// executeCommand(cmd)->consumed?). Its representation is owned by the
// back-end; this subsystem only ever forwards a value it received
// from, or is documented to construct for, that back-end.
type Command int

// Backend is the screen back-end contract of spec.md §6. None of these
// methods returns an error: the action methods report success as a
// bool, and a failed screen read surfaces through Describe's
// Unreadable field, matching how the
// original treats a failed screen read as a displayable state rather
// than a fatal error.
type Backend interface {
	// Describe returns the current screen snapshot.
	Describe() Description

	// ReadCharacters returns the character+attribute contents of box,
	// row-major, padded with blanks for any part of box outside the
	// current screen dimensions.
	ReadCharacters(box Box) []Character

	// ReadText returns just the text runes of box, same padding rule
	// as ReadCharacters.
	ReadText(box Box) []rune

	// RouteCursor asks the back-end to move its own cursor to
	// (col,row) on the given virtual terminal (or the current one, if
	// screenNumber is negative).
	RouteCursor(col, row, screenNumber int) bool

	// InsertKey synthesises a keypress on the back-end, as used by
	// passkey/passchar/passdots handling and by clipboard paste.
	InsertKey(key Key) bool

	// SwitchVirtualTerminal changes which virtual terminal the
	// back-end is presenting.
	SwitchVirtualTerminal(number int) bool

	// ExecuteCommand forwards an opaque back-end command and reports
	// whether the back-end consumed it.
	ExecuteCommand(cmd Command) bool

	// CurrentVirtualTerminal returns the number of the virtual
	// terminal currently active on the back-end, or a negative number
	// if unknown (spec.md §6, "negative means unknown").
	CurrentVirtualTerminal() int

	// HighlightRegion asks the back-end to visually highlight a
	// rectangle, used while a clipboard cut is in progress.
	HighlightRegion(left, right, top, bottom int)
}

// PointerBackend is implemented by a Backend that also exposes a
// pointer position, used by the session model's
// windowFollowsPointer feature (spec.md §4.5).
type PointerBackend interface {
	Backend
	PointerPosition() (col, row int, ok bool)
}
