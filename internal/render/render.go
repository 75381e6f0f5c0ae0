// Package render is the cell renderer (C4): turns one window's worth
// of screen.Character into the driver's internal braille.Dots, folding
// in cursor/attribute overlays, blinking capitals, and attributes
// display mode. Grounded on Programs/brltty.c's main update loop
// (window fill, blinking-capitals blanking, displayMode dots-from-attributes
// vs underline overlay).
package render

import (
	"strings"
	"unicode"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/brltty-go/brld/internal/braille"
	"github.com/brltty-go/brld/internal/braille/texttable"
	"github.com/brltty-go/brld/internal/screen"
)

// BlinkState is the set of toggled-on/off blink phases the renderer
// consults; the update loop (C7) owns the actual timers and flips
// these once per their configured interval.
type BlinkState struct {
	CursorOn    bool
	AttributeOn bool
	CapitalOn   bool
}

// Options configures one render pass (spec.md §4.4: per-session
// display preferences that change what the renderer produces).
type Options struct {
	DisplayMode        bool // true: show attributes instead of text
	ShowCursor         bool
	BlinkingCursor     bool
	BlockCursor        bool
	ShowAttributes     bool
	BlinkingAttributes bool
	BlinkingCapitals   bool
	SixDot             bool
	Contracted         bool // delegate text rows to the Contractor (spec.md §4.4)
}

// Window is the rendered result: one row of internal dot cells ready
// for a driver.OutputTable, plus the index of the cursor cell (or -1).
type Window struct {
	Cells  []braille.Dots
	Cursor int
}

// Renderer converts screen characters into braille cells using a
// caller-supplied character table.
type Renderer struct {
	table      *texttable.Table
	attrColors [256]attrClass
	contractor Contractor
}

// Contractor performs contracted-braille translation (spec.md §4.4): it
// maps a run of input text to a shorter run of braille cells, plus a
// mapping array recording which output cell each consumed input rune
// landed in. Contract must consume a prefix of text and produce at
// most maxCells cells; len(mapping) reports how many runes of that
// prefix were actually consumed (mapping[i] is the output cell rune i
// of the consumed prefix landed in).
//
// This is the delegate spec.md calls "an external contractor" — a full
// contraction-table engine (liblouis and similar) is out of scope, as
// is the table *compiler* spec.md's Non-goals name explicitly; see
// DESIGN.md for what SetContractor's default wiring implements instead.
type Contractor interface {
	Contract(text []rune, maxCells int) (cells []braille.Dots, mapping []int)
}

// SetContractor installs the Contractor used when Options.Contracted is
// set. A nil Contractor disables contraction even if the option is set.
func (r *Renderer) SetContractor(c Contractor) { r.contractor = c }

// CanContract reports whether a Contractor has been installed.
// RenderContractedLine requires one.
func (r *Renderer) CanContract() bool { return r.contractor != nil }

type attrClass struct {
	heavy bool // bright/bold foreground: underline uses the heavier pattern
}

// New builds a Renderer. attributeColors classifies each of the 256
// possible screen attribute bytes into a color (as a legacy console
// palette would), used only to decide between the light and heavy
// underline pattern; go-colorful computes perceptual lightness so the
// split tracks how the color would actually look, not just a raw
// intensity-bit heuristic.
func New(table *texttable.Table, attributeColors func(attr byte) (r, g, b uint8)) *Renderer {
	r := &Renderer{table: table}
	for i := 0; i < 256; i++ {
		cr, cg, cb := attributeColors(byte(i))
		c := colorful.Color{R: float64(cr) / 255, G: float64(cg) / 255, B: float64(cb) / 255}
		_, _, l := c.Hsl()
		r.attrColors[i] = attrClass{heavy: l > 0.5}
	}
	return r
}

// Render builds one window's cells from characters (row-major,
// rows*cols long), the live cursor position within the window
// (col, row, or ok=false if off-window), and blink phase.
func (r *Renderer) Render(characters []screen.Character, cols, rows int, cursorCol, cursorRow int, cursorOK bool, opts Options, blink BlinkState) Window {
	cells := make([]braille.Dots, len(characters))
	cursorIndex := -1

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			ch := characters[i]

			text := ch.Text
			if opts.BlinkingCapitals && !blink.CapitalOn && isUpper(text) {
				text = ' '
			}

			var dots braille.Dots
			if opts.DisplayMode {
				dots = r.attributeDots(ch.Attributes)
			} else {
				dots = r.table.Translate(text)
				if opts.SixDot {
					dots &= braille.Lower6
				}
				if opts.ShowAttributes && (!opts.BlinkingAttributes || blink.AttributeOn) {
					dots |= r.underlineOverlay(ch.Attributes)
				}
			}

			cells[i] = dots

			if cursorOK && col == cursorCol && row == cursorRow {
				cursorIndex = i
			}
		}
	}

	if cursorIndex >= 0 && opts.ShowCursor && (!opts.BlinkingCursor || blink.CursorOn) {
		cells[cursorIndex] |= braille.CursorDots(opts.BlockCursor)
	}

	return Window{Cells: cells, Cursor: cursorIndex}
}

// RenderContractedLine contracts one full screen row of text (not a
// pre-windowed slice — the contractor needs to see past the current
// window to find the next word boundary), sized to at most cols
// display cells. It returns the rendered window plus the winX the
// caller should adopt, chasing the cursor one word boundary at a time
// when the current window can't show it (spec.md §4.4: "the renderer
// ... adjusts winx by the length consumed. If the screen doesn't fit,
// the tracker incrementally moves the window to show the cursor at a
// natural word boundary").
func (r *Renderer) RenderContractedLine(text []rune, cols int, cursorCol int, cursorOK bool, winX int) (Window, int) {
	start := winX
	if start < 0 {
		start = 0
	}
	if start > len(text) {
		start = len(text)
	}

	for attempt := 0; attempt <= len(text); attempt++ {
		cells, mapping := r.contractor.Contract(text[start:], cols)
		consumed := len(mapping)

		cursorIndex := -1
		if cursorOK {
			rel := cursorCol - start
			if rel >= 0 && rel < consumed {
				cursorIndex = mapping[rel]
			}
		}

		if !cursorOK || cursorIndex >= 0 || cursorCol < start {
			return contractedWindow(cells, cursorIndex, cols), start
		}

		next := wordBoundaryAtOrBefore(text, cursorCol)
		if next <= start {
			next = start + consumed
			if next <= start {
				next = start + 1
			}
		}
		start = next
	}

	// The cursor never fell within a contracted span (pathological
	// text with no word boundaries); show it raw rather than loop.
	cells, mapping := r.contractor.Contract(text[cursorCol:], cols)
	cursorIndex := -1
	if cursorOK && len(mapping) > 0 {
		cursorIndex = mapping[0]
	}
	return contractedWindow(cells, cursorIndex, cols), cursorCol
}

func contractedWindow(cells []braille.Dots, cursorIndex, cols int) Window {
	if len(cells) < cols {
		padded := make([]braille.Dots, cols)
		copy(padded, cells)
		cells = padded
	}
	return Window{Cells: cells, Cursor: cursorIndex}
}

// wordBoundaryAtOrBefore returns the rune index of the start of the
// word containing or immediately preceding limit: the first index at
// or before limit where a space is immediately followed by a non-space
// rune. It returns 0 (the implicit boundary at the start of text) if no
// such transition exists before limit.
func wordBoundaryAtOrBefore(text []rune, limit int) int {
	if limit > len(text) {
		limit = len(text)
	}
	for i := limit; i > 0; i-- {
		if text[i-1] == ' ' && (i == len(text) || text[i] != ' ') {
			return i
		}
	}
	return 0
}

func (r *Renderer) attributeDots(attr byte) braille.Dots {
	if r.attrColors[attr].heavy {
		return braille.All8
	}
	return braille.Lower6
}

func (r *Renderer) underlineOverlay(attr byte) braille.Dots {
	return braille.UnderlineDots(r.attrColors[attr].heavy)
}

func isUpper(ch rune) bool {
	return ch >= 'A' && ch <= 'Z'
}

// Translate is exposed so drivers/tests can translate a single
// character outside of a full Render pass (spec.md §4.4, describe-
// character command).
func (r *Renderer) Translate(ch rune) braille.Dots {
	return r.table.Translate(ch)
}

// wholeWordSigns are the one-cell whole-word contractions of English
// Braille, American Edition Grade 2: five short words each stand for an
// entire cell rather than being spelled letter by letter.
var wholeWordSigns = map[string]braille.Dots{
	"and":  braille.Dot1 | braille.Dot2 | braille.Dot3 | braille.Dot4 | braille.Dot6,
	"for":  braille.Dot1 | braille.Dot2 | braille.Dot3 | braille.Dot4 | braille.Dot5 | braille.Dot6,
	"of":   braille.Dot1 | braille.Dot2 | braille.Dot3 | braille.Dot5 | braille.Dot6,
	"the":  braille.Dot2 | braille.Dot3 | braille.Dot4 | braille.Dot6,
	"with": braille.Dot2 | braille.Dot3 | braille.Dot4 | braille.Dot5 | braille.Dot6,
}

// SimpleContractor is a Contractor that only knows the five literary-
// braille whole-word signs above; everything else falls back to one
// cell per character via the same texttable.Table the uncontracted
// path uses. It stands in for the full contraction-table engine
// (liblouis and similar) that spec.md's "external contractor" names —
// see DESIGN.md for why no such library is in the wired dependency
// set.
type SimpleContractor struct {
	Table *texttable.Table
}

// Contract implements Contractor.
func (c *SimpleContractor) Contract(text []rune, maxCells int) ([]braille.Dots, []int) {
	var cells []braille.Dots
	var mapping []int

	i := 0
	for i < len(text) && len(cells) < maxCells {
		if word, wordLen := matchWholeWordSign(text[i:]); wordLen > 0 {
			cells = append(cells, wholeWordSigns[word])
			cellIndex := len(cells) - 1
			for k := 0; k < wordLen; k++ {
				mapping = append(mapping, cellIndex)
			}
			i += wordLen
			continue
		}

		cells = append(cells, c.Table.Translate(text[i]))
		mapping = append(mapping, len(cells)-1)
		i++
	}

	return cells, mapping
}

// matchWholeWordSign reports the sign word and its rune length if text
// begins with one of wholeWordSigns followed by a word boundary (end of
// text or a non-letter/digit), so "thence" doesn't contract to "the"
// plus "nce".
func matchWholeWordSign(text []rune) (string, int) {
	for word := range wholeWordSigns {
		n := len(word)
		if len(text) < n || !strings.EqualFold(string(text[:n]), word) {
			continue
		}
		if len(text) > n && isWordRune(text[n]) {
			continue
		}
		return word, n
	}
	return "", 0
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
