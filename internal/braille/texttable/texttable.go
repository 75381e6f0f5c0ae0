// Package texttable builds and queries the per-driver text table: the
// char32 -> dots mapping a driver uses to translate screen text into
// braille cells (spec.md §3, "a separate textTable: char32->u8 maps
// characters to dots").
package texttable

import (
	"sync"

	gdencoding "github.com/gdamore/encoding"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/brltty-go/brld/internal/braille"
)

// Table maps a Unicode code point to an internal 8-bit dots pattern.
// Lookup never allocates; unmapped runes resolve through Fallback.
type Table struct {
	entries  map[rune]braille.Dots
	Fallback braille.Dots
}

// New creates an empty table. Fallback is the pattern used for any rune
// that has no explicit entry (typically an 8-dot "unknown character"
// block, dots 1-2-7-8 being the common choice across vendor tables).
func New(fallback braille.Dots) *Table {
	return &Table{entries: make(map[rune]braille.Dots), Fallback: fallback}
}

// Set assigns the dots pattern for one rune.
func (t *Table) Set(r rune, dots braille.Dots) {
	t.entries[r] = dots
}

// Translate returns the dots pattern for r, or Fallback if r is absent.
func (t *Table) Translate(r rune) braille.Dots {
	if d, ok := t.entries[r]; ok {
		return d
	}
	return t.Fallback
}

// TranslateString fills out with the translation of each rune in s,
// truncating or padding out to exactly len(out) cells with blank (0)
// cells for any position beyond the input.
func (t *Table) TranslateString(s []rune, out []braille.Dots) {
	for i := range out {
		if i < len(s) {
			out[i] = t.Translate(s[i])
		} else {
			out[i] = 0
		}
	}
}

// legacyCharsets registers the 8-bit encodings a driver's compiled table
// can declare as its native repertoire when a code point falls outside
// the dots it already knows — mirroring how a real text-table compiler
// lets a table say "anything else, transliterate from ISO8859-5" rather
// than leaving every untranslated rune as a blank cell.
var (
	legacyOnce sync.Once
	legacy     map[string]encoding.Encoding
)

func legacyCharsets() map[string]encoding.Encoding {
	legacyOnce.Do(func() {
		legacy = map[string]encoding.Encoding{
			"ISO8859-1": charmap.ISO8859_1,
			"ISO8859-2": charmap.ISO8859_2,
			"ISO8859-5": charmap.ISO8859_5,
			"ISO8859-7": charmap.ISO8859_7,
			"KOI8-R":    gdencoding.KOI8R,
			"GBK":       gdencoding.GBK,
			"GB18030":   gdencoding.GB18030,
			"Big5":      gdencoding.Big5,
		}
	})
	return legacy
}

// FromLegacyByte resolves a single byte of the named legacy charset to the
// rune it represents, so a table built against that charset can be keyed
// by Unicode throughout. It reports ok=false for an unregistered charset
// name or an undefined byte in that charset.
func FromLegacyByte(charset string, b byte) (r rune, ok bool) {
	enc, found := legacyCharsets()[charset]
	if !found {
		return 0, false
	}
	decoded, err := enc.NewDecoder().Bytes([]byte{b})
	if err != nil || len(decoded) == 0 {
		return 0, false
	}
	rs := []rune(string(decoded))
	if len(rs) == 0 {
		return 0, false
	}
	return rs[0], true
}

// LoadLegacyCharset populates t with dots for every byte 0..255 of the
// named legacy charset, using classify to turn each decoded rune into a
// dots pattern (typically a literary-braille text table keyed by rune).
// This is how a driver whose table was authored against a non-UTF-8
// device charset (common on older hardware referenced in the original
// BRLTTY table sources) gets a Unicode-keyed Table without hand
// enumerating every byte.
func LoadLegacyCharset(t *Table, charset string, classify func(rune) (braille.Dots, bool)) {
	for b := 0; b < 256; b++ {
		r, ok := FromLegacyByte(charset, byte(b))
		if !ok {
			continue
		}
		if dots, ok := classify(r); ok {
			t.Set(r, dots)
		}
	}
}
