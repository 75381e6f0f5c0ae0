package texttable

import "github.com/brltty-go/brld/internal/braille"

// asciiBraille is the standard North American Braille ASCII cell for
// each of the 64 characters it covers (space through underscore),
// expressed as 1-based dot numbers. It is the widely-published
// computer-braille mapping BRLTTY's own text tables are built from;
// the retrieved source pack does not carry a literal table file, so
// this is transcribed from the public standard rather than a
// repository source (see DESIGN.md).
var asciiBraille = map[byte][]int{
	' ': {}, '!': {2, 3, 4, 6}, '"': {5}, '#': {3, 4, 5, 6},
	'$': {1, 2, 4, 6}, '%': {1, 4, 6}, '&': {1, 2, 3, 4, 6}, '\'': {3},
	'(': {1, 2, 3, 5, 6}, ')': {2, 3, 4, 5, 6}, '*': {1, 6}, '+': {3, 4, 6},
	',': {6}, '-': {3, 6}, '.': {4, 6}, '/': {3, 4},
	'0': {3, 5, 6}, '1': {2}, '2': {2, 3}, '3': {2, 5},
	'4': {2, 5, 6}, '5': {2, 6}, '6': {2, 3, 5}, '7': {2, 3, 5, 6},
	'8': {2, 3, 6}, '9': {3, 5},
	':': {1, 5, 6}, ';': {5, 6}, '<': {1, 2, 6}, '=': {1, 2, 3, 4, 5, 6},
	'>': {3, 4, 5}, '?': {1, 4, 5, 6},
	'@': {4},
	'a': {1}, 'b': {1, 2}, 'c': {1, 4}, 'd': {1, 4, 5}, 'e': {1, 5},
	'f': {1, 2, 4}, 'g': {1, 2, 4, 5}, 'h': {1, 2, 5}, 'i': {2, 4}, 'j': {2, 4, 5},
	'k': {1, 3}, 'l': {1, 2, 3}, 'm': {1, 3, 4}, 'n': {1, 3, 4, 5}, 'o': {1, 3, 5},
	'p': {1, 2, 3, 4}, 'q': {1, 2, 3, 4, 5}, 'r': {1, 2, 3, 5}, 's': {2, 3, 4}, 't': {2, 3, 4, 5},
	'u': {1, 3, 6}, 'v': {1, 2, 3, 6}, 'w': {2, 4, 5, 6}, 'x': {1, 3, 4, 6}, 'y': {1, 3, 4, 5, 6}, 'z': {1, 3, 5, 6},
	'[': {2, 4, 6}, '\\': {1, 2, 5, 6}, ']': {1, 2, 4, 5, 6}, '^': {4, 5}, '_': {4, 5, 6},
}

// NewASCII builds a Table covering the 64-character Braille ASCII
// repertoire, upper-case letters sharing their lower-case cell (BRLTTY
// leaves case to a capitalisation indicator/blinking-capitals overlay
// rather than a distinct cell, matching render.Options.BlinkingCapitals).
// Fallback is used for anything outside that repertoire.
func NewASCII(fallback braille.Dots) *Table {
	t := New(fallback)
	for b, dotNumbers := range asciiBraille {
		var d braille.Dots
		for _, n := range dotNumbers {
			d |= braille.ByNumber(n)
		}
		t.Set(rune(b), d)
		if b >= 'a' && b <= 'z' {
			t.Set(rune(b-'a'+'A'), d)
		}
	}
	return t
}
