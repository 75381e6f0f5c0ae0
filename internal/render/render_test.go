package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brltty-go/brld/internal/braille"
	"github.com/brltty-go/brld/internal/braille/texttable"
	"github.com/brltty-go/brld/internal/screen"
)

func newTestRenderer() *Renderer {
	table := texttable.New(braille.All8)
	table.Set('a', braille.Dot1)
	table.Set('A', braille.Dot1)
	table.Set(' ', 0)
	return New(table, func(attr byte) (r, g, b uint8) {
		if attr == 0 {
			return 0, 0, 0
		}
		return 255, 255, 255
	})
}

func chars(text string, attrs byte) []screen.Character {
	out := make([]screen.Character, len(text))
	for i, r := range text {
		out[i] = screen.Character{Text: r, Attributes: attrs}
	}
	return out
}

func TestRenderTranslatesText(t *testing.T) {
	r := newTestRenderer()
	win := r.Render(chars("a", 0), 1, 1, -1, -1, false, Options{}, BlinkState{})
	assert.Equal(t, braille.Dot1, win.Cells[0])
}

func TestRenderCursorOverlayWhenShown(t *testing.T) {
	r := newTestRenderer()
	win := r.Render(chars("a", 0), 1, 1, 0, 0, true, Options{ShowCursor: true}, BlinkState{CursorOn: true})
	assert.Equal(t, 0, win.Cursor)
	assert.NotZero(t, win.Cells[0]&(braille.Dot7|braille.Dot8))
}

func TestRenderCursorSuppressedWhenBlinkOff(t *testing.T) {
	r := newTestRenderer()
	win := r.Render(chars("a", 0), 1, 1, 0, 0, true, Options{ShowCursor: true, BlinkingCursor: true}, BlinkState{CursorOn: false})
	assert.Equal(t, braille.Dot1, win.Cells[0])
}

func TestRenderBlinkingCapitalsBlanksUppercase(t *testing.T) {
	r := newTestRenderer()
	win := r.Render(chars("A", 0), 1, 1, -1, -1, false, Options{BlinkingCapitals: true}, BlinkState{CapitalOn: false})
	assert.EqualValues(t, 0, win.Cells[0])
}

func TestRenderDisplayModeUsesAttributeDots(t *testing.T) {
	r := newTestRenderer()
	win := r.Render(chars("a", 0xFF), 1, 1, -1, -1, false, Options{DisplayMode: true}, BlinkState{})
	assert.Equal(t, braille.All8, win.Cells[0])
}

func TestRenderSixDotMasksToLower6(t *testing.T) {
	table := texttable.New(braille.All8)
	table.Set('a', braille.All8)
	r := New(table, func(attr byte) (uint8, uint8, uint8) { return 0, 0, 0 })

	win := r.Render(chars("a", 0), 1, 1, -1, -1, false, Options{SixDot: true}, BlinkState{})
	assert.Equal(t, braille.Lower6, win.Cells[0])
}
