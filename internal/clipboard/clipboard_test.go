package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brltty-go/brld/internal/screen/memscreen"
)

func TestRectangularCopyTrimsTrailingSpaces(t *testing.T) {
	backend := memscreen.New(10, 3)
	backend.SetText(0, "hi   ", 0)

	c := New()
	c.Start(0, 0)
	ok := c.RectangularCopy(backend, 4, 0)
	require.True(t, ok)
	assert.Equal(t, "hi", string(c.Content()))
}

func TestRectangularCopyWithoutStartFails(t *testing.T) {
	backend := memscreen.New(10, 3)
	c := New()
	assert.False(t, c.RectangularCopy(backend, 1, 0))
}

func TestExtendAppendsRatherThanReplaces(t *testing.T) {
	backend := memscreen.New(10, 3)
	backend.SetText(0, "ab", 0)
	backend.SetText(1, "cd", 0)

	c := New()
	c.Start(0, 0)
	c.RectangularCopy(backend, 1, 0)
	c.Extend(0, 1)
	c.RectangularCopy(backend, 1, 1)

	assert.Equal(t, "abcd", string(c.Content()))
}

func TestLinearCopyCollapsesWrappedLines(t *testing.T) {
	backend := memscreen.New(5, 2)
	backend.SetText(0, "hello", 0)
	backend.SetText(1, "world", 0)

	c := New()
	c.Start(0, 0)
	ok := c.LinearCopy(backend, 4, 1)
	require.True(t, ok)
	assert.Contains(t, string(c.Content()), "hello")
}

func TestPasteInsertsEachRune(t *testing.T) {
	backend := memscreen.New(10, 3)
	c := New()
	c.buffer = []rune("hi")

	n := c.Paste(backend)
	assert.Equal(t, 2, n)
	keys := backend.InsertedKeys()
	require.Len(t, keys, 2)
	assert.Equal(t, 'h', keys[0].Rune)
	assert.Equal(t, 'i', keys[1].Rune)
}

func TestClearEmptiesBuffer(t *testing.T) {
	c := New()
	c.buffer = []rune("stuff")
	c.Clear()
	assert.Empty(t, c.Content())
}
