package texttable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brltty-go/brld/internal/braille"
)

func TestTranslateFallsBackForUnknownRune(t *testing.T) {
	tbl := New(braille.Dot1 | braille.Dot2 | braille.Dot7 | braille.Dot8)
	assert.Equal(t, tbl.Fallback, tbl.Translate('z'))
}

func TestSetThenTranslate(t *testing.T) {
	tbl := New(0)
	tbl.Set('a', braille.Dot1)
	assert.Equal(t, braille.Dot1, tbl.Translate('a'))
}

func TestTranslateStringPadsWithZero(t *testing.T) {
	tbl := New(braille.Dot8)
	tbl.Set('a', braille.Dot1)

	out := make([]braille.Dots, 3)
	tbl.TranslateString([]rune{'a'}, out)

	assert.Equal(t, braille.Dot1, out[0])
	assert.EqualValues(t, 0, out[1])
	assert.EqualValues(t, 0, out[2])
}

func TestFromLegacyByteKnownCharset(t *testing.T) {
	r, ok := FromLegacyByte("ISO8859-1", 0X41) // 'A' is identical in ISO8859-1
	assert.True(t, ok)
	assert.Equal(t, 'A', r)
}

func TestFromLegacyByteUnknownCharset(t *testing.T) {
	_, ok := FromLegacyByte("NOT-A-REAL-CHARSET", 0X41)
	assert.False(t, ok)
}

func TestLoadLegacyCharsetPopulatesTable(t *testing.T) {
	tbl := New(0)
	LoadLegacyCharset(tbl, "ISO8859-1", func(r rune) (braille.Dots, bool) {
		if r == 'A' {
			return braille.Dot1, true
		}
		return 0, false
	})
	assert.Equal(t, braille.Dot1, tbl.Translate('A'))
}
