package texttable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brltty-go/brld/internal/braille"
)

func TestNewASCIISpaceIsBlank(t *testing.T) {
	tbl := NewASCII(braille.All8)
	assert.EqualValues(t, 0, tbl.Translate(' '))
}

func TestNewASCIILowerAndUpperShareACell(t *testing.T) {
	tbl := NewASCII(braille.All8)
	assert.Equal(t, tbl.Translate('a'), tbl.Translate('A'))
	assert.Equal(t, braille.Dot1, tbl.Translate('a'))
}

func TestNewASCIIFallsBackOutsideRepertoire(t *testing.T) {
	tbl := NewASCII(braille.Dot7 | braille.Dot8)
	assert.Equal(t, braille.Dot7|braille.Dot8, tbl.Translate('€'))
}
