package braille

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByNumberRange(t *testing.T) {
	assert.Equal(t, Dot1, ByNumber(1))
	assert.Equal(t, Dot8, ByNumber(8))
	assert.EqualValues(t, 0, ByNumber(0))
	assert.EqualValues(t, 0, ByNumber(9))
}

func TestIdentityOutputTableIsPassthrough(t *testing.T) {
	tbl := Identity()
	assert.EqualValues(t, 0X55, tbl.Translate(0X55))
}

func TestNewOutputTablePermutes(t *testing.T) {
	// Reverse the dot numbering: dot 1 goes out on wire bit for dot 8, etc.
	tbl := NewOutputTable([8]byte{0X80, 0X40, 0X20, 0X10, 0X08, 0X04, 0X02, 0X01})
	got := tbl.Translate(Dot1)
	assert.EqualValues(t, 0X80, got)
}

func TestCursorDots(t *testing.T) {
	assert.Equal(t, Dot7|Dot8, CursorDots(false))
	assert.Equal(t, All8, CursorDots(true))
}

func TestUnderlineDots(t *testing.T) {
	assert.Equal(t, Dot7|Dot8, UnderlineDots(false))
	assert.Equal(t, Dot3|Dot6|Dot7|Dot8, UnderlineDots(true))
}
