package prefs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	p := Default()
	p.ShowAttributes = true
	p.SixDot = true
	p.CursorBlinkPeriodMs = 777

	var buf bytes.Buffer
	require.NoError(t, p.Save(&buf))

	got, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	_, err := Load(strings.NewReader("not a prefs file at all"))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	p := Default()
	require.NoError(t, p.Save(&buf))

	raw := buf.Bytes()
	// version is the two bytes right after the 4-byte magic.
	raw[4] = 0xFF
	raw[5] = 0xFF

	_, err := Load(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestDefaultMatchesFactoryValues(t *testing.T) {
	p := Default()
	assert.True(t, p.SlidingWindow)
	assert.True(t, p.ShowCursor)
	assert.True(t, p.BlinkingCursor)
	assert.False(t, p.ShowAttributes)
	assert.True(t, p.Autorepeat)
	assert.True(t, p.AlertTunes)
	assert.EqualValues(t, 500, p.CursorBlinkPeriodMs)
	assert.EqualValues(t, 400, p.RepeatInitialDelayMs)
}
