package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brltty-go/brld/internal/clipboard"
	"github.com/brltty-go/brld/internal/driver"
	"github.com/brltty-go/brld/internal/prefs"
	"github.com/brltty-go/brld/internal/screen"
	"github.com/brltty-go/brld/internal/screen/memscreen"
	"github.com/brltty-go/brld/internal/session"
)

func newDispatcher(cols, rows int) (*Dispatcher, *memscreen.Screen, *session.Session) {
	backend := memscreen.New(cols, rows)
	sess := session.New(backend, cols, rows)
	p := prefs.Default()
	return New(sess, clipboard.New(), &p), backend, sess
}

func TestDescribeCharacterFormat(t *testing.T) {
	ch := screen.Character{Text: 'A', Attributes: 0X07}
	got := describeCharacter(ch)
	assert.Equal(t, "char 65 (0X41): light grey on black", got)
}

func TestDescribeCharacterBlink(t *testing.T) {
	ch := screen.Character{Text: 'A', Attributes: 0X07 | attrBlink}
	got := describeCharacter(ch)
	assert.Contains(t, got, " blink")
}

func TestDescribeCharacterWide(t *testing.T) {
	ch := screen.Character{Text: '中', Attributes: 0} // a double-width CJK ideograph
	got := describeCharacter(ch)
	assert.Contains(t, got, "[wide]")
}

func TestBlkDescCharDispatch(t *testing.T) {
	d, backend, _ := newDispatcher(10, 5)
	backend.SetText(0, "A", 0X07)

	res := d.Execute(backend, driver.BlkDescChar)
	require.NotEmpty(t, res.Describe)
	assert.Contains(t, res.Describe, "char 65")
}

func TestTogglePreferenceCommandsFlipAndReport(t *testing.T) {
	d, backend, _ := newDispatcher(10, 5)

	before := d.Prefs.ShowAttributes
	res := d.Execute(backend, driver.CmdAttrVis)
	assert.True(t, res.PrefsChanged)
	assert.Equal(t, !before, d.Prefs.ShowAttributes)
}

func TestCmdRestartBrlRequestsRestart(t *testing.T) {
	d, backend, _ := newDispatcher(10, 5)
	res := d.Execute(backend, driver.CmdRestartBrl)
	assert.True(t, res.Restart)
}

func TestPlaceWindowVerticallyCommands(t *testing.T) {
	d, backend, sess := newDispatcher(10, 5)

	d.Execute(backend, driver.CmdBot)
	assert.Equal(t, 0, sess.Window().WinY) // screen has only 5 rows == window rows, so bottom is 0

	d.Execute(backend, driver.CmdTop)
	assert.Equal(t, 0, sess.Window().WinY)
}

func TestRepeatStatePassesBareCommandThrough(t *testing.T) {
	var rs RepeatState

	cmd1, fired1 := rs.HandleRepeatFlags(driver.CmdLnUp, true, false, 400, 100, 25)
	require.True(t, fired1)
	assert.Equal(t, driver.CmdLnUp, cmd1)
}

func TestRepeatStateResetClearsLatch(t *testing.T) {
	var rs RepeatState
	rs.HandleRepeatFlags(driver.CmdLnUp, true, false, 400, 100, 25)
	rs.Reset()
	assert.False(t, rs.hasCmd)
	assert.False(t, rs.started)
	assert.EqualValues(t, 0, rs.timeout)
}

func TestIsDelayedCommandChecksFlagsOnly(t *testing.T) {
	assert.True(t, isDelayedCommand(driver.FlgRepeatDelay))
	assert.False(t, isDelayedCommand(driver.CmdLnUp))
}

func TestRepeatableBlocklessFWinSuppressedWhilePanning(t *testing.T) {
	assert.True(t, repeatableBlockless(driver.CmdFWinLt, false))
	assert.False(t, repeatableBlockless(driver.CmdFWinLt, true))
}

func TestPassKeySymbolKnownKey(t *testing.T) {
	assert.Equal(t, screen.SymEnter, passKeySymbol(int(driver.KeyEnter)))
}

func TestBlkPassCharInsertsRune(t *testing.T) {
	d, backend, _ := newDispatcher(10, 5)
	cmd := driver.BlkPassChar | driver.Command('x')
	d.Execute(backend, cmd)
	keys := backend.InsertedKeys()
	require.Len(t, keys, 1)
	assert.Equal(t, 'x', keys[0].Rune)
}
