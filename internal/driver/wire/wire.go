// Package wire is the brlapi key-code bridge: a reversible mapping
// between a driver.Command and the 64-bit key code brlapi clients
// expect, so a screen reader speaking brlapi can sit behind the same
// command dispatcher as a direct console session. Ported line for
// line from Programs/cmd.c's cmdBrlttyToBrlapi/cmdBrlapiToBrltty.
package wire

import "github.com/brltty-go/brld/internal/driver"

// KeyCode is a brlapi key code (brlapi_keyCode_t).
type KeyCode uint64

const (
	typeMask    KeyCode = 0X0F000000 << 32
	typeCmd     KeyCode = 0X01000000 << 32
	typeSym     KeyCode = 0X02000000 << 32
	codeMask    KeyCode = 0XFFFFFFFF
	cmdBlkMask  KeyCode = 0XFFFF00
	cmdBlkShift         = 8
	cmdArgMask  KeyCode = 0X0000FF

	symUnicode KeyCode = 0X01000000

	flgToggleOn      KeyCode = 1 << 32
	flgToggleOff     KeyCode = 1 << 33
	flgRoute         KeyCode = 1 << 34
	flgRepeatInitial KeyCode = 1 << 35
	flgRepeatDelay   KeyCode = 1 << 36
	flgLineScaled    KeyCode = 1 << 37
	flgLineToLeft    KeyCode = 1 << 38
	flgControl       KeyCode = 1 << 39
	flgMeta          KeyCode = 1 << 40
	flgUpper         KeyCode = 1 << 41
	flgShift         KeyCode = 1 << 42
)

// brlapi key symbols used by PassKey translation (BRLAPI_KEY_SYM_*).
const (
	symBackspace KeyCode = 0XFF08
	symTab       KeyCode = 0XFF09
	symLinefeed  KeyCode = 0XFF0A
	symEscape    KeyCode = 0XFF1B
	symHome      KeyCode = 0XFF50
	symLeft      KeyCode = 0XFF51
	symUp        KeyCode = 0XFF52
	symRight     KeyCode = 0XFF53
	symDown      KeyCode = 0XFF54
	symPageUp    KeyCode = 0XFF55
	symPageDown  KeyCode = 0XFF56
	symEnd       KeyCode = 0XFF57
	symInsert    KeyCode = 0XFF63
	symDelete    KeyCode = 0XFFFF
	symFunction  KeyCode = 0XFFBE
)

// ToBrlapi converts a driver.Command into its brlapi key code, as
// cmdBrlttyToBrlapi does. Characters outside Latin-1 are out of scope
// (spec.md Non-goals: no extended Unicode PassChar).
func ToBrlapi(cmd driver.Command) KeyCode {
	blk := cmd.Block()
	var code KeyCode

	switch blk {
	case driver.BlkPassChar:
		code = typeSym | KeyCode(cmd.Arg())

	case driver.BlkPassKey:
		switch driver.Command(cmd.Arg()) {
		case driver.KeyEnter:
			code = symLinefeed
		case driver.KeyTab:
			code = symTab
		case driver.KeyBackspace:
			code = symBackspace
		case driver.KeyEscape:
			code = symEscape
		case driver.KeyCursorLeft:
			code = symLeft
		case driver.KeyCursorRight:
			code = symRight
		case driver.KeyCursorUp:
			code = symUp
		case driver.KeyCursorDown:
			code = symDown
		case driver.KeyPageUp:
			code = symPageUp
		case driver.KeyPageDown:
			code = symPageDown
		case driver.KeyHome:
			code = symHome
		case driver.KeyEnd:
			code = symEnd
		case driver.KeyInsert:
			code = symInsert
		case driver.KeyDelete:
			code = symDelete
		default:
			code = symFunction + KeyCode(cmd.Arg()) - KeyCode(driver.KeyFunction)
		}
		code |= typeSym

	default:
		code = typeCmd | (KeyCode(blk>>8) << cmdBlkShift) | KeyCode(cmd.Arg())
	}

	if blk == driver.BlkGotoLine {
		if cmd&driver.FlgLineScaled != 0 {
			code |= flgLineScaled
		}
		if cmd&driver.FlgLineToLeft != 0 {
			code |= flgLineToLeft
		}
	}

	if blk == driver.BlkPassChar || blk == driver.BlkPassKey {
		if cmd&driver.FlgCharControl != 0 {
			code |= flgControl
		}
		if cmd&driver.FlgCharMeta != 0 {
			code |= flgMeta
		}
		if cmd&driver.FlgCharUpper != 0 {
			code |= flgUpper
		}
		if cmd&driver.FlgCharShift != 0 {
			code |= flgShift
		}
	} else {
		if cmd&driver.FlgToggleOn != 0 {
			code |= flgToggleOn
		}
		if cmd&driver.FlgToggleOff != 0 {
			code |= flgToggleOff
		}
		if cmd&driver.FlgRoute != 0 {
			code |= flgRoute
		}
	}

	if cmd&driver.FlgRepeatInitial != 0 {
		code |= flgRepeatInitial
	}
	if cmd&driver.FlgRepeatDelay != 0 {
		code |= flgRepeatDelay
	}
	return code
}

// FromBrlapi converts a brlapi key code back into a driver.Command.
// The bool result is false when the code has no Command equivalent.
func FromBrlapi(code KeyCode) (driver.Command, bool) {
	var cmd driver.Command

	switch code & typeMask {
	case typeCmd:
		cmd = driver.Command((code&cmdBlkMask)>>cmdBlkShift<<8) | driver.Command(code&cmdArgMask)

	case typeSym:
		sym := code & codeMask
		switch sym {
		case symBackspace:
			cmd = driver.BlkPassKey | driver.KeyBackspace
		case symTab:
			cmd = driver.BlkPassKey | driver.KeyTab
		case symLinefeed:
			cmd = driver.BlkPassKey | driver.KeyEnter
		case symEscape:
			cmd = driver.BlkPassKey | driver.KeyEscape
		case symHome:
			cmd = driver.BlkPassKey | driver.KeyHome
		case symLeft:
			cmd = driver.BlkPassKey | driver.KeyCursorLeft
		case symUp:
			cmd = driver.BlkPassKey | driver.KeyCursorUp
		case symRight:
			cmd = driver.BlkPassKey | driver.KeyCursorRight
		case symDown:
			cmd = driver.BlkPassKey | driver.KeyCursorDown
		case symPageUp:
			cmd = driver.BlkPassKey | driver.KeyPageUp
		case symPageDown:
			cmd = driver.BlkPassKey | driver.KeyPageDown
		case symEnd:
			cmd = driver.BlkPassKey | driver.KeyEnd
		case symInsert:
			cmd = driver.BlkPassKey | driver.KeyInsert
		case symDelete:
			cmd = driver.BlkPassKey | driver.KeyDelete
		default:
			if sym >= symFunction && sym <= symFunction+34 {
				cmd = driver.BlkPassKey | (driver.Command(driver.KeyFunction) + driver.Command(sym-symFunction))
			} else if sym < 0x100 {
				cmd = driver.BlkPassChar | driver.Command(sym)
			} else {
				return 0, false
			}
		}

	default:
		return 0, false
	}

	if code&flgToggleOn != 0 {
		cmd |= driver.FlgToggleOn
	}
	if code&flgToggleOff != 0 {
		cmd |= driver.FlgToggleOff
	}
	if code&flgRoute != 0 {
		cmd |= driver.FlgRoute
	}
	if code&flgRepeatInitial != 0 {
		cmd |= driver.FlgRepeatInitial
	}
	if code&flgRepeatDelay != 0 {
		cmd |= driver.FlgRepeatDelay
	}
	if code&flgLineScaled != 0 {
		cmd |= driver.FlgLineScaled
	}
	if code&flgLineToLeft != 0 {
		cmd |= driver.FlgLineToLeft
	}
	if code&flgControl != 0 {
		cmd |= driver.FlgCharControl
	}
	if code&flgMeta != 0 {
		cmd |= driver.FlgCharMeta
	}
	if code&flgUpper != 0 {
		cmd |= driver.FlgCharUpper
	}
	if code&flgShift != 0 {
		cmd |= driver.FlgCharShift
	}
	return cmd, true
}
