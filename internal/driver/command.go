// Package driver defines the contract a braille display driver (C3)
// satisfies, and the 24-bit command wire format drivers translate
// device key events into. Grounded on Programs/brldefs.h and cmd.c,
// and on the teacher's capability-interface style (driver.go,
// screen.go).
package driver

// Command is the FLAGS[23:16] | BLOCK[15:8] | ARG[7:0] wire value
// produced by a driver's ReadCommand and consumed by the command
// dispatcher (spec.md §4.3/§5).
type Command uint32

const (
	MaskArg   Command = 0X0000FF
	MaskBlock Command = 0X00FF00
	MaskFlags Command = 0XFF0000
	MaskCmd   Command = MaskBlock | MaskArg
)

// Arg returns the low 8 bits: a display/screen-relative argument, a
// BRL_KEY value, or a virtual-terminal number depending on Block.
func (c Command) Arg() int { return int(c & MaskArg) }

// Block returns the command's block, or 0 for a bare, unblocked
// command.
func (c Command) Block() Command { return c & MaskBlock }

// Flags returns the set flag bits.
func (c Command) Flags() Command { return c & MaskFlags }

// Base strips flags, leaving block|arg — the value used to look a
// command up in a dispatch table.
func (c Command) Base() Command { return c & MaskCmd }

// Bare commands (no block, no argument). Values are stable across
// driver and dispatcher: cmd.c relies on them fitting in one byte.
const (
	CmdNoop Command = iota
	CmdLnUp
	CmdLnDn
	CmdWinUp
	CmdWinDn
	CmdPrDifLn
	CmdNxDifLn
	CmdAttrUp
	CmdAttrDn
	CmdTop
	CmdBot
	CmdTopLeft
	CmdBotLeft
	CmdPrPgrph
	CmdNxPgrph
	CmdPrPrompt
	CmdNxPrompt
	CmdPrSearch
	CmdNxSearch

	CmdChrLt
	CmdChrRt
	CmdHWinLt
	CmdHWinRt
	CmdFWinLt
	CmdFWinRt
	CmdFWinLtSkip
	CmdFWinRtSkip
	CmdLnBeg
	CmdLnEnd

	CmdHome
	CmdBack
	CmdReturn

	CmdFreeze
	CmdDispMd
	CmdSixDots
	CmdSlideWin
	CmdSkpIdLns
	CmdSkpBlnkWins
	CmdCsrVis
	CmdCsrHide
	CmdCsrTrk
	CmdCsrSize
	CmdCsrBlink
	CmdAttrVis
	CmdAttrBlink
	CmdCapBlink
	CmdTunes
	CmdAutorepeat
	CmdAutospeak

	CmdHelp
	CmdInfo
	CmdLearn

	CmdPrefMenu
	CmdPrefSave
	CmdPrefLoad

	CmdMenuFirstItem
	CmdMenuLastItem
	CmdMenuPrevItem
	CmdMenuNextItem
	CmdMenuPrevSetting
	CmdMenuNextSetting

	CmdMute
	CmdSpkHome
	CmdSayLine
	CmdSayAbove
	CmdSayBelow
	CmdSaySlower
	CmdSayFaster
	CmdSaySofter
	CmdSayLouder

	CmdSwitchVtPrev
	CmdSwitchVtNext

	CmdCsrJmpVert
	CmdPaste
	CmdRestartBrl
	CmdRestartSpeech
)

// Blocks: the high byte of Arg names a routing key, a cut-buffer
// offset, a virtual terminal, or similar, carried in the low byte.
const (
	BlkRoute     Command = 0X100
	BlkCutBegin  Command = 0X200
	BlkCutAppend Command = 0X300
	BlkCutRect   Command = 0X400
	BlkCutLine   Command = 0X500
	BlkSwitchVt  Command = 0X600
	BlkPrIndent  Command = 0X700
	BlkNxIndent  Command = 0X800
	BlkDescChar  Command = 0X900
	BlkSetLeft   Command = 0XA00
	BlkSetMark   Command = 0XB00
	BlkGotoMark  Command = 0XC00

	BlkPassKey  Command = 0X2000
	BlkPassChar Command = 0X2100
	BlkPassDots Command = 0X2200
	BlkPassAt2  Command = 0X2300

	// BlkGotoLine is referenced by the brlapi key-code mapping (cmd.c)
	// but was not present in the retrieved brldefs.h snippet; it is
	// assigned the next unused block slot after BlkGotoMark. See
	// DESIGN.md Open Questions.
	BlkGotoLine Command = 0XD00
)

// Flags. BRLTTY reuses bit positions across blocks that can never
// co-occur in the same command (toggle flags only ever decorate a
// bare toggle command; char flags only ever decorate PassChar/PassKey)
// — see brldefs.h and DESIGN.md.
const (
	FlgToggleOn   Command = 0X010000
	FlgToggleOff  Command = 0X020000
	FlgToggleMask Command = FlgToggleOn | FlgToggleOff

	FlgCharControl Command = 0X010000
	FlgCharMeta    Command = 0X020000
	FlgCharUpper   Command = 0X040000
	FlgCharShift   Command = 0X080000

	FlgRepeatInitial Command = 0X800000
	FlgRepeatDelay   Command = 0X400000
	FlgRepeatMask    Command = FlgRepeatInitial | FlgRepeatDelay

	// FlgRoute, FlgLineScaled and FlgLineToLeft are referenced by the
	// brlapi key-code mapping but were not present in the retrieved
	// brldefs.h snippet. FlgRoute and FlgLineScaled take the two flag
	// bits no other flag uses; FlgLineToLeft reuses 0X010000, the bit
	// of FlgToggleOn and FlgCharControl, and the wire mapping reads it
	// as FlgLineToLeft only on BlkGotoLine commands. See DESIGN.md Open
	// Questions.
	FlgRoute      Command = 0X100000
	FlgLineScaled Command = 0X200000
	FlgLineToLeft Command = 0X010000
)

// BRL_KEY values, the Arg of a BlkPassKey command.
const (
	KeyEnter Command = iota
	KeyTab
	KeyBackspace
	KeyEscape
	KeyCursorLeft
	KeyCursorRight
	KeyCursorUp
	KeyCursorDown
	KeyPageUp
	KeyPageDown
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyFunction
)

// Context is the BRL_DriverCommandContext a driver's ReadCommand is
// asked to interpret keys for: the same physical key chord can mean
// different things in different contexts (spec.md §4.3).
type Context int

const (
	CtxScreen Context = iota
	CtxHelp
	CtxStatus
	CtxPrefs
	CtxMessage
)
