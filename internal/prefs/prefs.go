// Package prefs holds the live, user-adjustable display preferences
// (spec.md §4.7, BRL_CMD_PREFMENU/PREFSAVE/PREFLOAD) and their
// on-disk persistence. No configuration framework from the retrieved
// pack fits a single small fixed-layout struct better than a plain
// binary encoding/binary record — see DESIGN.md for why this stays on
// the standard library rather than adopting one of the pack's config
// libraries.
package prefs

import (
	"encoding/binary"
	"io"
)

// Preferences mirrors the toggle/style commands of spec.md §4.6 that
// persist across sessions (BRLTTY's struct Preferences).
type Preferences struct {
	SlidingWindow      bool
	EagerSlidingWindow bool
	SkipIdenticalLines bool
	SkipBlankWindows   bool

	ShowCursor     bool
	BlinkingCursor bool
	BlockCursor    bool

	ShowAttributes     bool
	BlinkingAttributes bool
	BlinkingCapitals   bool

	SixDot      bool
	Autorepeat  bool
	AutoSpeak   bool
	AlertTunes  bool
	Contracted  bool

	WindowFollowsPointer bool

	CursorBlinkPeriodMs    uint16
	AttributeBlinkPeriodMs uint16
	CapitalBlinkPeriodMs   uint16

	RepeatInitialDelayMs uint16
	RepeatIntervalMs     uint16
}

// Default returns the built-in factory preferences, the values
// BRLTTY ships before any preference file has ever been loaded.
func Default() Preferences {
	return Preferences{
		SlidingWindow:          true,
		SkipIdenticalLines:     false,
		ShowCursor:             true,
		BlinkingCursor:         true,
		ShowAttributes:         false,
		BlinkingAttributes:     true,
		BlinkingCapitals:       false,
		Autorepeat:             true,
		AlertTunes:             true,
		CursorBlinkPeriodMs:    500,
		AttributeBlinkPeriodMs: 1000,
		CapitalBlinkPeriodMs:   1000,
		RepeatInitialDelayMs:   400,
		RepeatIntervalMs:       100,
	}
}

const magic = 0X42505246 // "BPRF"
const version = 1

// boolFields lists, in wire order, every bool field of Preferences —
// kept as a single explicit order rather than reflection, since this
// list's order, not the struct's declaration order, IS the wire
// format (spec.md's ambient stack:
// no schema evolution machinery, just a versioned fixed record).
func (p *Preferences) boolFields() []*bool {
	return []*bool{
		&p.SlidingWindow, &p.EagerSlidingWindow, &p.SkipIdenticalLines, &p.SkipBlankWindows,
		&p.ShowCursor, &p.BlinkingCursor, &p.BlockCursor,
		&p.ShowAttributes, &p.BlinkingAttributes, &p.BlinkingCapitals,
		&p.SixDot, &p.Autorepeat, &p.AutoSpeak, &p.AlertTunes,
		&p.WindowFollowsPointer, &p.Contracted,
	}
}

func (p *Preferences) uint16Fields() []*uint16 {
	return []*uint16{
		&p.CursorBlinkPeriodMs, &p.AttributeBlinkPeriodMs, &p.CapitalBlinkPeriodMs,
		&p.RepeatInitialDelayMs, &p.RepeatIntervalMs,
	}
}

// Save writes p to w as a small versioned binary record
// (BRL_CMD_PREFSAVE).
func (p *Preferences) Save(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, uint32(magic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint16(version)); err != nil {
		return err
	}

	bools := p.boolFields()
	packed := make([]byte, (len(bools)+7)/8)
	for i, b := range bools {
		if *b {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	if err := binary.Write(w, binary.BigEndian, packed); err != nil {
		return err
	}

	for _, v := range p.uint16Fields() {
		if err := binary.Write(w, binary.BigEndian, *v); err != nil {
			return err
		}
	}
	return nil
}

// ErrBadMagic means r does not hold a preferences record this code
// wrote.
var ErrBadMagic = errBadMagic{}

type errBadMagic struct{}

func (errBadMagic) Error() string { return "prefs: not a preferences file" }

// Load reads a record written by Save (BRL_CMD_PREFLOAD). A wrong
// magic number or an unknown version yields ErrBadMagic; an error from
// r, including one for a short record, is returned as r reported it.
// On any error Load returns the zero Preferences.
func Load(r io.Reader) (Preferences, error) {
	var p Preferences

	var magicWord uint32
	if err := binary.Read(r, binary.BigEndian, &magicWord); err != nil {
		return Preferences{}, err
	}
	if magicWord != magic {
		return Preferences{}, ErrBadMagic
	}

	var ver uint16
	if err := binary.Read(r, binary.BigEndian, &ver); err != nil {
		return Preferences{}, err
	}
	if ver != version {
		return Preferences{}, ErrBadMagic
	}

	bools := p.boolFields()
	packed := make([]byte, (len(bools)+7)/8)
	if err := binary.Read(r, binary.BigEndian, packed); err != nil {
		return Preferences{}, err
	}
	for i, b := range bools {
		*b = packed[i/8]&(1<<uint(i%8)) != 0
	}

	for _, v := range p.uint16Fields() {
		if err := binary.Read(r, binary.BigEndian, v); err != nil {
			return Preferences{}, err
		}
	}
	return p, nil
}
