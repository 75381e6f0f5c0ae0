package driver

// KeySet is a bitset over a device's physical keys, used by drivers
// that recognise chords (several keys held simultaneously resolve to
// one command) rather than single key codes.
type KeySet uint64

// Set marks bit as held.
func (k KeySet) Set(bit uint) KeySet { return k | (1 << bit) }

// Clear marks bit as released.
func (k KeySet) Clear(bit uint) KeySet { return k &^ (1 << bit) }

// Has reports whether bit is held.
func (k KeySet) Has(bit uint) bool { return k&(1<<bit) != 0 }

// Empty reports whether no keys are held.
func (k KeySet) Empty() bool { return k == 0 }

// ChordState is the two-snapshot latch drivers use to recognise a
// chord only once it is fully released: Pressed accumulates keys as
// they go down and drops them as they go up, Active accumulates every
// key pressed since Pressed was last empty (releases do not remove
// keys from it), and the combination is resolved against a chord
// table only when Pressed returns to empty (so that pressing three
// keys in quick succession, rather than all at once, still yields one
// chord instead of three single-key commands).
type ChordState struct {
	Pressed KeySet
	Active  KeySet
}

// Press registers a key going down.
func (c *ChordState) Press(bit uint) {
	if c.Pressed.Empty() {
		c.Active = 0
	}
	c.Pressed = c.Pressed.Set(bit)
	c.Active = c.Active.Set(bit)
}

// Release registers a key going up, returning the resolved chord and
// true once every key of it has been released.
func (c *ChordState) Release(bit uint) (chord KeySet, resolved bool) {
	c.Pressed = c.Pressed.Clear(bit)
	if c.Pressed.Empty() {
		chord = c.Active
		c.Active = 0
		return chord, true
	}
	return 0, false
}
