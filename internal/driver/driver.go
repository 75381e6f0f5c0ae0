package driver

import (
	"errors"

	"github.com/brltty-go/brld/internal/braille"
)

// ErrNoCommand is returned by Driver.ReadCommand when no key event is
// pending; the update loop treats it exactly like io.EOF in the
// original readCommand convention and simply polls again next tick.
var ErrNoCommand = errors.New("driver: no command pending")

// Display describes the fixed geometry and capabilities of a
// connected device (spec.md §4.3, "driver-reported device identity").
type Display struct {
	Name          string
	TextColumns   int
	TextRows      int
	StatusColumns int
	StatusRows    int
	HasFirmness   bool
}

// Driver is the contract a reference braille display driver (C3)
// satisfies: open a transport-backed connection, describe the
// attached device, push rendered cells, and surface key events as
// Commands. Modelled on the teacher's small capability-interface
// style (driver.go's TermDriver).
type Driver interface {
	// Construct opens the underlying transport and identifies the
	// device, returning its reported geometry.
	Construct(endpoint string) (Display, error)

	// Destruct releases the transport.
	Destruct() error

	// WriteWindow pushes one row of translated braille cells to the
	// main display area.
	WriteWindow(cells []byte) error

	// WriteStatus pushes the status-cell column, if the device has
	// any (Display.StatusColumns > 0).
	WriteStatus(cells []byte) error

	// ReadCommand returns the next pending key event translated to a
	// Command for the given context, or ErrNoCommand if none is
	// pending. It must not block.
	ReadCommand(ctx Context) (Command, error)

	// SetFirmness adjusts dot firmness on displays that support it
	// (Display.HasFirmness); it is a no-op returning nil otherwise.
	SetFirmness(level int) error
}

// DotsTable lets a driver reuse braille.OutputTable to translate the
// renderer's internal dot representation to its own wire bit layout,
// without every driver re-deriving the permutation.
type DotsTable = braille.OutputTable
