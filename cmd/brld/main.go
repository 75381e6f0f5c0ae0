// Command brld is the daemon entry point (spec.md §1): it wires one
// configured transport and driver to the update loop and runs until
// signalled to stop. Kept intentionally thin per spec.md's Non-goals
// — all behaviour lives in the internal packages; main only parses
// flags, constructs collaborators, and loads/saves preferences.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/brltty-go/brld/internal/braille"
	"github.com/brltty-go/brld/internal/braille/texttable"
	"github.com/brltty-go/brld/internal/daemon"
	"github.com/brltty-go/brld/internal/driver"
	"github.com/brltty-go/brld/internal/driver/drivers/baum"
	"github.com/brltty-go/brld/internal/driver/drivers/papenmeier"
	"github.com/brltty-go/brld/internal/prefs"
	"github.com/brltty-go/brld/internal/render"
	"github.com/brltty-go/brld/internal/screen/memscreen"
	"github.com/brltty-go/brld/internal/transport"
	"github.com/brltty-go/brld/internal/transport/bttrans"
	"github.com/brltty-go/brld/internal/transport/serialtrans"
	"github.com/brltty-go/brld/internal/transport/usbtrans"
)

func main() {
	driverName := flag.String("driver", "baum", "display driver: baum or papenmeier")
	transportName := flag.String("transport", "serial", "transport: serial, usb or bluetooth")
	endpoint := flag.String("endpoint", "/dev/ttyUSB0", "transport endpoint (device path, or AA:BB:CC:DD:EE:FF for bluetooth)")
	prefsPath := flag.String("prefs", "", "path to a preferences file (written when brld exits)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	p := prefs.Default()
	if *prefsPath != "" {
		if f, err := os.Open(*prefsPath); err == nil {
			if loaded, err := prefs.Load(f); err == nil {
				p = loaded
			} else {
				log.Warn().Err(err).Msg("ignoring unreadable preferences file")
			}
			f.Close()
		}
	}

	t, err := buildTransport(log, *transportName)
	if err != nil {
		log.Fatal().Err(err).Msg("unknown transport")
	}

	drv, err := buildDriver(log, *driverName, t)
	if err != nil {
		log.Fatal().Err(err).Msg("unknown driver")
	}

	table := texttable.NewASCII(braille.Dot1 | braille.Dot2 | braille.Dot7 | braille.Dot8)
	renderer := render.New(table, grayscaleAttribute)
	renderer.SetContractor(&render.SimpleContractor{Table: table})

	// A real console/VT/X11 screen back-end is an external collaborator
	// (spec.md §1/§6) not built by this repository; memscreen stands in
	// so the daemon is runnable end-to-end out of the box.
	backend := memscreen.New(80, 25)
	backend.SetText(0, "brld running — attach a real screen.Backend to replace memscreen", 0)

	dmn := daemon.New(log, drv, backend, *endpoint, &p, renderer)
	if err := dmn.Start(); err != nil {
		log.Fatal().Err(err).Msg("could not start display")
	}
	disp := dmn.Display()
	log.Info().Str("display", disp.Name).Int("cols", disp.TextColumns).Int("rows", disp.TextRows).Msg("display ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dmn.Run(ctx); err != nil && err != daemon.ErrStopped {
		log.Fatal().Err(err).Msg("daemon exited")
	}

	if *prefsPath != "" {
		if f, err := os.Create(*prefsPath); err == nil {
			if err := p.Save(f); err != nil {
				log.Warn().Err(err).Msg("could not save preferences")
			}
			f.Close()
		}
	}
}

func buildTransport(log zerolog.Logger, name string) (transport.Transport, error) {
	switch name {
	case "serial":
		return serialtrans.New(log, false, []uint32{19200, 9600, 38400}), nil
	case "usb":
		return usbtrans.New(nil), nil
	case "bluetooth":
		return bttrans.New(1), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", name)
	}
}

func buildDriver(log zerolog.Logger, name string, t transport.Transport) (driver.Driver, error) {
	switch name {
	case "baum":
		return baum.New(log, t), nil
	case "papenmeier":
		return papenmeier.New(log, t), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", name)
	}
}

// grayscaleAttribute is a placeholder attribute->color classifier used
// until a backend supplies a real console palette; it treats the low
// nibble as intensity, matching a legacy color-console attribute byte's
// foreground-intensity bit loosely enough for the heavy/light underline
// split to be meaningful in the default wiring.
func grayscaleAttribute(attr byte) (r, g, b uint8) {
	v := (attr & 0x0F) * 17
	return v, v, v
}
