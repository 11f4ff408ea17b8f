//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

// RealWriter drives relays on actual hardware using the Linux GPIO character device.
type RealWriter struct {
	chip  *gpiocdev.Chip
	lines map[logic.Actuator]*gpiocdev.Line
	pull  Pull
}

// NewRealWriter requests the three relay lines as outputs, initially off.
func NewRealWriter(pins Pins) (*RealWriter, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	w := &RealWriter{chip: chip, lines: make(map[logic.Actuator]*gpiocdev.Line), pull: pins.ReleasePull()}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if pins.ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	for _, a := range logic.Actuators {
		pin := pins.Of(a)
		line, err := chip.RequestLine(pin, opts...)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", a, pin, err)
		}
		w.lines[a] = line
	}

	return w, nil
}

// Set drives the relay for a. Active-low boards are handled by the line config.
func (w *RealWriter) Set(a logic.Actuator, on bool) error {
	line, ok := w.lines[a]
	if !ok {
		return fmt.Errorf("no line for %s", a)
	}
	v := 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set %s: %w", a, err)
	}
	return nil
}

// Close drives every relay off and releases GPIO resources.
// Lines are reconfigured to input, biased towards the relay's off level,
// before closing so relays do not latch during shutdown/reboot.
func (w *RealWriter) Close() error {
	var errs []error
	bias := gpiocdev.WithPullDown
	if w.pull == PullUp {
		bias = gpiocdev.WithPullUp
	}

	for _, a := range logic.Actuators {
		line, ok := w.lines[a]
		if !ok {
			continue
		}
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive %s off: %w", a, err))
		}
		if err := line.Reconfigure(gpiocdev.AsInput, bias); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", a, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", a, err))
		}
		delete(w.lines, a)
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		w.chip = nil
	}

	return errors.Join(errs...)
}
