// Package gpio drives the relay outputs with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/relay-scheduler/internal/logic"

// Writer drives relay outputs.
type Writer interface {
	// Set drives the relay for a to the logical state on.
	Set(a logic.Actuator, on bool) error

	// Close releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering).
const (
	DefaultPinLighting   = 17
	DefaultPinIrrigation = 27
	DefaultPinBell       = 22
)

// Pins maps each relay to a BCM line.
type Pins struct {
	Lighting   int  `yaml:"lighting"`
	Irrigation int  `yaml:"irrigation"`
	Bell       int  `yaml:"bell"`
	ActiveLow  bool `yaml:"active_low"` // relay boards that energise on a low level
}

// DefaultPins returns the standard wiring.
func DefaultPins() Pins {
	return Pins{
		Lighting:   DefaultPinLighting,
		Irrigation: DefaultPinIrrigation,
		Bell:       DefaultPinBell,
	}
}

// Of returns the line for a, or -1.
func (p Pins) Of(a logic.Actuator) int {
	switch a {
	case logic.Lighting:
		return p.Lighting
	case logic.Irrigation:
		return p.Irrigation
	case logic.Bell:
		return p.Bell
	}
	return -1
}

// Pull is the bias applied to a line once it is released to input.
type Pull int

const (
	PullDown Pull = iota
	PullUp
)

// ReleasePull returns the bias that holds a released relay de-energised.
// Active-low boards switch on when the line floats low, so they are pulled up.
func (p Pins) ReleasePull() Pull {
	if p.ActiveLow {
		return PullUp
	}
	return PullDown
}
