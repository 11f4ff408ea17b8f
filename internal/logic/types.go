// Package logic contains the pure scheduling decisions for the lighting,
// irrigation and bell relays.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters or Timestamp values.
package logic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minutesPerDay  = 24 * 60
	minutesPerWeek = 7 * minutesPerDay
)

// EveryDay is the NormalBellEntry weekday meaning "ring on all seven days".
const EveryDay = -1

// TimeOfDay is an hour/minute pair. The zero value is midnight.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// NoTime marks a slot with no scheduled event. It is distinct from midnight.
var NoTime = TimeOfDay{Hour: -1, Minute: -1}

// At returns the TimeOfDay hour:minute.
func At(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

// Minutes returns the minute of day, 0..1439 for a valid time.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// IsSet reports whether t is a scheduled time rather than the NoTime sentinel.
func (t TimeOfDay) IsSet() bool {
	return t.Hour >= 0 && t.Minute >= 0
}

// Valid reports whether t is within 00:00..23:59.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

func (t TimeOfDay) String() string {
	if !t.Valid() {
		return "--:--"
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses "HH:MM" (single-digit hours are accepted).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return NoTime, fmt.Errorf("time %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return NoTime, fmt.Errorf("time %q: hour: %w", s, err)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return NoTime, fmt.Errorf("time %q: minute: %w", s, err)
	}
	t := At(hour, minute)
	if !t.Valid() {
		return NoTime, fmt.Errorf("time %q: out of range", s)
	}
	return t, nil
}

// Date is a calendar day. Year is informational (0 when unknown) and is
// ignored by range checks.
type Date struct {
	Day   int
	Month int
	Year  int
}

// key orders dates within a year as month*100+day.
func (d Date) key() int {
	return d.Month*100 + d.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d", d.Day, d.Month)
}

// DateInRange reports whether d falls within [start, end], ignoring the year.
// When start is after end the range crosses the year boundary (e.g. 20/12 to 05/01).
func DateInRange(d, start, end Date) bool {
	k, s, e := d.key(), start.key(), end.key()
	if s <= e {
		return k >= s && k <= e
	}
	return k >= s || k <= e
}

// Timestamp is the wall-clock snapshot evaluated on one tick.
type Timestamp struct {
	Hour    int
	Minute  int
	Day     int
	Month   int
	Year    int
	Weekday int // 0=Sunday .. 6=Saturday
}

// TimestampOf converts t (already in the controller's location) to a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Day:     t.Day(),
		Month:   int(t.Month()),
		Year:    t.Year(),
		Weekday: int(t.Weekday()),
	}
}

// Clock returns the time-of-day part of ts.
func (ts Timestamp) Clock() TimeOfDay {
	return At(ts.Hour, ts.Minute)
}

// Date returns the calendar part of ts.
func (ts Timestamp) Date() Date {
	return Date{Day: ts.Day, Month: ts.Month, Year: ts.Year}
}

// Minutes returns the minute of day.
func (ts Timestamp) Minutes() int {
	return ts.Hour*60 + ts.Minute
}

func (ts Timestamp) String() string {
	return fmt.Sprintf("%s %04d-%02d-%02d %02d:%02d", WeekdayName(ts.Weekday), ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute)
}

// SunTimes holds today's sunrise and sunset. Either may be NoTime when the
// sun does not rise or set on that day.
type SunTimes struct {
	Sunrise TimeOfDay
	Sunset  TimeOfDay
}

// Actuator names one of the three relays.
type Actuator string

const (
	Lighting   Actuator = "LIGHTING"
	Irrigation Actuator = "IRRIGATION"
	Bell       Actuator = "BELL"
)

// Actuators lists every relay in drive order.
var Actuators = []Actuator{Lighting, Irrigation, Bell}

// State represents the logical state of a relay.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// States holds the current state of each relay. Empty means not yet evaluated.
type States struct {
	Lighting   State
	Irrigation State
	Bell       State
}

// Of returns the state of a.
func (s States) Of(a Actuator) State {
	switch a {
	case Lighting:
		return s.Lighting
	case Irrigation:
		return s.Irrigation
	case Bell:
		return s.Bell
	}
	return ""
}

// EventType represents a relay transition.
type EventType string

const (
	EventLightingOn    EventType = "LIGHTING_ON"
	EventLightingOff   EventType = "LIGHTING_OFF"
	EventIrrigationOn  EventType = "IRRIGATION_ON"
	EventIrrigationOff EventType = "IRRIGATION_OFF"
	EventBellOn        EventType = "BELL_ON"
	EventBellOff       EventType = "BELL_OFF"
)

// Event represents a relay transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Actuator  Actuator
	State     State
	Source    RingSource // set on BELL_ON only
}

// Input is one evaluation tick.
type Input struct {
	Time time.Time // wall clock in the controller's location
	Sun  SunTimes
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	LightingOn    int
	LightingOff   int
	IrrigationOn  int
	IrrigationOff int
	BellRings     int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
