package logic

import "strings"

// Mode selects how a lighting or irrigation window is computed.
type Mode string

const (
	ModeNone            Mode = ""
	ModeManual          Mode = "MANUAL"
	ModeBeforeSunset    Mode = "BEFORE_SUNSET"
	ModeAfterSunset     Mode = "AFTER_SUNSET"
	ModeBeforeSunrise   Mode = "BEFORE_SUNRISE"
	ModeAfterSunrise    Mode = "AFTER_SUNRISE"
	ModeSunsetToSunrise Mode = "SUNSET_TO_SUNRISE"
)

// solarGroup is the top-level mode name under which the app stores every
// solar sub-mode.
const solarGroup = "SUNSET_SUNRISE"

var modes = map[string]Mode{
	string(ModeManual):          ModeManual,
	string(ModeBeforeSunset):    ModeBeforeSunset,
	string(ModeAfterSunset):     ModeAfterSunset,
	string(ModeBeforeSunrise):   ModeBeforeSunrise,
	string(ModeAfterSunrise):    ModeAfterSunrise,
	string(ModeSunsetToSunrise): ModeSunsetToSunrise,
}

// ParseMode maps a mode name to a Mode. Names are case-sensitive.
func ParseMode(s string) (Mode, bool) {
	m, ok := modes[strings.TrimSpace(s)]
	return m, ok
}

// ResolveMode combines the stored mode and solar sub-mode into one Mode.
// "SUNSET_SUNRISE" defers to subMode, defaulting to SUNSET_TO_SUNRISE when
// subMode is empty. Unknown names resolve to ModeNone, false.
func ResolveMode(mode, subMode string) (Mode, bool) {
	mode = strings.TrimSpace(mode)
	if mode == solarGroup {
		if strings.TrimSpace(subMode) == "" {
			return ModeSunsetToSunrise, true
		}
		m, ok := ParseMode(subMode)
		if !ok || m == ModeManual {
			return ModeNone, false
		}
		return m, true
	}
	m, ok := ParseMode(mode)
	if !ok {
		return ModeNone, false
	}
	return m, true
}

// Solar reports whether m is bounded by sunrise or sunset.
func (m Mode) Solar() bool {
	switch m {
	case ModeBeforeSunset, ModeAfterSunset, ModeBeforeSunrise, ModeAfterSunrise, ModeSunsetToSunrise:
		return true
	}
	return false
}

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ParseWeekday maps a 3-letter English abbreviation (case-sensitive) to 0=Sun..6=Sat.
func ParseWeekday(name string) (int, bool) {
	for i, n := range weekdayNames {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// WeekdayName returns the abbreviation for d, "All" for EveryDay, "?" otherwise.
func WeekdayName(d int) string {
	if d == EveryDay {
		return "All"
	}
	if d < 0 || d > 6 {
		return "?"
	}
	return weekdayNames[d]
}
