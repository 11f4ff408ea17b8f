package logic

// ManualWindow is a daily on-window. Start after End wraps past midnight.
type ManualWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Contains reports whether t falls in [Start, End) by minute of day.
func (w ManualWindow) Contains(t TimeOfDay) bool {
	n, s, e := t.Minutes(), w.Start.Minutes(), w.End.Minutes()
	if s <= e {
		return n >= s && n < e
	}
	return n >= s || n < e
}

// ActuatorConfig is the normalized schedule of the lighting or irrigation relay.
type ActuatorConfig struct {
	Mode          Mode
	OffsetMinutes int
	Manual        *ManualWindow // nil when no window is configured
}

// Active evaluates c at now.
func (c ActuatorConfig) Active(now Timestamp, sun SunTimes) bool {
	return ShouldBeActive(c.Mode, now, sun, c.OffsetMinutes, c.Manual)
}

// ShouldBeActive decides whether a relay in the given mode is on at now.
// Solar boundaries are inclusive: BEFORE_X is on while now <= X-offset and
// AFTER_X while now >= X+offset. The shifted boundary is not wrapped to the
// same day: one pushed past midnight never matches. A missing manual window,
// a missing sun time or an unknown mode yields false.
func ShouldBeActive(mode Mode, now Timestamp, sun SunTimes, offsetMinutes int, manual *ManualWindow) bool {
	n := now.Minutes()

	switch mode {
	case ModeManual:
		if manual == nil || !manual.Start.Valid() || !manual.End.Valid() {
			return false
		}
		return manual.Contains(now.Clock())

	case ModeBeforeSunset:
		if !sun.Sunset.Valid() {
			return false
		}
		return n <= sun.Sunset.Minutes()-offsetMinutes

	case ModeAfterSunset:
		if !sun.Sunset.Valid() {
			return false
		}
		return n >= sun.Sunset.Minutes()+offsetMinutes

	case ModeBeforeSunrise:
		if !sun.Sunrise.Valid() {
			return false
		}
		return n <= sun.Sunrise.Minutes()-offsetMinutes

	case ModeAfterSunrise:
		if !sun.Sunrise.Valid() {
			return false
		}
		return n >= sun.Sunrise.Minutes()+offsetMinutes

	case ModeSunsetToSunrise:
		if !sun.Sunset.Valid() || !sun.Sunrise.Valid() {
			return false
		}
		return n >= sun.Sunset.Minutes()-offsetMinutes || n < sun.Sunrise.Minutes()
	}

	return false
}
