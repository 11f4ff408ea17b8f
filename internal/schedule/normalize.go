package schedule

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

// NormalizeNormal builds the weekly bell table. Disabled entries are dropped.
// An entry with no days, or all seven, becomes a single every-day entry; one
// with 1-6 days is expanded into one entry per day. Expansion stops once
// MaxNormalEntries is reached.
func NormalizeNormal(raw []RawNormalBell, log zerolog.Logger) []logic.NormalBellEntry {
	var out []logic.NormalBellEntry

	for i, r := range raw {
		name := recordName(r.Key, r.Label, i)
		if !enabled(r.Enabled) {
			log.Debug().Str("entry", name).Msg("normal bell disabled, skipping")
			continue
		}

		t := logic.At(r.Hour, r.Minute)
		if !t.Valid() {
			log.Warn().Str("entry", name).Int("hour", r.Hour).Int("minute", r.Minute).
				Msg("normal bell has an out-of-range time, skipping")
			continue
		}

		days := expandDays(r.Days, log.With().Str("entry", name).Logger())
		for _, d := range days {
			if len(out) >= MaxNormalEntries {
				log.Warn().Str("entry", name).Int("limit", MaxNormalEntries).
					Msg("normal bell table full, ignoring remaining entries")
				return out
			}
			out = append(out, logic.NormalBellEntry{Time: t, Weekday: d})
		}
	}

	return out
}

// expandDays maps weekday names to indexes. No names, or all seven, collapse
// to EveryDay. Unknown names are skipped; duplicates are ignored.
func expandDays(names []string, log zerolog.Logger) []int {
	if len(names) == 0 {
		return []int{logic.EveryDay}
	}

	var seen [7]bool
	var days []int
	for _, n := range names {
		d, ok := logic.ParseWeekday(n)
		if !ok {
			log.Warn().Str("day", n).Msg("unknown weekday name, skipping")
			continue
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}

	if len(days) == 7 {
		return []int{logic.EveryDay}
	}
	if len(days) == 0 {
		log.Warn().Strs("days", names).Msg("no valid weekday, entry dropped")
	}
	return days
}

// NormalizeSpecial builds the special period table from either input shape.
// Disabled or unrecognized periods are dropped and the table is capped at
// MaxSpecialPeriods.
func NormalizeSpecial(raw []RawSpecialPeriod, log zerolog.Logger) []logic.SpecialPeriod {
	var out []logic.SpecialPeriod

	for i, r := range raw {
		name := recordName(r.Key, r.Label, i)
		plog := log.With().Str("period", name).Logger()

		if !enabled(r.Enabled) {
			plog.Debug().Msg("special period disabled, skipping")
			continue
		}

		var p logic.SpecialPeriod
		switch {
		case r.Hour != nil && r.Minute != nil:
			t := logic.At(*r.Hour, *r.Minute)
			if !t.Valid() {
				plog.Warn().Int("hour", *r.Hour).Int("minute", *r.Minute).
					Msg("special period has an out-of-range time, skipping")
				continue
			}
			for d := range p.Daily {
				p.Daily[d] = t
			}
		case r.DailySchedule != nil:
			p.Daily = dailySlots(r.DailySchedule, plog)
		default:
			plog.Warn().Msg("special period has neither hour/minute nor dailySchedule, skipping")
			continue
		}

		if len(out) >= MaxSpecialPeriods {
			plog.Warn().Int("limit", MaxSpecialPeriods).
				Msg("special period table full, ignoring remaining periods")
			break
		}

		p.Label = r.Label
		p.Start = normalizeDate(r.StartDate, plog.With().Str("field", "startDate").Logger())
		p.End = normalizeDate(r.EndDate, plog.With().Str("field", "endDate").Logger())
		out = append(out, p)
	}

	return out
}

func dailySlots(m map[string]RawDaySlot, log zerolog.Logger) [7]logic.TimeOfDay {
	daily := logic.EmptyDaily()

	for key, slot := range m {
		d, err := strconv.Atoi(key)
		if err != nil || d < 0 || d > 6 {
			log.Warn().Str("day", key).Msg("dailySchedule key is not a weekday index 0..6, skipping")
			continue
		}
		if !enabled(slot.Enabled) {
			continue
		}
		t, ok := slot.time()
		if !ok {
			continue
		}
		if !t.Valid() {
			log.Warn().Int("day", d).Stringer("time", t).Msg("dailySchedule slot out of range, no ring that day")
			continue
		}
		daily[d] = t
	}

	return daily
}

// time returns the slot's ring time. A missing hour means no ring.
func (s RawDaySlot) time() (logic.TimeOfDay, bool) {
	hour, minute := s.Hour, s.Minute
	if s.Start != nil {
		hour, minute = s.Start.Hour, s.Start.Minute
	}
	if hour == nil || *hour < 0 {
		return logic.NoTime, false
	}
	m := 0
	if minute != nil {
		m = *minute
	}
	return logic.At(*hour, m), true
}

func normalizeDate(d RawDate, log zerolog.Logger) logic.Date {
	if d.ISO != "" {
		date, ok := parseISODate(d.ISO)
		if !ok {
			log.Warn().Str("value", d.ISO).Msg("malformed date, using 01/01")
		}
		return date
	}

	date := logic.Date{Day: 1, Month: 1}
	if d.Day != nil {
		date.Day = *d.Day
	}
	if d.Month != nil {
		date.Month = *d.Month
	}
	if d.Year != nil {
		date.Year = *d.Year
	}
	if date.Day < 1 || date.Day > 31 || date.Month < 1 || date.Month > 12 {
		log.Warn().Int("day", date.Day).Int("month", date.Month).Msg("date out of range, using 01/01")
		return logic.Date{Day: 1, Month: 1, Year: date.Year}
	}
	return date
}

// parseISODate reads day and month positionally from "YYYY-MM-DD...". The
// year is taken from the first four characters when they are digits. Short or
// malformed strings yield 01/01 and false.
func parseISODate(s string) (logic.Date, bool) {
	fallback := logic.Date{Day: 1, Month: 1}
	if len(s) < 10 {
		return fallback, false
	}
	month, err := strconv.Atoi(s[5:7])
	if err != nil || month < 1 || month > 12 {
		return fallback, false
	}
	day, err := strconv.Atoi(s[8:10])
	if err != nil || day < 1 || day > 31 {
		return fallback, false
	}
	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		year = 0
	}
	return logic.Date{Day: day, Month: month, Year: year}, true
}

// NormalizeActuator resolves a lighting or irrigation document. An unknown
// mode yields ModeNone (always inactive); an unparsable manual window yields
// no window; a negative delay is treated as zero.
func NormalizeActuator(raw RawActuator, log zerolog.Logger) logic.ActuatorConfig {
	var cfg logic.ActuatorConfig

	subMode := ""
	if raw.Schedules.SunsetToSunrise != nil {
		subMode = raw.Schedules.SunsetToSunrise.SubMode
	}
	mode, ok := logic.ResolveMode(raw.Mode, subMode)
	if !ok {
		if raw.Mode != "" {
			log.Warn().Str("mode", raw.Mode).Str("sub_mode", subMode).Msg("unknown mode, actuator stays off")
		}
	}
	cfg.Mode = mode

	if m := raw.Schedules.Manual; m != nil {
		start, errStart := logic.ParseTimeOfDay(m.StartTime)
		end, errEnd := logic.ParseTimeOfDay(m.EndTime)
		switch {
		case errStart != nil:
			log.Warn().Err(errStart).Msg("manual window start unusable, window ignored")
		case errEnd != nil:
			log.Warn().Err(errEnd).Msg("manual window end unusable, window ignored")
		default:
			cfg.Manual = &logic.ManualWindow{Start: start, End: end}
		}
	}

	if s := raw.Schedules.SunsetToSunrise; s != nil {
		if s.Delay < 0 {
			log.Warn().Int("delay", s.Delay).Msg("negative delay ignored")
		} else {
			cfg.OffsetMinutes = s.Delay
		}
	}

	if cfg.Mode == logic.ModeManual && cfg.Manual == nil {
		log.Warn().Msg("MANUAL mode without a usable window, actuator stays off")
	}

	return cfg
}

func recordName(key, label string, i int) string {
	switch {
	case key != "":
		return key
	case label != "":
		return label
	}
	return "#" + strconv.Itoa(i)
}
