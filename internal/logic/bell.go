package logic

import "time"

// NormalBellEntry is one ring of the weekly timetable.
type NormalBellEntry struct {
	Time    TimeOfDay
	Weekday int // 0=Sunday .. 6=Saturday, or EveryDay
}

func (e NormalBellEntry) ringsOn(weekday int) bool {
	return e.Weekday == EveryDay || e.Weekday == weekday
}

// SpecialPeriod overrides the normal timetable between two dates.
type SpecialPeriod struct {
	Label string
	Start Date
	End   Date
	Daily [7]TimeOfDay // indexed by weekday, NoTime = no ring that day
}

// EmptyDaily returns a daily schedule with no ring on any weekday.
func EmptyDaily() [7]TimeOfDay {
	var d [7]TimeOfDay
	for i := range d {
		d[i] = NoTime
	}
	return d
}

// Covers reports whether d lies within the period, ignoring the year.
func (p SpecialPeriod) Covers(d Date) bool {
	return DateInRange(d, p.Start, p.End)
}

// Slot returns the ring time for weekday, or NoTime.
func (p SpecialPeriod) Slot(weekday int) TimeOfDay {
	if weekday < 0 || weekday > 6 {
		return NoTime
	}
	return p.Daily[weekday]
}

// Schedule is the pair of normalized bell tables.
type Schedule struct {
	Normal  []NormalBellEntry
	Special []SpecialPeriod
}

// RingSource names the table that triggered a ring.
type RingSource string

const (
	SourceNone    RingSource = ""
	SourceSpecial RingSource = "SPECIAL"
	SourceNormal  RingSource = "NORMAL"
)

// MatchRing decides which table, if any, rings the bell at exactly now.
//
// The first special period whose date range contains today decides the day
// when its weekday slot is populated: only that minute can ring. An empty slot
// falls through to the normal timetable.
func MatchRing(now Timestamp, normal []NormalBellEntry, special []SpecialPeriod) RingSource {
	clock := now.Clock()
	date := now.Date()

	for _, p := range special {
		if !p.Covers(date) {
			continue
		}
		slot := p.Slot(now.Weekday)
		if !slot.IsSet() {
			break
		}
		if slot == clock {
			return SourceSpecial
		}
		return SourceNone
	}

	for _, e := range normal {
		if e.ringsOn(now.Weekday) && e.Time == clock {
			return SourceNormal
		}
	}
	return SourceNone
}

// ShouldRing reports whether the bell fires at exactly now.
func ShouldRing(now Timestamp, normal []NormalBellEntry, special []SpecialPeriod) bool {
	return MatchRing(now, normal, special) != SourceNone
}

// NextBell returns the next ring strictly after now within one week, or NoTime.
func NextBell(now Timestamp, normal []NormalBellEntry, special []SpecialPeriod) TimeOfDay {
	next, _ := NextBellIn(now, normal, special)
	return next
}

// NextBellIn returns the next ring strictly after now and the minutes until
// it. Both tables are searched; the nearest ring wins regardless of source.
// It returns NoTime, 0 when nothing rings within one week.
func NextBellIn(now Timestamp, normal []NormalBellEntry, special []SpecialPeriod) (TimeOfDay, int) {
	current := now.Minutes()
	best := NoTime
	bestDiff := minutesPerWeek + 1

	consider := func(t TimeOfDay, diff int) {
		if diff > 0 && diff < bestDiff {
			bestDiff = diff
			best = t
		}
	}

	today := time.Date(now.Year, time.Month(now.Month), now.Day, 0, 0, 0, 0, time.UTC)
	for _, p := range special {
		for offset := 0; offset < 7; offset++ {
			day := today.AddDate(0, 0, offset)
			if !p.Covers(Date{Day: day.Day(), Month: int(day.Month())}) {
				continue
			}
			slot := p.Slot((now.Weekday + offset) % 7)
			if !slot.Valid() {
				continue
			}
			consider(slot, offset*minutesPerDay+slot.Minutes()-current)
		}
	}

	for _, e := range normal {
		if !e.Time.Valid() {
			continue
		}
		bell := e.Time.Minutes()

		var diff int
		if e.Weekday == EveryDay {
			diff = bell - current
			if diff <= 0 {
				diff += minutesPerDay
			}
		} else {
			if e.Weekday < 0 || e.Weekday > 6 {
				continue
			}
			dayDiff := (e.Weekday - now.Weekday + 7) % 7
			if dayDiff == 0 && bell <= current {
				dayDiff = 7
			}
			diff = dayDiff*minutesPerDay + bell - current
		}
		consider(e.Time, diff)
	}

	if !best.IsSet() {
		return NoTime, 0
	}
	return best, bestDiff
}
