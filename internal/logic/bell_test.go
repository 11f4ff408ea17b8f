package logic

import "testing"

func ts(day, month, weekday, hour, minute int) Timestamp {
	return Timestamp{Hour: hour, Minute: minute, Day: day, Month: month, Year: 2026, Weekday: weekday}
}

func dailyWith(slots map[int]TimeOfDay) [7]TimeOfDay {
	d := EmptyDaily()
	for day, t := range slots {
		d[day] = t
	}
	return d
}

func TestDateInRange(t *testing.T) {
	winter := [2]Date{{Day: 20, Month: 12}, {Day: 5, Month: 1}}
	march := [2]Date{{Day: 1, Month: 3}, {Day: 31, Month: 3}}

	tests := []struct {
		name  string
		rng   [2]Date
		day   int
		month int
		want  bool
	}{
		{"wrap, december inside", winter, 25, 12, true},
		{"wrap, january after end", winter, 10, 1, false},
		{"wrap, start day", winter, 20, 12, true},
		{"wrap, end day", winter, 5, 1, true},
		{"wrap, new year", winter, 1, 1, true},
		{"wrap, june outside", winter, 15, 6, false},
		{"plain, inside", march, 15, 3, true},
		{"plain, first", march, 1, 3, true},
		{"plain, last", march, 31, 3, true},
		{"plain, after", march, 1, 4, false},
		{"plain, before", march, 28, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateInRange(Date{Day: tt.day, Month: tt.month}, tt.rng[0], tt.rng[1])
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateInRangeYearBoundaryExamples(t *testing.T) {
	start, end := Date{Day: 20, Month: 12}, Date{Day: 5, Month: 1}
	if !DateInRange(Date{Day: 25, Month: 12}, start, end) {
		t.Error("25/12 should be inside 20/12..05/01")
	}
	if !DateInRange(Date{Day: 3, Month: 1}, start, end) {
		t.Error("03/01 should be inside 20/12..05/01")
	}
	if DateInRange(Date{Day: 15, Month: 6}, start, end) {
		t.Error("15/06 should be outside 20/12..05/01")
	}
}

func TestDateInRangeAfterWrappedEnd(t *testing.T) {
	// 10/01 lies after a 05/01 end date.
	if DateInRange(Date{Day: 10, Month: 1}, Date{Day: 20, Month: 12}, Date{Day: 5, Month: 1}) {
		t.Error("10/01 should be outside 20/12..05/01")
	}
	// With the range extended to 15/01 it is inside.
	if !DateInRange(Date{Day: 10, Month: 1}, Date{Day: 20, Month: 12}, Date{Day: 15, Month: 1}) {
		t.Error("10/01 should be inside 20/12..15/01")
	}
}

func TestShouldRingEveryDayEntry(t *testing.T) {
	normal := []NormalBellEntry{{Time: At(8, 0), Weekday: EveryDay}}

	if ShouldRing(ts(6, 1, 2, 7, 59), normal, nil) {
		t.Error("07:59 should not ring")
	}
	if !ShouldRing(ts(6, 1, 2, 8, 0), normal, nil) {
		t.Error("08:00 should ring")
	}
	if ShouldRing(ts(6, 1, 2, 8, 1), normal, nil) {
		t.Error("08:01 should not ring")
	}
}

func TestShouldRingWeekdayEntry(t *testing.T) {
	normal := []NormalBellEntry{
		{Time: At(8, 0), Weekday: 1},
		{Time: At(8, 0), Weekday: 3},
	}

	if !ShouldRing(ts(16, 3, 1, 8, 0), normal, nil) {
		t.Error("Monday 08:00 should ring")
	}
	if ShouldRing(ts(17, 3, 2, 8, 0), normal, nil) {
		t.Error("Tuesday 08:00 should not ring")
	}
	if !ShouldRing(ts(18, 3, 3, 8, 0), normal, nil) {
		t.Error("Wednesday 08:00 should ring")
	}
}

func TestShouldRingNoSchedule(t *testing.T) {
	if ShouldRing(ts(1, 1, 4, 0, 0), nil, nil) {
		t.Error("empty tables should never ring")
	}
}

func TestShouldRingSpecialPeriod(t *testing.T) {
	special := []SpecialPeriod{{
		Start: Date{Day: 1, Month: 3},
		End:   Date{Day: 31, Month: 3},
		Daily: dailyWith(map[int]TimeOfDay{1: At(9, 0)}),
	}}

	if !ShouldRing(ts(15, 3, 1, 9, 0), nil, special) {
		t.Error("Monday 15/03 09:00 should ring from the special period")
	}
	if ShouldRing(ts(15, 3, 1, 9, 1), nil, special) {
		t.Error("Monday 15/03 09:01 should not ring")
	}

	normal := []NormalBellEntry{{Time: At(9, 0), Weekday: 2}}
	if !ShouldRing(ts(1, 4, 2, 9, 0), normal, special) {
		t.Error("Tuesday 01/04 09:00 is outside the period and should ring from the normal table")
	}
}

func TestSpecialSlotBlocksNormalSchedule(t *testing.T) {
	special := []SpecialPeriod{{
		Start: Date{Day: 1, Month: 3},
		End:   Date{Day: 31, Month: 3},
		Daily: dailyWith(map[int]TimeOfDay{1: At(9, 0)}),
	}}
	normal := []NormalBellEntry{{Time: At(8, 0), Weekday: 1}}

	if src := MatchRing(ts(16, 3, 1, 8, 0), normal, special); src != SourceNone {
		t.Errorf("populated special slot should suppress the normal 08:00 ring, got %q", src)
	}
	if src := MatchRing(ts(16, 3, 1, 9, 0), normal, special); src != SourceSpecial {
		t.Errorf("expected SPECIAL at 09:00, got %q", src)
	}
}

func TestEmptySpecialSlotFallsThrough(t *testing.T) {
	special := []SpecialPeriod{{
		Start: Date{Day: 1, Month: 3},
		End:   Date{Day: 31, Month: 3},
		Daily: dailyWith(map[int]TimeOfDay{1: At(9, 0)}),
	}}
	normal := []NormalBellEntry{{Time: At(8, 0), Weekday: 2}}

	// Tuesday has no special slot, so the normal table applies.
	if src := MatchRing(ts(17, 3, 2, 8, 0), normal, special); src != SourceNormal {
		t.Errorf("expected NORMAL fall-through on an empty slot, got %q", src)
	}
}

func TestFirstMatchingSpecialPeriodWins(t *testing.T) {
	special := []SpecialPeriod{
		{
			Label: "first",
			Start: Date{Day: 1, Month: 3},
			End:   Date{Day: 31, Month: 3},
			Daily: dailyWith(map[int]TimeOfDay{1: At(9, 0)}),
		},
		{
			Label: "second",
			Start: Date{Day: 10, Month: 3},
			End:   Date{Day: 20, Month: 3},
			Daily: dailyWith(map[int]TimeOfDay{1: At(10, 0)}),
		},
	}

	if ShouldRing(ts(16, 3, 1, 10, 0), nil, special) {
		t.Error("second overlapping period should not ring when the first decides the day")
	}
	if !ShouldRing(ts(16, 3, 1, 9, 0), nil, special) {
		t.Error("first overlapping period should ring")
	}
}

func TestSpecialPeriodAcrossYearBoundary(t *testing.T) {
	special := []SpecialPeriod{{
		Start: Date{Day: 20, Month: 12},
		End:   Date{Day: 5, Month: 1},
		Daily: dailyWith(map[int]TimeOfDay{5: At(7, 30), 4: At(7, 30)}),
	}}

	if !ShouldRing(ts(25, 12, 5, 7, 30), nil, special) {
		t.Error("Friday 25/12 07:30 should ring")
	}
	if !ShouldRing(ts(1, 1, 4, 7, 30), nil, special) {
		t.Error("Thursday 01/01 07:30 should ring")
	}
	if ShouldRing(ts(15, 6, 1, 7, 30), nil, special) {
		t.Error("15/06 is outside the period")
	}
}

func TestMidnightIsNotSentinel(t *testing.T) {
	normal := []NormalBellEntry{{Time: At(0, 0), Weekday: EveryDay}}
	if !ShouldRing(ts(1, 1, 4, 0, 0), normal, nil) {
		t.Error("a 00:00 entry should ring at midnight")
	}
}

func TestNextBellEveryDay(t *testing.T) {
	normal := []NormalBellEntry{{Time: At(8, 0), Weekday: EveryDay}}

	next, in := NextBellIn(ts(6, 1, 2, 7, 59), normal, nil)
	if next != At(8, 0) {
		t.Errorf("next: got %v, want 08:00", next)
	}
	if in != 1 {
		t.Errorf("minutes until: got %d, want 1", in)
	}
}

func TestNextBellNeverReturnsNow(t *testing.T) {
	normal := []NormalBellEntry{{Time: At(8, 0), Weekday: EveryDay}}
	next, in := NextBellIn(ts(6, 1, 2, 8, 0), normal, nil)
	if next != At(8, 0) || in != 24*60 {
		t.Errorf("every-day entry at now: got %v in %d, want 08:00 in 1440", next, in)
	}

	weekly := []NormalBellEntry{{Time: At(8, 0), Weekday: 2}}
	next, in = NextBellIn(ts(6, 1, 2, 8, 0), weekly, nil)
	if next != At(8, 0) || in != 7*24*60 {
		t.Errorf("weekly entry at now: got %v in %d, want 08:00 in 10080", next, in)
	}
}

func TestNextBellPicksNearest(t *testing.T) {
	normal := []NormalBellEntry{
		{Time: At(7, 0), Weekday: 3},  // Wednesday 07:00
		{Time: At(16, 0), Weekday: 2}, // later today (Tuesday)
		{Time: At(6, 0), Weekday: 2},  // earlier today, next week
		{Time: At(12, 0), Weekday: EveryDay},
	}

	next, in := NextBellIn(ts(6, 1, 2, 12, 30), normal, nil)
	if next != At(16, 0) {
		t.Errorf("next: got %v, want 16:00", next)
	}
	if in != 210 {
		t.Errorf("minutes until: got %d, want 210", in)
	}
}

func TestNextBellWeekdayWrap(t *testing.T) {
	normal := []NormalBellEntry{{Time: At(9, 0), Weekday: 1}} // Monday
	next, in := NextBellIn(ts(10, 10, 6, 10, 0), normal, nil) // Saturday
	if next != At(9, 0) {
		t.Errorf("next: got %v, want 09:00", next)
	}
	want := 2*24*60 - 60
	if in != want {
		t.Errorf("minutes until: got %d, want %d", in, want)
	}
}

func TestNextBellNone(t *testing.T) {
	next, in := NextBellIn(ts(1, 1, 4, 12, 0), nil, nil)
	if next != NoTime || in != 0 {
		t.Errorf("got %v in %d, want NoTime", next, in)
	}
	if NextBell(ts(1, 1, 4, 12, 0), nil, nil).IsSet() {
		t.Error("NextBell should return the sentinel")
	}
}

func TestNextBellSkipsInvalidEntries(t *testing.T) {
	normal := []NormalBellEntry{
		{Time: At(25, 0), Weekday: EveryDay},
		{Time: At(9, 0), Weekday: 9},
	}
	if next := NextBell(ts(1, 1, 4, 12, 0), normal, nil); next.IsSet() {
		t.Errorf("invalid entries should be ignored, got %v", next)
	}
}

func TestNextBellConsidersSpecialAndNormal(t *testing.T) {
	special := []SpecialPeriod{{
		Start: Date{Day: 1, Month: 3},
		End:   Date{Day: 31, Month: 3},
		Daily: dailyWith(map[int]TimeOfDay{1: At(9, 0)}),
	}}
	normal := []NormalBellEntry{{Time: At(8, 30), Weekday: EveryDay}}

	// Monday 16/03 08:00: normal 08:30 is nearer than special 09:00.
	if next := NextBell(ts(16, 3, 1, 8, 0), normal, special); next != At(8, 30) {
		t.Errorf("got %v, want 08:30", next)
	}
	// Monday 16/03 08:45: special 09:00 is nearest.
	if next := NextBell(ts(16, 3, 1, 8, 45), normal, special); next != At(9, 0) {
		t.Errorf("got %v, want 09:00", next)
	}
}

func TestNextBellSpecialLooksAhead(t *testing.T) {
	special := []SpecialPeriod{{
		Start: Date{Day: 1, Month: 3},
		End:   Date{Day: 31, Month: 3},
		Daily: dailyWith(map[int]TimeOfDay{3: At(10, 0)}), // Wednesday
	}}

	// Monday 16/03 12:00 → Wednesday 18/03 10:00.
	next, in := NextBellIn(ts(16, 3, 1, 12, 0), nil, special)
	if next != At(10, 0) {
		t.Fatalf("got %v, want 10:00", next)
	}
	if want := 2*24*60 - 120; in != want {
		t.Errorf("minutes until: got %d, want %d", in, want)
	}
}

func TestNextBellSpecialStopsAtPeriodEnd(t *testing.T) {
	special := []SpecialPeriod{{
		Start: Date{Day: 1, Month: 3},
		End:   Date{Day: 31, Month: 3},
		Daily: dailyWith(map[int]TimeOfDay{3: At(10, 0)}), // Wednesday
	}}

	// Monday 30/03: Wednesday 01/04 is outside the period.
	if next := NextBell(ts(30, 3, 1, 12, 0), nil, special); next.IsSet() {
		t.Errorf("expected none after the period ends, got %v", next)
	}
}

func TestNextBellSpecialStartsDuringLookahead(t *testing.T) {
	special := []SpecialPeriod{{
		Start: Date{Day: 1, Month: 4},
		End:   Date{Day: 30, Month: 4},
		Daily: dailyWith(map[int]TimeOfDay{3: At(10, 0)}), // Wednesday
	}}

	// Monday 30/03 12:00: the period starts on Wednesday 01/04.
	if next := NextBell(ts(30, 3, 1, 12, 0), nil, special); next != At(10, 0) {
		t.Errorf("got %v, want 10:00", next)
	}
}

func TestScenarioTuesdayMorning(t *testing.T) {
	normal := []NormalBellEntry{{Time: At(8, 0), Weekday: EveryDay}}

	before := ts(6, 1, 2, 7, 59)
	if ShouldRing(before, normal, nil) {
		t.Error("07:59 should not ring")
	}
	next, in := NextBellIn(before, normal, nil)
	if next != At(8, 0) || in != 1 {
		t.Errorf("next: got %v in %d, want 08:00 in 1", next, in)
	}

	if !ShouldRing(ts(6, 1, 2, 8, 0), normal, nil) {
		t.Error("08:00 should ring")
	}
}
