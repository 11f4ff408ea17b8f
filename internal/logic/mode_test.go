package logic

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"MANUAL", ModeManual, true},
		{"BEFORE_SUNSET", ModeBeforeSunset, true},
		{" AFTER_SUNRISE ", ModeAfterSunrise, true},
		{"SUNSET_TO_SUNRISE", ModeSunsetToSunrise, true},
		{"manual", ModeNone, false},
		{"", ModeNone, false},
		{"SUNSET_SUNRISE", ModeNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMode(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		mode, sub string
		want      Mode
		ok        bool
	}{
		{"MANUAL", "", ModeManual, true},
		{"MANUAL", "AFTER_SUNSET", ModeManual, true},
		{"SUNSET_SUNRISE", "AFTER_SUNSET", ModeAfterSunset, true},
		{"SUNSET_SUNRISE", "BEFORE_SUNRISE", ModeBeforeSunrise, true},
		{"SUNSET_SUNRISE", "", ModeSunsetToSunrise, true},
		{"SUNSET_SUNRISE", "MANUAL", ModeNone, false},
		{"SUNSET_SUNRISE", "sometimes", ModeNone, false},
		{"BEFORE_SUNSET", "", ModeBeforeSunset, true},
		{"", "", ModeNone, false},
	}
	for _, tt := range tests {
		got, ok := ResolveMode(tt.mode, tt.sub)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ResolveMode(%q, %q) = %q, %v; want %q, %v", tt.mode, tt.sub, got, ok, tt.want, tt.ok)
		}
	}
}

func TestModeSolar(t *testing.T) {
	if ModeManual.Solar() {
		t.Error("MANUAL is not solar")
	}
	if ModeNone.Solar() {
		t.Error("empty mode is not solar")
	}
	if !ModeSunsetToSunrise.Solar() {
		t.Error("SUNSET_TO_SUNRISE is solar")
	}
}

func TestParseWeekday(t *testing.T) {
	for i, name := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		got, ok := ParseWeekday(name)
		if !ok || got != i {
			t.Errorf("ParseWeekday(%q) = %d, %v; want %d", name, got, ok, i)
		}
	}
	for _, name := range []string{"sun", "MON", "Monday", ""} {
		if got, ok := ParseWeekday(name); ok || got != -1 {
			t.Errorf("ParseWeekday(%q) = %d, %v; want -1, false", name, got, ok)
		}
	}
}

func TestWeekdayName(t *testing.T) {
	if got := WeekdayName(EveryDay); got != "All" {
		t.Errorf("got %q, want All", got)
	}
	if got := WeekdayName(3); got != "Wed" {
		t.Errorf("got %q, want Wed", got)
	}
	if got := WeekdayName(9); got != "?" {
		t.Errorf("got %q, want ?", got)
	}
}
