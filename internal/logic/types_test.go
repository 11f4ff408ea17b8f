package logic

import (
	"testing"
	"time"
)

func TestTimeOfDaySentinel(t *testing.T) {
	if NoTime.IsSet() {
		t.Error("NoTime should not be set")
	}
	if !At(0, 0).IsSet() {
		t.Error("midnight is a real time")
	}
	if NoTime.String() != "--:--" {
		t.Errorf("got %q", NoTime.String())
	}
	if At(7, 5).String() != "07:05" {
		t.Errorf("got %q", At(7, 5).String())
	}
}

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("7:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != At(7, 30) {
		t.Errorf("got %v, want 07:30", got)
	}

	for _, bad := range []string{"", "0730", "24:00", "12:60", "ab:cd", "-1:00"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("ParseTimeOfDay(%q) should fail", bad)
		}
	}
}

func TestTimestampOf(t *testing.T) {
	ts := TimestampOf(time.Date(2026, 3, 15, 9, 41, 30, 0, time.UTC))
	want := Timestamp{Hour: 9, Minute: 41, Day: 15, Month: 3, Year: 2026, Weekday: 0}
	if ts != want {
		t.Errorf("got %+v, want %+v", ts, want)
	}
	if ts.Minutes() != 9*60+41 {
		t.Errorf("minutes: got %d", ts.Minutes())
	}
	if ts.Clock() != At(9, 41) {
		t.Errorf("clock: got %v", ts.Clock())
	}
	if ts.String() != "Sun 2026-03-15 09:41" {
		t.Errorf("string: got %q", ts.String())
	}
}

func TestStatesOf(t *testing.T) {
	s := States{Lighting: StateOn, Irrigation: StateOff, Bell: StateOn}
	if s.Of(Lighting) != StateOn || s.Of(Irrigation) != StateOff || s.Of(Bell) != StateOn {
		t.Errorf("unexpected lookups for %+v", s)
	}
	if s.Of(Actuator("PUMP")) != "" {
		t.Error("unknown actuator should have no state")
	}
}
