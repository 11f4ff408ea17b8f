package schedule

import (
	"testing"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

func TestDecodeNormalObjectKeyedByPushID(t *testing.T) {
	doc := `{
		"-Nb2": {"enabled": true, "hour": 12, "minute": 0, "days": ["Mon"], "label": "lunch"},
		"-Na1": {"enabled": true, "hour": 8, "minute": 0, "days": [], "label": "morning"},
		"-Nc3": {"enabled": false, "hour": 16, "minute": 0, "label": "off"},
		"-Nd4": null
	}`

	got, err := DecodeNormal([]byte(doc), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []logic.NormalBellEntry{
		{Time: logic.At(8, 0), Weekday: logic.EveryDay},
		{Time: logic.At(12, 0), Weekday: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDecodeNormalArrayWithHoles(t *testing.T) {
	doc := `[null, {"hour": 7, "minute": 30}, null, {"hour": 15, "minute": 5, "days": ["Fri"]}]`

	got, err := DecodeNormal([]byte(doc), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %+v", got)
	}
	if got[1] != (logic.NormalBellEntry{Time: logic.At(15, 5), Weekday: 5}) {
		t.Errorf("unexpected second entry %+v", got[1])
	}
}

func TestDecodeNormalBadRecordSkipped(t *testing.T) {
	doc := `{"a": {"hour": "eight"}, "b": {"hour": 9, "minute": 0}}`

	got, err := DecodeNormal([]byte(doc), zerolog.Nop())
	if err != nil {
		t.Fatalf("a bad record should not fail the document: %v", err)
	}
	if len(got) != 1 || got[0].Time != logic.At(9, 0) {
		t.Errorf("expected only the 09:00 entry, got %+v", got)
	}
}

func TestDecodeEmptyDocuments(t *testing.T) {
	for _, doc := range []string{"", "null", "  ", "{}", "[]"} {
		normal, err := DecodeNormal([]byte(doc), zerolog.Nop())
		if err != nil || len(normal) != 0 {
			t.Errorf("DecodeNormal(%q) = %v, %v; want empty", doc, normal, err)
		}
		special, err := DecodeSpecial([]byte(doc), zerolog.Nop())
		if err != nil || len(special) != 0 {
			t.Errorf("DecodeSpecial(%q) = %v, %v; want empty", doc, special, err)
		}
	}
}

func TestDecodeRejectsNonCollection(t *testing.T) {
	for _, doc := range []string{`42`, `"bells"`, `{broken`} {
		if _, err := DecodeNormal([]byte(doc), zerolog.Nop()); err == nil {
			t.Errorf("DecodeNormal(%q) should fail", doc)
		}
		if _, err := DecodeSpecial([]byte(doc), zerolog.Nop()); err == nil {
			t.Errorf("DecodeSpecial(%q) should fail", doc)
		}
	}
}

func TestDecodeSpecialBothShapes(t *testing.T) {
	doc := `{
		"-A": {"enabled": true, "label": "ramadan", "hour": 9, "minute": 0,
		       "startDate": "2026-03-01T00:00:00.000Z", "endDate": "2026-03-31T00:00:00.000Z"},
		"-B": {"enabled": true, "label": "winter",
		       "startDate": {"jour": 20, "mois": 12}, "endDate": {"day": 5, "month": 1},
		       "dailySchedule": {"1": {"start": {"hour": 8, "minute": 30}}}}
	}`

	got, err := DecodeSpecial([]byte(doc), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(got))
	}

	if got[0].Label != "ramadan" || got[0].Daily[4] != logic.At(9, 0) {
		t.Errorf("simple period decoded wrong: %+v", got[0])
	}
	if got[0].Start != (logic.Date{Day: 1, Month: 3, Year: 2026}) {
		t.Errorf("simple start %+v", got[0].Start)
	}

	w := got[1]
	if w.Start != (logic.Date{Day: 20, Month: 12}) || w.End != (logic.Date{Day: 5, Month: 1}) {
		t.Errorf("complex dates %v..%v", w.Start, w.End)
	}
	if w.Daily[1] != logic.At(8, 30) || w.Daily[2].IsSet() {
		t.Errorf("complex daily %v", w.Daily)
	}
}

func TestDecodeActuator(t *testing.T) {
	doc := `{"mode": "SUNSET_SUNRISE", "schedules": {
		"manual": {"startTime": "18:00", "endTime": "23:00"},
		"sunset_to_sunrise": {"subMode": "AFTER_SUNSET", "delay": 10}}}`

	got, err := DecodeActuator([]byte(doc), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Mode != logic.ModeAfterSunset || got.OffsetMinutes != 10 {
		t.Errorf("got %+v", got)
	}
	if got.Manual == nil || got.Manual.Start != logic.At(18, 0) {
		t.Errorf("manual window should be kept for a later switch to MANUAL, got %+v", got.Manual)
	}

	empty, err := DecodeActuator([]byte("null"), zerolog.Nop())
	if err != nil || empty.Mode != logic.ModeNone {
		t.Errorf("null document: got %+v, %v", empty, err)
	}

	if _, err := DecodeActuator([]byte("[1,2]"), zerolog.Nop()); err == nil {
		t.Error("expected error for a non-object document")
	}
}

func TestRawDateYAML(t *testing.T) {
	doc := `
periods:
  - label: exams
    hour: 9
    minute: 0
    startDate: 2026-06-01
    endDate: "2026-06-30"
  - label: winter
    startDate: {day: 20, month: 12}
    endDate: {jour: 5, mois: 1}
    dailySchedule:
      "1": {hour: 8, minute: 0}
`
	var parsed struct {
		Periods []RawSpecialPeriod `yaml:"periods"`
	}
	if err := yaml.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := NormalizeSpecial(parsed.Periods, zerolog.Nop())
	if len(got) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(got))
	}
	if got[0].Start != (logic.Date{Day: 1, Month: 6, Year: 2026}) || got[0].End != (logic.Date{Day: 30, Month: 6, Year: 2026}) {
		t.Errorf("exams dates %+v..%+v", got[0].Start, got[0].End)
	}
	if got[1].End != (logic.Date{Day: 5, Month: 1}) || got[1].Daily[1] != logic.At(8, 0) {
		t.Errorf("winter period %+v", got[1])
	}
}
