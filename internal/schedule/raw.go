// Package schedule turns raw schedule documents (JSON from MQTT, YAML from the
// config file) into the normalized tables consumed by package logic.
//
// Malformed records never fail ingestion: they are skipped or defaulted with a
// warning, and the rest of the document is still loaded.
package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Table capacities. Input beyond these is truncated with a warning.
const (
	MaxNormalEntries  = 20
	MaxSpecialPeriods = 10
)

// RawNormalBell is one entry of the weekly bell table as stored by the app.
type RawNormalBell struct {
	Key     string   `json:"-" yaml:"-"`
	Enabled *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Hour    int      `json:"hour" yaml:"hour"`
	Minute  int      `json:"minute" yaml:"minute"`
	Days    []string `json:"days,omitempty" yaml:"days,omitempty"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
}

// RawSpecialPeriod is a date-ranged override in one of two shapes: the simple
// shape carries a single hour/minute for every weekday, the complex shape a
// DailySchedule keyed "0".."6".
type RawSpecialPeriod struct {
	Key           string                `json:"-" yaml:"-"`
	Enabled       *bool                 `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Label         string                `json:"label,omitempty" yaml:"label,omitempty"`
	Hour          *int                  `json:"hour,omitempty" yaml:"hour,omitempty"`
	Minute        *int                  `json:"minute,omitempty" yaml:"minute,omitempty"`
	StartDate     RawDate               `json:"startDate" yaml:"startDate"`
	EndDate       RawDate               `json:"endDate" yaml:"endDate"`
	DailySchedule map[string]RawDaySlot `json:"dailySchedule,omitempty" yaml:"dailySchedule,omitempty"`
}

// RawDaySlot is one weekday of a complex special period. The ring time is
// read from Start when present, otherwise from Hour/Minute.
type RawDaySlot struct {
	Enabled *bool     `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Start   *RawClock `json:"start,omitempty" yaml:"start,omitempty"`
	Hour    *int      `json:"hour,omitempty" yaml:"hour,omitempty"`
	Minute  *int      `json:"minute,omitempty" yaml:"minute,omitempty"`
}

// RawClock is an hour/minute pair where a missing field means "unset".
type RawClock struct {
	Hour   *int `json:"hour" yaml:"hour"`
	Minute *int `json:"minute" yaml:"minute"`
}

// RawDate is either an ISO-8601 string ("2026-03-01" or a full timestamp) or
// a structured {day, month[, year]} object. The French keys jour/mois written
// by older firmware builds are accepted too.
type RawDate struct {
	ISO   string
	Day   *int
	Month *int
	Year  *int
}

type rawDateFields struct {
	Day   *int `json:"day" yaml:"day"`
	Month *int `json:"month" yaml:"month"`
	Year  *int `json:"year" yaml:"year"`
	Jour  *int `json:"jour" yaml:"jour"`
	Mois  *int `json:"mois" yaml:"mois"`
}

func (f rawDateFields) date() RawDate {
	d := RawDate{Day: f.Day, Month: f.Month, Year: f.Year}
	if d.Day == nil {
		d.Day = f.Jour
	}
	if d.Month == nil {
		d.Month = f.Mois
	}
	return d
}

// IsZero reports whether no date was supplied.
func (d RawDate) IsZero() bool {
	return d.ISO == "" && d.Day == nil && d.Month == nil && d.Year == nil
}

// UnmarshalJSON accepts a string, an object or null.
func (d *RawDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*d = RawDate{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = RawDate{ISO: s}
		return nil
	case data[0] == '{':
		var f rawDateFields
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*d = f.date()
		return nil
	}
	return fmt.Errorf("date: unexpected JSON %s", data)
}

// UnmarshalYAML accepts a scalar (ISO string, quoted or not) or a mapping.
func (d *RawDate) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*d = RawDate{}
			return nil
		}
		*d = RawDate{ISO: node.Value}
		return nil
	case yaml.MappingNode:
		var f rawDateFields
		if err := node.Decode(&f); err != nil {
			return err
		}
		*d = f.date()
		return nil
	}
	return fmt.Errorf("date: line %d: want string or mapping", node.Line)
}

// RawActuator is the lighting or irrigation configuration document.
type RawActuator struct {
	Mode      string       `json:"mode" yaml:"mode"`
	Schedules RawSchedules `json:"schedules" yaml:"schedules"`
}

// RawSchedules holds the per-mode settings of an actuator document.
type RawSchedules struct {
	Manual          *RawManual `json:"manual,omitempty" yaml:"manual,omitempty"`
	SunsetToSunrise *RawSolar  `json:"sunset_to_sunrise,omitempty" yaml:"sunset_to_sunrise,omitempty"`
}

// RawManual is a daily window as "HH:MM" strings.
type RawManual struct {
	StartTime string `json:"startTime" yaml:"startTime"`
	EndTime   string `json:"endTime" yaml:"endTime"`
}

// RawSolar selects the solar sub-mode and its offset in minutes.
type RawSolar struct {
	SubMode string `json:"subMode,omitempty" yaml:"subMode,omitempty"`
	Delay   int    `json:"delay,omitempty" yaml:"delay,omitempty"`
}

func enabled(flag *bool) bool {
	return flag == nil || *flag
}
