package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Instance      string       `json:"instance,omitempty"`
	Lighting      ActuatorJSON `json:"lighting"`
	Irrigation    ActuatorJSON `json:"irrigation"`
	Bell          BellJSON     `json:"bell"`
	Sun           SunJSON      `json:"sun"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	LastReload    string       `json:"last_reload,omitempty"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Config        *ConfigJSON  `json:"config,omitempty"`
}

// ActuatorJSON is an interval relay and its schedule.
type ActuatorJSON struct {
	State  string  `json:"state"`
	Mode   string  `json:"mode"`
	Offset int     `json:"offset_minutes,omitempty"`
	Window *string `json:"window,omitempty"`
}

// BellJSON is the bell relay and its tables.
type BellJSON struct {
	State          string `json:"state"`
	Ringing        bool   `json:"ringing"`
	NormalEntries  int    `json:"normal_entries"`
	SpecialPeriods int    `json:"special_periods"`
	Next           string `json:"next"`
	NextInMinutes  int    `json:"next_in_minutes"`
	LastTriggered  string `json:"last_triggered,omitempty"`
	LastSource     string `json:"last_source,omitempty"`
}

// SunJSON holds today's sun times as HH:MM ("--:--" when none).
type SunJSON struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Buffered  int    `json:"buffered"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	LightingOn    int `json:"lighting_on"`
	LightingOff   int `json:"lighting_off"`
	IrrigationOn  int `json:"irrigation_on"`
	IrrigationOff int `json:"irrigation_off"`
	BellRings     int `json:"bell_rings"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs      int64    `json:"tick_ms"`
	HeartbeatMs int64    `json:"heartbeat_ms"`
	RingMs      int64    `json:"ring_ms"`
	Broker      string   `json:"broker"`
	TopicRoot   string   `json:"topic_root"`
	HTTPAddr    string   `json:"http_addr"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Timezone    string   `json:"timezone"`
	Pins        PinsJSON `json:"pins"`
}

// PinsJSON is the relay wiring.
type PinsJSON struct {
	Lighting   int `json:"lighting"`
	Irrigation int `json:"irrigation"`
	Bell       int `json:"bell"`
}

func stateString(s logic.State) string {
	if s == "" {
		return "UNKNOWN"
	}
	return string(s)
}

func modeString(m logic.Mode) string {
	if m == logic.ModeNone {
		return "NONE"
	}
	return string(m)
}

func actuatorJSON(state logic.State, cfg logic.ActuatorConfig) ActuatorJSON {
	a := ActuatorJSON{
		State:  stateString(state),
		Mode:   modeString(cfg.Mode),
		Offset: cfg.OffsetMinutes,
	}
	if cfg.Manual != nil {
		w := cfg.Manual.Start.String() + "-" + cfg.Manual.End.String()
		a.Window = &w
	}
	return a
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Instance:   snap.InstanceID,
		Lighting:   actuatorJSON(snap.States.Lighting, snap.Lighting),
		Irrigation: actuatorJSON(snap.States.Irrigation, snap.Irrigation),
		Bell: BellJSON{
			State:          stateString(snap.States.Bell),
			Ringing:        snap.Ringing,
			NormalEntries:  len(snap.Bells.Normal),
			SpecialPeriods: len(snap.Bells.Special),
			Next:           snap.NextBell.String(),
			NextInMinutes:  snap.NextBellIn,
			LastSource:     string(snap.LastRingSource),
		},
		Sun: SunJSON{
			Sunrise: snap.Sun.Sunrise.String(),
			Sunset:  snap.Sun.Sunset.String(),
		},
		Ready:         snap.Baselined,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker, Buffered: snap.MQTTBuffered},
		Counts: CountsJSON{
			LightingOn:    snap.Counts.LightingOn,
			LightingOff:   snap.Counts.LightingOff,
			IrrigationOn:  snap.Counts.IrrigationOn,
			IrrigationOff: snap.Counts.IrrigationOff,
			BellRings:     snap.Counts.BellRings,
		},
	}
	if !snap.LastRing.IsZero() {
		inner.Bell.LastTriggered = snap.LastRing.UTC().Format(time.RFC3339)
	}
	if !snap.LastReload.IsZero() {
		inner.LastReload = snap.LastReload.UTC().Format(time.RFC3339)
	}
	return inner
}

func buildConfig(snap Snapshot) *ConfigJSON {
	c := snap.Config
	return &ConfigJSON{
		TickMs:      c.TickMs,
		HeartbeatMs: c.HeartbeatMs,
		RingMs:      c.RingMs,
		Broker:      c.Broker,
		TopicRoot:   c.TopicRoot,
		HTTPAddr:    c.HTTPAddr,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		Timezone:    c.Timezone,
		Pins:        PinsJSON{Lighting: c.Pins.Lighting, Irrigation: c.Pins.Irrigation, Bell: c.Pins.Bell},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	inner.Config = buildConfig(snap)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
// The config block is included on STARTUP only.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	if event == "STARTUP" {
		inner.Config = buildConfig(snap)
	}

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
