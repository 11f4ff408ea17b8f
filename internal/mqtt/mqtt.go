// Package mqtt provides MQTT publishing and config subscription with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

// DefaultRoot is the topic prefix used when none is configured.
const DefaultRoot = "relay-scheduler"

// Topics holds every topic derived from a root prefix.
type Topics struct {
	Events string
	State  string
	System string
	Config map[ConfigKind]string
}

// TopicsFor derives the topic set for root.
func TopicsFor(root string) Topics {
	if root == "" {
		root = DefaultRoot
	}
	t := Topics{
		Events: root + "/events",
		State:  root + "/state",
		System: root + "/system",
		Config: make(map[ConfigKind]string, len(ConfigKinds)),
	}
	for _, k := range ConfigKinds {
		t.Config[k] = root + "/config/" + string(k)
	}
	return t
}

// KindOf returns the config kind subscribed on topic.
func (t Topics) KindOf(topic string) (ConfigKind, bool) {
	for k, tp := range t.Config {
		if tp == topic {
			return k, true
		}
	}
	return "", false
}

// ConfigKind names one retained configuration document.
type ConfigKind string

const (
	ConfigLighting     ConfigKind = "lighting"
	ConfigIrrigation   ConfigKind = "irrigation"
	ConfigNormalBells  ConfigKind = "bells/normal"
	ConfigSpecialBells ConfigKind = "bells/special"
)

// ConfigKinds lists every config document in subscription order.
var ConfigKinds = []ConfigKind{ConfigLighting, ConfigIrrigation, ConfigNormalBells, ConfigSpecialBells}

// ConfigMessage is one received configuration document.
type ConfigMessage struct {
	Kind     ConfigKind
	Payload  []byte
	Received time.Time
}

// Publisher publishes relay events and state to MQTT.
type Publisher interface {
	// Publish sends a relay transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishState sends the retained state document.
	PublishState(state StateReport) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConfigSource delivers configuration documents as they change.
type ConfigSource interface {
	Configs() <-chan ConfigMessage
}

// ConnectionStatus reports whether the MQTT connection is active and how many
// messages wait for it.
type ConnectionStatus interface {
	IsConnected() bool
	Buffered() int
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// StateReport is the current state of all relays and the bell schedule.
type StateReport struct {
	Timestamp      time.Time
	States         logic.States
	LightingMode   logic.Mode
	IrrigationMode logic.Mode
	Ringing        bool
	LastRing       time.Time
	LastRingSource logic.RingSource
	NextBell       logic.TimeOfDay
	NextBellIn     int
}

// Payload represents the MQTT message payload for a relay event.
type Payload struct {
	Relay RelayPayload `json:"relay"`
}

// RelayPayload contains the event details.
type RelayPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Actuator  string `json:"actuator"`
	State     string `json:"state"`
	Source    string `json:"source,omitempty"`
}

// FormatPayload creates the JSON payload for a relay event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Relay: RelayPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Actuator:  string(event.Actuator),
			State:     string(event.State),
			Source:    string(event.Source),
		},
	}
	return json.Marshal(payload)
}

// StatePayload is the retained state document.
type StatePayload struct {
	State StateInner `json:"state"`
}

// StateInner contains the per-relay state.
type StateInner struct {
	Timestamp  string       `json:"timestamp"`
	Lighting   ChannelState `json:"lighting"`
	Irrigation ChannelState `json:"irrigation"`
	Bell       BellState    `json:"bell"`
}

// ChannelState represents a single interval relay.
type ChannelState struct {
	State string `json:"state"`
	Mode  string `json:"mode,omitempty"`
}

// BellState represents the bell relay and its schedule.
type BellState struct {
	State         string `json:"state"`
	Ringing       bool   `json:"ringing"`
	LastTriggered string `json:"last_triggered,omitempty"`
	LastSource    string `json:"last_source,omitempty"`
	Next          string `json:"next"`
	NextInMinutes int    `json:"next_in_minutes,omitempty"`
}

// FormatStatePayload creates the JSON payload for the state document.
// A missing next bell is rendered as "--:--".
func FormatStatePayload(s StateReport) ([]byte, error) {
	inner := StateInner{
		Timestamp:  s.Timestamp.UTC().Format(time.RFC3339),
		Lighting:   ChannelState{State: stateOrUnknown(s.States.Lighting), Mode: string(s.LightingMode)},
		Irrigation: ChannelState{State: stateOrUnknown(s.States.Irrigation), Mode: string(s.IrrigationMode)},
		Bell: BellState{
			State:         stateOrUnknown(s.States.Bell),
			Ringing:       s.Ringing,
			LastSource:    string(s.LastRingSource),
			Next:          s.NextBell.String(),
			NextInMinutes: s.NextBellIn,
		},
	}
	if !s.LastRing.IsZero() {
		inner.Bell.LastTriggered = s.LastRing.UTC().Format(time.RFC3339)
	}
	return json.Marshal(StatePayload{State: inner})
}

func stateOrUnknown(s logic.State) string {
	if s == "" {
		return "UNKNOWN"
	}
	return string(s)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
