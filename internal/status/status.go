// Package status provides a thread-safe status tracker for the relay-scheduler daemon.
// It is read by the HTTP handlers, the websocket stream and MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	TickMs      int64
	HeartbeatMs int64
	RingMs      int64
	Broker      string
	TopicRoot   string
	HTTPAddr    string
	Latitude    float64
	Longitude   float64
	Timezone    string
	Pins        Pins
}

// Pins is a local copy of the relay wiring to avoid importing internal/gpio.
type Pins struct {
	Lighting   int
	Irrigation int
	Bell       int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	InstanceID     string
	States         logic.States
	Baselined      bool
	Ringing        bool
	Lighting       logic.ActuatorConfig
	Irrigation     logic.ActuatorConfig
	Bells          logic.Schedule
	NextBell       logic.TimeOfDay
	NextBellIn     int
	LastRing       time.Time
	LastRingSource logic.RingSource
	Sun            logic.SunTimes
	LastReload     time.Time
	Counts         logic.EventCounts
	StartTime      time.Time
	Now            time.Time
	MQTTConnected  bool
	MQTTBuffered   int
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(instanceID string, startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			InstanceID: instanceID,
			StartTime:  startTime,
			Config:     cfg,
			NextBell:   logic.NoTime,
			Sun:        logic.SunTimes{Sunrise: logic.NoTime, Sunset: logic.NoTime},
		},
	}
}

// Update sets relay states, baseline status, and event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(states logic.States, baselined, ringing bool, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.States = states
	t.snap.Baselined = baselined
	t.snap.Ringing = ringing
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetSchedules records the active schedules after a reload.
func (t *Tracker) SetSchedules(lighting, irrigation logic.ActuatorConfig, bells logic.Schedule, at time.Time) {
	t.mu.Lock()
	t.snap.Lighting = lighting
	t.snap.Irrigation = irrigation
	t.snap.Bells = bells
	t.snap.LastReload = at
	t.mu.Unlock()
}

// SetNextBell records the next scheduled ring.
func (t *Tracker) SetNextBell(next logic.TimeOfDay, in int) {
	t.mu.Lock()
	t.snap.NextBell = next
	t.snap.NextBellIn = in
	t.mu.Unlock()
}

// SetLastRing records when and why the bell last rang.
func (t *Tracker) SetLastRing(at time.Time, src logic.RingSource) {
	t.mu.Lock()
	t.snap.LastRing = at
	t.snap.LastRingSource = src
	t.mu.Unlock()
}

// SetSun records today's sun times.
func (t *Tracker) SetSun(sun logic.SunTimes) {
	t.mu.Lock()
	t.snap.Sun = sun
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTBuffered records how many messages wait for the broker.
func (t *Tracker) SetMQTTBuffered(n int) {
	t.mu.Lock()
	t.snap.MQTTBuffered = n
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
