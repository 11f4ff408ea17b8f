package logic

import "time"

// Controller owns the schedules and relay states and turns ticks into
// transition events. It is not safe for concurrent use: schedule replacement
// and Process must be called from the same loop.
type Controller struct {
	ringDuration time.Duration

	lighting   ActuatorConfig
	irrigation ActuatorConfig
	bells      Schedule

	baselined  bool
	states     States
	ringing    bool
	ringStart  time.Time
	lastRing   time.Time
	lastSource RingSource

	// lastChecked guards the bell check so it runs once per wall-clock minute.
	lastChecked Timestamp
	checked     bool

	startTime     time.Time
	lastHeartbeat time.Time
	eventCounts   EventCounts
}

// NewController creates a controller whose bell rings for ringDuration once
// triggered. The startTime is used for calculating uptime in heartbeat events.
func NewController(ringDuration time.Duration, startTime time.Time) *Controller {
	return &Controller{
		ringDuration:  ringDuration,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// SetLighting replaces the lighting schedule.
func (c *Controller) SetLighting(cfg ActuatorConfig) {
	c.lighting = copyConfig(cfg)
}

// SetIrrigation replaces the irrigation schedule.
func (c *Controller) SetIrrigation(cfg ActuatorConfig) {
	c.irrigation = copyConfig(cfg)
}

// SetNormalBells replaces the weekly bell table.
func (c *Controller) SetNormalBells(entries []NormalBellEntry) {
	c.bells.Normal = append([]NormalBellEntry(nil), entries...)
}

// SetSpecialPeriods replaces the special period table.
func (c *Controller) SetSpecialPeriods(periods []SpecialPeriod) {
	c.bells.Special = append([]SpecialPeriod(nil), periods...)
}

func copyConfig(cfg ActuatorConfig) ActuatorConfig {
	if cfg.Manual != nil {
		w := *cfg.Manual
		cfg.Manual = &w
	}
	return cfg
}

// Lighting returns the active lighting schedule.
func (c *Controller) Lighting() ActuatorConfig {
	return copyConfig(c.lighting)
}

// Irrigation returns the active irrigation schedule.
func (c *Controller) Irrigation() ActuatorConfig {
	return copyConfig(c.irrigation)
}

// Bells returns a copy of the active bell tables.
func (c *Controller) Bells() Schedule {
	return Schedule{
		Normal:  append([]NormalBellEntry(nil), c.bells.Normal...),
		Special: append([]SpecialPeriod(nil), c.bells.Special...),
	}
}

// Process evaluates every relay at in.Time and returns the transitions.
// The first call establishes the lighting and irrigation baseline without
// events. The bell is checked at most once per distinct minute; a trigger
// while the bell is already ringing is ignored.
func (c *Controller) Process(in Input) []Event {
	now := TimestampOf(in.Time)
	light := boolToState(c.lighting.Active(now, in.Sun))
	irrigation := boolToState(c.irrigation.Active(now, in.Sun))

	var events []Event

	if !c.baselined {
		c.states.Lighting = light
		c.states.Irrigation = irrigation
		c.states.Bell = StateOff
		c.baselined = true
	} else {
		if light != c.states.Lighting {
			c.states.Lighting = light
			events = append(events, c.event(in.Time, Lighting, light))
		}
		if irrigation != c.states.Irrigation {
			c.states.Irrigation = irrigation
			events = append(events, c.event(in.Time, Irrigation, irrigation))
		}
	}

	if c.ringing && in.Time.Sub(c.ringStart) >= c.ringDuration {
		c.ringing = false
		c.states.Bell = StateOff
		events = append(events, c.event(in.Time, Bell, StateOff))
	}

	if !c.checked || now != c.lastChecked {
		c.checked = true
		c.lastChecked = now
		if src := MatchRing(now, c.bells.Normal, c.bells.Special); src != SourceNone && !c.ringing {
			c.ringing = true
			c.ringStart = in.Time
			c.lastRing = in.Time
			c.lastSource = src
			c.states.Bell = StateOn
			e := c.event(in.Time, Bell, StateOn)
			e.Source = src
			events = append(events, e)
		}
	}

	for _, e := range events {
		switch e.Type {
		case EventLightingOn:
			c.eventCounts.LightingOn++
		case EventLightingOff:
			c.eventCounts.LightingOff++
		case EventIrrigationOn:
			c.eventCounts.IrrigationOn++
		case EventIrrigationOff:
			c.eventCounts.IrrigationOff++
		case EventBellOn:
			c.eventCounts.BellRings++
		}
	}

	return events
}

func (c *Controller) event(t time.Time, a Actuator, s State) Event {
	return Event{
		Timestamp: t,
		Type:      eventTypeFor(a, s),
		Actuator:  a,
		State:     s,
	}
}

func boolToState(b bool) State {
	if b {
		return StateOn
	}
	return StateOff
}

func eventTypeFor(a Actuator, s State) EventType {
	on := s == StateOn
	switch a {
	case Lighting:
		if on {
			return EventLightingOn
		}
		return EventLightingOff
	case Irrigation:
		if on {
			return EventIrrigationOn
		}
		return EventIrrigationOff
	default:
		if on {
			return EventBellOn
		}
		return EventBellOff
	}
}

// IsBaselined returns whether the first tick has been processed.
func (c *Controller) IsBaselined() bool {
	return c.baselined
}

// CurrentState returns the relay states after the last tick.
func (c *Controller) CurrentState() States {
	return c.states
}

// IsRinging reports whether the bell relay is currently held on.
func (c *Controller) IsRinging() bool {
	return c.ringing
}

// LastRing returns when and why the bell last fired. The time is zero if it
// has not rung since startup.
func (c *Controller) LastRing() (time.Time, RingSource) {
	return c.lastRing, c.lastSource
}

// NextBell returns the next ring strictly after t and the minutes until it.
func (c *Controller) NextBell(t time.Time) (TimeOfDay, int) {
	return NextBellIn(TimestampOf(t), c.bells.Normal, c.bells.Special)
}

// EventCountsSnapshot returns the counts of events emitted since startup.
func (c *Controller) EventCountsSnapshot() EventCounts {
	return c.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 || !c.baselined {
		return nil
	}
	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.eventCounts,
	}
}
