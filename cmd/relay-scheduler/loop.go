package main

import (
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/relay-scheduler/internal/config"
	"github.com/sweeney/relay-scheduler/internal/gpio"
	"github.com/sweeney/relay-scheduler/internal/logic"
	"github.com/sweeney/relay-scheduler/internal/metrics"
	"github.com/sweeney/relay-scheduler/internal/mqtt"
	"github.com/sweeney/relay-scheduler/internal/schedule"
	"github.com/sweeney/relay-scheduler/internal/status"
)

// daemon holds everything the scheduler loop touches. Tracker, Metrics,
// Configs and MQTTStatus are optional.
type daemon struct {
	ctrl       *logic.Controller
	relays     gpio.Writer
	publisher  mqtt.Publisher
	configs    <-chan mqtt.ConfigMessage
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	metrics    *metrics.Metrics
	sun        func(time.Time) logic.SunTimes
	log        zerolog.Logger

	heartbeat     time.Duration
	stateInterval time.Duration
	now           func() time.Time

	lastState  time.Time
	lastMinute logic.Timestamp
	announce   bool // log the next bell on the coming tick
	driveErr   bool
}

// runLoop evaluates the schedules on every tick, applies config documents
// between ticks and returns after publishing SHUTDOWN on a signal.
func runLoop(d *daemon, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			d.shutdown(s)
			return nil

		case msg, ok := <-d.configs:
			if !ok {
				d.configs = nil
				continue
			}
			d.applyConfig(msg)

		case <-tick:
			d.tick(d.now())
		}
	}
}

// applyTables installs a full set of tables, e.g. the config-file fallback.
func (d *daemon) applyTables(t config.Tables, at time.Time) {
	d.ctrl.SetLighting(t.Lighting)
	d.ctrl.SetIrrigation(t.Irrigation)
	d.ctrl.SetNormalBells(t.Bells.Normal)
	d.ctrl.SetSpecialPeriods(t.Bells.Special)
	d.reloaded(at)
}

// applyConfig replaces one table from an MQTT document. A document that does
// not decode leaves the previous table in place.
func (d *daemon) applyConfig(msg mqtt.ConfigMessage) {
	log := d.log.With().Str("kind", string(msg.Kind)).Logger()

	var err error
	switch msg.Kind {
	case mqtt.ConfigLighting:
		var cfg logic.ActuatorConfig
		if cfg, err = schedule.DecodeActuator(msg.Payload, log); err == nil {
			d.ctrl.SetLighting(cfg)
		}
	case mqtt.ConfigIrrigation:
		var cfg logic.ActuatorConfig
		if cfg, err = schedule.DecodeActuator(msg.Payload, log); err == nil {
			d.ctrl.SetIrrigation(cfg)
		}
	case mqtt.ConfigNormalBells:
		var entries []logic.NormalBellEntry
		if entries, err = schedule.DecodeNormal(msg.Payload, log); err == nil {
			d.ctrl.SetNormalBells(entries)
		}
	case mqtt.ConfigSpecialBells:
		var periods []logic.SpecialPeriod
		if periods, err = schedule.DecodeSpecial(msg.Payload, log); err == nil {
			d.ctrl.SetSpecialPeriods(periods)
		}
	default:
		log.Warn().Msg("unknown config document, ignoring")
		return
	}

	if d.metrics != nil {
		d.metrics.ObserveReload(string(msg.Kind), err)
	}
	if err != nil {
		log.Warn().Err(err).Msg("config rejected, keeping previous schedule")
		return
	}
	log.Info().Int("bytes", len(msg.Payload)).Msg("schedule reloaded")
	d.reloaded(msg.Received)
}

func (d *daemon) reloaded(at time.Time) {
	bells := d.ctrl.Bells()
	if d.tracker != nil {
		d.tracker.SetSchedules(d.ctrl.Lighting(), d.ctrl.Irrigation(), bells, at)
	}
	if d.metrics != nil {
		d.metrics.SetTableSizes(len(bells.Normal), len(bells.Special))
	}
	d.announce = true
}

// refreshNextBell recomputes the next ring for the status page.
func (d *daemon) refreshNextBell(t time.Time, announce bool) {
	next, in := d.ctrl.NextBell(t)
	if announce {
		if next.IsSet() {
			d.log.Info().Str("next_bell", next.String()).Int("in_minutes", in).Msg("next bell")
		} else {
			d.log.Info().Msg("no bell in the next 7 days")
		}
	}
	if d.tracker != nil {
		d.tracker.SetNextBell(next, in)
	}
}

func (d *daemon) tick(t time.Time) {
	started := time.Now()
	sun := d.sun(t)
	wasRinging := d.ctrl.IsRinging()

	events := d.ctrl.Process(logic.Input{Time: t, Sun: sun})
	d.drive()

	for _, e := range events {
		ev := d.log.Info().Str("event", string(e.Type))
		if e.Source != logic.SourceNone {
			ev = ev.Str("source", string(e.Source))
		}
		ev.Msg("transition")

		if d.metrics != nil {
			d.metrics.ObserveEvent(e)
		}
		if e.Type == logic.EventBellOn && d.tracker != nil {
			d.tracker.SetLastRing(e.Timestamp, e.Source)
		}
		if err := d.publisher.Publish(e); err != nil {
			d.log.Warn().Err(err).Str("event", string(e.Type)).Msg("publish error")
		}
	}

	ringEnded := wasRinging && !d.ctrl.IsRinging()
	minute := logic.TimestampOf(t)
	if d.announce || ringEnded || minute != d.lastMinute {
		d.lastMinute = minute
		d.refreshNextBell(t, d.announce || ringEnded)
		d.announce = false
	}

	if d.tracker != nil {
		d.tracker.SetSun(sun)
		d.updateTracker()
	}
	if d.metrics != nil {
		d.metrics.SetStates(d.ctrl.CurrentState())
		if d.mqttStatus != nil {
			d.metrics.SetMQTTConnected(d.mqttStatus.IsConnected())
		}
	}

	if len(events) > 0 || d.lastState.IsZero() ||
		(d.stateInterval > 0 && t.Sub(d.lastState) >= d.stateInterval) {
		d.publishState(t)
	}

	if hb := d.ctrl.CheckHeartbeat(t, d.heartbeat); hb != nil {
		c := hb.Counts
		d.log.Info().Dur("uptime", hb.Uptime).
			Int("lighting_on", c.LightingOn).Int("lighting_off", c.LightingOff).
			Int("irrigation_on", c.IrrigationOn).Int("irrigation_off", c.IrrigationOff).
			Int("bell_rings", c.BellRings).Msg("heartbeat")

		hbEvent := mqtt.SystemEvent{Timestamp: hb.Timestamp, Event: "HEARTBEAT"}
		if d.tracker != nil {
			hbEvent.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), "HEARTBEAT", "")
		}
		if err := d.publisher.PublishSystem(hbEvent); err != nil {
			d.log.Warn().Err(err).Msg("heartbeat publish error")
		}
	}

	if d.metrics != nil {
		d.metrics.ObserveTick(time.Since(started))
	}
}

// drive writes every relay from the controller state. Failures are logged
// once until the next successful write.
func (d *daemon) drive() {
	states := d.ctrl.CurrentState()
	var failed error
	for _, a := range logic.Actuators {
		if err := d.relays.Set(a, states.Of(a) == logic.StateOn); err != nil {
			failed = err
			if !d.driveErr {
				d.log.Error().Err(err).Str("actuator", string(a)).Msg("gpio write error")
			}
		}
	}
	if failed == nil && d.driveErr {
		d.log.Info().Msg("gpio writes recovered")
	}
	d.driveErr = failed != nil
}

func (d *daemon) publishState(t time.Time) {
	d.lastState = t
	lastRing, source := d.ctrl.LastRing()
	next, in := d.ctrl.NextBell(t)
	report := mqtt.StateReport{
		Timestamp:      t,
		States:         d.ctrl.CurrentState(),
		LightingMode:   d.ctrl.Lighting().Mode,
		IrrigationMode: d.ctrl.Irrigation().Mode,
		Ringing:        d.ctrl.IsRinging(),
		LastRing:       lastRing,
		LastRingSource: source,
		NextBell:       next,
		NextBellIn:     in,
	}
	if err := d.publisher.PublishState(report); err != nil {
		d.log.Warn().Err(err).Msg("state publish error")
	}
}

func (d *daemon) updateTracker() {
	d.tracker.Update(d.ctrl.CurrentState(), d.ctrl.IsBaselined(), d.ctrl.IsRinging(), d.ctrl.EventCountsSnapshot())
	d.updateMQTTStatus()
}

func (d *daemon) updateMQTTStatus() {
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
		d.tracker.SetMQTTBuffered(d.mqttStatus.Buffered())
	}
}

// shutdown drives every relay off and publishes SHUTDOWN.
func (d *daemon) shutdown(s os.Signal) {
	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}
	d.log.Info().Str("signal", signalName).Msg("shutting down")

	for _, a := range logic.Actuators {
		if err := d.relays.Set(a, false); err != nil {
			d.log.Error().Err(err).Str("actuator", string(a)).Msg("failed to release relay")
		}
	}

	event := mqtt.SystemEvent{
		Timestamp: d.now(),
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if d.tracker != nil {
		released := logic.States{Lighting: logic.StateOff, Irrigation: logic.StateOff, Bell: logic.StateOff}
		d.tracker.Update(released, d.ctrl.IsBaselined(), false, d.ctrl.EventCountsSnapshot())
		d.updateMQTTStatus()
		event.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), "SHUTDOWN", signalName)
	}
	if err := d.publisher.PublishSystem(event); err != nil {
		d.log.Warn().Err(err).Msg("failed to publish shutdown event")
	} else {
		d.log.Info().Msg("published shutdown event")
	}
}
