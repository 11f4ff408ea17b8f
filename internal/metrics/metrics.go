// Package metrics exposes Prometheus collectors for the relay-scheduler daemon.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

const (
	metricPrefix = "relay_scheduler_"

	resultSuccess = "success"
	resultError   = "error"
)

// Metrics bundles the daemon's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ActuatorOn    *prometheus.GaugeVec
	Transitions   *prometheus.CounterVec
	BellRings     *prometheus.CounterVec
	Reloads       *prometheus.CounterVec
	TableEntries  *prometheus.GaugeVec
	MQTTConnected prometheus.Gauge
	TickDuration  prometheus.Histogram
}

// New constructs and registers metrics. Each call uses a fresh registry so
// tests can build as many as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActuatorOn: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "actuator_on",
				Help: "1 when the actuator relay is energised",
			},
			[]string{"actuator"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "transitions_total",
				Help: "Relay transitions by actuator and new state",
			},
			[]string{"actuator", "state"},
		),
		BellRings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "bell_rings_total",
				Help: "Bell rings by schedule source",
			},
			[]string{"source"},
		),
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "schedule_reloads_total",
				Help: "Schedule document reloads by kind and result",
			},
			[]string{"kind", "result"},
		),
		TableEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "schedule_entries",
				Help: "Normalized bell table sizes",
			},
			[]string{"table"},
		),
		MQTTConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "mqtt_connected",
			Help: "1 when the MQTT client is connected",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "tick_duration_seconds",
			Help:    "Time spent evaluating one scheduler tick",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ActuatorOn,
		m.Transitions,
		m.BellRings,
		m.Reloads,
		m.TableEntries,
		m.MQTTConnected,
		m.TickDuration,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveEvent counts a transition, and a ring when it is a BELL_ON.
func (m *Metrics) ObserveEvent(e logic.Event) {
	m.Transitions.WithLabelValues(string(e.Actuator), string(e.State)).Inc()
	if e.Type == logic.EventBellOn {
		src := string(e.Source)
		if src == "" {
			src = "UNKNOWN"
		}
		m.BellRings.WithLabelValues(src).Inc()
	}
}

// SetStates mirrors the current relay states. Unknown counts as off.
func (m *Metrics) SetStates(s logic.States) {
	for _, a := range logic.Actuators {
		v := 0.0
		if s.Of(a) == logic.StateOn {
			v = 1
		}
		m.ActuatorOn.WithLabelValues(string(a)).Set(v)
	}
}

// ObserveReload counts a config document reload.
func (m *Metrics) ObserveReload(kind string, err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	m.Reloads.WithLabelValues(kind, result).Inc()
}

// SetTableSizes records the normalized bell table sizes.
func (m *Metrics) SetTableSizes(normal, special int) {
	m.TableEntries.WithLabelValues("normal").Set(float64(normal))
	m.TableEntries.WithLabelValues("special").Set(float64(special))
}

// SetMQTTConnected records the broker connection state.
func (m *Metrics) SetMQTTConnected(connected bool) {
	if connected {
		m.MQTTConnected.Set(1)
	} else {
		m.MQTTConnected.Set(0)
	}
}

// ObserveTick records how long a tick took.
func (m *Metrics) ObserveTick(d time.Duration) {
	m.TickDuration.Observe(d.Seconds())
}
