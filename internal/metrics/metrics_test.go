package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

func TestObserveEvent(t *testing.T) {
	m := New()

	m.ObserveEvent(logic.Event{Type: logic.EventLightingOn, Actuator: logic.Lighting, State: logic.StateOn})
	m.ObserveEvent(logic.Event{Type: logic.EventBellOn, Actuator: logic.Bell, State: logic.StateOn, Source: logic.SourceSpecial})
	m.ObserveEvent(logic.Event{Type: logic.EventBellOff, Actuator: logic.Bell, State: logic.StateOff})
	m.ObserveEvent(logic.Event{Type: logic.EventBellOn, Actuator: logic.Bell, State: logic.StateOn, Source: logic.SourceNormal})

	if got := testutil.ToFloat64(m.Transitions.WithLabelValues("LIGHTING", "ON")); got != 1 {
		t.Errorf("lighting ON transitions: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Transitions.WithLabelValues("BELL", "ON")); got != 2 {
		t.Errorf("bell ON transitions: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.BellRings.WithLabelValues("SPECIAL")); got != 1 {
		t.Errorf("special rings: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BellRings.WithLabelValues("NORMAL")); got != 1 {
		t.Errorf("normal rings: got %v, want 1", got)
	}
}

func TestSetStates(t *testing.T) {
	m := New()
	m.SetStates(logic.States{Lighting: logic.StateOn, Irrigation: logic.StateOff})

	if got := testutil.ToFloat64(m.ActuatorOn.WithLabelValues("LIGHTING")); got != 1 {
		t.Errorf("lighting: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ActuatorOn.WithLabelValues("IRRIGATION")); got != 0 {
		t.Errorf("irrigation: got %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.ActuatorOn.WithLabelValues("BELL")); got != 0 {
		t.Errorf("unknown bell should read 0, got %v", got)
	}
}

func TestObserveReload(t *testing.T) {
	m := New()
	m.ObserveReload("lighting", nil)
	m.ObserveReload("lighting", nil)
	m.ObserveReload("bells/special", errors.New("not a collection"))

	if got := testutil.ToFloat64(m.Reloads.WithLabelValues("lighting", "success")); got != 2 {
		t.Errorf("lighting success: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Reloads.WithLabelValues("bells/special", "error")); got != 1 {
		t.Errorf("special error: got %v, want 1", got)
	}
}

func TestGauges(t *testing.T) {
	m := New()
	m.SetTableSizes(12, 3)
	m.SetMQTTConnected(true)

	if got := testutil.ToFloat64(m.TableEntries.WithLabelValues("normal")); got != 12 {
		t.Errorf("normal: got %v", got)
	}
	if got := testutil.ToFloat64(m.TableEntries.WithLabelValues("special")); got != 3 {
		t.Errorf("special: got %v", got)
	}
	if got := testutil.ToFloat64(m.MQTTConnected); got != 1 {
		t.Errorf("mqtt: got %v", got)
	}
	m.SetMQTTConnected(false)
	if got := testutil.ToFloat64(m.MQTTConnected); got != 0 {
		t.Errorf("mqtt after disconnect: got %v", got)
	}
}

func TestNewIsIndependent(t *testing.T) {
	a := New()
	b := New()
	a.SetMQTTConnected(true)
	if got := testutil.ToFloat64(b.MQTTConnected); got != 0 {
		t.Errorf("registries should not share state, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.SetStates(logic.States{Lighting: logic.StateOn})
	m.ObserveTick(2 * time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`relay_scheduler_actuator_on{actuator="LIGHTING"} 1`,
		"relay_scheduler_tick_duration_seconds_count 1",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected %q in exposition", want)
		}
	}
}
