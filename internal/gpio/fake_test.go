package gpio

import (
	"errors"
	"testing"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

func TestFakeWriterRecordsWrites(t *testing.T) {
	f := NewFakeWriter()

	if err := f.Set(logic.Lighting, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Set(logic.Bell, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Set(logic.Bell, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !f.Level(logic.Lighting) {
		t.Error("expected lighting high")
	}
	if f.Level(logic.Bell) {
		t.Error("expected bell low after second write")
	}
	if got := f.WritesFor(logic.Bell); len(got) != 2 || !got[0] || got[1] {
		t.Errorf("bell writes: got %v, want [true false]", got)
	}
	if got := len(f.Writes()); got != 3 {
		t.Errorf("expected 3 writes, got %d", got)
	}
}

func TestFakeWriterSetError(t *testing.T) {
	f := NewFakeWriter()
	f.SetError = errors.New("line busy")

	if err := f.Set(logic.Irrigation, true); err == nil {
		t.Error("expected error")
	}
	if len(f.Writes()) != 0 {
		t.Error("failed writes should not be recorded")
	}
}

func TestFakeWriterCloseDrivesOff(t *testing.T) {
	f := NewFakeWriter()
	f.Set(logic.Lighting, true)
	f.Set(logic.Irrigation, true)

	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Closed() {
		t.Error("expected Closed to be true")
	}
	for _, a := range logic.Actuators {
		if f.Level(a) {
			t.Errorf("%s should be off after close", a)
		}
	}
}

func TestFakeWriterReset(t *testing.T) {
	f := NewFakeWriter()
	f.Set(logic.Lighting, true)
	f.Close()

	f.Reset()
	if f.Closed() {
		t.Error("expected Closed to be false after reset")
	}
	if len(f.Writes()) != 0 {
		t.Error("expected writes cleared after reset")
	}
}

func TestPinsOf(t *testing.T) {
	p := DefaultPins()
	if p.Of(logic.Lighting) != DefaultPinLighting {
		t.Errorf("lighting pin %d", p.Of(logic.Lighting))
	}
	if p.Of(logic.Irrigation) != DefaultPinIrrigation {
		t.Errorf("irrigation pin %d", p.Of(logic.Irrigation))
	}
	if p.Of(logic.Bell) != DefaultPinBell {
		t.Errorf("bell pin %d", p.Of(logic.Bell))
	}
	if p.Of(logic.Actuator("PUMP")) != -1 {
		t.Error("unknown actuator should map to -1")
	}
}

var _ Writer = (*FakeWriter)(nil)
var _ Writer = (*RealWriter)(nil)
