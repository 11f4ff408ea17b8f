package gpio

import (
	"sync"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

// Write records one Set call.
type Write struct {
	Actuator logic.Actuator
	On       bool
}

// FakeWriter is a test double that records relay writes.
type FakeWriter struct {
	mu     sync.Mutex
	writes []Write
	levels map[logic.Actuator]bool
	closed bool

	// SetError, if set, will be returned by Set() without recording.
	SetError error
}

// NewFakeWriter creates an empty FakeWriter.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{levels: make(map[logic.Actuator]bool)}
}

// Set records the write and the resulting level.
func (f *FakeWriter) Set(a logic.Actuator, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.writes = append(f.writes, Write{Actuator: a, On: on})
	f.levels[a] = on
	return nil
}

// Close drives all relays off, like the real writer, and marks it closed.
func (f *FakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range logic.Actuators {
		f.levels[a] = false
	}
	f.closed = true
	return nil
}

// Level returns the last level written for a.
func (f *FakeWriter) Level(a logic.Actuator) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.levels[a]
}

// Writes returns a copy of every recorded write.
func (f *FakeWriter) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Write(nil), f.writes...)
}

// WritesFor returns the recorded levels for a, in order.
func (f *FakeWriter) WritesFor(a logic.Actuator) []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bool
	for _, w := range f.writes {
		if w.Actuator == a {
			out = append(out, w.On)
		}
	}
	return out
}

// Closed reports whether Close was called.
func (f *FakeWriter) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Reset clears recorded writes and the closed flag.
func (f *FakeWriter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = nil
	f.levels = make(map[logic.Actuator]bool)
	f.closed = false
}
