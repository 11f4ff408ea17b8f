package mqtt

import (
	"sync"
	"time"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

// FakePublisher records published messages for test assertions and delivers
// scripted config documents.
type FakePublisher struct {
	mu sync.Mutex

	// Events contains all relay events that were published.
	Events []logic.Event

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// States contains all state documents that were published.
	States []StateReport

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// PublishStateError, if set, will be returned by PublishState.
	PublishStateError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// Pending controls the return value of Buffered.
	Pending int

	configs chan ConfigMessage
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{configs: make(chan ConfigMessage, 16)}
}

// Publish records the relay event.
func (f *FakePublisher) Publish(event logic.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		return f.PublishError
	}

	f.Events = append(f.Events, event)

	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// PublishState records the state document.
func (f *FakePublisher) PublishState(state StateReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishStateError != nil {
		return f.PublishStateError
	}
	f.States = append(f.States, state)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Deliver queues a config document as if it arrived from the broker.
func (f *FakePublisher) Deliver(kind ConfigKind, payload string) {
	f.configs <- ConfigMessage{Kind: kind, Payload: []byte(payload), Received: time.Now()}
}

// Configs returns the channel fed by Deliver.
func (f *FakePublisher) Configs() <-chan ConfigMessage {
	return f.configs
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Buffered returns Pending.
func (f *FakePublisher) Buffered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Pending
}

// SystemEventNames returns the Event field of every recorded system event.
func (f *FakePublisher) SystemEventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.SystemEvents))
	for i, e := range f.SystemEvents {
		names[i] = e.Event
	}
	return names
}

// Reset clears recorded messages.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = nil
	f.Payloads = nil
	f.States = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishStateError = nil
	f.PublishSystemError = nil
	f.Connected = false
	f.Pending = 0
}
