package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/sweeney/relay-scheduler/internal/logic"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	retryInterval  = 5 * time.Second

	// DefaultBufferSize is the number of messages kept while offline.
	DefaultBufferSize = 100
)

// Options configures a RealPublisher.
type Options struct {
	Broker     string
	ClientID   string
	Root       string // topic prefix, DefaultRoot when empty
	BufferSize int
	Log        zerolog.Logger
}

// RealPublisher publishes to an actual MQTT broker and receives the retained
// configuration documents. Messages published while disconnected are kept in
// an offline queue and replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	topics Topics
	log    zerolog.Logger

	mu    sync.Mutex
	queue *offlineQueue

	configs   chan ConfigMessage
	done      chan struct{}
	closeOnce sync.Once
	connects  atomic.Int32
}

// NewRealPublisher creates a publisher for the given broker. If the broker is
// unreachable within the connect timeout the publisher is still returned: it
// keeps retrying in the background and buffers messages until connected.
func NewRealPublisher(opts Options) (*RealPublisher, error) {
	if opts.Broker == "" {
		return nil, errors.New("mqtt: broker is required")
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}

	log := opts.Log.With().Str("component", "mqtt").Logger()
	p := &RealPublisher{
		topics:  TopicsFor(opts.Root),
		log:     log,
		queue:   newOfflineQueue(opts.BufferSize, log),
		configs: make(chan ConfigMessage, 16),
		done:    make(chan struct{}),
	}

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE"})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	clientOpts := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retryInterval).
		SetOrderMatters(false).
		SetBinaryWill(p.topics.System, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.log.Warn().Err(err).Msg("connection lost")
		})

	p.client = paho.NewClient(clientOpts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		p.log.Warn().Str("broker", opts.Broker).Msg("broker not reachable yet, continuing offline")
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// onConnect subscribes to the config topics and replays buffered messages.
// Runs on every (re)connect.
func (p *RealPublisher) onConnect(c paho.Client) {
	n := p.connects.Add(1)
	p.log.Info().Int32("connects", n).Msg("connected")

	filters := make(map[string]byte, len(p.topics.Config))
	for _, topic := range p.topics.Config {
		filters[topic] = 1
	}
	token := c.SubscribeMultiple(filters, p.onConfig)
	if !token.WaitTimeout(publishTimeout) {
		p.log.Error().Msg("subscribe timeout")
	} else if err := token.Error(); err != nil {
		p.log.Error().Err(err).Msg("subscribe failed")
	}

	p.mu.Lock()
	queued := p.queue.drain()
	p.mu.Unlock()

	for _, msg := range queued {
		if err := p.send(msg); err != nil {
			p.log.Warn().Err(err).Str("topic", msg.topic).Msg("replay failed, re-buffering")
			p.mu.Lock()
			p.queue.push(msg)
			p.mu.Unlock()
		}
	}
	if len(queued) > 0 {
		p.mu.Lock()
		dropped := p.queue.dropped
		p.mu.Unlock()
		p.log.Info().Int("messages", len(queued)).Int("dropped_total", dropped).Msg("replayed offline queue")
	}

	if n > 1 {
		if err := p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"}); err != nil {
			p.log.Warn().Err(err).Msg("publish RECONNECTED failed")
		}
	}
}

func (p *RealPublisher) onConfig(_ paho.Client, m paho.Message) {
	kind, ok := p.topics.KindOf(m.Topic())
	if !ok {
		return
	}
	payload := append([]byte(nil), m.Payload()...)
	msg := ConfigMessage{Kind: kind, Payload: payload, Received: time.Now()}

	select {
	case p.configs <- msg:
		p.log.Debug().Str("kind", string(kind)).Int("bytes", len(payload)).Msg("config received")
	case <-p.done:
	}
}

// Configs returns the channel of received configuration documents.
func (p *RealPublisher) Configs() <-chan ConfigMessage {
	return p.configs
}

// IsConnected reports whether the client currently has an open connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.len()
}

// Publish sends a relay event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 1 (at-least-once), not retained
	return p.publish(pending{topic: p.topics.Events, payload: payload, qos: 1})
}

// PublishState sends the retained state document.
func (p *RealPublisher) PublishState(state StateReport) error {
	payload, err := FormatStatePayload(state)
	if err != nil {
		return fmt.Errorf("format state payload: %w", err)
	}
	return p.publish(pending{topic: p.topics.State, payload: payload, qos: 0, retained: true})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(pending{topic: p.topics.System, payload: payload, qos: 1, retained: event.Retained})
}

// publish sends msg now, or buffers it when offline or when the send fails.
func (p *RealPublisher) publish(msg pending) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.queue.push(msg)
		p.mu.Unlock()
		return nil
	}

	if err := p.send(msg); err != nil {
		p.mu.Lock()
		p.queue.push(msg)
		p.mu.Unlock()
		return err
	}
	return nil
}

func (p *RealPublisher) send(msg pending) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		p.client.Disconnect(1000) // 1 second timeout
	})
	return nil
}
