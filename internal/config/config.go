// Package config loads the relay-scheduler configuration file.
//
// Values come from built-in defaults, then the optional YAML file, then any
// command-line flags the caller applies on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/relay-scheduler/internal/gpio"
	"github.com/sweeney/relay-scheduler/internal/logic"
	"github.com/sweeney/relay-scheduler/internal/mqtt"
	"github.com/sweeney/relay-scheduler/internal/schedule"
)

// Defaults.
const (
	DefaultBroker        = "tcp://localhost:1883"
	DefaultHTTPAddr      = ":8080"
	DefaultTick          = time.Second
	DefaultHeartbeat     = 15 * time.Minute
	DefaultStateInterval = 10 * time.Second
	DefaultRingDuration  = 10 * time.Second
	DefaultLatitude      = 36.81897
	DefaultLongitude     = 10.16579
	DefaultTimezone      = "Africa/Tunis"
	DefaultLogLevel      = "info"
)

// Config is the daemon configuration.
type Config struct {
	MQTT          MQTTConfig     `yaml:"mqtt"`
	HTTPAddr      string         `yaml:"http_addr"`
	Tick          time.Duration  `yaml:"tick"`
	Heartbeat     time.Duration  `yaml:"heartbeat"`      // 0 disables
	StateInterval time.Duration  `yaml:"state_interval"` // 0 publishes on transitions only
	RingDuration  time.Duration  `yaml:"ring_duration"`
	GPIO          gpio.Pins      `yaml:"gpio"`
	Latitude      float64        `yaml:"latitude"`
	Longitude     float64        `yaml:"longitude"`
	Timezone      string         `yaml:"timezone"`
	Log           LogConfig      `yaml:"log"`
	Schedule      ScheduleConfig `yaml:"schedule"`
}

// MQTTConfig selects the broker and topic prefix.
type MQTTConfig struct {
	Broker string `yaml:"broker"`
	Root   string `yaml:"root"`
}

// LogConfig selects the log level and console output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// ScheduleConfig is the fallback schedule used until the first MQTT
// document of each kind arrives. Shapes match the MQTT documents.
type ScheduleConfig struct {
	Lighting   *schedule.RawActuator       `yaml:"lighting"`
	Irrigation *schedule.RawActuator       `yaml:"irrigation"`
	Normal     []schedule.RawNormalBell    `yaml:"normal"`
	Special    []schedule.RawSpecialPeriod `yaml:"special"`
}

// Tables is a normalized ScheduleConfig.
type Tables struct {
	Lighting   logic.ActuatorConfig
	Irrigation logic.ActuatorConfig
	Bells      logic.Schedule
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MQTT:          MQTTConfig{Broker: DefaultBroker, Root: mqtt.DefaultRoot},
		HTTPAddr:      DefaultHTTPAddr,
		Tick:          DefaultTick,
		Heartbeat:     DefaultHeartbeat,
		StateInterval: DefaultStateInterval,
		RingDuration:  DefaultRingDuration,
		GPIO:          gpio.DefaultPins(),
		Latitude:      DefaultLatitude,
		Longitude:     DefaultLongitude,
		Timezone:      DefaultTimezone,
		Log:           LogConfig{Level: DefaultLogLevel},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// The result is not validated; call Validate after applying flags.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings the daemon cannot run without.
func (c Config) Validate() error {
	var errs []error
	if c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required"))
	}
	if c.Tick <= 0 {
		errs = append(errs, fmt.Errorf("tick must be positive, got %v", c.Tick))
	}
	if c.RingDuration <= 0 {
		errs = append(errs, fmt.Errorf("ring_duration must be positive, got %v", c.RingDuration))
	}
	if c.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat))
	}
	if c.StateInterval < 0 {
		errs = append(errs, fmt.Errorf("state_interval must not be negative, got %v", c.StateInterval))
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		errs = append(errs, fmt.Errorf("latitude out of range: %v", c.Latitude))
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		errs = append(errs, fmt.Errorf("longitude out of range: %v", c.Longitude))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[int]logic.Actuator, len(logic.Actuators))
	for _, a := range logic.Actuators {
		pin := c.GPIO.Of(a)
		if pin < 0 {
			errs = append(errs, fmt.Errorf("gpio pin for %s must not be negative", a))
			continue
		}
		if other, dup := seen[pin]; dup {
			errs = append(errs, fmt.Errorf("gpio pin %d used by both %s and %s", pin, other, a))
		}
		seen[pin] = a
	}
	return errors.Join(errs...)
}

// Location loads the configured timezone. Empty means UTC.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Tables normalizes the fallback schedule. Bad records are skipped with a
// warning like any other schedule source.
func (s ScheduleConfig) Tables(log zerolog.Logger) Tables {
	var t Tables
	if s.Lighting != nil {
		t.Lighting = schedule.NormalizeActuator(*s.Lighting, log.With().Str("kind", "lighting").Logger())
	}
	if s.Irrigation != nil {
		t.Irrigation = schedule.NormalizeActuator(*s.Irrigation, log.With().Str("kind", "irrigation").Logger())
	}
	t.Bells.Normal = schedule.NormalizeNormal(s.Normal, log)
	t.Bells.Special = schedule.NormalizeSpecial(s.Special, log)
	return t
}
