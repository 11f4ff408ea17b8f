// Command relay-scheduler drives the lighting, irrigation and bell relays from
// schedules received over MQTT.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sweeney/relay-scheduler/internal/config"
	"github.com/sweeney/relay-scheduler/internal/status"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "relay-scheduler",
	Short:         "Scheduled lighting, irrigation and bell relays",
	Long:          "relay-scheduler switches three relays from manual, solar-relative and calendar bell schedules received over MQTT.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDaemon,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler daemon (default)",
	RunE:  runDaemon,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate the configured schedules at an instant and exit",
	RunE:  runCheck,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file")
	pf.String("broker", config.DefaultBroker, "MQTT broker address")
	pf.String("root", "", "MQTT topic root")
	pf.String("http", config.DefaultHTTPAddr, "HTTP status address (empty to disable)")
	pf.Duration("tick", config.DefaultTick, "Scheduler tick interval")
	pf.Duration("heartbeat", config.DefaultHeartbeat, "Heartbeat interval (0 to disable)")
	pf.Duration("state-interval", config.DefaultStateInterval, "Retained state republish interval (0 for transitions only)")
	pf.Duration("ring", config.DefaultRingDuration, "How long the bell relay stays on")
	pf.Int("pin-lighting", 0, "BCM pin number for the lighting relay")
	pf.Int("pin-irrigation", 0, "BCM pin number for the irrigation relay")
	pf.Int("pin-bell", 0, "BCM pin number for the bell relay")
	pf.Bool("active-low", false, "Relay board energises on a low level")
	pf.Float64("lat", config.DefaultLatitude, "Latitude for sun times")
	pf.Float64("lon", config.DefaultLongitude, "Longitude for sun times")
	pf.String("tz", config.DefaultTimezone, "IANA timezone for schedules")
	pf.String("log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	pf.Bool("log-pretty", false, "Human-readable console logs")

	runCmd.Flags().Bool("no-gpio", false, "Log relay changes without driving hardware")
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
	checkCmd.Flags().String("at", "", `Instant to evaluate (RFC 3339 or "2006-01-02T15:04"; default now)`)

	rootCmd.AddCommand(runCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies explicitly set flags on top.
func loadConfig(flags *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if err := applyFlags(flags, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyFlags copies every flag the user set into cfg. Unset flags leave the
// file or default value alone.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error
	set := func(name string, apply func()) {
		if err == nil && flags.Changed(name) {
			apply()
		}
	}
	str := func(name string) string {
		v, e := flags.GetString(name)
		if e != nil {
			err = e
		}
		return v
	}
	dur := func(name string) time.Duration {
		v, e := flags.GetDuration(name)
		if e != nil {
			err = e
		}
		return v
	}
	num := func(name string) int {
		v, e := flags.GetInt(name)
		if e != nil {
			err = e
		}
		return v
	}
	float := func(name string) float64 {
		v, e := flags.GetFloat64(name)
		if e != nil {
			err = e
		}
		return v
	}
	boolean := func(name string) bool {
		v, e := flags.GetBool(name)
		if e != nil {
			err = e
		}
		return v
	}

	set("broker", func() { cfg.MQTT.Broker = str("broker") })
	set("root", func() { cfg.MQTT.Root = str("root") })
	set("http", func() { cfg.HTTPAddr = str("http") })
	set("tick", func() { cfg.Tick = dur("tick") })
	set("heartbeat", func() { cfg.Heartbeat = dur("heartbeat") })
	set("state-interval", func() { cfg.StateInterval = dur("state-interval") })
	set("ring", func() { cfg.RingDuration = dur("ring") })
	set("pin-lighting", func() { cfg.GPIO.Lighting = num("pin-lighting") })
	set("pin-irrigation", func() { cfg.GPIO.Irrigation = num("pin-irrigation") })
	set("pin-bell", func() { cfg.GPIO.Bell = num("pin-bell") })
	set("active-low", func() { cfg.GPIO.ActiveLow = boolean("active-low") })
	set("lat", func() { cfg.Latitude = float("lat") })
	set("lon", func() { cfg.Longitude = float("lon") })
	set("tz", func() { cfg.Timezone = str("tz") })
	set("log-level", func() { cfg.Log.Level = str("log-level") })
	set("log-pretty", func() { cfg.Log.Pretty = boolean("log-pretty") })
	return err
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		TickMs:      cfg.Tick.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		RingMs:      cfg.RingDuration.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		TopicRoot:   cfg.MQTT.Root,
		HTTPAddr:    cfg.HTTPAddr,
		Latitude:    cfg.Latitude,
		Longitude:   cfg.Longitude,
		Timezone:    cfg.Timezone,
		Pins: status.Pins{
			Lighting:   cfg.GPIO.Lighting,
			Irrigation: cfg.GPIO.Irrigation,
			Bell:       cfg.GPIO.Bell,
		},
	}
}
