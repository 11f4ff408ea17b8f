package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sweeney/relay-scheduler/internal/gpio"
	"github.com/sweeney/relay-scheduler/internal/logging"
	"github.com/sweeney/relay-scheduler/internal/logic"
	"github.com/sweeney/relay-scheduler/internal/metrics"
	"github.com/sweeney/relay-scheduler/internal/mqtt"
	"github.com/sweeney/relay-scheduler/internal/solar"
	"github.com/sweeney/relay-scheduler/internal/status"
	"github.com/sweeney/relay-scheduler/internal/web"
)

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	noGPIO, _ := cmd.Flags().GetBool("no-gpio")

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	now := func() time.Time { return time.Now().In(loc) }
	instanceID := uuid.NewString()

	// Initialize GPIO
	var relays gpio.Writer
	if noGPIO {
		logger.Warn().Msg("gpio disabled, relays are simulated")
		relays = gpio.NewFakeWriter()
	} else {
		w, err := gpio.NewRealWriter(cfg.GPIO)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		relays = w
	}
	defer func() {
		if err := relays.Close(); err != nil {
			logger.Error().Err(err).Msg("release gpio")
		}
	}()

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(mqtt.Options{
		Broker:   cfg.MQTT.Broker,
		ClientID: "relay-scheduler-" + instanceID[:8],
		Root:     cfg.MQTT.Root,
		Log:      logger,
	})
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	startTime := now()
	tracker := status.NewTracker(instanceID, startTime, statusConfig(cfg))
	tracker.SetMQTTConnected(publisher.IsConnected())
	m := metrics.New()
	sun := solar.New(cfg.Latitude, cfg.Longitude, loc, logger)

	d := &daemon{
		ctrl:          logic.NewController(cfg.RingDuration, startTime),
		relays:        relays,
		publisher:     publisher,
		configs:       publisher.Configs(),
		mqttStatus:    publisher,
		tracker:       tracker,
		metrics:       m,
		sun:           sun.Today,
		log:           logger.With().Str("component", "scheduler").Logger(),
		heartbeat:     cfg.Heartbeat,
		stateInterval: cfg.StateInterval,
		now:           now,
	}
	d.applyTables(cfg.Schedule.Tables(logger.With().Str("component", "schedule").Logger()), startTime)
	tracker.SetSun(sun.Today(startTime))

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		logger.Warn().Err(err).Msg("failed to publish startup event")
	} else {
		logger.Info().Msg("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, web.Options{Metrics: m.Handler(), Log: logger})
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("http server error")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error().Err(err).Msg("http server shutdown")
			}
		}()
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http status server listening")
	}

	logger.Info().
		Str("instance", instanceID).
		Dur("tick", cfg.Tick).
		Dur("ring", cfg.RingDuration).
		Str("broker", cfg.MQTT.Broker).
		Dur("heartbeat", cfg.Heartbeat).
		Str("timezone", loc.String()).
		Msg("started")

	ticker := time.NewTicker(cfg.Tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(d, ticker.C, sigCh)
}
