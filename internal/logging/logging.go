// Package logging configures zerolog for the relay-scheduler daemon.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process and installs the result as the
// global logger. An unknown level falls back to info.
func Setup(level string, pretty bool) zerolog.Logger {
	return SetupWithWriter(level, pretty, os.Stderr)
}

// SetupWithWriter is Setup with an explicit output. Used by tests.
func SetupWithWriter(level string, pretty bool, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	w := out
	if pretty {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	log.Logger = logger
	return logger
}
