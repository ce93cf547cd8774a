package log

import (
	"io"
	"os"
	"time"

	"github.com/ipfans/fxlogger"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// NewLogger creates a configured zerolog.Logger instance
func NewLogger() zerolog.Logger {
	return New(os.Stdout, os.Getenv("DEBUG") == "true")
}

// New builds the console logger used across the bot, writing to w.
func New(w io.Writer, debug bool) zerolog.Logger {
	logWriter := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(logWriter).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}

// EventLogger routes fx lifecycle events through the application logger.
func EventLogger(logger zerolog.Logger) fxevent.Logger {
	return fxlogger.WithZerolog(logger)()
}

func Module() fx.Option {
	return fx.Module(
		"log",
		fx.Provide(
			NewLogger,
		),
	)
}
