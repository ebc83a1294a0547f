package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ContextKey is the type for context keys used by the logger
type ContextKey string

const (
	// LoggerKey is the context key for the logger instance
	LoggerKey ContextKey = "logger"
)

// New creates a console logger on stderr, keeping stdout free for exported data.
func New(level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.TimeOnly,
	}
	return NewWithWriter(output, level)
}

// NewWithWriter creates a logger writing to w, JSON unless w formats itself
func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// LevelFromVerbosity maps the CLI switches to a level. Quiet wins over
// everything, debug over the -v count.
func LevelFromVerbosity(verbose int, debug, quiet bool) zerolog.Level {
	switch {
	case quiet:
		return zerolog.Disabled
	case debug || verbose >= 2:
		return zerolog.DebugLevel
	case verbose == 1:
		return zerolog.InfoLevel
	default:
		return zerolog.WarnLevel
	}
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from the context or returns a default logger
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return New(zerolog.WarnLevel)
}
