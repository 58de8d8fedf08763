// Package logging provides structured, colorized logging for the render engine.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// ParseLevel converts a textual log level into a slog.Level.
// Unrecognized values fall back to info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger constructs a slog.Logger with a tint handler at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level: level,
	})

	return slog.New(handler)
}

// FromEnv builds the default process logger, reading the level from
// TRADEWIND_LOG_LEVEL.
func FromEnv() *slog.Logger {
	return NewLogger(os.Stderr, ParseLevel(os.Getenv("TRADEWIND_LOG_LEVEL")))
}

// Setup installs a tint logger at the given level as the process default.
func Setup(w io.Writer, level slog.Level) {
	slog.SetDefault(NewLogger(w, level))
}

// SetupFromEnv installs the environment-configured logger as the process
// default.
func SetupFromEnv() {
	slog.SetDefault(FromEnv())
}
