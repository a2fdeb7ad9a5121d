// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logger := logging.New("debug")  // explicit level
//	logger := logging.New("")       // defaults to info
//	logging.Discard()               // silent logger for tests
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New creates a colored slog logger writing to stderr at the given level
// ("debug", "info", "warn", "error"). An empty or unknown level means info.
func New(level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.Set(slog.LevelInfo)
	}

	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	}))
}

// Discard returns a logger that drops all output. Useful for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
