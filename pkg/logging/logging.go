// Package logging configures structured logging for the tanda binaries.
//
// Usage:
//
//	logging.Setup()                                   // text, INFO level from LOG_LEVEL env
//	logging.SetupWithOptions(logging.Options{...})    // explicit level and format
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Options selects the handler installed as the slog default.
type Options struct {
	Level slog.Level
	// Format is "json" for machine-readable output; anything else is colored text.
	Format    string
	AddSource bool
}

// Setup configures colored logging at the level specified by LOG_LEVEL env var
// (default: INFO).
func Setup() {
	SetupWithOptions(Options{Level: levelFromEnv(), AddSource: true})
}

// SetupWithOptions installs the default logger on stderr.
func SetupWithOptions(opts Options) {
	slog.SetDefault(New(os.Stderr, opts))
}

// New builds a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: opts.AddSource,
		}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.Kitchen,
		AddSource:  opts.AddSource,
	}))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
