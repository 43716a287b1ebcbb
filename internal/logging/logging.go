// Package logging configures the process-wide slog logger.
//
// All log output goes to stderr so that stdout stays reserved for
// machine-readable results (the CLI prints JSON there).
package logging

import (
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

// Init installs the global slog logger. Call once at startup.
// levelStr: "debug", "info", "warn", "error" (default: "info").
// format: "text" or "json" (default: "text").
func Init(levelStr, format string) {
	level.Set(parseLevel(levelStr))

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// For returns a logger tagged with the given component name.
func For(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}

// SetLevel changes the log level at runtime.
func SetLevel(l slog.Level) {
	level.Set(l)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
