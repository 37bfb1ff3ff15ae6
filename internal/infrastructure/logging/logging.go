// Package logging builds the resolver's structured logger, the same
// log/slog JSON setup cmd/clouddns/main.go wires inline, extracted so
// every entrypoint (resolved, dig) configures it identically.
package logging

import (
	"log/slog"
	"os"
)

// Level names accepted by LevelFromString, matching log/slog's own.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// New builds a JSON slog.Logger writing to os.Stdout at level.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

// LevelFromString parses an environment-variable level name, defaulting
// to LevelInfo on anything unrecognized rather than failing startup.
func LevelFromString(s string) slog.Level {
	switch s {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
