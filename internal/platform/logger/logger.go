// Package logger builds the process-wide structured logger.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New returns a JSON slog logger. STAMMDATEN_LOG_LEVEL selects the level
// (debug, info, warn, error); anything else means info.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: levelFromEnv(),
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("STAMMDATEN_LOG_LEVEL")) {
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
