package internal

import (
	"log/slog"
	"os"
	"strings"
)

// LoggerFromString builds a text slog logger from a configured level name.
// Unknown names fall back to Info so a typo in LOG_LEVEL never silences logs.
func LoggerFromString(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
