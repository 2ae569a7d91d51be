// Package internal holds process-level helpers shared by the binaries.
package internal

import (
	"log/slog"
	"os"
	"strings"
)

// LoggerFromString builds a slog.Logger writing to stderr at the level named
// by str (DEBUG, INFO, WARN, ERROR). Unknown values fall back to INFO.
func LoggerFromString(str string) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(strings.TrimSpace(str)) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return LoggerFromLevel(level)
}

func LoggerFromLevel(level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
