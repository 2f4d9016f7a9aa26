package internal

import (
	"log/slog"
	"os"
)

// GetLoggerFromString builds the process logger from the LOG_LEVEL value.
// Unknown values fall back to Info rather than failing startup.
func GetLoggerFromString(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}
