// Package logger builds the process-wide structured logger shared by the API
// and the event relay binaries.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mutualaid-ledger/internal/config"
)

// NewLogger returns a JSON slog.Logger at the configured level. Source
// locations are attached only at debug level to keep production lines small.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})

	logger := slog.New(handler)
	logger.Info("Logger initialized", "level", level.String())

	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
