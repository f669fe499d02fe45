package logger

import (
	"log/slog"
	"strings"
)

// Config represents logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Format      string // "json", "text"
	ServiceName string
}

// DefaultConfig returns the engine's logging defaults.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "cosmetics-core",
	}
}

// LogLevel converts the string level to slog.Level.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsJSON returns true if the format is JSON.
func (c Config) IsJSON() bool {
	return strings.ToLower(c.Format) == "json"
}
