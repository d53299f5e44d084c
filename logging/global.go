package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Service holds the configured logger and its rotating file writer.
type Service struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

// Default is the process-wide logging service, set by InitLogger.
var Default *Service

// fallback is used before InitLogger runs, so early errors still land
// somewhere visible.
var fallback = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelDebug,
}))

// InitLogger initializes the global logger and makes it the slog
// default.
func InitLogger(logDir string, level slog.Level, retentionWeeks int, maxFileSize int64) {
	logger, rotating := setupLogger(logDir, level, retentionWeeks, maxFileSize)
	Default = &Service{Logger: logger, rotating: rotating}
	slog.SetDefault(logger)
}

// CloseLogger flushes and closes the rotating log file. Safe to call
// when InitLogger never ran.
func CloseLogger() {
	if Default != nil && Default.rotating != nil {
		if err := Default.rotating.Close(); err != nil {
			fallback.Warn("Failed to close rotating logger", "error", err)
		}
	}
}

func logger() *slog.Logger {
	if Default != nil && Default.Logger != nil {
		return Default.Logger
	}
	return fallback
}

// Logger returns the active logger, falling back to stderr before
// InitLogger runs.
func Logger() *slog.Logger {
	return logger()
}

// ParseLevel maps a configured level name to a slog.Level. Unknown
// names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Package-level helpers mirroring slog's API.

func Info(msg string, args ...any)  { logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { logger().Warn(msg, args...) }
func Error(msg string, args ...any) { logger().Error(msg, args...) }
func Debug(msg string, args ...any) { logger().Debug(msg, args...) }
