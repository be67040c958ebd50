// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a colored tint handler writing to w as the default logger.
func Setup(w io.Writer, level string) {
	slog.SetDefault(slog.New(NewHandler(w, ParseLevel(level))))
}

// NewHandler returns the tint handler used by the lobby.
func NewHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		AddSource:  level == slog.LevelDebug,
	})
}

// ParseLevel converts a string log level to slog.Level.
// Defaults to Info if invalid or empty.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
