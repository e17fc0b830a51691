// Package logger builds the structured logger of the command line.
package logger

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// ParseLevel returns the level named s (debug, info, warn or error, ignoring
// case). ok is false for any other name.
func ParseLevel(s string) (level slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// New returns a JSON logger writing to w records at or above level. Times are
// formatted as RFC3339. An unknown level falls back to info, with a warning.
func New(level string, w io.Writer) *slog.Logger {
	lvl, ok := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}
	l := slog.New(slog.NewJSONHandler(w, opts))
	if !ok {
		l.Warn("invalid log level, defaulting to info", "level", level)
	}
	return l
}
