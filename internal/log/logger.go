// Package log builds the structured loggers used by the daemon and the
// sync path. Interactive commands print human output instead.
package log

import (
	"io"
	"log/slog"
	"strings"
)

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldPeriod    = "period"
	FieldUserID    = "user_id"
	FieldCount     = "count"
	FieldDuration  = "duration_ms"
	FieldCached    = "cached"
)

// Component names.
const (
	ComponentDaemon  = "daemon"
	ComponentSync    = "sync"
	ComponentBackend = "backend"
	ComponentStore   = "store"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	JSON   bool
	Writer io.Writer
}

// New creates a logger writing text (or JSON) records to cfg.Writer.
// A nil writer discards everything.
func New(cfg Config) *slog.Logger {
	if cfg.Writer == nil {
		return Discard()
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(cfg.Writer, opts))
	}
	return slog.New(slog.NewTextHandler(cfg.Writer, opts))
}

// WithComponent tags every record from l with a component name.
func WithComponent(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		l = Discard()
	}
	return l.With(FieldComponent, component)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
