package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/loykin/connprobe/internal/util"
)

// LogLevel represents logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return "info"
	}
}

// ToSlogLevel converts LogLevel to slog.Level
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// ParseLogLevel accepts error, warn(ing), info and debug. Empty means warn:
// the operator transcript on stdout already reports progress.
func ParseLogLevel(s string) (LogLevel, error) {
	switch util.TrimAndLower(s) {
	case "error":
		return LogLevelError, nil
	case "warn", "warning", "":
		return LogLevelWarn, nil
	case "info":
		return LogLevelInfo, nil
	case "debug":
		return LogLevelDebug, nil
	default:
		return LogLevelWarn, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", s)
	}
}

// Logger provides a centralized logging interface for connprobe
type Logger struct {
	*slog.Logger
	level  LogLevel
	masker *Masker
}

// New creates a logger writing to w in the given format (text, json or color).
func New(w io.Writer, level LogLevel, format string) (*Logger, error) {
	masker := NewMasker()
	opts := &slog.HandlerOptions{
		Level:       level.ToSlogLevel(),
		ReplaceAttr: masker.replaceAttr,
	}

	var handler slog.Handler
	switch util.TrimAndLower(format) {
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "color", "colour":
		ch := NewColorHandler(w, opts)
		ch.SetMasker(masker)
		ch.SetColorEnabled(true)
		handler = ch
	default:
		return nil, fmt.Errorf("invalid logging format: %s (valid: text, json, color)", format)
	}

	return &Logger{
		Logger: slog.New(handler),
		level:  level,
		masker: masker,
	}, nil
}

// NewLogger creates a new structured text logger on stderr with the specified level
func NewLogger(level LogLevel) *Logger {
	l, _ := New(os.Stderr, level, "text")
	return l
}

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return l.level
}

// EnableMasking toggles secret masking for this logger and every logger derived from it.
func (l *Logger) EnableMasking(enabled bool) {
	if l.masker != nil {
		l.masker.SetEnabled(enabled)
	}
}

// IsMaskingEnabled reports whether attribute values are masked.
func (l *Logger) IsMaskingEnabled() bool {
	return l.masker != nil && l.masker.IsEnabled()
}

// WithComponent returns a logger with component context
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
		level:  l.level,
		masker: l.masker,
	}
}

// WithRequest returns a logger with HTTP request context
func (l *Logger) WithRequest(method, url string) *Logger {
	return &Logger{
		Logger: l.Logger.With("method", method, "url", url),
		level:  l.level,
		masker: l.masker,
	}
}

// Global default logger instance
var defaultLogger = NewLogger(LogLevelWarn)

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetLogger returns the default logger
func GetLogger() *Logger {
	return defaultLogger
}
