package core

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/hashicorp/go-hclog"
)

// Logger provides structured logging capabilities
// This abstraction allows swapping logging implementations
type Logger interface {
	// Error logs an error message with optional key/value pairs
	Error(msg string, args ...interface{})

	// Errorf logs a formatted error message
	Errorf(format string, args ...interface{})

	// Warn logs a warning message with optional key/value pairs
	Warn(msg string, args ...interface{})

	// Warnf logs a formatted warning message
	Warnf(format string, args ...interface{})

	// Info logs an informational message with optional key/value pairs
	Info(msg string, args ...interface{})

	// Infof logs a formatted informational message
	Infof(format string, args ...interface{})

	// Debug logs a debug message with optional key/value pairs
	Debug(msg string, args ...interface{})

	// Debugf logs a formatted debug message
	Debugf(format string, args ...interface{})

	// WithFields returns a logger that attaches fields to every entry
	WithFields(fields map[string]interface{}) Logger
}

// LoggerConfig configures a Logger
type LoggerConfig struct {
	// Name is printed with every entry
	Name string

	// Level is one of trace, debug, info, warn, error (default: info)
	Level string

	// JSON switches the output to one JSON object per line
	JSON bool

	// Output defaults to os.Stderr
	Output io.Writer
}

// hclogLogger implements Logger on top of hashicorp/go-hclog
type hclogLogger struct {
	l hclog.Logger
}

// NewLogger creates a Logger from config
func NewLogger(cfg LoggerConfig) Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	level := hclog.LevelFromString(cfg.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	return &hclogLogger{
		l: hclog.New(&hclog.LoggerOptions{
			Name:       cfg.Name,
			Level:      level,
			Output:     out,
			JSONFormat: cfg.JSON,
		}),
	}
}

// NewDefaultLogger creates a text logger at info level writing to stderr
func NewDefaultLogger() Logger {
	return NewLogger(LoggerConfig{})
}

// NewJSONLogger creates a JSON logger at info level writing to stderr
func NewJSONLogger() Logger {
	return NewLogger(LoggerConfig{JSON: true})
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() Logger {
	return &hclogLogger{l: hclog.NewNullLogger()}
}

func (h *hclogLogger) Error(msg string, args ...interface{}) {
	h.l.Error(msg, args...)
}

func (h *hclogLogger) Errorf(format string, args ...interface{}) {
	h.l.Error(fmt.Sprintf(format, args...))
}

func (h *hclogLogger) Warn(msg string, args ...interface{}) {
	h.l.Warn(msg, args...)
}

func (h *hclogLogger) Warnf(format string, args ...interface{}) {
	h.l.Warn(fmt.Sprintf(format, args...))
}

func (h *hclogLogger) Info(msg string, args ...interface{}) {
	h.l.Info(msg, args...)
}

func (h *hclogLogger) Infof(format string, args ...interface{}) {
	h.l.Info(fmt.Sprintf(format, args...))
}

func (h *hclogLogger) Debug(msg string, args ...interface{}) {
	h.l.Debug(msg, args...)
}

func (h *hclogLogger) Debugf(format string, args ...interface{}) {
	h.l.Debug(fmt.Sprintf(format, args...))
}

// WithFields attaches fields in key order so output is stable
func (h *hclogLogger) WithFields(fields map[string]interface{}) Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return &hclogLogger{l: h.l.With(args...)}
}
