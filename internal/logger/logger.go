// Package logger provides the structured logger used across the
// orchestration engine, wrapping charmbracelet/log the way the rest of the
// stack expects: leveled, key/value, with derived per-component loggers.
package logger

import (
	"io"
	"sort"

	cblog "github.com/charmbracelet/log"
)

// Options configures a Logger instance.
type Options struct {
	Level         string
	HumanReadable bool
	Writer        io.Writer
	Component     string
}

// Logger is a thin, derivable wrapper around *charmbracelet/log.Logger.
type Logger struct {
	base *cblog.Logger
}

// New creates a configured Logger instance based on Options.
func New(opts Options) (*Logger, error) {
	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	writer := opts.Writer
	base := cblog.NewWithOptions(writer, cblog.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	if !opts.HumanReadable {
		base.SetFormatter(cblog.JSONFormatter)
	}
	if opts.Component != "" {
		base = base.WithPrefix(opts.Component)
	}

	return &Logger{base: base}, nil
}

// Noop returns a Logger that discards everything, useful for tests.
func Noop() *Logger {
	base := cblog.NewWithOptions(io.Discard, cblog.Options{})
	return &Logger{base: base}
}

// With returns a derived logger that always includes the supplied fields.
func (l *Logger) With(fields map[string]any) *Logger {
	if l == nil || l.base == nil || len(fields) == 0 {
		return l
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}

	return &Logger{base: l.base.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Debug(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Warn(msg, args...)
}

func (l *Logger) Error(err error, msg string, args ...any) {
	if l == nil || l.base == nil {
		return
	}
	if err != nil {
		args = append(args, "error", err)
	}
	l.base.Error(msg, args...)
}
