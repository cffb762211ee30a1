// Package logging builds the slog loggers used by find404.
// Human readable text goes to the console (stderr, so the report on stdout
// stays clean) through charmbracelet/log, and JSON lines go to an optional
// size-rotated log file.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Config represents the logging configuration
type Config struct {
	Level      slog.Level
	FilePath   string
	MaxSize    int64 // MB
	MaxBackups int
	Console    bool
	Output     io.Writer // Console destination, os.Stderr when nil
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:      slog.LevelInfo,
		FilePath:   "",
		MaxSize:    100, // 100MB
		MaxBackups: 5,
		Console:    true,
	}
}

// ParseLevel converts a string log level to slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// NewLogger creates a new logger with the given configuration.
// The returned closer releases the log file and must be called when done.
func NewLogger(config Config) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: config.Level}

	var handlers []slog.Handler
	var closer io.Closer = nopCloser{}

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, nil, err
		}

		fileWriter, err := NewRotatingFileWriter(
			config.FilePath,
			config.MaxSize*1024*1024, // MB to bytes
			config.MaxBackups,
		)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(fileWriter, opts))
		closer = fileWriter
	}

	// Fall back to the console when nothing else is configured
	if config.Console || len(handlers) == 0 {
		out := config.Output
		if out == nil {
			out = os.Stderr
		}
		handlers = append(handlers, newConsoleHandler(out, config.Level))
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0]), closer, nil
	}
	return slog.New(fanoutHandler(handlers)), closer, nil
}

// newConsoleHandler returns a charmbracelet/log logger, which doubles as a slog.Handler.
// Its levels share slog's numeric values.
func newConsoleHandler(out io.Writer, level slog.Level) slog.Handler {
	return log.NewWithOptions(out, log.Options{
		Level:           log.Level(level),
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}

// SetDefault creates and sets a default logger with the given configuration
func SetDefault(config Config) (io.Closer, error) {
	logger, closer, err := NewLogger(config)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanoutHandler sends every record to all of its handlers
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h {
		if handler.Enabled(ctx, r.Level) {
			errs = append(errs, handler.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, handler := range h {
		out[i] = handler.WithAttrs(attrs)
	}
	return out
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, handler := range h {
		out[i] = handler.WithGroup(name)
	}
	return out
}
