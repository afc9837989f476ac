package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions controls how the process-wide logger is built.
type LogOptions struct {
	Level  string
	Format string
	// File, when set, sends output to a size-rotated file instead of stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// ParseLevel converts a textual level into an slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// SetupLogger configures the global logger with appropriate settings.
// The returned closer releases the log file, if any.
func SetupLogger(opts LogOptions) (io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		maxBackups := opts.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 3
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			Compress:   true,
		}
		out = rotator
		closer = rotator
	}

	handler, err := NewHandler(out, level, opts.Format)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(handler))

	return closer, nil
}

// NewHandler builds a text or JSON handler writing to w.
func NewHandler(w io.Writer, level slog.Level, format string) (slog.Handler, error) {
	handlerOpts := &slog.HandlerOptions{Level: level}

	switch format {
	case "", "console":
		return slog.NewTextHandler(w, handlerOpts), nil
	case "json":
		return slog.NewJSONHandler(w, handlerOpts), nil
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
}

// SourceLogger tags every record from logger with the given source.
// A nil logger falls back to slog.Default().
func SourceLogger(logger *slog.Logger, source string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("source", source)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// DiscardLogger returns a logger that drops everything. Useful in tests.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
