// Package logging builds the application's zerolog logger. The TUI owns the
// terminal, so records go to a size-rotated file instead of stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configure the log sink.
type Options struct {
	Path       string // empty discards output
	Level      string // debug, info, warn, error; empty means info
	MaxSizeMB  int
	MaxBackups int
	Console    bool // human-readable records instead of JSON
}

// Logger bundles the logger with the writer that must be closed on exit.
type Logger struct {
	zerolog.Logger
	closer io.Closer
}

// New returns a logger writing to opts.Path through lumberjack.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	if opts.Path == "" {
		return &Logger{Logger: zerolog.Nop()}, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	backups := opts.MaxBackups
	if backups <= 0 {
		backups = 3
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    maxSize,
		MaxBackups: backups,
	}

	var out io.Writer = rotator
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: rotator, NoColor: true, TimeFormat: time.RFC3339}
	}

	log := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{Logger: log, closer: rotator}, nil
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// ParseLevel maps a config level name to a zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", name)
	}
}
