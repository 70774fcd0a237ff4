// Package logging builds the process logger. booth owns the terminal, so
// records go to a file rather than stdout.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Options selects the log destination and format.
type Options struct {
	Path   string
	Level  string
	Format string // "json" (default) or "text"
}

// New opens (appending) the log file and returns a logger writing to it. The
// returned closer releases the file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := parseLogLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, nil, errors.New("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, errors.Wrap(err, "create log dir")
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}
	return NewWriter(file, level, opts.Format), file, nil
}

// NewWriter returns a logger writing to w.
func NewWriter(w io.Writer, level slog.Level, format string) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Errorf("unknown log level: %s", level)
	}
}
