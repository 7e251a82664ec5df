// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps debug|info|warn|error onto a slog level. Unknown values
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Rotator returns the rotating file writer used for log files.
func Rotator(filename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}
}

// New builds a text logger writing to out and, when filename is set, to a
// rotated file as well.
func New(level, filename string, out io.Writer) (*slog.Logger, io.Closer, error) {
	writers := []io.Writer{out}
	var closer io.Closer = nopCloser{}
	if filename != "" {
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return nil, nil, err
		}
		rot := Rotator(filename)
		writers = append(writers, rot)
		closer = rot
	}
	h := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(h), closer, nil
}

// Setup installs the logger as the slog default, tee'd to stdout.
func Setup(level, filename string) (io.Closer, error) {
	logger, closer, err := New(level, filename, os.Stdout)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
