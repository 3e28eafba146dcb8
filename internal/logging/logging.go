// Package logging configures the process-wide slog logger.
//
// Diagnostics go to stderr through tint. When a log file is configured,
// records are written there as JSON instead, rotated by lumberjack.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures Setup.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup installs the default logger and returns a Closer for the log file,
// if any.
func Setup(opts Options) io.Closer {
	logger, closer := New(opts, os.Stderr)
	slog.SetDefault(logger)
	return closer
}

// New builds a logger without installing it. stderr is used when no file is
// configured.
func New(opts Options, stderr io.Writer) (*slog.Logger, io.Closer) {
	level := ParseLevel(opts.Level)

	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			Compress:   true,
		}
		return slog.New(slog.NewJSONHandler(lj, &slog.HandlerOptions{Level: level})), lj
	}

	return slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(stderr),
	})), nopCloser{}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else
// is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
