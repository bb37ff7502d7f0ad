// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options select the log destination and level.
type Options struct {
	// Debug lowers the level to debug.
	Debug bool

	// File sends logs to a rotating file instead of Stderr.
	File string

	// Stderr defaults to os.Stderr.
	Stderr io.Writer
}

// New builds a text logger. The returned closer releases the log file.
func New(opts Options) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var out io.Writer = opts.Stderr
	if out == nil {
		out = os.Stderr
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out, closer = lj, lj
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closer
}

// Setup installs the logger built from opts as slog's default.
func Setup(opts Options) io.Closer {
	logger, closer := New(opts)
	slog.SetDefault(logger)
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
