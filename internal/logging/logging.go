// Package logging builds the zerolog logger. The terminal belongs to the UI,
// so logs go to a rotated file unless stderr is asked for explicitly.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogMB   = 10
	maxBackups = 5
)

type Config struct {
	Level string
	File  string // "-" is stderr, "" discards
}

// New returns a logger and a closer for its output.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
	}

	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch cfg.File {
	case "":
		return zerolog.Nop(), closer, nil
	case "-":
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	default:
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxLogMB,
			MaxBackups: maxBackups,
		}
		out, closer = rotating, rotating
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "hwinfo").
		Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
