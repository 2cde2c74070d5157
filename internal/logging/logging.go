// Package logging builds structured loggers on top of a hal.Logger line sink.
package logging

import (
	"bytes"
	"log/slog"
	"strings"

	"dclock/hal"
)

// ParseLevel maps a config level name to a slog level. Unknown names
// select info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// ValidLevel reports whether ParseLevel knows level.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

// lineWriter turns the handler's newline-terminated records into lines.
type lineWriter struct {
	sink hal.Logger
}

func (w lineWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\r\n"), []byte{'\n'}) {
		w.sink.WriteLineBytes(line)
	}
	return len(p), nil
}

// New returns a text logger writing to sink at a level that can be
// changed later through level.
func New(sink hal.Logger, level *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewTextHandler(lineWriter{sink: sink}, &slog.HandlerOptions{
		Level: level,
	}))
}

// Setup creates the process logger, installs it as the slog default and
// returns it with its level knob.
func Setup(sink hal.Logger, level string) (*slog.Logger, *slog.LevelVar) {
	lv := new(slog.LevelVar)
	lv.Set(ParseLevel(level))
	logger := New(sink, lv)
	slog.SetDefault(logger)
	return logger, lv
}
