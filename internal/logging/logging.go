// Package logging is a thin slog wrapper that tags every record with the
// subsystem that produced it.
//
// stdout belongs to the MCP transport and the hook protocol, so the default
// sink is stderr. Call Init once from main; until then records go to stderr
// at info level.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level is the severity of a log record.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String makes Level satisfy fmt.Stringer.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level.
// Anything else falls back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// Init replaces the process logger. A nil writer means stderr.
func Init(level Level, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}
	h := slog.NewTextHandler(output, &slog.HandlerOptions{Level: level.slogLevel()})
	mu.Lock()
	logger = slog.New(h)
	mu.Unlock()
}

func log(level Level, subsystem string, err error, format string, args ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()

	if !l.Enabled(context.Background(), level.slogLevel()) {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	attrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.LogAttrs(context.Background(), level.slogLevel(), msg, attrs...)
}

// Debug logs a debug message.
func Debug(subsystem, format string, args ...any) {
	log(LevelDebug, subsystem, nil, format, args...)
}

// Info logs an informational message.
func Info(subsystem, format string, args ...any) {
	log(LevelInfo, subsystem, nil, format, args...)
}

// Warn logs a warning.
func Warn(subsystem, format string, args ...any) {
	log(LevelWarn, subsystem, nil, format, args...)
}

// Error logs an error together with its cause.
func Error(subsystem string, err error, format string, args ...any) {
	log(LevelError, subsystem, err, format, args...)
}
