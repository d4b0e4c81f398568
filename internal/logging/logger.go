// Package logging provides leveled logging for the floradb commands.
// It is a thin filter over the standard library logger so every binary
// shares the same [DEBUG]/[INFO]/[WARN]/[ERROR] line format.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseLevel parses a string into a Level (case-insensitive).
// Unrecognized strings default to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ValidLevels returns the accepted log level names.
func ValidLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Logger filters messages below its configured level. It satisfies the
// flora.Logger interface, so it can be handed directly to gardens and
// notification managers.
type Logger struct {
	level Level
	out   *log.Logger
}

// New creates a Logger writing to stderr at the given level.
func New(level string) *Logger {
	return NewWithOutput(level, os.Stderr)
}

// NewWithOutput creates a Logger writing to w at the given level.
func NewWithOutput(level string, w io.Writer) *Logger {
	return &Logger{
		level: ParseLevel(level),
		out:   log.New(w, "", log.LstdFlags),
	}
}

// Level returns the minimum level this logger emits.
func (l *Logger) Level() Level {
	return l.level
}

func (l *Logger) shouldLog(level Level) bool {
	return level >= l.level
}

// Debugf logs a debug message.
func (l *Logger) Debugf(format string, v ...any) {
	if l.shouldLog(LevelDebug) {
		l.out.Printf("[DEBUG] "+format, v...)
	}
}

// Infof logs an informational message.
func (l *Logger) Infof(format string, v ...any) {
	if l.shouldLog(LevelInfo) {
		l.out.Printf("[INFO] "+format, v...)
	}
}

// Warnf logs a warning message.
func (l *Logger) Warnf(format string, v ...any) {
	if l.shouldLog(LevelWarn) {
		l.out.Printf("[WARN] "+format, v...)
	}
}

// Errorf logs an error message.
func (l *Logger) Errorf(format string, v ...any) {
	if l.shouldLog(LevelError) {
		l.out.Printf("[ERROR] "+format, v...)
	}
}

// Fatalf logs an error message and exits the process.
func (l *Logger) Fatalf(format string, v ...any) {
	l.out.Fatalf("[FATAL] "+format, v...)
}
