package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

var (
	currentLevel LogLevel
	levelOnce    sync.Once
	levelMu      sync.RWMutex
)

// ParseLevel converts a level name into a LogLevel. Unknown names map to info.
func ParseLevel(s string) LogLevel {
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

// initLevel reads DEBUG and LOG_LEVEL once
func initLevel() {
	levelOnce.Do(func() {
		levelMu.Lock()
		defer levelMu.Unlock()

		switch strings.ToLower(os.Getenv("DEBUG")) {
		case "1", "true", "yes", "on":
			currentLevel = LevelDebug
			return
		}
		currentLevel = ParseLevel(os.Getenv("LOG_LEVEL"))
	})
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	initLevel()
	levelMu.RLock()
	defer levelMu.RUnlock()
	return currentLevel
}

// SetLevel overrides the level picked up from the environment.
func SetLevel(level LogLevel) {
	initLevel()
	levelMu.Lock()
	currentLevel = level
	levelMu.Unlock()
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func logf(level LogLevel, tag, prefix, format string, args ...interface{}) {
	if GetLevel() > level {
		return
	}
	if prefix != "" {
		format = prefix + ": " + format
	}
	log.Printf("["+tag+"] "+format, args...)
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	logf(LevelDebug, "DEBUG", "", format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	logf(LevelInfo, "INFO", "", format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	logf(LevelWarn, "WARN", "", format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	logf(LevelError, "ERROR", "", format, args...)
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

// Logger writes leveled messages tagged with a component name.
type Logger struct {
	component string
}

// For returns a Logger whose lines are prefixed with component.
func For(component string) *Logger {
	return &Logger{component: component}
}

// Debug logs a debug message for the component
func (l *Logger) Debug(format string, args ...interface{}) {
	logf(LevelDebug, "DEBUG", l.component, format, args...)
}

// Info logs an info message for the component
func (l *Logger) Info(format string, args ...interface{}) {
	logf(LevelInfo, "INFO", l.component, format, args...)
}

// Warn logs a warning for the component
func (l *Logger) Warn(format string, args ...interface{}) {
	logf(LevelWarn, "WARN", l.component, format, args...)
}

// Error logs an error for the component
func (l *Logger) Error(format string, args ...interface{}) {
	logf(LevelError, "ERROR", l.component, format, args...)
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
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
		return fmt.Sprintf("unknown(%d)", l)
	}
}
