package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel orders message severities. Messages below the configured
// level are dropped.
type LogLevel int

const (
	// LevelDebug traces ffmpeg/ffprobe command lines and job state
	LevelDebug LogLevel = iota
	// LevelInfo covers normal operation
	LevelInfo
	// LevelWarn covers recoverable problems
	LevelWarn
	// LevelError covers failures
	LevelError
)

var (
	currentLevel LogLevel
	levelOnce    sync.Once
)

// parseLevel resolves the level from the DEBUG and LOG_LEVEL values.
// DEBUG is a shortcut for LOG_LEVEL=debug so one variable flips on
// command tracing for encode runs.
func parseLevel(debug, level string) LogLevel {
	switch strings.ToLower(debug) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}

	switch strings.ToLower(level) {
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

func initLevel() {
	levelOnce.Do(func() {
		currentLevel = parseLevel(os.Getenv("DEBUG"), os.Getenv("LOG_LEVEL"))
	})
}

// GetLevel returns the level resolved from the environment. The
// environment is read once, on first use.
func GetLevel() LogLevel {
	initLevel()
	return currentLevel
}

// IsDebugEnabled reports whether debug messages are emitted. Callers
// use it to skip assembling expensive debug output, like the full
// route table.
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// Debug logs command lines and job state transitions.
func Debug(format string, args ...interface{}) {
	if GetLevel() <= LevelDebug {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// Info logs normal operation: startup, ingests, dispatched and
// finished conversions.
func Info(format string, args ...interface{}) {
	if GetLevel() <= LevelInfo {
		log.Printf("[INFO] "+format, args...)
	}
}

// Warn logs recoverable problems, like a preview extraction failing
// or a temp file that could not be removed.
func Warn(format string, args ...interface{}) {
	if GetLevel() <= LevelWarn {
		log.Printf("[WARN] "+format, args...)
	}
}

// Error logs failures that affect a request or a conversion.
func Error(format string, args ...interface{}) {
	if GetLevel() <= LevelError {
		log.Printf("[ERROR] "+format, args...)
	}
}

// Fatal logs the message and exits. Reserved for unrecoverable
// startup failures.
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

// String returns the level name as it appears in LOG_LEVEL.
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
