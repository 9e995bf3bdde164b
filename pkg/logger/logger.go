// Package logger provides the process-wide file logger used by uicheck.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level filters messages below it.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Rotation controls the rotating file sink.
type Rotation struct {
	MaxSizeMB  int  `yaml:"maxSizeMB" json:"maxSizeMB"`
	MaxBackups int  `yaml:"maxBackups" json:"maxBackups"`
	MaxAgeDays int  `yaml:"maxAgeDays" json:"maxAgeDays"`
	Compress   bool `yaml:"compress" json:"compress"`
}

// DefaultRotation keeps five 10 MB files for a week.
func DefaultRotation() Rotation {
	return Rotation{MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 7}
}

var (
	globalLogger *log.Logger
	sink         io.WriteCloser
	minLevel     = LevelDebug
	mu           sync.Mutex
)

// Init initializes the global logger writing to a rotating file at logPath.
func Init(logPath string, rot Rotation) error {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()

	// Close previous sink if exists
	if sink != nil {
		sink.Close()
	}

	sink = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAgeDays,
		Compress:   rot.Compress,
	}
	globalLogger = log.New(sink, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// InitWriter points the global logger at an arbitrary writer. Tests use it
// to capture output.
func InitWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if sink != nil {
		sink.Close()
		sink = nil
	}
	globalLogger = log.New(w, "", 0)
}

// SetLevel drops messages below level.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
}

// Close closes the log sink.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if sink != nil {
		sink.Close()
		sink = nil
	}
	globalLogger = nil
}

func logf(level Level, prefix, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger != nil && level >= minLevel {
		globalLogger.Printf(prefix+format, v...)
	}
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	logf(LevelInfo, "[INFO] ", format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	logf(LevelDebug, "[DEBUG] ", format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	logf(LevelError, "[ERROR] ", format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	logf(LevelWarn, "[WARN] ", format, v...)
}

// GetWriter returns the underlying writer for use by drivers.
func GetWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger != nil {
		return globalLogger.Writer()
	}
	return io.Discard
}
