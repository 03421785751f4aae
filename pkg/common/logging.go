// Package common provides shared utilities used across iexec.
package common

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Global application logger
var globalLogger *Logger

// LogLevel represents logging verbosity levels
type LogLevel int

const (
	// LogLevelNone disables logging
	LogLevelNone LogLevel = iota
	// LogLevelError logs only errors
	LogLevelError
	// LogLevelInfo logs information and errors
	LogLevelInfo
	// LogLevelDebug logs every daemonization step
	LogLevelDebug
)

// LogLevelFromString converts a string representation to a LogLevel.
// Unknown values map to LogLevelNone: a launcher must stay quiet unless asked.
func LogLevelFromString(level string) LogLevel {
	switch level {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "error":
		return LogLevelError
	default:
		return LogLevelNone
	}
}

// Logger is a leveled wrapper around the standard library logger
type Logger struct {
	// The underlying Go logger
	*log.Logger
	// The logging level
	level LogLevel
	// The log file path (if used)
	filePath string
	// The log file handle (if used)
	file *os.File
}

// NewLogger creates a new Logger instance
//
// Parameters:
//   - prefix: The prefix for all log messages
//   - filePath: Path to the log file (empty string logs to stderr)
//   - level: The logging verbosity level
//   - truncate: If true, truncate the log file; if false, append to it
//
// Returns:
//   - A new Logger instance
//   - An error if the log file cannot be opened
func NewLogger(prefix string, filePath string, level LogLevel, truncate bool) (*Logger, error) {
	var writer io.Writer
	var file *os.File

	switch {
	case filePath != "":
		flags := os.O_WRONLY | os.O_CREATE
		if truncate {
			flags |= os.O_TRUNC
		} else {
			flags |= os.O_APPEND
		}

		// the log file is opened close-on-exec by the os package, so it
		// never shows up in the daemonized program
		f, err := os.OpenFile(filePath, flags, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		writer = f
	case level == LogLevelNone:
		writer = io.Discard
	default:
		writer = os.Stderr
	}

	return &Logger{
		Logger:   log.New(writer, prefix, log.Ldate|log.Ltime|log.Lmicroseconds),
		level:    level,
		filePath: filePath,
		file:     file,
	}, nil
}

// Close closes the log file if it's open
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Redirect moves a stderr-bound logger onto w. File-backed and disabled
// loggers keep their sink.
func (l *Logger) Redirect(w io.Writer) {
	if l.file != nil || l.level == LogLevelNone || w == nil {
		return
	}
	l.SetOutput(w)
}

// Debug logs a message at debug level
func (l *Logger) Debug(format string, v ...interface{}) {
	if l.level >= LogLevelDebug {
		l.Printf("[DEBUG] "+format, v...)
	}
}

// Info logs a message at info level
func (l *Logger) Info(format string, v ...interface{}) {
	if l.level >= LogLevelInfo {
		l.Printf("[INFO] "+format, v...)
	}
}

// Error logs a message at error level
func (l *Logger) Error(format string, v ...interface{}) {
	if l.level >= LogLevelError {
		l.Printf("[ERROR] "+format, v...)
	}
}

// FilePath returns the current log file path
func (l *Logger) FilePath() string {
	return l.filePath
}

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return l.level
}

// SetLevel changes the current log level
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

//////////////////////////////////////////////////////////////////////

// GetLogger returns the global application logger.
// If the logger hasn't been initialized yet, it returns a silent logger.
func GetLogger() *Logger {
	if globalLogger == nil {
		logger, _ := NewLogger("[iexec] ", "", LogLevelNone, false)
		return logger
	}
	return globalLogger
}

// SetLogger sets the global application logger
func SetLogger(logger *Logger) {
	globalLogger = logger
}
