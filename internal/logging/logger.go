package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Logger is a leveled file logger. One underlying logger per level keeps
// each line's prefix correct under concurrent use.
type Logger struct {
	file *os.File
	info *log.Logger
	warn *log.Logger
	err  *log.Logger
}

func newLogger(w io.Writer, file *os.File) *Logger {
	return &Logger{
		file: file,
		info: log.New(w, "INFO: ", log.LstdFlags),
		warn: log.New(w, "WARN: ", log.LstdFlags),
		err:  log.New(w, "ERROR: ", log.LstdFlags),
	}
}

// New creates a logger appending to the file at path, creating the parent
// directory as needed.
func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newLogger(file, file), nil
}

// Discard returns a logger that drops everything. Used in tests and as a
// fallback when the log file cannot be opened.
func Discard() *Logger {
	return newLogger(io.Discard, nil)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.info.Println(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.warn.Println(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.err.Println(msg)
}

func (l *Logger) Infof(format string, args ...any)  { l.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.Error(fmt.Sprintf(format, args...)) }

// Close closes the log file
func (l *Logger) Close() {
	if l.file != nil {
		l.file.Close()
	}
}
