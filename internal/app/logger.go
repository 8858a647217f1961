package app

import (
	"fmt"
	"io"
	"os"
)

// Logger is the app-layer logging interface. Core packages return
// errors; the logger carries only advisory output (skipped corrupt
// lines, fsync warnings).
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// defaultLogger writes level-prefixed lines to stderr.
type defaultLogger struct {
	output io.Writer
}

func (l *defaultLogger) Debug(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "DEBUG: "+format+"\n", args...)
}

func (l *defaultLogger) Info(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "INFO: "+format+"\n", args...)
}

func (l *defaultLogger) Warn(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "WARN: "+format+"\n", args...)
}

func (l *defaultLogger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "ERROR: "+format+"\n", args...)
}

var globalLogger Logger = &defaultLogger{output: os.Stderr}

// SetLogger replaces the global logger. Nil loggers are ignored.
func SetLogger(logger Logger) {
	if logger != nil {
		globalLogger = logger
	}
}

// GetLogger returns the current logger.
func GetLogger() Logger {
	return globalLogger
}
