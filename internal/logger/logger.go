// Package logger provides a centralized logging facility with configurable
// verbosity levels on top of logrus.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Example usage:
//
//	logger.SetVerbosity(2) // Debug
//	logger.Infof("event=run_start contracts=%d", n)
//	logger.Debugf("event=valuate spot=%f vol=%f", spot, vol)
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // Error logs only critical failures.
	Info               // Info logs high-level application progress.
	Debug              // Debug logs detailed diagnostic information.
	Trace              // Trace logs very fine-grained execution details.
)

var std = newLogger(os.Stderr)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	l.SetLevel(toLogrus(Info))
	return l
}

func toLogrus(l Level) logrus.Level {
	switch {
	case l <= Error:
		return logrus.ErrorLevel
	case l == Info:
		return logrus.InfoLevel
	case l == Debug:
		return logrus.DebugLevel
	}
	return logrus.TraceLevel
}

// SetVerbosity sets the global logging verbosity (0=errors, 1=info, 2=debug, 3=trace).
// Typically called once during application startup, after parsing flags and config.
func SetVerbosity(v int) {
	std.SetLevel(toLogrus(Level(v)))
}

// Verbosity returns the active verbosity level.
func Verbosity() Level {
	switch std.GetLevel() {
	case logrus.InfoLevel:
		return Info
	case logrus.DebugLevel:
		return Debug
	case logrus.TraceLevel:
		return Trace
	}
	return Error
}

// SetOutput redirects log output, e.g. to a buffer in tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// WithFields returns an entry carrying structured fields, for request-scoped logging.
func WithFields(fields map[string]any) *logrus.Entry {
	return std.WithFields(logrus.Fields(fields))
}

// Errorf logs an error-level message.
// Use this for failures that require attention.
func Errorf(format string, args ...any) {
	std.Errorf(format, args...)
}

// Infof logs an informational message.
// Use this for major lifecycle events.
func Infof(format string, args ...any) {
	std.Infof(format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	std.Debugf(format, args...)
}

// Tracef logs very detailed execution traces.
// Use this sparingly due to high volume.
func Tracef(format string, args ...any) {
	std.Tracef(format, args...)
}
