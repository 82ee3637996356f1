package logging

import "testing"

// TestLogger is a logger for tests. By default it swallows output;
// construct it with NewTestLoggerVerbose to see logs via testing.T.
type TestLogger struct {
	module string
	t      *testing.T
}

// NewTestLogger creates a silent test logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{module: "test"}
}

// NewTestLoggerVerbose creates a test logger that outputs to testing.T.
func NewTestLoggerVerbose(t *testing.T) *TestLogger {
	return &TestLogger{module: "test", t: t}
}

func (l *TestLogger) logf(level, msg string, args ...interface{}) {
	if l.t != nil {
		l.t.Logf("[%s] %s: %s %v", l.module, level, msg, args)
	}
}

// Debug logs a debug message
func (l *TestLogger) Debug(msg string, args ...interface{}) { l.logf("DEBUG", msg, args...) }

// Info logs an informational message
func (l *TestLogger) Info(msg string, args ...interface{}) { l.logf("INFO", msg, args...) }

// Warn logs a warning message
func (l *TestLogger) Warn(msg string, args ...interface{}) { l.logf("WARN", msg, args...) }

// Error logs an error message
func (l *TestLogger) Error(msg string, args ...interface{}) { l.logf("ERROR", msg, args...) }

// Fatal logs a fatal message without exiting, so tests can proceed
func (l *TestLogger) Fatal(msg string, args ...interface{}) { l.logf("FATAL", msg, args...) }

// WithModule returns a test logger scoped to the given module name
func (l *TestLogger) WithModule(module string) Logger {
	return &TestLogger{module: module, t: l.t}
}
