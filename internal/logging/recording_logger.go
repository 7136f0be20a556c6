package logging

import (
	"fmt"
	"sync"
)

// Entry is a single message captured by a RecordingLogger.
type Entry struct {
	Level   string
	Message string
}

// RecordingLogger keeps every message in memory. Tests use it to assert on
// warnings emitted for skipped tables.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecordingLogger creates an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) Verbose(format string, args ...interface{}) { l.add("verbose", format, args) }
func (l *RecordingLogger) Info(format string, args ...interface{})    { l.add("info", format, args) }
func (l *RecordingLogger) Warn(format string, args ...interface{})    { l.add("warn", format, args) }
func (l *RecordingLogger) Error(format string, args ...interface{})   { l.add("error", format, args) }

// Entries returns the messages logged at level, in order.
func (l *RecordingLogger) Entries(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func (l *RecordingLogger) add(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}
