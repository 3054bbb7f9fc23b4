package log

import (
	"sync"
)

// TestLogger captures entries in memory for assertions in tests.
type TestLogger struct {
	mu        sync.Mutex
	entries   []TestEntry
	level     Level
	component string
	fields    []Field
}

// TestEntry is a single captured log entry.
type TestEntry struct {
	Level     Level
	Message   string
	Component string
	Fields    []Field
}

// NewTestLogger creates a TestLogger capturing everything from debug up.
func NewTestLogger() *TestLogger {
	return &TestLogger{level: DebugLevel}
}

// Entries returns a copy of the captured entries.
func (l *TestLogger) Entries() []TestEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]TestEntry{}, l.entries...)
}

// Debug captures a debug entry.
func (l *TestLogger) Debug(msg string, fields ...Field) { l.capture(DebugLevel, msg, fields) }

// Info captures an info entry.
func (l *TestLogger) Info(msg string, fields ...Field) { l.capture(InfoLevel, msg, fields) }

// Warn captures a warn entry.
func (l *TestLogger) Warn(msg string, fields ...Field) { l.capture(WarnLevel, msg, fields) }

// Error captures an error entry.
func (l *TestLogger) Error(msg string, fields ...Field) { l.capture(ErrorLevel, msg, fields) }

// With returns a logger that attaches the given fields to every entry.
// Captured entries still land in the parent's buffer.
func (l *TestLogger) With(fields ...Field) Logger {
	return &sharedTestLogger{
		parent:    l,
		component: l.component,
		fields:    append(append([]Field{}, l.fields...), fields...),
	}
}

// WithComponent tags entries with a component name.
func (l *TestLogger) WithComponent(component string) Logger {
	return &sharedTestLogger{parent: l, component: component, fields: l.fields}
}

// SetLevel sets the minimum captured level.
func (l *TestLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *TestLogger) capture(level Level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	l.entries = append(l.entries, TestEntry{
		Level:     level,
		Message:   msg,
		Component: l.component,
		Fields:    append(append([]Field{}, l.fields...), fields...),
	})
}

// sharedTestLogger is a derived view over a TestLogger; entries it captures
// land in the parent's buffer so tests only inspect one place.
type sharedTestLogger struct {
	parent    *TestLogger
	component string
	fields    []Field
}

func (l *sharedTestLogger) Debug(msg string, fields ...Field) { l.capture(DebugLevel, msg, fields) }
func (l *sharedTestLogger) Info(msg string, fields ...Field)  { l.capture(InfoLevel, msg, fields) }
func (l *sharedTestLogger) Warn(msg string, fields ...Field)  { l.capture(WarnLevel, msg, fields) }
func (l *sharedTestLogger) Error(msg string, fields ...Field) { l.capture(ErrorLevel, msg, fields) }

func (l *sharedTestLogger) With(fields ...Field) Logger {
	return &sharedTestLogger{
		parent:    l.parent,
		component: l.component,
		fields:    append(append([]Field{}, l.fields...), fields...),
	}
}

func (l *sharedTestLogger) WithComponent(component string) Logger {
	return &sharedTestLogger{parent: l.parent, component: component, fields: l.fields}
}

func (l *sharedTestLogger) SetLevel(level Level) { l.parent.SetLevel(level) }

func (l *sharedTestLogger) capture(level Level, msg string, fields []Field) {
	l.parent.mu.Lock()
	defer l.parent.mu.Unlock()
	if level < l.parent.level {
		return
	}
	l.parent.entries = append(l.parent.entries, TestEntry{
		Level:     level,
		Message:   msg,
		Component: l.component,
		Fields:    append(append([]Field{}, l.fields...), fields...),
	})
}
