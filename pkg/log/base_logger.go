package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// BaseLogger is the standard Logger implementation. It writes one line per
// entry, either colored text or JSON, and is safe for concurrent use.
type BaseLogger struct {
	mu        *sync.Mutex
	out       io.Writer
	level     Level
	jsonMode  bool
	component string
	fields    []Field
}

// Option configures a BaseLogger.
type Option func(*BaseLogger)

// WithLevel sets the minimum level.
func WithLevel(level Level) Option {
	return func(l *BaseLogger) { l.level = level }
}

// WithOutput sets the output writer.
func WithOutput(out io.Writer) Option {
	return func(l *BaseLogger) { l.out = out }
}

// WithJSONFormat switches the logger to one-JSON-object-per-line output.
func WithJSONFormat() Option {
	return func(l *BaseLogger) { l.jsonMode = true }
}

// NewLogger creates a BaseLogger writing colored text to stderr at info
// level, adjusted by the given options.
func NewLogger(opts ...Option) *BaseLogger {
	logger := &BaseLogger{
		mu:    &sync.Mutex{},
		out:   os.Stderr,
		level: InfoLevel,
	}
	for _, opt := range opts {
		opt(logger)
	}
	return logger
}

// Debug logs a message at the debug level.
func (l *BaseLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }

// Info logs a message at the info level.
func (l *BaseLogger) Info(msg string, fields ...Field) { l.log(InfoLevel, msg, fields) }

// Warn logs a message at the warn level.
func (l *BaseLogger) Warn(msg string, fields ...Field) { l.log(WarnLevel, msg, fields) }

// Error logs a message at the error level.
func (l *BaseLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

// With returns a logger that attaches the given fields to every entry.
func (l *BaseLogger) With(fields ...Field) Logger {
	clone := *l
	clone.fields = append(append([]Field{}, l.fields...), fields...)
	return &clone
}

// WithComponent tags entries with a component name.
func (l *BaseLogger) WithComponent(component string) Logger {
	clone := *l
	clone.component = component
	return &clone
}

// SetLevel sets the minimum log level.
func (l *BaseLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

var levelColors = map[Level]*color.Color{
	DebugLevel: color.New(color.FgCyan),
	InfoLevel:  color.New(color.FgGreen),
	WarnLevel:  color.New(color.FgYellow),
	ErrorLevel: color.New(color.FgRed),
}

func (l *BaseLogger) log(level Level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	all := append(append([]Field{}, l.fields...), fields...)
	now := time.Now()

	var line []byte
	if l.jsonMode {
		line = l.formatJSON(level, msg, now, all)
	} else {
		line = l.formatText(level, msg, now, all)
	}
	fmt.Fprintln(l.out, string(line))
}

func (l *BaseLogger) formatText(level Level, msg string, now time.Time, fields []Field) []byte {
	var b strings.Builder
	b.WriteString(now.Format("2006-01-02T15:04:05.000Z07:00"))
	b.WriteByte(' ')
	b.WriteString(levelColors[level].Sprintf("%-5s", level.String()))
	if l.component != "" {
		b.WriteString(" [")
		b.WriteString(l.component)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		fmt.Fprintf(&b, "%v", f.Value)
	}
	return []byte(b.String())
}

func (l *BaseLogger) formatJSON(level Level, msg string, now time.Time, fields []Field) []byte {
	entry := map[string]interface{}{
		"ts":    now.Format(time.RFC3339Nano),
		"level": level.String(),
		"msg":   msg,
	}
	if l.component != "" {
		entry["component"] = l.component
	}
	for _, f := range fields {
		entry[f.Key] = f.Value
	}

	line, err := json.Marshal(entry)
	if err != nil {
		// Fall back to a sorted key=value rendering when a field value
		// cannot be marshaled.
		keys := make([]string, 0, len(entry))
		for k := range entry {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&b, "%s=%v ", k, entry[k])
		}
		return []byte(strings.TrimSpace(b.String()))
	}
	return line
}
