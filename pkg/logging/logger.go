package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// NewJSONLogger creates a new JSON logger
func NewJSONLogger(writer io.Writer, level Level) *JSONLogger {
	return &JSONLogger{
		writer: writer,
		level:  level,
		fields: make([]Field, 0),
		mu:     &sync.Mutex{},
	}
}

// NewDefaultLogger creates a logger that writes to stderr at INFO level.
// Stdout is left to the transition tables and summaries the CLI prints.
func NewDefaultLogger() *JSONLogger {
	return NewJSONLogger(os.Stderr, InfoLevel)
}

func buildEntry(level Level, msg string, preset, fields []Field) LogEntry {
	entry := LogEntry{
		Time:    time.Now().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}

	if len(preset)+len(fields) == 0 {
		return entry
	}

	entry.Fields = make(map[string]any, len(preset)+len(fields))
	for _, f := range preset {
		entry.Fields[f.Key] = f.Value
	}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}
	return entry
}

func (l *JSONLogger) log(level Level, msg string, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	data, err := json.Marshal(buildEntry(level, msg, l.fields, fields))
	if err != nil {
		fmt.Fprintf(l.writer, "[ERROR] Failed to marshal log entry: %v\n", err)
		return
	}

	l.writer.Write(append(data, '\n'))
}

// Debug logs a debug-level message
func (l *JSONLogger) Debug(msg string, fields ...Field) {
	l.log(DebugLevel, msg, fields...)
}

// Info logs an info-level message
func (l *JSONLogger) Info(msg string, fields ...Field) {
	l.log(InfoLevel, msg, fields...)
}

// Warn logs a warning-level message
func (l *JSONLogger) Warn(msg string, fields ...Field) {
	l.log(WarnLevel, msg, fields...)
}

// Error logs an error-level message
func (l *JSONLogger) Error(msg string, fields ...Field) {
	l.log(ErrorLevel, msg, fields...)
}

// With creates a child logger with the given fields pre-set.
// The child shares the writer lock with its parent.
func (l *JSONLogger) With(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &JSONLogger{
		writer: l.writer,
		level:  l.level,
		fields: newFields,
		mu:     l.mu,
	}
}

// SetLevel sets the minimum log level
func (l *JSONLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level
func (l *JSONLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// NewMemoryLogger creates a logger that records entries at or above level.
func NewMemoryLogger(level Level) *MemoryLogger {
	return &MemoryLogger{store: &memoryStore{}, level: level}
}

func (m *MemoryLogger) log(level Level, msg string, fields ...Field) {
	if level < m.level {
		return
	}
	entry := buildEntry(level, msg, m.fields, fields)
	m.store.mu.Lock()
	m.store.entries = append(m.store.entries, entry)
	m.store.mu.Unlock()
}

func (m *MemoryLogger) Debug(msg string, fields ...Field) { m.log(DebugLevel, msg, fields...) }
func (m *MemoryLogger) Info(msg string, fields ...Field)  { m.log(InfoLevel, msg, fields...) }
func (m *MemoryLogger) Warn(msg string, fields ...Field)  { m.log(WarnLevel, msg, fields...) }
func (m *MemoryLogger) Error(msg string, fields ...Field) { m.log(ErrorLevel, msg, fields...) }

// With creates a child logger writing into the same entry buffer
func (m *MemoryLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(m.fields)+len(fields))
	merged = append(merged, m.fields...)
	merged = append(merged, fields...)
	return &MemoryLogger{store: m.store, level: m.level, fields: merged}
}

func (m *MemoryLogger) SetLevel(level Level) { m.level = level }
func (m *MemoryLogger) GetLevel() Level      { return m.level }

// Entries returns a copy of the recorded entries
func (m *MemoryLogger) Entries() []LogEntry {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	out := make([]LogEntry, len(m.store.entries))
	copy(out, m.store.entries)
	return out
}

// Count returns how many recorded entries have the given level
func (m *MemoryLogger) Count(level Level) int {
	n := 0
	for _, e := range m.Entries() {
		if e.Level == level.String() {
			n++
		}
	}
	return n
}

// Global default logger
var (
	defaultLogger Logger
	defaultMu     sync.Mutex
)

// DefaultLogger returns the global default logger
func DefaultLogger() Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		l := NewDefaultLogger()
		if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
			l.SetLevel(ParseLevel(levelStr))
		}
		defaultLogger = l
	}
	return defaultLogger
}

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// OrNop returns logger, or a NopLogger when logger is nil
func OrNop(logger Logger) Logger {
	if logger == nil {
		return NopLogger{}
	}
	return logger
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// Elapsed reports the time since the operation started
func (t *TimedOperation) Elapsed() time.Duration {
	return time.Since(t.start)
}

// End logs the operation with its duration
func (t *TimedOperation) End(fields ...Field) {
	all := append(append([]Field{}, t.fields...), fields...)
	t.logger.Info(t.msg, append(all, Latency(t.Elapsed()))...)
}

// EndError logs the operation as an error with its duration
func (t *TimedOperation) EndError(err error) {
	t.logger.Error(t.msg, append(append([]Field{}, t.fields...), Latency(t.Elapsed()), Error(err))...)
}
