package logging

import (
	"io"
	"sync"
	"time"
)

// Level filters diagnostics. The checker runs at InfoLevel unless the
// project config or -log-level asks otherwise.
type Level int

const (
	// DebugLevel traces every synthesis step of a composition
	DebugLevel Level = iota
	// InfoLevel is the default logging priority
	InfoLevel
	// WarnLevel reports recoverable misuse, such as comparing unset signals
	WarnLevel
	// ErrorLevel reports failed compositions and unreadable inputs
	ErrorLevel
)

// String returns the upper-case name written in the "level" key.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel reads the log level named in a project config. Unknown names
// fall back to InfoLevel.
func ParseLevel(s string) Level {
	switch s {
	case "DEBUG", "debug":
		return DebugLevel
	case "INFO", "info":
		return InfoLevel
	case "WARN", "warn", "WARNING", "warning":
		return WarnLevel
	case "ERROR", "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Field is one key of a diagnostic, such as the automaton, state or
// signal it concerns. See logger_fields.go for the constructors.
type Field struct {
	Key   string
	Value any
}

// Logger receives the diagnostics of ingest, composition and checking.
// Debug traces synthesized states, shared signals and dropped transitions;
// Info closes each composition or check with its counts; Warn flags
// conflicting signal IDs, renamed product states and unset comparisons;
// Error reports a run that could not finish.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child carrying fields, e.g. one composition's ID
	With(fields ...Field) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// JSONLogger writes one JSON object per line, the format the capsl CLI
// sends to stderr.
type JSONLogger struct {
	writer io.Writer
	level  Level
	fields []Field
	mu     *sync.Mutex
}

// LogEntry is one line of JSONLogger output, also kept by MemoryLogger.
type LogEntry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// NopLogger discards everything. Library entry points fall back to it when
// the caller passes a nil Logger.
type NopLogger struct{}

func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}
func (n NopLogger) With(fields ...Field) Logger     { return n }
func (NopLogger) SetLevel(level Level)              {}
func (NopLogger) GetLevel() Level                   { return InfoLevel }

// NewNopLogger returns a NopLogger.
func NewNopLogger() Logger {
	return NopLogger{}
}

// MemoryLogger keeps entries in memory so tests can assert on diagnostics.
// Children created with With share the parent's entry buffer.
type MemoryLogger struct {
	store  *memoryStore
	level  Level
	fields []Field
}

type memoryStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// TimedOperation logs how long a checker build or rule translation took.
// Create it with StartTimer.
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}
