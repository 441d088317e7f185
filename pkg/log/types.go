package log

// Logger is the structured logger used across the client.
// keysAndValues are alternating key-value pairs, e.g. "method", name.
type Logger interface {
	// Debug logs detail useful while diagnosing a single call.
	Debug(msg string, keysAndValues ...any)
	// Info logs routine progress.
	Info(msg string, keysAndValues ...any)
	// Warn logs an unexpected situation the caller can recover from.
	Warn(msg string, keysAndValues ...any)
	// Error logs a failed operation.
	Error(msg string, keysAndValues ...any)
	// Fatal logs an unrecoverable failure; the zap backend exits the process.
	Fatal(msg string, keysAndValues ...any)
	// WithKV returns a logger that attaches key=value to every entry.
	WithKV(key string, value any) Logger
	// Fields returns the key-value pairs attached with WithKV.
	Fields() []any
	// WithName returns a logger whose name is extended by name.
	WithName(name string) Logger
	// Name returns the dotted logger name.
	Name() string
	// AddCallerSkip returns a logger that reports the caller skip frames higher.
	AddCallerSkip(skip int) Logger
}

// Level is a log severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// SpanEventRecorder receives log entries as trace span events.
type SpanEventRecorder interface {
	TraceID() string
	SpanID() string
	RecordEvent(name string, keysAndValues ...any)
	RecordError(name string, keysAndValues ...any)
}
