package log

var _ Logger = SpanLogger{}

// SpanLogger writes every entry to the wrapped Logger and mirrors it onto a
// trace span through a SpanEventRecorder. Error and Fatal mark the span failed.
type SpanLogger struct {
	lg  Logger
	ser SpanEventRecorder
}

// NewSpanLogger wraps lg; one caller frame is added for the wrapper itself.
func NewSpanLogger(lg Logger, ser SpanEventRecorder) Logger {
	return SpanLogger{lg: lg.AddCallerSkip(1), ser: ser}
}

func (sl SpanLogger) Debug(msg string, keysAndValues ...any) {
	sl.ser.RecordEvent(msg, sl.spanFields(LevelDebug, keysAndValues)...)
	sl.lg.Debug(msg, sl.traceFields(keysAndValues)...)
}

func (sl SpanLogger) Info(msg string, keysAndValues ...any) {
	sl.ser.RecordEvent(msg, sl.spanFields(LevelInfo, keysAndValues)...)
	sl.lg.Info(msg, sl.traceFields(keysAndValues)...)
}

func (sl SpanLogger) Warn(msg string, keysAndValues ...any) {
	sl.ser.RecordEvent(msg, sl.spanFields(LevelWarn, keysAndValues)...)
	sl.lg.Warn(msg, sl.traceFields(keysAndValues)...)
}

func (sl SpanLogger) Error(msg string, keysAndValues ...any) {
	sl.ser.RecordError(msg, sl.spanFields(LevelError, keysAndValues)...)
	sl.lg.Error(msg, sl.traceFields(keysAndValues)...)
}

func (sl SpanLogger) Fatal(msg string, keysAndValues ...any) {
	sl.ser.RecordError(msg, sl.spanFields(LevelFatal, keysAndValues)...)
	sl.lg.Fatal(msg, sl.traceFields(keysAndValues)...)
}

func (sl SpanLogger) WithKV(key string, value any) Logger {
	return SpanLogger{lg: sl.lg.WithKV(key, value), ser: sl.ser}
}

func (sl SpanLogger) Fields() []any { return sl.lg.Fields() }

func (sl SpanLogger) WithName(name string) Logger {
	return SpanLogger{lg: sl.lg.WithName(name), ser: sl.ser}
}

func (sl SpanLogger) Name() string { return sl.lg.Name() }

func (sl SpanLogger) AddCallerSkip(skip int) Logger {
	return SpanLogger{lg: sl.lg.AddCallerSkip(skip), ser: sl.ser}
}

// traceFields prefixes the log entry with the span coordinates.
func (sl SpanLogger) traceFields(keysAndValues []any) []any {
	return append([]any{"traceId", sl.ser.TraceID(), "spanId", sl.ser.SpanID()}, keysAndValues...)
}

// spanFields carries level, logger name and persistent fields onto the span event.
func (sl SpanLogger) spanFields(level Level, keysAndValues []any) []any {
	fields := []any{"level", string(level), "component", sl.lg.Name()}
	fields = append(fields, sl.lg.Fields()...)
	return append(fields, keysAndValues...)
}
