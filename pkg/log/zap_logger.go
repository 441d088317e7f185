package log

import (
	"os"
	"path/filepath"
	"time"

	golog "github.com/ipfs/go-log/v2"
	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = &ZapLogger{}

// ZapLogger is a Logger backed by a zap SugaredLogger.
type ZapLogger struct {
	lg     *zap.SugaredLogger
	fields []any
}

// Config describes the zap backend. The tags are read by cleanenv.
type Config struct {
	Format string `env:"JSONRPC_LOG_FORMAT" env-default:"console" validate:"oneof=console logfmt json"`
	Level  Level  `env:"JSONRPC_LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error fatal"`
	Output string `env:"JSONRPC_LOG_OUTPUT" env-default:"stderr"` // stderr, stdout or a file path
}

// NewZapLogger builds a zap-backed Logger. extraWriters receive a copy of every entry.
// When conf.Output cannot be opened the logger writes to stderr and its first
// entry is an error naming the output.
func NewZapLogger(conf Config, extraWriters ...zapcore.WriteSyncer) Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = func(ts time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(ts.UTC().Format(time.RFC3339))
	}

	var encoder zapcore.Encoder
	switch conf.Format {
	case "logfmt":
		encoder = zaplogfmt.NewEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	output, outputErr := outputSyncer(conf.Output)
	sinks := make([]zapcore.WriteSyncer, 0, len(extraWriters)+1)
	sinks = append(sinks, extraWriters...)
	sinks = append(sinks, output)
	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), toZapLevel(conf.Level))

	// Two frames: the exported level method and ZapLogger.log.
	lg := &ZapLogger{lg: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).Sugar()}
	if outputErr != nil {
		lg.Error("failed to open log output, writing to stderr", "output", conf.Output, "error", outputErr)
	}
	return lg
}

// NewIPFSLogger returns a Logger on top of the go-log subsystem logger, so
// client entries follow GOLOG_LOG_LEVEL and GOLOG_LOG_FMT like the rest of a
// go-log based process.
func NewIPFSLogger(system string) Logger {
	base := golog.Logger(system).SugaredLogger.Desugar()
	return &ZapLogger{lg: base.WithOptions(zap.AddCallerSkip(2)).Sugar()}
}

// outputSyncer opens the configured output. On error it still returns
// stderr so the logger stays usable.
func outputSyncer(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "", "stderr":
		return zapcore.Lock(os.Stderr), nil
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return zapcore.Lock(os.Stderr), err
	}
	file, err := os.OpenFile(output, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return zapcore.Lock(os.Stderr), err
	}
	return zapcore.AddSync(file), nil
}

func (l *ZapLogger) Debug(msg string, keysAndValues ...any) { l.log(LevelDebug, msg, keysAndValues) }
func (l *ZapLogger) Info(msg string, keysAndValues ...any)  { l.log(LevelInfo, msg, keysAndValues) }
func (l *ZapLogger) Warn(msg string, keysAndValues ...any)  { l.log(LevelWarn, msg, keysAndValues) }
func (l *ZapLogger) Error(msg string, keysAndValues ...any) { l.log(LevelError, msg, keysAndValues) }
func (l *ZapLogger) Fatal(msg string, keysAndValues ...any) { l.log(LevelFatal, msg, keysAndValues) }

func (l *ZapLogger) log(level Level, msg string, keysAndValues []any) {
	l.lg.Logw(toZapLevel(level), msg, keysAndValues...)
}

// WithKV returns a copy of the logger with key=value attached.
func (l *ZapLogger) WithKV(key string, value any) Logger {
	fields := make([]any, 0, len(l.fields)+2)
	fields = append(fields, l.fields...)
	return &ZapLogger{
		lg:     l.lg.With(key, value),
		fields: append(fields, key, value),
	}
}

func (l *ZapLogger) Fields() []any { return l.fields }

// WithName appends name to the logger name, separated by a dot.
func (l *ZapLogger) WithName(name string) Logger {
	return &ZapLogger{lg: l.lg.Named(name), fields: l.fields}
}

func (l *ZapLogger) Name() string { return l.lg.Desugar().Name() }

func (l *ZapLogger) AddCallerSkip(skip int) Logger {
	return &ZapLogger{lg: l.lg.WithOptions(zap.AddCallerSkip(skip)), fields: l.fields}
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
