// Package logger provides a global, sugared Zap logger with context-first
// helpers. Fields attached with Derive travel with the context, and the
// active OpenTelemetry span (if any) is added to every entry as trace_id and
// span_id.
package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKeyType struct{}

// ctxKey is the context key under which a derived logger is stored.
var ctxKey = ctxKeyType{}

var (
	// baseLogger is the process-wide logger built by Init.
	baseLogger *zap.SugaredLogger

	// initBaseLoggerOnce guards the one-time construction of baseLogger.
	initBaseLoggerOnce sync.Once
)

// config holds optional logger settings.
type config struct {
	file string // optional rotating log file, written in addition to stderr
}

// Option configures the logger before initialization.
type Option func(*config)

// WithFile additionally writes JSON logs to path, rotated by size.
func WithFile(path string) Option {
	return func(c *config) {
		c.file = path
	}
}

// Init configures the global logger at the given level ("debug", "info",
// "warn", "error", "panic", "fatal"). Logs are JSON on stderr, leaving stdout
// to command output. Only the first successful call has an effect.
func Init(level string, opts ...Option) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	initBaseLoggerOnce.Do(func() {
		var sink io.Writer = os.Stderr
		if cfg.file != "" {
			sink = io.MultiWriter(os.Stderr, &lumberjack.Logger{
				Filename:   cfg.file,
				MaxSize:    50, // megabytes
				MaxBackups: 3,
				MaxAge:     14, // days
			})
		}

		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(sink),
			lvl,
		)

		baseLogger = zap.New(core).Sugar()
	})

	return nil
}

// Sync flushes buffered entries. Call it on shutdown.
func Sync() error {
	return baseLogger.Sync()
}

// fromCtx returns the logger stored in ctx, the base logger, or a no-op
// logger when Init was never called.
func fromCtx(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(ctxKey).(*zap.SugaredLogger); ok && l != nil {
		return l
	}

	if baseLogger != nil {
		return baseLogger
	}

	return zap.NewNop().Sugar()
}

// deriveFromCtx returns the logger stored in ctx (or the base logger) with the
// active span ids and the given key/value pairs attached.
func deriveFromCtx(ctx context.Context, keysAndValues ...any) *zap.SugaredLogger {
	l := fromCtx(ctx)

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		l = l.With("trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
	}

	if len(keysAndValues) > 0 {
		l = l.With(keysAndValues...)
	}

	return l
}

// Derive returns a child context whose logger carries the given key/value
// pairs on every subsequent entry.
func Derive(ctx context.Context, keysAndValues ...any) context.Context {
	l := fromCtx(ctx)

	return context.WithValue(ctx, ctxKey, l.With(keysAndValues...))
}

func log(ctx context.Context, level zapcore.Level, msg string, keysAndValues ...any) {
	deriveFromCtx(ctx).Logw(level, msg, keysAndValues...)
}

// Debug logs a debug-level message with optional key/value context.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.DebugLevel, msg, keysAndValues...)
}

// Info logs an info-level message with optional key/value context.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.InfoLevel, msg, keysAndValues...)
}

// Warn logs a warn-level message with optional key/value context.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.WarnLevel, msg, keysAndValues...)
}

// Error logs an error-level message with optional key/value context.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.ErrorLevel, msg, keysAndValues...)
}

// Panic logs a panic-level message and then panics.
func Panic(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.PanicLevel, msg, keysAndValues...)
}

// Fatal logs a fatal-level message and then exits the process.
func Fatal(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.FatalLevel, msg, keysAndValues...)
}
