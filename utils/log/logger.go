package log

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "request_id"
	UserIDKey    ctxKey = "user_id"
	ModeKey      ctxKey = "mode"
)

var contextKeys = []ctxKey{RequestIDKey, UserIDKey, ModeKey}

const (
	maxLogSizeMB  = 5
	maxLogBackups = 5
	maxLogAgeDays = 14
)

var logger *zap.Logger

func init() {
	if os.Getenv("DEBUG") == "true" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
}

// Setup replaces the package logger. When file is set, entries are also
// written to a rotated JSON log file.
func Setup(debug bool, file string) *zap.Logger {
	var base *zap.Logger
	if debug {
		base, _ = zap.NewDevelopment()
	} else {
		base, _ = zap.NewProduction()
	}

	if file != "" {
		level := zapcore.InfoLevel
		if debug {
			level = zapcore.DebugLevel
		}
		rotated := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   file,
				MaxSize:    maxLogSizeMB,
				MaxBackups: maxLogBackups,
				MaxAge:     maxLogAgeDays,
				Compress:   true,
			}),
			level,
		)
		base = base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, rotated)
		}))
	}

	logger = base
	return logger
}

// Replace swaps the package logger, e.g. for zap.NewNop in interactive tools.
func Replace(l *zap.Logger) {
	logger = l
}

// ContextWith stores a loggable value on ctx for WithCtx to pick up.
func ContextWith(ctx context.Context, key ctxKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

func WithCtx(ctx context.Context) *zap.Logger {
	fields := []zap.Field{}

	for _, k := range contextKeys {
		if v := ctx.Value(k); v != nil {
			fields = append(fields, zap.Any(string(k), v))
		}
	}

	return logger.With(fields...)
}

func With(fields ...zap.Field) *zap.Logger {
	return logger.With(fields...)
}

func Sync() {
	_ = logger.Sync()
}
