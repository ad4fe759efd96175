package logging

import (
	"context"
	"io"
	"os"

	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON zap logger writing to w at the given level. An empty or
// unrecognized level falls back to info. A nil w writes to stderr.
func New(level string, w io.Writer) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zapcore.InfoLevel
	}
	if w == nil {
		w = os.Stderr
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		lvl,
	)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

// PgxTracer routes pgx query logging through log. Queries are logged at debug,
// pgx warnings and errors at their own level.
func PgxTracer(log *zap.Logger) *tracelog.TraceLog {
	named := log.Named("pgx")
	return &tracelog.TraceLog{
		Logger: tracelog.LoggerFunc(func(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
			fields := make([]zap.Field, 0, len(data))
			for k, v := range data {
				fields = append(fields, zap.Any(k, v))
			}
			switch level {
			case tracelog.LogLevelError:
				named.Error(msg, fields...)
			case tracelog.LogLevelWarn:
				named.Warn(msg, fields...)
			case tracelog.LogLevelInfo:
				named.Info(msg, fields...)
			default:
				named.Debug(msg, fields...)
			}
		}),
		LogLevel: pgxLevel(named.Level()),
	}
}

func pgxLevel(l zapcore.Level) tracelog.LogLevel {
	switch {
	case l <= zapcore.DebugLevel:
		return tracelog.LogLevelDebug
	case l == zapcore.InfoLevel:
		return tracelog.LogLevelInfo
	case l == zapcore.WarnLevel:
		return tracelog.LogLevelWarn
	}
	return tracelog.LogLevelError
}
