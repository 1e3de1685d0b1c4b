package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	zap *zap.Logger
}

// New builds the CLI logger. Output goes to stderr so that stdout only
// carries command output.
func New(level string, verbose bool) (*Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	lvl := zapcore.WarnLevel
	if verbose {
		lvl = zapcore.DebugLevel
	}
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("unknown log level: %s", level)
		}
		lvl = parsed
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{zap: zapLogger}, nil
}

// Wrap adapts an existing zap logger, e.g. zaptest or observer cores in tests.
func Wrap(z *zap.Logger) *Logger {
	return &Logger{zap: z}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, err error, fields ...zap.Field) {
	l.zap.Error(msg, append(fields, zap.Error(err))...)
}

func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...)}
}

func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

func (l *Logger) Sync() {
	_ = l.zap.Sync()
}
