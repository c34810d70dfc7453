package logging

import (
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"TranscriptDigest/internal/config"
)

// New creates a slog.Logger backed by zap: a console core on stdout and, when
// cfg.File is set, a rotated JSON file core. The returned func flushes the
// console and closes the file.
func New(cfg config.LoggingConfig) (*slog.Logger, func() error) {
	level := levelFromString(cfg.Level)

	console := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		level,
	)

	if cfg.File == "" {
		logger := slog.New(zapslog.NewHandler(console, zapslog.WithCaller(true)))
		return logger, func() error {
			// stdout may be a pipe or terminal that rejects fsync
			_ = console.Sync()
			return nil
		}
	}

	rotator := newRotator(cfg)
	core := zapcore.NewTee(console, fileCore(rotator, level))
	logger := slog.New(zapslog.NewHandler(core, zapslog.WithCaller(true)))
	return logger, func() error {
		_ = console.Sync()
		return rotator.Close()
	}
}

func newRotator(cfg config.LoggingConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}

func fileCore(rotator *lumberjack.Logger, level zapcore.Level) zapcore.Core {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(rotator), level)
}

func levelFromString(value string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return zapcore.ErrorLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "info":
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
