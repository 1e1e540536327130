package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ialiagadev/physia-scheduler/internal/config"
)

func New(cfg *config.Config) *zap.Logger {
	zapLogger, err := build(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	return zapLogger
}

func build(cfg *config.Config) (*zap.Logger, error) {
	encoding := "json"
	if cfg.IsDevelopment() {
		encoding = "console"
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
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	zcfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(cfg.LogLevel)),
		Development:      cfg.IsDevelopment(),
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zcfg.Build()
}

func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
