package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	initOnce sync.Once
	logger   *zap.Logger
	exitFunc = os.Exit
)

// L returns the shared application logger, initializing it on first use.
func L() *zap.Logger {
	initOnce.Do(func() {
		logger = newLogger()
	})
	return logger
}

func newLogger() *zap.Logger {
	level := zap.NewAtomicLevelAt(parseLevel(os.Getenv("NESTEGG_LOG_LEVEL")))

	var cfg zap.Config
	switch strings.ToLower(os.Getenv("NESTEGG_LOG_FORMAT")) {
	case "json", "structured":
		cfg = zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stdout"}
	default:
		// Console output goes to stderr so JSON output remains clean if enabled later.
		cfg = zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		cfg.DisableStacktrace = true
	}
	cfg.Level = level
	cfg.DisableCaller = !strings.EqualFold(os.Getenv("NESTEGG_LOG_SOURCE"), "true")

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func parseLevel(value string) zapcore.Level {
	switch strings.ToLower(value) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// With returns a child logger with additional fields.
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}

// Fatal logs the message at error level and exits with status 1.
func Fatal(msg string, fields ...zap.Field) {
	L().Error(msg, fields...)
	exitFunc(1)
}
