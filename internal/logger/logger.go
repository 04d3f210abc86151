package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "relytailors-api"

var log *zap.Logger

// Init initializes zap logger depending on the environment.
func Init(env string) {
	var cfg zap.Config

	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.CallerKey = "caller"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	built, err := cfg.Build(
		zap.AddCaller(),
		zap.Fields(zap.String("service", serviceName)),
	)
	if err != nil {
		panic(err)
	}
	log = built
}

// L returns the global logger, falling back to a development logger when
// Init has not been called (tests, tooling).
func L() *zap.Logger {
	if log == nil {
		Init("development")
	}
	return log
}

// Sync flushes logs.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

// Replace swaps the global logger and returns a func restoring the previous
// one, in the manner of zap.ReplaceGlobals.
func Replace(l *zap.Logger) func() {
	prev := log
	log = l
	return func() { log = prev }
}
