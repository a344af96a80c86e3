package logger

import (
	"log"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once  sync.Once
	sugar *zap.SugaredLogger
)

// NewLogger returns the process wide sugared logger, building it on first use
func NewLogger() *zap.SugaredLogger {
	once.Do(func() {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true

		logger, err := config.Build()
		if err != nil {
			log.Panic(err)
		}

		sugar = logger.Sugar()
	})

	return sugar
}

// Sync flushes buffered log entries, if any
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
