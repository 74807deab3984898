// Package logging provides zap logger helpers and the process-wide logger.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the process-wide logger. It starts as a no-op logger so packages can
// log safely before InitLogger runs.
var L = zap.NewNop()

// InitLogger builds the global logger. Development mode is selected with the
// NEWSMAPPER_DEV environment variable; it must be decided before Viper is
// initialized because config loading itself logs.
func InitLogger() {
	logger, err := New(os.Getenv("NEWSMAPPER_DEV") == "true")
	if err != nil {
		panic(fmt.Sprintf("initialize logger: %v", err))
	}
	L = logger
	zap.ReplaceGlobals(L)
}

// New builds a zap.Logger configured for development or production.
func New(development bool) (*zap.Logger, error) {
	if development {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = false
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}
