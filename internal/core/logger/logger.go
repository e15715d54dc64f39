package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry as the "service" field.
const ServiceName = "fulfillment-tracker"

var globalLogger *zap.Logger

// Init builds the global logger.
// "production" emits sampled JSON with ISO8601 timestamps; anything else
// emits colored console output. An unknown level keeps the preset's default.
func Init(environment string, level string) error {
	l, err := build(environment, level)
	if err != nil {
		return err
	}
	globalLogger = l
	return nil
}

func build(environment, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncoderConfig.TimeKey = "time"
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}
	cfg.InitialFields = map[string]interface{}{"service": ServiceName}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	return cfg.Build()
}

// Replace swaps the global logger, e.g. for an observer in tests.
// A nil logger resets to the no-op fallback.
func Replace(l *zap.Logger) {
	globalLogger = l
}

// Get returns the global logger, or a no-op logger before Init.
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// Named returns a child of the global logger scoped to a component,
// e.g. logger.Named("tracking").
func Named(component string) *zap.Logger {
	return Get().Named(component)
}

// ForOrder scopes l to one order so every entry carries its id.
func ForOrder(l *zap.Logger, orderID string) *zap.Logger {
	return l.With(zap.String("order_id", orderID))
}

// Sync flushes any buffered log entries.
func Sync() {
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}
