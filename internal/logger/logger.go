// Package logger provides the process-wide zap logger.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// L is the global logger instance
	L    *zap.Logger
	once sync.Once
	mu   sync.RWMutex
)

// Init initializes the global logger once.
// Debug mode logs colored DEBUG-level console output; otherwise JSON at INFO
// with an ISO8601 "timestamp" key.
func Init(debug bool) {
	once.Do(func() {
		l, err := build(debug)
		if err != nil {
			l = zap.NewNop()
		}
		Set(l)
	})
}

func build(debug bool) (*zap.Logger, error) {
	if debug {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return config.Build()
	}

	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config.Build(zap.Fields(zap.String("service", "contentiq")))
}

// Set replaces the global logger. Tests use it to install zaptest or
// observer loggers.
func Set(l *zap.Logger) {
	mu.Lock()
	L = l
	mu.Unlock()
}

// Sync flushes any buffered log entries.
func Sync() {
	if l := current(); l != nil {
		_ = l.Sync()
	}
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return L
}

// Default returns the global logger, initializing it from GIN_MODE if needed.
func Default() *zap.Logger {
	if l := current(); l != nil {
		return l
	}
	Init(os.Getenv("GIN_MODE") != "release")
	return current()
}

// Named returns a child logger scoped to a component.
func Named(name string) *zap.Logger {
	return Default().Named(name)
}

// With creates a child logger with additional fields.
func With(fields ...zap.Field) *zap.Logger {
	return Default().With(fields...)
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	Default().Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	Default().Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	Default().Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	Default().Error(msg, fields...)
}

// Fatal logs a fatal message and exits.
func Fatal(msg string, fields ...zap.Field) {
	Default().Fatal(msg, fields...)
}
