package services

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ProductionLogger is a structured logger backed by zap
type ProductionLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

// NewProductionLogger wraps an existing zap logger
func NewProductionLogger(base *zap.Logger) *ProductionLogger {
	return &ProductionLogger{
		base:  base,
		sugar: base.Sugar(),
	}
}

// Zap exposes the underlying zap logger for libraries that log through zap directly.
func (p *ProductionLogger) Zap() *zap.Logger {
	return p.base
}

// Named returns a child logger scoped to a component
func (p *ProductionLogger) Named(component string) *ProductionLogger {
	return NewProductionLogger(p.base.Named(component))
}

func (p *ProductionLogger) Info(msg string, keysAndValues ...interface{}) {
	p.sugar.Infow(msg, keysAndValues...)
}

func (p *ProductionLogger) Error(msg string, keysAndValues ...interface{}) {
	p.sugar.Errorw(msg, keysAndValues...)
}

func (p *ProductionLogger) Debug(msg string, keysAndValues ...interface{}) {
	p.sugar.Debugw(msg, keysAndValues...)
}

func (p *ProductionLogger) Warn(msg string, keysAndValues ...interface{}) {
	p.sugar.Warnw(msg, keysAndValues...)
}

// Sync flushes buffered log entries
func (p *ProductionLogger) Sync() error {
	return p.base.Sync()
}

// NoOpLogger is a logger that does nothing (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// ParseLevel maps LOG_LEVEL values to zap levels, defaulting to INFO.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewZapLogger builds the process zap logger: JSON in production,
// human-readable console output otherwise.
func NewZapLogger(service, env, level string) (*zap.Logger, error) {
	var config zap.Config
	if strings.ToLower(env) == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named(service), nil
}

// Environment-based logger factory
func NewLogger(service string) Logger {
	if os.Getenv("GO_ENV") == "test" {
		return &NoOpLogger{}
	}

	base, err := NewZapLogger(service, os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		return NewProductionLogger(zap.NewNop())
	}
	return NewProductionLogger(base)
}
