// Package logging provides the structured Logger used across the engine,
// backed by zap. Log calls take a message name plus alternating key/value
// pairs; Bind returns a child logger with fields attached to every entry.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface consumed throughout the engine.
type Logger interface {
	Info(msg string, fields ...any)
	Debug(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	Bind(fields ...any) Logger
}

// ZapLogger implements Logger on top of a zap.SugaredLogger.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// New builds a ZapLogger. Development mode switches to the human-readable
// console encoder; otherwise JSON output is used.
func New(level string, development bool) (*ZapLogger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	base, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &ZapLogger{s: base.Sugar()}, nil
}

// Nop returns a Logger that discards everything. Useful in tests.
func Nop() *ZapLogger {
	return &ZapLogger{s: zap.NewNop().Sugar()}
}

func (l *ZapLogger) Info(msg string, fields ...any)  { l.s.Infow(msg, fields...) }
func (l *ZapLogger) Debug(msg string, fields ...any) { l.s.Debugw(msg, fields...) }
func (l *ZapLogger) Warn(msg string, fields ...any)  { l.s.Warnw(msg, fields...) }
func (l *ZapLogger) Error(msg string, fields ...any) { l.s.Errorw(msg, fields...) }

// Bind returns a child logger with the fields attached to every entry.
func (l *ZapLogger) Bind(fields ...any) Logger {
	return &ZapLogger{s: l.s.With(fields...)}
}

// Sync flushes buffered log entries. Call before process exit.
func (l *ZapLogger) Sync() error {
	return l.s.Sync()
}
