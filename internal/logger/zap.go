package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap's SugaredLogger. Every entry goes to stdout and, once
// remote shipping starts, to the log topic through the Shipper.
type Logger struct {
	*zap.SugaredLogger

	local   *zap.SugaredLogger
	level   zap.AtomicLevel
	shipper *Shipper
}

// defaultZapLevel defines the fallback log level when an unknown level string is provided.
const defaultZapLevel = zapcore.DebugLevel

// toZapLevel converts a textual level to zapcore.Level using known level constants.
func toZapLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return defaultZapLevel
	}
}

// newConsoleCore builds a zapcore.Core with a console encoder targeting stdout.
func newConsoleCore(level zapcore.LevelEnabler) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = ""
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoder := zapcore.NewConsoleEncoder(cfg)
	ws := zapcore.Lock(os.Stdout) // thread-safe writer
	return zapcore.NewCore(encoder, zapcore.AddSync(ws), level)
}

// newRemoteCore encodes entries for the remote log topic. Unlike stdout,
// the receiving side has no journal timestamps, so the time is kept.
func newRemoteCore(level zapcore.LevelEnabler, shipper *Shipper) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), shipper, level)
}

// newZapLogger constructs a sugared zap logger with the provided level string.
func newZapLogger(levelStr string, shipper *Shipper) *Logger {
	level := zap.NewAtomicLevelAt(toZapLevel(levelStr))
	return newLogger(level, newConsoleCore(level), shipper)
}

func newLogger(level zap.AtomicLevel, console zapcore.Core, shipper *Shipper) *Logger {
	core := console
	if shipper != nil {
		core = zapcore.NewTee(console, newRemoteCore(level, shipper))
	}
	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
		local:         zap.New(console).Sugar(),
		level:         level,
		shipper:       shipper,
	}
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() *Logger {
	nop := zap.NewNop().Sugar()
	return &Logger{SugaredLogger: nop, local: nop, level: zap.NewAtomicLevel()}
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(levelStr string) {
	l.level.SetLevel(toZapLevel(levelStr))
}

// Local returns a logger that never feeds the remote shipper. Code running on
// the shipping path must use it to avoid logging its own failures in a loop.
func (l *Logger) Local() *zap.SugaredLogger { return l.local }

// Shipper returns the remote log queue, or nil for a Nop logger.
func (l *Logger) Shipper() *Shipper { return l.shipper }
