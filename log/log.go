// Package log provides the structured logger used throughout the
// sequencer: every long-lived task gets a named, leveled logger derived
// from a single process-wide default.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used across the module. It mirrors the
// subset of zap's sugared API that call sites actually need.
type Logger interface {
	Info(keyvals ...interface{})
	Debug(keyvals ...interface{})
	Warn(keyvals ...interface{})
	Error(keyvals ...interface{})
	Fatal(keyvals ...interface{})
	With(args ...interface{}) Logger
	Named(s string) Logger
}

type log struct {
	*zap.SugaredLogger
}

func (l *log) With(args ...interface{}) Logger {
	return &log{l.SugaredLogger.With(args...)}
}

func (l *log) Named(s string) Logger {
	return &log{l.SugaredLogger.Named(s)}
}

const (
	InfoLevel  = int(zapcore.InfoLevel)
	DebugLevel = int(zapcore.DebugLevel)
	WarnLevel  = int(zapcore.WarnLevel)
	ErrorLevel = int(zapcore.ErrorLevel)
)

// DefaultLevel is used by DefaultLogger the first time it is called.
var DefaultLevel = InfoLevel

var isDefaultLoggerSet sync.Once
var defaultLogger Logger

// DefaultLogger returns the process-wide default logger, console-encoded
// at DefaultLevel, writing to stderr.
func DefaultLogger() Logger {
	isDefaultLoggerSet.Do(func() {
		defaultLogger = New(os.Stderr, DefaultLevel, false)
	})
	return defaultLogger
}

// New returns a fresh logger writing to output at the given level, either
// in a human-readable console format or as JSON.
func New(output zapcore.WriteSyncer, level int, jsonFormat bool) Logger {
	encoder := consoleEncoder()
	if jsonFormat {
		encoder = jsonEncoder()
	}
	core := zapcore.NewCore(encoder, output, zapcore.Level(level))
	return &log{zap.New(core, zap.WithCaller(true)).Sugar()}
}

func jsonEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
