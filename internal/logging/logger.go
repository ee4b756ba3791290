// Package logging provides configurable logging for the sourcemap CLI and
// its support packages. The core pkg/sourcemap package never imports this:
// a library should never log on its caller's behalf.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents logging verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger is the logging facade used throughout this module. Any component
// that needs to log takes a Logger, never a concrete zap type, so tests can
// substitute a buffer-backed logger without touching zap's config surface.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// zapLogger implements Logger on top of a zap.SugaredLogger.
type zapLogger struct {
	level   Level
	sugared *zap.SugaredLogger
}

// New creates a Logger writing to output at the given level. levelStr can be
// "debug", "info", "warn"/"warning", or "error"; anything else defaults to
// "info".
func New(levelStr string, output io.Writer) Logger {
	if output == nil {
		output = os.Stderr
	}
	level := ParseLevel(levelStr)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	core := zapcore.NewCore(encoder, zapcore.AddSync(output), zapLevelFor(level))
	logger := zap.New(core).Named("sourcemap-cli").Sugar()

	return &zapLogger{level: level, sugared: logger}
}

// ParseLevel maps a level name to a Level, defaulting to LevelInfo.
func ParseLevel(levelStr string) Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func zapLevelFor(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func (l *zapLogger) Debugf(format string, args ...interface{}) { l.sugared.Debugf(format, args...) }
func (l *zapLogger) Infof(format string, args ...interface{})  { l.sugared.Infof(format, args...) }
func (l *zapLogger) Warnf(format string, args ...interface{})  { l.sugared.Warnf(format, args...) }
func (l *zapLogger) Errorf(format string, args ...interface{}) { l.sugared.Errorf(format, args...) }

func (l *zapLogger) Fatalf(format string, args ...interface{}) {
	l.sugared.Fatalf(format, args...)
}
