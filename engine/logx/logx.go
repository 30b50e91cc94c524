// Package logx is the severity-leveled logging hook used across the engine
// core. It wraps zap the same way the rest of the surrounding runtime does,
// so a host application gets structured, leveled output without the core
// depending on any particular sink.
package logx

import (
	"io"
	"os"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors zapcore.Level so callers never need to import zap directly.
type Level zapcore.Level

const (
	DebugLevel Level = Level(zapcore.DebugLevel)
	InfoLevel  Level = Level(zapcore.InfoLevel)
	WarnLevel  Level = Level(zapcore.WarnLevel)
	ErrorLevel Level = Level(zapcore.ErrorLevel)
	PanicLevel Level = Level(zapcore.PanicLevel)
	FatalLevel Level = Level(zapcore.FatalLevel)
)

type logFormatFunc func(format string, args ...interface{})

var (
	level  = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	output zapcore.WriteSyncer = zapcore.AddSync(os.Stderr)
	logger *zap.Logger
	sugar  *zap.SugaredLogger

	// Debugf logs a formatted message at debug severity.
	Debugf logFormatFunc
	// Infof logs a formatted message at info severity.
	Infof logFormatFunc
	// Warnf logs a formatted message at warn severity.
	Warnf logFormatFunc
	// Errorf logs a formatted message at error severity.
	Errorf logFormatFunc
	// Panicf logs then panics; used for programmer-error assertions.
	Panicf logFormatFunc
	// Fatalf logs then terminates the process.
	Fatalf logFormatFunc
)

func init() {
	rebuild()
}

func rebuild() {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:   "message",
		LevelKey:     "level",
		TimeKey:      "time",
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		LineEnding:   zapcore.DefaultLineEnding,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), output, level)
	logger = zap.New(core, zap.AddCaller())
	setSugar(logger.Sugar())
}

func setSugar(s *zap.SugaredLogger) {
	sugar = s
	Debugf = sugar.Debugf
	Infof = sugar.Infof
	Warnf = sugar.Warnf
	Errorf = sugar.Errorf
	Panicf = sugar.Panicf
	Fatalf = sugar.Fatalf
}

// SetComponent tags every subsequent log line with the name of the
// subsystem emitting it (e.g. "ecs", "session").
func SetComponent(name string) {
	logger = logger.With(zap.String("component", name))
	setSugar(logger.Sugar())
}

// SetLevel changes the minimum severity that is actually emitted.
func SetLevel(lv Level) {
	level.SetLevel(zapcore.Level(lv))
}

// SetOutput redirects where log lines are written.
func SetOutput(w io.Writer) {
	output = zapcore.AddSync(w)
	rebuild()
}

// TraceError logs an error along with the caller's stack.
func TraceError(format string, args ...interface{}) {
	Errorf(format, args...)
	sugar.Error(string(debug.Stack()))
}

// ParseLevel converts a severity name to a Level, defaulting to DebugLevel
// and logging a warning if the name is not recognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "panic":
		return PanicLevel
	case "fatal":
		return FatalLevel
	}
	Warnf("ParseLevel: unknown level %q, defaulting to debug", s)
	return DebugLevel
}
