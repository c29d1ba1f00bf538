// SPDX-License-Identifier: EPL-2.0

package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging surface every package depends on.
type Logger interface {
	Level() zapcore.Level
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
	// Benchmark logs how long functionName took at debug level.
	Benchmark(functionName string, duration time.Duration)
	With(key string, value any) Logger
	Sync() error
}

// Options configures New.
type Options struct {
	Name  string
	Level string
	// Path enables a rotating log file next to the console output.
	Path string
}

const (
	maxSizeMB  = 50
	maxBackups = 3
	maxAgeDays = 28
)

type zapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// New builds a console logger on stderr, teeing to a lumberjack rotated file
// when opts.Path is set.
func New(opts Options) (Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCfg := encCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if opts.Path != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), level))
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	if opts.Name != "" {
		base = base.Named(opts.Name)
	}

	return &zapLogger{sugar: base.Sugar(), level: level}, nil
}

// FromZap wraps an existing zap logger, mostly for tests using zaptest.
func FromZap(l *zap.Logger) Logger {
	return &zapLogger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar(), level: zap.NewAtomicLevelAt(l.Level())}
}

// Nop discards everything.
func Nop() Logger {
	return FromZap(zap.NewNop())
}

func (l *zapLogger) Level() zapcore.Level { return l.level.Level() }

func (l *zapLogger) Debugf(template string, args ...any) { l.sugar.Debugf(template, args...) }
func (l *zapLogger) Infof(template string, args ...any)  { l.sugar.Infof(template, args...) }
func (l *zapLogger) Warnf(template string, args ...any)  { l.sugar.Warnf(template, args...) }
func (l *zapLogger) Errorf(template string, args ...any) { l.sugar.Errorf(template, args...) }

func (l *zapLogger) Benchmark(functionName string, duration time.Duration) {
	l.sugar.Debugw("benchmark", "function", functionName, "took", duration)
}

func (l *zapLogger) With(key string, value any) Logger {
	return &zapLogger{sugar: l.sugar.With(key, value), level: l.level}
}

func (l *zapLogger) Sync() error {
	return l.sugar.Sync()
}
