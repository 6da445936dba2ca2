package ui

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	sugar *zap.SugaredLogger
}

type LogOptions struct {
	Debug bool
	// File, when set, receives a JSON copy of every entry, rotated by size.
	File string
	// Console defaults to stderr.
	Console io.Writer
}

func NewLoggerWithOptions(opts LogOptions) *Logger {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(console), level),
	}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			level,
		))
	}

	return &Logger{
		sugar: zap.New(zapcore.NewTee(cores...)).Sugar(),
	}
}

// The printf-style helpers accept the trailing newline callers are used
// to writing; zap adds its own.
func trim(format string) string {
	return strings.TrimRight(format, "\n")
}

func (l *Logger) Debugf(format string, args ...any) {
	l.sugar.Debugf(trim(format), args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.sugar.Infof(trim(format), args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.sugar.Errorf(trim(format), args...)
}

func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}
