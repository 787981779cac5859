// Package logging carries the engine's structured logging. The library
// stays silent by default; embedding applications opt in through the
// engine options.
package logging

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log entry.
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Config holds logger configuration.
type Config struct {
	Enabled bool
	Level   LogLevel
	// FilePath appends a file core when non-empty.
	FilePath string
}

// Logger wraps a zap sugared logger with the source-tagged helpers the
// engine logs through.
type Logger struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger
	file  *os.File
}

var (
	mu     sync.RWMutex
	global = NewNop()
)

// SetGlobal installs the logger used by the engine internals.
func SetGlobal(l *Logger) {
	if l == nil {
		l = NewNop()
	}
	mu.Lock()
	global = l
	mu.Unlock()
}

// L returns the engine-wide logger.
func L() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	z := zap.NewNop()
	return &Logger{zap: z, sugar: z.Sugar()}
}

// NewLogger creates a logger instance from cfg. A disabled config
// yields a nop logger.
func NewLogger(cfg Config) (*Logger, error) {
	if !cfg.Enabled {
		return NewNop(), nil
	}

	var level zapcore.Level
	switch cfg.Level {
	case LevelDebug:
		level = zapcore.DebugLevel
	case LevelInfo:
		level = zapcore.InfoLevel
	case LevelWarn:
		level = zapcore.WarnLevel
	case LevelError:
		level = zapcore.ErrorLevel
	default:
		level = zapcore.DebugLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}

	var file *os.File
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stderr), level),
	}

	if cfg.FilePath != "" {
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		file = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(f), zapcore.DebugLevel))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.ErrorLevel))
	return &Logger{zap: z, sugar: z.Sugar(), file: file}, nil
}

// Debug logs a debug message tagged with its source component.
func (l *Logger) Debug(source, msg string, args ...interface{}) {
	l.sugar.Debugw(fmt.Sprintf(msg, args...), "source", source)
}

// Info logs an info message.
func (l *Logger) Info(source, msg string, args ...interface{}) {
	l.sugar.Infow(fmt.Sprintf(msg, args...), "source", source)
}

// Warn logs a warning message.
func (l *Logger) Warn(source, msg string, args ...interface{}) {
	l.sugar.Warnw(fmt.Sprintf(msg, args...), "source", source)
}

// Error logs an error message.
func (l *Logger) Error(source, msg string, args ...interface{}) {
	l.sugar.Errorw(fmt.Sprintf(msg, args...), "source", source)
}

// Close syncs and closes the logger.
func (l *Logger) Close() error {
	err := l.zap.Sync()
	if l.file != nil {
		l.file.Close()
	}
	return err
}
