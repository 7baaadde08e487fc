// Package loggers builds the zap loggers used by the command line tools
package loggers

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits of file loggers
const (
	MaxSize    int = 100 // megabytes
	MaxBackups int = 3
	MaxAge     int = 30 // days
)

// NewConsoleLogger returns a development logger writing to standard
// error. Debug messages are only logged if verbose is set.
func NewConsoleLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	if !verbose {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("newConsoleLogger: %v", err)
	}
	return logger, nil
}

// NewFileLogger returns a logger writing JSON lines to a size-rotated
// file at path
func NewFileLogger(path string, verbose bool) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("newFileLogger: could not create log "+
			"directory: %v", err)
	}

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    MaxSize,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAge,
	})

	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		w,
		level,
	)
	return zap.New(core), nil
}

// New returns a file logger if path is not empty, and a console logger
// otherwise
func New(path string, verbose bool) (*zap.Logger, error) {
	if path == "" {
		return NewConsoleLogger(verbose)
	}
	return NewFileLogger(path, verbose)
}
