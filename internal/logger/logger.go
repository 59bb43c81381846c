// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger builds the structured zap logger used across workerctl.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/workerctl/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFile is where logs go when no output path is configured. The console
// owns the terminal, so logs never default to stdout.
const DefaultFile = "workerctl.log"

// Logger wraps a zap.Logger together with the level that controls it, so the
// level can be changed while the program runs.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// New builds a Logger from cfg. Unknown levels fall back to info.
func New(cfg config.LoggerConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{config.DefaultPath(DefaultFile)}
	}
	if err := ensureDirs(outputs); err != nil {
		return nil, err
	}

	encoding := strings.ToLower(cfg.Encoding)
	if encoding != "json" {
		encoding = "console"
	}

	atom := zap.NewAtomicLevelAt(level)
	zapConfig := zap.Config{
		Level:            atom,
		Encoding:         encoding,
		OutputPaths:      outputs,
		ErrorOutputPaths: outputs,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    levelEncoder(encoding, outputs),
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{Logger: zapLogger, level: atom}, nil
}

// SetLevel changes the minimum level of every logger derived from l.
func (l *Logger) SetLevel(level string) error {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	old := l.level.Level()
	if parsed == old {
		return nil
	}

	// the change is logged under the more verbose of the two levels
	if parsed < old {
		l.level.SetLevel(parsed)
	}
	l.Warn("log level changed", zap.Stringer("from", old), zap.Stringer("to", parsed))
	l.level.SetLevel(parsed)
	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// levelEncoder colors levels only when every output is a terminal stream.
func levelEncoder(encoding string, outputs []string) zapcore.LevelEncoder {
	if encoding == "json" {
		return zapcore.LowercaseLevelEncoder
	}
	for _, out := range outputs {
		if out != "stdout" && out != "stderr" {
			return zapcore.CapitalLevelEncoder
		}
	}
	return zapcore.CapitalColorLevelEncoder
}

// ensureDirs creates the parent directories of file outputs.
func ensureDirs(outputs []string) error {
	for _, out := range outputs {
		if out == "stdout" || out == "stderr" || strings.Contains(out, "://") {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	return nil
}
