// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the process logger for the shim and the monitor.
// The shim is loaded into a foreign process, so logging must never be able to
// take that process down: any setup failure degrades to a nop logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr at the given level. It never
// fails; a build error yields zap.NewNop().
func New(level zapcore.Level) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	log, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		return zap.NewNop()
	}
	return log.Named("mallinfo-override")
}

// ParseLevel maps a configuration string to a zap level, defaulting to debug
// for unknown or empty input so a typo never silences the override's
// diagnostics.
func ParseLevel(s string) zapcore.Level {
	if s == "" {
		return zapcore.DebugLevel
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.DebugLevel
	}
	return level
}
