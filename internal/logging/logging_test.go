// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want zapcore.Level
	}{
		{name: "empty defaults to debug", in: "", want: zapcore.DebugLevel},
		{name: "debug", in: "debug", want: zapcore.DebugLevel},
		{name: "info", in: "info", want: zapcore.InfoLevel},
		{name: "warn", in: "warn", want: zapcore.WarnLevel},
		{name: "error", in: "error", want: zapcore.ErrorLevel},
		{name: "garbage defaults to debug", in: "loud", want: zapcore.DebugLevel},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, ParseLevel(testCase.in))
		})
	}
}

func TestNewNeverNil(t *testing.T) {
	log := New(zapcore.InfoLevel)
	assert.NotNil(t, log)
	log.Info("logger smoke test")
}
