// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

//go:build calltrace

package main

import (
	"go.uber.org/zap"

	"github.com/glassbox-media/mallinfo-override/internal/memstats"
)

// traceShimCall logs every legacy call served by the shim. Strictly a debug
// build: the allocations behind these log lines are exactly what the
// steady-state path promises to avoid.
func traceShimCall(l memstats.Legacy) {
	log.Debug("mallinfo call served",
		zap.Int32("arena", l.Arena),
		zap.Int32("hblkhd", l.Hblkhd),
		zap.Int32("uordblks", l.Uordblks),
		zap.Int32("fordblks", l.Fordblks),
	)
}
