// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

//go:build !calltrace

package main

import (
	"github.com/glassbox-media/mallinfo-override/internal/memstats"
)

func traceShimCall(memstats.Legacy) {
	// no-op without build tag
}
