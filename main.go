// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux && cgo

// The override is built with -buildmode=c-shared and loaded ahead of glibc
// (link order or LD_PRELOAD) so that the host's mallinfo() calls resolve to
// the dispatcher in mallinfo_override.c instead of the library's own.
package main

/*
#include "mallinfo_override.h"
*/
import "C"

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/glassbox-media/mallinfo-override/internal/logging"
	"github.com/glassbox-media/mallinfo-override/internal/memstats"
	"github.com/glassbox-media/mallinfo-override/internal/monitor"
)

var (
	registerOnce sync.Once
	monitorOnce  sync.Once

	log       *zap.Logger
	sanitizer *memstats.Sanitizer
	config    overrideConfiguration
)

// init runs while the shared object is being loaded, before the host can
// issue its first legacy call.
func init() {
	register()
}

// register performs the one-time process-wide setup. Nothing in here may be
// able to take the host process down: configuration and logging problems
// degrade to defaults and a nop logger, never to a failure the host could
// observe.
func register() {
	registerOnce.Do(func() {
		raw := []byte(os.Getenv(configEnv))
		parsed, err := parseOverrideConfiguration(raw)
		config = parsed

		log = logging.New(config.logLevel)
		sanitizer = memstats.NewSanitizer(log)

		if err != nil {
			log.Warn("ignoring invalid override configuration", zap.Error(err))
		}
		log.Debug("mallinfo override active: legacy callers are served from mallinfo2() with overflow protection")

		if config.monitorEnabled {
			startMonitor()
		}
	})
}

// startMonitor launches the diagnostic sampler once. It observes the legacy
// interface the same way the host does and runs until process exit.
func startMonitor() {
	monitorOnce.Do(func() {
		m := monitor.New(log, memstats.ReadLegacy,
			monitor.WithInterval(config.monitorInterval),
			monitor.WithStartupDelay(config.monitorStartupDelay),
		)
		m.Start(context.Background())
	})
}

//export overrideMallinfo
func overrideMallinfo(out *C.struct_mallinfo) {
	l := sanitizer.Sanitize(memstats.ReadWide())
	traceShimCall(l)

	out.arena = C.int(l.Arena)
	out.ordblks = C.int(l.Ordblks)
	out.smblks = C.int(l.Smblks)
	out.hblks = C.int(l.Hblks)
	out.hblkhd = C.int(l.Hblkhd)
	out.usmblks = C.int(l.Usmblks)
	out.fsmblks = C.int(l.Fsmblks)
	out.uordblks = C.int(l.Uordblks)
	out.fordblks = C.int(l.Fordblks)
	out.keepcost = C.int(l.Keepcost)
}

//export mallinfo_override_start_monitor
func mallinfo_override_start_monitor() {
	register()
	startMonitor()
}

// main never runs; the artifact is a shared object.
func main() {}
