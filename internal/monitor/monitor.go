// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

// Package monitor samples the legacy allocator statistics on a fixed interval
// and reports overflow conditions before the host trips over them. It is a
// detection tool, deliberately independent of the interposition shim: it
// observes whatever mallinfo() implementation is active in the process.
package monitor

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/glassbox-media/mallinfo-override/internal/memstats"
)

const (
	// DefaultInterval is the spacing between samples.
	DefaultInterval = 10 * time.Second
	// DefaultStartupDelay keeps the first sample out of process startup.
	DefaultStartupDelay = time.Second
)

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval overrides the sampling interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

// WithStartupDelay overrides the delay before the first sample.
func WithStartupDelay(d time.Duration) Option {
	return func(m *Monitor) { m.startupDelay = d }
}

// WithClock substitutes the clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) { m.clk = c }
}

// Monitor is the background sampler. Each iteration is self-contained; no
// state is shared with the shim beyond the allocator itself.
type Monitor struct {
	log          *zap.Logger
	clk          clock.Clock
	interval     time.Duration
	startupDelay time.Duration
	sample       func() memstats.Legacy
}

// New builds a Monitor logging to log and sampling through sample, normally
// memstats.ReadLegacy.
func New(log *zap.Logger, sample func() memstats.Legacy, opts ...Option) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Monitor{
		log:          log,
		clk:          clock.New(),
		interval:     DefaultInterval,
		startupDelay: DefaultStartupDelay,
		sample:       sample,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start runs the sampling loop on its own goroutine. The shim passes
// context.Background() here: the reference behavior is to sample until the
// process exits.
func (m *Monitor) Start(ctx context.Context) {
	go m.Run(ctx)
}

// Run samples until ctx is done. It never returns an error; a sampling pass
// cannot fail, only report.
func (m *Monitor) Run(ctx context.Context) {
	if !m.wait(ctx, m.startupDelay) {
		return
	}
	start := m.clk.Now()
	m.log.Info("memory monitor started",
		zap.Duration("interval", m.interval),
	)
	for {
		snap := m.sample()
		m.report(snap, m.clk.Since(start))
		for _, warning := range CheckInvariants(snap) {
			m.log.Warn(warning)
		}
		if !m.wait(ctx, m.interval) {
			return
		}
	}
}

func (m *Monitor) wait(ctx context.Context, d time.Duration) bool {
	t := m.clk.Timer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (m *Monitor) report(l memstats.Legacy, elapsed time.Duration) {
	m.log.Info("mallinfo snapshot",
		zap.Int64("elapsed_s", int64(elapsed.Seconds())),
		zap.Int32("arena", l.Arena),
		zap.Float64("arena_mb", toMB(l.Arena)),
		zap.Int32("ordblks", l.Ordblks),
		zap.Int32("smblks", l.Smblks),
		zap.Int32("hblks", l.Hblks),
		zap.Int32("hblkhd", l.Hblkhd),
		zap.Float64("hblkhd_mb", toMB(l.Hblkhd)),
		zap.Int32("usmblks", l.Usmblks),
		zap.Int32("fsmblks", l.Fsmblks),
		zap.Int32("uordblks", l.Uordblks),
		zap.Float64("uordblks_mb", toMB(l.Uordblks)),
		zap.Int32("fordblks", l.Fordblks),
		zap.Float64("fordblks_mb", toMB(l.Fordblks)),
		zap.Int32("keepcost", l.Keepcost),
		zap.Float64("keepcost_mb", toMB(l.Keepcost)),
	)
}

// toMB converts a byte count to megabytes, rounded to two decimals the way
// the snapshot has historically been reported.
func toMB(v int32) float64 {
	return math.Round(float64(v)/1048576*100) / 100
}
