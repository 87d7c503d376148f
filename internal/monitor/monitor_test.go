// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/glassbox-media/mallinfo-override/internal/memstats"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type monitorHarness struct {
	mock *clock.Mock
	logs *observer.ObservedLogs
	done chan struct{}
	stop context.CancelFunc
}

func startMonitor(t *testing.T, sample func() memstats.Legacy, opts ...Option) *monitorHarness {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	mock := clock.NewMock()
	m := New(zap.New(core), sample, append([]Option{WithClock(mock)}, opts...)...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(ctx)
	}()

	h := &monitorHarness{mock: mock, logs: logs, done: done, stop: cancel}
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("monitor did not stop")
		}
	})
	return h
}

// advance moves the mock clock once the loop has had a chance to arm its
// timer, then yields so the tick is observed.
func (h *monitorHarness) advance(d time.Duration) {
	time.Sleep(10 * time.Millisecond)
	h.mock.Add(d)
	time.Sleep(10 * time.Millisecond)
}

func snapshotCount(logs *observer.ObservedLogs) int {
	return len(logs.FilterMessage("mallinfo snapshot").All())
}

func TestRunWaitsForStartupDelay(t *testing.T) {
	h := startMonitor(t, func() memstats.Legacy {
		return memstats.Legacy{Arena: 1}
	})

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, h.logs.Len(), "nothing may be logged before the startup delay elapses")

	h.advance(DefaultStartupDelay)
	require.Eventually(t, func() bool { return snapshotCount(h.logs) == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, len(h.logs.FilterMessage("memory monitor started").All()))
}

func TestRunSamplesOnInterval(t *testing.T) {
	h := startMonitor(t, func() memstats.Legacy {
		return memstats.Legacy{Arena: 1024, Uordblks: 512}
	})

	h.advance(DefaultStartupDelay)
	require.Eventually(t, func() bool { return snapshotCount(h.logs) == 1 }, 5*time.Second, 10*time.Millisecond)

	// One second short of the interval: no new sample yet.
	h.advance(DefaultInterval - time.Second)
	assert.Equal(t, 1, snapshotCount(h.logs))

	h.advance(time.Second)
	require.Eventually(t, func() bool { return snapshotCount(h.logs) == 2 }, 5*time.Second, 10*time.Millisecond)

	entry := h.logs.FilterMessage("mallinfo snapshot").All()[1]
	fields := entry.ContextMap()
	assert.Equal(t, int64(DefaultInterval.Seconds()), fields["elapsed_s"])
	assert.Equal(t, int32(1024), fields["arena"])
}

func TestRunWarnsInSameCycleAsSnapshot(t *testing.T) {
	h := startMonitor(t, func() memstats.Legacy {
		// What a 32-bit wraparound looks like to a legacy caller.
		return memstats.Legacy{Arena: -1294967296, Uordblks: 100}
	})

	h.advance(DefaultStartupDelay)
	require.Eventually(t, func() bool { return snapshotCount(h.logs) == 1 }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(h.logs.FilterLevelExact(zapcore.WarnLevel).All()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	warning := h.logs.FilterLevelExact(zapcore.WarnLevel).All()[0]
	assert.Contains(t, warning.Message, "arena is negative: -1294967296")
}

func TestRunStopsOnCancel(t *testing.T) {
	h := startMonitor(t, func() memstats.Legacy { return memstats.Legacy{} })

	h.stop()
	select {
	case <-h.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRunStopsDuringStartupDelay(t *testing.T) {
	h := startMonitor(t, func() memstats.Legacy { return memstats.Legacy{} })

	time.Sleep(10 * time.Millisecond)
	h.stop()
	select {
	case <-h.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return while waiting out the startup delay")
	}
	assert.Zero(t, h.logs.Len())
}

func TestToMB(t *testing.T) {
	assert.Equal(t, 1.0, toMB(1048576))
	assert.Equal(t, 0.5, toMB(524288))
	assert.Equal(t, 3.0, toMB(3145728))
	assert.Equal(t, 0.0, toMB(0))
}
