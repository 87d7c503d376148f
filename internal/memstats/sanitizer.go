// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

package memstats

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Sanitizer wraps Transform with the once-per-process warnings. A process
// under sustained memory pressure would otherwise emit the same warning on
// every statistics call, so each warning class fires at most once. The flags
// use relaxed atomics: a duplicate line under a race is acceptable, blocking
// the caller is not.
type Sanitizer struct {
	log *zap.Logger

	warnedPair     atomic.Bool
	warnedUordblks atomic.Bool
}

// NewSanitizer returns a Sanitizer logging through log. A nil log disables
// the warnings but not the transformation.
func NewSanitizer(log *zap.Logger) *Sanitizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sanitizer{log: log}
}

// Sanitize produces the legacy view the host receives. The transformation can
// never fail; invariant pressure is corrected, not reported as an error,
// because the legacy ABI has no error channel.
func (s *Sanitizer) Sanitize(w Wide) Legacy {
	out, adj := Transform(w)

	if adj.PairRescaled && s.warnedPair.CompareAndSwap(false, true) {
		s.log.Warn("arena + hblkhd exceeded INT_MAX after clamping, scaled proportionally to prevent crash",
			zap.Int32("arena", out.Arena),
			zap.Int32("hblkhd", out.Hblkhd),
			zap.Int64("sum", int64(out.Arena)+int64(out.Hblkhd)),
		)
	}
	if adj.UordblksClamped && s.warnedUordblks.CompareAndSwap(false, true) {
		s.log.Warn("uordblks exceeded INT_MAX, clamped to prevent crash",
			zap.Uint64("uordblks", adj.RawUordblks),
		)
	}

	return out
}
