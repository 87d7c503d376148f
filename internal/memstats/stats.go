// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

// Package memstats models the two glibc allocator statistics layouts and the
// transformation that makes the legacy one safe to hand to 32-bit consumers.
package memstats

import "math"

// Legacy mirrors glibc struct mallinfo: ten signed 32-bit fields. The field
// order, widths and signedness are ABI, fixed since SVID, and must match the
// C struct bit for bit.
type Legacy struct {
	Arena    int32
	Ordblks  int32
	Smblks   int32
	Hblks    int32
	Hblkhd   int32
	Usmblks  int32
	Fsmblks  int32
	Uordblks int32
	Fordblks int32
	Keepcost int32
}

// Wide mirrors glibc struct mallinfo2 (glibc >= 2.33): the same ten fields as
// size_t. This is the ground truth the shim reads; it does not overflow for
// any realistic address-space size.
type Wide struct {
	Arena    uint64
	Ordblks  uint64
	Smblks   uint64
	Hblks    uint64
	Hblkhd   uint64
	Usmblks  uint64
	Fsmblks  uint64
	Uordblks uint64
	Fordblks uint64
	Keepcost uint64
}

// Adjustments records what Transform had to alter materially, so callers can
// log first occurrences without the transform itself touching a logger.
type Adjustments struct {
	// PairRescaled is set when arena+hblkhd exceeded MaxInt32 after clamping
	// and both fields were scaled down proportionally.
	PairRescaled bool
	// UordblksClamped is set when the wide uordblks exceeded MaxInt32;
	// RawUordblks then holds the unclamped value.
	UordblksClamped bool
	RawUordblks     uint64
}

// ClampInt32 narrows a 64-bit candidate into [0, MaxInt32]. Both boundaries
// are exact: MaxInt32 passes through, MaxInt32+1 and every negative value
// saturate.
func ClampInt32(v int64) int32 {
	switch {
	case v < 0:
		return 0
	case v > math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(v)
	}
}

// clampSize adapts ClampInt32 to size_t sourced values. Anything above
// MaxInt64 would wrap negative when narrowed, so it saturates first.
func clampSize(v uint64) int32 {
	if v > math.MaxInt64 {
		return math.MaxInt32
	}
	return ClampInt32(int64(v))
}

// Transform maps a wide snapshot to a legacy-shaped one satisfying the three
// contract invariants: no negative field, arena+hblkhd <= MaxInt32, and
// uordblks <= MaxInt32. It is total, allocation free, and safe to call
// concurrently.
//
// arena and hblkhd are summed by the consumer, so when their clamped sum
// still exceeds MaxInt32 both are scaled by MaxInt32/sum rather than
// saturated. Consumers use the arena-to-mapped ratio as a heuristic and
// saturating one field to the ceiling would misreport it.
func Transform(w Wide) (Legacy, Adjustments) {
	var adj Adjustments

	arena := clampSize(w.Arena)
	hblkhd := clampSize(w.Hblkhd)
	if sum := int64(arena) + int64(hblkhd); sum > math.MaxInt32 {
		scale := float64(math.MaxInt32) / float64(sum)
		arena = int32(float64(arena) * scale)
		hblkhd = int32(float64(hblkhd) * scale)
		adj.PairRescaled = true
	}

	if w.Uordblks > math.MaxInt32 {
		adj.UordblksClamped = true
		adj.RawUordblks = w.Uordblks
	}

	return Legacy{
		Arena:    arena,
		Ordblks:  clampSize(w.Ordblks),
		Smblks:   clampSize(w.Smblks),
		Hblks:    clampSize(w.Hblks),
		Hblkhd:   hblkhd,
		Usmblks:  clampSize(w.Usmblks),
		Fsmblks:  clampSize(w.Fsmblks),
		Uordblks: clampSize(w.Uordblks),
		Fordblks: clampSize(w.Fordblks),
		Keepcost: clampSize(w.Keepcost),
	}, adj
}
