// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"fmt"
	"math"

	"github.com/glassbox-media/mallinfo-override/internal/memstats"
)

// CheckInvariants re-validates a legacy snapshot against the contract the
// host relies on, independently of any clamping already applied upstream:
// no negative field, arena+hblkhd representable in 32 bits, uordblks
// representable in 32 bits. A negative value is how a 32-bit wraparound
// presents once the snapshot has passed through the legacy struct, so the
// negative checks are the observable form of invariants two and three.
func CheckInvariants(l memstats.Legacy) []string {
	var warnings []string

	for _, f := range []struct {
		name  string
		value int32
	}{
		{"arena", l.Arena},
		{"hblkhd", l.Hblkhd},
		{"uordblks", l.Uordblks},
		{"fordblks", l.Fordblks},
	} {
		if f.value < 0 {
			warnings = append(warnings, fmt.Sprintf("%s is negative: %d (integer overflow!)", f.name, f.value))
		}
	}

	if sum := int64(l.Arena) + int64(l.Hblkhd); sum > math.MaxInt32 {
		warnings = append(warnings, fmt.Sprintf("arena + hblkhd > INT_MAX (%d + %d > %d)",
			l.Arena, l.Hblkhd, int64(math.MaxInt32)))
	}

	return warnings
}
