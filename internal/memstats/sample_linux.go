// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux && cgo

package memstats

/*
#include <stddef.h>

// Declared locally instead of via <malloc.h> so this package never collides
// with the overriding definition of mallinfo() linked into the same image.
struct mallinfo {
	int arena;
	int ordblks;
	int smblks;
	int hblks;
	int hblkhd;
	int usmblks;
	int fsmblks;
	int uordblks;
	int fordblks;
	int keepcost;
};

struct mallinfo2 {
	size_t arena;
	size_t ordblks;
	size_t smblks;
	size_t hblks;
	size_t hblkhd;
	size_t usmblks;
	size_t fsmblks;
	size_t uordblks;
	size_t fordblks;
	size_t keepcost;
};

extern struct mallinfo mallinfo(void);
extern struct mallinfo2 mallinfo2(void);
*/
import "C"

// ReadWide samples mallinfo2(), the 64-bit capable interface. Requires
// glibc >= 2.33; that is a link-time precondition of this package, not a
// runtime branch.
func ReadWide() Wide {
	r := C.mallinfo2()
	return Wide{
		Arena:    uint64(r.arena),
		Ordblks:  uint64(r.ordblks),
		Smblks:   uint64(r.smblks),
		Hblks:    uint64(r.hblks),
		Hblkhd:   uint64(r.hblkhd),
		Usmblks:  uint64(r.usmblks),
		Fsmblks:  uint64(r.fsmblks),
		Uordblks: uint64(r.uordblks),
		Fordblks: uint64(r.fordblks),
		Keepcost: uint64(r.keepcost),
	}
}

// ReadLegacy samples mallinfo() through the dynamic linker, observing
// whichever implementation is active in the process: glibc's own, or the
// override when the shim library is loaded.
func ReadLegacy() Legacy {
	r := C.mallinfo()
	return Legacy{
		Arena:    int32(r.arena),
		Ordblks:  int32(r.ordblks),
		Smblks:   int32(r.smblks),
		Hblks:    int32(r.hblks),
		Hblkhd:   int32(r.hblkhd),
		Usmblks:  int32(r.usmblks),
		Fsmblks:  int32(r.fsmblks),
		Uordblks: int32(r.uordblks),
		Fordblks: int32(r.fordblks),
		Keepcost: int32(r.keepcost),
	}
}
