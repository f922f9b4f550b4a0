package alloc

import (
	"testing"

	"github.com/memkit/memkit/internal/align"
)

// Helpers shared by the package tests. This file has no build constraints on
// purpose: the helpers touch unexported state and stay out of the public API
// by convention (nothing outside _test.go files calls them).

// alignedBuf returns a size-byte buffer whose base address is a multiple of
// a, so borrowed-span tests get exactly the capacity they ask for with no
// construction-time trimming.
func alignedBuf(t testing.TB, size, a int) []byte {
	t.Helper()
	raw := make([]byte, size+a)
	skip := align.Padding(base(raw), a)
	return raw[skip : skip+size]
}

// fillPattern writes a recognizable byte pattern derived from seed.
func fillPattern(b []byte, seed byte) {
	for i := range b {
		b[i] = seed + byte(i)
	}
}

// checkPattern reports whether b still holds the pattern fillPattern wrote.
func checkPattern(b []byte, seed byte) bool {
	for i := range b {
		if b[i] != seed+byte(i) {
			return false
		}
	}
	return true
}
