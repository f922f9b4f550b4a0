package alloc

// Allocator is the core capability every building block implements.
//
// Implementations in this package:
//   - Bump / SharedBump: linear allocation over one contiguous span
//   - Bucket: fixed-width size-class routing
//   - Router: threshold dispatch between two branches
//   - Freelist: block recycling in front of a parent allocator
//   - Native: adapter over malloc-shaped functions
//   - GeneralPurpose: the fixed composition of all of the above
//
// Optional capabilities are separate interfaces. Composites discover what a
// child supports with a type assertion when they are built, so an absent
// capability costs nothing at allocation time and misuse of an absent
// capability is a compile error rather than a runtime surprise.
type Allocator interface {
	// Alignment is the guaranteed alignment of every returned block.
	Alignment() int

	// GoodSize rounds n up to what Alloc(n) will actually reserve.
	// It is monotonic and idempotent, and returns 0 for n <= 0.
	GoodSize(n int) int

	// Alloc returns a block of exactly n bytes, or nil when n <= 0 or the
	// request cannot be satisfied.
	Alloc(n int) []byte

	// Free returns a block to the allocator. Freeing the null block is a
	// no-op success. A false return means the allocator refused the block
	// (it was not the reclaimable one, or it is foreign).
	Free(b []byte) bool
}

// AlignedAllocator is implemented by allocators that can place a block on a
// caller-chosen power-of-two boundary.
type AlignedAllocator interface {
	Allocator

	// AllocAligned returns a block of exactly n bytes whose base address is
	// a multiple of a. a must be a positive power of two; otherwise, and on
	// exhaustion, the result is nil.
	AllocAligned(n, a int) []byte
}

// Expander is implemented by allocators that can grow a block in place.
type Expander interface {
	// Expand grows b by delta bytes without moving it. On success the
	// extended block is returned; on failure the original block is
	// untouched and ok is false. delta < 0 always fails.
	Expand(b []byte, delta int) (grown []byte, ok bool)
}

// Reallocator is implemented by allocators with a native resize path.
type Reallocator interface {
	// Realloc resizes b to n bytes, preferring in-place growth or shrink
	// and moving the block otherwise. On success the old handle is dead and
	// the returned block is the live one; on failure b is untouched.
	// Resizing to n <= 0 frees the block.
	Realloc(b []byte, n int) (nb []byte, ok bool)
}

// BulkFreer is implemented by allocators that can release everything they
// ever issued in one call.
type BulkFreer interface {
	FreeAll() bool
}

// Owner is implemented by allocators that can answer whether a block came
// from them.
type Owner interface {
	Owns(b []byte) Ownership
}

// Realloc resizes b to n using a's native Realloc when it has one, and the
// generic allocate-copy-free path otherwise. The generic path never resizes
// in place, so it is also the fallback composites use when old and new sizes
// route to different children.
func Realloc(a Allocator, b []byte, n int) ([]byte, bool) {
	if r, ok := a.(Reallocator); ok {
		return r.Realloc(b, n)
	}
	return moveRealloc(a, b, n)
}

// moveRealloc is the shared allocate-copy-free resize path.
func moveRealloc(a Allocator, b []byte, n int) ([]byte, bool) {
	if n <= 0 {
		if a.Free(b) {
			return nil, true
		}
		return nil, false
	}
	if n == len(b) {
		return b, true
	}
	nb := a.Alloc(n)
	if nb == nil {
		return nil, false
	}
	copy(nb, b)
	a.Free(b)
	return nb, true
}
