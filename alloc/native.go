package alloc

import (
	"github.com/memkit/memkit/internal/mem"
)

// AllocFunc returns a block of exactly n bytes, or nil.
type AllocFunc func(n int) []byte

// FreeFunc releases a block issued by the matching AllocFunc.
type FreeFunc func(b []byte)

// ResizeFunc resizes a block to n bytes, moving it when necessary.
// It returns nil when the resize cannot be done.
type ResizeFunc func(b []byte, n int) []byte

// Native adapts a malloc-shaped function triple to the Allocator contract,
// so the framework can run over any externally supplied allocator without
// hard-coding one. It keeps no state beyond the three captured functions.
//
// Native cannot answer Owns - the underlying allocator keeps its own books -
// so the type deliberately does not implement Owner.
type Native struct {
	alloc  AllocFunc
	free   FreeFunc
	resize ResizeFunc
}

var (
	_ Allocator   = (*Native)(nil)
	_ Reallocator = (*Native)(nil)
)

// NewNative wraps the supplied triple. alloc and free are mandatory; resize
// may be nil, in which case Realloc falls back to allocate-copy-free.
func NewNative(alloc AllocFunc, free FreeFunc, resize ResizeFunc) (*Native, error) {
	if alloc == nil || free == nil {
		return nil, ErrNilFunc
	}
	return &Native{alloc: alloc, free: free, resize: resize}, nil
}

// NewHeap returns a Native backed by the Go heap. Free is a no-op - the
// garbage collector reclaims unreferenced blocks - and resize reuses the
// block's spare capacity before moving.
func NewHeap() *Native {
	return &Native{
		alloc: func(n int) []byte { return make([]byte, n) },
		free:  func([]byte) {},
		resize: func(b []byte, n int) []byte {
			if n <= cap(b) {
				return b[:n]
			}
			nb := make([]byte, n)
			copy(nb, b)
			return nb
		},
	}
}

// NewMapped returns a Native whose blocks are anonymous page mappings,
// bypassing the Go heap entirely. Intended for huge blocks where page
// granularity is cheap.
func NewMapped() *Native {
	return &Native{
		alloc: func(n int) []byte {
			span, err := mem.Reserve(n)
			if err != nil {
				return nil
			}
			return span[:n]
		},
		free: func(b []byte) {
			mem.Release(b[:cap(b)])
		},
	}
}

// Alignment implements Allocator. Eight bytes is what malloc-shaped
// allocators conventionally guarantee; both built-in backends exceed it.
func (na *Native) Alignment() int {
	return DefaultAlignment
}

// GoodSize implements Allocator. The native allocator's rounding is opaque,
// so the request size is already the good size.
func (na *Native) GoodSize(n int) int {
	if n <= 0 {
		return 0
	}
	return n
}

// Alloc implements Allocator.
func (na *Native) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	return na.alloc(n)
}

// AllocZeroed returns a block of n bytes with every byte zero. The clear is
// unconditional: an arbitrary native allocator may hand back dirty memory.
func (na *Native) AllocZeroed(n int) []byte {
	b := na.Alloc(n)
	if b == nil {
		return nil
	}
	clear(b)
	return b
}

// Free implements Allocator.
func (na *Native) Free(blk []byte) bool {
	if len(blk) == 0 {
		return true
	}
	na.free(blk)
	return true
}

// Realloc implements Reallocator. Resizing to zero is a free; without a
// resize function the block moves via allocate-copy-free.
func (na *Native) Realloc(blk []byte, n int) ([]byte, bool) {
	if n <= 0 {
		return nil, na.Free(blk)
	}
	if len(blk) == 0 {
		nb := na.Alloc(n)
		return nb, nb != nil
	}
	if na.resize == nil {
		return moveRealloc(na, blk, n)
	}
	nb := na.resize(blk, n)
	if nb == nil {
		return nil, false
	}
	return nb, true
}
