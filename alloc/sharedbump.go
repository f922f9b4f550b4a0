package alloc

import (
	"sync/atomic"

	"github.com/memkit/memkit/internal/align"
	"github.com/memkit/memkit/internal/mem"
)

// SharedBump is the lock-free twin of Bump: every operation is safe to call
// from any number of goroutines with no external locking, so one goroutine
// may allocate while another frees.
//
// The cursor is a single atomic word. The common path - upward growth, no
// extra alignment - is one fetch-and-add, which totally orders concurrent
// allocations along the cursor and guarantees disjoint blocks at
// hardware-instruction cost. Aligned allocation and downward growth need the
// cursor's current value to compute the advance (padding, or a subtraction
// from a moving target), so those paths run a compare-and-swap loop that
// re-reads the cursor after every failed swap. Free of the tail block is a
// single compare-and-swap; losing that race to a concurrent allocation means
// the tail is no longer ours to unwind, and the free correctly does nothing.
//
// No operation blocks: CAS loops retry only while another goroutine is
// actively making progress. SharedBump does not implement Expander - growing
// a block in place cannot be made race-free under this discipline.
//
// There is no lazy variant: activation on first use would reintroduce the
// coordination the type exists to avoid.
type SharedBump struct {
	buf      []byte
	reserved []byte
	cursor   atomic.Int64
	cfg      spanConfig
}

var (
	_ AlignedAllocator = (*SharedBump)(nil)
	_ BulkFreer        = (*SharedBump)(nil)
	_ Owner            = (*SharedBump)(nil)
)

// NewSharedBump reserves a span of at least size bytes and serves it
// concurrently.
func NewSharedBump(size int, opts ...Option) (*SharedBump, error) {
	cfg, err := buildSpanConfig(opts)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, ErrBadSpan
	}
	span, err := mem.Reserve(size)
	if err != nil {
		return nil, err
	}
	b, aerr := newSharedOn(span, cfg)
	if aerr != nil {
		mem.Release(span)
		return nil, aerr
	}
	b.reserved = span
	return b, nil
}

// NewSharedBumpOn serves a caller-provided span concurrently. The span is
// borrowed, never released.
func NewSharedBumpOn(span []byte, opts ...Option) (*SharedBump, error) {
	cfg, err := buildSpanConfig(opts)
	if err != nil {
		return nil, err
	}
	return newSharedOn(span, cfg)
}

func newSharedOn(span []byte, cfg spanConfig) (*SharedBump, error) {
	skip := align.Padding(base(span), cfg.alignment)
	if skip >= len(span) {
		return nil, ErrBadSpan
	}
	span = span[skip:]
	span = span[:align.Down(len(span), cfg.alignment)]
	if len(span) == 0 {
		return nil, ErrBadSpan
	}
	b := &SharedBump{buf: span, cfg: cfg}
	if cfg.down {
		b.cursor.Store(int64(len(span)))
	}
	return b, nil
}

// Alignment implements Allocator.
func (b *SharedBump) Alignment() int {
	return b.cfg.alignment
}

// GoodSize implements Allocator.
func (b *SharedBump) GoodSize(n int) int {
	if n <= 0 {
		return 0
	}
	return align.Up(n, b.cfg.alignment)
}

// Alloc implements Allocator. Upward growth is a single fetch-and-add; an
// add that overshoots the span is rolled back with the inverse add, so the
// cursor may transiently sit past the end but never hands out memory there.
func (b *SharedBump) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	need := int64(align.Up(n, b.cfg.alignment))
	if !b.cfg.down {
		end := b.cursor.Add(need)
		if end > int64(len(b.buf)) {
			b.cursor.Add(-need)
			return nil
		}
		off := end - need
		return b.buf[off : off+int64(n)]
	}
	// Downward growth subtracts from a moving target, so the new cursor
	// depends on the value read and must go through CAS.
	for {
		cur := b.cursor.Load()
		if need > cur {
			return nil
		}
		if b.cursor.CompareAndSwap(cur, cur-need) {
			off := cur - need
			return b.buf[off : off+int64(n)]
		}
	}
}

// AllocAligned implements AlignedAllocator via a CAS retry loop: the padding
// depends on the cursor value read, so the reservation must be validated
// with a swap against that same value.
func (b *SharedBump) AllocAligned(n, a int) []byte {
	if n <= 0 || !align.IsPow2(a) {
		return nil
	}
	need := int64(align.Up(n, b.cfg.alignment))
	bb := base(b.buf)
	for {
		cur := b.cursor.Load()
		if b.cfg.down {
			if need > cur {
				return nil
			}
			sa := align.DownAddr(bb+uintptr(cur-need), a)
			if sa < bb {
				return nil
			}
			start := int64(sa - bb)
			if b.cursor.CompareAndSwap(cur, start) {
				return b.buf[start : start+int64(n)]
			}
			continue
		}
		sa := align.UpAddr(bb+uintptr(cur), a)
		start := int64(sa - bb)
		if start > int64(len(b.buf)) || need > int64(len(b.buf))-start {
			return nil
		}
		if b.cursor.CompareAndSwap(cur, start+need) {
			return b.buf[start : start+int64(n)]
		}
	}
}

// Free implements Allocator. Reclaiming the tail races with concurrent
// allocation, so it is a single compare-and-swap: failure means another
// goroutine already claimed the space and the free is a correct no-op.
func (b *SharedBump) Free(blk []byte) bool {
	if len(blk) == 0 {
		return true
	}
	if !spanContains(b.buf, blk) {
		return false
	}
	off := int64(base(blk) - base(b.buf))
	need := int64(align.Up(len(blk), b.cfg.alignment))
	if b.cfg.down {
		return b.cursor.CompareAndSwap(off, off+need)
	}
	return b.cursor.CompareAndSwap(off+need, off)
}

// FreeAll implements BulkFreer with one atomic store. Every outstanding
// block is invalid afterwards; allocations racing with the reset land on
// whichever side of it the cursor ordering puts them.
func (b *SharedBump) FreeAll() bool {
	if b.cfg.down {
		b.cursor.Store(int64(len(b.buf)))
	} else {
		b.cursor.Store(0)
	}
	return true
}

// Owns implements Owner as a pure address-range containment test.
func (b *SharedBump) Owns(blk []byte) Ownership {
	if spanContains(b.buf, blk) {
		return OwnsYes
	}
	return OwnsNo
}

// Available returns the bytes still allocatable. A failed fetch-and-add may
// leave the cursor transiently past the end of the span until its rollback
// lands, so the result clamps at zero rather than reporting negative space.
func (b *SharedBump) Available() int {
	cur := b.cursor.Load()
	var avail int64
	if b.cfg.down {
		avail = cur
	} else {
		avail = int64(len(b.buf)) - cur
	}
	if avail < 0 {
		return 0
	}
	return int(avail)
}

// Capacity returns the usable span size.
func (b *SharedBump) Capacity() int {
	return len(b.buf)
}

// Release returns an owned span to the system. The caller must guarantee no
// operation is in flight; Release is the one call that is not safe to race.
func (b *SharedBump) Release() error {
	b.buf = nil
	if b.reserved == nil {
		return nil
	}
	span := b.reserved
	b.reserved = nil
	return mem.Release(span)
}
