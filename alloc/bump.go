package alloc

import (
	"github.com/memkit/memkit/internal/align"
	"github.com/memkit/memkit/internal/mem"
)

// Bump is a linear allocator over one contiguous span. A single cursor
// advances monotonically through the span (or backwards from the end when
// built with GrowDown), so allocation is a bounds check and an add.
//
// Bump offers no general freeing: only the most recent block can be
// reclaimed, and FreeAll rewinds the whole region at once. That makes it the
// right tool for phase-oriented workloads where everything allocated
// together dies together.
//
// Three span flavors exist:
//   - NewBump reserves and owns its span; Release returns it to the system.
//   - NewBumpOn borrows a caller-provided span and never releases it.
//   - NewLazyBump defers the reservation to the first allocation, so an
//     unused region costs nothing beyond the struct itself.
//
// Bump is not safe for concurrent use; SharedBump is its lock-free twin.
type Bump struct {
	buf      []byte // active span, aligned bounds; nil until activated
	reserved []byte // full owned reservation, nil for borrowed spans
	cursor   int    // next free offset (upward) or end of free space (downward)
	pending  int    // lazy reservation size; 0 once active
	cfg      spanConfig
}

var (
	_ AlignedAllocator = (*Bump)(nil)
	_ Expander         = (*Bump)(nil)
	_ BulkFreer        = (*Bump)(nil)
	_ Owner            = (*Bump)(nil)
)

// NewBump reserves a span of at least size bytes and bump-allocates from it.
func NewBump(size int, opts ...Option) (*Bump, error) {
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
	b := &Bump{reserved: span, cfg: cfg}
	if !b.attach(span) {
		mem.Release(span)
		return nil, ErrBadSpan
	}
	return b, nil
}

// NewBumpOn bump-allocates from a caller-provided span. The region never
// owns the span: Release is a no-op and the caller controls its lifetime.
func NewBumpOn(span []byte, opts ...Option) (*Bump, error) {
	cfg, err := buildSpanConfig(opts)
	if err != nil {
		return nil, err
	}
	b := &Bump{cfg: cfg}
	if !b.attach(span) {
		return nil, ErrBadSpan
	}
	return b, nil
}

// NewLazyBump is NewBump with the reservation deferred to the first
// allocation call.
func NewLazyBump(size int, opts ...Option) (*Bump, error) {
	cfg, err := buildSpanConfig(opts)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, ErrBadSpan
	}
	return &Bump{pending: size, cfg: cfg}, nil
}

// attach trims span to alignment-rounded bounds and resets the cursor.
// Returns false when nothing usable remains after trimming.
func (b *Bump) attach(span []byte) bool {
	skip := align.Padding(base(span), b.cfg.alignment)
	if skip >= len(span) {
		return false
	}
	span = span[skip:]
	span = span[:align.Down(len(span), b.cfg.alignment)]
	if len(span) == 0 {
		return false
	}
	b.buf = span
	if b.cfg.down {
		b.cursor = len(span)
	} else {
		b.cursor = 0
	}
	return true
}

// activate performs the deferred reservation of a lazy region.
func (b *Bump) activate() bool {
	if b.pending <= 0 {
		return false
	}
	span, err := mem.Reserve(b.pending)
	if err != nil {
		return false
	}
	if !b.attach(span) {
		mem.Release(span)
		return false
	}
	b.reserved = span
	b.pending = 0
	return true
}

// Alignment implements Allocator.
func (b *Bump) Alignment() int {
	return b.cfg.alignment
}

// GoodSize implements Allocator.
func (b *Bump) GoodSize(n int) int {
	if n <= 0 {
		return 0
	}
	return align.Up(n, b.cfg.alignment)
}

// Alloc implements Allocator. The cursor advances by GoodSize(n); the
// returned block is the unrounded n-byte prefix of the reserved space.
func (b *Bump) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	if b.buf == nil && !b.activate() {
		return nil
	}
	need := align.Up(n, b.cfg.alignment)
	if b.cfg.down {
		if need > b.cursor {
			return nil
		}
		b.cursor -= need
		return b.buf[b.cursor : b.cursor+n]
	}
	if need > len(b.buf)-b.cursor {
		return nil
	}
	off := b.cursor
	b.cursor += need
	return b.buf[off : off+n]
}

// AllocAligned implements AlignedAllocator. The block's base address is a
// multiple of a, which may skip bytes between the previous cursor position
// and the aligned start.
func (b *Bump) AllocAligned(n, a int) []byte {
	if n <= 0 || !align.IsPow2(a) {
		return nil
	}
	if b.buf == nil && !b.activate() {
		return nil
	}
	need := align.Up(n, b.cfg.alignment)
	bb := base(b.buf)
	if b.cfg.down {
		if need > b.cursor {
			return nil
		}
		sa := align.DownAddr(bb+uintptr(b.cursor-need), a)
		if sa < bb {
			return nil
		}
		start := int(sa - bb)
		b.cursor = start
		return b.buf[start : start+n]
	}
	sa := align.UpAddr(bb+uintptr(b.cursor), a)
	start := int(sa - bb)
	if start > len(b.buf) || need > len(b.buf)-start {
		return nil
	}
	b.cursor = start + need
	return b.buf[start : start+n]
}

// Free implements Allocator. Only the most recent allocation, still abutting
// the cursor, is reclaimed; any other block is refused and the region is
// unchanged.
func (b *Bump) Free(blk []byte) bool {
	if len(blk) == 0 {
		return true
	}
	if !spanContains(b.buf, blk) {
		return false
	}
	off := int(base(blk) - base(b.buf))
	need := align.Up(len(blk), b.cfg.alignment)
	if b.cfg.down {
		if off != b.cursor {
			return false
		}
		b.cursor += need
		return true
	}
	if off+need != b.cursor {
		return false
	}
	b.cursor = off
	return true
}

// Expand implements Expander. Only the tail block can grow, and only while
// the span has room past it. A downward-growing region can extend a block
// solely into its own rounding slack, since the bytes below the tail are the
// free space new allocations would claim from the other end.
func (b *Bump) Expand(blk []byte, delta int) ([]byte, bool) {
	if delta < 0 {
		return nil, false
	}
	if delta == 0 {
		return blk, true
	}
	if len(blk) == 0 {
		nb := b.Alloc(delta)
		return nb, nb != nil
	}
	if !spanContains(b.buf, blk) {
		return nil, false
	}
	off := int(base(blk) - base(b.buf))
	need := align.Up(len(blk), b.cfg.alignment)
	if b.cfg.down {
		if off != b.cursor || len(blk)+delta > need {
			return nil, false
		}
		return b.buf[off : off+len(blk)+delta], true
	}
	if off+need != b.cursor {
		return nil, false
	}
	newNeed := align.Up(len(blk)+delta, b.cfg.alignment)
	if newNeed > len(b.buf)-off {
		return nil, false
	}
	b.cursor = off + newNeed
	return b.buf[off : off+len(blk)+delta], true
}

// FreeAll implements BulkFreer. It rewinds the cursor to the starting bound
// and invalidates every outstanding block. Calling it twice is the same as
// calling it once.
func (b *Bump) FreeAll() bool {
	if b.buf == nil {
		return true
	}
	if b.cfg.down {
		b.cursor = len(b.buf)
	} else {
		b.cursor = 0
	}
	return true
}

// Owns implements Owner as a pure address-range containment test.
func (b *Bump) Owns(blk []byte) Ownership {
	if spanContains(b.buf, blk) {
		return OwnsYes
	}
	return OwnsNo
}

// Available returns the bytes still allocatable from the span.
func (b *Bump) Available() int {
	if b.buf == nil {
		return b.pending
	}
	if b.cfg.down {
		return b.cursor
	}
	return len(b.buf) - b.cursor
}

// Capacity returns the usable span size.
func (b *Bump) Capacity() int {
	if b.buf == nil {
		return b.pending
	}
	return len(b.buf)
}

// Release returns an owned span to the system and leaves the region empty;
// every outstanding block is invalid afterwards. Borrowed spans are not
// touched. Further allocations fail.
func (b *Bump) Release() error {
	b.buf, b.cursor, b.pending = nil, 0, 0
	if b.reserved == nil {
		return nil
	}
	span := b.reserved
	b.reserved = nil
	return mem.Release(span)
}
