package alloc

// Freelist recycles blocks of one size class in front of a parent
// allocator. Requests whose length falls in [min, max] are served from an
// unbounded LIFO of previously freed chunks before the parent is asked;
// every chunk is parent.Alloc(max) under the hood, so any in-range length
// fits any recycled chunk. Out-of-range requests pass straight through.
//
// Freeing into the list never returns memory to the parent; FreeAll does.
// Freelist is not safe for concurrent use.
type Freelist struct {
	parent   Allocator
	min, max int
	free     [][]byte
}

var (
	_ Allocator = (*Freelist)(nil)
	_ Owner     = (*Freelist)(nil)
	_ BulkFreer = (*Freelist)(nil)
)

// NewFreelist serves lengths in [min, max] with recycled max-sized chunks
// from parent.
func NewFreelist(parent Allocator, min, max int) (*Freelist, error) {
	if min < 1 || max < min {
		return nil, ErrBadRange
	}
	return &Freelist{parent: parent, min: min, max: max}, nil
}

func (f *Freelist) inRange(n int) bool {
	return n >= f.min && n <= f.max
}

// Alignment implements Allocator.
func (f *Freelist) Alignment() int {
	return f.parent.Alignment()
}

// GoodSize implements Allocator: in-range requests all reserve a max-sized
// chunk.
func (f *Freelist) GoodSize(n int) int {
	if n <= 0 {
		return 0
	}
	if f.inRange(n) {
		return f.parent.GoodSize(f.max)
	}
	return f.parent.GoodSize(n)
}

// Alloc implements Allocator, recycling before hitting the parent.
func (f *Freelist) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	if !f.inRange(n) {
		return f.parent.Alloc(n)
	}
	if ln := len(f.free); ln > 0 {
		chunk := f.free[ln-1]
		f.free[ln-1] = nil
		f.free = f.free[:ln-1]
		return chunk[:n]
	}
	chunk := f.parent.Alloc(f.max)
	if chunk == nil {
		return nil
	}
	return chunk[:n]
}

// Free implements Allocator. In-range blocks go onto the list, resliced
// back to the full chunk; the parent never sees them until FreeAll. A block
// we issued always has the whole chunk behind it, so a shorter capacity
// marks the block as foreign and it is refused.
func (f *Freelist) Free(blk []byte) bool {
	if len(blk) == 0 {
		return true
	}
	if !f.inRange(len(blk)) {
		return f.parent.Free(blk)
	}
	if cap(blk) < f.max {
		return false
	}
	f.free = append(f.free, blk[:f.max])
	return true
}

// Owns implements Owner by asking the parent, which issued every chunk.
func (f *Freelist) Owns(blk []byte) Ownership {
	if len(blk) == 0 {
		return OwnsNo
	}
	if ow, ok := f.parent.(Owner); ok {
		return ow.Owns(blk)
	}
	return OwnsUnknown
}

// FreeAll implements BulkFreer: the list drains back to the parent, and the
// parent bulk-frees too when it can.
func (f *Freelist) FreeAll() bool {
	if bf, ok := f.parent.(BulkFreer); ok {
		f.free = f.free[:0]
		return bf.FreeAll()
	}
	for _, chunk := range f.free {
		f.parent.Free(chunk)
	}
	f.free = f.free[:0]
	return true
}
