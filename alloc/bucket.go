package alloc

import "github.com/memkit/memkit/internal/align"

// Bucket routes requests in [min, max] into fixed-width size classes: class
// k serves lengths in (min-1+k*step, min-1+(k+1)*step]. Each class owns an
// independent child allocator built by the caller's factory, so two requests
// in one class share a pool while different classes never contend. Requests
// outside [min, max] fail with a nil block.
//
// Free, Owns, Expand and Realloc re-derive the class from the block's
// length - there is no side table - which is why the exact-length discipline
// on blocks is load-bearing here. The optional capability methods are always
// present on the type; when the classes' children lack one, calling it fails
// with the capability's failure value.
type Bucket struct {
	min, max, step int
	kids           []Allocator
	alignment      int

	// capability view, non-nil only when every child can bulk-free
	bulk []BulkFreer
}

var (
	_ Allocator = (*Bucket)(nil)
	_ Expander  = (*Bucket)(nil)
	_ Owner     = (*Bucket)(nil)
	_ BulkFreer = (*Bucket)(nil)
)

// NewBucket builds (max-min+1)/step classes, calling factory with each
// class's rounded block size. Construction fails unless
// (max-(min-1)) is a positive multiple of step and min >= 1.
func NewBucket(min, max, step int, factory func(classSize int) (Allocator, error)) (*Bucket, error) {
	if min < 1 || max < min || step < 1 || (max-(min-1))%step != 0 {
		return nil, ErrBadBucketConfig
	}
	n := (max - (min - 1)) / step
	b := &Bucket{
		min: min, max: max, step: step,
		kids: make([]Allocator, n),
		bulk: make([]BulkFreer, 0, n),
	}
	for k := range b.kids {
		kid, err := factory(min - 1 + (k+1)*step)
		if err != nil {
			return nil, err
		}
		b.kids[k] = kid
		if b.alignment == 0 || kid.Alignment() < b.alignment {
			b.alignment = kid.Alignment()
		}
		if bf, ok := kid.(BulkFreer); ok {
			b.bulk = append(b.bulk, bf)
		}
	}
	if len(b.bulk) != n {
		b.bulk = nil
	}
	return b, nil
}

// class returns the size-class index for an in-range length.
func (b *Bucket) class(n int) int {
	return (n - b.min) / b.step
}

func (b *Bucket) inRange(n int) bool {
	return n >= b.min && n <= b.max
}

// Alignment implements Allocator: the weakest guarantee among the classes.
func (b *Bucket) Alignment() int {
	return b.alignment
}

// GoodSize implements Allocator: requests round up to their class's block
// size, (min-1) + roundUpMultiple(n-(min-1), step).
func (b *Bucket) GoodSize(n int) int {
	if !b.inRange(n) {
		return 0
	}
	return b.min - 1 + align.UpMultiple(n-(b.min-1), b.step)
}

// Alloc implements Allocator.
func (b *Bucket) Alloc(n int) []byte {
	if !b.inRange(n) {
		return nil
	}
	return b.kids[b.class(n)].Alloc(n)
}

// Free implements Allocator, routing back to the class that served the
// block's length.
func (b *Bucket) Free(blk []byte) bool {
	if len(blk) == 0 {
		return true
	}
	if !b.inRange(len(blk)) {
		return false
	}
	return b.kids[b.class(len(blk))].Free(blk)
}

// Expand implements Expander. Growth that would cross into another class
// cannot happen in place - the classes draw from unrelated pools - so it
// fails; growth within the class forwards to the child when the child can
// expand.
func (b *Bucket) Expand(blk []byte, delta int) ([]byte, bool) {
	if delta < 0 {
		return nil, false
	}
	if delta == 0 {
		return blk, true
	}
	n := len(blk)
	if !b.inRange(n) || !b.inRange(n+delta) {
		return nil, false
	}
	k := b.class(n)
	if b.class(n+delta) != k {
		return nil, false
	}
	ex, ok := b.kids[k].(Expander)
	if !ok {
		return nil, false
	}
	return ex.Expand(blk, delta)
}

// Realloc implements Reallocator. Within a class the child decides; across
// classes the block always moves via allocate-copy-free through the bucket.
func (b *Bucket) Realloc(blk []byte, n int) ([]byte, bool) {
	if len(blk) == 0 {
		nb := b.Alloc(n)
		return nb, nb != nil || n <= 0
	}
	if n <= 0 {
		ok := b.Free(blk)
		return nil, ok
	}
	if !b.inRange(len(blk)) || !b.inRange(n) {
		return nil, false
	}
	k := b.class(len(blk))
	if b.class(n) == k {
		return Realloc(b.kids[k], blk, n)
	}
	return moveRealloc(b, blk, n)
}

// Owns implements Owner. The class is derived from the length; a length no
// class serves means the block cannot be ours.
func (b *Bucket) Owns(blk []byte) Ownership {
	if len(blk) == 0 {
		return OwnsNo
	}
	if b.inRange(len(blk)) {
		if ow, ok := b.kids[b.class(len(blk))].(Owner); ok {
			return ow.Owns(blk)
		}
		return OwnsUnknown
	}
	return OwnsNo
}

// FreeAll implements BulkFreer when every class does.
func (b *Bucket) FreeAll() bool {
	if b.bulk == nil {
		return false
	}
	for _, bf := range b.bulk {
		if !bf.FreeAll() {
			return false
		}
	}
	return true
}
