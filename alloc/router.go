package alloc

import "sort"

// Router splits requests into two size-based branches: n <= threshold goes
// to the small branch, everything larger to the large branch. Branches are
// arbitrary allocators, including other routers, so a chain of thresholds
// composes into a dispatch tree; NewRouterTree builds that tree balanced.
//
// Optional capabilities forward only when both branches support them; the
// support check happens once, at construction. The capability methods are
// always present on the type, so an unsupported call fails with the
// capability's failure value rather than being absent. Free and the other
// block-consuming operations pick the branch from the block's length.
type Router struct {
	threshold    int
	small, large Allocator
	alignment    int

	// construction-time capability views; nil when a branch lacks the capability
	smallAligned, largeAligned AlignedAllocator
	smallBulk, largeBulk       BulkFreer
}

var (
	_ Allocator        = (*Router)(nil)
	_ AlignedAllocator = (*Router)(nil)
	_ Expander         = (*Router)(nil)
	_ Reallocator      = (*Router)(nil)
	_ Owner            = (*Router)(nil)
	_ BulkFreer        = (*Router)(nil)
)

// NewRouter composes small and large under one threshold.
func NewRouter(threshold int, small, large Allocator) (*Router, error) {
	if threshold < 1 {
		return nil, ErrBadThreshold
	}
	r := &Router{threshold: threshold, small: small, large: large}
	r.alignment = small.Alignment()
	if a := large.Alignment(); a < r.alignment {
		r.alignment = a
	}
	if sa, ok := small.(AlignedAllocator); ok {
		if la, ok := large.(AlignedAllocator); ok {
			r.smallAligned, r.largeAligned = sa, la
		}
	}
	if sb, ok := small.(BulkFreer); ok {
		if lb, ok := large.(BulkFreer); ok {
			r.smallBulk, r.largeBulk = sb, lb
		}
	}
	return r, nil
}

// NewRouterTree folds k ascending thresholds and k+1 branch allocators into
// a balanced binary tree of routers, giving O(log k) dispatch depth. Branch
// i serves sizes in (thresholds[i-1], thresholds[i]].
func NewRouterTree(thresholds []int, branches []Allocator) (Allocator, error) {
	if len(branches) != len(thresholds)+1 || len(thresholds) == 0 {
		return nil, ErrBadTree
	}
	if !sort.IntsAreSorted(thresholds) {
		return nil, ErrBadTree
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] == thresholds[i-1] {
			return nil, ErrBadTree
		}
	}
	return buildTree(thresholds, branches)
}

func buildTree(thresholds []int, branches []Allocator) (Allocator, error) {
	if len(thresholds) == 0 {
		return branches[0], nil
	}
	mid := len(thresholds) / 2
	small, err := buildTree(thresholds[:mid], branches[:mid+1])
	if err != nil {
		return nil, err
	}
	large, err := buildTree(thresholds[mid+1:], branches[mid+1:])
	if err != nil {
		return nil, err
	}
	return NewRouter(thresholds[mid], small, large)
}

// side picks the branch serving size n.
func (r *Router) side(n int) Allocator {
	if n <= r.threshold {
		return r.small
	}
	return r.large
}

// Alignment implements Allocator: the weaker of the two branches.
func (r *Router) Alignment() int {
	return r.alignment
}

// GoodSize implements Allocator.
func (r *Router) GoodSize(n int) int {
	if n <= 0 {
		return 0
	}
	return r.side(n).GoodSize(n)
}

// Alloc implements Allocator.
func (r *Router) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	return r.side(n).Alloc(n)
}

// AllocAligned forwards when both branches can place aligned blocks.
func (r *Router) AllocAligned(n, a int) []byte {
	if n <= 0 || r.smallAligned == nil {
		return nil
	}
	if n <= r.threshold {
		return r.smallAligned.AllocAligned(n, a)
	}
	return r.largeAligned.AllocAligned(n, a)
}

// Free implements Allocator, routing by the block's length.
func (r *Router) Free(blk []byte) bool {
	if len(blk) == 0 {
		return true
	}
	return r.side(len(blk)).Free(blk)
}

// Expand implements Expander. Growth whose result lands on the other side
// of the threshold cannot stay in place and fails.
func (r *Router) Expand(blk []byte, delta int) ([]byte, bool) {
	if delta < 0 {
		return nil, false
	}
	if delta == 0 {
		return blk, true
	}
	n := len(blk)
	if n == 0 {
		nb := r.Alloc(delta)
		return nb, nb != nil
	}
	if (n <= r.threshold) != (n+delta <= r.threshold) {
		return nil, false
	}
	ex, ok := r.side(n).(Expander)
	if !ok {
		return nil, false
	}
	return ex.Expand(blk, delta)
}

// Realloc implements Reallocator. When old and new sizes straddle the
// threshold the block moves between branches via allocate-copy-free across
// the router; in-place behavior is never assumed across the boundary.
func (r *Router) Realloc(blk []byte, n int) ([]byte, bool) {
	if len(blk) == 0 {
		nb := r.Alloc(n)
		return nb, nb != nil || n <= 0
	}
	if n <= 0 {
		ok := r.Free(blk)
		return nil, ok
	}
	if (len(blk) <= r.threshold) == (n <= r.threshold) {
		return Realloc(r.side(n), blk, n)
	}
	return moveRealloc(r, blk, n)
}

// Owns implements Owner. The branch is picked by length; a branch that
// cannot answer yields OwnsUnknown, never a false yes.
func (r *Router) Owns(blk []byte) Ownership {
	if len(blk) == 0 {
		return OwnsNo
	}
	if ow, ok := r.side(len(blk)).(Owner); ok {
		return ow.Owns(blk)
	}
	return OwnsUnknown
}

// FreeAll implements BulkFreer when both branches do.
func (r *Router) FreeAll() bool {
	if r.smallBulk == nil {
		return false
	}
	return r.smallBulk.FreeAll() && r.largeBulk.FreeAll()
}
