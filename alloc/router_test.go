package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoBump builds a router with a bump region on each side so tests can tell
// the branches apart by address.
func twoBump(t *testing.T, threshold, spanSize int) (*Router, *Bump, *Bump) {
	t.Helper()
	small, err := NewBumpOn(alignedBuf(t, spanSize, 8))
	require.NoError(t, err)
	large, err := NewBumpOn(alignedBuf(t, spanSize, 8))
	require.NoError(t, err)
	r, err := NewRouter(threshold, small, large)
	require.NoError(t, err)
	return r, small, large
}

func TestRouter_ThresholdRouting(t *testing.T) {
	r, small, large := twoBump(t, 512, 4096)

	b500 := r.Alloc(500)
	require.NotNil(t, b500)
	assert.Equal(t, OwnsYes, small.Owns(b500), "500 <= 512 goes small")

	b512 := r.Alloc(512)
	require.NotNil(t, b512)
	assert.Equal(t, OwnsYes, small.Owns(b512), "threshold itself is small")

	b513 := r.Alloc(513)
	require.NotNil(t, b513)
	assert.Equal(t, OwnsYes, large.Owns(b513), "513 > 512 goes large")

	// Free routes by length back to the branch that served the block.
	assert.True(t, r.Free(b513))
	assert.True(t, r.Free(b512))
	assert.Equal(t, OwnsNo, large.Owns(b500))
}

func TestRouter_Basics(t *testing.T) {
	r, _, _ := twoBump(t, 512, 4096)

	assert.Nil(t, r.Alloc(0))
	assert.Nil(t, r.Alloc(-1))
	assert.Zero(t, r.GoodSize(0))
	assert.True(t, r.Free(nil))
	assert.Equal(t, OwnsNo, r.Owns(nil))
	assert.Equal(t, 8, r.Alignment())

	// GoodSize follows the serving branch.
	assert.Equal(t, 512, r.GoodSize(509))
	assert.Equal(t, 520, r.GoodSize(513))
}

func TestRouter_BadThreshold(t *testing.T) {
	_, err := NewRouter(0, NewHeap(), NewHeap())
	assert.ErrorIs(t, err, ErrBadThreshold)
	_, err = NewRouter(-5, NewHeap(), NewHeap())
	assert.ErrorIs(t, err, ErrBadThreshold)
}

func TestRouter_AllocAligned(t *testing.T) {
	r, small, large := twoBump(t, 512, 8192)

	b := r.AllocAligned(100, 256)
	require.NotNil(t, b)
	assert.Zero(t, base(b)%256)
	assert.Equal(t, OwnsYes, small.Owns(b))

	b = r.AllocAligned(600, 256)
	require.NotNil(t, b)
	assert.Zero(t, base(b)%256)
	assert.Equal(t, OwnsYes, large.Owns(b))
}

// TestRouter_AlignedNeedsBothBranches: the capability disappears when either
// branch lacks it.
func TestRouter_AlignedNeedsBothBranches(t *testing.T) {
	small, err := NewBumpOn(alignedBuf(t, 1024, 8))
	require.NoError(t, err)
	r, err := NewRouter(512, small, NewHeap())
	require.NoError(t, err)

	assert.Nil(t, r.AllocAligned(100, 64))
	assert.False(t, r.FreeAll())
}

func TestRouter_ExpandWithinSide(t *testing.T) {
	r, _, _ := twoBump(t, 512, 4096)

	blk := r.Alloc(100)
	require.NotNil(t, blk)

	grown, ok := r.Expand(blk, 50)
	require.True(t, ok)
	assert.Len(t, grown, 150)

	// 150 + 400 = 550 crosses the threshold: in-place growth is impossible.
	_, ok = r.Expand(grown, 400)
	assert.False(t, ok)

	// Growing the null block is a plain allocation.
	nb, ok := r.Expand(nil, 64)
	require.True(t, ok)
	assert.Len(t, nb, 64)
}

// TestRouter_StraddlingRealloc: a resize across the threshold moves the
// block to the other branch and keeps its bytes.
func TestRouter_StraddlingRealloc(t *testing.T) {
	r, small, large := twoBump(t, 512, 4096)

	blk := r.Alloc(400)
	require.NotNil(t, blk)
	fillPattern(blk, 7)
	require.Equal(t, OwnsYes, small.Owns(blk))

	nb, ok := r.Realloc(blk, 700)
	require.True(t, ok)
	require.Len(t, nb, 700)
	assert.Equal(t, OwnsYes, large.Owns(nb))
	assert.True(t, checkPattern(nb[:400], 7))

	// And back down, truncating.
	nb2, ok := r.Realloc(nb, 300)
	require.True(t, ok)
	require.Len(t, nb2, 300)
	assert.Equal(t, OwnsYes, small.Owns(nb2))
	assert.True(t, checkPattern(nb2, 7))

	// Resize to zero frees through the router.
	nb3, ok := r.Realloc(nb2, 0)
	assert.True(t, ok)
	assert.Nil(t, nb3)
}

func TestRouter_FreeAll(t *testing.T) {
	r, small, large := twoBump(t, 512, 4096)
	r.Alloc(100)
	r.Alloc(1000)
	assert.True(t, r.FreeAll())
	assert.Equal(t, small.Capacity(), small.Available())
	assert.Equal(t, large.Capacity(), large.Available())
}

func TestRouterTree_Dispatch(t *testing.T) {
	spans := make([]*Bump, 4)
	branches := make([]Allocator, 4)
	for i := range spans {
		b, err := NewBumpOn(alignedBuf(t, 4096, 8))
		require.NoError(t, err)
		spans[i] = b
		branches[i] = b
	}
	tree, err := NewRouterTree([]int{64, 256, 1024}, branches)
	require.NoError(t, err)

	cases := []struct{ n, branch int }{
		{1, 0}, {64, 0}, {65, 1}, {256, 1}, {257, 2}, {1024, 2}, {1025, 3}, {4000, 3},
	}
	for _, c := range cases {
		blk := tree.Alloc(c.n)
		require.NotNil(t, blk, "Alloc(%d)", c.n)
		assert.Equal(t, OwnsYes, spans[c.branch].Owns(blk),
			"Alloc(%d) must land in branch %d", c.n, c.branch)
		assert.True(t, tree.Free(blk))
	}

	// The whole tree keeps the capability set of its leaves.
	_, ok := tree.(AlignedAllocator)
	assert.True(t, ok)
	bf, ok := tree.(BulkFreer)
	require.True(t, ok)
	assert.True(t, bf.FreeAll())
}

func TestRouterTree_BadShapes(t *testing.T) {
	mk := func(n int) []Allocator {
		out := make([]Allocator, n)
		for i := range out {
			out[i] = NewHeap()
		}
		return out
	}

	_, err := NewRouterTree(nil, mk(1))
	assert.ErrorIs(t, err, ErrBadTree)
	_, err = NewRouterTree([]int{64, 256}, mk(2))
	assert.ErrorIs(t, err, ErrBadTree)
	_, err = NewRouterTree([]int{256, 64}, mk(3))
	assert.ErrorIs(t, err, ErrBadTree)
	_, err = NewRouterTree([]int{64, 64}, mk(3))
	assert.ErrorIs(t, err, ErrBadTree)
}

// TestRouterTree_SingleThreshold degenerates to one router.
func TestRouterTree_SingleThreshold(t *testing.T) {
	tree, err := NewRouterTree([]int{128}, []Allocator{NewHeap(), NewHeap()})
	require.NoError(t, err)
	blk := tree.Alloc(64)
	require.Len(t, blk, 64)
	assert.True(t, tree.Free(blk))
}
