package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBump_SequentialExhaustion fills a 256-byte, 1-aligned region with four
// 64-byte blocks and verifies the fifth request fails cleanly.
func TestBump_SequentialExhaustion(t *testing.T) {
	b, err := NewBumpOn(make([]byte, 256), WithAlignment(1))
	require.NoError(t, err)
	require.Equal(t, 256, b.Capacity())

	for i := 0; i < 4; i++ {
		blk := b.Alloc(64)
		require.NotNil(t, blk, "alloc %d should succeed", i)
		require.Len(t, blk, 64)
	}
	assert.Nil(t, b.Alloc(64), "fifth alloc must fail")
	assert.Zero(t, b.Available())
}

// TestBump_TailFree verifies the LIFO unwind discipline: only the most
// recent block reclaims space.
func TestBump_TailFree(t *testing.T) {
	b, err := NewBumpOn(alignedBuf(t, 256, 8))
	require.NoError(t, err)

	first := b.Alloc(32)
	second := b.Alloc(32)
	require.NotNil(t, first)
	require.NotNil(t, second)
	avail := b.Available()

	// Freeing the older block is refused and changes nothing.
	assert.False(t, b.Free(first))
	assert.Equal(t, avail, b.Available())

	// Freeing the tail block reclaims its 32 bytes.
	assert.True(t, b.Free(second))
	assert.Equal(t, avail+32, b.Available())

	// And now first is the tail.
	assert.True(t, b.Free(first))
	assert.Equal(t, b.Capacity(), b.Available())
}

func TestBump_FreeNull(t *testing.T) {
	b, err := NewBumpOn(make([]byte, 64), WithAlignment(1))
	require.NoError(t, err)
	assert.True(t, b.Free(nil))
}

// TestBump_FreeAllIdempotent verifies FreeAll twice equals FreeAll once.
func TestBump_FreeAllIdempotent(t *testing.T) {
	b, err := NewBumpOn(alignedBuf(t, 512, 8))
	require.NoError(t, err)

	b.Alloc(100)
	b.Alloc(200)
	require.NotEqual(t, b.Capacity(), b.Available())

	assert.True(t, b.FreeAll())
	assert.Equal(t, b.Capacity(), b.Available())
	assert.True(t, b.FreeAll())
	assert.Equal(t, b.Capacity(), b.Available())
}

// TestBump_GoodSize checks the rounding contract: at least n, monotonic,
// idempotent.
func TestBump_GoodSize(t *testing.T) {
	b, err := NewBumpOn(alignedBuf(t, 256, 8))
	require.NoError(t, err)

	assert.Zero(t, b.GoodSize(0))
	assert.Zero(t, b.GoodSize(-5))
	prev := 0
	for n := 1; n <= 128; n++ {
		gs := b.GoodSize(n)
		assert.GreaterOrEqual(t, gs, n)
		assert.GreaterOrEqual(t, gs, prev, "GoodSize must be monotonic")
		assert.Equal(t, gs, b.GoodSize(gs), "GoodSize must be idempotent")
		prev = gs
	}
}

// TestBump_UnroundedPrefix: the cursor advances by GoodSize but the caller
// sees exactly n bytes.
func TestBump_UnroundedPrefix(t *testing.T) {
	b, err := NewBumpOn(alignedBuf(t, 64, 8))
	require.NoError(t, err)

	blk := b.Alloc(5)
	require.Len(t, blk, 5)
	assert.Equal(t, 64-8, b.Available())
}

func TestBump_GrowDown(t *testing.T) {
	b, err := NewBumpOn(alignedBuf(t, 256, 8), GrowDown())
	require.NoError(t, err)

	first := b.Alloc(32)
	second := b.Alloc(32)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Less(t, base(second), base(first), "downward growth allocates at descending addresses")

	// LIFO unwind works from the bottom end too.
	avail := b.Available()
	assert.False(t, b.Free(first))
	assert.True(t, b.Free(second))
	assert.Equal(t, avail+32, b.Available())

	// Exhaustion.
	for b.Alloc(32) != nil {
	}
	assert.Nil(t, b.Alloc(32))
}

func TestBump_AllocAligned(t *testing.T) {
	b, err := NewBumpOn(alignedBuf(t, 1024, 8))
	require.NoError(t, err)

	b.Alloc(3) // push the cursor off any large boundary
	blk := b.AllocAligned(100, 64)
	require.NotNil(t, blk)
	assert.Zero(t, base(blk)%64, "block must start on a 64-byte boundary")
	require.Len(t, blk, 100)

	// Non-power-of-two alignment is refused.
	assert.Nil(t, b.AllocAligned(8, 3))
}

func TestBump_AllocAlignedGrowDown(t *testing.T) {
	b, err := NewBumpOn(alignedBuf(t, 1024, 8), GrowDown())
	require.NoError(t, err)

	b.Alloc(3)
	blk := b.AllocAligned(100, 64)
	require.NotNil(t, blk)
	assert.Zero(t, base(blk)%64)
}

func TestBump_Expand(t *testing.T) {
	b, err := NewBumpOn(alignedBuf(t, 256, 8))
	require.NoError(t, err)

	first := b.Alloc(32)
	fillPattern(first, 7)

	// Tail grows in place: same base, longer block, pattern intact.
	grown, ok := b.Expand(first, 32)
	require.True(t, ok)
	assert.Equal(t, base(first), base(grown))
	require.Len(t, grown, 64)
	assert.True(t, checkPattern(grown[:32], 7))

	// A block behind the tail cannot grow.
	second := b.Alloc(16)
	require.NotNil(t, second)
	_, ok = b.Expand(grown, 8)
	assert.False(t, ok)

	// The tail cannot grow past the span.
	_, ok = b.Expand(second, 1024)
	assert.False(t, ok)

	// Zero delta is a trivial success.
	same, ok := b.Expand(second, 0)
	assert.True(t, ok)
	assert.Equal(t, base(second), base(same))
}

func TestBump_Owns(t *testing.T) {
	bufA := alignedBuf(t, 128, 8)
	bufB := alignedBuf(t, 128, 8)
	a, err := NewBumpOn(bufA)
	require.NoError(t, err)
	b, err := NewBumpOn(bufB)
	require.NoError(t, err)

	blk := a.Alloc(16)
	assert.Equal(t, OwnsYes, a.Owns(blk))
	assert.Equal(t, OwnsNo, b.Owns(blk))
	assert.Equal(t, OwnsNo, a.Owns(nil))
}

// TestBump_Owned exercises the span-owning flavor end to end.
func TestBump_Owned(t *testing.T) {
	b, err := NewBump(4096)
	require.NoError(t, err)
	require.GreaterOrEqual(t, b.Capacity(), 4096)

	blk := b.Alloc(100)
	require.NotNil(t, blk)
	fillPattern(blk, 3)
	assert.True(t, checkPattern(blk, 3))

	require.NoError(t, b.Release())
	assert.Nil(t, b.Alloc(1), "a released region must refuse allocations")
	require.NoError(t, b.Release(), "double release is a no-op")
}

// TestBump_Lazy verifies the deferred-reservation flavor: nothing is
// reserved until the first allocation.
func TestBump_Lazy(t *testing.T) {
	b, err := NewLazyBump(4096)
	require.NoError(t, err)

	blk := b.Alloc(64)
	require.NotNil(t, blk)
	assert.Equal(t, OwnsYes, b.Owns(blk))
	assert.GreaterOrEqual(t, b.Capacity(), 4096)
	require.NoError(t, b.Release())
}

func TestBump_BadConfig(t *testing.T) {
	_, err := NewBumpOn(make([]byte, 64), WithAlignment(3))
	assert.ErrorIs(t, err, ErrBadAlignment)

	_, err = NewBumpOn(nil)
	assert.ErrorIs(t, err, ErrBadSpan)

	_, err = NewBump(0)
	assert.ErrorIs(t, err, ErrBadSpan)

	_, err = NewLazyBump(-1)
	assert.ErrorIs(t, err, ErrBadSpan)
}

func TestBump_AllocZeroOrNegative(t *testing.T) {
	b, err := NewBumpOn(make([]byte, 64), WithAlignment(1))
	require.NoError(t, err)
	assert.Nil(t, b.Alloc(0))
	assert.Nil(t, b.Alloc(-1))
	assert.Equal(t, 64, b.Available())
}
