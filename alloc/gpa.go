package alloc

import (
	"sync"

	"github.com/memkit/memkit/internal/align"
)

// Size-class table of the general-purpose composition. Sizes up to tinyMax
// hit a single freelist; up to bucketMax they route through bucket
// allocators with widening steps; up to regionBlockMax they come from
// dedicated bump regions; anything larger goes straight to the native
// allocator.
const (
	gpTinyMax    = 8
	gpRegionSpan = 4072 * 1024 // span of one medium-large bump region
)

// gpBuckets describes the 9..3584 byte range: [min, max, step] per bucket.
var gpBuckets = [][3]int{
	{1, 128, 16},
	{129, 256, 32},
	{257, 512, 64},
	{513, 1024, 128},
	{1025, 2048, 256},
	{2049, 3584, 512},
}

// GeneralPurpose is the fixed composition the process-wide default uses: a
// router tree over freelist-backed buckets for small and medium sizes,
// dedicated pooled bump regions for medium-large blocks, and the native
// allocator for everything huge. It is purely an application of the building
// blocks in this package.
//
// A single mutex guards the composition; the sequential components inside
// need external locking, and the default allocator must be safe to share
// between goroutines.
type GeneralPurpose struct {
	mu      sync.Mutex
	root    Allocator
	regions *regionList
}

var (
	_ Allocator   = (*GeneralPurpose)(nil)
	_ Reallocator = (*GeneralPurpose)(nil)
)

// NewGeneralPurpose builds the composition over the Go heap.
func NewGeneralPurpose() (*GeneralPurpose, error) {
	return NewGeneralPurposeOn(NewHeap())
}

// NewGeneralPurposeOn builds the composition over an arbitrary native
// backing allocator.
func NewGeneralPurposeOn(backing Allocator) (*GeneralPurpose, error) {
	tiny, err := NewFreelist(backing, 1, gpTinyMax)
	if err != nil {
		return nil, err
	}
	regions := newRegionList()

	thresholds := []int{gpTinyMax}
	branches := []Allocator{tiny}
	for _, bk := range gpBuckets {
		min, max, step := bk[0], bk[1], bk[2]
		bucket, err := NewBucket(min, max, step, func(classSize int) (Allocator, error) {
			return NewFreelist(backing, classSize-step+1, classSize)
		})
		if err != nil {
			return nil, err
		}
		thresholds = append(thresholds, max)
		branches = append(branches, bucket)
	}
	thresholds = append(thresholds, gpRegionSpan)
	branches = append(branches, regions, backing)

	root, err := NewRouterTree(thresholds, branches)
	if err != nil {
		return nil, err
	}
	return &GeneralPurpose{root: root, regions: regions}, nil
}

// Alignment implements Allocator.
func (g *GeneralPurpose) Alignment() int {
	return g.root.Alignment()
}

// GoodSize implements Allocator.
func (g *GeneralPurpose) GoodSize(n int) int {
	return g.root.GoodSize(n)
}

// Alloc implements Allocator. Alloc(0) is nil with no side effects; any
// positive size succeeds while the backing holds out.
func (g *GeneralPurpose) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.root.Alloc(n)
}

// Free implements Allocator. Every block the composition issued is
// independently freeable, whichever leaf served it.
func (g *GeneralPurpose) Free(blk []byte) bool {
	if len(blk) == 0 {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.root.Free(blk)
}

// Realloc implements Reallocator through the router tree, so resizes that
// cross a size-class boundary move the block rather than assuming in-place
// behavior.
func (g *GeneralPurpose) Realloc(blk []byte, n int) ([]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Realloc(g.root, blk, n)
}

// Owns reports whether the composition can prove it issued blk. The heap
// backing keeps its own books, so the usual answer for small blocks is
// OwnsUnknown; medium-large blocks resolve through the region pool.
func (g *GeneralPurpose) Owns(blk []byte) Ownership {
	g.mu.Lock()
	defer g.mu.Unlock()
	if ow, ok := g.root.(Owner); ok {
		return ow.Owns(blk)
	}
	return OwnsUnknown
}

// Release tears the composition down, returning the region spans to the
// system. Only tests release a GeneralPurpose; the process default is never
// torn down.
func (g *GeneralPurpose) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.regions.release()
}

// regionList serves medium-large blocks, one dedicated bump region per live
// block. Regions are gpRegionSpan-sized (or block-sized when a block is
// bigger), so freeing any block rewinds its whole region no matter the
// allocation order. Emptied regions stay pooled; spans go back to the system
// only once at least two sit empty, keeping one warm for the next burst.
type regionList struct {
	regions []*Bump
}

var (
	_ Allocator = (*regionList)(nil)
	_ Owner     = (*regionList)(nil)
	_ BulkFreer = (*regionList)(nil)
)

func newRegionList() *regionList {
	return &regionList{}
}

func (rl *regionList) Alignment() int {
	return DefaultAlignment
}

func (rl *regionList) GoodSize(n int) int {
	if n <= 0 {
		return 0
	}
	return align.Up(n, DefaultAlignment)
}

func (rl *regionList) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	for _, r := range rl.regions {
		if r.Available() != r.Capacity() || r.Capacity() < n {
			continue
		}
		if blk := r.Alloc(n); blk != nil {
			return blk
		}
	}
	size := gpRegionSpan
	if n > size {
		size = n
	}
	r, err := NewBump(size)
	if err != nil {
		return nil
	}
	rl.regions = append(rl.regions, r)
	return r.Alloc(n)
}

// Free rewinds the owning region. Each region backs exactly one block, so
// the rewind reclaims everything the block consumed and the region goes back
// into the pool.
func (rl *regionList) Free(blk []byte) bool {
	for _, r := range rl.regions {
		if r.Owns(blk) == OwnsYes {
			r.FreeAll()
			rl.trim()
			return true
		}
	}
	return false
}

// trim releases surplus empty regions, keeping one around.
func (rl *regionList) trim() {
	empty := 0
	for _, r := range rl.regions {
		if r.Available() == r.Capacity() {
			empty++
		}
	}
	if empty < 2 {
		return
	}
	kept := rl.regions[:0]
	for _, r := range rl.regions {
		if empty > 1 && r.Available() == r.Capacity() {
			r.Release()
			empty--
			continue
		}
		kept = append(kept, r)
	}
	rl.regions = kept
}

func (rl *regionList) Owns(blk []byte) Ownership {
	for _, r := range rl.regions {
		if r.Owns(blk) == OwnsYes {
			return OwnsYes
		}
	}
	return OwnsNo
}

func (rl *regionList) FreeAll() bool {
	for _, r := range rl.regions {
		r.FreeAll()
	}
	rl.trim()
	return true
}

func (rl *regionList) release() error {
	var first error
	for _, r := range rl.regions {
		if err := r.Release(); err != nil && first == nil {
			first = err
		}
	}
	rl.regions = nil
	return first
}
