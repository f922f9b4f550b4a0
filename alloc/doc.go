// Package alloc provides composable memory allocation building blocks: small
// allocator components that nest and combine into a custom general-purpose
// allocator in the style of size-class-segregated (jemalloc-like) designs.
//
// # Blocks
//
// A block is a plain []byte; nil is the null block. Blocks carry no embedded
// metadata - every routing decision is re-derived from the block's length -
// so the slice passed to Free, Expand or Realloc must have exactly the
// length the matching Alloc returned. Violating that is undefined behavior;
// the zero-metadata design is what keeps dispatch free of side tables.
//
// # Capability contract
//
// Allocator is the core interface (Alignment, GoodSize, Alloc, Free).
// Optional capabilities are separate interfaces: AlignedAllocator, Expander,
// Reallocator, BulkFreer, Owner. Leaves carry only the interfaces they truly
// implement, so a type assertion on a leaf is authoritative. Composites
// (Bucket, Router) declare the full optional method set and discover at
// construction which capabilities their children actually have; asserting on
// a composite therefore answers what the composition could forward, and a
// call whose children lack the capability fails with that capability's
// failure value. No operation panics on exhaustion or misuse: failure is
// always a value (nil block, false, or OwnsUnknown).
//
// # Building blocks
//
// Leaves:
//
//   - Bump: linear allocation over one contiguous span, growing from either
//     end; owned, borrowed and lazily reserved span flavors.
//   - SharedBump: lock-free twin of Bump; fetch-and-add on the common path,
//     CAS retry loops where the advance depends on the value read.
//   - Native: adapter over malloc-shaped allocate/free/resize functions;
//     heap and page-mapped backends included.
//
// Composites:
//
//   - Bucket: splits a size interval into fixed-width classes, one
//     independent child allocator per class.
//   - Router: threshold dispatch between two branches; NewRouterTree folds
//     many thresholds into a balanced tree.
//   - Freelist: unbounded LIFO recycling in front of a parent allocator.
//
// The fixed composition of all of the above is GeneralPurpose, and Default
// exposes one process-wide instance.
//
// # Composition example
//
//	small, _ := alloc.NewBucket(1, 128, 16, func(classSize int) (alloc.Allocator, error) {
//		return alloc.NewFreelist(alloc.NewHeap(), classSize-15, classSize)
//	})
//	large, _ := alloc.NewBump(1 << 20)
//	a, _ := alloc.NewRouter(128, small, large)
//
//	b := a.Alloc(100) // served by the 97..112 class
//	a.Free(b)
//
// # Concurrency
//
// Two families coexist. The sequential family (Bump, Bucket, Router,
// Freelist, Native compositions) does no internal locking and is meant for
// single-goroutine or externally synchronized use. SharedBump is lock-free:
// every operation is a bounded number of atomic instructions or a CAS spin
// that retries only under active contention, so one goroutine may allocate
// while another frees. A concurrent composite must be built from
// concurrency-safe children; putting a sequential leaf under one is caller
// error. GeneralPurpose guards its sequential interior with a mutex so the
// process default is safe to share.
package alloc
