package alloc

import "errors"

var (
	// ErrBadAlignment indicates an alignment that is not a positive power of two.
	ErrBadAlignment = errors.New("alloc: alignment must be a positive power of two")

	// ErrBadSpan indicates a span too small to hold a single aligned block.
	ErrBadSpan = errors.New("alloc: span too small")

	// ErrBadBucketConfig indicates bucket bounds that do not divide evenly
	// into step-sized classes.
	ErrBadBucketConfig = errors.New("alloc: (max-(min-1)) must be a positive multiple of step")

	// ErrBadThreshold indicates a non-positive router threshold.
	ErrBadThreshold = errors.New("alloc: threshold must be positive")

	// ErrBadTree indicates a router tree with unsorted thresholds or a
	// branch count that does not match the threshold count.
	ErrBadTree = errors.New("alloc: need ascending thresholds and len(thresholds)+1 branches")

	// ErrBadRange indicates an empty or inverted freelist size range.
	ErrBadRange = errors.New("alloc: need 0 < min <= max")

	// ErrNilFunc indicates a native adapter built without its mandatory
	// allocate and free functions.
	ErrNilFunc = errors.New("alloc: allocate and free functions are required")
)
