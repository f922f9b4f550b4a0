package alloc

import "unsafe"

// A block is a plain byte slice: the slice's base pointer and length are the
// allocation's identity. A nil or empty slice is the null block. Blocks carry
// no embedded metadata; composites re-derive every routing decision from the
// block's length, so the slice handed to Free, Expand or Realloc must have
// exactly the length that Alloc returned. Passing a block with any other
// length is undefined behavior.

// Ownership is the tri-state answer to Owner.Owns. Unknown is permitted when
// a cheap determination is impossible; an allocator must never answer Yes
// for a block it did not issue.
type Ownership uint8

const (
	OwnsUnknown Ownership = iota
	OwnsNo
	OwnsYes
)

func (o Ownership) String() string {
	switch o {
	case OwnsYes:
		return "yes"
	case OwnsNo:
		return "no"
	default:
		return "unknown"
	}
}

// base returns the starting address of a block. The null block has base 0.
func base(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// spanContains reports whether block b lies inside span.
func spanContains(span, b []byte) bool {
	if len(b) == 0 || len(span) == 0 {
		return false
	}
	lo, hi := base(span), base(span)+uintptr(len(span))
	p := base(b)
	return p >= lo && p+uintptr(len(b)) <= hi
}
