package align

// Alignment arithmetic shared by the allocator building blocks.
// All power-of-two helpers use mask operations; Up and Down are hot-path
// functions and must stay branch-free.

// IsPow2 reports whether a is a positive power of two.
func IsPow2(a int) bool {
	return a > 0 && a&(a-1) == 0
}

// Up returns n rounded up to the next multiple of a.
// a must be a positive power of two.
//
// Example:
//
//	Up(1, 8)  = 8
//	Up(8, 8)  = 8
//	Up(9, 8)  = 16
func Up(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// Down returns n rounded down to the previous multiple of a.
// a must be a positive power of two.
func Down(n, a int) int {
	return n &^ (a - 1)
}

// UpAddr returns address p rounded up to the next multiple of a.
// a must be a positive power of two.
func UpAddr(p uintptr, a int) uintptr {
	mask := uintptr(a) - 1
	return (p + mask) &^ mask
}

// DownAddr returns address p rounded down to the previous multiple of a.
// a must be a positive power of two.
func DownAddr(p uintptr, a int) uintptr {
	return p &^ (uintptr(a) - 1)
}

// UpMultiple returns n rounded up to the next multiple of step.
// step may be any positive value, not only powers of two.
func UpMultiple(n, step int) int {
	rem := n % step
	if rem == 0 {
		return n
	}
	return n + step - rem
}

// Padding returns the number of bytes needed to advance address p to
// alignment a. a must be a positive power of two.
func Padding(p uintptr, a int) int {
	return int(UpAddr(p, a) - p)
}
