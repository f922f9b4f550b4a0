// Package mem reserves anonymous memory spans for allocators that own
// their backing storage. On unix platforms spans come straight from the
// virtual memory subsystem; elsewhere they fall back to the Go heap.
//
// Reserve sizes are rounded up to the platform page size, so callers get
// page-aligned spans and may rely on the full rounded capacity.
package mem

// PageSize returns the reservation granularity in bytes.
func PageSize() int {
	return pageSize()
}

// Reserve returns a zeroed span of at least size bytes. The returned slice
// length is the page-rounded reservation size. Returns an error when the
// platform refuses the reservation.
func Reserve(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errBadSize
	}
	return reserve(size)
}

// Release returns a span obtained from Reserve. Callers must pass the full
// span; releasing a subslice is undefined. Release of a nil span is a no-op.
func Release(span []byte) error {
	if span == nil {
		return nil
	}
	return release(span)
}
