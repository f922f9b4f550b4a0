package alloc

import "sync"

var (
	defaultOnce sync.Once
	defaultGP   *GeneralPurpose
)

// Default returns the process-wide GeneralPurpose allocator, materialized
// on first use and never torn down. Prefer passing an allocator explicitly
// at API boundaries; Default exists for code paths that cannot thread one
// through.
func Default() *GeneralPurpose {
	defaultOnce.Do(func() {
		gp, err := NewGeneralPurpose()
		if err != nil {
			// The heap-backed composition has no failing construction path;
			// reaching this means a bug in the size-class table.
			panic(err)
		}
		defaultGP = gp
	})
	return defaultGP
}
