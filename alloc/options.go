package alloc

import "github.com/memkit/memkit/internal/align"

// DefaultAlignment is the block alignment bump regions guarantee unless
// configured otherwise.
const DefaultAlignment = 8

// spanConfig collects the construction-time knobs shared by Bump and
// SharedBump.
type spanConfig struct {
	alignment int
	down      bool
}

// Option configures a bump region at construction.
type Option func(*spanConfig)

// WithAlignment sets the region's block alignment. It must be a positive
// power of two; the default is DefaultAlignment.
func WithAlignment(a int) Option {
	return func(c *spanConfig) { c.alignment = a }
}

// GrowDown makes the region allocate from the end of its span toward the
// beginning. The growth direction is fixed for the region's lifetime.
func GrowDown() Option {
	return func(c *spanConfig) { c.down = true }
}

func buildSpanConfig(opts []Option) (spanConfig, error) {
	c := spanConfig{alignment: DefaultAlignment}
	for _, opt := range opts {
		opt(&c)
	}
	if !align.IsPow2(c.alignment) {
		return c, ErrBadAlignment
	}
	return c, nil
}
