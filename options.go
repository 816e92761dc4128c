package autoschema

// DefaultMaxDepth is the nesting limit applied when Options.MaxDepth is zero.
const DefaultMaxDepth = 50

// Options controls validation and compilation.
type Options struct {
	// MaxDepth bounds schema nesting (properties, items and anyOf members
	// each add a level). Zero selects DefaultMaxDepth; negative disables the
	// guard.
	MaxDepth int
	// StrictTypes makes the compiler reject unrecognized type names instead
	// of falling back to text.
	StrictTypes bool
}

func pickOptions(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[0]
}

func (o Options) maxDepth() int {
	if o.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o Options) tooDeep(at location) bool {
	max := o.maxDepth()
	return max > 0 && at.depth > max
}
