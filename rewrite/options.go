package rewrite

import (
	"cmp"
	"log/slog"

	"github.com/cottand/boolex/expr"
)

const DefaultMaxIterations = 1000

// Options tunes a single Apply call. The zero value is valid: canonical factory,
// no shared cache, DefaultMaxIterations and no size or step limit.
type Options[K cmp.Ordered] struct {
	// Factory builds every node the driver and its rules create.
	// Defaults to expr.Canonical.
	Factory expr.Factory[K]
	// Cache is shared across calls and goroutines. Without one, results are only
	// memoized for the duration of the call.
	Cache Cache[K]
	// MaxIterations bounds how many times the rules may change a single node before
	// Apply gives up with rwerr.NotConverged. Rewrites that keep nesting fresh changing
	// subtrees are bounded by MaxIterations plus the depth of the input.
	MaxIterations int
	// ExpansionLimit bounds the total number of rule firings of the call. 0 is unbounded.
	ExpansionLimit int
	// StepsUsed is the number of firings already spent against ExpansionLimit by
	// earlier calls sharing the same budget
	StepsUsed int
	// SizeLimit bounds the node count of any rule output. 0 is unbounded.
	SizeLimit int
	Logger    *slog.Logger
}

func (o Options[K]) withDefaults() Options[K] {
	if o.Factory == nil {
		o.Factory = expr.Canonical[K]{}
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Logger == nil {
		o.Logger = logger
	}
	return o
}
