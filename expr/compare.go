package expr

import (
	"cmp"

	"github.com/cottand/boolex/util"
)

// Comparator orders siblings of an And/Or node
type Comparator[K cmp.Ordered] func(a, b Expr[K]) int

// compareItem is either a pair of subtrees still to compare or, when x is nil,
// a decided child-count comparison to fall back on once all shared children are equal
type compareItem[K cmp.Ordered] struct {
	x, y   Expr[K]
	length int
}

// Compare is the canonical order: node kind first (literal, variable, not, and, or),
// then payload (false before true, keys by cmp.Compare), then children
// lexicographically, then child count.
// It is a pure function of content and returns 0 only for structurally identical trees.
func Compare[K cmp.Ordered](a, b Expr[K]) int {
	if a == b || a.Digest() == b.Digest() {
		return 0
	}
	stack := util.NewStack[compareItem[K]](8)
	stack.Push(compareItem[K]{x: a, y: b})

	for {
		item, ok := stack.Pop()
		if !ok {
			return 0
		}
		if item.x == nil {
			if item.length != 0 {
				return item.length
			}
			continue
		}
		x, y := item.x, item.y
		if x == y || x.Digest() == y.Digest() {
			continue
		}
		if c := cmp.Compare(x.Kind(), y.Kind()); c != 0 {
			return c
		}
		switch x := x.(type) {
		case *Literal[K]:
			return compareBool(x.Value, y.(*Literal[K]).Value)
		case *Variable[K]:
			if c := cmp.Compare(x.Key, y.(*Variable[K]).Key); c != 0 {
				return c
			}
			// keys that compare equal but format differently, e.g. -0 and +0
			return cmp.Compare(x.Digest().Uint64(), y.Digest().Uint64())
		case *Not[K], *And[K], *Or[K]:
			xs, ys := x.Children(), y.Children()
			stack.Push(compareItem[K]{length: cmp.Compare(len(xs), len(ys))})
			for i := min(len(xs), len(ys)) - 1; i >= 0; i-- {
				stack.Push(compareItem[K]{x: xs[i], y: ys[i]})
			}
		}
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
