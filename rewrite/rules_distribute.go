package rewrite

import (
	"cmp"
	"slices"

	"github.com/cottand/boolex/expr"
)

// DistributeAndOverOr expands the first Or under an And:
// a && (b || c) becomes (a && b) || (a && c). Driven to a fixed point it yields DNF.
func DistributeAndOverOr[K cmp.Ordered]() Rule[K] {
	return NewRule(RuleDistributeAndOverOr, func(e expr.Expr[K], f expr.Factory[K]) (expr.Expr[K], bool) {
		if e.Kind() != expr.KindAnd {
			return nil, false
		}
		return distribute(e.Children(), expr.KindOr, f.And, f.Or)
	})
}

// DistributeOrOverAnd expands the first And under an Or:
// a || (b && c) becomes (a || b) && (a || c). Driven to a fixed point it yields CNF.
func DistributeOrOverAnd[K cmp.Ordered]() Rule[K] {
	return NewRule(RuleDistributeOrOverAnd, func(e expr.Expr[K], f expr.Factory[K]) (expr.Expr[K], bool) {
		if e.Kind() != expr.KindOr {
			return nil, false
		}
		return distribute(e.Children(), expr.KindAnd, f.Or, f.And)
	})
}

// distribute multiplies out the first child of kind inner: outer(rest, inner(x1..xn))
// becomes inner(outer(rest, x1), ..., outer(rest, xn)).
func distribute[K cmp.Ordered](children []expr.Expr[K], inner expr.Kind, outer, join func(...expr.Expr[K]) expr.Expr[K]) (expr.Expr[K], bool) {
	at := slices.IndexFunc(children, func(c expr.Expr[K]) bool { return c.Kind() == inner })
	if at < 0 {
		return nil, false
	}
	rest := slices.Delete(slices.Clone(children), at, at+1)
	terms := children[at].Children()
	expanded := make([]expr.Expr[K], len(terms))
	for i, t := range terms {
		expanded[i] = outer(append(slices.Clip(rest), t)...)
	}
	return join(expanded...), true
}
