package normalform

import (
	"cmp"

	"github.com/cottand/boolex/expr"
)

// IsNNF reports whether every negation in e applies directly to a variable
func IsNNF[K cmp.Ordered](e expr.Expr[K]) bool {
	for n := range expr.Walk(e) {
		if not, ok := n.(*expr.Not[K]); ok && not.Child().Kind() != expr.KindVariable {
			return false
		}
	}
	return true
}

// IsDNF reports whether e is a disjunction of conjunctions of literals.
// A lone conjunction, literal or constant counts.
func IsDNF[K cmp.Ordered](e expr.Expr[K]) bool {
	return hasShape(e, expr.KindAnd, expr.KindOr)
}

// IsCNF reports whether e is a conjunction of disjunctions of literals.
// A lone disjunction, literal or constant counts.
func IsCNF[K cmp.Ordered](e expr.Expr[K]) bool {
	return hasShape(e, expr.KindOr, expr.KindAnd)
}

// hasShape checks e is an NNF where no clause node has an outer node below it
func hasShape[K cmp.Ordered](e expr.Expr[K], clause, outer expr.Kind) bool {
	if !IsNNF(e) {
		return false
	}
	for n := range expr.Walk(e) {
		if n.Kind() != clause {
			continue
		}
		for _, c := range n.Children() {
			if c.Kind() == outer || c.Kind() == expr.KindLiteral {
				return false
			}
		}
	}
	return true
}
