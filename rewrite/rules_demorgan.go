package rewrite

import (
	"cmp"

	"github.com/cottand/boolex/expr"
)

const (
	RuleDeMorgan             = "de-morgan"
	RuleDistributeAndOverOr  = "distribute-and-over-or"
	RuleDistributeOrOverAnd  = "distribute-or-over-and"
	RuleComplement           = "complement"
	RuleIdempotence          = "idempotence"
	RuleAbsorption           = "absorption"
	RuleComplementAbsorption = "complement-absorption"
)

// DeMorgan pushes a negation one level into an And or Or:
// !(a && b) becomes (!a || !b) and !(a || b) becomes (!a && !b).
func DeMorgan[K cmp.Ordered]() Rule[K] {
	return NewRule(RuleDeMorgan, func(e expr.Expr[K], f expr.Factory[K]) (expr.Expr[K], bool) {
		not, ok := e.(*expr.Not[K])
		if !ok {
			return nil, false
		}
		inner := not.Child()
		children := inner.Children()
		negated := make([]expr.Expr[K], len(children))
		for i, c := range children {
			negated[i] = f.Not(c)
		}
		switch inner.(type) {
		case *expr.And[K]:
			return f.Or(negated...), true
		case *expr.Or[K]:
			return f.And(negated...), true
		default:
			return nil, false
		}
	})
}
