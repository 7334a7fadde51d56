// Package satcheck decides equivalence of two formulas with a SAT solver, for tests whose
// formulas have too many variables for a truth table.
package satcheck

import (
	"cmp"

	"github.com/cottand/boolex/expr"
	"github.com/cottand/boolex/util"
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// circuit translates formulas into one shared gini circuit
type circuit[K cmp.Ordered] struct {
	c    *logic.C
	vars map[K]z.Lit
}

func newCircuit[K cmp.Ordered]() *circuit[K] {
	return &circuit[K]{c: logic.NewC(), vars: make(map[K]z.Lit)}
}

func (b *circuit[K]) variable(k K) z.Lit {
	if lit, ok := b.vars[k]; ok {
		return lit
	}
	lit := b.c.Lit()
	b.vars[k] = lit
	return lit
}

type buildItem[K cmp.Ordered] struct {
	node     expr.Expr[K]
	expanded bool
}

// build returns the literal of e, post-order over an explicit stack
func (b *circuit[K]) build(e expr.Expr[K]) z.Lit {
	lits := util.NewStack[z.Lit](16)
	stack := util.NewStack[buildItem[K]](min(e.Depth(), 64))
	stack.Push(buildItem[K]{node: e})
	for {
		item, ok := stack.Pop()
		if !ok {
			lit, _ := lits.Pop()
			return lit
		}
		children := item.node.Children()
		if !item.expanded && len(children) > 0 {
			stack.Push(buildItem[K]{node: item.node, expanded: true})
			for _, c := range children {
				stack.Push(buildItem[K]{node: c})
			}
			continue
		}
		switch n := item.node.(type) {
		case *expr.Literal[K]:
			if n.Value {
				lits.Push(b.c.T)
			} else {
				lits.Push(b.c.F)
			}
		case *expr.Variable[K]:
			lits.Push(b.variable(n.Key))
		case *expr.Not[K]:
			child, _ := lits.Pop()
			lits.Push(child.Not())
		case *expr.And[K]:
			lits.Push(b.c.Ands(popN(lits, len(children))...))
		case *expr.Or[K]:
			lits.Push(b.c.Ors(popN(lits, len(children))...))
		}
	}
}

func popN(lits *util.Stack[z.Lit], n int) []z.Lit {
	out := make([]z.Lit, n)
	for i := range out {
		out[i], _ = lits.Pop()
	}
	return out
}

func (b *circuit[K]) satisfiable(lit z.Lit) bool {
	g := gini.New()
	b.c.ToCnf(g)
	g.Assume(lit)
	return g.Solve() == 1
}

// Equivalent reports whether a and b agree under every assignment, by checking that
// a xor b is unsatisfiable
func Equivalent[K cmp.Ordered](a, b expr.Expr[K]) bool {
	circuit := newCircuit[K]()
	miter := circuit.c.Xor(circuit.build(a), circuit.build(b))
	return !circuit.satisfiable(miter)
}

// Satisfiable reports whether some assignment makes e true
func Satisfiable[K cmp.Ordered](e expr.Expr[K]) bool {
	circuit := newCircuit[K]()
	return circuit.satisfiable(circuit.build(e))
}
