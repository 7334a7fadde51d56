package rewrite

import (
	"cmp"
	"slices"

	"github.com/cottand/boolex/expr"
	"github.com/hashicorp/go-set/v3"
	xset "github.com/xtgo/set"
)

// Complement folds a conjunction holding both x and !x to false, and a disjunction
// holding both to true.
func Complement[K cmp.Ordered]() Rule[K] {
	return NewRule(RuleComplement, func(e expr.Expr[K], _ expr.Factory[K]) (expr.Expr[K], bool) {
		if !isNary(e) {
			return nil, false
		}
		children := e.Children()
		hashes := set.New[uint64](len(children))
		for _, c := range children {
			hashes.Insert(c.Hash())
		}
		for _, c := range children {
			not, ok := c.(*expr.Not[K])
			if !ok || !hashes.Contains(not.Child().Hash()) {
				continue
			}
			if slices.ContainsFunc(children, equalTo(not.Child())) {
				return expr.NewLiteral[K](e.Kind() == expr.KindOr), true
			}
		}
		return nil, false
	})
}

// Idempotence drops repeated children: a && a && b becomes a && b
func Idempotence[K cmp.Ordered]() Rule[K] {
	return NewRule(RuleIdempotence, func(e expr.Expr[K], f expr.Factory[K]) (expr.Expr[K], bool) {
		if !isNary(e) {
			return nil, false
		}
		unique := uniq(e.Children())
		if len(unique) == len(e.Children()) {
			return nil, false
		}
		return join(f, e.Kind(), unique), true
	})
}

// Absorption drops a child that is implied by a sibling:
// a && (a || b) becomes a, and (a || b) && (a || b || c) becomes a || b.
// Dually for disjunctions.
func Absorption[K cmp.Ordered]() Rule[K] {
	return NewRule(RuleAbsorption, func(e expr.Expr[K], f expr.Factory[K]) (expr.Expr[K], bool) {
		if !isNary(e) {
			return nil, false
		}
		inner := dual(e.Kind())
		children := e.Children()
		kept := make([]expr.Expr[K], 0, len(children))
		absorbed := false
	next:
		for i, c := range children {
			if c.Kind() != inner {
				kept = append(kept, c)
				continue
			}
			for j, by := range children {
				if i == j || (expr.Equal(by, c) && j > i) {
					continue
				}
				if terms(by, inner).isSubsetOf(c.Children()) {
					absorbed = true
					continue next
				}
			}
			kept = append(kept, c)
		}
		if !absorbed {
			return nil, false
		}
		return join(f, e.Kind(), kept), true
	})
}

// ComplementAbsorption removes from a nested clause the complement of a sibling:
// a && (b || !a) becomes a && b, and a || (b && !a) becomes a || b.
func ComplementAbsorption[K cmp.Ordered]() Rule[K] {
	return NewRule(RuleComplementAbsorption, func(e expr.Expr[K], f expr.Factory[K]) (expr.Expr[K], bool) {
		if !isNary(e) {
			return nil, false
		}
		inner := dual(e.Kind())
		children := e.Children()
		complements := make([]expr.Expr[K], len(children))
		for i, c := range children {
			complements[i] = f.Not(c)
		}

		out := slices.Clone(children)
		changed := false
		for i, c := range children {
			if c.Kind() != inner {
				continue
			}
			var drop []expr.Expr[K]
			for j, neg := range complements {
				if i != j && slices.ContainsFunc(c.Children(), equalTo(neg)) {
					drop = append(drop, neg)
				}
			}
			if len(drop) == 0 {
				continue
			}
			remaining := slices.DeleteFunc(slices.Clone(c.Children()), func(t expr.Expr[K]) bool {
				return slices.ContainsFunc(drop, equalTo(t))
			})
			out[i] = join(f, inner, remaining)
			changed = true
		}
		if !changed {
			return nil, false
		}
		return join(f, e.Kind(), out), true
	})
}

func isNary[K cmp.Ordered](e expr.Expr[K]) bool {
	return e.Kind() == expr.KindAnd || e.Kind() == expr.KindOr
}

func dual(k expr.Kind) expr.Kind {
	if k == expr.KindAnd {
		return expr.KindOr
	}
	return expr.KindAnd
}

func join[K cmp.Ordered](f expr.Factory[K], kind expr.Kind, children []expr.Expr[K]) expr.Expr[K] {
	if kind == expr.KindAnd {
		return f.And(children...)
	}
	return f.Or(children...)
}

func equalTo[K cmp.Ordered](e expr.Expr[K]) func(expr.Expr[K]) bool {
	return func(o expr.Expr[K]) bool { return expr.Equal(e, o) }
}

// sorted adapts a canonically ordered child list to sort.Interface for xtgo/set
type sorted[K cmp.Ordered] []expr.Expr[K]

func (s sorted[K]) Len() int           { return len(s) }
func (s sorted[K]) Less(i, j int) bool { return expr.Compare(s[i], s[j]) < 0 }
func (s sorted[K]) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// terms views e as a set of kind clauses: the children of e if it has that kind,
// else e alone
func terms[K cmp.Ordered](e expr.Expr[K], kind expr.Kind) sorted[K] {
	if e.Kind() == kind {
		return sorted[K](e.Children())
	}
	return sorted[K]{e}
}

func (s sorted[K]) isSubsetOf(of []expr.Expr[K]) bool {
	if len(s) > len(of) {
		return false
	}
	sub := uniq(s)
	data := append(sub, uniq(of)...)
	return xset.IsSub(data, len(sub))
}

// uniq returns a sorted copy of es without duplicates
func uniq[K cmp.Ordered](es []expr.Expr[K]) sorted[K] {
	out := sorted[K](slices.SortedFunc(slices.Values(es), expr.Compare[K]))
	return out[:xset.Uniq(out)]
}
