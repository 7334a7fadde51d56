package expr

import (
	"cmp"
	"slices"
)

// Factory is the construction path for composite nodes. Implementations must return
// trees in local canonical form (see Canonical); wrappers such as Interner add to it.
type Factory[K cmp.Ordered] interface {
	And(children ...Expr[K]) Expr[K]
	Or(children ...Expr[K]) Expr[K]
	Not(child Expr[K]) Expr[K]
}

// Canonical applies the local simplifications every tree in the system satisfies:
//   - nested And in And (Or in Or) is flattened into the parent
//   - false annihilates an And, true annihilates an Or
//   - true is dropped from an And, false from an Or; nothing left gives the identity literal
//   - a single remaining child is returned unwrapped
//   - Not(Not(x)) is x, and Not of a literal is the opposite literal
//   - children are sorted by Compare
type Canonical[K cmp.Ordered] struct{}

var _ Factory[string] = Canonical[string]{}

func (Canonical[K]) And(children ...Expr[K]) Expr[K] {
	return canonicalNary(KindAnd, children)
}

func (Canonical[K]) Or(children ...Expr[K]) Expr[K] {
	return canonicalNary(KindOr, children)
}

func (Canonical[K]) Not(child Expr[K]) Expr[K] {
	switch c := child.(type) {
	case *Not[K]:
		return c.Child()
	case *Literal[K]:
		return NewLiteral[K](!c.Value)
	default:
		return NewNot(child)
	}
}

func canonicalNary[K cmp.Ordered](kind Kind, children []Expr[K]) Expr[K] {
	// false for And, true for Or
	annihilator := kind == KindOr

	flat := make([]Expr[K], 0, len(children))
	pending := slices.Clone(children)
	for len(pending) > 0 {
		c := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if IsLiteral(c, annihilator) {
			return c
		}

		switch c := c.(type) {
		case *Literal[K]:
			// the identity, dropped
		case *And[K]:
			if kind == KindAnd {
				pending = append(pending, c.children...)
			} else {
				flat = append(flat, c)
			}
		case *Or[K]:
			if kind == KindOr {
				pending = append(pending, c.children...)
			} else {
				flat = append(flat, c)
			}
		default:
			flat = append(flat, c)
		}
	}

	switch len(flat) {
	case 0:
		return NewLiteral[K](!annihilator)
	case 1:
		return flat[0]
	}
	slices.SortFunc(flat, Compare[K])
	if kind == KindAnd {
		return NewAnd(flat)
	}
	return NewOr(flat)
}

// Rebuild constructs a node of the same kind as orig from new children through f.
// The result may have another kind, since f canonicalizes.
func Rebuild[K cmp.Ordered](f Factory[K], orig Expr[K], children []Expr[K]) Expr[K] {
	switch orig.(type) {
	case *Not[K]:
		return f.Not(children[0])
	case *And[K]:
		return f.And(children...)
	case *Or[K]:
		return f.Or(children...)
	default:
		return orig
	}
}
