package expr

import (
	"cmp"

	"github.com/hashicorp/go-set/v3"
)

// Substitute replaces every Variable bound in bindings by its binding. Ancestors of a
// replaced variable are rebuilt through f, so a variable bound to a literal can collapse
// its parents; every other subtree is returned by pointer.
func Substitute[K cmp.Ordered](e Expr[K], bindings map[K]Expr[K], f Factory[K]) Expr[K] {
	if len(bindings) == 0 {
		return e
	}
	if f == nil {
		f = Canonical[K]{}
	}
	out, _ := Transform(e, Visitor[K]{
		Enter: func(n Expr[K]) (Expr[K], bool) {
			v, ok := n.(*Variable[K])
			if !ok {
				return nil, false
			}
			b, ok := bindings[v.Key]
			return b, ok
		},
		Rebuild: func(orig Expr[K], children []Expr[K]) Expr[K] {
			return Rebuild(f, orig, children)
		},
	})
	return out
}

// Variables returns the distinct keys of e in ascending order
func Variables[K cmp.Ordered](e Expr[K]) *set.TreeSet[K] {
	vars := set.NewTreeSet[K](cmp.Compare[K])
	for n := range Walk(e) {
		if v, ok := n.(*Variable[K]); ok {
			vars.Insert(v.Key)
		}
	}
	return vars
}
