package expr

import (
	"cmp"
	"iter"
	"slices"

	"github.com/cottand/boolex/util"
)

// Visitor drives Transform. Every field is optional.
type Visitor[K cmp.Ordered] struct {
	// Enter is called before a node's children are visited. Returning ok replaces the
	// whole subtree with replacement without descending into it.
	Enter func(e Expr[K]) (replacement Expr[K], ok bool)
	// Rebuild constructs a node from children of which at least one changed.
	// Defaults to Rebuild through Canonical.
	Rebuild func(orig Expr[K], children []Expr[K]) Expr[K]
	// Leave is called post-order once the node's children settled. rebuilt is orig itself
	// when no child changed. Returning again queues out to be visited as a fresh node
	// (Enter, children, Leave with round+1) before it settles into its parent.
	// generation counts the re-queues on the path from the root to this node, so it
	// keeps growing when every re-queue produces fresh subtrees that re-queue too.
	// An error aborts the traversal.
	Leave func(orig, rebuilt Expr[K], round, generation int) (out Expr[K], again bool, err error)
	// Settled reports the final replacement of a node that was fully visited, with first
	// being the node as it appeared in the input tree.
	Settled func(first, final Expr[K])
}

type frame[K cmp.Ordered] struct {
	node       Expr[K]
	first      Expr[K]
	round      int
	generation int
	next       int
	// rebuilt is nil until one of the children changes
	rebuilt []Expr[K]
}

func (f *frame[K]) settle(out Expr[K]) {
	children := f.node.Children()
	if child := children[f.next]; out != child && !Equal(out, child) {
		if f.rebuilt == nil {
			f.rebuilt = slices.Clone(children)
		}
		f.rebuilt[f.next] = out
	}
	f.next++
}

// Transform rewrites root bottom-up using an explicit stack, so its cost in goroutine
// stack is constant regardless of tree depth. Only the nodes on the path from a changed
// subtree to the root are rebuilt; if nothing changes root itself is returned.
// A replacement that is structurally equal to the node it replaces counts as no change.
func Transform[K cmp.Ordered](root Expr[K], v Visitor[K]) (Expr[K], error) {
	if v.Rebuild == nil {
		v.Rebuild = func(orig Expr[K], children []Expr[K]) Expr[K] {
			return Rebuild[K](Canonical[K]{}, orig, children)
		}
	}
	if v.Enter != nil {
		if r, ok := v.Enter(root); ok {
			if Equal(r, root) {
				return root, nil
			}
			return r, nil
		}
	}

	stack := util.NewStack[*frame[K]](min(root.Depth(), 64))
	stack.Push(&frame[K]{node: root, first: root})
	for {
		top, _ := stack.Peek()
		if children := top.node.Children(); top.next < len(children) {
			child := children[top.next]
			if v.Enter != nil {
				if r, ok := v.Enter(child); ok {
					top.settle(r)
					continue
				}
			}
			stack.Push(&frame[K]{node: child, first: child, generation: top.generation})
			continue
		}

		stack.Pop()
		out := top.node
		if top.rebuilt != nil {
			out = v.Rebuild(top.node, top.rebuilt)
		}
		if v.Leave != nil {
			var (
				again bool
				err   error
			)
			if out, again, err = v.Leave(top.node, out, top.round, top.generation); err != nil {
				return nil, err
			}
			if again {
				if r, ok := enter(v, out); ok {
					out = r
				} else {
					stack.Push(&frame[K]{
						node:       out,
						first:      top.first,
						round:      top.round + 1,
						generation: top.generation + 1,
					})
					continue
				}
			}
		}
		if v.Settled != nil {
			v.Settled(top.first, out)
		}
		parent, ok := stack.Peek()
		if !ok {
			if Equal(out, root) {
				return root, nil
			}
			return out, nil
		}
		parent.settle(out)
	}
}

func enter[K cmp.Ordered](v Visitor[K], e Expr[K]) (Expr[K], bool) {
	if v.Enter == nil {
		return nil, false
	}
	return v.Enter(e)
}

// Map applies fn to every node post-order, children before parents, rebuilding changed
// ancestors through f. Returns e itself when fn never changes anything.
func Map[K cmp.Ordered](e Expr[K], fn func(Expr[K]) Expr[K], f Factory[K]) Expr[K] {
	if f == nil {
		f = Canonical[K]{}
	}
	out, _ := Transform(e, Visitor[K]{
		Rebuild: func(orig Expr[K], children []Expr[K]) Expr[K] {
			return Rebuild(f, orig, children)
		},
		Leave: func(_, rebuilt Expr[K], _, _ int) (Expr[K], bool, error) {
			return fn(rebuilt), false, nil
		},
	})
	return out
}

// Sort re-sorts the children of every And/Or under comparator. The result bypasses
// the factory, so it is no longer canonical unless comparator is Compare.
// Returns e itself when every node is already in order.
func Sort[K cmp.Ordered](e Expr[K], comparator Comparator[K]) Expr[K] {
	out, _ := Transform(e, Visitor[K]{
		Rebuild: withChildren[K],
		Leave: func(_, n Expr[K], _, _ int) (Expr[K], bool, error) {
			children := n.Children()
			if n.Kind() == KindNot || slices.IsSortedFunc(children, comparator) {
				return n, false, nil
			}
			sorted := slices.Clone(children)
			slices.SortStableFunc(sorted, comparator)
			return withChildren(n, sorted), false, nil
		},
	})
	return out
}

// withChildren is Rebuild without canonicalization
func withChildren[K cmp.Ordered](orig Expr[K], children []Expr[K]) Expr[K] {
	switch orig.(type) {
	case *Not[K]:
		return NewNot(children[0])
	case *And[K]:
		return NewAnd(children)
	case *Or[K]:
		return NewOr(children)
	default:
		return orig
	}
}

// Walk yields every node of e pre-order, once per occurrence
func Walk[K cmp.Ordered](e Expr[K]) iter.Seq[Expr[K]] {
	return func(yield func(Expr[K]) bool) {
		stack := util.NewStack[Expr[K]](min(e.Depth(), 64))
		stack.Push(e)
		for {
			n, ok := stack.Pop()
			if !ok {
				return
			}
			if !yield(n) {
				return
			}
			children := n.Children()
			for i := len(children) - 1; i >= 0; i-- {
				stack.Push(children[i])
			}
		}
	}
}
