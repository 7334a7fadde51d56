package expr

import (
	"cmp"
	"sync"
	"sync/atomic"
)

// Interner hash-conses the output of another factory: every node it returns is the
// single shared instance for its digest, so equal content is also equal by pointer.
// It is safe for concurrent use. The table only grows.
type Interner[K cmp.Ordered] struct {
	inner Factory[K]
	table sync.Map // Digest -> Expr[K]
	size  atomic.Int64
}

var _ Factory[string] = (*Interner[string])(nil)

func NewInterner[K cmp.Ordered](inner Factory[K]) *Interner[K] {
	if inner == nil {
		inner = Canonical[K]{}
	}
	return &Interner[K]{inner: inner}
}

func (i *Interner[K]) And(children ...Expr[K]) Expr[K] {
	return i.Intern(i.inner.And(children...))
}

func (i *Interner[K]) Or(children ...Expr[K]) Expr[K] {
	return i.Intern(i.inner.Or(children...))
}

func (i *Interner[K]) Not(child Expr[K]) Expr[K] {
	return i.Intern(i.inner.Not(child))
}

// Intern returns the shared instance structurally equal to e, registering e if there is none
func (i *Interner[K]) Intern(e Expr[K]) Expr[K] {
	if v, ok := i.table.Load(e.Digest()); ok {
		return v.(Expr[K])
	}
	v, loaded := i.table.LoadOrStore(e.Digest(), e)
	if !loaded {
		i.size.Add(1)
	}
	return v.(Expr[K])
}

func (i *Interner[K]) Len() int {
	return int(i.size.Load())
}
