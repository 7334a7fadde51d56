// Package expr is the immutable expression model of propositional formulas.
//
// Trees are persistent: nodes never change after construction and every
// transformation shares the subtrees it did not touch. And/Or nodes built by a
// Factory keep their children flattened and sorted under Compare, so two
// constructions from the same children are structurally identical.
package expr

import (
	"cmp"
	"fmt"
	"sync/atomic"

	"github.com/cottand/boolex/util"
)

type Kind uint8

// the declaration order is the first criterion of Compare
const (
	KindLiteral Kind = iota
	KindVariable
	KindNot
	KindAnd
	KindOr
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindVariable:
		return "variable"
	case KindNot:
		return "not"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	default:
		panic(fmt.Sprintf("invalid expression kind: %d", uint8(k)))
	}
}

// Expr is a closed sum type, implemented only by *Literal, *Variable, *Not, *And and *Or.
// Type switches over it are expected to be exhaustive.
type Expr[K cmp.Ordered] interface {
	fmt.Stringer
	Kind() Kind
	// Children must not be modified by callers
	Children() []Expr[K]
	// Digest identifies the structure of the subtree
	Digest() Digest
	Hash() uint64
	// Size is the number of nodes of the subtree, counting shared subtrees once per occurrence
	Size() int
	Depth() int

	hdr() *header
}

var (
	_ Expr[string] = (*Literal[string])(nil)
	_ Expr[string] = (*Variable[string])(nil)
	_ Expr[string] = (*Not[string])(nil)
	_ Expr[string] = (*And[string])(nil)
	_ Expr[string] = (*Or[string])(nil)
)

// header holds what every node computes once: its structural identity,
// shape metrics and the memoized rendering
type header struct {
	digest Digest
	size   int
	depth  int
	str    atomic.Pointer[string]
}

func (h *header) Digest() Digest { return h.digest }
func (h *header) Hash() uint64   { return h.digest.Uint64() }
func (h *header) Size() int      { return h.size }
func (h *header) Depth() int     { return h.depth }
func (h *header) hdr() *header   { return h }
func (h *header) cachedString() (string, bool) {
	if s := h.str.Load(); s != nil {
		return *s, true
	}
	return "", false
}

type Literal[K cmp.Ordered] struct {
	header
	Value bool
}

func NewLiteral[K cmp.Ordered](value bool) *Literal[K] {
	return &Literal[K]{
		header: header{digest: literalDigest(value), size: 1, depth: 1},
		Value:  value,
	}
}

func True[K cmp.Ordered]() *Literal[K]  { return NewLiteral[K](true) }
func False[K cmp.Ordered]() *Literal[K] { return NewLiteral[K](false) }

func (*Literal[K]) Kind() Kind          { return KindLiteral }
func (*Literal[K]) Children() []Expr[K] { return nil }
func (l *Literal[K]) String() string    { return render[K](l) }

type Variable[K cmp.Ordered] struct {
	header
	Key K
}

func NewVariable[K cmp.Ordered](key K) *Variable[K] {
	return &Variable[K]{
		header: header{digest: variableDigest(key), size: 1, depth: 1},
		Key:    key,
	}
}

func (*Variable[K]) Kind() Kind          { return KindVariable }
func (*Variable[K]) Children() []Expr[K] { return nil }
func (v *Variable[K]) String() string    { return render[K](v) }

// Not is built by Factory.Not; NewNot skips the double negation collapse
type Not[K cmp.Ordered] struct {
	header
	// children holds exactly one element so Children needs no allocation
	children []Expr[K]
}

func NewNot[K cmp.Ordered](child Expr[K]) *Not[K] {
	n := &Not[K]{children: []Expr[K]{child}}
	initComposite(&n.header, KindNot, n.children)
	return n
}

func (*Not[K]) Kind() Kind            { return KindNot }
func (n *Not[K]) Children() []Expr[K] { return n.children }
func (n *Not[K]) Child() Expr[K]      { return n.children[0] }
func (n *Not[K]) String() string      { return render[K](n) }

// And is a conjunction of at least one child.
// NewAnd stores children as given; use a Factory to get the canonical form.
type And[K cmp.Ordered] struct {
	header
	children []Expr[K]
}

// NewAnd takes ownership of children
func NewAnd[K cmp.Ordered](children []Expr[K]) *And[K] {
	a := &And[K]{children: children}
	initComposite(&a.header, KindAnd, children)
	return a
}

func (*And[K]) Kind() Kind            { return KindAnd }
func (a *And[K]) Children() []Expr[K] { return a.children }
func (a *And[K]) String() string      { return render[K](a) }

// Or is a disjunction of at least one child.
// NewOr stores children as given; use a Factory to get the canonical form.
type Or[K cmp.Ordered] struct {
	header
	children []Expr[K]
}

// NewOr takes ownership of children
func NewOr[K cmp.Ordered](children []Expr[K]) *Or[K] {
	o := &Or[K]{children: children}
	initComposite(&o.header, KindOr, children)
	return o
}

func (*Or[K]) Kind() Kind            { return KindOr }
func (o *Or[K]) Children() []Expr[K] { return o.children }
func (o *Or[K]) String() string      { return render[K](o) }

func initComposite[K cmp.Ordered](h *header, kind Kind, children []Expr[K]) {
	if len(children) == 0 {
		panic(fmt.Sprintf("%v node needs at least one child", kind))
	}
	size, depth := 1, 0
	for _, c := range children {
		size = util.SaturatingAdd(size, c.Size())
		depth = max(depth, c.Depth())
	}
	h.digest = compositeDigest(kind, children)
	h.size = size
	h.depth = depth + 1
}

// Equal reports structural identity. Digests are collision resistant, so equal digests
// mean equal trees.
func Equal[K cmp.Ordered](a, b Expr[K]) bool {
	if a == b {
		return true
	}
	return a.Kind() == b.Kind() && a.Digest() == b.Digest()
}

// IsLiteral reports whether e is the literal value
func IsLiteral[K cmp.Ordered](e Expr[K], value bool) bool {
	l, ok := e.(*Literal[K])
	return ok && l.Value == value
}
