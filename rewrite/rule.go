package rewrite

import (
	"cmp"
	"slices"
	"sync/atomic"

	"github.com/cottand/boolex/expr"
)

// Rule is a local rewrite. Apply inspects a single node whose children are already in
// normal form and either returns a logically equivalent replacement built through f, or
// reports false. Rules must be deterministic and must not retain the factory.
type Rule[K cmp.Ordered] interface {
	Name() string
	Apply(e expr.Expr[K], f expr.Factory[K]) (expr.Expr[K], bool)
}

// RuleFunc adapts a plain function into a Rule
type RuleFunc[K cmp.Ordered] struct {
	name string
	fn   func(e expr.Expr[K], f expr.Factory[K]) (expr.Expr[K], bool)
}

func NewRule[K cmp.Ordered](name string, fn func(e expr.Expr[K], f expr.Factory[K]) (expr.Expr[K], bool)) RuleFunc[K] {
	return RuleFunc[K]{name: name, fn: fn}
}

func (r RuleFunc[K]) Name() string { return r.name }
func (r RuleFunc[K]) Apply(e expr.Expr[K], f expr.Factory[K]) (expr.Expr[K], bool) {
	return r.fn(e, f)
}

var ruleSetIDs atomic.Uint64

// RuleSet is an ordered, immutable list of rules. Every RuleSet gets an identity
// token at construction which, together with a node digest, keys the Cache:
// two sets holding the same rules are still cached apart.
type RuleSet[K cmp.Ordered] struct {
	id    uint64
	name  string
	rules []Rule[K]
}

func NewRuleSet[K cmp.Ordered](name string, rules ...Rule[K]) *RuleSet[K] {
	return &RuleSet[K]{
		id:    ruleSetIDs.Add(1),
		name:  name,
		rules: slices.Clone(rules),
	}
}

func (s *RuleSet[K]) ID() uint64 { return s.id }

func (s *RuleSet[K]) Name() string {
	if s == nil {
		return "<none>"
	}
	return s.name
}

func (s *RuleSet[K]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Rules returns a copy of the rules in application order
func (s *RuleSet[K]) Rules() []Rule[K] {
	if s == nil {
		return nil
	}
	return slices.Clone(s.rules)
}

// With returns a new set, with a new identity, holding the rules of s followed by more
func (s *RuleSet[K]) With(name string, more ...Rule[K]) *RuleSet[K] {
	return NewRuleSet(name, append(s.Rules(), more...)...)
}
