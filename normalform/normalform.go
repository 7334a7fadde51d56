// Package normalform converts formulas to disjunctive or conjunctive normal form by
// driving the rewrite engine with the De Morgan and distribution rule sets.
package normalform

import (
	"cmp"
	"fmt"

	"github.com/cottand/boolex/expr"
	"github.com/cottand/boolex/internal/log"
	"github.com/cottand/boolex/rewrite"
	"github.com/cottand/boolex/rwerr"
	"github.com/pkg/errors"
)

var logger = expr.Logger(log.DefaultLogger).With("section", "normalform")

type Form int

const (
	DNF Form = iota
	CNF
)

func (f Form) String() string {
	switch f {
	case DNF:
		return "dnf"
	case CNF:
		return "cnf"
	default:
		return fmt.Sprintf("Form(%d)", int(f))
	}
}

// Limit bounds a conversion. Distribution can grow a formula exponentially in its
// And/Or nesting depth, so callers handling untrusted input should always set one.
// Zero fields are unbounded.
type Limit struct {
	// MaxSize bounds the node count of any intermediate result
	MaxSize int
	// MaxSteps bounds the total number of rule firings
	MaxSteps int
}

// maxRounds bounds how often the negation and distribution phases alternate.
// Distribution never introduces negations, so two rounds suffice for the built-in rules.
const maxRounds = 16

// Converter holds the rule sets of both forms so a shared rewrite.Cache keeps serving
// hits across calls. It is safe for concurrent use when its cache is.
type Converter[K cmp.Ordered] struct {
	deMorgan *rewrite.RuleSet[K]
	phases   map[Form]*rewrite.RuleSet[K]
	opts     rewrite.Options[K]
}

// NewConverter builds a Converter. opts.ExpansionLimit and opts.SizeLimit apply to
// each conversion as a whole.
func NewConverter[K cmp.Ordered](opts rewrite.Options[K]) *Converter[K] {
	return &Converter[K]{
		deMorgan: rewrite.DeMorganRules[K](),
		phases: map[Form]*rewrite.RuleSet[K]{
			DNF: rewrite.DNFRules[K](),
			CNF: rewrite.CNFRules[K](),
		},
		opts: opts,
	}
}

// ToDNF rewrites e into an equivalent disjunction of conjunctions of literals
func ToDNF[K cmp.Ordered](e expr.Expr[K], limit Limit) (expr.Expr[K], error) {
	return Convert(e, DNF, withLimit[K](limit))
}

// ToCNF rewrites e into an equivalent conjunction of disjunctions of literals
func ToCNF[K cmp.Ordered](e expr.Expr[K], limit Limit) (expr.Expr[K], error) {
	return Convert(e, CNF, withLimit[K](limit))
}

func Convert[K cmp.Ordered](e expr.Expr[K], form Form, opts rewrite.Options[K]) (expr.Expr[K], error) {
	return NewConverter(opts).Convert(e, form)
}

func withLimit[K cmp.Ordered](l Limit) rewrite.Options[K] {
	return rewrite.Options[K]{SizeLimit: l.MaxSize, ExpansionLimit: l.MaxSteps}
}

// Convert alternates a De Morgan phase, pushing negations down to the variables, and a
// distribution phase, until neither changes the tree. It returns e itself if e is
// already in the requested form.
func (c *Converter[K]) Convert(e expr.Expr[K], form Form) (expr.Expr[K], error) {
	phase, ok := c.phases[form]
	if !ok {
		return nil, errors.Errorf("unknown normal form %v", form)
	}
	l := logger.With("form", form)

	used := 0
	cur := e
	for round := 0; round < maxRounds; round++ {
		start := cur
		for _, rules := range []*rewrite.RuleSet[K]{c.deMorgan, phase} {
			opts := c.opts
			opts.StepsUsed = used
			next, stats, err := rewrite.ApplyWithStats(cur, rules, opts)
			if err != nil {
				return nil, err
			}
			used += stats.Steps
			l.Debug("phase done", "round", round, "ruleSet", rules.Name(), "steps", stats.Steps, "out", next)
			cur = next
		}
		if cur == start {
			if expr.Equal(cur, e) {
				return e, nil
			}
			return cur, nil
		}
	}
	return nil, rwerr.New(rwerr.NotConverged{
		RuleSet:    form.String(),
		Iterations: maxRounds,
		Node:       cur.String(),
	})
}
