package rewrite

import (
	"cmp"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

const (
	SetSimplify = "simplify"
	SetDeMorgan = "de-morgan"
	SetDNF      = "dnf"
	SetCNF      = "cnf"
)

// SimplifyRules removes redundancy without changing the shape of the formula
func SimplifyRules[K cmp.Ordered]() *RuleSet[K] {
	return NewRuleSet(SetSimplify, simplifications[K]()...)
}

// DeMorganRules pushes every negation down to the variables
func DeMorganRules[K cmp.Ordered]() *RuleSet[K] {
	return NewRuleSet(SetDeMorgan, DeMorgan[K]())
}

// DNFRules turns a negation normal form into a disjunction of conjunctions
func DNFRules[K cmp.Ordered]() *RuleSet[K] {
	return NewRuleSet(SetDNF, append([]Rule[K]{DistributeAndOverOr[K]()}, simplifications[K]()...)...)
}

// CNFRules turns a negation normal form into a conjunction of disjunctions
func CNFRules[K cmp.Ordered]() *RuleSet[K] {
	return NewRuleSet(SetCNF, append([]Rule[K]{DistributeOrOverAnd[K]()}, simplifications[K]()...)...)
}

func simplifications[K cmp.Ordered]() []Rule[K] {
	return []Rule[K]{Complement[K](), Idempotence[K](), Absorption[K](), ComplementAbsorption[K]()}
}

var builtin = []string{
	RuleDeMorgan,
	RuleDistributeAndOverOr,
	RuleDistributeOrOverAnd,
	RuleComplement,
	RuleIdempotence,
	RuleAbsorption,
	RuleComplementAbsorption,
}

// Names lists the rules Lookup knows, in a stable order
func Names() []string {
	return slices.Clone(builtin)
}

// Lookup returns the built-in rule called name, ignoring case
func Lookup[K cmp.Ordered](name string) (Rule[K], error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case RuleDeMorgan:
		return DeMorgan[K](), nil
	case RuleDistributeAndOverOr:
		return DistributeAndOverOr[K](), nil
	case RuleDistributeOrOverAnd:
		return DistributeOrOverAnd[K](), nil
	case RuleComplement:
		return Complement[K](), nil
	case RuleIdempotence:
		return Idempotence[K](), nil
	case RuleAbsorption:
		return Absorption[K](), nil
	case RuleComplementAbsorption:
		return ComplementAbsorption[K](), nil
	default:
		return nil, errors.Errorf("unknown rule %q, expected one of %s", name, strings.Join(builtin, ", "))
	}
}

// LookupSet builds a RuleSet from rule names, keeping their order
func LookupSet[K cmp.Ordered](name string, ruleNames ...string) (*RuleSet[K], error) {
	rules := make([]Rule[K], 0, len(ruleNames))
	for _, n := range ruleNames {
		r, err := Lookup[K](n)
		if err != nil {
			return nil, errors.Wrapf(err, "rule set %s", name)
		}
		rules = append(rules, r)
	}
	return NewRuleSet(name, rules...), nil
}
