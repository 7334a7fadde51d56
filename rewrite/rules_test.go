package rewrite

import (
	"testing"

	"github.com/cottand/boolex/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var f = expr.Canonical[string]{}

func v(name string) expr.Expr[string] {
	return expr.NewVariable(name)
}

func not(e expr.Expr[string]) expr.Expr[string] {
	return f.Not(e)
}

func TestRulesLocally(t *testing.T) {
	a, b, c := v("a"), v("b"), v("c")
	tests := []struct {
		rule Rule[string]
		in   expr.Expr[string]
		// empty when the rule must not fire
		want string
	}{
		{DeMorgan[string](), not(f.And(a, b)), "(!a || !b)"},
		{DeMorgan[string](), not(f.Or(a, not(b))), "(b && !a)"},
		{DeMorgan[string](), not(a), ""},
		{DeMorgan[string](), f.And(a, b), ""},

		{DistributeAndOverOr[string](), f.And(a, f.Or(b, c)), "((a && b) || (a && c))"},
		{DistributeAndOverOr[string](), f.Or(a, f.And(b, c)), ""},
		{DistributeOrOverAnd[string](), f.Or(a, f.And(b, c)), "((a || b) && (a || c))"},
		{DistributeOrOverAnd[string](), f.And(a, b), ""},

		{Complement[string](), f.And(a, not(a), b), "false"},
		{Complement[string](), f.Or(not(b), b), "true"},
		{Complement[string](), f.And(a, not(b)), ""},
		{Complement[string](), not(a), ""},

		{Idempotence[string](), f.And(a, b, a), "(a && b)"},
		{Idempotence[string](), f.Or(c, c), "c"},
		{Idempotence[string](), f.Or(a, c), ""},

		{Absorption[string](), f.And(a, f.Or(a, b)), "a"},
		{Absorption[string](), f.Or(a, f.And(a, b)), "a"},
		{Absorption[string](), f.And(f.Or(a, b), f.Or(a, b, c)), "(a || b)"},
		{Absorption[string](), f.And(f.Or(a, b), f.Or(a, b)), "(a || b)"},
		{Absorption[string](), f.And(c, f.Or(a, b)), ""},

		{ComplementAbsorption[string](), f.And(a, f.Or(b, not(a))), "(a && b)"},
		{ComplementAbsorption[string](), f.Or(a, f.And(b, not(a))), "(a || b)"},
		{ComplementAbsorption[string](), f.And(not(a), f.Or(a, b, c)), "(!a && (b || c))"},
		{ComplementAbsorption[string](), f.And(a, f.Or(b, c)), ""},
	}

	for _, tt := range tests {
		t.Run(tt.rule.Name()+" "+tt.in.String(), func(t *testing.T) {
			got, ok := tt.rule.Apply(tt.in, f)
			if tt.want == "" {
				assert.False(t, ok, "unexpected rewrite to %v", got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		r, err := Lookup[string](name)
		require.NoError(t, err)
		assert.Equal(t, name, r.Name())
	}

	r, err := Lookup[int](" Complement-Absorption ")
	require.NoError(t, err)
	assert.Equal(t, RuleComplementAbsorption, r.Name())

	_, err = Lookup[string]("commutativity")
	assert.ErrorContains(t, err, `unknown rule "commutativity"`)
}

func TestLookupSet(t *testing.T) {
	s, err := LookupSet[string]("mine", RuleIdempotence, RuleDeMorgan)
	require.NoError(t, err)
	assert.Equal(t, "mine", s.Name())
	require.Equal(t, 2, s.Len())
	assert.Equal(t, RuleIdempotence, s.Rules()[0].Name())
	assert.Equal(t, RuleDeMorgan, s.Rules()[1].Name())

	_, err = LookupSet[string]("broken", RuleDeMorgan, "nope")
	assert.ErrorContains(t, err, "rule set broken")
}

func TestRuleSetIdentity(t *testing.T) {
	one, other := SimplifyRules[string](), SimplifyRules[string]()
	assert.NotEqual(t, one.ID(), other.ID())
	assert.Equal(t, one.Name(), other.Name())

	extended := one.With("more", DeMorgan[string]())
	assert.Equal(t, one.Len()+1, extended.Len())
	assert.NotEqual(t, one.ID(), extended.ID())

	var none *RuleSet[string]
	assert.Equal(t, 0, none.Len())
	assert.Nil(t, none.Rules())
}
