package rewrite

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cottand/boolex/expr"
	"github.com/cottand/boolex/rwerr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestApplyPinnedExample(t *testing.T) {
	e := f.And(v("a"), f.Or(v("b"), not(v("a"))))

	got, err := Apply(e, nil, Options[string]{})
	require.NoError(t, err)
	assert.Same(t, e, got)

	got, err = Apply(e, NewRuleSet[string]("empty"), Options[string]{})
	require.NoError(t, err)
	assert.Same(t, e, got)

	before := testutil.ToFloat64(ruleFirings.WithLabelValues(RuleComplementAbsorption))
	got, err = Apply(e, SimplifyRules[string](), Options[string]{})
	require.NoError(t, err)
	assert.Equal(t, "(a && b)", got.String())
	assert.Equal(t, before+1, testutil.ToFloat64(ruleFirings.WithLabelValues(RuleComplementAbsorption)))
}

func TestApplyReachesFixedPoint(t *testing.T) {
	inputs := []expr.Expr[string]{
		not(f.Or(v("a"), f.And(v("b"), not(v("c"))))),
		f.And(f.Or(v("a"), v("b")), f.Or(v("c"), not(v("a")))),
		f.Or(f.And(v("x"), not(v("x"))), v("y"), f.And(v("y"), v("z"))),
	}
	sets := []*RuleSet[string]{SimplifyRules[string](), DeMorganRules[string](), DNFRules[string](), CNFRules[string]()}
	for _, in := range inputs {
		for _, rules := range sets {
			t.Run(rules.Name()+" "+in.String(), func(t *testing.T) {
				once, err := Apply(in, rules, Options[string]{})
				require.NoError(t, err)
				twice, err := Apply(once, rules, Options[string]{})
				require.NoError(t, err)
				assert.Same(t, once, twice)
			})
		}
	}
}

func TestApplyDeMorganPushesNegationsToLeaves(t *testing.T) {
	e := not(f.Or(v("a"), f.And(v("b"), not(v("c")))))
	got, err := Apply(e, DeMorganRules[string](), Options[string]{})
	require.NoError(t, err)
	assert.Equal(t, "(!a && (c || !b))", got.String())
	assertNegationsOnVariables(t, got)
}

func TestApplyDeepTree(t *testing.T) {
	e := v("x0")
	for i := range 5_000 {
		e = not(f.And(v(fmt.Sprintf("x%d", i+1)), e))
	}
	got, err := Apply(e, DeMorganRules[string](), Options[string]{})
	require.NoError(t, err)
	assertNegationsOnVariables(t, got)
	assert.Equal(t, 5_001, expr.Variables(got).Size())
}

func TestApplyNotConverged(t *testing.T) {
	swap := NewRule("swap", func(e expr.Expr[string], _ expr.Factory[string]) (expr.Expr[string], bool) {
		variable, ok := e.(*expr.Variable[string])
		if !ok {
			return nil, false
		}
		if variable.Key == "x" {
			return v("y"), true
		}
		return v("x"), true
	})
	before := testutil.ToFloat64(notConverged)

	_, err := Apply(f.And(v("x"), v("z")), NewRuleSet[string]("swapping", swap), Options[string]{MaxIterations: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, rwerr.ErrNotConverged)
	var nc rwerr.NotConverged
	require.ErrorAs(t, err, &nc)
	assert.Equal(t, "swapping", nc.RuleSet)
	assert.Equal(t, 10, nc.Iterations)
	assert.Equal(t, rwerr.Convergence, rwerr.CodeOf(err))
	assert.Equal(t, before+1, testutil.ToFloat64(notConverged))
}

func TestApplyNotConvergedOnGrowingRule(t *testing.T) {
	dup := NewRule("dup", func(e expr.Expr[string], factory expr.Factory[string]) (expr.Expr[string], bool) {
		if e.Kind() != expr.KindVariable {
			return nil, false
		}
		return factory.And(e, e), true
	})
	rules := NewRuleSet[string]("growing", dup)

	for _, in := range []expr.Expr[string]{v("a"), f.Or(v("a"), not(v("b")))} {
		t.Run(in.String(), func(t *testing.T) {
			_, stats, err := ApplyWithStats(in, rules, Options[string]{MaxIterations: 10})
			require.Error(t, err)
			assert.ErrorIs(t, err, rwerr.ErrNotConverged)
			var nc rwerr.NotConverged
			require.ErrorAs(t, err, &nc)
			assert.Equal(t, "growing", nc.RuleSet)
			assert.Equal(t, 10+in.Depth(), nc.Iterations)
			assert.Less(t, stats.Steps, 100)
		})
	}
}

func TestApplyLimits(t *testing.T) {
	e := f.And(f.Or(v("a"), v("b")), f.Or(v("c"), v("d")), f.Or(v("e"), v("g")))

	_, err := Apply(e, DNFRules[string](), Options[string]{ExpansionLimit: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, rwerr.ErrLimitExceeded))
	var le rwerr.LimitExceeded
	require.ErrorAs(t, err, &le)
	assert.Equal(t, rwerr.LimitSteps, le.Kind)
	assert.Equal(t, 2, le.Limit)
	assert.Equal(t, 3, le.Observed)

	_, err = Apply(e, DNFRules[string](), Options[string]{SizeLimit: 20})
	require.ErrorAs(t, err, &le)
	assert.Equal(t, rwerr.LimitSize, le.Kind)
	assert.Equal(t, RuleDistributeAndOverOr, le.Rule)
	assert.Greater(t, le.Observed, 20)

	got, err := Apply(e, DNFRules[string](), Options[string]{SizeLimit: 100, ExpansionLimit: 100})
	require.NoError(t, err)
	assert.Len(t, got.Children(), 8)
}

func TestApplyCustomFactory(t *testing.T) {
	interner := expr.NewInterner[string](nil)
	e := not(f.And(v("a"), v("b")))
	one, err := Apply(e, DeMorganRules[string](), Options[string]{Factory: interner})
	require.NoError(t, err)
	other, err := Apply(not(f.And(v("a"), v("b"))), DeMorganRules[string](), Options[string]{Factory: interner})
	require.NoError(t, err)
	assert.Same(t, one, other)
}

func TestCacheKeepsCallerIdentity(t *testing.T) {
	rules := SimplifyRules[string]()
	cache := NewCache[string]()
	first := f.And(v("a"), v("b"))
	got, err := Apply(first, rules, Options[string]{Cache: cache})
	require.NoError(t, err)
	assert.Same(t, first, got)

	hits := testutil.ToFloat64(cacheHits.WithLabelValues(cacheKindMap))
	second := f.And(v("a"), v("b"))
	got, err = Apply(second, rules, Options[string]{Cache: cache})
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Equal(t, hits+1, testutil.ToFloat64(cacheHits.WithLabelValues(cacheKindMap)))
}

func TestCacheIsKeyedByRuleSet(t *testing.T) {
	cache := NewCache[string]()
	e := f.Or(f.And(v("a"), v("b")), v("c"))

	dnf, err := Apply(e, DNFRules[string](), Options[string]{Cache: cache})
	require.NoError(t, err)
	assert.Same(t, e, dnf)

	cnf, err := Apply(e, CNFRules[string](), Options[string]{Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, "((a || c) && (b || c))", cnf.String())
}

func TestCacheSharedAcrossGoroutines(t *testing.T) {
	rules := DNFRules[string]()
	caches := map[string]Cache[string]{"map": NewCache[string]()}
	lru, err := NewLRUCache[string](16)
	require.NoError(t, err)
	caches["lru"] = lru

	for name, cache := range caches {
		t.Run(name, func(t *testing.T) {
			results := make([]expr.Expr[string], 16)
			var g errgroup.Group
			for i := range results {
				g.Go(func() error {
					e := f.And(f.Or(v("a"), v("b")), f.Or(v("c"), not(v("a"))))
					out, err := Apply(e, rules, Options[string]{Cache: cache})
					results[i] = out
					return err
				})
			}
			require.NoError(t, g.Wait())
			for _, r := range results {
				assert.True(t, expr.Equal(results[0], r))
			}
			assert.Equal(t, "((a && c) || (b && c) || (b && !a))", results[0].String())
		})
	}
}

func TestCacheDoesNotChangeLimits(t *testing.T) {
	x := f.And(f.Or(v("a"), v("b")), f.Or(v("c"), v("d")))
	y := f.Or(x, v("e"))
	z := f.And(f.Or(v("a"), v("b")), f.Or(v("c"), v("d")), f.Or(v("e"), v("g")))
	rules := DNFRules[string]()

	tests := map[string]struct {
		warm expr.Expr[string]
		in   expr.Expr[string]
		opts Options[string]
	}{
		"steps": {warm: x, in: y, opts: Options[string]{ExpansionLimit: 2}},
		"size":  {warm: z, in: f.Or(v("h"), z), opts: Options[string]{SizeLimit: 20}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, coldErr := Apply(tt.in, rules, tt.opts)
			require.Error(t, coldErr)

			cache := NewCache[string]()
			_, err := Apply(tt.warm, rules, Options[string]{Cache: cache})
			require.NoError(t, err)

			opts := tt.opts
			opts.Cache = cache
			_, warmErr := Apply(tt.in, rules, opts)
			require.Error(t, warmErr)
			assert.Equal(t, coldErr.Error(), warmErr.Error())
		})
	}
}

func TestCacheHitsAreChargedSteps(t *testing.T) {
	x := f.And(f.Or(v("a"), v("b")), f.Or(v("c"), v("d")))
	y := f.Or(x, v("e"))
	rules := DNFRules[string]()

	cold, coldStats, err := ApplyWithStats(y, rules, Options[string]{})
	require.NoError(t, err)
	require.Positive(t, coldStats.Steps)

	cache := NewCache[string]()
	_, xStats, err := ApplyWithStats(x, rules, Options[string]{Cache: cache})
	require.NoError(t, err)
	warm, warmStats, err := ApplyWithStats(y, rules, Options[string]{Cache: cache})
	require.NoError(t, err)

	assert.True(t, expr.Equal(cold, warm))
	assert.Equal(t, coldStats.Steps, warmStats.Steps)
	assert.LessOrEqual(t, xStats.Steps, warmStats.Steps)

	_, err = Apply(y, rules, Options[string]{Cache: cache, ExpansionLimit: coldStats.Steps})
	assert.NoError(t, err)
}

func TestNewLRUCacheRejectsBadSize(t *testing.T) {
	_, err := NewLRUCache[string](0)
	assert.ErrorContains(t, err, "creating rewrite cache of size 0")
}

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))

	err := Register(reg)
	var already prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already)
}

func assertNegationsOnVariables(t *testing.T, e expr.Expr[string]) {
	t.Helper()
	for n := range expr.Walk(e) {
		if neg, ok := n.(*expr.Not[string]); ok {
			assert.Equal(t, expr.KindVariable, neg.Child().Kind(), "negation above %s", neg.Child())
		}
	}
}
