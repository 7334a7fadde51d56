package expr

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

var f = Canonical[string]{}

func v(name string) Expr[string] { return NewVariable(name) }

func TestPermutationsAreIdentical(t *testing.T) {
	children := []Expr[string]{
		v("c"),
		f.Not(v("a")),
		f.Or(v("x"), v("y")),
		v("a"),
		f.And(v("q"), f.Not(v("r"))),
	}
	want := f.And(children...)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]Expr[string](nil), children...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := f.And(shuffled...)

		assert.Equal(t, want.String(), got.String())
		assert.Equal(t, want.Hash(), got.Hash())
		assert.Equal(t, 0, Compare(want, got))
		assert.True(t, Equal(want, got))
	}
	assert.Equal(t, "(a && c && q && !a && !r && (x || y))", want.String())
}

func TestFactoryLocalSimplifications(t *testing.T) {
	x := f.Or(v("a"), f.Not(v("b")))
	testCases := []struct {
		name     string
		got      Expr[string]
		expected string
	}{
		{"and annihilated by false", f.And(False[string](), x), "false"},
		{"or annihilated by true", f.Or(x, True[string]()), "true"},
		{"true dropped from and", f.And(True[string](), v("a"), v("b")), "(a && b)"},
		{"false dropped from or", f.Or(False[string](), v("a"), v("b")), "(a || b)"},
		{"empty and", f.And(), "true"},
		{"empty or", f.Or(), "false"},
		{"and of identities", f.And(True[string](), True[string]()), "true"},
		{"singleton and", f.And(x), x.String()},
		{"singleton after dropping", f.Or(False[string](), x), x.String()},
		{"double negation", f.Not(f.Not(x)), x.String()},
		{"not true", f.Not(True[string]()), "false"},
		{"not false", f.Not(False[string]()), "true"},
		{"flatten and", f.And(v("a"), f.And(v("b"), f.And(v("c"), v("d")))), "(a && b && c && d)"},
		{"flatten or", f.Or(f.Or(v("d"), v("c")), v("b")), "(b || c || d)"},
		{"no flattening across kinds", f.And(v("a"), f.Or(v("b"), v("c"))), "(a && (b || c))"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.got.String())
		})
	}
}

func TestDoubleNegationIsSameNode(t *testing.T) {
	x := f.And(v("a"), v("b"))
	assert.Same(t, x, f.Not(f.Not(x)))
}

func TestFactoryNeverNestsSameKind(t *testing.T) {
	raw := NewAnd([]Expr[string]{v("a"), NewAnd([]Expr[string]{v("b"), True[string]()})})
	got := f.And(raw, v("c"))
	for n := range Walk(got) {
		if n.Kind() != KindAnd {
			continue
		}
		for _, c := range n.Children() {
			assert.NotEqual(t, KindAnd, c.Kind(), "nested and in %s", got)
		}
	}
	assert.Equal(t, "(a && b && c)", got.String())
}

func TestCompareIsATotalOrder(t *testing.T) {
	exprs := []Expr[string]{
		False[string](),
		True[string](),
		v("a"),
		v("b"),
		f.Not(v("a")),
		f.Not(f.And(v("a"), v("b"))),
		f.And(v("a"), v("b")),
		f.And(v("a"), v("b"), v("c")),
		f.And(v("a"), v("c")),
		f.Or(v("a"), v("b")),
	}
	for i, a := range exprs {
		for j, b := range exprs {
			t.Run(fmt.Sprintf("%s vs %s", a, b), func(t *testing.T) {
				got := Compare(a, b)
				switch {
				case i < j:
					assert.Negative(t, got)
				case i > j:
					assert.Positive(t, got)
				default:
					assert.Zero(t, got)
				}
				assert.Equal(t, -got, Compare(b, a))
			})
		}
	}
}

func TestCompareIndependentOfAllocation(t *testing.T) {
	build := func() Expr[string] {
		return f.Or(f.And(v("a"), f.Not(v("b"))), v("c"))
	}
	a, b := build(), build()
	assert.NotSame(t, a, b)
	assert.Zero(t, Compare(a, b))
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, f.Or(f.And(v("a"), f.Not(v("b"))), v("d"))))
}

func TestIntKeys(t *testing.T) {
	fi := Canonical[int]{}
	e := fi.Or(NewVariable(10), NewVariable(2), fi.Not(NewVariable(3)))
	assert.Equal(t, "(2 || 10 || !3)", e.String())
	assert.Equal(t, []int{2, 3, 10}, Variables(e).Slice())
}

func TestInterner(t *testing.T) {
	in := NewInterner[string](nil)
	a := in.And(v("a"), in.Not(v("b")))
	b := in.And(in.Not(v("b")), v("a"))
	assert.Same(t, a, b)
	assert.Same(t, in.Intern(v("a")), in.Intern(v("a")))
	assert.Equal(t, 3, in.Len())
}
