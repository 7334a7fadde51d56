package eval

import (
	"cmp"
	"slices"

	"github.com/cottand/boolex/expr"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
)

// Table lists the value of a formula under every assignment of Keys.
// Values[row] is the value when Keys[i] is assigned bit i of row.
type Table[K cmp.Ordered] struct {
	Keys   []K
	Values []bool
}

// TruthTable evaluates e under all 2^n assignments of its n variables
func TruthTable[K cmp.Ordered](e expr.Expr[K]) (Table[K], error) {
	p, err := Compile(e)
	if err != nil {
		return Table[K]{}, err
	}
	return p.table(p.keys)
}

func (p *Program[K]) table(keys []K) (Table[K], error) {
	if len(keys) > MaxVariables {
		return Table[K]{}, errors.Errorf("%d variables is more than the %d a truth table is built for", len(keys), MaxVariables)
	}
	rows := uint64(1) << len(keys)
	values := make([]bool, rows)
	env := make(map[string]any, len(keys))
	// bit positions of p's variables within keys
	bits := make([]int, len(p.keys))
	for i, k := range p.keys {
		bits[i], _ = slices.BinarySearch(keys, k)
	}
	for row := range rows {
		var own uint64
		for i, b := range bits {
			if row&(1<<b) != 0 {
				own |= 1 << i
			}
		}
		v, err := p.evalBits(own, env)
		if err != nil {
			return Table[K]{}, err
		}
		values[row] = v
	}
	return Table[K]{Keys: keys, Values: values}, nil
}

// Equivalent reports whether a and b agree under every assignment of the union of
// their variables. If not, counterexample holds an assignment on which they differ.
func Equivalent[K cmp.Ordered](a, b expr.Expr[K]) (equivalent bool, counterexample map[K]bool, err error) {
	pa, err := Compile(a)
	if err != nil {
		return false, nil, err
	}
	pb, err := Compile(b)
	if err != nil {
		return false, nil, err
	}
	union := set.TreeSetFrom[K](pa.keys, cmp.Compare[K])
	union.InsertSlice(pb.keys)
	keys := union.Slice()

	ta, err := pa.table(keys)
	if err != nil {
		return false, nil, err
	}
	tb, err := pb.table(keys)
	if err != nil {
		return false, nil, err
	}
	for row := range ta.Values {
		if ta.Values[row] != tb.Values[row] {
			return false, assignment(keys, uint64(row)), nil
		}
	}
	return true, nil, nil
}

func assignment[K cmp.Ordered](keys []K, row uint64) map[K]bool {
	out := make(map[K]bool, len(keys))
	for i, k := range keys {
		out[k] = row&(1<<i) != 0
	}
	return out
}
