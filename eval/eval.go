// Package eval evaluates formulas under truth assignments. Formulas are compiled to
// expr-lang programs, so a Program can be run any number of times without walking the tree.
package eval

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/cottand/boolex/expr"
	"github.com/cottand/boolex/util"
	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
)

// MaxVariables bounds the formulas TruthTable and Equivalent accept
const MaxVariables = 20

// Program is a compiled formula
type Program[K cmp.Ordered] struct {
	keys    []K
	names   []string
	source  string
	program *vm.Program
}

// Compile translates e into an expr-lang program. Variables are renamed to
// positional identifiers, so any key type and any variable name are supported.
func Compile[K cmp.Ordered](e expr.Expr[K]) (*Program[K], error) {
	keys := slices.Collect(expr.Variables(e).Items())
	names := make([]string, len(keys))
	index := make(map[K]string, len(keys))
	env := make(map[string]any, len(keys))
	for i, k := range keys {
		names[i] = fmt.Sprintf("v%d", i)
		index[k] = names[i]
		env[names[i]] = false
	}

	source := emit(e, index)
	program, err := exprlang.Compile(source, exprlang.Env(env), exprlang.AsBool(), exprlang.MaxNodes(0))
	if err != nil {
		return nil, errors.Wrapf(err, "compiling %s", e)
	}
	return &Program[K]{keys: keys, names: names, source: source, program: program}, nil
}

// Keys returns the variables of the program in ascending order
func (p *Program[K]) Keys() []K {
	return slices.Clone(p.keys)
}

// Source is the expr-lang text the program was compiled from
func (p *Program[K]) Source() string {
	return p.source
}

// Eval runs the program. Every variable must be assigned.
func (p *Program[K]) Eval(assignment map[K]bool) (bool, error) {
	env := make(map[string]any, len(p.keys))
	for i, k := range p.keys {
		value, ok := assignment[k]
		if !ok {
			return false, errors.Errorf("no value assigned to variable %s", expr.VariableName(k))
		}
		env[p.names[i]] = value
	}
	return p.run(env)
}

// evalBits assigns p.keys[i] the i-th bit of row
func (p *Program[K]) evalBits(row uint64, env map[string]any) (bool, error) {
	for i, name := range p.names {
		env[name] = row&(1<<i) != 0
	}
	return p.run(env)
}

func (p *Program[K]) run(env map[string]any) (bool, error) {
	out, err := vm.Run(p.program, env)
	if err != nil {
		return false, errors.Wrap(err, "evaluating "+p.source)
	}
	return out.(bool), nil
}

type emitItem[K cmp.Ordered] struct {
	node  expr.Expr[K]
	token string
}

// emit renders e as expr-lang source, with an explicit stack like expr.Print
func emit[K cmp.Ordered](e expr.Expr[K], names map[K]string) string {
	sb := &strings.Builder{}
	stack := util.NewStack[emitItem[K]](min(e.Depth(), 64))
	stack.Push(emitItem[K]{node: e})
	for {
		item, ok := stack.Pop()
		if !ok {
			return sb.String()
		}
		switch n := item.node.(type) {
		case nil:
			sb.WriteString(item.token)
		case *expr.Literal[K]:
			fmt.Fprint(sb, n.Value)
		case *expr.Variable[K]:
			sb.WriteString(names[n.Key])
		case *expr.Not[K]:
			sb.WriteString("!")
			stack.Push(emitItem[K]{node: n.Child()})
		default:
			sep := " && "
			if n.Kind() == expr.KindOr {
				sep = " || "
			}
			sb.WriteString("(")
			stack.Push(emitItem[K]{token: ")"})
			children := n.Children()
			for i := len(children) - 1; i >= 0; i-- {
				stack.Push(emitItem[K]{node: children[i]})
				if i > 0 {
					stack.Push(emitItem[K]{token: sep})
				}
			}
		}
	}
}
