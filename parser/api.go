// Package parser reads formulas written as infix text, such as "a && (b || !c)".
//
// Operators, from tightest to loosest binding: negation (!, ~, NOT), conjunction
// (&&, &, AND) and disjunction (||, |, OR). Keywords are case-insensitive.
// Variables are bare names made of letters, digits and _.$- or quoted names in single
// or double quotes. true and false are the constants.
package parser

import (
	"cmp"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/boolex/expr"
	"github.com/cottand/boolex/internal/log"
	"github.com/cottand/boolex/util"
)

var logger = log.DefaultLogger.With("section", "parser")

// KeyMapper translates a variable name as written in the source into the key type of
// the resulting tree. A returned error becomes a syntax error at the name.
type KeyMapper[K cmp.Ordered] func(name string) (K, error)

// Identity keeps names as they are
func Identity(name string) (string, error) {
	return name, nil
}

type Settings[K cmp.Ordered] struct {
	// Factory builds the tree, defaults to expr.Canonical
	Factory expr.Factory[K]
	// CollectVariables fills Result.Variables
	CollectVariables bool
}

type Result[K cmp.Ordered] struct {
	Expr expr.Expr[K]
	// Variables holds the distinct names read, as written in the source.
	// It is empty unless Settings.CollectVariables is set.
	Variables immutable.Set[string]
}

// Parse reads src into a tree keyed by variable name. Errors are rwerr.Syntax.
func Parse(src string) (expr.Expr[string], error) {
	res, err := ParseWith(src, Identity, Settings[string]{})
	if err != nil {
		return nil, err
	}
	return res.Expr, nil
}

// ParseWith reads src, mapping every variable name through mapper
func ParseWith[K cmp.Ordered](src string, mapper KeyMapper[K], settings Settings[K]) (Result[K], error) {
	if settings.Factory == nil {
		settings.Factory = expr.Canonical[K]{}
	}
	tokens, source := newTokenStream(src)
	p := &parser[K]{
		tokens:    tokens,
		source:    source,
		factory:   settings.Factory,
		mapper:    mapper,
		collect:   settings.CollectVariables,
		collected: immutable.NewSet(immutable.NewHasher("")),
		operands:  util.NewStack[operand[K]](8),
		operators: util.NewStack[operator](8),
	}

	e, err := p.parse()
	if err != nil {
		logger.Debug("parse failed", "src", src, "error", err)
		return Result[K]{}, err
	}
	logger.Debug("parsed", "src", src, "expr", expr.Slog(e))
	return Result[K]{Expr: e, Variables: p.collected}, nil
}

// MustParse is Parse for trusted input such as tests and constants. It panics on error.
func MustParse(src string) expr.Expr[string] {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}
