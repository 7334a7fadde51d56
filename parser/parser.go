package parser

import (
	"cmp"

	"github.com/antlr4-go/antlr/v4"
	"github.com/benbjohnson/immutable"
	"github.com/cottand/boolex/expr"
	"github.com/cottand/boolex/util"
)

// operand is a parsed subexpression. An unfinished n-ary group keeps its children in
// parts, so a chain a && b && ... && z is built with a single factory call.
type operand[K cmp.Ordered] struct {
	e     expr.Expr[K]
	kind  expr.Kind
	parts []expr.Expr[K]
}

type operator struct {
	kind tokenKind
	tok  token
}

func precedence(k tokenKind) int {
	switch k {
	case tokNot:
		return 3
	case tokAnd:
		return 2
	case tokOr:
		return 1
	default:
		return 0
	}
}

type parser[K cmp.Ordered] struct {
	tokens    *antlr.CommonTokenStream
	source    *tokenSource
	factory   expr.Factory[K]
	mapper    KeyMapper[K]
	collect   bool
	collected immutable.Set[string]
	operands  *util.Stack[operand[K]]
	operators *util.Stack[operator]
}

// parse is a shunting-yard loop over the token stream. It alternates between expecting
// an operand (name, literal, prefix operator or opening parenthesis) and expecting an
// infix operator, closing parenthesis or end of input.
func (p *parser[K]) parse() (expr.Expr[K], error) {
	expectOperand := true
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}

		if expectOperand {
			switch tok.kind {
			case tokName:
				key, err := p.mapper(tok.name)
				if err != nil {
					return nil, syntaxError(tok.pos, tok.text, "invalid variable: "+err.Error())
				}
				if p.collect {
					p.collected = p.collected.Add(tok.name)
				}
				p.push(expr.NewVariable(key))
				expectOperand = false
			case tokTrue, tokFalse:
				p.push(expr.NewLiteral[K](tok.kind == tokTrue))
				expectOperand = false
			case tokNot, tokLParen:
				p.operators.Push(operator{kind: tok.kind, tok: tok})
			case tokEOF:
				return nil, syntaxError(tok.pos, "", "expected expression")
			default:
				return nil, syntaxError(tok.pos, tok.text, "expected expression")
			}
			continue
		}

		switch tok.kind {
		case tokAnd, tokOr:
			p.reduceWhile(func(top tokenKind) bool {
				// left associative: equal precedence reduces first
				return top != tokLParen && precedence(top) >= precedence(tok.kind)
			})
			p.operators.Push(operator{kind: tok.kind, tok: tok})
			expectOperand = true
		case tokRParen:
			p.reduceWhile(func(top tokenKind) bool { return top != tokLParen })
			if _, ok := p.operators.Pop(); !ok {
				return nil, syntaxError(tok.pos, tok.text, "unmatched ')'")
			}
			top, _ := p.operands.Pop()
			p.push(p.finish(top))
		case tokEOF:
			p.reduceWhile(func(top tokenKind) bool { return top != tokLParen })
			if open, ok := p.operators.Peek(); ok {
				return nil, syntaxError(open.tok.pos, open.tok.text, "unclosed '('")
			}
			result, _ := p.operands.Pop()
			return p.finish(result), nil
		default:
			return nil, syntaxError(tok.pos, tok.text, "expected operator after operand, found "+tok.kind.String())
		}
	}
}

// next returns the current token and moves past it. Once reached, end of input is
// returned on every call.
func (p *parser[K]) next() (token, error) {
	t := p.tokens.LT(1)
	switch t.GetTokenType() {
	case antlr.TokenEOF:
		return p.source.token(t), nil
	case int(tokError):
		return token{}, p.source.err
	}
	p.tokens.Consume()
	return p.source.token(t), nil
}

func (p *parser[K]) push(e expr.Expr[K]) {
	p.operands.Push(operand[K]{e: e})
}

// reduceWhile applies operators from the top of the stack while cond holds for the top one
func (p *parser[K]) reduceWhile(cond func(top tokenKind) bool) {
	for {
		top, ok := p.operators.Peek()
		if !ok || !cond(top.kind) {
			return
		}
		p.operators.Pop()
		p.reduce(top.kind)
	}
}

func (p *parser[K]) reduce(op tokenKind) {
	right, _ := p.operands.Pop()
	if op == tokNot {
		p.push(p.factory.Not(p.finish(right)))
		return
	}

	kind := expr.KindAnd
	if op == tokOr {
		kind = expr.KindOr
	}
	left, _ := p.operands.Pop()
	if left.parts != nil && left.kind == kind {
		left.parts = append(left.parts, p.finish(right))
		p.operands.Push(left)
		return
	}
	p.operands.Push(operand[K]{kind: kind, parts: []expr.Expr[K]{p.finish(left), p.finish(right)}})
}

func (p *parser[K]) finish(o operand[K]) expr.Expr[K] {
	if o.parts == nil {
		return o.e
	}
	if o.kind == expr.KindAnd {
		return p.factory.And(o.parts...)
	}
	return p.factory.Or(o.parts...)
}
