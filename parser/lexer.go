package parser

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/antlr4-go/antlr/v4"
	"github.com/cottand/boolex/expr"
	"github.com/cottand/boolex/rwerr"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokTrue
	tokFalse
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokError
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokName:
		return "name"
	case tokTrue, tokFalse:
		return "literal"
	case tokAnd:
		return "'&&'"
	case tokOr:
		return "'||'"
	case tokNot:
		return "'!'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokError:
		return "invalid token"
	default:
		return "token(" + strconv.Itoa(int(k)) + ")"
	}
}

type position struct {
	offset, line, column int
}

type token struct {
	kind tokenKind
	// text is the source text of the token, quotes included
	text string
	// name is the variable name of a tokName, quotes removed
	name string
	pos  position
}

// lexer splits the input into tokens. It reads runes through an antlr character
// stream, which tracks the rune offset for error positions.
type lexer struct {
	input *antlr.InputStream
	line  int
	// lineStart is the offset of the first rune of the current line
	lineStart int
}

func newLexer(src string) *lexer {
	return &lexer{input: antlr.NewInputStream(src), line: 1}
}

func (l *lexer) peek() rune {
	return rune(l.input.LA(1))
}

func (l *lexer) atEOF() bool {
	return l.input.LA(1) == antlr.TokenEOF
}

func (l *lexer) advance() rune {
	r := l.peek()
	l.input.Consume()
	if r == '\n' {
		l.line++
		l.lineStart = l.input.Index()
	}
	return r
}

func (l *lexer) pos() position {
	return position{offset: l.input.Index(), line: l.line, column: l.input.Index() - l.lineStart + 1}
}

func (l *lexer) text(from position) string {
	return l.input.GetText(from.offset, l.input.Index()-1)
}

func (l *lexer) next() (token, error) {
	for !l.atEOF() && unicode.IsSpace(l.peek()) {
		l.advance()
	}
	start := l.pos()
	if l.atEOF() {
		return token{kind: tokEOF, pos: start}, nil
	}

	tok := token{pos: start}
	switch r := l.advance(); {
	case r == '(':
		tok.kind = tokLParen
	case r == ')':
		tok.kind = tokRParen
	case r == '!' || r == '~':
		tok.kind = tokNot
	case r == '&' || r == '|':
		// && and & are both accepted, same for || and |
		if l.peek() == r {
			l.advance()
		}
		tok.kind = tokAnd
		if r == '|' {
			tok.kind = tokOr
		}
	case r == '"' || r == '\'':
		name, err := l.quoted(r, start)
		if err != nil {
			return token{}, err
		}
		tok.kind, tok.name = tokName, name
	case expr.IsNameRune(r):
		for !l.atEOF() && expr.IsNameRune(l.peek()) {
			l.advance()
		}
		word := l.text(start)
		switch strings.ToLower(word) {
		case "and":
			tok.kind = tokAnd
		case "or":
			tok.kind = tokOr
		case "not":
			tok.kind = tokNot
		case "true":
			tok.kind = tokTrue
		case "false":
			tok.kind = tokFalse
		default:
			tok.kind, tok.name = tokName, word
		}
	default:
		return token{}, syntaxError(start, string(r), "unexpected character")
	}
	tok.text = l.text(start)
	return tok, nil
}

// quoted reads the rest of a name opened by quote. Double quoted names use Go string
// escapes, single quoted names only escape the quote and the backslash.
func (l *lexer) quoted(quote rune, start position) (string, error) {
	escaped := false
	for {
		if l.atEOF() {
			return "", syntaxError(start, l.text(start), "unterminated quoted name")
		}
		r := l.advance()
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == quote:
			raw := l.text(start)
			if quote == '"' {
				name, err := strconv.Unquote(raw)
				if err != nil {
					return "", syntaxError(start, raw, "invalid escape in quoted name")
				}
				return name, nil
			}
			return unescapeSingle(raw[1 : len(raw)-1]), nil
		}
	}
}

func unescapeSingle(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	sb := strings.Builder{}
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		sb.WriteRune(r)
	}
	return sb.String()
}

func syntaxError(at position, text, msg string) error {
	return rwerr.New(rwerr.Syntax{
		Offset:  at.offset,
		Line:    at.line,
		Column:  at.column,
		Token:   text,
		Message: msg,
	})
}
