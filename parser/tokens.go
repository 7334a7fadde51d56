package parser

import (
	"github.com/antlr4-go/antlr/v4"
)

// tokenSource feeds the tokens of a lexer to an antlr token stream. A lexing error
// becomes a tokError token followed by end of input, so the parser reports it only
// once it reaches that point of the source.
type tokenSource struct {
	*antlr.BaseLexer
	lex *lexer
	err error
}

func newTokenStream(src string) (*antlr.CommonTokenStream, *tokenSource) {
	lex := newLexer(src)
	source := &tokenSource{BaseLexer: antlr.NewBaseLexer(lex.input), lex: lex}
	return antlr.NewCommonTokenStream(source, antlr.TokenDefaultChannel), source
}

func (s *tokenSource) NextToken() antlr.Token {
	if s.err != nil {
		return s.emit(token{kind: tokEOF, pos: s.lex.pos()})
	}
	tok, err := s.lex.next()
	if err != nil {
		s.err = err
		return s.emit(token{kind: tokError, pos: s.lex.pos()})
	}
	return s.emit(tok)
}

// GetLine and GetCharPositionInLine replace the BaseLexer ones, which need an ATN
// interpreter
func (s *tokenSource) GetLine() int {
	return s.lex.line
}

func (s *tokenSource) GetCharPositionInLine() int {
	return s.lex.pos().column - 1
}

func (s *tokenSource) emit(tok token) antlr.Token {
	ttype := int(tok.kind)
	if tok.kind == tokEOF {
		ttype = antlr.TokenEOF
	}
	text := tok.text
	if tok.kind == tokName {
		text = tok.name
	}
	return antlr.CommonTokenFactoryDEFAULT.Create(&antlr.TokenSourceCharStreamPair{}, ttype, text,
		antlr.TokenDefaultChannel, tok.pos.offset, s.lex.input.Index()-1, tok.pos.line, tok.pos.column-1)
}

// token converts t back into the parser's view of it. The text of a name token is
// the decoded name, its source text is read back from the input.
func (s *tokenSource) token(t antlr.Token) token {
	tok := token{
		kind: tokenKind(t.GetTokenType()),
		pos:  position{offset: t.GetStart(), line: t.GetLine(), column: t.GetColumn() + 1},
	}
	switch {
	case t.GetTokenType() == antlr.TokenEOF:
		tok.kind = tokEOF
	case tok.kind == tokName:
		tok.name = t.GetText()
		tok.text = s.lex.input.GetText(t.GetStart(), t.GetStop())
	default:
		tok.text = t.GetText()
	}
	return tok
}
