// Package rdparser is a recursive-descent reader producing ast.Node trees.
package rdparser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/ast"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

// SyntaxError is a structural problem that stops reading.  Incomplete is
// true when the stream ended inside an unfinished expression.
type SyntaxError struct {
	Source     *token.Location
	Msg        string
	Incomplete bool
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %s", err.Source, err.Msg)
}

// Condition returns the error category used by catch clauses.
func (err *SyntaxError) Condition() string {
	return "syntax-error"
}

// Reader parses whole source streams.
type Reader struct{}

// NewReader returns a Reader to use in a lisp.Runtime.
func NewReader() *Reader {
	return &Reader{}
}

// Read parses every expression in r.
func (*Reader) Read(name string, r io.Reader) ([]ast.Node, error) {
	return New(token.NewScanner(name, r)).ParseProgram()
}

// Parser is a lisp reader.
type Parser struct {
	src   *TokenSource
	depth int
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	return NewFromSource(NewTokenSource(scanner))
}

// NewFromSource returns a Parser reading tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{src: src}
}

// ParseProgram parses expressions until the end of the stream.
func (p *Parser) ParseProgram() ([]ast.Node, error) {
	var exprs []ast.Node
	for {
		p.skipComments()
		if p.src.IsEOF() {
			return exprs, nil
		}
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
}

// ParseExpression parses a single expression.
func (p *Parser) ParseExpression() (ast.Node, error) {
	p.skipComments()
	switch p.src.PeekType() {
	case token.INT:
		return p.ParseLiteralInt(), nil
	case token.FLOAT:
		return p.ParseLiteralFloat(), nil
	case token.STRING:
		return p.ParseLiteralString(), nil
	case token.STRING_RAW:
		return p.ParseLiteralStringRaw(), nil
	case token.NEGATIVE:
		return p.ParseNegative()
	case token.QUOTE:
		return p.parsePrefixed(token.QUOTE, "quote")
	case token.FUNCTION:
		return p.parsePrefixed(token.FUNCTION, "function")
	case token.SYMBOL:
		return p.ParseSymbol()
	case token.QUALIFY:
		return p.ParseKeyword()
	case token.PAREN_L:
		return p.parseSequence(token.PAREN_L, token.PAREN_R, false)
	case token.BRACE_L:
		return p.parseSequence(token.BRACE_L, token.BRACE_R, true)
	case token.EOF:
		p.src.Scan()
		return nil, p.incomplete("unexpected EOF")
	case token.ERROR, token.INVALID:
		p.src.Scan()
		return nil, p.errorf("%s", p.src.Token.Text)
	default:
		p.src.Scan()
		return nil, p.errorf("unexpected %s", p.src.Token.Type)
	}
}

// ParseLiteralInt parses an integer.  Overflow is recorded on the leaf.
func (p *Parser) ParseLiteralInt() *ast.Leaf {
	p.src.Scan()
	tok := p.src.Token
	leaf := &ast.Leaf{Kind: ast.Int, Source: tok.Source}
	text := strings.TrimPrefix(tok.Text, "-")
	if strings.HasPrefix(text, "0") && text != "0" {
		leaf.Err = fmt.Errorf("integer literal starts with 0: %v", tok.Text)
		return leaf
	}
	x, err := strconv.Atoi(tok.Text)
	if err != nil {
		leaf.Err = fmt.Errorf("integer literal overflows int: %v", tok.Text)
		return leaf
	}
	leaf.Int = x
	return leaf
}

// ParseLiteralFloat parses a floating point number.
func (p *Parser) ParseLiteralFloat() *ast.Leaf {
	p.src.Scan()
	tok := p.src.Token
	leaf := &ast.Leaf{Kind: ast.Float, Source: tok.Source}
	x, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		leaf.Err = fmt.Errorf("invalid floating point literal: %v", tok.Text)
		return leaf
	}
	leaf.Float = x
	return leaf
}

// ParseLiteralString parses a quoted string, decoding escapes.
func (p *Parser) ParseLiteralString() *ast.Leaf {
	p.src.Scan()
	tok := p.src.Token
	leaf := &ast.Leaf{Kind: ast.String, Source: tok.Source}
	s, err := strconv.Unquote(tok.Text)
	if err != nil {
		leaf.Err = fmt.Errorf("invalid string literal: %v", tok.Text)
		return leaf
	}
	leaf.Text = s
	return leaf
}

// ParseLiteralStringRaw parses a """raw""" string.
func (p *Parser) ParseLiteralStringRaw() *ast.Leaf {
	p.src.Scan()
	tok := p.src.Token
	return &ast.Leaf{Kind: ast.String, Text: tok.Text[3 : len(tok.Text)-3], Source: tok.Source}
}

// ParseNegative folds a minus sign into the number that follows it.
func (p *Parser) ParseNegative() (ast.Node, error) {
	p.src.Scan()
	neg := p.src.Token
	switch p.src.PeekType() {
	case token.INT, token.FLOAT:
		p.src.Peek.Source = neg.Source
		p.src.Peek.Text = "-" + p.src.Peek.Text
		return p.ParseExpression()
	}
	return nil, p.errorf("unexpected %s", neg.Type)
}

// ParseSymbol parses a symbol.  A colon immediately following the symbol
// joins the next symbol into a qualified name.
func (p *Parser) ParseSymbol() (ast.Node, error) {
	p.src.Scan()
	tok := p.src.Token
	name := tok.Text
	end := tok.Source.Pos + len(tok.Text)
	for p.src.PeekType() == token.QUALIFY && p.src.Peek.Source.Pos == end {
		p.src.Scan()
		if !p.src.AcceptType(token.SYMBOL) {
			p.src.Scan()
			return nil, p.errorf("unexpected %s", p.src.Token.Type)
		}
		name += ":" + p.src.Token.Text
		end = p.src.Token.Source.Pos + len(p.src.Token.Text)
	}
	return ast.NewSymbol(name, tok.Source), nil
}

// ParseKeyword parses :name.
func (p *Parser) ParseKeyword() (ast.Node, error) {
	p.src.Scan()
	colon := p.src.Token
	if !p.src.AcceptType(token.SYMBOL) {
		p.src.Scan()
		return nil, p.errorf("unexpected %s", p.src.Token.Type)
	}
	return ast.NewKeyword(p.src.Token.Text, colon.Source), nil
}

func (p *Parser) parsePrefixed(typ token.Type, head string) (ast.Node, error) {
	p.src.Scan()
	tok := p.src.Token
	p.depth++
	defer func() { p.depth-- }()
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewList(tok.Source, ast.NewSymbol(head, tok.Source), expr), nil
}

func (p *Parser) parseSequence(open, close token.Type, literal bool) (ast.Node, error) {
	p.src.Scan()
	tok := p.src.Token
	p.depth++
	defer func() { p.depth-- }()
	list := &ast.List{Literal: literal, Source: tok.Source}
	for {
		p.skipComments()
		switch p.src.PeekType() {
		case token.EOF:
			p.src.Scan()
			return nil, &SyntaxError{Source: tok.Source, Msg: "unmatched " + open.String(), Incomplete: true}
		case close:
			p.src.Scan()
			return list, nil
		}
		x, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		list.Children = append(list.Children, x)
	}
}

// IsParsing reports whether p is inside an unfinished expression.
func (p *Parser) IsParsing() bool {
	return p.depth > 0
}

func (p *Parser) skipComments() {
	for p.src.AcceptType(token.COMMENT) {
	}
}

func (p *Parser) errorf(format string, v ...interface{}) error {
	return &SyntaxError{Source: p.src.Token.Source, Msg: fmt.Sprintf(format, v...)}
}

func (p *Parser) incomplete(msg string) error {
	return &SyntaxError{Source: p.src.Token.Source, Msg: msg, Incomplete: true}
}
