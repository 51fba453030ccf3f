package rdparser

import (
	"sync"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/ast"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

// Interactive parses one expression at a time, calling Read whenever more
// tokens are needed.  A REPL's Read typically reads and lexes one line.
type Interactive struct {
	Read TokenGenerator
	buf  []*token.Token
	mut  sync.Mutex
	p    *Parser

	parsing bool
}

// NewInteractive initializes and returns a new Interactive parser.
func NewInteractive(read TokenGenerator) *Interactive {
	p := &Interactive{Read: read}
	p.p = NewFromSource(NewTokenStreamSource(p.read))
	return p
}

// IsParsing returns true if p is in the middle of parsing an expression.
// Read functions call it to choose between the primary and continuation
// prompts.  IsParsing may be called when p is nil.
func (p *Interactive) IsParsing() bool {
	if p == nil {
		return false
	}
	return p.parsing
}

// read is called with p.mut held.
func (p *Interactive) read() []*token.Token {
	if len(p.buf) == 0 {
		p.parsing = p.p.IsParsing()
		p.buf = p.Read()
	}
	if len(p.buf) == 0 {
		return nil
	}
	tok := p.buf[0]
	p.buf = p.buf[1:]
	return []*token.Token{tok}
}

// ParseExpression parses one expression from the token stream.  If a parse
// error is encountered any buffered tokens (presumably from the current tty
// line) are discarded so corrected source can be re-read.
func (p *Interactive) ParseExpression() (ast.Node, error) {
	p.mut.Lock()
	defer p.mut.Unlock()
	p.parsing = false
	expr, err := p.p.ParseExpression()
	if err != nil {
		p.buf = nil
		p.p = NewFromSource(NewTokenStreamSource(p.read))
		return nil, err
	}
	return expr, nil
}
