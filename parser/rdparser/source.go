package rdparser

import (
	"github.com/opsit-io/opsit-explang-core-sub000/parser/lexer"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

// TokenGenerator returns the next batch of tokens of a stream.  A generator
// signals the end of its stream with an EOF token.
type TokenGenerator func() []*token.Token

// TokenSource is a one token lookahead buffer over a token stream.
type TokenSource struct {
	next  func() *token.Token
	Token *token.Token
	Peek  *token.Token
}

// NewTokenSource initializes and returns a TokenSource that scans tokens from
// scanner.
func NewTokenSource(scanner *token.Scanner) *TokenSource {
	lex := lexer.New(scanner)
	return &TokenSource{next: lex.NextToken}
}

// NewTokenStreamSource returns a TokenSource that pulls tokens from gen.
func NewTokenStreamSource(gen TokenGenerator) *TokenSource {
	var buf []*token.Token
	s := &TokenSource{}
	s.next = func() *token.Token {
		for len(buf) == 0 {
			buf = gen()
		}
		tok := buf[0]
		buf = buf[1:]
		return tok
	}
	return s
}

// AcceptType scans the next token when it has one of the given types.
func (s *TokenSource) AcceptType(typ ...token.Type) bool {
	s.fill()
	for _, typ := range typ {
		if s.Peek.Type == typ {
			s.scan()
			return true
		}
	}
	return false
}

// Scan advances the source.  Scan returns false once the end of the stream
// is reached.
func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek
		return false
	}
	s.scan()
	return true
}

// PeekType returns the type of the next token.
func (s *TokenSource) PeekType() token.Type {
	s.fill()
	return s.Peek.Type
}

// IsEOF reports whether the stream is exhausted.
func (s *TokenSource) IsEOF() bool {
	return s.PeekType() == token.EOF
}

func (s *TokenSource) fill() {
	if s.Peek == nil {
		s.Peek = s.next()
	}
}

func (s *TokenSource) scan() {
	s.fill()
	s.Token = s.Peek
	s.Peek = nil
	if s.Token.Type != token.EOF {
		// stream sources read lazily so a REPL does not block on the token
		// following a complete expression
		return
	}
	s.Peek = s.Token
}
