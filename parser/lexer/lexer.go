// Package lexer splits source text into tokens for the reader.
package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

const miscWordRunes = "0123456789" + miscWordSymbols
const miscWordSymbols = "._+-*/=<>!&~%?$^"

// Lexer produces tokens from a token.Scanner.
type Lexer struct {
	scanner *token.Scanner
	ch      rune // current unicode rune
	readErr error
}

// New returns a Lexer reading runes from s.
func New(s *token.Scanner) *Lexer {
	return &Lexer{scanner: s}
}

// NextToken returns the next token in the stream.  After the end of input
// every call returns an EOF token.  Scanning problems are returned as ERROR
// or INVALID tokens whose text describes the problem.
func (lex *Lexer) NextToken() *token.Token {
	if lex.readErr != nil {
		return lex.emitError(lex.readErr, true)
	}
	lex.readErr = lex.skipWhitespace()
	if lex.readErr != nil {
		return lex.emitError(lex.readErr, true)
	}
	if lex.readChar() != nil {
		return lex.emitError(lex.readErr, true)
	}
	switch lex.ch {
	case '(':
		return lex.scanner.EmitToken(token.PAREN_L)
	case ')':
		return lex.scanner.EmitToken(token.PAREN_R)
	case '[':
		return lex.scanner.EmitToken(token.BRACE_L)
	case ']':
		return lex.scanner.EmitToken(token.BRACE_R)
	case ':':
		return lex.scanner.EmitToken(token.QUALIFY)
	case '\'':
		return lex.scanner.EmitToken(token.QUOTE)
	case ';':
		return lex.readComment()
	case '#':
		if lex.readChar() != nil {
			return lex.emitError(lex.readErr, false)
		}
		if lex.ch == '\'' {
			return lex.scanner.EmitToken(token.FUNCTION)
		}
		return lex.errorf("invalid meta character %q", lex.ch)
	case '-':
		if isDigit(lex.peekRune()) {
			return lex.scanner.EmitToken(token.NEGATIVE)
		}
		return lex.readSymbol()
	case '"':
		return lex.readString()
	default:
		if isDigit(lex.ch) {
			return lex.readNumber()
		}
		if isWordStart(lex.ch) {
			return lex.readSymbol()
		}
		lex.readErr = fmt.Errorf("unexpected text starting with %q", lex.ch)
		return lex.emit(token.INVALID, lex.readErr.Error())
	}
}

func (lex *Lexer) emit(typ token.Type, text string) *token.Token {
	tok := &token.Token{
		Type:   typ,
		Text:   text,
		Source: lex.scanner.LocStart(),
	}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitError(err error, expectEOF bool) *token.Token {
	if err == io.EOF {
		if expectEOF {
			return lex.emit(token.EOF, "")
		}
		return lex.emit(token.ERROR, "unexpected EOF")
	}
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) *token.Token {
	return lex.emitError(fmt.Errorf(format, v...), false)
}

func (lex *Lexer) readComment() *token.Token {
	for lex.peekRune() != '\n' {
		err := lex.readChar()
		if err == io.EOF {
			return lex.scanner.EmitToken(token.COMMENT)
		}
		if err != nil {
			return lex.emitError(err, false)
		}
	}
	if lex.readChar() != nil {
		return lex.emitError(lex.readErr, false)
	}
	return lex.scanner.EmitToken(token.COMMENT)
}

func (lex *Lexer) readSymbol() *token.Token {
	for isWord(lex.peekRune()) {
		if lex.readChar() != nil {
			return lex.emitError(lex.readErr, false)
		}
	}
	return lex.scanner.EmitToken(token.SYMBOL)
}

// readString scans "..." and the raw form """...""".  Escapes are checked
// by the reader.
func (lex *Lexer) readString() *token.Token {
	n := 0
	for lex.peekRune() != '"' {
		n++
		if lex.readChar() != nil {
			return lex.emitError(lex.readErr, false)
		}
		switch lex.ch {
		case '\n':
			return lex.errorf("unterminated string literal")
		case '\\':
			if lex.readChar() != nil {
				return lex.emitError(lex.readErr, false)
			}
		}
	}
	if lex.readChar() != nil {
		return lex.emitError(lex.readErr, false)
	}
	if n > 0 || lex.peekRune() != '"' {
		return lex.scanner.EmitToken(token.STRING)
	}
	// A third quote opens a raw string.
	if lex.readChar() != nil {
		return lex.emitError(lex.readErr, false)
	}
	quotes := 0
	for quotes < 3 {
		if lex.readChar() != nil {
			return lex.emitError(lex.readErr, false)
		}
		if lex.ch == '"' {
			quotes++
		} else {
			quotes = 0
		}
	}
	return lex.scanner.EmitToken(token.STRING_RAW)
}

func (lex *Lexer) readNumber() *token.Token {
	lex.readDigits()
	switch lex.peekRune() {
	case '.':
		lex.readChar()
		if !isDigit(lex.peekRune()) {
			return lex.errorf("invalid floating point literal: %v", lex.scanner.Text())
		}
		lex.readDigits()
		if r := lex.peekRune(); r == 'e' || r == 'E' {
			lex.readChar()
			return lex.readFloatExponent()
		}
		return lex.scanner.EmitToken(token.FLOAT)
	case 'e', 'E':
		lex.readChar()
		return lex.readFloatExponent()
	}
	// the text may overflow an int, the reader reports that
	return lex.scanner.EmitToken(token.INT)
}

func (lex *Lexer) readFloatExponent() *token.Token {
	switch lex.peekRune() {
	case '+', '-':
		lex.readChar()
	}
	if !isDigit(lex.peekRune()) {
		return lex.errorf("invalid floating point literal: %v", lex.scanner.Text())
	}
	lex.readDigits()
	return lex.scanner.EmitToken(token.FLOAT)
}

func (lex *Lexer) readDigits() {
	for isDigit(lex.peekRune()) {
		if lex.readChar() != nil {
			return
		}
	}
}

func (lex *Lexer) skipWhitespace() error {
	for unicode.IsSpace(lex.peekRune()) {
		err := lex.readChar()
		if err != nil {
			return err
		}
	}
	lex.scanner.Ignore()
	return nil
}

func (lex *Lexer) peekRune() rune {
	r, _ := lex.scanner.Peek()
	return r
}

func (lex *Lexer) readChar() error {
	lex.readErr = lex.scanner.ScanRune()
	if lex.readErr != nil {
		return lex.readErr
	}
	lex.ch = lex.scanner.Rune()
	return nil
}

func isWordStart(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(miscWordSymbols, c)
}

func isWord(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(miscWordRunes, c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
