package token

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// Scanner turns source text into runes and tracks the location of the token
// being built.  The whole stream is read on construction, source files are
// small and the REPL feeds one line at a time.
type Scanner struct {
	file string
	src  []byte
	err  error

	start     int // byte offset of the current token
	startLine int
	startCol  int

	pos  int // byte offset just past the current rune
	line int
	col  int
	c    rune
}

// NewScanner reads r and returns a Scanner over its contents.  A read error
// is reported by the first call to ScanRune that reaches the end of the data
// read successfully.
func NewScanner(file string, r io.Reader) *Scanner {
	src, err := io.ReadAll(r)
	return &Scanner{
		file:      file,
		src:       src,
		err:       err,
		line:      1,
		startLine: 1,
		startCol:  1,
	}
}

// EmitToken returns a token containing the text scanned since the last call
// to EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore drops the text scanned since the last call to EmitToken or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.pos
	s.startLine = s.line
	s.startCol = s.col + 1
	if s.c == '\n' {
		s.startLine++
		s.startCol = 1
	}
}

// Text returns the text of the token being built.
func (s *Scanner) Text() string {
	return string(s.src[s.start:s.pos])
}

// Rune returns the last rune scanned.
func (s *Scanner) Rune() rune {
	return s.c
}

// Peek returns the next rune without scanning it.  The second result is
// false at the end of input or before an invalid utf-8 sequence.
func (s *Scanner) Peek() (rune, bool) {
	if s.pos >= len(s.src) {
		return 0, false
	}
	c, n := utf8.DecodeRune(s.src[s.pos:])
	if c == utf8.RuneError && n == 1 {
		return utf8.RuneError, false
	}
	return c, true
}

// ScanRune adds the next rune to the current token.  It returns io.EOF at
// the end of input.
func (s *Scanner) ScanRune() error {
	if s.pos >= len(s.src) {
		if s.err != nil {
			return s.err
		}
		return io.EOF
	}
	c, n := utf8.DecodeRune(s.src[s.pos:])
	if c == utf8.RuneError && n == 1 {
		return fmt.Errorf("%v: invalid utf-8 sequence in source text starting with byte %q", s.Loc(), s.src[s.pos])
	}
	if s.c == '\n' {
		s.line++
		s.col = 0
	}
	s.c = c
	s.pos += n
	s.col++
	return nil
}

// LocStart returns the location of the first rune of the current token.
func (s *Scanner) LocStart() *Location {
	return &Location{
		File: s.file,
		Pos:  s.start,
		Line: s.startLine,
		Col:  s.startCol,
	}
}

// Loc returns the location of the last rune scanned.
func (s *Scanner) Loc() *Location {
	return &Location{
		File: s.file,
		Pos:  s.pos,
		Line: s.line,
		Col:  s.col,
	}
}
