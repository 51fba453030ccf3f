package token

import "fmt"

// Token is a lexeme produced by the lexer.
type Token struct {
	Type   Type
	Text   string
	Source *Location
}

func (tok *Token) String() string {
	if tok.Type == EOF {
		return tok.Type.String()
	}
	return fmt.Sprintf("%s %q", tok.Type, tok.Text)
}

type Type uint

// Type constants used by the lexer and reader.
const (
	INVALID Type = iota
	ERROR
	EOF

	// Atomic expressions & literals
	SYMBOL
	INT
	FLOAT
	STRING
	STRING_RAW

	COMMENT

	// Operators
	NEGATIVE // arithmetic negation is parsed specially
	QUALIFY
	QUOTE
	FUNCTION

	// Delimiters
	PAREN_L
	PAREN_R
	BRACE_L
	BRACE_R

	numTokenTypes
)

var typeStrings = [numTokenTypes]string{
	INVALID:    "invalid",
	ERROR:      "error",
	EOF:        "EOF",
	SYMBOL:     "symbol",
	INT:        "int",
	FLOAT:      "float",
	STRING:     "string",
	STRING_RAW: "raw-string",
	COMMENT:    ";",
	NEGATIVE:   "-",
	QUALIFY:    ":",
	QUOTE:      "'",
	FUNCTION:   "#'",
	PAREN_L:    "(",
	PAREN_R:    ")",
	BRACE_L:    "[",
	BRACE_R:    "]",
}

func (typ Type) String() string {
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// Location is a position in a named source stream.
type Location struct {
	File string
	Pos  int // byte offset
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	if loc == nil {
		return "<native>"
	}
	switch {
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}
