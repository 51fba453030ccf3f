/*
Package parser provides the reader for explang source text.

	expr     := '(' <expr>* ')' | '[' <expr>* ']' | <quoted> | <atom>
	quoted   := "'" <expr> | "#'" <expr>
	atom     := <number> | <string> | <keyword> | <symbol>
	number   := '-'? /[0-9]+/ <fraction>? <exponent>?
	fraction := '.' /[0-9]+/
	exponent := [eE] [+-]? /[0-9]+/
	string   := '"' <strcontent> '"' | '"""' /.../ '"""'
	keyword  := ':' <symbol>

The reader itself lives in package rdparser.
*/
package parser

import (
	"github.com/opsit-io/opsit-explang-core-sub000/parser/rdparser"
)

// NewReader returns the default reader.
func NewReader() *rdparser.Reader {
	return rdparser.NewReader()
}
