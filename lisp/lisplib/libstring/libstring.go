// Package libstring provides string functions.
package libstring

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp/lisplib/internal/libutil"
)

// DefaultGroupName tags the functions defined by LoadLibrary.
const DefaultGroupName = "string"

// LoadLibrary adds the string functions to rt.
func LoadLibrary(rt *lisp.Runtime) error {
	return libutil.Define(rt, DefaultGroupName, builtins)
}

var builtins = []*libutil.Builtin{
	libutil.Function("format-string", "(format &rest values)", builtinFormat,
		"Replaces each {} in format with the next value.  Literal braces are written {{ and }}."),
	libutil.Function("string-join", `(lis &optional (separator ""))`, builtinJoin,
		"Concatenates a list of strings, separated by separator."),
	libutil.Function("string-split", "(s separator)", builtinSplit,
		"Returns the substrings of s between occurrences of separator."),
	libutil.Function("string-upcase", "(s)", stringFunc(strings.ToUpper),
		"Returns s with all letters mapped to upper case."),
	libutil.Function("string-downcase", "(s)", stringFunc(strings.ToLower),
		"Returns s with all letters mapped to lower case."),
	libutil.Function("string-trim", "(s &optional cutset)", builtinTrim,
		"Removes leading and trailing white space, or characters in cutset, from s."),
}

func builtinFormat(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	vals, err := libutil.Args(stack, args)
	if err != nil {
		return nil, err
	}
	format, err := libutil.Str(vals[0])
	if err != nil {
		return nil, err
	}
	fvals := vals[1].Cells
	parts, err := parseFormatString(format)
	if err != nil {
		return nil, lisp.ErrorConditionf("format-error", "%v", err)
	}
	var buf bytes.Buffer
	anonIndex := 0
	for _, p := range parts {
		if !p.directive {
			buf.WriteString(p.text)
			continue
		}
		if strings.TrimSpace(p.text) != "" {
			return nil, lisp.ErrorConditionf("format-error", "formatting directives must be empty")
		}
		if anonIndex >= len(fvals) {
			return nil, lisp.ErrorConditionf("format-error", "too many formatting directives for supplied values")
		}
		val := fvals[anonIndex]
		if val.Type == lisp.LString {
			buf.WriteString(val.Str)
		} else {
			buf.WriteString(val.String())
		}
		anonIndex++
	}
	return lisp.String(buf.String()), nil
}

type formatPart struct {
	text      string
	directive bool
}

// parseFormatString splits f into literal text and the contents of {}
// directives.
func parseFormatString(f string) ([]formatPart, error) {
	var parts []formatPart
	tokens := tokenizeFormatString(f)
	for len(tokens) > 0 {
		tok := tokens[0]
		switch tok.typ {
		case formatText:
			parts = append(parts, formatPart{text: tok.text})
			tokens = tokens[1:]
		case formatClose:
			if len(tokens) < 2 || tokens[1].typ != formatClose {
				return nil, fmt.Errorf("unexpected closing brace '}' outside of formatting directive")
			}
			parts = append(parts, formatPart{text: "}"})
			tokens = tokens[2:]
		case formatOpen:
			if len(tokens) < 2 {
				return nil, fmt.Errorf("unclosed formatting directive")
			}
			switch tokens[1].typ {
			case formatOpen:
				parts = append(parts, formatPart{text: "{"})
				tokens = tokens[2:]
			case formatClose:
				parts = append(parts, formatPart{directive: true})
				tokens = tokens[2:]
			default:
				if len(tokens) < 3 || tokens[2].typ != formatClose {
					return nil, fmt.Errorf("unclosed formatting directive")
				}
				parts = append(parts, formatPart{text: tokens[1].text, directive: true})
				tokens = tokens[3:]
			}
		}
	}
	return parts, nil
}

func tokenizeFormatString(f string) []formatToken {
	var tokens []formatToken
	for f != "" {
		i := strings.IndexAny(f, "{}")
		if i < 0 {
			return append(tokens, formatToken{formatText, f})
		}
		if i > 0 {
			tokens = append(tokens, formatToken{formatText, f[:i]})
			f = f[i:]
		}
		if f[0] == '{' {
			tokens = append(tokens, formatToken{formatOpen, "{"})
		} else {
			tokens = append(tokens, formatToken{formatClose, "}"})
		}
		f = f[1:]
	}
	return tokens
}

type formatTokenType uint

const (
	formatText formatTokenType = iota
	formatOpen
	formatClose
)

type formatToken struct {
	typ  formatTokenType
	text string
}

func builtinJoin(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	vals, err := libutil.Args(stack, args)
	if err != nil {
		return nil, err
	}
	if !vals[0].IsSeq() {
		return nil, lisp.Errorf("argument is not a list: %v", vals[0].Type)
	}
	sep, err := libutil.Str(vals[1])
	if err != nil {
		return nil, err
	}
	strs := make([]string, len(vals[0].Cells))
	for i, v := range vals[0].Cells {
		if strs[i], err = libutil.Str(v); err != nil {
			return nil, err
		}
	}
	return lisp.String(strings.Join(strs, sep)), nil
}

func builtinSplit(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	vals, err := libutil.Args(stack, args)
	if err != nil {
		return nil, err
	}
	s, err := libutil.Str(vals[0])
	if err != nil {
		return nil, err
	}
	sep, err := libutil.Str(vals[1])
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	cells := make([]*lisp.LVal, len(parts))
	for i, p := range parts {
		cells[i] = lisp.String(p)
	}
	return lisp.List(cells...), nil
}

func stringFunc(fn func(string) string) lisp.LBuiltin {
	return func(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
		v, err := args.Get(stack, 0)
		if err != nil {
			return nil, err
		}
		s, err := libutil.Str(v)
		if err != nil {
			return nil, err
		}
		return lisp.String(fn(s)), nil
	}
}

func builtinTrim(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	vals, err := libutil.Args(stack, args)
	if err != nil {
		return nil, err
	}
	s, err := libutil.Str(vals[0])
	if err != nil {
		return nil, err
	}
	if vals[1].IsNil() {
		return lisp.String(strings.TrimSpace(s)), nil
	}
	cutset, err := libutil.Str(vals[1])
	if err != nil {
		return nil, err
	}
	return lisp.String(strings.Trim(s, cutset)), nil
}
