// Package libregexp provides regular expressions.
package libregexp

import (
	"regexp"

	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp/lisplib/internal/libutil"
)

// DefaultGroupName tags the functions defined by LoadLibrary.
const DefaultGroupName = "regexp"

// LoadLibrary adds the regexp functions to rt.
func LoadLibrary(rt *lisp.Runtime) error {
	return libutil.Define(rt, DefaultGroupName, builtins)
}

var builtins = []*libutil.Builtin{
	libutil.Function("regexp-compile", "(pattern)", BuiltinCompile,
		"Compiles a regular expression in RE2 syntax."),
	libutil.Function("regexp-pattern", "(re)", BuiltinPattern,
		"Returns the source pattern of a compiled regular expression."),
	libutil.Function("regexp-match?", "(&pipe re text)", BuiltinIsMatch,
		"Returns true if text contains a match of re.  A string re is compiled first."),
	libutil.Function("regexp-find-all", "(re text &optional (n -1))", BuiltinFindAll,
		"Returns at most n matches of re in text, every match when n is negative."),
}

// BuiltinCompile compiles a pattern into a native regexp value.
func BuiltinCompile(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	patt, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	re, err := compile(patt)
	if err != nil {
		return nil, err
	}
	return lisp.Native(re), nil
}

// BuiltinPattern returns the pattern of a regexp.
func BuiltinPattern(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	re, err := getRegexp(v)
	if err != nil {
		return nil, err
	}
	return lisp.String(re.String()), nil
}

// BuiltinIsMatch tests text against a regexp.
func BuiltinIsMatch(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	vals, err := libutil.Args(stack, args)
	if err != nil {
		return nil, err
	}
	re, err := getRegexp(vals[0])
	if err != nil {
		return nil, err
	}
	text, err := libutil.Str(vals[1])
	if err != nil {
		return nil, err
	}
	return lisp.Bool(re.MatchString(text)), nil
}

// BuiltinFindAll returns the matches of a regexp in text.
func BuiltinFindAll(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	vals, err := libutil.Args(stack, args)
	if err != nil {
		return nil, err
	}
	re, err := getRegexp(vals[0])
	if err != nil {
		return nil, err
	}
	text, err := libutil.Str(vals[1])
	if err != nil {
		return nil, err
	}
	if vals[2].Type != lisp.LInt {
		return nil, lisp.Errorf("argument is not an integer: %v", vals[2].Type)
	}
	matches := re.FindAllString(text, vals[2].Int)
	cells := make([]*lisp.LVal, len(matches))
	for i, m := range matches {
		cells[i] = lisp.String(m)
	}
	return lisp.List(cells...), nil
}

func compile(patt *lisp.LVal) (*regexp.Regexp, error) {
	s, err := libutil.Str(patt)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(s)
	if err != nil {
		return nil, lisp.ErrorConditionf("invalid-regexp-pattern", "%v", err)
	}
	return re, nil
}

// getRegexp accepts a compiled regexp or a pattern string.
func getRegexp(v *lisp.LVal) (*regexp.Regexp, error) {
	switch v.Type {
	case lisp.LString:
		return compile(v)
	case lisp.LNative:
		if re, ok := v.Native.(*regexp.Regexp); ok {
			return re, nil
		}
	}
	return nil, lisp.Errorf("argument is not a regexp: %v", v)
}
