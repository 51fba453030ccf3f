// Package lisptest runs table driven tests of lisp expressions.
package lisptest

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp/lisplib"
)

// TestSequence is a sequence of lisp expressions which are evaluated
// sequentially in one environment.
type TestSequence []struct {
	Expr   string // a lisp expression
	Result string // the evaluated result, or the message of the error raised
	Output string // text written to standard output and standard error
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// NewRuntime returns a runtime with the standard library loaded which
// writes both output streams to w.  Config is applied after the defaults.
func NewRuntime(w io.Writer, config ...lisp.Config) (*lisp.Runtime, error) {
	opts := []lisp.Config{
		lisp.WithStdout(w),
		lisp.WithStderr(w),
		lisp.WithLibrary(lisplib.LoadLibrary),
	}
	return lisp.NewRuntime(append(opts, config...)...)
}

// EvalString reads a single expression from source and evaluates it.  The
// result is printed, an error is rendered as its message.
func EvalString(rt *lisp.Runtime, env *lisp.LEnv, source string) (string, error) {
	exprs, err := rt.Reader.Read("test", strings.NewReader(source))
	if err != nil {
		return "", err
	}
	if len(exprs) != 1 {
		return "", lisp.Errorf("expected one expression (got %d)", len(exprs))
	}
	stack := rt.NewCallStack()
	v, err := rt.EvalSyntax(exprs[0], stack, env)
	if stack.Height() != 0 {
		return "", lisp.Errorf("stack not empty after evaluation: %d frames", stack.Height())
	}
	if err != nil {
		return lisp.ErrorMessage(err), nil
	}
	return v.String(), nil
}

// RunTestSuite runs each TestSequence in tests in a fresh runtime.
func RunTestSuite(t *testing.T, tests TestSuite, config ...lisp.Config) {
	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			var out bytes.Buffer
			rt, err := NewRuntime(&out, config...)
			require.NoError(t, err)
			env := rt.NewEnv()
			for j, expr := range test.TestSequence {
				out.Reset()
				result, err := EvalString(rt, env, expr.Expr)
				if !assert.NoError(t, err, "expr %d: %s", j, expr.Expr) {
					continue
				}
				assert.Equal(t, expr.Result, result, "expr %d: %s", j, expr.Expr)
				assert.Equal(t, expr.Output, out.String(), "expr %d output: %s", j, expr.Expr)
			}
		})
	}
}
