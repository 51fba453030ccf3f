package repl

import (
	"bytes"
	"testing"

	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/rdparser"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rt, err := lisp.NewRuntime(lisp.WithStdout(&stdout), lisp.WithStderr(&stderr))
	require.NoError(t, err)
	s := &session{rt: rt, env: rt.NewEnv(), stdout: &stdout, stderr: &stderr}

	lines := []string{"(defun double (x)", "  (* 2 x))", "", "(double 21) (car 1)"}
	p := rdparser.NewInteractive(func() []*token.Token {
		if len(lines) == 0 {
			return []*token.Token{{Type: token.EOF}}
		}
		line := lines[0]
		lines = lines[1:]
		return lexLine(line)
	})
	for i := 0; i < 3; i++ {
		expr, err := p.ParseExpression()
		require.NoError(t, err)
		s.eval(expr)
	}
	assert.Equal(t, "double\n42\n", stdout.String())
	assert.Equal(t, "stdin:1:13: argument is not a list: 1\n"+
		"Stack Trace [1 frames -- entrypoint last]:\n"+
		"  height 0: stdin:1:13: car\n", stderr.String())

	_, err = p.ParseExpression()
	assert.Error(t, err)
}

func TestLexLine(t *testing.T) {
	toks := lexLine("(+ 1 2) ; sum")
	require.NotEmpty(t, toks)
	assert.Equal(t, token.PAREN_L, toks[0].Type)
	for _, tok := range toks {
		assert.NotEqual(t, token.EOF, tok.Type)
	}
	assert.Empty(t, lexLine(""))
}
