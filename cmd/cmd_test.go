package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/opsit-io/opsit-explang-core-sub000/internal/config"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp/lisplib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRuntime(t *testing.T, stdout *bytes.Buffer) *lisp.Runtime {
	rt, err := lisp.NewRuntime(lisp.WithStdout(stdout), lisp.WithLibrary(lisplib.LoadLibrary))
	require.NoError(t, err)
	return rt
}

func TestRunEval(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rt := testRuntime(t, &stdout)
	env := rt.NewEnv()

	src := `(defun sq (x) (* x x)) (print "side effect") (sq 4)`
	err := runEval(rt, env, "t", strings.NewReader(src), true, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "sq\nside effect\nnil\n16\n", stdout.String())
	assert.Empty(t, stderr.String())

	// definitions persist across sources
	stdout.Reset()
	err = runEval(rt, env, "t2", strings.NewReader("(sq 3)"), false, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())
}

func TestRunEvalError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rt := testRuntime(t, &stdout)
	err := runEval(rt, rt.NewEnv(), "t", strings.NewReader("(print 1) (car 1) (print 2)"), false, &stdout, &stderr)
	assert.ErrorIs(t, err, errFailed)
	assert.Equal(t, "1\n", stdout.String())
	assert.Equal(t, "t:1:11: argument is not a list: 1\n"+
		"Stack Trace [1 frames -- entrypoint last]:\n"+
		"  height 0: t:1:11: car\n", stderr.String())

	stderr.Reset()
	err = runEval(rt, rt.NewEnv(), "t", strings.NewReader("(print 1"), false, &stdout, &stderr)
	assert.ErrorIs(t, err, errFailed)
	assert.NotEmpty(t, stderr.String())
}

func TestWriteDoc(t *testing.T) {
	var stdout bytes.Buffer
	rt := testRuntime(t, &stdout)

	var buf bytes.Buffer
	require.NoError(t, writeDoc(&buf, rt.Registry, "", []string{"car"}))
	assert.Equal(t, "car (lis)\n  builtin function in group lang\n\n  Returns the first element of lis, or nil.\n", buf.String())

	buf.Reset()
	require.NoError(t, writeDoc(&buf, rt.Registry, "", []string{"if"}))
	assert.True(t, strings.HasPrefix(buf.String(), "if (test then &rest else)\n  builtin special-form in group lang\n"))

	buf.Reset()
	require.NoError(t, writeDoc(&buf, rt.Registry, "math", nil))
	assert.Contains(t, buf.String(), "sqrt (number)")
	assert.NotContains(t, buf.String(), "car (lis)")

	assert.Error(t, writeDoc(&buf, rt.Registry, "", []string{"no-such-thing"}))
}

func TestLoadSettings(t *testing.T) {
	defer func() { configFiles = nil }()
	configFiles = []string{"../internal/config/testdata/base.cue"}
	require.NoError(t, rootCmd.ParseFlags([]string{"--max-stack", "30"}))
	c, err := loadSettings(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, config.Interpreter{MissPolicy: "nil", MaxStackHeight: 30}, c.Interpreter)
	assert.Equal(t, "debug", c.Log.Level)
}
