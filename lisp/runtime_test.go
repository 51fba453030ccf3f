package lisp

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeOptions(t *testing.T) {
	var out, errout bytes.Buffer
	rt, err := NewRuntime(
		WithStdout(&out),
		WithStderr(&errout),
		WithMissPolicy(MissNil),
		WithMaximumStackHeight(10),
	)
	require.NoError(t, err)
	assert.Equal(t, &out, rt.Stdout)
	assert.Equal(t, &errout, rt.Stderr)
	assert.Equal(t, MissNil, rt.MissPolicy)
	assert.Equal(t, 10, rt.NewCallStack().MaxHeight)

	_, err = NewRuntime(WithMaximumStackHeight(-1))
	assert.Error(t, err)

	loaded := false
	_, err = NewRuntime(WithLibrary(func(rt *Runtime) error {
		loaded = true
		return rt.Registry.DefineBuiltin("test", "seven", "()", func(*CallStack, *LEnv, *ArgFrame) (*LVal, error) {
			return Int(7), nil
		}, "")
	}))
	require.NoError(t, err)
	assert.True(t, loaded)
}

func TestParseMissPolicy(t *testing.T) {
	p, err := ParseMissPolicy("nil")
	require.NoError(t, err)
	assert.Equal(t, MissNil, p)
	p, err = ParseMissPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MissError, p)
	_, err = ParseMissPolicy("ignore")
	assert.Error(t, err)
}

func TestRuntimeLoad(t *testing.T) {
	var out bytes.Buffer
	rt, err := NewRuntime(WithStdout(&out))
	require.NoError(t, err)
	env := rt.NewEnv()

	// Each expression is compiled after the previous one is evaluated, so
	// the call to sq is checked against its definition.
	v, err := rt.LoadString("test", "(defun sq (x) (* x x)) (print (sq 3)) (sq 4)", rt.NewCallStack(), env)
	require.NoError(t, err)
	assert.Equal(t, "16", v.String())
	assert.Equal(t, "9\n", out.String())

	path := filepath.Join(t.TempDir(), "prog.lisp")
	require.NoError(t, os.WriteFile(path, []byte("(sq 1) (return (sq 5))"), 0o644))
	v, err = rt.LoadFile(path, rt.NewCallStack(), env)
	require.NoError(t, err)
	assert.Equal(t, "25", v.String())

	v, err = rt.LoadString("empty", "", rt.NewCallStack(), env)
	require.NoError(t, err)
	assert.True(t, v.IsNil())

	_, err = rt.LoadString("test", "(car 1)", rt.NewCallStack(), env)
	require.Error(t, err)
	assert.Equal(t, "test:1:1: argument is not a list: 1", err.Error())
	assert.Equal(t, []string{"car"}, ErrorStack(err).Labels())

	_, err = rt.LoadString("test", "(car", rt.NewCallStack(), env)
	assert.Error(t, err)

	_, err = rt.LoadFile(filepath.Join(t.TempDir(), "missing.lisp"), rt.NewCallStack(), env)
	assert.Error(t, err)
}

func TestRuntimeGenSym(t *testing.T) {
	rt := StandardRuntime()
	assert.Equal(t, "gensym-1", rt.GenSym(""))
	assert.Equal(t, "tmp-2", rt.GenSym("tmp"))
	a, b := rt.GenEnvID(), rt.GenEnvID()
	assert.NotEqual(t, a, b)
}

func TestRegistry(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rt, err := NewRuntime(WithLogger(logger))
	require.NoError(t, err)
	reg := rt.Registry

	e := reg.Lookup("if")
	require.NotNil(t, e)
	assert.Equal(t, EntrySpecialForm, e.Kind)
	assert.True(t, e.Builtin)
	assert.Equal(t, "lang", e.Group)
	assert.Equal(t, "(test then &rest else)", e.Spec.String())

	e = reg.Lookup("car")
	require.NotNil(t, e)
	assert.Equal(t, EntryFunction, e.Kind)
	assert.Equal(t, "#<builtin car>", e.Fun.String())

	assert.Nil(t, reg.Lookup("no-such-function"))
	assert.False(t, reg.Remove("if"))
	assert.False(t, reg.Remove("no-such-function"))

	fn := func(*CallStack, *LEnv, *ArgFrame) (*LVal, error) { return Nil(), nil }
	assert.Error(t, reg.DefineBuiltin("test", "quote", "(x)", fn, ""))
	assert.Error(t, reg.DefineBuiltin("test", "bad", "(&foo)", fn, ""))

	require.NoError(t, reg.DefineBuiltin("test", "b", "()", fn, ""))
	require.NoError(t, reg.DefineBuiltin("test", "a", "()", fn, ""))
	entries := reg.Entries("test")
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)

	require.NoError(t, reg.DefineBuiltin("test", "a", "(x)", fn, ""))
	assert.Contains(t, logs.String(), "msg=redefining name=a")
	assert.Equal(t, "(x)", reg.Lookup("a").Spec.String())
	assert.True(t, reg.Remove("a"))
	assert.Len(t, reg.Entries("test"), 1)
	assert.Greater(t, len(reg.Entries("")), len(reg.Entries("lang")))
}
