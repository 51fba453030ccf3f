package lisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvReplace(t *testing.T) {
	rt := StandardRuntime()
	root := rt.NewEnv()
	child := NewEnv(root)
	inner := NewEnv(child)

	inner.Replace("x", Int(1))
	_, ok, _ := child.Lookup("x")
	assert.False(t, ok, "replace created the binding outside the innermost frame")
	v, err := inner.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())

	inner.GlobalReplace("y", Int(2))
	v, ok, _ = root.Lookup("y")
	require.True(t, ok)
	assert.Equal(t, "2", v.String())
	assert.NotContains(t, inner.Scope, "y")

	// an existing binding is mutated where it lives
	require.NoError(t, child.Define("z", Int(3)))
	inner.Replace("z", Int(4))
	inner.GlobalReplace("z", Int(5))
	assert.Equal(t, "5", child.Scope["z"].String())
	assert.NotContains(t, root.Scope, "z")
	assert.NotContains(t, inner.Scope, "z")
}

func TestEnvRemove(t *testing.T) {
	rt := StandardRuntime()
	root := rt.NewEnv()
	child := NewEnv(root)
	root.Replace("x", Int(1))
	require.NoError(t, child.Define("x", Int(2)))

	assert.True(t, child.Contains("x"))
	assert.True(t, child.Remove("x"))
	assert.False(t, child.Contains("x"))
	assert.False(t, root.Contains("x"))
	assert.False(t, child.Remove("x"))
}

func TestEnvDefine(t *testing.T) {
	env := StandardRuntime().NewEnv()
	require.NoError(t, env.Define("x", Int(1)))
	err := env.Define("x", Int(2))
	require.Error(t, err)
	assert.Equal(t, "internal-error", ErrorCondition(err))
	assert.Equal(t, "1", env.Scope["x"].String())

	// shadowing in a child frame is fine
	assert.NoError(t, NewEnv(env).Define("x", Int(3)))
}

func TestEnvMissPolicy(t *testing.T) {
	rt := StandardRuntime()
	env := rt.NewEnv()
	_, err := env.Get("nope")
	var uerr *UnboundError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "variable does not exist: nope", err.Error())
	assert.Equal(t, "unbound-variable", ErrorCondition(err))

	rt.MissPolicy = MissNil
	v, err := env.Get("nope")
	require.NoError(t, err)
	assert.True(t, v.IsNil())
	_, ok, _ := env.Lookup("nope")
	assert.False(t, ok)
}

func TestEnvProps(t *testing.T) {
	rt := StandardRuntime()
	root := rt.NewEnv()
	child := NewEnv(root)
	require.NoError(t, child.Define("x", Int(1)))

	child.PutProp("x", "doc", String("local"))
	child.PutProp("y", "doc", String("global"))
	assert.Contains(t, child.Props, "x")
	assert.Contains(t, root.Props, "y")
	assert.Equal(t, `"local"`, child.GetProp("x", "doc").String())
	assert.Equal(t, `"global"`, child.GetProp("y", "doc").String())
	assert.True(t, root.GetProp("x", "doc").IsNil())
	assert.True(t, child.GetProp("x", "other").IsNil())
}

func TestEnvRuntimeGlobals(t *testing.T) {
	rt := StandardRuntime()
	rt.Globals["answer"] = Int(42)
	a, b := rt.NewEnv(), rt.NewEnv()
	a.Replace("answer", Int(0))
	v, err := b.Get("answer")
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())
	assert.NotEqual(t, a.ID, b.ID)
	assert.Nil(t, a.Parent)
	assert.Same(t, a, NewEnv(NewEnv(a)).Root())
}

func TestEnvArgFrame(t *testing.T) {
	rt := StandardRuntime()
	env := rt.NewEnv()
	var frame *ArgFrame
	err := rt.Registry.DefineBuiltin("test", "capture", "(a &optional (b 2 b-p) &rest r)",
		func(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
			frame = args
			return Nil(), nil
		}, "")
	require.NoError(t, err)
	_, err = rt.LoadString("test", "(capture 1)", rt.NewCallStack(), env)
	require.NoError(t, err)
	require.NotNil(t, frame)

	fenv := frame.Env()
	assert.Equal(t, []string{"a", "b", "b-p", "r"}, fenv.Names())
	assert.Same(t, env, fenv.Parent)
	assert.True(t, frame.Supplied(0))
	assert.False(t, frame.Supplied(1))

	v, err := fenv.Get("b-p")
	require.NoError(t, err)
	assert.Equal(t, "false", v.String())
	v, _ = frame.Value(nil, "r")
	assert.Equal(t, "()", v.String())

	// the scope map overlays the slots
	fenv.putLocal("a", Int(10))
	v, _ = fenv.Get("a")
	assert.Equal(t, "10", v.String())
	delete(fenv.Scope, "a")
	v, _ = fenv.Get("a")
	assert.Equal(t, "1", v.String())

	// replacing a parameter writes its slot
	fenv.Replace("b", Int(20))
	v, _ = frame.Value(nil, "b")
	assert.Equal(t, "20", v.String())
	assert.NotContains(t, fenv.Scope, "b")

	assert.True(t, fenv.Remove("b-p"))
	assert.False(t, fenv.Contains("b-p"))
	assert.True(t, fenv.Contains("b"))
	assert.True(t, fenv.Remove("b"))
	_, err = frame.Value(nil, "b")
	assert.Error(t, err)
}
