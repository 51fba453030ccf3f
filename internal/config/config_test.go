package config

import (
	"log/slog"
	"testing"

	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderAssignFirst(t *testing.T) {
	loader := NewLoader([]string{"testdata/override.cue", "testdata/base.cue"}, Schema)

	var height int
	require.NoError(t, loader.AssignFirst("interpreter.maxStackHeight", &height))
	assert.Equal(t, 10, height)

	var policy string
	require.NoError(t, loader.AssignFirst("interpreter.missPolicy", &policy))
	assert.Equal(t, "nil", policy)

	var s string
	assert.ErrorIs(t, loader.AssignFirst("repl.continuation", &s), ErrValueNotFound)

	files, err := loader.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"testdata/override.cue", "testdata/base.cue"}, files)
}

func TestLoaderInvalid(t *testing.T) {
	for _, path := range []string{"testdata/bad.cue", "testdata/unknown.cue", "testdata/missing.cue"} {
		loader := NewLoader([]string{path}, Schema)
		var s string
		err := loader.AssignFirst("interpreter.missPolicy", &s)
		assert.Error(t, err, path)
		assert.NotErrorIs(t, err, ErrValueNotFound, path)
	}
}

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	c, err = Load("testdata/override.cue", "testdata/base.cue")
	require.NoError(t, err)
	assert.Equal(t, Interpreter{MissPolicy: "nil", MaxStackHeight: 10}, c.Interpreter)
	assert.Equal(t, REPL{Prompt: "> ", History: "/tmp/explang_history"}, c.REPL)
	assert.Equal(t, Log{Level: "debug", Journal: true}, c.Log)

	level, err := c.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = Load("testdata/bad.cue")
	assert.Error(t, err)
}

func TestRuntimeOptions(t *testing.T) {
	c, err := Load("testdata/base.cue")
	require.NoError(t, err)
	opts, err := c.RuntimeOptions()
	require.NoError(t, err)
	rt, err := lisp.NewRuntime(opts...)
	require.NoError(t, err)
	assert.Equal(t, lisp.MissNil, rt.MissPolicy)
	assert.Equal(t, 200, rt.MaxHeight)

	c.Interpreter.MissPolicy = "maybe"
	_, err = c.RuntimeOptions()
	assert.Error(t, err)

	c.Log.Level = "loud"
	_, err = c.LogLevel()
	assert.Error(t, err)
}
