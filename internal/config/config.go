// Package config loads interpreter settings from CUE files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
)

// Schema is the closed CUE schema configuration files are validated
// against.
const Schema = `
interpreter?: {
	missPolicy?:     "error" | "nil"
	maxStackHeight?: int & >=0
}
repl?: {
	prompt?:       string
	continuation?: string
	history?:      string
}
log?: {
	level?:   "debug" | "info" | "warn" | "error"
	file?:    string
	journal?: bool
}
`

// Config holds the settings of an interpreter process.
type Config struct {
	Interpreter Interpreter
	REPL        REPL
	Log         Log
}

// Interpreter configures the lisp runtime.
type Interpreter struct {
	MissPolicy     string
	MaxStackHeight int
}

// REPL configures the interactive loop.
type REPL struct {
	Prompt       string
	Continuation string
	History      string
}

// Log configures the process logger.
type Log struct {
	Level   string
	File    string
	Journal bool
}

// Default returns the settings used when no file defines them.
func Default() *Config {
	return &Config{
		Interpreter: Interpreter{
			MissPolicy:     "error",
			MaxStackHeight: lisp.DefaultMaxHeight,
		},
		REPL: REPL{
			Prompt: "explang> ",
		},
		Log: Log{
			Level: "warn",
		},
	}
}

// Load reads the files at paths.  A setting is taken from the first file
// that defines it, settings defined nowhere keep their default.
func Load(paths ...string) (*Config, error) {
	c := Default()
	if len(paths) == 0 {
		return c, nil
	}
	loader := NewLoader(paths, Schema)
	fields := []struct {
		path   string
		target any
	}{
		{"interpreter.missPolicy", &c.Interpreter.MissPolicy},
		{"interpreter.maxStackHeight", &c.Interpreter.MaxStackHeight},
		{"repl.prompt", &c.REPL.Prompt},
		{"repl.continuation", &c.REPL.Continuation},
		{"repl.history", &c.REPL.History},
		{"log.level", &c.Log.Level},
		{"log.file", &c.Log.File},
		{"log.journal", &c.Log.Journal},
	}
	for _, f := range fields {
		err := loader.AssignFirst(f.path, f.target)
		if err != nil && !errors.Is(err, ErrValueNotFound) {
			return nil, fmt.Errorf("config %s: %w", f.path, err)
		}
	}
	return c, nil
}

// RuntimeOptions returns the runtime configuration selected by c.
func (c *Config) RuntimeOptions() ([]lisp.Config, error) {
	policy, err := lisp.ParseMissPolicy(c.Interpreter.MissPolicy)
	if err != nil {
		return nil, err
	}
	return []lisp.Config{
		lisp.WithMissPolicy(policy),
		lisp.WithMaximumStackHeight(c.Interpreter.MaxStackHeight),
	}, nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level)))
	if err != nil {
		return 0, fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	return level, nil
}
