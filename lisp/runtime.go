package lisp

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/ast"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/rdparser"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Reader parses source streams into syntax trees.
type Reader interface {
	Read(name string, r io.Reader) ([]ast.Node, error)
}

// Runtime is the state shared by every environment created from it: the
// function registry, global constants, the reader and I/O streams.
type Runtime struct {
	Registry *Registry
	Reader   Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger

	// MissPolicy decides what reading an unbound variable does.
	MissPolicy MissPolicy
	// MaxHeight limits the height of call stacks made by NewCallStack.
	MaxHeight int
	// Globals are bound in every root environment made by NewEnv.
	Globals map[string]*LVal

	envCount    atomic.Uint64
	gensymCount atomic.Uint64
}

// StandardRuntime returns a Runtime with the core special forms and
// builtins and the default settings.
func StandardRuntime() *Runtime {
	rt := &Runtime{
		Registry:  NewRegistry(),
		Reader:    rdparser.NewReader(),
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Logger:    discardLogger,
		MaxHeight: DefaultMaxHeight,
		Globals:   make(map[string]*LVal),
	}
	for _, op := range langSpecialForms() {
		err := rt.Registry.DefineSpecialForm("lang", op.name, op.params, op.form, op.doc)
		if err != nil {
			panic(err)
		}
	}
	for _, fn := range langBuiltins() {
		err := rt.Registry.DefineBuiltin("lang", fn.name, fn.params, fn.fn, fn.doc)
		if err != nil {
			panic(err)
		}
	}
	return rt
}

// NewRuntime returns a standard Runtime configured by config.
func NewRuntime(config ...Config) (*Runtime, error) {
	rt := StandardRuntime()
	for _, fn := range config {
		if err := fn(rt); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

// GenEnvID returns a new environment identifier.
func (rt *Runtime) GenEnvID() uint {
	return uint(rt.envCount.Add(1))
}

// GenSym returns a symbol name that has not been generated before.
func (rt *Runtime) GenSym(prefix string) string {
	if prefix == "" {
		prefix = "gensym"
	}
	return fmt.Sprintf("%s-%d", prefix, rt.gensymCount.Add(1))
}

// NewEnv returns a new root environment holding the runtime's globals.
func (rt *Runtime) NewEnv() *LEnv {
	env := newEnvRuntime(rt, nil)
	for k, v := range rt.Globals {
		env.Scope[k] = v
	}
	return env
}

// NewCallStack returns an empty stack limited to rt.MaxHeight frames.
func (rt *Runtime) NewCallStack() *CallStack {
	return &CallStack{MaxHeight: rt.MaxHeight}
}

// Compile compiles n against the runtime's registry.
func (rt *Runtime) Compile(n ast.Node) (Node, error) {
	c := &Compiler{Registry: rt.Registry}
	return c.Compile(n)
}

// Evaluate evaluates a top level node.  A return outside of any function
// ends the evaluation with the returned value.
func (rt *Runtime) Evaluate(n Node, stack *CallStack, env *LEnv) (*LVal, error) {
	v, err := Eval(n, stack, env)
	if sig, ok := err.(*ReturnSignal); ok {
		return sig.Value, nil
	}
	return v, err
}

// EvalSyntax compiles and evaluates n.
func (rt *Runtime) EvalSyntax(n ast.Node, stack *CallStack, env *LEnv) (*LVal, error) {
	node, err := rt.Compile(n)
	if err != nil {
		return nil, err
	}
	return rt.Evaluate(node, stack, env)
}

// Load reads every expression from r and evaluates them in order, compiling
// each one after the previous one was evaluated.  Load returns the value of
// the last expression.
func (rt *Runtime) Load(name string, r io.Reader, stack *CallStack, env *LEnv) (*LVal, error) {
	if rt.Reader == nil {
		return nil, Errorf("no reader for the runtime")
	}
	exprs, err := rt.Reader.Read(name, r)
	if err != nil {
		return nil, err
	}
	rt.Logger.Debug("loading", "source", name, "expressions", len(exprs))
	result := Nil()
	for _, expr := range exprs {
		v, err := rt.EvalSyntax(expr, stack, env)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// LoadString loads source text.
func (rt *Runtime) LoadString(name, source string, stack *CallStack, env *LEnv) (*LVal, error) {
	return rt.Load(name, strings.NewReader(source), stack, env)
}

// LoadFile loads the file at path.
func (rt *Runtime) LoadFile(path string, stack *CallStack, env *LEnv) (*LVal, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return rt.Load(path, bytes.NewReader(b), stack, env)
}
