package lisp

import (
	"fmt"
	"sort"
	"strings"
)

// MissPolicy selects what reading an unbound variable does.
type MissPolicy uint

// MissPolicy values
const (
	// MissError raises an UnboundError.
	MissError MissPolicy = iota
	// MissNil returns nil.
	MissNil
)

// LEnv is a lisp environment frame.  Frames are linked to their parent
// frame; a frame's parent is fixed when the frame is created, so chains
// cannot contain cycles.  LEnv is not safe for concurrent mutation.
type LEnv struct {
	ID      uint
	Scope   map[string]*LVal
	Props   map[string]map[string]*LVal
	Parent  *LEnv
	Runtime *Runtime

	// args is set on the frames created to bind a function call's
	// arguments.
	args *ArgFrame
}

// NewEnv returns a new frame whose parent is parent.  When parent is nil the
// frame is the root of a new chain using the standard runtime.
func NewEnv(parent *LEnv) *LEnv {
	var rt *Runtime
	if parent != nil {
		rt = parent.Runtime
	} else {
		rt = StandardRuntime()
	}
	return newEnvRuntime(rt, parent)
}

// NewEnvBindings returns a new child of parent initialized with bindings.
func NewEnvBindings(parent *LEnv, bindings map[string]*LVal) *LEnv {
	env := NewEnv(parent)
	for k, v := range bindings {
		env.Scope[k] = v
	}
	return env
}

func newEnvRuntime(rt *Runtime, parent *LEnv) *LEnv {
	return &LEnv{
		ID:      rt.GenEnvID(),
		Scope:   make(map[string]*LVal),
		Parent:  parent,
		Runtime: rt,
	}
}

// Args returns the argument frame of a call frame, or nil.
func (env *LEnv) Args() *ArgFrame {
	return env.args
}

// Root returns the outermost frame of the chain.
func (env *LEnv) Root() *LEnv {
	for env.Parent != nil {
		env = env.Parent
	}
	return env
}

// Get returns the value bound to name in the nearest frame that binds it.  When
// no frame binds name the runtime's miss policy decides the result.  A lazy
// argument read by Get is computed on a new stack.
func (env *LEnv) Get(name string) (*LVal, error) {
	return env.get(nil, name)
}

// get is Get forcing lazy arguments on stack.
func (env *LEnv) get(stack *CallStack, name string) (*LVal, error) {
	v, ok, err := env.lookup(stack, name)
	if err != nil {
		return nil, err
	}
	if ok {
		return v, nil
	}
	if env.Runtime.MissPolicy == MissNil {
		return Nil(), nil
	}
	return nil, &UnboundError{Name: name}
}

// Lookup is like Get but reports a miss with a false second result
// regardless of the miss policy.  Reading a lazy argument forces it, which
// may fail.
func (env *LEnv) Lookup(name string) (*LVal, bool, error) {
	return env.lookup(nil, name)
}

func (env *LEnv) lookup(stack *CallStack, name string) (*LVal, bool, error) {
	for e := env; e != nil; e = e.Parent {
		v, ok, err := e.local(stack, name)
		if ok || err != nil {
			return v, ok, err
		}
	}
	return nil, false, nil
}

// Contains reports whether any frame in the chain binds name.
func (env *LEnv) Contains(name string) bool {
	return env.owner(name) != nil
}

// Define binds name in env itself.  It is an error for env to bind name
// already.
func (env *LEnv) Define(name string, v *LVal) error {
	if env.owns(name) {
		return ErrorConditionf("internal-error", "variable already defined in this scope: %s", name)
	}
	env.putLocal(name, v)
	return nil
}

// Replace rebinds name in the nearest frame that binds it.  If no frame does
// the binding is created in env.
func (env *LEnv) Replace(name string, v *LVal) {
	if owner := env.owner(name); owner != nil {
		owner.set(name, v)
		return
	}
	env.putLocal(name, v)
}

// GlobalReplace rebinds name in the nearest frame that binds it.  If no frame
// does the binding is created in the root frame.
func (env *LEnv) GlobalReplace(name string, v *LVal) {
	if owner := env.owner(name); owner != nil {
		owner.set(name, v)
		return
	}
	env.Root().putLocal(name, v)
}

// Remove unbinds name in every frame of the chain that binds it, not only
// the nearest one.  Remove reports whether any binding was removed.
func (env *LEnv) Remove(name string) bool {
	removed := false
	for e := env; e != nil; e = e.Parent {
		if _, ok := e.Scope[name]; ok {
			delete(e.Scope, name)
			removed = true
		}
		if e.args != nil && e.args.unbind(name) {
			removed = true
		}
	}
	return removed
}

// GetProp returns the property key of name from the nearest frame holding
// properties for name, or nil.
func (env *LEnv) GetProp(name, key string) *LVal {
	for e := env; e != nil; e = e.Parent {
		if v, ok := e.Props[name][key]; ok {
			return v
		}
	}
	return Nil()
}

// PutProp sets a property of name.  Properties live in the frame that binds
// name, or in the root frame for unbound names.
func (env *LEnv) PutProp(name, key string, v *LVal) {
	e := env.owner(name)
	if e == nil {
		e = env.Root()
	}
	if e.Props == nil {
		e.Props = make(map[string]map[string]*LVal)
	}
	if e.Props[name] == nil {
		e.Props[name] = make(map[string]*LVal)
	}
	e.Props[name][key] = v
}

// Names returns the names bound in env itself, sorted.
func (env *LEnv) Names() []string {
	names := make([]string, 0, len(env.Scope))
	for k := range env.Scope {
		names = append(names, k)
	}
	if env.args != nil {
		names = append(names, env.args.names()...)
	}
	sort.Strings(names)
	return names
}

func (env *LEnv) String() string {
	var parts []string
	for _, name := range env.Names() {
		v, _, err := env.local(nil, name)
		if err != nil {
			parts = append(parts, name+"=#<error>")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", name, v))
	}
	return fmt.Sprintf("#<env %d {%s}>", env.ID, strings.Join(parts, " "))
}

// local looks name up in env alone.  The scope map wins over argument slots.
func (env *LEnv) local(stack *CallStack, name string) (*LVal, bool, error) {
	if v, ok := env.Scope[name]; ok {
		return v, true, nil
	}
	if env.args != nil {
		return env.args.lookup(stack, name)
	}
	return nil, false, nil
}

func (env *LEnv) owns(name string) bool {
	if _, ok := env.Scope[name]; ok {
		return true
	}
	return env.args != nil && env.args.owns(name)
}

func (env *LEnv) owner(name string) *LEnv {
	for e := env; e != nil; e = e.Parent {
		if e.owns(name) {
			return e
		}
	}
	return nil
}

func (env *LEnv) set(name string, v *LVal) {
	if _, ok := env.Scope[name]; ok {
		env.Scope[name] = v
		return
	}
	if env.args != nil && env.args.set(name, v) {
		return
	}
	env.putLocal(name, v)
}

func (env *LEnv) putLocal(name string, v *LVal) {
	if env.Scope == nil {
		env.Scope = make(map[string]*LVal)
	}
	env.Scope[name] = v
}
