package lisp

import (
	"errors"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

// Node is a compiled expression.  A node holds only what is fixed when it
// is compiled, so the same node may be evaluated any number of times, in
// different environments and on different goroutines.
//
// The set of node kinds is closed.  Extensions build nodes with Constant
// and NewFormNode.
type Node interface {
	Source() *token.Location
	// Label names the node in stack traces.
	Label() string
	eval(stack *CallStack, env *LEnv) (*LVal, error)
}

// Eval evaluates n in env.  A frame labeled by n is pushed onto stack for
// the duration of the evaluation.  Errors are returned tagged with a copy of
// the stack at the innermost point of failure, except a *ReturnSignal which
// is returned unchanged.
func Eval(n Node, stack *CallStack, env *LEnv) (*LVal, error) {
	if err := stack.Push(n.Label(), n.Source(), env); err != nil {
		return nil, &RuntimeError{Err: err, Stack: stack.Copy(), Source: n.Source()}
	}
	defer stack.Pop()
	v, err := n.eval(stack, env)
	if err != nil {
		return nil, tagError(err, stack, n)
	}
	return v, nil
}

func tagError(err error, stack *CallStack, n Node) error {
	if _, ok := err.(*ReturnSignal); ok {
		return err
	}
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return err
	}
	return &RuntimeError{Err: err, Stack: stack.Copy(), Source: n.Source()}
}

func evalBody(stack *CallStack, env *LEnv, body []Node) (*LVal, error) {
	result := Nil()
	for _, n := range body {
		v, err := Eval(n, stack, env)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// Constant returns a node evaluating to v.
func Constant(v *LVal, src *token.Location) Node {
	return &constNode{val: v, label: v.String(), src: src}
}

// NewFormNode returns a node evaluated by fn.  Host code uses it to plug
// foreign computations into compiled code.
func NewFormNode(label string, src *token.Location, fn func(stack *CallStack, env *LEnv) (*LVal, error)) Node {
	return &formNode{label: label, src: src, fn: fn}
}

type constNode struct {
	val   *LVal
	label string
	src   *token.Location
}

func (n *constNode) Source() *token.Location { return n.src }
func (n *constNode) Label() string           { return n.label }

func (n *constNode) eval(*CallStack, *LEnv) (*LVal, error) {
	return n.val, nil
}

type varNode struct {
	name string
	src  *token.Location
}

func (n *varNode) Source() *token.Location { return n.src }
func (n *varNode) Label() string           { return n.name }

func (n *varNode) eval(stack *CallStack, env *LEnv) (*LVal, error) {
	return env.get(stack, n.name)
}

type formNode struct {
	label string
	src   *token.Location
	fn    func(stack *CallStack, env *LEnv) (*LVal, error)
}

func (n *formNode) Source() *token.Location { return n.src }
func (n *formNode) Label() string           { return n.label }

func (n *formNode) eval(stack *CallStack, env *LEnv) (*LVal, error) {
	return n.fn(stack, env)
}

// callNode calls a function that was registered when the call was compiled.
// The function is looked up again on each call so redefinitions are seen;
// plan is reused while the definition keeps the same lambda list.
type callNode struct {
	name string
	args []Node
	plan *bindPlan
	src  *token.Location
}

func (n *callNode) Source() *token.Location { return n.src }
func (n *callNode) Label() string           { return n.name }

func (n *callNode) eval(stack *CallStack, env *LEnv) (*LVal, error) {
	fun, err := resolveFunction(stack, env, n.name)
	if err != nil {
		return nil, err
	}
	return callFunction(stack, env, fun, n.args, n.plan, n.src)
}

// dynamicCallNode calls whatever its name designates when it is evaluated.
// Calls to functions defined after the call was compiled, including
// recursive calls, compile to a dynamicCallNode.
type dynamicCallNode struct {
	name string
	args []Node
	src  *token.Location
}

func (n *dynamicCallNode) Source() *token.Location { return n.src }
func (n *dynamicCallNode) Label() string           { return n.name }

func (n *dynamicCallNode) eval(stack *CallStack, env *LEnv) (*LVal, error) {
	fun, err := resolveFunction(stack, env, n.name)
	if err != nil {
		return nil, err
	}
	return callFunction(stack, env, fun, n.args, nil, n.src)
}

// inlineCallNode calls the function its head evaluates to, as in
// ((lambda (x) x) 1).
type inlineCallNode struct {
	head Node
	args []Node
	src  *token.Location
}

func (n *inlineCallNode) Source() *token.Location { return n.src }
func (n *inlineCallNode) Label() string           { return n.head.Label() }

func (n *inlineCallNode) eval(stack *CallStack, env *LEnv) (*LVal, error) {
	fun, err := Eval(n.head, stack, env)
	if err != nil {
		return nil, err
	}
	if fun.Type != LFun {
		return nil, Errorf("not a function: %v", fun)
	}
	return callFunction(stack, env, fun, n.args, nil, n.src)
}

// resolveFunction finds the function designated by name: a registered
// function, or else a variable holding a function.
func resolveFunction(stack *CallStack, env *LEnv, name string) (*LVal, error) {
	if e := env.Runtime.Registry.Lookup(name); e != nil {
		if e.Kind == EntrySpecialForm {
			return nil, Errorf("special form used as a function: %s", name)
		}
		return e.Fun, nil
	}
	v, ok, err := env.lookup(stack, name)
	if err != nil {
		return nil, err
	}
	if ok && v.Type == LFun {
		return v, nil
	}
	return nil, &UndefinedFunctionError{Name: name}
}

// callFunction binds args to fun's parameters and calls it.  A lambda's body
// is the boundary where a ReturnSignal raised in it becomes the call's
// result.  Arguments are evaluated before the boundary, so a return in an
// argument expression leaves the caller's function.
func callFunction(stack *CallStack, caller *LEnv, fun *LVal, args []Node, plan *bindPlan, src *token.Location) (*LVal, error) {
	data := fun.FunData()
	if data == nil {
		return nil, Errorf("not a function: %v", fun)
	}
	if plan == nil || plan.spec != data.Spec {
		var err error
		plan, err = planBinding(data.Spec, nodeArgs(args))
		if err != nil {
			berr := err.(*BindingError)
			berr.Source, berr.Function = src, data.Name
			return nil, berr
		}
	}
	if data.Builtin != nil {
		env, err := bindArgs(stack, caller, caller, args, plan)
		if err != nil {
			return nil, err
		}
		return data.Builtin(stack, caller, env.args)
	}
	env, err := bindArgs(stack, caller, data.Env, args, plan)
	if err != nil {
		return nil, err
	}
	v, err := evalBody(stack, env, data.Body)
	if err != nil {
		if sig, ok := err.(*ReturnSignal); ok {
			return sig.Value, nil
		}
		return nil, err
	}
	return v, nil
}

// Call calls fun with values already computed.
func Call(stack *CallStack, env *LEnv, fun *LVal, args ...*LVal) (*LVal, error) {
	nodes := make([]Node, len(args))
	for i, arg := range args {
		nodes[i] = &constNode{val: arg, label: "argument"}
	}
	var src *token.Location
	if top := stack.Top(); top != nil {
		src = top.Source
	}
	return callFunction(stack, env, fun, nodes, nil, src)
}
