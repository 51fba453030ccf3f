package lisp

import (
	"github.com/opsit-io/opsit-explang-core-sub000/parser/ast"
)

type specialOp struct {
	name   string
	params string
	form   SpecialForm
	doc    string
}

func langSpecialForms() []specialOp {
	return []specialOp{
		{"quote", "(expr)", opQuote,
			"Returns expr without evaluating it."},
		{"function", "(name)", opFunction,
			"Returns the function designated by name, a symbol or a lambda form."},
		{"lambda", "(params &rest body)", opLambda,
			"Returns an anonymous function closing over the current environment.  A leading string in body is its documentation."},
		{"defun", "(name params &rest body)", opDefun,
			"Defines a named function in the registry and returns its name."},
		{"let", "(bindings &rest body)", opLet,
			"Evaluates body in a new scope binding each (name value) of bindings.  Values are evaluated in the enclosing scope."},
		{"let*", "(bindings &rest body)", opLetSeq,
			"Like let, but each value is evaluated in the new scope after the bindings before it."},
		{"progn", "(&rest body)", opProgn,
			"Evaluates each expression of body in order and returns the last value."},
		{"if", "(test then &rest else)", opIf,
			"Evaluates then when test is true, otherwise evaluates the else expressions."},
		{"cond", "(&rest clauses)", opCond,
			"Evaluates the body of the first clause (test body...) whose test is true."},
		{"and", "(&rest exprs)", opAnd,
			"Evaluates exprs until one is false and returns the last value computed."},
		{"or", "(&rest exprs)", opOr,
			"Evaluates exprs until one is true and returns the last value computed."},
		{"while", "(test &rest body)", opWhile,
			"Evaluates body repeatedly while test is true."},
		{"dotimes", "(control &rest body)", opDotimes,
			"(dotimes (var count [result]) body...) evaluates body with var bound to 0 through count-1."},
		{"dolist", "(control &rest body)", opDolist,
			"(dolist (var list [result]) body...) evaluates body with var bound to each element of list."},
		{"setq", "(&rest pairs)", opSetq,
			"Sets variables.  A variable bound nowhere is created in the innermost scope."},
		{"gsetq", "(&rest pairs)", opGsetq,
			"Sets variables.  A variable bound nowhere is created in the outermost scope."},
		{"try", "(&rest clauses)", opTry,
			"(try body... (catch condition var handler...)... (finally cleanup...)...) handles errors raised by body."},
		{"return", "(&optional value)", opReturn,
			"Returns value from the innermost enclosing function call."},
		{"->", "(value &rest forms)", opThreadFirst,
			"Threads value through forms as the first argument, or the argument marked &pipe."},
		{"->>", "(value &rest forms)", opThreadLast,
			"Threads value through forms as the last argument, or the argument marked &pipe."},
	}
}

func opQuote(c *Compiler, args *FormArgs) (Node, error) {
	return &constNode{val: syntaxValue(args.Get("expr")), label: args.Name, src: args.Source()}, nil
}

func opFunction(c *Compiler, args *FormArgs) (Node, error) {
	expr := args.Get("name")
	if name, ok := ast.SymbolName(expr); ok {
		return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
			return resolveFunction(stack, env, name)
		}), nil
	}
	if list, ok := expr.(*ast.List); ok && !list.Literal && len(list.Children) > 0 && ast.IsSymbol(list.Children[0], "lambda") {
		return c.Compile(list)
	}
	return nil, args.Errorf("function name or lambda expected: %v", expr)
}

// compileLambda compiles a lambda list and a body with an optional leading
// documentation string.
func compileLambda(c *Compiler, args *FormArgs, params ast.Node, body []ast.Node) (*ParamSpec, []Node, string, error) {
	var children []ast.Node
	switch p := params.(type) {
	case *ast.List:
		if p.Literal {
			return nil, nil, "", args.Errorf("lambda list expected: %v", p)
		}
		children = p.Children
	default:
		if !ast.IsSymbol(p, NilSymbol) {
			return nil, nil, "", args.Errorf("lambda list expected: %v", p)
		}
	}
	spec, err := CompileParams(children, params.Loc(), c.Compile)
	if err != nil {
		return nil, nil, "", err
	}
	var doc string
	if len(body) > 1 {
		if leaf, ok := body[0].(*ast.Leaf); ok && leaf.Kind == ast.String {
			doc = leaf.Text
			body = body[1:]
		}
	}
	nodes, err := c.CompileAll(body)
	if err != nil {
		return nil, nil, "", err
	}
	return spec, nodes, doc, nil
}

func opLambda(c *Compiler, args *FormArgs) (Node, error) {
	spec, body, doc, err := compileLambda(c, args, args.Get("params"), args.Rest("body"))
	if err != nil {
		return nil, err
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
		fun := Lambda("", spec, body, env)
		fun.FunData().Doc = doc
		fun.Source = args.Source()
		return fun, nil
	}), nil
}

func opDefun(c *Compiler, args *FormArgs) (Node, error) {
	name, ok := ast.SymbolName(args.Get("name"))
	if !ok {
		return nil, args.Errorf("function name is not a symbol: %v", args.Get("name"))
	}
	spec, body, doc, err := compileLambda(c, args, args.Get("params"), args.Rest("body"))
	if err != nil {
		return nil, err
	}
	src := args.Source()
	return NewFormNode(args.Name, src, func(stack *CallStack, env *LEnv) (*LVal, error) {
		fun := Lambda(name, spec, body, env)
		fun.FunData().Doc = doc
		fun.Source = src
		err := env.Runtime.Registry.Define(&Entry{
			Name:   name,
			Kind:   EntryFunction,
			Spec:   spec,
			Fun:    fun,
			Doc:    doc,
			Source: src,
			Group:  "user",
		})
		if err != nil {
			return nil, err
		}
		return Symbol(name), nil
	}), nil
}

type letBinding struct {
	name string
	expr Node
}

func compileBindings(c *Compiler, args *FormArgs) ([]letBinding, error) {
	list, ok := args.Get("bindings").(*ast.List)
	if !ok {
		if ast.IsSymbol(args.Get("bindings"), NilSymbol) {
			return nil, nil
		}
		return nil, args.Errorf("binding list expected: %v", args.Get("bindings"))
	}
	bindings := make([]letBinding, len(list.Children))
	for i, b := range list.Children {
		if name, ok := ast.SymbolName(b); ok {
			bindings[i] = letBinding{name: name}
			continue
		}
		pair, ok := b.(*ast.List)
		if !ok || len(pair.Children) == 0 || len(pair.Children) > 2 {
			return nil, args.Errorf("invalid binding: %v", b)
		}
		name, ok := ast.SymbolName(pair.Children[0])
		if !ok {
			return nil, args.Errorf("binding name is not a symbol: %v", pair.Children[0])
		}
		bindings[i].name = name
		if len(pair.Children) == 2 {
			expr, err := c.Compile(pair.Children[1])
			if err != nil {
				return nil, err
			}
			bindings[i].expr = expr
		}
	}
	return bindings, nil
}

func evalBinding(stack *CallStack, env *LEnv, b letBinding) (*LVal, error) {
	if b.expr == nil {
		return Nil(), nil
	}
	return Eval(b.expr, stack, env)
}

func opLet(c *Compiler, args *FormArgs) (Node, error) {
	bindings, err := compileBindings(c, args)
	if err != nil {
		return nil, err
	}
	body, err := c.CompileAll(args.Rest("body"))
	if err != nil {
		return nil, err
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
		vals := make([]*LVal, len(bindings))
		for i, b := range bindings {
			v, err := evalBinding(stack, env, b)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		letenv := newEnvRuntime(env.Runtime, env)
		for i, b := range bindings {
			if err := letenv.Define(b.name, vals[i]); err != nil {
				return nil, err
			}
		}
		return evalBody(stack, letenv, body)
	}), nil
}

func opLetSeq(c *Compiler, args *FormArgs) (Node, error) {
	bindings, err := compileBindings(c, args)
	if err != nil {
		return nil, err
	}
	body, err := c.CompileAll(args.Rest("body"))
	if err != nil {
		return nil, err
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
		letenv := newEnvRuntime(env.Runtime, env)
		for _, b := range bindings {
			v, err := evalBinding(stack, letenv, b)
			if err != nil {
				return nil, err
			}
			if err := letenv.Define(b.name, v); err != nil {
				return nil, err
			}
		}
		return evalBody(stack, letenv, body)
	}), nil
}

func opProgn(c *Compiler, args *FormArgs) (Node, error) {
	body, err := c.CompileAll(args.Rest("body"))
	if err != nil {
		return nil, err
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
		return evalBody(stack, env, body)
	}), nil
}

// (if test then else...)
func opIf(c *Compiler, args *FormArgs) (Node, error) {
	test, err := c.Compile(args.Get("test"))
	if err != nil {
		return nil, err
	}
	then, err := c.Compile(args.Get("then"))
	if err != nil {
		return nil, err
	}
	otherwise, err := c.CompileAll(args.Rest("else"))
	if err != nil {
		return nil, err
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
		r, err := Eval(test, stack, env)
		if err != nil {
			return nil, err
		}
		if True(r) {
			return Eval(then, stack, env)
		}
		return evalBody(stack, env, otherwise)
	}), nil
}

type condClause struct {
	test Node // nil for an else clause
	body []Node
}

// (cond (test-form body...)*)
func opCond(c *Compiler, args *FormArgs) (Node, error) {
	branches := args.Rest("clauses")
	clauses := make([]condClause, len(branches))
	for i, b := range branches {
		list, ok := b.(*ast.List)
		if !ok || list.Literal || len(list.Children) == 0 {
			return nil, args.Errorf("clause is not a list: %v", b)
		}
		if ast.IsSymbol(list.Children[0], "else") {
			if i != len(branches)-1 {
				return nil, args.Errorf("invalid syntax: else")
			}
		} else {
			test, err := c.Compile(list.Children[0])
			if err != nil {
				return nil, err
			}
			clauses[i].test = test
		}
		body, err := c.CompileAll(list.Children[1:])
		if err != nil {
			return nil, err
		}
		clauses[i].body = body
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
		for _, clause := range clauses {
			r := Bool(true)
			if clause.test != nil {
				var err error
				r, err = Eval(clause.test, stack, env)
				if err != nil {
					return nil, err
				}
			}
			if !True(r) {
				continue
			}
			if len(clause.body) == 0 {
				return r, nil
			}
			return evalBody(stack, env, clause.body)
		}
		return Nil(), nil
	}), nil
}

func opAnd(c *Compiler, args *FormArgs) (Node, error) {
	return compileShortCircuit(c, args, false)
}

func opOr(c *Compiler, args *FormArgs) (Node, error) {
	return compileShortCircuit(c, args, true)
}

// compileShortCircuit stops at the first expression whose truth equals
// stop.
func compileShortCircuit(c *Compiler, args *FormArgs, stop bool) (Node, error) {
	exprs, err := c.CompileAll(args.Rest("exprs"))
	if err != nil {
		return nil, err
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
		r := Bool(!stop)
		if stop {
			r = Nil()
		}
		for _, expr := range exprs {
			var err error
			r, err = Eval(expr, stack, env)
			if err != nil {
				return nil, err
			}
			if True(r) == stop {
				return r, nil
			}
		}
		return r, nil
	}), nil
}

func opWhile(c *Compiler, args *FormArgs) (Node, error) {
	test, err := c.Compile(args.Get("test"))
	if err != nil {
		return nil, err
	}
	body, err := c.CompileAll(args.Rest("body"))
	if err != nil {
		return nil, err
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
		for {
			r, err := Eval(test, stack, env)
			if err != nil {
				return nil, err
			}
			if !True(r) {
				return Nil(), nil
			}
			if _, err := evalBody(stack, env, body); err != nil {
				return nil, err
			}
		}
	}), nil
}

type loopControl struct {
	name   string
	expr   Node
	result Node
	body   []Node
}

// compileLoop compiles the (var expr [result]) control list of dotimes and
// dolist.
func compileLoop(c *Compiler, args *FormArgs) (*loopControl, error) {
	control, ok := args.Get("control").(*ast.List)
	if !ok || control.Literal || len(control.Children) < 2 || len(control.Children) > 3 {
		return nil, args.Errorf("invalid control list: %v", args.Get("control"))
	}
	name, ok := ast.SymbolName(control.Children[0])
	if !ok {
		return nil, args.Errorf("loop variable is not a symbol: %v", control.Children[0])
	}
	loop := &loopControl{name: name}
	var err error
	if loop.expr, err = c.Compile(control.Children[1]); err != nil {
		return nil, err
	}
	if len(control.Children) == 3 {
		if loop.result, err = c.Compile(control.Children[2]); err != nil {
			return nil, err
		}
	}
	if loop.body, err = c.CompileAll(args.Rest("body")); err != nil {
		return nil, err
	}
	return loop, nil
}

func (loop *loopControl) run(stack *CallStack, env *LEnv, items func(yield func(*LVal) error) error, final *LVal) (*LVal, error) {
	loopenv := newEnvRuntime(env.Runtime, env)
	loopenv.Scope[loop.name] = Nil()
	err := items(func(v *LVal) error {
		loopenv.Scope[loop.name] = v
		_, err := evalBody(stack, loopenv, loop.body)
		return err
	})
	if err != nil {
		return nil, err
	}
	if loop.result == nil {
		return Nil(), nil
	}
	loopenv.Scope[loop.name] = final
	return Eval(loop.result, stack, loopenv)
}

func opDotimes(c *Compiler, args *FormArgs) (Node, error) {
	loop, err := compileLoop(c, args)
	if err != nil {
		return nil, err
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
		count, err := Eval(loop.expr, stack, env)
		if err != nil {
			return nil, err
		}
		if count.Type != LInt {
			return nil, Errorf("dotimes: count is not an integer: %v", count)
		}
		n := count.Int
		return loop.run(stack, env, func(yield func(*LVal) error) error {
			for i := 0; i < n; i++ {
				if err := yield(Int(i)); err != nil {
					return err
				}
			}
			return nil
		}, Int(max(n, 0)))
	}), nil
}

func opDolist(c *Compiler, args *FormArgs) (Node, error) {
	loop, err := compileLoop(c, args)
	if err != nil {
		return nil, err
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
		list, err := Eval(loop.expr, stack, env)
		if err != nil {
			return nil, err
		}
		if !list.IsSeq() {
			return nil, Errorf("dolist: not a list: %v", list)
		}
		return loop.run(stack, env, func(yield func(*LVal) error) error {
			for _, v := range list.Cells {
				if err := yield(v); err != nil {
					return err
				}
			}
			return nil
		}, Nil())
	}), nil
}

func opSetq(c *Compiler, args *FormArgs) (Node, error) {
	return compileAssignments(c, args, (*LEnv).Replace)
}

func opGsetq(c *Compiler, args *FormArgs) (Node, error) {
	return compileAssignments(c, args, (*LEnv).GlobalReplace)
}

func compileAssignments(c *Compiler, args *FormArgs, assign func(env *LEnv, name string, v *LVal)) (Node, error) {
	pairs := args.Rest("pairs")
	if len(pairs)%2 != 0 {
		return nil, args.Errorf("odd number of arguments")
	}
	bindings := make([]letBinding, len(pairs)/2)
	for i := range bindings {
		name, ok := ast.SymbolName(pairs[2*i])
		if !ok {
			return nil, args.Errorf("variable name is not a symbol: %v", pairs[2*i])
		}
		switch name {
		case NilSymbol, TrueSymbol, FalseSymbol:
			return nil, args.Errorf("cannot set constant: %s", name)
		}
		expr, err := c.Compile(pairs[2*i+1])
		if err != nil {
			return nil, err
		}
		bindings[i] = letBinding{name: name, expr: expr}
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
		result := Nil()
		for _, b := range bindings {
			v, err := Eval(b.expr, stack, env)
			if err != nil {
				return nil, err
			}
			assign(env, b.name, v)
			result = v
		}
		return result, nil
	}), nil
}

type catchClause struct {
	condition string
	name      string
	body      []Node
}

// matches reports whether the clause handles err.
func (h *catchClause) matches(err error) bool {
	switch h.condition {
	case CatchAllCondition, DefaultErrorCondition:
		return true
	}
	return h.condition == ErrorCondition(err)
}

func opTry(c *Compiler, args *FormArgs) (Node, error) {
	var body []ast.Node
	var catches []*catchClause
	var finally [][]Node
	for _, clause := range args.Rest("clauses") {
		list, ok := clause.(*ast.List)
		if !ok || list.Literal || len(list.Children) == 0 {
			if len(catches) > 0 || len(finally) > 0 {
				return nil, args.Errorf("expression follows a handler clause: %v", clause)
			}
			body = append(body, clause)
			continue
		}
		switch {
		case ast.IsSymbol(list.Children[0], "catch"):
			h, err := compileCatch(c, args, list)
			if err != nil {
				return nil, err
			}
			catches = append(catches, h)
		case ast.IsSymbol(list.Children[0], "finally"):
			nodes, err := c.CompileAll(list.Children[1:])
			if err != nil {
				return nil, err
			}
			finally = append(finally, nodes)
		default:
			if len(catches) > 0 || len(finally) > 0 {
				return nil, args.Errorf("expression follows a handler clause: %v", clause)
			}
			body = append(body, clause)
		}
	}
	nodes, err := c.CompileAll(body)
	if err != nil {
		return nil, err
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (result *LVal, err error) {
		defer func() {
			for _, block := range finally {
				if _, ferr := evalBody(stack, env, block); ferr != nil {
					result, err = nil, ferr
				}
			}
		}()
		v, err := evalBody(stack, env, nodes)
		if err == nil {
			return v, nil
		}
		if _, ok := err.(*ReturnSignal); ok {
			return nil, err
		}
		for _, h := range catches {
			if !h.matches(err) {
				continue
			}
			handlerenv := newEnvRuntime(env.Runtime, env)
			handlerenv.Scope[h.name] = ErrorValue(err)
			return evalBody(stack, handlerenv, h.body)
		}
		return nil, err
	}), nil
}

// (catch condition var handler...)
func compileCatch(c *Compiler, args *FormArgs, clause *ast.List) (*catchClause, error) {
	if len(clause.Children) < 3 {
		return nil, args.Errorf("catch clause needs a condition and a variable: %v", clause)
	}
	var cond string
	switch n := clause.Children[1].(type) {
	case *ast.Leaf:
		if n.Kind == ast.Symbol || n.Kind == ast.Keyword {
			cond = n.Text
		}
	}
	if cond == "" {
		return nil, args.Errorf("catch condition is not a symbol: %v", clause.Children[1])
	}
	name, ok := ast.SymbolName(clause.Children[2])
	if !ok {
		return nil, args.Errorf("catch variable is not a symbol: %v", clause.Children[2])
	}
	body, err := c.CompileAll(clause.Children[3:])
	if err != nil {
		return nil, err
	}
	return &catchClause{condition: cond, name: name, body: body}, nil
}

func opReturn(c *Compiler, args *FormArgs) (Node, error) {
	var expr Node
	if syn := args.Get("value"); syn != nil {
		var err error
		if expr, err = c.Compile(syn); err != nil {
			return nil, err
		}
	}
	return NewFormNode(args.Name, args.Source(), func(stack *CallStack, env *LEnv) (*LVal, error) {
		v := Nil()
		if expr != nil {
			var err error
			if v, err = Eval(expr, stack, env); err != nil {
				return nil, err
			}
		}
		return nil, &ReturnSignal{Value: v}
	}), nil
}

func opThreadFirst(c *Compiler, args *FormArgs) (Node, error) {
	return compileThread(c, args, false)
}

func opThreadLast(c *Compiler, args *FormArgs) (Node, error) {
	return compileThread(c, args, true)
}

// compileThread rewrites a threading form into nested calls and compiles
// the result.  A callee known when the form is compiled receives the value
// in its &pipe parameter if it has one.
func compileThread(c *Compiler, args *FormArgs, last bool) (Node, error) {
	acc := args.Get("value")
	for _, form := range args.Rest("forms") {
		if _, ok := ast.SymbolName(form); ok {
			acc = ast.NewList(form.Loc(), form, acc)
			continue
		}
		list, ok := form.(*ast.List)
		if !ok || list.Literal || len(list.Children) == 0 {
			return nil, args.Errorf("invalid form: %v", form)
		}
		head, rest := list.Children[0], list.Children[1:]
		pos, key := 0, ""
		if last {
			pos = len(rest)
		}
		if name, ok := ast.SymbolName(head); ok {
			if e := c.Registry.Lookup(name); e != nil && e.Kind == EntryFunction {
				if p, k, ok := e.Spec.PipePosition(len(rest)); ok {
					pos, key = p, k
				}
			}
		}
		var inserted []ast.Node
		if key != "" {
			inserted = []ast.Node{ast.NewKeyword(key, acc.Loc()), acc}
		} else {
			inserted = []ast.Node{acc}
		}
		children := make([]ast.Node, 0, len(list.Children)+len(inserted))
		children = append(children, head)
		children = append(children, rest[:pos]...)
		children = append(children, inserted...)
		children = append(children, rest[pos:]...)
		acc = ast.NewList(list.Source, children...)
	}
	return c.Compile(acc)
}
