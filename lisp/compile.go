package lisp

import (
	"fmt"
	"strings"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/ast"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/rdparser"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

// Compiler turns syntax trees into nodes.  Heads of forms are resolved
// against Registry when a form is compiled: special forms compile
// themselves, and calls to registered functions are checked against their
// lambda list once.  Calls to any other name are resolved when evaluated.
type Compiler struct {
	Registry *Registry
}

// Compile compiles n.
func (c *Compiler) Compile(n ast.Node) (Node, error) {
	if err := n.Problem(); err != nil {
		return nil, &CompileError{Source: n.Loc(), Msg: err.Error()}
	}
	switch n := n.(type) {
	case *ast.Leaf:
		return c.compileAtom(n)
	case *ast.List:
		return c.compileList(n)
	}
	return nil, &CompileError{Source: n.Loc(), Msg: fmt.Sprintf("unknown syntax node: %T", n)}
}

// CompileAll compiles each node of ns.
func (c *Compiler) CompileAll(ns []ast.Node) ([]Node, error) {
	nodes := make([]Node, len(ns))
	for i, n := range ns {
		node, err := c.Compile(n)
		if err != nil {
			return nil, err
		}
		nodes[i] = node
	}
	return nodes, nil
}

func (c *Compiler) compileAtom(n *ast.Leaf) (Node, error) {
	switch n.Kind {
	case ast.Symbol:
		switch n.Text {
		case NilSymbol, TrueSymbol, FalseSymbol:
			return Constant(syntaxValue(n), n.Source), nil
		}
		return &varNode{name: n.Text, src: n.Source}, nil
	case ast.Keyword, ast.Int, ast.Float, ast.String, ast.Opaque:
		return Constant(syntaxValue(n), n.Source), nil
	}
	return nil, &CompileError{Source: n.Source, Msg: fmt.Sprintf("unknown atom: %v", n)}
}

func (c *Compiler) compileList(n *ast.List) (Node, error) {
	if n.Literal {
		return c.compileCall(n, "list", n.Children)
	}
	if len(n.Children) == 0 {
		return Constant(List(), n.Source), nil
	}
	switch head := n.Children[0].(type) {
	case *ast.List:
		if head.Literal {
			break
		}
		fun, err := c.Compile(head)
		if err != nil {
			return nil, err
		}
		args, err := c.CompileAll(n.Children[1:])
		if err != nil {
			return nil, err
		}
		return &inlineCallNode{head: fun, args: args, src: n.Source}, nil
	case *ast.Leaf:
		if head.Kind != ast.Symbol || head.Err != nil {
			break
		}
		return c.compileCall(n, head.Text, n.Children[1:])
	}
	return nil, &CompileError{Source: n.Source, Msg: fmt.Sprintf("invalid function designator: %v", n.Children[0])}
}

func (c *Compiler) compileCall(form *ast.List, name string, argSyntax []ast.Node) (Node, error) {
	e := c.Registry.Lookup(name)
	if e != nil && e.Kind == EntrySpecialForm {
		args, err := bindForm(e, form, argSyntax)
		if err != nil {
			return nil, err
		}
		return e.Form(c, args)
	}
	args, err := c.CompileAll(argSyntax)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return &dynamicCallNode{name: name, args: args, src: form.Source}, nil
	}
	// A call that does not fit the current definition is still compiled;
	// it fails when evaluated unless the function is redefined first.
	plan, _ := planBinding(e.Fun.FunData().Spec, nodeArgs(args))
	return &callNode{name: name, args: args, plan: plan, src: form.Source}, nil
}

// FormArgs holds the unevaluated arguments of a special form matched
// against the form's lambda list.
type FormArgs struct {
	Name string
	Form *ast.List

	args []ast.Node
	plan *bindPlan
}

func bindForm(e *Entry, form *ast.List, args []ast.Node) (*FormArgs, error) {
	plan, err := planBinding(e.Spec, syntaxArgs(args))
	if err != nil {
		return nil, &CompileError{Source: form.Source, Msg: e.Name + ": " + ErrorMessage(err)}
	}
	return &FormArgs{Name: e.Name, Form: form, args: args, plan: plan}, nil
}

// Source returns the location of the form.
func (a *FormArgs) Source() *token.Location {
	return a.Form.Source
}

// Get returns the argument bound to the named parameter, or nil when it was
// not supplied.
func (a *FormArgs) Get(name string) ast.Node {
	i := a.plan.spec.Index(name)
	if i < 0 || !a.plan.slots[i].supplied || a.plan.spec.Params[i].Role == RoleRest {
		return nil
	}
	return a.args[a.plan.slots[i].lo]
}

// Rest returns the arguments collected by the named rest parameter.
func (a *FormArgs) Rest(name string) []ast.Node {
	i := a.plan.spec.Index(name)
	if i < 0 || a.plan.spec.Params[i].Role != RoleRest {
		return nil
	}
	sp := a.plan.slots[i]
	return a.args[sp.lo:sp.hi]
}

// Errorf returns a compile error located at the form.
func (a *FormArgs) Errorf(format string, v ...interface{}) error {
	return &CompileError{Source: a.Form.Source, Msg: a.Name + ": " + fmt.Sprintf(format, v...)}
}

// ParseParams compiles a lambda list from source text.  Default
// expressions in the list may call only functions resolved at call time.
func ParseParams(text string) (*ParamSpec, error) {
	exprs, err := rdparser.NewReader().Read("params", strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	if len(exprs) != 1 {
		return nil, &SpecError{Msg: "lambda list expected: " + text}
	}
	list, ok := exprs[0].(*ast.List)
	if !ok {
		return nil, &SpecError{Source: exprs[0].Loc(), Msg: "lambda list expected: " + text}
	}
	c := &Compiler{Registry: NewRegistry()}
	return CompileParams(list.Children, list.Source, c.Compile)
}

// syntaxValue converts syntax to the data it denotes, as quote does.
func syntaxValue(n ast.Node) *LVal {
	var v *LVal
	switch n := n.(type) {
	case *ast.Leaf:
		switch n.Kind {
		case ast.Symbol:
			switch n.Text {
			case NilSymbol:
				v = Nil()
			case TrueSymbol:
				v = Bool(true)
			case FalseSymbol:
				v = Bool(false)
			default:
				v = Symbol(n.Text)
			}
		case ast.Keyword:
			v = Keyword(n.Text)
		case ast.Int:
			v = Int(n.Int)
		case ast.Float:
			v = Float(n.Float)
		case ast.String:
			v = String(n.Text)
		default:
			if lv, ok := n.Value.(*LVal); ok {
				return lv
			}
			v = Native(n.Value)
		}
	case *ast.List:
		cells := make([]*LVal, len(n.Children))
		for i, c := range n.Children {
			cells[i] = syntaxValue(c)
		}
		v = List(cells...)
	}
	v.Source = n.Loc()
	return v
}

// valueSyntax converts data to syntax so it can be compiled, as eval does.
func valueSyntax(v *LVal) ast.Node {
	switch v.Type {
	case LSymbol:
		return ast.NewSymbol(v.Str, v.Source)
	case LKeyword:
		return ast.NewKeyword(v.Str, v.Source)
	case LInt:
		return &ast.Leaf{Kind: ast.Int, Int: v.Int, Source: v.Source}
	case LFloat:
		return &ast.Leaf{Kind: ast.Float, Float: v.Float, Source: v.Source}
	case LString:
		return &ast.Leaf{Kind: ast.String, Text: v.Str, Source: v.Source}
	case LList:
		children := make([]ast.Node, len(v.Cells))
		for i, c := range v.Cells {
			children[i] = valueSyntax(c)
		}
		return &ast.List{Children: children, Source: v.Source}
	}
	return &ast.Leaf{Kind: ast.Opaque, Value: v, Source: v.Source}
}
