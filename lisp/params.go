package lisp

import (
	"fmt"
	"strings"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/ast"
	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

// Role is the way a parameter is filled from the arguments of a call.
type Role uint8

// Role values
const (
	RoleRequired Role = iota
	RoleOptional
	RoleTrailingRequired
	RoleRest
	RoleKeyword
	RoleRestKeyword
	numRoles
)

var roleStrings = [numRoles]string{
	RoleRequired:         "required",
	RoleOptional:         "optional",
	RoleTrailingRequired: "trailing-required",
	RoleRest:             "rest",
	RoleKeyword:          "keyword",
	RoleRestKeyword:      "rest-keyword",
}

func (r Role) String() string {
	if r >= numRoles {
		return "invalid"
	}
	return roleStrings[r]
}

const noRole = numRoles

var roleMarkers = map[string]int{
	RequiredArgSymbol: 0,
	OptArgSymbol:      1,
	VarArgSymbol:      2,
	KeyArgSymbol:      3,
}

// roleTransitions is indexed by the current role and a role marker.
var roleTransitions = [numRoles][4]Role{
	//                &required          &optional  &rest   &key
	RoleRequired:         {RoleRequired, RoleOptional, RoleRest, RoleKeyword},
	RoleOptional:         {RoleTrailingRequired, RoleOptional, RoleRest, RoleKeyword},
	RoleTrailingRequired: {RoleTrailingRequired, noRole, noRole, noRole},
	RoleRest:             {RoleTrailingRequired, noRole, RoleRest, RoleRestKeyword},
	RoleKeyword:          {RoleTrailingRequired, noRole, RoleRest, RoleKeyword},
	RoleRestKeyword:      {RoleTrailingRequired, noRole, noRole, RoleRestKeyword},
}

// Param describes one parameter of a lambda list.
type Param struct {
	Name string
	Role Role
	// Default is evaluated in the call's argument frame when no argument is
	// supplied.  A nil Default binds nil.
	Default        Node
	StatusVar      string
	Lazy           bool
	AllowOtherKeys bool
	Pipe           bool
}

// ParamSpec is a compiled lambda list.  A ParamSpec is immutable and shared
// by every call of the function it belongs to.
type ParamSpec struct {
	Params  []Param
	HasRest bool
	Source  *token.Location

	text        string
	index       map[string]int
	statusIndex map[string]int
}

// CompileParams compiles the elements of a lambda list.  Default
// expressions are compiled with compile.
func CompileParams(list []ast.Node, src *token.Location, compile func(ast.Node) (Node, error)) (*ParamSpec, error) {
	spec := &ParamSpec{
		Source:      src,
		index:       make(map[string]int),
		statusIndex: make(map[string]int),
	}
	parts := make([]string, len(list))
	for i, n := range list {
		parts[i] = n.String()
	}
	spec.text = "(" + strings.Join(parts, " ") + ")"

	c := paramCompiler{spec: spec, role: RoleRequired, compile: compile}
	for _, n := range list {
		if err := c.next(n); err != nil {
			return nil, err
		}
	}
	if c.pipeNext {
		return nil, c.errorf(src, "%s must precede a parameter", PipeArgSymbol)
	}
	return spec, nil
}

// MustParams compiles a lambda list given as source text.  It is meant for
// declaring builtins and panics on error.
func MustParams(text string) *ParamSpec {
	spec, err := ParseParams(text)
	if err != nil {
		panic(err)
	}
	return spec
}

type paramCompiler struct {
	spec      *ParamSpec
	role      Role
	lazy      bool
	pipeSeen  bool
	pipeNext  bool
	prevParam bool
	compile   func(ast.Node) (Node, error)
}

func (c *paramCompiler) next(n ast.Node) error {
	if name, ok := ast.SymbolName(n); ok && strings.HasPrefix(name, MetaArgPrefix) {
		err := c.marker(n, name)
		c.prevParam = false
		return err
	}
	p, err := c.param(n)
	if err != nil {
		return err
	}
	return c.add(n, p)
}

func (c *paramCompiler) marker(n ast.Node, name string) error {
	if m, ok := roleMarkers[name]; ok {
		if c.pipeNext {
			return c.errorf(n.Loc(), "%s must precede a parameter", PipeArgSymbol)
		}
		next := roleTransitions[c.role][m]
		if next == noRole {
			return c.errorf(n.Loc(), "misplaced argument keyword: %s", name)
		}
		c.role = next
		return nil
	}
	switch name {
	case LazyArgSymbol:
		c.lazy = true
	case EagerArgSymbol:
		c.lazy = false
	case PipeArgSymbol:
		if c.pipeSeen {
			return c.errorf(n.Loc(), "multiple %s markers", PipeArgSymbol)
		}
		c.pipeSeen, c.pipeNext = true, true
	case AllowOtherKeysSymbol:
		params := c.spec.Params
		if !c.prevParam || !isKeywordRole(params[len(params)-1].Role) {
			return c.errorf(n.Loc(), "misplaced argument keyword: %s", name)
		}
		for i := len(params) - 1; i >= 0 && isKeywordRole(params[i].Role); i-- {
			params[i].AllowOtherKeys = true
		}
	default:
		return c.errorf(n.Loc(), "unknown argument keyword: %s", name)
	}
	return nil
}

func (c *paramCompiler) param(n ast.Node) (Param, error) {
	p := Param{Role: c.role, Lazy: c.lazy, Pipe: c.pipeNext}
	switch n := n.(type) {
	case *ast.Leaf:
		if n.Kind != ast.Symbol {
			return p, c.errorf(n.Loc(), "non-symbol parameter: %v", n)
		}
		p.Name = n.Text
	case *ast.List:
		switch c.role {
		case RoleOptional, RoleKeyword, RoleRestKeyword:
		default:
			return p, c.errorf(n.Loc(), "misplaced parameter spec for %s parameter: %v", c.role, n)
		}
		switch {
		case len(n.Children) == 0:
			return p, c.errorf(n.Loc(), "empty parameter spec")
		case len(n.Children) > 3:
			return p, c.errorf(n.Loc(), "parameter spec too long: %v", n)
		}
		name, ok := ast.SymbolName(n.Children[0])
		if !ok {
			return p, c.errorf(n.Loc(), "non-symbol parameter: %v", n.Children[0])
		}
		p.Name = name
		if len(n.Children) > 1 {
			def, err := c.compile(n.Children[1])
			if err != nil {
				return p, err
			}
			p.Default = def
		}
		if len(n.Children) > 2 {
			status, ok := ast.SymbolName(n.Children[2])
			if !ok {
				return p, c.errorf(n.Loc(), "non-symbol status variable: %v", n.Children[2])
			}
			p.StatusVar = status
		}
	}
	return p, nil
}

func (c *paramCompiler) add(n ast.Node, p Param) error {
	spec := c.spec
	for _, name := range []string{p.Name, p.StatusVar} {
		if name == "" {
			continue
		}
		switch name {
		case TrueSymbol, FalseSymbol, NilSymbol:
			return c.errorf(n.Loc(), "cannot bind constant: %s", name)
		}
		if strings.HasPrefix(name, MetaArgPrefix) {
			return c.errorf(n.Loc(), "misplaced argument keyword: %s", name)
		}
		if spec.declares(name) || (name == p.StatusVar && name == p.Name) {
			return c.errorf(n.Loc(), "duplicate parameter name: %s", name)
		}
	}
	if p.Role == RoleRest {
		if spec.HasRest {
			return c.errorf(n.Loc(), "multiple rest parameters: %s", p.Name)
		}
		spec.HasRest = true
	}
	i := len(spec.Params)
	spec.index[p.Name] = i
	if p.StatusVar != "" {
		spec.statusIndex[p.StatusVar] = i
	}
	spec.Params = append(spec.Params, p)
	c.pipeNext = false
	c.prevParam = true
	return nil
}

func (c *paramCompiler) errorf(loc *token.Location, format string, v ...interface{}) error {
	if loc == nil {
		loc = c.spec.Source
	}
	return &SpecError{Source: loc, Msg: fmt.Sprintf(format, v...)}
}

func isKeywordRole(r Role) bool {
	return r == RoleKeyword || r == RoleRestKeyword
}

func (spec *ParamSpec) declares(name string) bool {
	_, ok := spec.index[name]
	if !ok {
		_, ok = spec.statusIndex[name]
	}
	return ok
}

// Index returns the position of the parameter name, or -1.
func (spec *ParamSpec) Index(name string) int {
	if i, ok := spec.index[name]; ok {
		return i
	}
	return -1
}

// MinArgs returns the number of arguments a call must supply.
func (spec *ParamSpec) MinArgs() int {
	n := 0
	for _, p := range spec.Params {
		if p.Role == RoleRequired || p.Role == RoleTrailingRequired {
			n++
		}
	}
	return n
}

// Pipe returns the index of the parameter marked with &pipe, or -1.
func (spec *ParamSpec) Pipe() int {
	for i, p := range spec.Params {
		if p.Pipe {
			return i
		}
	}
	return -1
}

// PipePosition returns where a threaded value is inserted among nargs
// arguments for the &pipe parameter.  Keyword parameters take the value as a
// trailing pair, in which case key is the keyword name.  The value of ok is
// false when no parameter is marked.
func (spec *ParamSpec) PipePosition(nargs int) (pos int, key string, ok bool) {
	i := spec.Pipe()
	if i < 0 {
		return 0, "", false
	}
	p := spec.Params[i]
	switch p.Role {
	case RoleRequired, RoleOptional:
		return min(i, nargs), "", true
	case RoleTrailingRequired:
		after := 0
		for _, q := range spec.Params[i+1:] {
			if q.Role == RoleTrailingRequired {
				after++
			}
		}
		return max(nargs-after, 0), "", true
	case RoleRest:
		return nargs, "", true
	default:
		return nargs, p.Name, true
	}
}

// String returns the lambda list as written.
func (spec *ParamSpec) String() string {
	if spec == nil {
		return "()"
	}
	return spec.text
}
