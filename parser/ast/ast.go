// Package ast defines the syntax tree produced by the reader and consumed by
// the compiler in package lisp.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

// Node is either a *Leaf or a *List.
type Node interface {
	// Loc returns the location of the node in its source stream.
	Loc() *token.Location
	// Problem returns a problem found while reading the node, or nil.
	Problem() error
	String() string
	node()
}

// LeafKind identifies the literal held by a Leaf.
type LeafKind uint

// LeafKind constants.
const (
	Symbol LeafKind = iota
	Keyword
	Int
	Float
	String
	// Opaque leaves carry an arbitrary value built by the runtime (for
	// example when data is turned back into code by eval).
	Opaque
)

// Leaf is an atom.  Text holds the symbol or keyword name (without the
// leading colon) and the decoded string for String leaves.
type Leaf struct {
	Kind   LeafKind
	Text   string
	Int    int
	Float  float64
	Value  interface{}
	Source *token.Location
	Err    error
}

// List is a parenthesized form, or a bracketed literal list when Literal is
// true.
type List struct {
	Children []Node
	Literal  bool
	Source   *token.Location
	Err      error
}

// NewSymbol returns a symbol leaf.
func NewSymbol(name string, loc *token.Location) *Leaf {
	return &Leaf{Kind: Symbol, Text: name, Source: loc}
}

// NewKeyword returns a keyword leaf, name excludes the colon.
func NewKeyword(name string, loc *token.Location) *Leaf {
	return &Leaf{Kind: Keyword, Text: name, Source: loc}
}

// NewList returns a form list.
func NewList(loc *token.Location, children ...Node) *List {
	return &List{Children: children, Source: loc}
}

func (n *Leaf) Loc() *token.Location { return n.Source }
func (n *Leaf) Problem() error       { return n.Err }
func (n *Leaf) node()                {}

func (n *List) Loc() *token.Location { return n.Source }
func (n *List) Problem() error       { return n.Err }
func (n *List) node()                {}

// IsSymbol reports whether n is the symbol name.
func IsSymbol(n Node, name string) bool {
	leaf, ok := n.(*Leaf)
	return ok && leaf.Kind == Symbol && leaf.Text == name
}

// SymbolName returns the name of a symbol leaf.
func SymbolName(n Node) (string, bool) {
	leaf, ok := n.(*Leaf)
	if !ok || leaf.Kind != Symbol {
		return "", false
	}
	return leaf.Text, true
}

func (n *Leaf) String() string {
	switch n.Kind {
	case Symbol:
		return n.Text
	case Keyword:
		return ":" + n.Text
	case Int:
		return strconv.Itoa(n.Int)
	case Float:
		return strconv.FormatFloat(n.Float, 'g', -1, 64)
	case String:
		return strconv.Quote(n.Text)
	default:
		return fmt.Sprint(n.Value)
	}
}

func (n *List) String() string {
	open, close := "(", ")"
	if n.Literal {
		open, close = "[", "]"
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.String()
	}
	return open + strings.Join(parts, " ") + close
}
