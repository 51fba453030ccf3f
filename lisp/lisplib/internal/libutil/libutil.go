// Package libutil holds helpers shared by the library groups.
package libutil

import (
	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
)

// Builtin is a function of a library group.
type Builtin struct {
	Name   string
	Params string
	Fun    lisp.LBuiltin
	Doc    string
}

// Function returns a Builtin taking the lambda list params.
func Function(name, params string, fn lisp.LBuiltin, doc string) *Builtin {
	return &Builtin{Name: name, Params: params, Fun: fn, Doc: doc}
}

// Define registers builtins in the registry of rt under group.
func Define(rt *lisp.Runtime, group string, builtins []*Builtin) error {
	for _, fn := range builtins {
		err := rt.Registry.DefineBuiltin(group, fn.Name, fn.Params, fn.Fun, fn.Doc)
		if err != nil {
			return err
		}
	}
	rt.Logger.Debug("library loaded", "group", group, "functions", len(builtins))
	return nil
}

// Args returns the value of every parameter of a call.  Lazy parameters are
// forced.
func Args(stack *lisp.CallStack, args *lisp.ArgFrame) ([]*lisp.LVal, error) {
	vals := make([]*lisp.LVal, args.Len())
	for i := range vals {
		v, err := args.Get(stack, i)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// Float returns the value of a number as a float64.
func Float(x *lisp.LVal) (float64, error) {
	switch x.Type {
	case lisp.LFloat:
		return x.Float, nil
	case lisp.LInt:
		return float64(x.Int), nil
	}
	return 0, lisp.Errorf("argument is not a number: %v", x.Type)
}

// Str returns the contents of a string.
func Str(x *lisp.LVal) (string, error) {
	if x.Type != lisp.LString {
		return "", lisp.Errorf("argument is not a string: %v", x.Type)
	}
	return x.Str, nil
}
