// Package libmath provides mathematical functions.
package libmath

import (
	"math"

	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp/lisplib/internal/libutil"
)

// DefaultGroupName tags the functions defined by LoadLibrary.
const DefaultGroupName = "math"

// LoadLibrary adds the math functions and the globals inf and -inf to rt.
func LoadLibrary(rt *lisp.Runtime) error {
	rt.Globals["inf"] = lisp.Float(math.Inf(1))
	rt.Globals["-inf"] = lisp.Float(math.Inf(-1))
	return libutil.Define(rt, DefaultGroupName, builtins)
}

var builtins = []*libutil.Builtin{
	libutil.Function("ceil", "(number)", builtinCeil, "Returns the least integer value not less than number."),
	libutil.Function("floor", "(number)", builtinFloor, "Returns the greatest integer value not greater than number."),
	libutil.Function("sqrt", "(number)", floatFunc(math.Sqrt), "Returns the square root of number."),
	libutil.Function("exp", "(number)", floatFunc(math.Exp), "Returns e raised to number."),
	libutil.Function("ln", "(number)", floatFunc(math.Log), "Returns the natural logarithm of number."),
	libutil.Function("log", "(base number)", builtinLog, "Returns the logarithm of number in base."),
}

func builtinCeil(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	return rounding(stack, args, math.Ceil)
}

func builtinFloor(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	return rounding(stack, args, math.Floor)
}

// rounding applies fn to floats.  Integers are returned as they are.
func rounding(stack *lisp.CallStack, args *lisp.ArgFrame, fn func(float64) float64) (*lisp.LVal, error) {
	x, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	if x.Type == lisp.LInt {
		return x, nil
	}
	f, err := libutil.Float(x)
	if err != nil {
		return nil, err
	}
	return lisp.Float(fn(f)), nil
}

func floatFunc(fn func(float64) float64) lisp.LBuiltin {
	return func(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
		x, err := args.Get(stack, 0)
		if err != nil {
			return nil, err
		}
		f, err := libutil.Float(x)
		if err != nil {
			return nil, err
		}
		return lisp.Float(fn(f)), nil
	}
}

func builtinLog(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	vals, err := libutil.Args(stack, args)
	if err != nil {
		return nil, err
	}
	b, err := libutil.Float(vals[0])
	if err != nil {
		return nil, err
	}
	x, err := libutil.Float(vals[1])
	if err != nil {
		return nil, err
	}
	return lisp.Float(math.Log(x) / math.Log(b)), nil
}
