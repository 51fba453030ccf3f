package lisp

import (
	"fmt"
	"strings"
)

type langBuiltin struct {
	name   string
	params string
	fn     LBuiltin
	doc    string
}

func langBuiltins() []langBuiltin {
	return []langBuiltin{
		{"list", "(&rest items)", builtinList, "Returns a list of its arguments."},
		{"cons", "(head tail)", builtinCons, "Returns a list of head followed by the elements of tail."},
		{"car", "(lis)", builtinCAR, "Returns the first element of lis, or nil."},
		{"cdr", "(lis)", builtinCDR, "Returns lis without its first element."},
		{"nth", "(lis n)", builtinNth, "Returns the element of lis at index n, or nil."},
		{"length", "(seq)", builtinLength, "Returns the number of elements of a list or bytes of a string."},
		{"append", "(&rest lists)", builtinAppend, "Returns the concatenation of lists."},
		{"reverse", "(lis)", builtinReverse, "Returns the elements of lis in reverse order."},
		{"+", "(&rest x)", builtinAdd, "Returns the sum of its arguments."},
		{"-", "(&rest x)", builtinSub, "Subtracts the remaining arguments from the first, or negates a single argument."},
		{"*", "(&rest x)", builtinMul, "Returns the product of its arguments."},
		{"/", "(&rest x)", builtinDiv, "Divides the first argument by the others.  The result is always a float."},
		{"mod", "(a b)", builtinMod, "Returns the integer remainder of a divided by b."},
		{"=", "(a b &rest more)", builtinNumEq, "Returns true if every argument is numerically equal."},
		{"/=", "(a b &rest more)", builtinNumNE, "Returns true if no two consecutive arguments are numerically equal."},
		{"<", "(a b &rest more)", builtinLT, "Returns true if the arguments are increasing."},
		{"<=", "(a b &rest more)", builtinLEq, "Returns true if the arguments are non-decreasing."},
		{">", "(a b &rest more)", builtinGT, "Returns true if the arguments are decreasing."},
		{">=", "(a b &rest more)", builtinGEq, "Returns true if the arguments are non-increasing."},
		{"not", "(x)", builtinNot, "Returns true if x is false."},
		{"eq", "(a b)", builtinEq, "Returns true if a and b are the same atom or the same list object."},
		{"equal", "(a b)", builtinEqual, "Returns true if a and b are structurally equal."},
		{"identity", "(x)", builtinIdentity, "Returns x."},
		{"funcall", "(fun &rest args)", builtinFuncall, "Calls fun with args.  A symbol designates the function it names."},
		{"apply", "(fun &rest args)", builtinApply, "Calls fun with args, spreading the last argument, a list."},
		{"eval", "(expr)", builtinEval, "Evaluates data as an expression in the current environment."},
		{"error", "(condition &rest args)", builtinError, "Raises an error.  A symbol or keyword condition names its category, the remaining arguments form the message."},
		{"error-message", "(err)", builtinErrorMessage, "Returns the message of an error value."},
		{"error-condition", "(err)", builtinErrorCondition, "Returns the condition category of an error value as a symbol."},
		{"error-trace", "(err)", builtinErrorTrace, "Returns the frame labels of the stack captured by an error value, innermost first."},
		{"print", "(&rest values)", builtinPrint, "Writes values, separated by spaces, on a line of standard output."},
		{"debug-stack", "()", builtinDebugStack, "Writes the current stack trace to standard error."},
		{"set", "(sym value)", builtinSet, "Sets the variable sym.  A variable bound nowhere is created in the innermost scope."},
		{"gset", "(sym value)", builtinGset, "Sets the variable sym.  A variable bound nowhere is created in the outermost scope."},
		{"makunbound", "(sym)", builtinMakunbound, "Removes sym from every scope binding it."},
		{"boundp", "(sym)", builtinBoundp, "Returns true if any scope binds sym."},
		{"fboundp", "(sym)", builtinFboundp, "Returns true if sym names a registered function or special form."},
		{"fmakunbound", "(sym)", builtinFmakunbound, "Removes the registered function named sym."},
		{"get-prop", "(sym key)", builtinGetProp, "Returns the property key of sym, or nil."},
		{"put-prop", "(sym key value)", builtinPutProp, "Sets the property key of sym and returns value."},
		{"gensym", "(&optional prefix)", builtinGensym, "Returns a new symbol."},
		{"type-of", "(x)", builtinTypeOf, "Returns the type of x as a symbol."},
		{"symbol-name", "(sym)", builtinSymbolName, "Returns the name of a symbol or keyword as a string."},
	}
}

// argList returns the values of every parameter in order.
func argList(stack *CallStack, args *ArgFrame) ([]*LVal, error) {
	vals := make([]*LVal, args.Len())
	for i := range vals {
		v, err := args.Get(stack, i)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// argNumbers returns the numeric arguments of a call whose parameters are
// all required except a final rest parameter.
func argNumbers(stack *CallStack, args *ArgFrame) ([]*LVal, error) {
	vals, err := argList(stack, args)
	if err != nil {
		return nil, err
	}
	if n := len(vals); n > 0 && args.Spec.Params[n-1].Role == RoleRest {
		vals = append(vals[:n-1:n-1], vals[n-1].Cells...)
	}
	for _, v := range vals {
		if !v.IsNumeric() {
			return nil, Errorf("argument is not a number: %v", v)
		}
	}
	return vals, nil
}

func nameArg(v *LVal) (string, error) {
	switch v.Type {
	case LSymbol, LKeyword, LString:
		return v.Str, nil
	}
	return "", Errorf("argument is not a symbol: %v", v)
}

func listArg(v *LVal) ([]*LVal, error) {
	if !v.IsSeq() {
		return nil, Errorf("argument is not a list: %v", v)
	}
	return v.Cells, nil
}

func builtinList(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	return args.Get(stack, 0)
}

func builtinCons(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argList(stack, args)
	if err != nil {
		return nil, err
	}
	tail, err := listArg(vals[1])
	if err != nil {
		return nil, err
	}
	cells := make([]*LVal, 0, len(tail)+1)
	cells = append(cells, vals[0])
	return List(append(cells, tail...)...), nil
}

func builtinCAR(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	cells, err := listArg(v)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return Nil(), nil
	}
	return cells[0], nil
}

func builtinCDR(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	cells, err := listArg(v)
	if err != nil {
		return nil, err
	}
	if len(cells) <= 1 {
		return List(), nil
	}
	return List(append([]*LVal(nil), cells[1:]...)...), nil
}

func builtinNth(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argList(stack, args)
	if err != nil {
		return nil, err
	}
	cells, err := listArg(vals[0])
	if err != nil {
		return nil, err
	}
	if vals[1].Type != LInt {
		return nil, Errorf("index is not an integer: %v", vals[1])
	}
	n := vals[1].Int
	if n < 0 || n >= len(cells) {
		return Nil(), nil
	}
	return cells[n], nil
}

func builtinLength(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	switch v.Type {
	case LString:
		return Int(len(v.Str)), nil
	case LList, LNil:
		return Int(len(v.Cells)), nil
	}
	return nil, Errorf("argument is not a sequence: %v", v)
}

func builtinAppend(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	lists, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	var cells []*LVal
	for _, lis := range lists.Cells {
		c, err := listArg(lis)
		if err != nil {
			return nil, err
		}
		cells = append(cells, c...)
	}
	return List(cells...), nil
}

func builtinReverse(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	cells, err := listArg(v)
	if err != nil {
		return nil, err
	}
	rev := make([]*LVal, len(cells))
	for i, c := range cells {
		rev[len(cells)-1-i] = c
	}
	return List(rev...), nil
}

func allInt(vs []*LVal) bool {
	for _, v := range vs {
		if v.Type != LInt {
			return false
		}
	}
	return true
}

func builtinAdd(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argNumbers(stack, args)
	if err != nil {
		return nil, err
	}
	if allInt(vals) {
		sum := 0
		for _, v := range vals {
			sum += v.Int
		}
		return Int(sum), nil
	}
	sum := 0.0
	for _, v := range vals {
		sum += toFloat(v)
	}
	return Float(sum), nil
}

func builtinSub(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argNumbers(stack, args)
	if err != nil {
		return nil, err
	}
	switch len(vals) {
	case 0:
		return Int(0), nil
	case 1:
		if vals[0].Type == LInt {
			return Int(-vals[0].Int), nil
		}
		return Float(-vals[0].Float), nil
	}
	if allInt(vals) {
		diff := vals[0].Int
		for _, v := range vals[1:] {
			diff -= v.Int
		}
		return Int(diff), nil
	}
	diff := toFloat(vals[0])
	for _, v := range vals[1:] {
		diff -= toFloat(v)
	}
	return Float(diff), nil
}

func builtinMul(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argNumbers(stack, args)
	if err != nil {
		return nil, err
	}
	if allInt(vals) {
		prod := 1
		for _, v := range vals {
			prod *= v.Int
		}
		return Int(prod), nil
	}
	prod := 1.0
	for _, v := range vals {
		prod *= toFloat(v)
	}
	return Float(prod), nil
}

func builtinDiv(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argNumbers(stack, args)
	if err != nil {
		return nil, err
	}
	switch len(vals) {
	case 0:
		return Int(1), nil
	case 1:
		return Float(1 / toFloat(vals[0])), nil
	}
	// Integer division is never performed by /.
	div := toFloat(vals[0])
	for _, v := range vals[1:] {
		div /= toFloat(v)
	}
	return Float(div), nil
}

func builtinMod(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argList(stack, args)
	if err != nil {
		return nil, err
	}
	a, b := vals[0], vals[1]
	if a.Type != LInt || b.Type != LInt {
		return nil, Errorf("arguments are not integers: %v %v", a, b)
	}
	if b.Int == 0 {
		return nil, ErrorConditionf("arithmetic-error", "division by zero")
	}
	return Int(a.Int % b.Int), nil
}

// compareChain reports whether cmp holds for every consecutive pair of
// numeric arguments.
func compareChain(stack *CallStack, args *ArgFrame, cmp func(a, b float64) bool) (*LVal, error) {
	vals, err := argNumbers(stack, args)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(vals); i++ {
		a, b := vals[i-1], vals[i]
		var ok bool
		if a.Type == LInt && b.Type == LInt {
			ok = intCompare(a.Int, b.Int, cmp)
		} else {
			ok = cmp(toFloat(a), toFloat(b))
		}
		if !ok {
			return Bool(false), nil
		}
	}
	return Bool(true), nil
}

// intCompare applies cmp to the order of a and b so integers too large to
// be represented exactly as floats compare correctly.
func intCompare(a, b int, cmp func(a, b float64) bool) bool {
	switch {
	case a < b:
		return cmp(0, 1)
	case a > b:
		return cmp(1, 0)
	}
	return cmp(0, 0)
}

func builtinNumEq(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	return compareChain(stack, args, func(a, b float64) bool { return a == b })
}

func builtinNumNE(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	return compareChain(stack, args, func(a, b float64) bool { return a != b })
}

func builtinLT(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	return compareChain(stack, args, func(a, b float64) bool { return a < b })
}

func builtinLEq(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	return compareChain(stack, args, func(a, b float64) bool { return a <= b })
}

func builtinGT(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	return compareChain(stack, args, func(a, b float64) bool { return a > b })
}

func builtinGEq(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	return compareChain(stack, args, func(a, b float64) bool { return a >= b })
}

func builtinNot(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	return Bool(!True(v)), nil
}

func builtinEq(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argList(stack, args)
	if err != nil {
		return nil, err
	}
	a, b := vals[0], vals[1]
	if a == b {
		return Bool(true), nil
	}
	switch {
	case a.Type != b.Type:
		return Bool(false), nil
	case a.Type == LList:
		return Bool(len(a.Cells) == 0 && len(b.Cells) == 0), nil
	case a.Type == LFun || a.Type == LError || a.Type == LNative:
		return Bool(a.Native == b.Native), nil
	}
	return Bool(Equal(a, b)), nil
}

func builtinEqual(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argList(stack, args)
	if err != nil {
		return nil, err
	}
	return Bool(Equal(vals[0], vals[1])), nil
}

func builtinIdentity(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	return args.Get(stack, 0)
}

// functionArg returns the function designated by v, a function value or
// the name of one.
func functionArg(stack *CallStack, env *LEnv, v *LVal) (*LVal, error) {
	switch v.Type {
	case LFun:
		return v, nil
	case LSymbol:
		return resolveFunction(stack, env, v.Str)
	}
	return nil, Errorf("not a function: %v", v)
}

func builtinFuncall(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argList(stack, args)
	if err != nil {
		return nil, err
	}
	fun, err := functionArg(stack, env, vals[0])
	if err != nil {
		return nil, err
	}
	return Call(stack, env, fun, vals[1].Cells...)
}

func builtinApply(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argList(stack, args)
	if err != nil {
		return nil, err
	}
	fun, err := functionArg(stack, env, vals[0])
	if err != nil {
		return nil, err
	}
	rest := vals[1].Cells
	if len(rest) == 0 {
		return Call(stack, env, fun)
	}
	last, err := listArg(rest[len(rest)-1])
	if err != nil {
		return nil, err
	}
	spread := append(append([]*LVal(nil), rest[:len(rest)-1]...), last...)
	return Call(stack, env, fun, spread...)
}

func builtinEval(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	node, err := env.Runtime.Compile(valueSyntax(v))
	if err != nil {
		return nil, err
	}
	return Eval(node, stack, env)
}

func builtinError(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argList(stack, args)
	if err != nil {
		return nil, err
	}
	cond, rest := vals[0], vals[1].Cells
	lerr := &LispError{Data: vals[1]}
	parts := make([]string, 0, len(rest)+1)
	switch cond.Type {
	case LSymbol, LKeyword:
		lerr.Cond = cond.Str
	default:
		parts = append(parts, displayString(cond))
	}
	for _, v := range rest {
		parts = append(parts, displayString(v))
	}
	lerr.Msg = strings.Join(parts, " ")
	return nil, lerr
}

// errorArg returns the error held by the first argument.
func errorArg(stack *CallStack, args *ArgFrame) (cause error, err error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	if cause = v.Err(); cause == nil {
		return nil, Errorf("argument is not an error: %v", v)
	}
	return cause, nil
}

func builtinErrorMessage(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	lerr, err := errorArg(stack, args)
	if err != nil {
		return nil, err
	}
	return String(ErrorMessage(lerr)), nil
}

func builtinErrorCondition(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	lerr, err := errorArg(stack, args)
	if err != nil {
		return nil, err
	}
	return Symbol(ErrorCondition(lerr)), nil
}

func builtinErrorTrace(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	lerr, err := errorArg(stack, args)
	if err != nil {
		return nil, err
	}
	trace := ErrorStack(lerr)
	if trace == nil {
		return List(), nil
	}
	labels := trace.Labels()
	cells := make([]*LVal, len(labels))
	for i, label := range labels {
		cells[i] = String(label)
	}
	return List(cells...), nil
}

// displayString formats v for people: strings are written without quotes.
func displayString(v *LVal) string {
	if v.Type == LString {
		return v.Str
	}
	return v.String()
}

func builtinPrint(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(vals.Cells))
	for i, v := range vals.Cells {
		parts[i] = displayString(v)
	}
	if _, err := fmt.Fprintln(env.Runtime.Stdout, strings.Join(parts, " ")); err != nil {
		return nil, err
	}
	return Nil(), nil
}

func builtinDebugStack(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	if _, err := stack.DebugPrint(env.Runtime.Stderr); err != nil {
		return nil, err
	}
	return Nil(), nil
}

func builtinSet(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	return assignBuiltin(stack, env, args, (*LEnv).Replace)
}

func builtinGset(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	return assignBuiltin(stack, env, args, (*LEnv).GlobalReplace)
}

func assignBuiltin(stack *CallStack, env *LEnv, args *ArgFrame, assign func(env *LEnv, name string, v *LVal)) (*LVal, error) {
	vals, err := argList(stack, args)
	if err != nil {
		return nil, err
	}
	if vals[0].Type != LSymbol {
		return nil, Errorf("first argument is not a symbol: %v", vals[0].Type)
	}
	switch vals[0].Str {
	case NilSymbol, TrueSymbol, FalseSymbol:
		return nil, Errorf("cannot set constant: %s", vals[0].Str)
	}
	assign(env, vals[0].Str, vals[1])
	return vals[1], nil
}

func builtinMakunbound(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	name, err := nameArg(v)
	if err != nil {
		return nil, err
	}
	return Bool(env.Remove(name)), nil
}

func builtinBoundp(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	name, err := nameArg(v)
	if err != nil {
		return nil, err
	}
	return Bool(env.Contains(name)), nil
}

func builtinFboundp(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	name, err := nameArg(v)
	if err != nil {
		return nil, err
	}
	return Bool(env.Runtime.Registry.Lookup(name) != nil), nil
}

func builtinFmakunbound(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	name, err := nameArg(v)
	if err != nil {
		return nil, err
	}
	return Bool(env.Runtime.Registry.Remove(name)), nil
}

func builtinGetProp(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argList(stack, args)
	if err != nil {
		return nil, err
	}
	name, err := nameArg(vals[0])
	if err != nil {
		return nil, err
	}
	key, err := nameArg(vals[1])
	if err != nil {
		return nil, err
	}
	return env.GetProp(name, key), nil
}

func builtinPutProp(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	vals, err := argList(stack, args)
	if err != nil {
		return nil, err
	}
	name, err := nameArg(vals[0])
	if err != nil {
		return nil, err
	}
	key, err := nameArg(vals[1])
	if err != nil {
		return nil, err
	}
	env.PutProp(name, key, vals[2])
	return vals[2], nil
}

func builtinGensym(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	prefix := ""
	if !v.IsNil() {
		if prefix, err = nameArg(v); err != nil {
			return nil, err
		}
	}
	return Symbol(env.Runtime.GenSym(prefix)), nil
}

func builtinTypeOf(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	return Symbol(v.Type.String()), nil
}

func builtinSymbolName(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	if v.Type != LSymbol && v.Type != LKeyword {
		return nil, Errorf("argument is not a symbol: %v", v)
	}
	return String(v.Str), nil
}
