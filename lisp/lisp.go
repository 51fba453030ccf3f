package lisp

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

// LType is the type of an LVal
type LType uint

// Possible LType values
const (
	LInvalid LType = iota
	LNil
	LBool
	LInt
	LFloat
	LString
	LSymbol
	LKeyword
	LList
	LFun
	LError
	LNative
)

var ltypeStrings = []string{
	LInvalid: "INVALID",
	LNil:     "nil",
	LBool:    "bool",
	LInt:     "int",
	LFloat:   "float",
	LString:  "string",
	LSymbol:  "symbol",
	LKeyword: "keyword",
	LList:    "list",
	LFun:     "function",
	LError:   "error",
	LNative:  "native",
}

func (t LType) String() string {
	if int(t) >= len(ltypeStrings) {
		return ltypeStrings[LInvalid]
	}
	return ltypeStrings[t]
}

// LBuiltin is the implementation of a builtin function.  The caller's
// environment is env and args holds the bound arguments.
type LBuiltin func(stack *CallStack, env *LEnv, args *ArgFrame) (*LVal, error)

// LFunData is the data held by function values.
type LFunData struct {
	Name    string
	Spec    *ParamSpec
	Builtin LBuiltin
	Body    []Node
	Env     *LEnv // closure environment of a lambda
	Doc     string
}

// LVal is a lisp value
type LVal struct {
	Source *token.Location

	Type LType

	// Bool values use Int, 1 is true.
	Int   int
	Float float64

	// Str holds string contents and symbol and keyword names.
	Str string

	Cells []*LVal

	// Native holds *LFunData for functions, the error of error values and an
	// arbitrary Go value for native values.
	Native interface{}
}

// Nil returns an LVal representing nil, the absent value.
func Nil() *LVal {
	return &LVal{Type: LNil}
}

// Bool returns an LVal for b.
func Bool(b bool) *LVal {
	v := &LVal{Type: LBool}
	if b {
		v.Int = 1
	}
	return v
}

// Int returns an LVal representing the integer x.
func Int(x int) *LVal {
	return &LVal{Type: LInt, Int: x}
}

// Float returns an LVal representing the number x.
func Float(x float64) *LVal {
	return &LVal{Type: LFloat, Float: x}
}

// String returns an LVal representing the string str.
func String(str string) *LVal {
	return &LVal{Type: LString, Str: str}
}

// Symbol returns an LVal resprenting the symbol s.
func Symbol(s string) *LVal {
	return &LVal{Type: LSymbol, Str: s}
}

// Keyword returns a keyword.  The name does not include the colon.
func Keyword(name string) *LVal {
	return &LVal{Type: LKeyword, Str: name}
}

// List returns a list holding cells.  A list with no cells is the empty list,
// which is distinct from nil.
func List(cells ...*LVal) *LVal {
	if cells == nil {
		cells = []*LVal{}
	}
	return &LVal{Type: LList, Cells: cells}
}

// Native returns an LVal wrapping an arbitrary Go value.
func Native(x interface{}) *LVal {
	return &LVal{Type: LNative, Native: x}
}

// ErrorValue returns an LVal holding err, as seen by catch handlers.
func ErrorValue(err error) *LVal {
	return &LVal{Type: LError, Native: err}
}

// Builtin returns a function value implemented in Go.
func Builtin(name string, spec *ParamSpec, fn LBuiltin) *LVal {
	return &LVal{
		Type:   LFun,
		Native: &LFunData{Name: name, Spec: spec, Builtin: fn},
	}
}

// Lambda returns a function value closing over env.
func Lambda(name string, spec *ParamSpec, body []Node, env *LEnv) *LVal {
	return &LVal{
		Type:   LFun,
		Native: &LFunData{Name: name, Spec: spec, Body: body, Env: env},
	}
}

// FunData returns the function data of a function value, or nil.
func (v *LVal) FunData() *LFunData {
	if v == nil || v.Type != LFun {
		return nil
	}
	data, _ := v.Native.(*LFunData)
	return data
}

// Err returns the error held by an error value.
func (v *LVal) Err() error {
	if v.Type != LError {
		return nil
	}
	err, _ := v.Native.(error)
	return err
}

// IsNil returns true if v is nil.
func (v *LVal) IsNil() bool {
	return v == nil || v.Type == LNil
}

// IsNumeric returns true if v is an int or a float.
func (v *LVal) IsNumeric() bool {
	return v.Type == LInt || v.Type == LFloat
}

// IsSeq returns true if v can be treated as a list.  Nil is an empty
// sequence.
func (v *LVal) IsSeq() bool {
	return v.Type == LList || v.Type == LNil
}

// Len returns the number of cells in a list.
func (v *LVal) Len() int {
	return len(v.Cells)
}

// True returns the truth value of v.  Nil, false and the empty list are false,
// every other value is true.
func True(v *LVal) bool {
	switch v.Type {
	case LNil:
		return false
	case LBool:
		return v.Int != 0
	case LList:
		return len(v.Cells) > 0
	}
	return true
}

// Equal reports whether a and b are structurally equal.  Numbers compare
// equal across int and float.
func Equal(a, b *LVal) bool {
	if a.IsNumeric() && b.IsNumeric() {
		if a.Type == LInt && b.Type == LInt {
			return a.Int == b.Int
		}
		return toFloat(a) == toFloat(b)
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case LNil:
		return true
	case LBool:
		return a.Int == b.Int
	case LString, LSymbol, LKeyword:
		return a.Str == b.Str
	case LList:
		if len(a.Cells) != len(b.Cells) {
			return false
		}
		for i := range a.Cells {
			if !Equal(a.Cells[i], b.Cells[i]) {
				return false
			}
		}
		return true
	}
	return a.Native == b.Native
}

func toFloat(v *LVal) float64 {
	if v.Type == LInt {
		return float64(v.Int)
	}
	return v.Float
}

func (v *LVal) String() string {
	switch v.Type {
	case LNil:
		return NilSymbol
	case LBool:
		if v.Int != 0 {
			return TrueSymbol
		}
		return FalseSymbol
	case LInt:
		return strconv.Itoa(v.Int)
	case LFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case LString:
		return strconv.Quote(v.Str)
	case LSymbol:
		return v.Str
	case LKeyword:
		return ":" + v.Str
	case LList:
		return exprString(v, "(", ")")
	case LFun:
		fun := v.FunData()
		if fun.Builtin != nil {
			return fmt.Sprintf("#<builtin %s>", fun.Name)
		}
		if fun.Name == "" {
			return fmt.Sprintf("#<lambda %v>", fun.Spec)
		}
		return fmt.Sprintf("#<function %s %v>", fun.Name, fun.Spec)
	case LError:
		err := v.Err()
		return fmt.Sprintf("#<error %s: %s>", ErrorCondition(err), ErrorMessage(err))
	case LNative:
		return fmt.Sprintf("#<native %T>", v.Native)
	default:
		return fmt.Sprintf("%#v", v)
	}
}

func exprString(v *LVal, left string, right string) string {
	if len(v.Cells) == 0 {
		return left + right
	}
	var buf bytes.Buffer
	buf.WriteString(left)
	for i, c := range v.Cells {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(c.String())
	}
	buf.WriteString(right)
	return buf.String()
}
