package lisp

import (
	"errors"
	"fmt"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

// Conditioner is implemented by errors that belong to a condition category.
// Catch clauses select errors by category.
type Conditioner interface {
	Condition() string
}

// SpecError reports a malformed lambda list.
type SpecError struct {
	Source *token.Location
	Msg    string
}

func (e *SpecError) Error() string     { return locPrefix(e.Source) + e.Msg }
func (e *SpecError) Message() string   { return e.Msg }
func (e *SpecError) Condition() string { return "spec-error" }

// BindingError reports arguments that do not fit a function's lambda list.
// Source is the location of the call.
type BindingError struct {
	Source   *token.Location
	Function string
	Msg      string
}

func (e *BindingError) Error() string { return locPrefix(e.Source) + e.Message() }

func (e *BindingError) Message() string {
	if e.Function == "" {
		return e.Msg
	}
	return e.Function + ": " + e.Msg
}

func (e *BindingError) Condition() string { return "binding-error" }

// CompileError reports a form that cannot be compiled.
type CompileError struct {
	Source *token.Location
	Msg    string
}

func (e *CompileError) Error() string     { return locPrefix(e.Source) + e.Msg }
func (e *CompileError) Message() string   { return e.Msg }
func (e *CompileError) Condition() string { return "compile-error" }

// UnboundError is raised when reading a variable that no frame binds.
type UnboundError struct {
	Name string
}

func (e *UnboundError) Error() string     { return "variable does not exist: " + e.Name }
func (e *UnboundError) Condition() string { return "unbound-variable" }

// UndefinedFunctionError is raised when a call names nothing callable.
type UndefinedFunctionError struct {
	Name string
}

func (e *UndefinedFunctionError) Error() string     { return "undefined function: " + e.Name }
func (e *UndefinedFunctionError) Condition() string { return "undefined-function" }

// LispError is an error raised by builtins and by user code.
type LispError struct {
	Cond string
	Msg  string
	// Data is an optional value attached by the raiser.
	Data *LVal
}

func (e *LispError) Error() string { return e.Msg }

func (e *LispError) Condition() string {
	if e.Cond == "" {
		return DefaultErrorCondition
	}
	return e.Cond
}

// RuntimeError tags an error with the call stack at the innermost point of
// failure.  Once tagged an error propagates unchanged.
type RuntimeError struct {
	Err    error
	Stack  *CallStack
	Source *token.Location
}

func (e *RuntimeError) Error() string     { return locPrefix(e.Source) + ErrorMessage(e.Err) }
func (e *RuntimeError) Unwrap() error     { return e.Err }
func (e *RuntimeError) Condition() string { return ErrorCondition(e.Err) }

// ReturnSignal unwinds evaluation to the nearest enclosing function call,
// which produces Value as its result.  It is a control signal, not a
// failure, and is never wrapped in a RuntimeError.
type ReturnSignal struct {
	Value *LVal
}

func (r *ReturnSignal) Error() string { return "return outside of a function" }

// Errorf returns an error with the default condition and a formatted
// message.
func Errorf(format string, v ...interface{}) error {
	return &LispError{Msg: fmt.Sprintf(format, v...)}
}

// ErrorConditionf returns an error in the given condition category.
func ErrorConditionf(condition string, format string, v ...interface{}) error {
	return &LispError{Cond: condition, Msg: fmt.Sprintf(format, v...)}
}

// ErrorCondition returns the condition category of err.
func ErrorCondition(err error) string {
	var c Conditioner
	if errors.As(err, &c) {
		return c.Condition()
	}
	return DefaultErrorCondition
}

// ErrorMessage returns the message of err without location information.
func ErrorMessage(err error) string {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		err = rerr.Err
	}
	if m, ok := err.(interface{ Message() string }); ok {
		return m.Message()
	}
	return err.Error()
}

// ErrorStack returns the call stack attached to err, or nil.
func ErrorStack(err error) *CallStack {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return rerr.Stack
	}
	return nil
}

func locPrefix(loc *token.Location) string {
	if loc == nil {
		return ""
	}
	return loc.String() + ": "
}
