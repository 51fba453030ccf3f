package lisp

// TrueSymbol is the language's defacto true boolean value.
const TrueSymbol = "true"

// FalseSymbol is the language's defacto false boolean value.
const FalseSymbol = "false"

// NilSymbol names the nil value.
const NilSymbol = "nil"

// MetaArgPrefix is the prefix shared by every marker allowed in a lambda
// list.  A symbol with this prefix that is not a known marker is rejected
// when the lambda list is compiled.
const MetaArgPrefix = "&"

// RequiredArgSymbol switches a lambda list back to required parameters.
// Following optional, rest or keyword parameters the required parameters it
// introduces are filled from the end of the argument list, before anything
// else is consumed.
//
//	(lambda (a &optional b &required c) ...)
const RequiredArgSymbol = "&required"

// OptArgSymbol is the symbol used to indicate optional arguments to a
// function.  Optional arguments are bound to nil, or to a declared default,
// when no value is supplied.  An optional parameter may be declared with the
// form (name default status) where status names a variable that is true
// only when the argument was supplied.
//
//	(lambda (x &optional (y (+ x 1) y-supplied)) ...)
const OptArgSymbol = "&optional"

// VarArgSymbol is the symbol that indicates a variadic function argument in
// a function's list of formal arguments.  Functions may have at most one
// variadic argument.  The variadic argument is always bound to a list, an
// empty list when no arguments remain.
const VarArgSymbol = "&rest"

// KeyArgSymbol is the symbol that indicates keyword arguments to a function.
// Keyword arguments are supplied as pairs of a keyword naming the parameter
// and its value, in any order.  Following &rest the keyword pairs are also
// collected by the rest parameter.
//
//	(lambda (&key a (b 2 b-supplied)) ...)
const KeyArgSymbol = "&key"

// AllowOtherKeysSymbol placed directly after keyword parameters makes them
// tolerate keywords they do not declare.
const AllowOtherKeysSymbol = "&allow-other-keys"

// LazyArgSymbol makes every following parameter lazy, until EagerArgSymbol.
// A lazy parameter binds its argument expression unevaluated and evaluates
// it, once, the first time the parameter is read.
const LazyArgSymbol = "&lazy"

// EagerArgSymbol ends the effect of LazyArgSymbol.
const EagerArgSymbol = "&eager"

// PipeArgSymbol marks the parameter that receives the threaded value in the
// -> and ->> forms.  At most one parameter may carry it.
const PipeArgSymbol = "&pipe"

// CatchAllCondition is matched by every error in a catch clause.
const CatchAllCondition = "condition"

// DefaultErrorCondition is the category of errors raised without an explicit
// condition.  It also matches every error in a catch clause.
const DefaultErrorCondition = "error"
