package lisp

import (
	"fmt"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/ast"
)

// argShape is the part of a call site's arguments visible before they are
// evaluated.  Keyword arguments are recognized syntactically.
type argShape interface {
	Len() int
	keywordAt(i int) (string, bool)
	describe(i int) string
}

type nodeArgs []Node

func (a nodeArgs) Len() int { return len(a) }

func (a nodeArgs) keywordAt(i int) (string, bool) {
	if c, ok := a[i].(*constNode); ok && c.val.Type == LKeyword {
		return c.val.Str, true
	}
	return "", false
}

func (a nodeArgs) describe(i int) string { return a[i].Label() }

type syntaxArgs []ast.Node

func (a syntaxArgs) Len() int { return len(a) }

func (a syntaxArgs) keywordAt(i int) (string, bool) {
	if leaf, ok := a[i].(*ast.Leaf); ok && leaf.Kind == ast.Keyword {
		return leaf.Text, true
	}
	return "", false
}

func (a syntaxArgs) describe(i int) string { return a[i].String() }

// slotPlan selects the arguments [lo, hi) for a parameter.  Unsupplied
// parameters have lo == hi == -1, except rest parameters which always have
// a (possibly empty) range.
type slotPlan struct {
	lo, hi   int
	supplied bool
}

// bindPlan maps the arguments of a call site onto a ParamSpec.  Because it
// depends only on the shape of the arguments a plan is computed once for
// each call site compiled against a known function.
type bindPlan struct {
	spec  *ParamSpec
	slots []slotPlan
}

func planBinding(spec *ParamSpec, args argShape) (*bindPlan, error) {
	params := spec.Params
	plan := &bindPlan{spec: spec, slots: make([]slotPlan, len(params))}
	for i := range plan.slots {
		plan.slots[i] = slotPlan{lo: -1, hi: -1}
	}
	left, right := 0, args.Len()

	// Trailing required parameters are always at the end of the list and
	// take the last arguments before anything else is consumed.
	for i := len(params) - 1; i >= 0 && params[i].Role == RoleTrailingRequired; i-- {
		if right <= left {
			return nil, bindingErrorf("insufficient arguments")
		}
		right--
		plan.slots[i] = slotPlan{lo: right, hi: right + 1, supplied: true}
	}

	restEnd := -1
	for i := 0; i < len(params); i++ {
		switch params[i].Role {
		case RoleTrailingRequired:
		case RoleRequired:
			if left >= right {
				return nil, bindingErrorf("insufficient arguments")
			}
			plan.slots[i] = slotPlan{lo: left, hi: left + 1, supplied: true}
			left++
		case RoleOptional:
			if left < right {
				plan.slots[i] = slotPlan{lo: left, hi: left + 1, supplied: true}
				left++
			}
		case RoleRest:
			plan.slots[i] = slotPlan{lo: left, hi: right, supplied: left < right}
			if i+1 < len(params) && params[i+1].Role == RoleRestKeyword {
				// the keyword pairs are collected by the rest parameter
				// and parsed by the keyword parameters
				restEnd = right
			} else {
				left = right
			}
		case RoleKeyword, RoleRestKeyword:
			j := i
			for j < len(params) && isKeywordRole(params[j].Role) {
				j++
			}
			sinkAfter := j < len(params) && params[j].Role == RoleRest
			sinkBefore := params[i].Role == RoleRestKeyword
			var err error
			left, err = planKeywords(plan, i, j, args, left, right, sinkBefore, sinkAfter)
			if err != nil {
				return nil, err
			}
			if restEnd > left {
				left = restEnd
			}
			i = j - 1
		}
	}
	if left < right {
		return nil, bindingErrorf("too many arguments")
	}
	return plan, nil
}

// planKeywords scans keyword pairs for params[lo:hi] and returns the
// position following the last argument consumed.
func planKeywords(plan *bindPlan, lo, hi int, args argShape, left, right int, sinkBefore, sinkAfter bool) (int, error) {
	params := plan.spec.Params
	allowOther := false
	for k := lo; k < hi; k++ {
		allowOther = allowOther || params[k].AllowOtherKeys
	}
	for left < right {
		name, ok := args.keywordAt(left)
		if !ok {
			if allowOther && (sinkBefore || sinkAfter) {
				break
			}
			return left, bindingErrorf("expected keyword parameter name: %s", args.describe(left))
		}
		k := -1
		for j := lo; j < hi; j++ {
			if params[j].Name == name {
				k = j
				break
			}
		}
		if k < 0 {
			if !allowOther {
				return left, bindingErrorf("unexpected keyword parameter: :%s", name)
			}
			if sinkAfter {
				break
			}
		}
		if left+1 >= right {
			return left, bindingErrorf("missing value for keyword parameter: :%s", name)
		}
		// the first occurrence of a keyword wins
		if k >= 0 && !plan.slots[k].supplied {
			plan.slots[k] = slotPlan{lo: left + 1, hi: left + 2, supplied: true}
		}
		left += 2
	}
	return left, nil
}

func bindingErrorf(format string, v ...interface{}) error {
	return &BindingError{Msg: fmt.Sprintf(format, v...)}
}

type slotState uint8

const (
	slotEmpty slotState = iota
	slotBound
	slotRemoved
)

type argSlot struct {
	state    slotState
	supplied bool
	value    *LVal
	deferred *Deferred

	statusState slotState
	status      *LVal
}

// ArgFrame holds the parameter slots of one function call.  It backs an
// LEnv frame: names are looked up in the frame's scope map first, then in
// the parameter slots, then in the status variable slots.
type ArgFrame struct {
	Spec  *ParamSpec
	env   *LEnv
	slots []argSlot
}

// bindArgs evaluates the arguments of a call and binds them into a new frame
// whose parent is parent.  Arguments are evaluated in caller, left to right,
// except those bound to lazy parameters.
func bindArgs(stack *CallStack, caller, parent *LEnv, args []Node, plan *bindPlan) (*LEnv, error) {
	spec := plan.spec
	env := &LEnv{ID: parent.Runtime.GenEnvID(), Parent: parent, Runtime: parent.Runtime}
	frame := &ArgFrame{Spec: spec, env: env, slots: make([]argSlot, len(spec.Params))}
	env.args = frame

	eager := make([]bool, len(args))
	used := make([]bool, len(args))
	for i, sp := range plan.slots {
		for j := sp.lo; j < sp.hi; j++ {
			used[j] = true
			if !spec.Params[i].Lazy {
				eager[j] = true
			}
		}
	}
	vals := make([]*LVal, len(args))
	for j, arg := range args {
		if !eager[j] && used[j] {
			continue
		}
		v, err := Eval(arg, stack, caller)
		if err != nil {
			return nil, err
		}
		vals[j] = v
	}

	for i := range spec.Params {
		p := &spec.Params[i]
		sp := plan.slots[i]
		slot := &frame.slots[i]
		switch {
		case p.Role == RoleRest && p.Lazy:
			slot.deferred = newDeferredList(args[sp.lo:sp.hi], vals[sp.lo:sp.hi], caller)
		case p.Role == RoleRest:
			slot.value = List(append([]*LVal(nil), vals[sp.lo:sp.hi]...)...)
		case sp.supplied && p.Lazy && vals[sp.lo] == nil:
			slot.deferred = newDeferred(args[sp.lo], caller)
		case sp.supplied:
			slot.value = vals[sp.lo]
		case p.Default == nil:
			slot.value = Nil()
		case p.Lazy:
			slot.deferred = newDeferred(p.Default, env)
		default:
			v, err := Eval(p.Default, stack, env)
			if err != nil {
				return nil, err
			}
			slot.value = v
		}
		slot.state = slotBound
		slot.supplied = sp.supplied
		if p.StatusVar != "" {
			slot.status = Bool(sp.supplied)
			slot.statusState = slotBound
		}
	}
	return env, nil
}

// Env returns the frame backed by a.
func (a *ArgFrame) Env() *LEnv {
	return a.env
}

// Len returns the number of parameters.
func (a *ArgFrame) Len() int {
	return len(a.slots)
}

// Get returns the value of the i-th parameter, forcing a lazy argument on
// stack.  Rest parameters hold a list.
func (a *ArgFrame) Get(stack *CallStack, i int) (*LVal, error) {
	slot := &a.slots[i]
	if slot.state != slotBound {
		return nil, &UnboundError{Name: a.Spec.Params[i].Name}
	}
	if slot.deferred != nil {
		v, err := slot.deferred.Force(stack)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return slot.value, nil
}

// Value returns the value of the named parameter.
func (a *ArgFrame) Value(stack *CallStack, name string) (*LVal, error) {
	i := a.Spec.Index(name)
	if i < 0 {
		return nil, &UnboundError{Name: name}
	}
	return a.Get(stack, i)
}

// Supplied reports whether the call supplied the i-th parameter.
func (a *ArgFrame) Supplied(i int) bool {
	return a.slots[i].supplied
}

// Deferred returns the unforced argument of a lazy parameter, or nil.
func (a *ArgFrame) Deferred(i int) *Deferred {
	return a.slots[i].deferred
}

func (a *ArgFrame) lookup(stack *CallStack, name string) (*LVal, bool, error) {
	if i, ok := a.Spec.index[name]; ok && a.slots[i].state == slotBound {
		v, err := a.Get(stack, i)
		return v, true, err
	}
	if i, ok := a.Spec.statusIndex[name]; ok && a.slots[i].statusState == slotBound {
		return a.slots[i].status, true, nil
	}
	return nil, false, nil
}

func (a *ArgFrame) owns(name string) bool {
	if i, ok := a.Spec.index[name]; ok && a.slots[i].state == slotBound {
		return true
	}
	i, ok := a.Spec.statusIndex[name]
	return ok && a.slots[i].statusState == slotBound
}

func (a *ArgFrame) set(name string, v *LVal) bool {
	if i, ok := a.Spec.index[name]; ok && a.slots[i].state == slotBound {
		a.slots[i].value, a.slots[i].deferred = v, nil
		return true
	}
	if i, ok := a.Spec.statusIndex[name]; ok && a.slots[i].statusState == slotBound {
		a.slots[i].status = v
		return true
	}
	return false
}

func (a *ArgFrame) unbind(name string) bool {
	removed := false
	if i, ok := a.Spec.index[name]; ok && a.slots[i].state == slotBound {
		a.slots[i] = argSlot{state: slotRemoved, statusState: a.slots[i].statusState, status: a.slots[i].status}
		removed = true
	}
	if i, ok := a.Spec.statusIndex[name]; ok && a.slots[i].statusState == slotBound {
		a.slots[i].statusState, a.slots[i].status = slotRemoved, nil
		removed = true
	}
	return removed
}

func (a *ArgFrame) names() []string {
	var names []string
	for i, p := range a.Spec.Params {
		if a.slots[i].state == slotBound {
			names = append(names, p.Name)
		}
		if a.slots[i].statusState == slotBound {
			names = append(names, p.StatusVar)
		}
	}
	return names
}
