package lisp

import "sync"

type deferredState uint8

const (
	deferredPending deferredState = iota
	deferredForcing
	deferredForced
)

// Deferred is the unevaluated argument of a lazy parameter.  Its expression
// is evaluated in the environment captured at bind time the first time the
// parameter is read and the value is cached for later reads.  A failed
// evaluation is not cached.
//
// The expression is evaluated on the stack of the reader, so errors carry
// the trace of the read.  A Deferred may be forced from any goroutine; a
// reader that finds another goroutine computing the value waits for it.
type Deferred struct {
	mu     sync.Mutex
	state  deferredState
	value  *LVal
	owner  *CallStack    // stack computing the value
	notify chan struct{} // closed when a computation ends

	exprs []Node
	known []*LVal // values of exprs already computed eagerly, or nil
	list  bool    // produce a list of every expression
	env   *LEnv
}

func newDeferred(expr Node, env *LEnv) *Deferred {
	return &Deferred{exprs: []Node{expr}, env: env}
}

func newDeferredList(exprs []Node, known []*LVal, env *LEnv) *Deferred {
	return &Deferred{exprs: exprs, known: known, list: true, env: env}
}

// Forced reports whether d has been computed.
func (d *Deferred) Forced() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == deferredForced
}

// Force returns the value of d, computing it on stack on first use.  A nil
// stack computes the value on a new stack of the runtime.
func (d *Deferred) Force(stack *CallStack) (*LVal, error) {
	d.mu.Lock()
	for d.state == deferredForcing {
		if d.owner == stack {
			d.mu.Unlock()
			return nil, ErrorConditionf("lazy-error", "lazy argument read while it is being computed")
		}
		wait := d.notify
		d.mu.Unlock()
		<-wait
		d.mu.Lock()
	}
	if d.state == deferredForced {
		v := d.value
		d.mu.Unlock()
		return v, nil
	}
	if stack == nil {
		stack = d.env.Runtime.NewCallStack()
	}
	d.state, d.owner, d.notify = deferredForcing, stack, make(chan struct{})
	exprs, known, env := d.exprs, d.known, d.env
	d.mu.Unlock()

	v, err := d.compute(stack, exprs, known, env)

	d.mu.Lock()
	defer d.mu.Unlock()
	close(d.notify)
	d.owner, d.notify = nil, nil
	if err != nil {
		d.state = deferredPending
		return nil, err
	}
	d.value, d.state = v, deferredForced
	d.exprs, d.known, d.env = nil, nil, nil
	return v, nil
}

func (d *Deferred) compute(stack *CallStack, exprs []Node, known []*LVal, env *LEnv) (*LVal, error) {
	if !d.list {
		return Eval(exprs[0], stack, env)
	}
	cells := make([]*LVal, len(exprs))
	for i, expr := range exprs {
		if known != nil && known[i] != nil {
			cells[i] = known[i]
			continue
		}
		v, err := Eval(expr, stack, env)
		if err != nil {
			return nil, err
		}
		cells[i] = v
	}
	return List(cells...), nil
}
