// Package libthread runs functions on separate goroutines.  A thread gets
// its own call stack but shares the environments its function closes over;
// programs are responsible for not mutating shared scopes concurrently.
package libthread

import (
	"fmt"
	"sync/atomic"

	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp/lisplib/internal/libutil"
)

// DefaultGroupName tags the functions defined by LoadLibrary.
const DefaultGroupName = "thread"

// LoadLibrary adds the thread functions to rt.
func LoadLibrary(rt *lisp.Runtime) error {
	return libutil.Define(rt, DefaultGroupName, builtins)
}

var builtins = []*libutil.Builtin{
	libutil.Function("new-thread", "(fun &rest args)", BuiltinNewThread,
		"Calls fun with args on a new thread and returns the thread."),
	libutil.Function("thread-join", "(thread)", BuiltinJoin,
		"Waits for thread to finish and returns the value of its function.  An error raised by the function is raised again."),
	libutil.Function("thread-done?", "(thread)", BuiltinDone,
		"Returns true if thread has finished."),
}

// Thread is the state of a function running on its own goroutine.
type Thread struct {
	ID     uint64
	done   chan struct{}
	result *lisp.LVal
	err    error
}

var threadCount atomic.Uint64

// Start calls fun with args on a new goroutine.
func Start(rt *lisp.Runtime, env *lisp.LEnv, fun *lisp.LVal, args ...*lisp.LVal) *Thread {
	th := &Thread{ID: threadCount.Add(1), done: make(chan struct{})}
	rt.Logger.Debug("thread started", "thread", th.ID, "function", fun.String())
	go func() {
		defer close(th.done)
		defer func() {
			if r := recover(); r != nil {
				th.result, th.err = nil, lisp.ErrorConditionf("thread-error", "thread panic: %v", r)
			}
			rt.Logger.Debug("thread finished", "thread", th.ID, "error", th.err != nil)
		}()
		stack := rt.NewCallStack()
		th.result, th.err = lisp.Call(stack, env, fun, args...)
	}()
	return th
}

// Wait blocks until th finishes and returns the result of its function.
func (th *Thread) Wait() (*lisp.LVal, error) {
	<-th.done
	return th.result, th.err
}

// Done reports whether th has finished.
func (th *Thread) Done() bool {
	select {
	case <-th.done:
		return true
	default:
		return false
	}
}

func (th *Thread) String() string {
	return fmt.Sprintf("#<thread %d>", th.ID)
}

// BuiltinNewThread starts a thread.
func BuiltinNewThread(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	vals, err := libutil.Args(stack, args)
	if err != nil {
		return nil, err
	}
	fun := vals[0]
	if fun.Type == lisp.LSymbol {
		if e := env.Runtime.Registry.Lookup(fun.Str); e != nil && e.Fun != nil {
			fun = e.Fun
		}
	}
	if fun.Type != lisp.LFun {
		return nil, lisp.Errorf("not a function: %v", vals[0])
	}
	return lisp.Native(Start(env.Runtime, env, fun, vals[1].Cells...)), nil
}

// BuiltinJoin waits for a thread.
func BuiltinJoin(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	th, err := threadArg(stack, args)
	if err != nil {
		return nil, err
	}
	return th.Wait()
}

// BuiltinDone polls a thread.
func BuiltinDone(stack *lisp.CallStack, env *lisp.LEnv, args *lisp.ArgFrame) (*lisp.LVal, error) {
	th, err := threadArg(stack, args)
	if err != nil {
		return nil, err
	}
	return lisp.Bool(th.Done()), nil
}

func threadArg(stack *lisp.CallStack, args *lisp.ArgFrame) (*Thread, error) {
	v, err := args.Get(stack, 0)
	if err != nil {
		return nil, err
	}
	if th, ok := v.Native.(*Thread); ok && v.Type == lisp.LNative {
		return th, nil
	}
	return nil, lisp.Errorf("argument is not a thread: %v", v)
}
