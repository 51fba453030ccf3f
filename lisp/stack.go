package lisp

import (
	"fmt"
	"io"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

// DefaultMaxHeight is the stack height limit of a new CallStack.
const DefaultMaxHeight = 50000

// CallStack is the evaluation stack.  Every node pushes a frame while it is
// being evaluated.  A CallStack belongs to one goroutine.
type CallStack struct {
	Frames []CallFrame
	// MaxHeight limits the number of frames, zero means no limit.
	MaxHeight int
}

// CallFrame is one frame in the CallStack
type CallFrame struct {
	Label  string
	Source *token.Location
	Env    *LEnv
}

// NewCallStack returns an empty CallStack limited to DefaultMaxHeight frames.
func NewCallStack() *CallStack {
	return &CallStack{MaxHeight: DefaultMaxHeight}
}

// Height returns the number of frames on the stack.
func (s *CallStack) Height() int {
	return len(s.Frames)
}

// Copy creates a copy of the current stack so that it can be attach to a
// runtime error.
func (s *CallStack) Copy() *CallStack {
	frames := make([]CallFrame, len(s.Frames))
	copy(frames, s.Frames)
	return &CallStack{Frames: frames, MaxHeight: s.MaxHeight}
}

// Top returns the CallFrame at the top of the stack or nil if none exists.
func (s *CallStack) Top() *CallFrame {
	if s == nil || len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[len(s.Frames)-1]
}

// Push pushes a new frame onto s.  Push fails when the stack would exceed
// its maximum height.
func (s *CallStack) Push(label string, src *token.Location, env *LEnv) error {
	if s.MaxHeight > 0 && len(s.Frames) >= s.MaxHeight {
		return ErrorConditionf("stack-overflow", "maximum stack height exceeded: %d", s.MaxHeight)
	}
	s.Frames = append(s.Frames, CallFrame{Label: label, Source: src, Env: env})
	return nil
}

// Pop removes the top CallFrame from the stack and returns it.  Pop panics
// if the stack is empty.
func (s *CallStack) Pop() CallFrame {
	if len(s.Frames) < 1 {
		panic("pop called on an empty stack")
	}
	f := s.Frames[len(s.Frames)-1]
	s.Frames[len(s.Frames)-1] = CallFrame{}
	s.Frames = s.Frames[:len(s.Frames)-1]
	return f
}

// Labels returns the frame labels, innermost first.
func (s *CallStack) Labels() []string {
	labels := make([]string, len(s.Frames))
	for i := range s.Frames {
		labels[len(s.Frames)-1-i] = s.Frames[i].Label
	}
	return labels
}

// DebugPrint prints s
func (s *CallStack) DebugPrint(w io.Writer) (int, error) {
	n, err := fmt.Fprintf(w, "Stack Trace [%d frames -- entrypoint last]:\n", len(s.Frames))
	if err != nil {
		return n, err
	}
	indent := "  "
	for i := len(s.Frames) - 1; i >= 0; i-- {
		f := s.Frames[i]
		var loc string
		if f.Source != nil {
			loc = f.Source.String() + ": "
		}
		_n, err := fmt.Fprintf(w, "%sheight %d: %s%s\n", indent, i, loc, f.Label)
		n += _n
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
