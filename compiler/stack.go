package compiler

// StackFrame is one node of the singly-linked, immutable-spined abstract
// stack (§3 Stack). Pushing never mutates an existing frame; it prepends a
// new one whose Next points at the prior top.
type StackFrame struct {
	Owner            *Value // nil for a pure reservation (no resident value)
	WordSize         int
	ByteIndexFromTop int // cumulative bytes pushed from the stack's base through this frame
	Next             *StackFrame
	Pushed           bool // materialized into the physical stack at this point
	stack            *Stack
}

// Stack is the Compiler's current abstract-stack cursor: the frame at the
// logical top, from which a given logical IP's accumulated pushes can be
// walked down to the base.
type Stack struct {
	Top *StackFrame
}

// push prepends a new frame of wordSize bytes, owned by v (nil for a pure
// reservation), and returns the new frame. ByteIndexFromTop is a running
// cumulative total (bottom to this frame, inclusive); the frame's actual
// displacement from rsp at any later point is Top.ByteIndexFromTop -
// frame.ByteIndexFromTop, recomputed dynamically in StackSite.Project so it
// stays correct as further frames are pushed above it (§4.4).
func (s *Stack) push(owner *Value, wordSize int) *StackFrame {
	idx := wordSize
	if s.Top != nil {
		idx += s.Top.ByteIndexFromTop
	}
	frame := &StackFrame{
		Owner:            owner,
		WordSize:         wordSize,
		ByteIndexFromTop: idx,
		Next:             s.Top,
		stack:            s,
	}
	s.Top = frame
	return frame
}

// pop discards the top frame and returns it; the caller is responsible for
// having already resolved its owner's value out of the stack site.
func (s *Stack) pop() *StackFrame {
	f := s.Top
	if f == nil {
		return nil
	}
	s.Top = f.Next
	return f
}

// Size returns the abstract stack's total byte size (§8 "Stack discipline":
// equals the sum of frame sizes at every logical IP).
func (s *Stack) Size() int {
	if s.Top == nil {
		return 0
	}
	return s.Top.ByteIndexFromTop
}

// State is a save/restore record for the stack top, used to scope
// subsequent pushes so a rejoining control-flow path can restore the
// pre-scope depth (pushState/popState, §4.2).
type State struct {
	saved *StackFrame
}

// snapshot produces a State capturing the current top.
func (s *Stack) snapshot() State {
	return State{saved: s.Top}
}

// restore rewinds the stack to a previously captured State.
func (s *Stack) restore(st State) {
	s.Top = st.saved
}
