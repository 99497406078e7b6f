package asm

import "github.com/xyproto/jcore/asm/x86"

// Constraint expresses the register-mask guidance Architecture.Plan returns
// for a given Op, per §4.3's open question: div/rem pin their dividend to a
// fixed register pair, shifts pin the count operand to cl. A zero mask
// means "all non-reserved registers are acceptable" (the permissive
// default §9 notes the source's plan left unfinished).
type Constraint struct {
	FirstMask   uint32 // allowed registers for the first operand; 0 = unconstrained
	SecondMask  uint32 // allowed registers for the second operand; 0 = unconstrained
	FixedFirst  int    // >=0 if the first operand must occupy this exact register
	FixedSecond int    // >=0 if the second operand must occupy this exact register
	ResultReg   int    // >=0 if the write's result is pinned to a specific register (e.g. rdx for rem)
}

// unconstrained is the permissive default most ops use.
var unconstrained = Constraint{FixedFirst: -1, FixedSecond: -1, ResultReg: -1}

// Architecture is the external collaborator described in §4.6: register
// layout, calling convention, and allocation constraints for one target.
// jcore ships one concrete implementation, X86_64.
type Architecture interface {
	Name() string
	WordSize() int
	RegisterCount() int
	StackRegister() int
	BaseRegister() int
	ThreadRegister() int
	ReturnRegister() (low, high int)
	IsReserved(reg int) bool
	ArgumentRegisterCount() int
	ArgumentRegister(i int) (low, high int)
	AlignFrameSize(size int) int
	FrameHeaderSize() int
	FrameFooterSize() int
	Plan(op Op) Constraint
}

// X86_64 is the System V AMD64 ABI: integer args in rdi,rsi,rdx,rcx,r8,r9,
// return in rax, frame pointer rbp, stack pointer rsp. There is no
// dedicated thread register in this ABI; jcore reserves r14 for a
// VM-supplied thread/context pointer the way Go's runtime reserves a
// register for `g`, so call sites that need it don't contend with the
// general allocator.
type X86_64 struct{}

func (X86_64) Name() string     { return "x86_64" }
func (X86_64) WordSize() int    { return 8 }
func (X86_64) RegisterCount() int { return 16 }

func (X86_64) StackRegister() int  { return x86.RSP }
func (X86_64) BaseRegister() int   { return x86.RBP }
func (X86_64) ThreadRegister() int { return x86.R14 }

func (X86_64) ReturnRegister() (int, int) { return x86.RAX, -1 }

func (a X86_64) IsReserved(reg int) bool {
	return reg == a.StackRegister() || reg == a.BaseRegister() || reg == a.ThreadRegister()
}

var argumentRegisters = [6]int{x86.RDI, x86.RSI, x86.RDX, x86.RCX, x86.R8, x86.R9}

func (X86_64) ArgumentRegisterCount() int { return len(argumentRegisters) }

func (X86_64) ArgumentRegister(i int) (int, int) {
	if i < 0 || i >= len(argumentRegisters) {
		return -1, -1
	}
	return argumentRegisters[i], -1
}

// AlignFrameSize rounds a frame size up to 16 bytes, the System V stack
// alignment requirement at call boundaries.
func (X86_64) AlignFrameSize(size int) int {
	const align = 16
	return (size + align - 1) / align * align
}

// FrameHeaderSize accounts for the pushed return address + saved rbp that
// the prologue (`push rbp; mov rbp, rsp`) installs before any locals.
func (X86_64) FrameHeaderSize() int { return 16 }

// FrameFooterSize accounts for the epilogue's `pop rbp` slot.
func (X86_64) FrameFooterSize() int { return 8 }

func (X86_64) Plan(op Op) Constraint {
	switch op {
	case Div, Rem:
		// Dividend must be in rax; rdx is clobbered by sign-extension and
		// must not be chosen as the divisor's register.
		c := unconstrained
		c.FixedFirst = x86.RAX
		c.SecondMask = ^uint32(0) &^ (1 << x86.RAX) &^ (1 << x86.RDX)
		if op == Rem {
			c.ResultReg = x86.RDX
		} else {
			c.ResultReg = x86.RAX
		}
		return c
	case Shl, Shr, Ushr:
		c := unconstrained
		c.FixedSecond = x86.RCX
		return c
	default:
		return unconstrained
	}
}
