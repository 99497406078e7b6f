package asm

import (
	"github.com/xyproto/jcore/asm/x86"
	"github.com/xyproto/jcore/buffer"
	"github.com/xyproto/jcore/promise"
)

// noOperand is a sentinel OperandType meaning "no operand". Apply0/1/2
// dispatch with switch statements on the Op and on the operands' concrete
// types, so none of them reads it.
const noOperand OperandType = -1

// Assembler is the architecture-specific back-end: it exposes the uniform
// apply surface of §4.6, encodes into a CodeBuffer, and records deferred
// Tasks for anything with an unresolved address (§4.7).
type Assembler struct {
	arch         Architecture
	buf          *buffer.CodeBuffer
	tasks        []Task
	pool         []promise.Promise
	emissionDone bool
}

// New creates an Assembler targeting arch with an empty code buffer.
func New(arch Architecture) *Assembler {
	return &Assembler{arch: arch, buf: buffer.New(1024)}
}

func (a *Assembler) Architecture() Architecture { return a.arch }
func (a *Assembler) Length() int                { return a.buf.Len() }
func (a *Assembler) Bytes() []byte              { return a.buf.Bytes() }

// MarkEmissionComplete tells the Assembler no further bytes will be
// appended, which is the instant Code/Ip/Pool promises become answerable.
// The Compiler calls this once every event has compiled.
func (a *Assembler) MarkEmissionComplete() {
	a.emissionDone = true
}

func (a *Assembler) EmissionComplete() bool { return a.emissionDone }

// asRegister extracts a Register operand's (low, high) pair, aborting
// with Unreachable if x is not actually a Register — every call site below
// only reaches here after the Compiler already guaranteed the operand
// shape, so this only fires on a genuine front-end bug.
func asRegister(x Operand) Register {
	r, ok := x.(Register)
	if !ok {
		Raise(Unreachable, "expected register operand, got %s", x.operandType())
	}
	return r
}

func asMemory(x Operand) Memory {
	m, ok := x.(Memory)
	if !ok {
		Raise(Unreachable, "expected memory operand, got %s", x.operandType())
	}
	return m
}

// immediateValue resolves a Constant/Address operand to a concrete int64,
// or reports back an unresolved Promise so the caller can enqueue a Task
// instead of failing outright (forward references are expected here).
func immediateValue(x Operand) (int64, promise.Promise, bool) {
	switch o := x.(type) {
	case Constant:
		if o.Value.Resolved() {
			v, _ := o.Value.Value()
			return v, nil, true
		}
		return 0, o.Value, false
	case Address:
		if o.Value.Resolved() {
			v, _ := o.Value.Value()
			return v, nil, true
		}
		return 0, o.Value, false
	}
	Raise(Unreachable, "expected constant or address operand, got %s", x.operandType())
	return 0, nil, false
}

// Apply0 dispatches a zero-operand operation: only Return today.
func (a *Assembler) Apply0(op Op) {
	switch op {
	case Return:
		x86.Return_(a.buf)
	default:
		Raise(Unreachable, "no zero-operand encoder for %s", op)
	}
}

// Apply1 dispatches a one-operand operation: branches, Call, Neg, Push,
// Pop, and the pure-reservation SubtractStack.
func (a *Assembler) Apply1(op Op, size int, x Operand) {
	switch op {
	case Jmp, JumpIfEqual, JumpIfNotEqual, JumpIfLess, JumpIfLessEqual, JumpIfGreater, JumpIfGreaterEqual:
		val, target, resolved := immediateValue(x)
		var off, sz int
		cond, conditional := jccCondition(op)
		if conditional {
			off, sz = x86.JumpIfC(a.buf, cond)
		} else {
			off, sz = x86.JumpC(a.buf)
		}
		if resolved {
			a.patchOffsetNow(off, sz, val)
		} else {
			a.tasks = append(a.tasks, OffsetTask{InstructionOffset: off, InstructionSize: sz, Target: target})
		}
	case CallDirect:
		val, target, resolved := immediateValue(x)
		off, sz := x86.CallC(a.buf)
		if resolved {
			a.patchOffsetNow(off, sz, val)
		} else {
			a.tasks = append(a.tasks, OffsetTask{InstructionOffset: off, InstructionSize: sz, Target: target})
		}
	case CallIndirect:
		r := asRegister(x)
		x86.CallR(a.buf, r.Low)
	case Neg:
		r := asRegister(x)
		x86.NegR(a.buf, size, r.Low)
	case Push:
		r := asRegister(x)
		x86.PushR(a.buf, r.Low)
	case Pop:
		r := asRegister(x)
		x86.PopR(a.buf, r.Low)
	case SubtractStack:
		sp := a.arch.StackRegister()
		x86.SubtractCR(a.buf, a.arch.WordSize(), sp, int64(size))
	default:
		Raise(Unreachable, "no one-operand encoder for %s", op)
	}
}

func jccCondition(op Op) (byte, bool) {
	switch op {
	case JumpIfEqual:
		return x86.CondEqual, true
	case JumpIfNotEqual:
		return x86.CondNotEqual, true
	case JumpIfLess:
		return x86.CondLess, true
	case JumpIfLessEqual:
		return x86.CondLessEqual, true
	case JumpIfGreater:
		return x86.CondGreater, true
	case JumpIfGreaterEqual:
		return x86.CondGreaterEqual, true
	default:
		return 0, false
	}
}

// patchOffsetNow fixes up a displacement immediately, used when the target
// promise is already resolved at encode time (e.g. a backward branch to an
// already-emitted logical IP).
func (a *Assembler) patchOffsetNow(instrOffset, instrSize int, target int64) {
	disp := target - int64(instrOffset+instrSize)
	if disp > 1<<31-1 || disp < -(1<<31) {
		Raise(RangeExceeded, "pc-relative displacement %d does not fit in 32 bits", disp)
	}
	patch := make([]byte, 4)
	putLE32(patch, int32(disp))
	a.buf.PatchBytes(instrOffset+instrSize-4, patch)
}

var aluTable = map[Op]x86.AluOp{
	Add: x86.AddOp(),
	Sub: x86.SubOp(),
	And: x86.AndOp(),
	Or:  x86.OrOp(),
	Xor: x86.XorOp(),
}

// Apply2 dispatches a two-operand operation: Move, Compare, and the
// Combine family (Add/Sub/And/Or/Xor/Mul/Div/Rem/Shl/Shr/Ushr). For the
// simple ALU ops the first operand is the two-address destination (`a op=
// b`), matching x86's native `op dst, src` shape directly; div/rem/shift
// pin specific registers per Architecture.Plan (§4.3's open question).
func (a *Assembler) Apply2(op Op, size int, x, y Operand) {
	switch op {
	case Move:
		a.applyMove(size, x, y)
		return
	case Compare:
		a.applyAlu(x86.CmpOp(), size, x, y, false)
		return
	case Div, Rem:
		a.applyDivRem(size, x, y)
		return
	case Shl, Shr, Ushr:
		a.applyShift(op, size, x, y)
		return
	case Mul:
		dst := asRegister(x)
		src := asRegister(y)
		x86.MulRR(a.buf, size, dst.Low, src.Low)
		return
	}
	if alu, ok := aluTable[op]; ok {
		a.applyAlu(alu, size, x, y, true)
		return
	}
	Raise(Unreachable, "no two-operand encoder for %s", op)
}

func (a *Assembler) applyMove(size int, src, dst Operand) {
	switch d := dst.(type) {
	case Register:
		switch s := src.(type) {
		case Register:
			x86.MoveRR(a.buf, size, d.Low, s.Low)
		case Memory:
			x86.MoveMR(a.buf, size, d.Low, s.Base, s.Displacement, s.Index, s.Scale)
		case Constant, Address:
			v, p, resolved := immediateValue(src)
			off, w := x86.MoveCR(a.buf, size, d.Low, v)
			if !resolved {
				a.tasks = append(a.tasks, ImmediateTask{Offset: off, Width: w, Target: p})
			}
		default:
			Raise(Unreachable, "move: unsupported source operand %s", src.operandType())
		}
	case Memory:
		switch s := src.(type) {
		case Register:
			x86.MoveRM(a.buf, size, d.Base, d.Displacement, d.Index, s.Low, d.Scale)
		case Constant, Address:
			v, p, resolved := immediateValue(src)
			off := x86.MoveCM(a.buf, size, d.Base, d.Displacement, int32(v))
			if !resolved {
				a.tasks = append(a.tasks, ImmediateTask{Offset: off, Width: 4, Target: p})
			}
		default:
			Raise(Unreachable, "move: unsupported memory-store source %s", src.operandType())
		}
	default:
		Raise(Unreachable, "move: unsupported destination operand %s", dst.operandType())
	}
}

func (a *Assembler) applyAlu(op x86.AluOp, size int, x, y Operand, writesBack bool) {
	dst := asRegister(x)
	switch s := y.(type) {
	case Register:
		x86.CombineRR(a.buf, op, size, dst.Low, s.Low)
	case Constant, Address:
		v, p, resolved := immediateValue(y)
		off, w := x86.CombineCR(a.buf, op, size, dst.Low, v)
		if !resolved {
			a.tasks = append(a.tasks, ImmediateTask{Offset: off, Width: w, Target: p})
		}
	default:
		Raise(Unreachable, "alu: unsupported right operand %s", y.operandType())
	}
	_ = writesBack
}

// applyDivRem emits idiv. The Compiler is responsible for having already
// placed the dividend in rax per Plan(Div/Rem).FixedFirst; this just
// sign-extends it into rdx:rax and divides.
func (a *Assembler) applyDivRem(size int, dividend, divisor Operand) {
	_ = asRegister(dividend)
	x86.SignExtendAcc(a.buf, size)
	div := asRegister(divisor)
	x86.IDivR(a.buf, size, div.Low)
}

func (a *Assembler) applyShift(op Op, size int, value, count Operand) {
	dst := asRegister(value)
	ext := x86.ShiftLeft
	switch op {
	case Shr:
		ext = x86.ShiftRightSigned
	case Ushr:
		ext = x86.ShiftRightUnsigned
	}
	switch c := count.(type) {
	case Register:
		x86.ShiftCL(a.buf, ext, size, dst.Low)
		_ = c
	case Constant:
		v, _, resolved := immediateValue(count)
		if !resolved {
			Raise(Unreachable, "shift count must be an already-resolved constant or cl")
		}
		x86.ShiftImm(a.buf, ext, size, dst.Low, byte(v))
	default:
		Raise(Unreachable, "shift: unsupported count operand %s", count.operandType())
	}
}

// WriteTo runs every deferred Task against the code buffer, then copies the
// patched code to dst and appends the constant pool at pad(length). After
// WriteTo every Promise
// touched by a Task is resolved (§6, §8).
func (a *Assembler) WriteTo(dst []byte) (err error) {
	defer Recover(&err)
	a.buf.Commit()
	padded := a.PadLength()
	need := padded + a.PoolSize()
	if len(dst) < need {
		Raise(Unreachable, "destination buffer too small: need %d, have %d", need, len(dst))
	}
	for _, t := range a.tasks {
		if terr := t.run(a.buf); terr != nil {
			return terr
		}
	}
	codeLen := a.buf.Len()
	copy(dst, a.buf.Bytes())
	for i := codeLen; i < padded; i++ {
		dst[i] = 0
	}
	w := a.arch.WordSize()
	for i, p := range a.pool {
		v, verr := p.Value()
		if verr != nil {
			return Fault{Kind: NotResolved, Message: verr.Error()}
		}
		off := padded + i*w
		b := make([]byte, 8)
		putLE64(b, v)
		copy(dst[off:off+w], b[:w])
	}
	return nil
}
