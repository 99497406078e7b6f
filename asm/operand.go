package asm

import "github.com/xyproto/jcore/promise"

// OperandType tags the four operand shapes the dispatch tables key on.
// StackOperand is deliberately not a member: a value living only on the
// abstract stack is never handed to the Assembler directly, it is synced to
// a register or memory site first (see the compiler package's stack sync).
type OperandType int

const (
	ConstantOperand OperandType = iota
	AddressOperand
	RegisterOperand
	MemoryOperand
	OperandTypeCount
)

func (t OperandType) String() string {
	switch t {
	case ConstantOperand:
		return "constant"
	case AddressOperand:
		return "address"
	case RegisterOperand:
		return "register"
	case MemoryOperand:
		return "memory"
	default:
		return "unknown-operand-type"
	}
}

// Operand is the payload the dispatch tables pass to an encoder. Each
// concrete type below corresponds 1:1 with an OperandType value.
type Operand interface {
	operandType() OperandType
}

// Constant is an operand whose value is a (possibly still unresolved)
// Promise, emitted as an immediate.
type Constant struct {
	Value promise.Promise
}

func (Constant) operandType() OperandType { return ConstantOperand }

// Address is an absolute, promise-valued address (used for `call`/`jmp`
// through a known but late-bound function pointer, as opposed to a
// pc-relative displacement).
type Address struct {
	Value promise.Promise
}

func (Address) operandType() OperandType { return AddressOperand }

// Register is a (low, high) register pair. High is NoRegister unless the
// operand is a double-word value split across two 32-bit registers on a
// 32-bit target.
type Register struct {
	Low  int
	High int
}

func (Register) operandType() OperandType { return RegisterOperand }

// NoRegister marks the absence of a register, e.g. Register.High for a
// single-width value.
const NoRegister = -1

// Memory is base-register + displacement + optional (index, scale)
// addressing, matching x86's ModRM/SIB addressing modes.
type Memory struct {
	Base        int
	Displacement int32
	Index       int // NoRegister if absent
	Scale       int // 1, 2, 4, or 8; meaningless when Index == NoRegister
}

func (Memory) operandType() OperandType { return MemoryOperand }
