// Package x86 implements raw x86/x86-64 instruction encoders: REX prefixes,
// ModRM/SIB addressing, and the byte sequences for the instruction family
// listed in the assembler's encoder contract. Every function here writes
// directly into a buffer.CodeBuffer and reports back the byte offsets of any
// PC-relative displacement or absolute immediate it could not resolve, so
// the caller (package asm) can register a deferred patch task against the
// right Promise. Nothing in this package knows about Promises, Tasks, or
// the Compiler — it is a pure byte emitter, grounded on the teacher
// repository's per-instruction encoders (add.go, mov.go, cmp.go, jmp.go).
package x86

// Register indices 0-15 match the x86-64 encoding order (rax..r15). Callers
// pass these as the Low/High fields of asm.Register.
const (
	RAX = 0
	RCX = 1
	RDX = 2
	RBX = 3
	RSP = 4
	RBP = 5
	RSI = 6
	RDI = 7
	R8  = 8
	R9  = 9
	R10 = 10
	R11 = 11
	R12 = 12
	R13 = 13
	R14 = 14
	R15 = 15
)

// NoReg marks the absence of an index register in a Memory operand.
const NoReg = -1

// needsExtension reports whether reg requires REX.B/R/X (encoding >= 8).
func needsExtension(reg int) bool {
	return reg&8 != 0
}

// low3 returns the 3-bit field ModRM/SIB encode for a register.
func low3(reg int) byte {
	return byte(reg & 7)
}

// RegisterName returns the canonical assembly mnemonic for reg at the given
// operand width in bytes (1, 2, 4, or 8).
func RegisterName(reg, width int) string {
	names8 := [16]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"}
	names4 := [16]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
		"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d"}
	names2 := [16]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di",
		"r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w"}
	names1 := [16]string{"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil",
		"r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"}
	if reg < 0 || reg > 15 {
		return "?"
	}
	switch width {
	case 1:
		return names1[reg]
	case 2:
		return names2[reg]
	case 4:
		return names4[reg]
	default:
		return names8[reg]
	}
}
