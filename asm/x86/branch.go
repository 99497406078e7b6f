package x86

import "github.com/xyproto/jcore/buffer"

// Condition codes for the near (0F 8x /rel32) Jcc form.
const (
	CondEqual        = 0x84
	CondNotEqual     = 0x85
	CondLess         = 0x8C
	CondLessEqual    = 0x8E
	CondGreater      = 0x8F
	CondGreaterEqual = 0x8D
)

// JumpC emits an unconditional near jmp (0xE9 rel32), always the 5-byte
// form per §4.7 ("PC-relative branches and calls emit a 5- or 6-byte
// instruction"). Returns the instruction's start offset and total size so
// the caller can register an OffsetTask at instructionOffset+instructionSize-4.
func JumpC(buf *buffer.CodeBuffer) (instructionOffset, instructionSize int) {
	instructionOffset = buf.Len()
	buf.Append(0xE9)
	buf.Append4(0)
	return instructionOffset, buf.Len() - instructionOffset
}

// JumpIfC emits a near Jcc (0x0F 8x rel32), the 6-byte form.
func JumpIfC(buf *buffer.CodeBuffer, cond byte) (instructionOffset, instructionSize int) {
	instructionOffset = buf.Len()
	buf.Append(0x0F)
	buf.Append(cond)
	buf.Append4(0)
	return instructionOffset, buf.Len() - instructionOffset
}

// JumpR emits `jmp reg` (indirect jump through a register holding an
// already-materialized target address).
func JumpR(buf *buffer.CodeBuffer, reg int) {
	writeREX(buf, false, NoReg, NoReg, reg)
	buf.Append(0xFF)
	writeModRMReg(buf, 4, reg)
}

// CallC emits a direct near call (0xE8 rel32), the 5-byte PC-relative form.
func CallC(buf *buffer.CodeBuffer) (instructionOffset, instructionSize int) {
	instructionOffset = buf.Len()
	buf.Append(0xE8)
	buf.Append4(0)
	return instructionOffset, buf.Len() - instructionOffset
}

// CallR emits an indirect call through a register.
func CallR(buf *buffer.CodeBuffer, reg int) {
	writeREX(buf, false, NoReg, NoReg, reg)
	buf.Append(0xFF)
	writeModRMReg(buf, 2, reg)
}

// Return_ emits `ret`.
func Return_(buf *buffer.CodeBuffer) {
	buf.Append(0xC3)
}
