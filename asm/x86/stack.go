package x86

import "github.com/xyproto/jcore/buffer"

// PushR emits `push reg` (always 8 bytes wide on x86-64 regardless of the
// REX.W bit, per the ISA — the encoder never sets REX.W here).
func PushR(buf *buffer.CodeBuffer, reg int) {
	if needsExtension(reg) {
		buf.Append(rexBase | rexB)
	}
	buf.Append(0x50 + low3(reg))
}

// PopR emits `pop reg`.
func PopR(buf *buffer.CodeBuffer, reg int) {
	if needsExtension(reg) {
		buf.Append(rexBase | rexB)
	}
	buf.Append(0x58 + low3(reg))
}

// SubtractCR emits `sub dst, imm`, used by the stack synchronizer to
// reserve space for a pure reservation frame
// (§4.4: "emitting ... a Subtract of size*WORD from the stack pointer").
func SubtractCR(buf *buffer.CodeBuffer, width, dst int, imm int64) (immOffset, immWidth int) {
	return CombineCR(buf, aluSub, width, dst, imm)
}

// NegR emits `neg dst` (two's-complement negate), the Translate event's
// only architecture op today.
func NegR(buf *buffer.CodeBuffer, width, dst int) {
	prefixWidth(buf, width)
	writeREX(buf, width == 8, NoReg, NoReg, dst)
	buf.Append(0xF7)
	writeModRMReg(buf, 3, dst)
}
