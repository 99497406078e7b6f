package x86

import "github.com/xyproto/jcore/buffer"

// Shift extensions for the 0xD3/0xC1 ModRM.reg field.
const (
	ShiftLeft          = 4 // shl
	ShiftRightUnsigned = 5 // shr — Compiler.Ushr
	ShiftRightSigned   = 7 // sar — Compiler.Shr
)

// ShiftCL emits `op dst, cl` — the shift count register the x86 ISA
// hard-wires for variable shift amounts (§4.3's "argument registers" note
// applies equally here: the Architecture's Plan pre-targets the count
// operand's read to cl before this encoder runs).
func ShiftCL(buf *buffer.CodeBuffer, extension, width, dst int) {
	prefixWidth(buf, width)
	writeREX(buf, width == 8, NoReg, NoReg, dst)
	buf.Append(0xD3)
	writeModRMReg(buf, extension, dst)
}

// ShiftImm emits `op dst, imm8` for a constant shift count.
func ShiftImm(buf *buffer.CodeBuffer, extension, width, dst int, count byte) {
	prefixWidth(buf, width)
	writeREX(buf, width == 8, NoReg, NoReg, dst)
	buf.Append(0xC1)
	writeModRMReg(buf, extension, dst)
	buf.Append(count)
}
