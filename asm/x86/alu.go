package x86

import "github.com/xyproto/jcore/buffer"

// aluOp carries the opcode family for a two-address ALU instruction: the
// ModRM-reg "extension" used by the imm8/imm32 immediate forms (0x83/0x81),
// and the r/m,r and r,r/m opcodes used by the register forms. This mirrors
// the teacher's per-instruction files (add.go, and.go, or.go, xor.go,
// cmp.go) which all share this exact shape and differ only in these bytes.
type aluOp struct {
	extension byte // ModRM reg field for the imm8/imm32 forms
	rmr       byte // opcode: op r/m, r   (dst is r/m)
	rrm       byte // opcode: op r, r/m   (dst is reg)
}

var (
	aluAdd = aluOp{0, 0x01, 0x03}
	aluOr  = aluOp{1, 0x09, 0x0B}
	aluAnd = aluOp{4, 0x21, 0x23}
	aluSub = aluOp{5, 0x29, 0x2B}
	aluXor = aluOp{6, 0x31, 0x33}
	aluCmp = aluOp{7, 0x39, 0x3B}
)

// CombineRR emits `op dst, src` (dst = dst OP src), the two-address shape
// §4.5 requires for Combine events on x86.
func CombineRR(buf *buffer.CodeBuffer, op aluOp, width, dst, src int) {
	prefixWidth(buf, width)
	writeREX(buf, width == 8, src, NoReg, dst)
	buf.Append(op.rmr)
	writeModRMReg(buf, src, dst)
}

// CombineCR emits `op dst, imm` (dst = dst OP imm).
func CombineCR(buf *buffer.CodeBuffer, op aluOp, width, dst int, imm int64) (immOffset, immWidth int) {
	prefixWidth(buf, width)
	writeREX(buf, width == 8, NoReg, NoReg, dst)
	if imm >= -128 && imm <= 127 {
		buf.Append(0x83)
		writeModRMReg(buf, int(op.extension), dst)
		immOffset = buf.Len()
		buf.Append(byte(imm))
		return immOffset, 1
	}
	buf.Append(0x81)
	writeModRMReg(buf, int(op.extension), dst)
	immOffset = buf.Len()
	buf.Append4(int32(imm))
	return immOffset, 4
}

// AddOp, SubOp, ... expose the opcode tables to package asm's dispatch
// without leaking the aluOp type name into its call sites.
func AddOp() aluOp { return aluAdd }
func OrOp() aluOp  { return aluOr }
func AndOp() aluOp { return aluAnd }
func SubOp() aluOp { return aluSub }
func XorOp() aluOp { return aluXor }
func CmpOp() aluOp { return aluCmp }

// AluOp is the exported alias used by callers outside this file.
type AluOp = aluOp
