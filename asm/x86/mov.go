package x86

import "github.com/xyproto/jcore/buffer"

// MoveRR emits `mov dst, src` (register to register), width in bytes. Uses
// the store-direction opcode (reg field holds src, rm field holds dst) so
// the ModRM byte's rm register is the one actually written.
func MoveRR(buf *buffer.CodeBuffer, width, dst, src int) {
	prefixWidth(buf, width)
	writeREX(buf, width == 8, src, NoReg, dst)
	buf.Append(movOpcode(width, true))
	writeModRMReg(buf, src, dst)
}

// MoveCR emits `mov dst, imm` and reports the byte offset of the immediate
// field (for an ImmediateTask if imm was not yet resolved by the caller).
// On a 64-bit width it always emits the full movabs imm64 form (0xB8+r) so
// the patch site is a stable 8 bytes wide; narrower widths use the sign- or
// zero-extending imm32 form (0xC7 /0).
func MoveCR(buf *buffer.CodeBuffer, width, dst int, imm int64) (immOffset, immWidth int) {
	if width == 8 {
		writeREX(buf, true, NoReg, NoReg, dst)
		buf.Append(0xB8 + low3(dst))
		immOffset = buf.Len()
		buf.AppendAddress(imm, 8)
		return immOffset, 8
	}
	prefixWidth(buf, width)
	writeREX(buf, false, NoReg, NoReg, dst)
	if width == 1 {
		buf.Append(0xB0 + low3(dst))
		immOffset = buf.Len()
		buf.Append(byte(imm))
		return immOffset, 1
	}
	buf.Append(0xC7)
	writeModRMReg(buf, 0, dst)
	immOffset = buf.Len()
	buf.Append4(int32(imm))
	return immOffset, 4
}

// MoveMR emits `mov dst, [base+disp+index*scale]` (load).
func MoveMR(buf *buffer.CodeBuffer, width, dst, base int, disp int32, index, scale int) {
	prefixWidth(buf, width)
	writeREX(buf, width == 8, dst, index, base)
	buf.Append(movOpcode(width, false))
	writeModRMMem(buf, dst, base, disp, index, scale)
}

// MoveRM emits `mov [base+disp+index*scale], src` (store).
func MoveRM(buf *buffer.CodeBuffer, width, base int, disp int32, index, src, scale int) {
	prefixWidth(buf, width)
	writeREX(buf, width == 8, src, index, base)
	buf.Append(movOpcode(width, true))
	writeModRMMem(buf, src, base, disp, index, scale)
}

// MoveCM emits `mov [base+disp], imm32` (store immediate). Width 8 still
// uses a 32-bit sign-extended immediate per the x86 `mov r/m64, imm32` form.
func MoveCM(buf *buffer.CodeBuffer, width, base int, disp int32, imm int32) (immOffset int) {
	prefixWidth(buf, width)
	writeREX(buf, width == 8, NoReg, NoReg, base)
	if width == 1 {
		buf.Append(0xC6)
	} else {
		buf.Append(0xC7)
	}
	writeModRMMem(buf, 0, base, disp, NoReg, 1)
	immOffset = buf.Len()
	if width == 1 {
		buf.Append(byte(imm))
	} else {
		buf.Append4(imm)
	}
	return immOffset
}

func movOpcode(width int, storeDirection bool) byte {
	switch {
	case width == 1 && storeDirection:
		return 0x88
	case width == 1:
		return 0x8A
	case storeDirection:
		return 0x89
	default:
		return 0x8B
	}
}

// prefixWidth emits the 0x66 operand-size override for 16-bit operations.
func prefixWidth(buf *buffer.CodeBuffer, width int) {
	if width == 2 {
		buf.Append(0x66)
	}
}
