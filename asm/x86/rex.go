package x86

import "github.com/xyproto/jcore/buffer"

// REX bit layout: 0100WRXB.
const (
	rexBase = 0x40
	rexW    = 0x08
	rexR    = 0x04
	rexX    = 0x02
	rexB    = 0x01
)

// writeREX emits a REX prefix iff one is required: operation is explicitly
// 64-bit (w), or any operand register is extended (r8-r15). A REX-less
// encoding is preferred when nothing demands one, matching the teacher's
// "only emit REX when needed" comment in mov.go.
func writeREX(buf *buffer.CodeBuffer, w bool, reg, index, rm int) {
	b := byte(rexBase)
	needed := w
	if w {
		b |= rexW
	}
	if reg >= 0 && needsExtension(reg) {
		b |= rexR
		needed = true
	}
	if index >= 0 && needsExtension(index) {
		b |= rexX
		needed = true
	}
	if rm >= 0 && needsExtension(rm) {
		b |= rexB
		needed = true
	}
	if needed {
		buf.Append(b)
	}
}

// writeModRMReg emits a register-direct ModRM byte (mod=11).
func writeModRMReg(buf *buffer.CodeBuffer, reg, rm int) {
	buf.Append(0xC0 | (low3(reg) << 3) | low3(rm))
}

// writeModRMMem emits ModRM (+SIB +displacement) for base+disp[+index*scale]
// addressing, following the ModRM/SIB rules in §4.7: zero displacement is
// omitted unless base==RBP, 8-bit displacement uses the short form
// otherwise 32-bit, and SIB is required whenever base==RSP or an index is
// present.
func writeModRMMem(buf *buffer.CodeBuffer, reg, base int, disp int32, index, scale int) {
	needsSIB := base == RSP || index != NoReg
	var mod byte
	switch {
	case disp == 0 && base != RBP:
		mod = 0x00
	case disp >= -128 && disp <= 127:
		mod = 0x01
	default:
		mod = 0x02
	}
	rm := byte(4)
	if !needsSIB {
		rm = low3(base)
	}
	buf.Append(mod<<6 | (low3(reg) << 3) | rm)
	if needsSIB {
		scaleBits := scaleEncoding(scale)
		idx := byte(4)
		if index != NoReg {
			idx = low3(index)
		}
		buf.Append(scaleBits<<6 | idx<<3 | low3(base))
	}
	switch mod {
	case 0x01:
		buf.Append(byte(int8(disp)))
	case 0x02:
		buf.Append4(disp)
	}
}

func scaleEncoding(scale int) byte {
	switch scale {
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	default:
		return 0
	}
}
