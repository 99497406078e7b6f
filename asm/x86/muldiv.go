package x86

import "github.com/xyproto/jcore/buffer"

// MulRR emits `imul dst, src` (signed multiply, two-address form, 0F AF /r).
func MulRR(buf *buffer.CodeBuffer, width, dst, src int) {
	prefixWidth(buf, width)
	writeREX(buf, width == 8, dst, NoReg, src)
	buf.Append(0x0F)
	buf.Append(0xAF)
	writeModRMReg(buf, dst, src)
}

// SignExtendAcc emits cdq/cqo: sign-extends eax into edx:eax (width 4) or
// rax into rdx:rax (width 8), the mandatory setup before idiv on
// x86 per the rax:rdx calling convention noted in §4.3's open question.
func SignExtendAcc(buf *buffer.CodeBuffer, width int) {
	prefixWidth(buf, width)
	if width == 8 {
		buf.Append(0x48)
	}
	buf.Append(0x99)
}

// IDivR emits `idiv divisor` (signed divide rdx:rax by divisor; quotient in
// rax, remainder in rdx). Callers must have already issued SignExtendAcc
// and ensured the dividend occupies rax per Architecture.Plan's register
// mask for div/rem.
func IDivR(buf *buffer.CodeBuffer, width, divisor int) {
	prefixWidth(buf, width)
	writeREX(buf, width == 8, NoReg, NoReg, divisor)
	buf.Append(0xF7)
	writeModRMReg(buf, 7, divisor)
}
