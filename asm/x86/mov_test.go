package x86

import (
	"bytes"
	"testing"

	"github.com/xyproto/jcore/buffer"
)

func TestMoveRR64(t *testing.T) {
	buf := buffer.New(8)
	MoveRR(buf, 8, RDI, RAX) // mov rdi, rax
	want := []byte{0x48, 0x89, 0xC7}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestMoveRR64ExtendedRegisters(t *testing.T) {
	buf := buffer.New(8)
	MoveRR(buf, 8, R8, R15) // mov r8, r15
	want := []byte{0x4D, 0x89, 0xF8}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestMoveCR64UsesMovabs(t *testing.T) {
	buf := buffer.New(16)
	off, width := MoveCR(buf, 8, RAX, 0x0102030405060708)
	if width != 8 {
		t.Fatalf("expected 8-byte immediate width, got %d", width)
	}
	if off != 2 {
		t.Fatalf("expected immediate at offset 2 (REX+opcode), got %d", off)
	}
	want := []byte{0x48, 0xB8, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

func TestMoveMR(t *testing.T) {
	buf := buffer.New(8)
	MoveMR(buf, 8, RAX, RDI, 16, NoReg, 1) // mov rax, [rdi+16]
	want := []byte{0x48, 0x8B, 0x47, 0x10}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}
