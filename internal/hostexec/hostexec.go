//go:build unix

// Package hostexec mmaps a compiled code buffer executable and calls into
// it, letting the compiler package's tests exercise real machine execution
// instead of only asserting on emitted bytes (§8's concrete scenarios, e.g.
// "executing the buffer returns 7").
//
// Grounded on tetratelabs/wazero's jit_amd64.go jitcall(codeSegment, ...)
// trampoline (a dedicated asm stub that loads arguments into fixed registers
// and CALLs into the mapped segment) and the teacher's own mmap syscall use
// in arena.go's generateArenaInit, which already issues the
// PROT_READ|PROT_WRITE|PROT_EXEC mmap by hand; here it goes through
// golang.org/x/sys/unix instead of raw syscall numbers.
package hostexec

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Buffer is an mmap'd, executable copy of a compiled code segment.
type Buffer struct {
	mem []byte
}

// Map copies code into a fresh anonymous executable mapping. The caller
// must call Unmap when done with it.
func Map(code []byte) (*Buffer, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("hostexec: empty code buffer")
	}
	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("hostexec: mmap: %w", err)
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("hostexec: mprotect: %w", err)
	}
	return &Buffer{mem: mem}, nil
}

// Unmap releases the mapped region. Safe to call more than once.
func (b *Buffer) Unmap() error {
	if b.mem == nil {
		return nil
	}
	err := unix.Munmap(b.mem)
	b.mem = nil
	return err
}

// Call invokes the mapped code with up to three integer arguments in the
// System V order (rdi, rsi, rdx) the asm package's X86_64
// implementation targets, and returns its rax result. jitcall is the asm
// trampoline in jitcall_amd64.s.
func (b *Buffer) Call(a0, a1, a2 uintptr) uintptr {
	return jitcall(uintptr(unsafe.Pointer(&b.mem[0])), a0, a1, a2)
}

//go:noescape
func jitcall(codeSegment, a0, a1, a2 uintptr) uintptr
