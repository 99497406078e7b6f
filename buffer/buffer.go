// Package buffer implements the growable byte buffer the Assembler encodes
// into, plus an explicit commit lifecycle so a finalized buffer can't be
// silently mutated by a late append (the bug SafeBuffer in the teacher
// codebase was built to catch).
package buffer

import (
	"encoding/binary"
	"fmt"
)

// Allocator is the interface for an external collaborator that grows
// off-arena storage. CodeBuffer stores one (see NewWithAllocator) but never
// calls it: every append grows the buffer with Go's slice growth.
type Allocator interface {
	Allocate(n int) []byte
}

// CodeBuffer is an append-only byte buffer with a commit lifecycle: once
// Commit is called (at WriteTo time) further writes panic instead of
// silently corrupting already-measured code.
type CodeBuffer struct {
	data      []byte
	committed bool
	alloc     Allocator
}

// New creates a CodeBuffer with an initial capacity hint.
func New(initialCapacity int) *CodeBuffer {
	if initialCapacity <= 0 {
		initialCapacity = 1024
	}
	return &CodeBuffer{data: make([]byte, 0, initialCapacity)}
}

// NewWithAllocator is New, and records alloc on the buffer. Growth past the
// initial capacity still uses Go's append; alloc is not called.
func NewWithAllocator(initialCapacity int, alloc Allocator) *CodeBuffer {
	b := New(initialCapacity)
	b.alloc = alloc
	return b
}

func (b *CodeBuffer) mustNotBeCommitted() {
	if b.committed {
		panic("buffer: write to a committed CodeBuffer")
	}
}

// Append writes a single byte.
func (b *CodeBuffer) Append(v byte) {
	b.mustNotBeCommitted()
	b.data = append(b.data, v)
}

// AppendBytes writes a raw byte slice verbatim (already-encoded operand
// bytes, e.g. a ModRM+SIB+disp tail).
func (b *CodeBuffer) AppendBytes(v []byte) {
	b.mustNotBeCommitted()
	b.data = append(b.data, v...)
}

// Append2 writes a big-endian two-byte opcode, matching the teacher's
// encode2 helper for two-byte 0x0F-prefixed instructions.
func (b *CodeBuffer) Append2(v uint16) {
	b.mustNotBeCommitted()
	b.Append(byte(v >> 8))
	b.Append(byte(v))
}

// Append4 writes a little-endian 32-bit word, used for displacements and
// 32-bit immediates.
func (b *CodeBuffer) Append4(v int32) {
	b.mustNotBeCommitted()
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	b.data = append(b.data, tmp[:]...)
}

// AppendAddress writes a word-sized (pointer-width) little-endian value,
// used for 64-bit absolute immediates on a 64-bit target.
func (b *CodeBuffer) AppendAddress(v int64, wordSize int) {
	b.mustNotBeCommitted()
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	b.data = append(b.data, tmp[:wordSize]...)
}

// Len returns the number of bytes written so far; used as the current code
// offset while encoding.
func (b *CodeBuffer) Len() int {
	return len(b.data)
}

// Bytes returns the underlying buffer. Safe to call before or after Commit.
func (b *CodeBuffer) Bytes() []byte {
	return b.data
}

// PatchByte overwrites a single already-written byte, used by tasks that
// fix up an opcode or ModRM byte post-hoc (rare; most tasks patch tail
// displacements/immediates via PatchBytes).
func (b *CodeBuffer) PatchByte(offset int, v byte) {
	if offset < 0 || offset >= len(b.data) {
		panic(fmt.Sprintf("buffer: patch offset %d out of range (len=%d)", offset, len(b.data)))
	}
	b.data[offset] = v
}

// PatchBytes overwrites len(v) bytes starting at offset. Tasks use this
// after Commit, which is why it is exempt from mustNotBeCommitted: patches
// are exactly the writes WriteTo performs once the layout is final.
func (b *CodeBuffer) PatchBytes(offset int, v []byte) {
	if offset < 0 || offset+len(v) > len(b.data) {
		panic(fmt.Sprintf("buffer: patch range [%d,%d) out of range (len=%d)", offset, offset+len(v), len(b.data)))
	}
	copy(b.data[offset:], v)
}

// Commit freezes the buffer against further Append calls.
func (b *CodeBuffer) Commit() {
	b.committed = true
}

// Committed reports whether Commit has been called.
func (b *CodeBuffer) Committed() bool {
	return b.committed
}
