package asm

import "github.com/xyproto/jcore/promise"

// poolPromise addresses one word-sized slot in the constant pool appended
// after the code section (§6: "appends the pool at pad(length)").
type poolPromise struct {
	asm   *Assembler
	index int
}

func (p poolPromise) Resolved() bool {
	return p.asm.emissionDone
}

func (p poolPromise) Value() (int64, error) {
	if !p.asm.emissionDone {
		return 0, promise.ErrNotResolved
	}
	return int64(p.asm.PadLength() + p.index*p.asm.arch.WordSize()), nil
}

// PoolAppend appends a word to the constant pool and returns a Promise
// addressing that slot's eventual absolute offset. The slot's own value
// (v) may itself be unresolved at append time (e.g. a forward code
// address); it is fixed up by WriteTo the same way code-level tasks are.
func (a *Assembler) PoolAppend(v promise.Promise) promise.Promise {
	a.pool = append(a.pool, v)
	return poolPromise{asm: a, index: len(a.pool) - 1}
}

// PoolSize returns the size in bytes of the constant pool.
func (a *Assembler) PoolSize() int {
	return len(a.pool) * a.arch.WordSize()
}

// PadLength rounds the emitted code length up to a word boundary, the
// offset at which the constant pool begins.
func (a *Assembler) PadLength() int {
	w := a.arch.WordSize()
	n := a.buf.Len()
	return (n + w - 1) / w * w
}
