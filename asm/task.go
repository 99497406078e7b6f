package asm

import (
	"math"

	"github.com/xyproto/jcore/buffer"
	"github.com/xyproto/jcore/promise"
)

// Task is a deferred byte-patch closure recorded during encoding and run
// once every Promise it depends on is resolvable, at WriteTo time (§3 Task,
// §4.7).
type Task interface {
	run(buf *buffer.CodeBuffer) error
}

// OffsetTask patches a 32-bit PC-relative displacement at
// instructionOffset+instructionSize-4, the last four bytes of a near
// jmp/call/jcc (§3 Task, Offset kind).
type OffsetTask struct {
	InstructionOffset int
	InstructionSize   int
	Target            promise.Promise
}

func (t OffsetTask) run(buf *buffer.CodeBuffer) error {
	v, err := t.Target.Value()
	if err != nil {
		return Fault{Kind: NotResolved, Message: err.Error()}
	}
	disp := v - int64(t.InstructionOffset+t.InstructionSize)
	if disp > math.MaxInt32 || disp < math.MinInt32 {
		return Fault{Kind: RangeExceeded, Message: "pc-relative displacement does not fit in 32 bits; use a long call/jump"}
	}
	patch := make([]byte, 4)
	putLE32(patch, int32(disp))
	buf.PatchBytes(t.InstructionOffset+t.InstructionSize-4, patch)
	return nil
}

// ImmediateTask patches a word-sized absolute value at a fixed code offset
// (§3 Task, Immediate kind) — used for movabs imm64 fixups and constant
// pool address fixups.
type ImmediateTask struct {
	Offset int
	Width  int // 1, 4, or 8
	Target promise.Promise
}

func (t ImmediateTask) run(buf *buffer.CodeBuffer) error {
	v, err := t.Target.Value()
	if err != nil {
		return Fault{Kind: NotResolved, Message: err.Error()}
	}
	switch t.Width {
	case 1:
		buf.PatchBytes(t.Offset, []byte{byte(v)})
	case 4:
		patch := make([]byte, 4)
		putLE32(patch, int32(v))
		buf.PatchBytes(t.Offset, patch)
	case 8:
		patch := make([]byte, 8)
		putLE64(patch, v)
		buf.PatchBytes(t.Offset, patch)
	default:
		return Fault{Kind: Unreachable, Message: "immediate task with unsupported width"}
	}
	return nil
}

func putLE32(b []byte, v int32) {
	u := uint32(v)
	b[0] = byte(u)
	b[1] = byte(u >> 8)
	b[2] = byte(u >> 16)
	b[3] = byte(u >> 24)
}

func putLE64(b []byte, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
}
