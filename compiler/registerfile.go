package compiler

import "github.com/xyproto/jcore/asm"

// RegisterFile tracks, for every register index, which Value currently
// occupies it — the back-reference §9 specifies as "a plain index into a
// Compiler-owned table", not a pointer graph. Reserved registers (frame
// pointer, stack pointer, thread register, and anything the caller has
// temporarily pinned for an in-flight Call) never appear as allocation
// choices (§3 invariant).
type RegisterFile struct {
	arch     asm.Architecture
	occupant []*Value
	reserved []bool
}

// NewRegisterFile creates a file sized to arch.RegisterCount(), with the
// architecture's permanently reserved registers pre-marked.
func NewRegisterFile(arch asm.Architecture) *RegisterFile {
	n := arch.RegisterCount()
	f := &RegisterFile{arch: arch, occupant: make([]*Value, n), reserved: make([]bool, n)}
	for r := 0; r < n; r++ {
		if arch.IsReserved(r) {
			f.reserved[r] = true
		}
	}
	return f
}

// Reserve temporarily pins reg out of allocation (e.g. while materializing
// a Call's argument registers one at a time).
func (f *RegisterFile) Reserve(reg int) { f.reserved[reg] = true }

// Release undoes a temporary Reserve, provided the register is not one of
// the architecture's permanent reservations.
func (f *RegisterFile) Release(reg int) {
	if !f.arch.IsReserved(reg) {
		f.reserved[reg] = false
	}
}

// Occupy records that v now lives in reg.
func (f *RegisterFile) Occupy(reg int, v *Value) { f.occupant[reg] = v }

// Occupant returns the Value currently in reg, or nil.
func (f *RegisterFile) Occupant(reg int) *Value { return f.occupant[reg] }

// Evict clears reg's occupant and removes its RegisterSite from the
// evicted value's site list.
func (f *RegisterFile) Evict(reg int) {
	v := f.occupant[reg]
	if v == nil {
		return
	}
	f.occupant[reg] = nil
	for _, s := range v.sites {
		if rs, ok := s.(RegisterSite); ok && rs.Low == reg {
			v.removeSite(s)
			break
		}
	}
}

// matches reports whether reg is an allowed candidate under mask (0 means
// unconstrained).
func matches(mask uint32, reg int) bool {
	return mask == 0 || mask&(1<<uint(reg)) != 0
}

// Allocate picks a register satisfying mask: a free one if any exists,
// otherwise spills the first occupied-but-unreserved candidate (§4.3
// "spill on demand": "acquired-but-not-reserved registers are reusable").
// Aborts with Unreachable if every candidate register is reserved.
func (f *RegisterFile) Allocate(mask uint32) int {
	for r := 0; r < len(f.occupant); r++ {
		if f.reserved[r] || !matches(mask, r) {
			continue
		}
		if f.occupant[r] == nil {
			return r
		}
	}
	for r := 0; r < len(f.occupant); r++ {
		if f.reserved[r] || !matches(mask, r) {
			continue
		}
		f.Evict(r)
		return r
	}
	asm.Raise(asm.Unreachable, "register allocation exhausted: no free or spillable register under mask %#x", mask)
	return -1
}

// AllocateExact returns reg specifically, evicting whatever currently
// occupies it; it does not mark reg reserved (used for Plan-pinned registers: rax/rdx for
// div/rem, rcx for shift counts, argument registers for calls).
func (f *RegisterFile) AllocateExact(reg int) int {
	if f.occupant[reg] != nil {
		f.Evict(reg)
	}
	return reg
}
