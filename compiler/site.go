package compiler

import (
	"github.com/xyproto/jcore/asm"
	"github.com/xyproto/jcore/promise"
)

// SiteKind tags the six Site variants of §3. Sites are a closed, small set
// of shapes; per §9's design note this is modeled as a tagged interface
// with a type switch rather than deep virtual dispatch.
type SiteKind int

const (
	ConstantKind SiteKind = iota
	AddressKind
	RegisterKind
	MemoryKind
	StackKind
	IndirectKind
)

// siteWeight orders the six cost bands spec §3 assigns to a Site ("0 = same,
// 1 = immediate, 2 = reg, 3 = address, 4 = memory, 5 = stack"): how
// expensive it is to use an existing site of this kind as a read's source,
// independent of the read's preferred target. Register beats memory beats
// stack because each step further from "already a usable operand" costs
// more moves to materialize.
func siteWeight(k SiteKind) int {
	switch k {
	case ConstantKind:
		return 1
	case AddressKind:
		return 3
	case RegisterKind:
		return 2
	case MemoryKind:
		return 4
	case StackKind:
		return 5
	default:
		return 6
	}
}

// Site describes one place a Value may reside. Every concrete type below
// implements this directly; IndirectSite is the only variant whose Resolve
// is non-trivial (§9: "forwards to another value's current site list").
type Site interface {
	Kind() SiteKind
	// CopyCost estimates how expensive it is to turn this site into a
	// usable operand for target; 0 iff this is literally target.
	CopyCost(target Site) int
	// Project returns the asm.Operand payload this site contributes to an
	// Assembler.Apply call.
	Project() asm.Operand
	// Resolve follows value-indirect forwarding; every other site resolves
	// to itself.
	Resolve() Site
}

func sameSite(a, b Site) bool {
	return a == b
}

// ConstantSite is a resolved or unresolved address-producing promise
// emitted as an immediate.
type ConstantSite struct{ Value promise.Promise }

func (s ConstantSite) Kind() SiteKind { return ConstantKind }
func (s ConstantSite) CopyCost(target Site) int {
	if sameSite(Site(s), target) {
		return 0
	}
	return siteWeight(ConstantKind)
}
func (s ConstantSite) Project() asm.Operand { return asm.Constant{Value: s.Value} }
func (s ConstantSite) Resolve() Site        { return s }

// AddressSite is an absolute immediate address.
type AddressSite struct{ Value promise.Promise }

func (s AddressSite) Kind() SiteKind { return AddressKind }
func (s AddressSite) CopyCost(target Site) int {
	if sameSite(Site(s), target) {
		return 0
	}
	return siteWeight(AddressKind)
}
func (s AddressSite) Project() asm.Operand { return asm.Address{Value: s.Value} }
func (s AddressSite) Resolve() Site        { return s }

// RegisterSite is a (low, high) register pair; high is NoRegister unless
// the value is a double-word on a 32-bit target (jcore only targets
// x86-64, so High is always NoRegister in practice — kept for parity with
// §3's data model and any future 32-bit target).
type RegisterSite struct {
	Low, High int
}

func (s RegisterSite) Kind() SiteKind { return RegisterKind }
func (s RegisterSite) CopyCost(target Site) int {
	if sameSite(Site(s), target) {
		return 0
	}
	return siteWeight(RegisterKind)
}
func (s RegisterSite) Project() asm.Operand { return asm.Register{Low: s.Low, High: s.High} }
func (s RegisterSite) Resolve() Site        { return s }

// MemorySite is base register + displacement + optional (index, scale).
type MemorySite struct {
	Base         int
	Displacement int32
	Index        int
	Scale        int
}

func (s MemorySite) Kind() SiteKind { return MemoryKind }
func (s MemorySite) CopyCost(target Site) int {
	if sameSite(Site(s), target) {
		return 0
	}
	return siteWeight(MemoryKind)
}
func (s MemorySite) Project() asm.Operand {
	return asm.Memory{Base: s.Base, Displacement: s.Displacement, Index: s.Index, Scale: s.Scale}
}
func (s MemorySite) Resolve() Site { return s }

// StackSite references a frame on the abstract Stack, indicating the value
// has been pushed onto the physical stack. Its displacement from rsp is
// recomputed at Project time from the stack's current top, since every
// later push above this frame increases how far below rsp it now sits
// (§4.4).
type StackSite struct {
	Frame      *StackFrame
	StackRegister int
}

func (s StackSite) Kind() SiteKind { return StackKind }
func (s StackSite) CopyCost(target Site) int {
	if sameSite(Site(s), target) {
		return 0
	}
	return siteWeight(StackKind)
}
func (s StackSite) Project() asm.Operand {
	top := s.Frame.stack.Top
	disp := int32(0)
	if top != nil {
		disp = int32(top.ByteIndexFromTop - s.Frame.ByteIndexFromTop)
	}
	return asm.Memory{
		Base:         s.StackRegister,
		Displacement: disp,
		Index:        -1,
	}
}
func (s StackSite) Resolve() Site { return s }

// IndirectSite forwards to another Value's current site list — used to pin
// a read's preferred target to the result of a prior write before that
// write's actual site is known (§9). It is never materialized as an
// independent site during allocation; Resolve always walks through.
type IndirectSite struct {
	Target *Value
}

func (s IndirectSite) Kind() SiteKind { return IndirectKind }
func (s IndirectSite) CopyCost(target Site) int {
	return s.Resolve().CopyCost(target)
}
func (s IndirectSite) Project() asm.Operand {
	return s.Resolve().Project()
}
func (s IndirectSite) Resolve() Site {
	if len(s.Target.sites) == 0 {
		asm.Raise(asm.Unreachable, "value-indirect site resolves to a value with no sites")
	}
	return s.Target.sites[0]
}
