package compiler

import "github.com/xyproto/jcore/asm"

// resolveRead is the read-target allocation algorithm of §4.3: pick the
// cheapest current site, sync the physical stack if that site turns out to
// be a pending push, then move to the read's preferred target if one was
// requested and the chosen site doesn't already satisfy it.
func (c *Compiler) resolveRead(r *Read) asm.Operand {
	return c.resolveReadToward(r, nil)
}

// resolveReadInto is resolveRead with the target pinned to a specific
// register — used for argument registers, div/rem's dividend, and shift's
// count operand (§4.3's open question on architecture register
// constraints). If r's value already occupies reg, AllocateExact is
// skipped: evicting it would strip the value of its only site before
// resolveReadToward gets a chance to see it (it lands on the cost-0
// no-op path instead).
func (c *Compiler) resolveReadInto(r *Read, reg int) asm.Operand {
	if c.regs.Occupant(reg) != r.value {
		c.regs.AllocateExact(reg)
	}
	return c.resolveReadToward(r, &RegisterSite{Low: reg, High: -1})
}

func (c *Compiler) resolveReadToward(r *Read, forcedTarget *RegisterSite) asm.Operand {
	var target Site
	if forcedTarget != nil {
		target = *forcedTarget
	} else if r.target != nil {
		target = r.target.Resolve()
	}

	site := r.value.bestSite(target)
	if site == nil {
		asm.Raise(asm.Unreachable, "read: value has no current site")
	}
	if site.Kind() == StackKind {
		c.syncStack(site.(StackSite).Frame)
		site = r.value.bestSite(target)
	}
	if target != nil && site.CopyCost(target) != 0 {
		c.moveValueTo(r.value, site, target, r.size)
		site = target
	}
	r.value.source = site
	r.value.retireRead()
	return site.Project()
}

// resolveReadRegister is resolveRead but always lands the result in a
// register, moving it there first if its cheapest current site is an
// immediate, memory, or stack location. Needed wherever an encoder only
// accepts a register operand: the two-address ALU destination, Neg, a
// Memory event's base/index, and an indirect call target (§4.7).
func (c *Compiler) resolveReadRegister(r *Read) asm.Register {
	return c.resolveReadRegisterMasked(r, 0)
}

// resolveReadRegisterMasked is resolveReadRegister constrained to the
// registers mask allows (0 = unconstrained). Used for the divisor of
// Div/Rem, which Architecture.Plan excludes from rax/rdx so it can't land
// in the register SignExtendAcc's cdq/cqo is about to clobber (§4.3, §4.6).
func (c *Compiler) resolveReadRegisterMasked(r *Read, mask uint32) asm.Register {
	site := r.value.bestSite(nil)
	if site == nil {
		asm.Raise(asm.Unreachable, "read: value has no current site")
	}
	if site.Kind() == StackKind {
		c.syncStack(site.(StackSite).Frame)
		site = r.value.bestSite(nil)
	}
	if rs, ok := site.(RegisterSite); ok && matches(mask, rs.Low) {
		r.value.source = site
		r.value.retireRead()
		return asm.Register{Low: rs.Low, High: rs.High}
	}
	reg := c.regs.Allocate(mask)
	target := RegisterSite{Low: reg, High: -1}
	c.moveValueTo(r.value, site, target, r.size)
	r.value.source = target
	r.value.retireRead()
	return asm.Register{Low: reg, High: -1}
}

// resolveOperandPreferRegister resolves r as a plain immediate when its
// current site is already a Constant (the ALU immediate forms encode these
// directly), and otherwise forces it into a register — covering the second
// operand of a two-address ALU op, which the x86 encoders accept as either
// a register or an immediate but never raw memory.
func (c *Compiler) resolveOperandPreferRegister(r *Read) asm.Operand {
	if site := r.value.bestSite(nil); site != nil && site.Kind() == ConstantKind {
		return c.resolveRead(r)
	}
	return c.resolveReadRegister(r)
}

// moveValueTo emits a Move from from to to, and records the bookkeeping
// side effects (site list, register occupancy) of the value having gained
// a new site.
func (c *Compiler) moveValueTo(v *Value, from, to Site, size int) {
	c.assembler.Apply2(asm.Move, size, from.Project(), to.Project())
	if rs, ok := to.(RegisterSite); ok {
		c.regs.Occupy(rs.Low, v)
	}
	v.addSite(to)
}

// allocateWriteTarget picks a register for w (a free one, or the exact
// register in preferred if given) and installs the bookkeeping a write
// needs: a new RegisterSite on the value, and the register file's
// occupancy record.
func (c *Compiler) allocateWriteTarget(w *Write, preferred *int) asm.Operand {
	var reg int
	if preferred != nil {
		reg = c.regs.AllocateExact(*preferred)
	} else {
		reg = c.regs.Allocate(0)
	}
	c.regs.Occupy(reg, w.value)
	site := RegisterSite{Low: reg, High: -1}
	w.value.addSite(site)
	w.value.target = site
	return site.Project()
}

// syncStack materializes every currently-unpushed frame from the stack's
// logical top down to the nearest already-pushed frame (so target and any
// unpushed frames below it), in oldest-first physical order, so every synced frame's eventual StackSite displacement (computed
// relative to the *current* top) stays consistent with the physical
// layout (§4.4).
func (c *Compiler) syncStack(target *StackFrame) {
	if target.Pushed {
		return
	}
	var chain []*StackFrame
	for f := c.stack.Top; f != nil && !f.Pushed; f = f.Next {
		chain = append(chain, f)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		c.materializeFrame(chain[i])
	}
}

func (c *Compiler) materializeFrame(frame *StackFrame) {
	c.log.Debugf("materialize stack frame at depth %d, size %d", frame.ByteIndexFromTop, frame.WordSize)
	if frame.Owner == nil {
		c.assembler.Apply1(asm.SubtractStack, frame.WordSize, nil)
	} else {
		reg := c.ensureRegister(frame.Owner, frame.WordSize)
		c.assembler.Apply1(asm.Push, frame.WordSize, asm.Register{Low: reg, High: -1})
	}
	frame.Pushed = true
	site := StackSite{Frame: frame, StackRegister: c.arch.StackRegister()}
	if frame.Owner != nil {
		frame.Owner.addSite(site)
	}
}

// ensureRegister returns a register currently holding v, materializing one
// via a Move if v's only sites are non-register (constant/memory).
func (c *Compiler) ensureRegister(v *Value, size int) int {
	for _, s := range v.sites {
		if rs, ok := s.(RegisterSite); ok {
			return rs.Low
		}
	}
	site := v.bestSite(nil)
	reg := c.regs.Allocate(0)
	target := RegisterSite{Low: reg, High: -1}
	c.moveValueTo(v, site, target, size)
	return reg
}
