package compiler

import "github.com/xyproto/jcore/asm"

// Event is one recorded IR operation, attached to a logical IP, carrying
// its read and write intentions plus whatever op-specific payload its Kind
// needs to compile itself (§3 Event). Subclasses in the source design
// become, in Go, a closed set of detail structs behind the eventDetail
// interface — the tagged-variant approach §9 recommends for Event and Site
// alike.
type Event struct {
	logicalIP    int
	reads        []*Read
	writes       []*Write
	next         *Event
	codePromises []*codePromise
	detail       eventDetail
}

// eventDetail is implemented by each event kind (Move, Compare, Branch,
// Combine, Translate, Memory, Call, Return, Push, Pop, Mark, Store).
type eventDetail interface {
	compile(c *Compiler, e *Event)
}

func (e *Event) addCodePromise() *codePromise {
	p := &codePromise{}
	e.codePromises = append(e.codePromises, p)
	return p
}

// resolveCodePromises is called by the driver right after an event's
// detail.compile returns, answering every CodePromise the event created
// with the code length at that instant (§2 step 3, §4.5).
func (e *Event) resolveCodePromises(length int) {
	for _, p := range e.codePromises {
		p.resolve(int64(length))
	}
}

// --- Move -------------------------------------------------------------

type moveDetail struct {
	src, dst *Value
	size     int
}

func (d *moveDetail) compile(c *Compiler, e *Event) {
	src := c.resolveRead(e.reads[0])
	dst := c.allocateWriteTarget(e.writes[0], nil)
	c.assembler.Apply2(asm.Move, d.size, src, dst)
}

// --- Compare ------------------------------------------------------------

type compareDetail struct {
	a, b *Value
	size int
}

func (d *compareDetail) compile(c *Compiler, e *Event) {
	a := c.resolveReadRegister(e.reads[0])
	b := c.resolveOperandPreferRegister(e.reads[1])
	c.assembler.Apply2(asm.Compare, d.size, a, b)
}

// --- Branch ---------------------------------------------------------------

type branchDetail struct {
	op     asm.Op
	target *Value
}

func (d *branchDetail) compile(c *Compiler, e *Event) {
	addr := c.resolveRead(e.reads[0])
	c.assembler.Apply1(d.op, c.arch.WordSize(), addr)
}

// --- Combine (binary arithmetic) -----------------------------------------

type combineDetail struct {
	op           asm.Op
	a, b, result *Value
	size         int
}

func (d *combineDetail) compile(c *Compiler, e *Event) {
	constraint := c.arch.Plan(d.op)

	var aSite, bSite asm.Operand
	switch d.op {
	case asm.Div, asm.Rem:
		aSite = c.resolveReadInto(e.reads[0], constraint.FixedFirst)
		bSite = c.resolveReadRegisterMasked(e.reads[1], constraint.SecondMask)
	case asm.Shl, asm.Shr, asm.Ushr:
		aSite = c.resolveReadRegister(e.reads[0])
		if constraint.FixedSecond >= 0 {
			bSite = c.resolveReadInto(e.reads[1], constraint.FixedSecond)
		} else {
			bSite = c.resolveReadRegister(e.reads[1])
		}
	case asm.Mul:
		aSite = c.resolveReadRegister(e.reads[0])
		bSite = c.resolveReadRegister(e.reads[1])
	default:
		aSite = c.resolveReadRegister(e.reads[0])
		bSite = c.resolveOperandPreferRegister(e.reads[1])
	}

	c.assembler.Apply2(d.op, d.size, aSite, bSite)

	// The result lives wherever the op left it: a's register for the
	// ordinary two-address ops, a fixed register for div/rem.
	switch d.op {
	case asm.Div, asm.Rem:
		reg := constraint.ResultReg
		c.regs.AllocateExact(reg)
		c.regs.Occupy(reg, d.result)
		site := RegisterSite{Low: reg, High: -1}
		d.result.addSite(site)
		d.result.target = site
	default:
		reg := aSite.(asm.Register)
		c.regs.Occupy(reg.Low, d.result)
		site := RegisterSite{Low: reg.Low, High: reg.High}
		d.result.addSite(site)
		d.result.target = site
	}
}

// --- Translate (unary arithmetic) -----------------------------------------

type translateDetail struct {
	op           asm.Op
	value, result *Value
	size         int
}

func (d *translateDetail) compile(c *Compiler, e *Event) {
	reg := c.resolveReadRegister(e.reads[0])
	c.assembler.Apply1(d.op, d.size, reg)
	c.regs.Occupy(reg.Low, d.result)
	rsite := RegisterSite{Low: reg.Low, High: reg.High}
	d.result.addSite(rsite)
	d.result.target = rsite
}

// --- Memory (address-computation synthesis) --------------------------------

// memoryDetail keeps base/index alive as reads so the Memory operand's
// registers are not reclaimed out from under a later use of the same
// addressing expression (§4.1: "memory additionally enqueues a
// MemoryEvent so that the base/index values are live reads at the point
// of use").
type memoryDetail struct {
	base, index    *Value
	displacement   int32
	scale          int
	result         *Value
}

func (d *memoryDetail) compile(c *Compiler, e *Event) {
	baseSite := c.resolveReadRegister(e.reads[0])
	indexReg := -1
	if d.index != nil {
		indexSite := c.resolveReadRegister(e.reads[1])
		indexReg = indexSite.Low
	}
	site := MemorySite{Base: baseSite.Low, Displacement: d.displacement, Index: indexReg, Scale: d.scale}
	d.result.addSite(site)
	d.result.target = site
}

// --- Push / Pop --------------------------------------------------------

type pushDetail struct {
	value *Value
	size  int
	frame *StackFrame
}

func (d *pushDetail) compile(c *Compiler, e *Event) {
	// Pushing does not itself emit anything (§4.4: "push(size,v) records a
	// new top frame but does not itself emit a stack-pointer adjustment");
	// materialization happens lazily the first time a read needs the
	// physical stack to be consistent (syncStack).
}

type popDetail struct {
	frame  *StackFrame
	result *Value
	size   int
}

func (d *popDetail) compile(c *Compiler, e *Event) {
	if !d.frame.Pushed {
		// Never materialized: the value still lives wherever it was
		// before the push (register/constant/etc). Nothing to emit; the
		// abstract pop already happened in the appender.
		return
	}
	reg := c.regs.Allocate(0)
	x := RegisterSite{Low: reg, High: -1}
	// The frame is guaranteed to be the current physical top: pop()
	// unwinds LIFO, and only the top frame of a materialized run can be
	// the abstract top too (§4.4 discipline invariant).
	c.assembler.Apply1(asm.Pop, c.arch.WordSize(), x.Project())
	c.regs.Occupy(reg, d.result)
	d.result.addSite(x)
	d.result.target = x
}

// --- Mark ------------------------------------------------------------------

// markDetail resolves a label's promise to the code position reached when
// this event compiles (§4.2 mark).
type markDetail struct {
	target *labelPromise
}

func (d *markDetail) compile(c *Compiler, e *Event) {
	d.target.resolve(int64(c.assembler.Length()))
}

// --- Store -------------------------------------------------------------

// storeDetail writes src to an existing memory-backed Value (dst), unlike
// moveDetail which always allocates a fresh register for its write.
type storeDetail struct {
	src, dst *Value
	size     int
}

func (d *storeDetail) compile(c *Compiler, e *Event) {
	src := c.resolveRead(e.reads[0])
	dst := c.resolveRead(e.reads[1])
	c.assembler.Apply2(asm.Move, d.size, src, dst)
}

// --- Call / Return --------------------------------------------------------

type callDetail struct {
	addr        *Value
	indirection *Value
	args        []*Value
	result      *Value
	trace       bool
}

func (d *callDetail) compile(c *Compiler, e *Event) {
	arch := c.arch
	// Pre-target every argument read into its calling-convention slot
	// before resolving any of them, so register pressure from earlier
	// arguments can't steal a later argument's required register.
	n := len(d.args)
	for i := 0; i < n && i < arch.ArgumentRegisterCount(); i++ {
		lo, _ := arch.ArgumentRegister(i)
		c.regs.Reserve(lo)
	}
	for i, argRead := range e.reads[:n] {
		if i < arch.ArgumentRegisterCount() {
			lo, _ := arch.ArgumentRegister(i)
			c.resolveReadInto(argRead, lo)
		} else {
			c.resolveRead(argRead) // overflow args: left on their current site (stack calling convention out of scope for the baseline target)
		}
	}
	for i := 0; i < n && i < arch.ArgumentRegisterCount(); i++ {
		lo, _ := arch.ArgumentRegister(i)
		c.regs.Release(lo)
	}

	if d.indirection == nil {
		addrRead := e.reads[n]
		c.assembler.Apply1(asm.CallDirect, arch.WordSize(), c.resolveRead(addrRead))
	} else {
		indRead := e.reads[n]
		reg := c.resolveReadRegister(indRead)
		c.assembler.Apply1(asm.CallIndirect, arch.WordSize(), reg)
	}

	if d.trace {
		p := e.addCodePromise()
		_ = p // resolved to the current length once compile() returns; a
		// TraceHandler registered with the Compiler observes it via
		// Compiler.traceHandler in the driver loop.
	}

	lo, hi := arch.ReturnRegister()
	site := RegisterSite{Low: lo, High: hi}
	c.regs.AllocateExact(lo)
	c.regs.Occupy(lo, d.result)
	d.result.addSite(site)
	d.result.target = site
}

type returnDetail struct {
	value *Value
	size  int
}

func (d *returnDetail) compile(c *Compiler, e *Event) {
	lo, _ := c.arch.ReturnRegister()
	if d.value != nil {
		c.resolveReadInto(e.reads[0], lo)
	}
	// Epilogue: restore the caller's base pointer, then ret. The prologue
	// that mirrors this (push rbp; mov rbp, rsp) is emitted once up front
	// by Compiler.Compile before the first logical IP's events run.
	bp := c.arch.BaseRegister()
	c.assembler.Apply1(asm.Pop, c.arch.WordSize(), asm.Register{Low: bp, High: -1})
	c.assembler.Apply0(asm.Return)
}
