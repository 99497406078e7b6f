package compiler

import (
	"github.com/google/uuid"

	"github.com/xyproto/jcore/asm"
	"github.com/xyproto/jcore/jitlog"
	"github.com/xyproto/jcore/promise"
)

// Compiler accumulates an architecture-independent stream of Events (§2
// step 1), then compiles them in one pass: fix up junctions, emit the
// prologue, walk events in logical order allocating sites and encoding
// instructions, then mark emission complete (§2 steps 2-3).
type Compiler struct {
	arch       asm.Architecture
	assembler  *asm.Assembler
	regs       *RegisterFile
	stack      *Stack
	values     []*Value

	headEvent, tailEvent *Event

	logicalInsts map[int]*LogicalInstruction
	junctions    []*Junction
	junctionSet  map[int]bool

	currentLogicalIP int
	currentInst      *LogicalInstruction

	traceHandler TraceHandler

	// BuildID tags this Compiler instance in jitlog lines (when the logger
	// is built with it) so concurrent compiles (§5: one Compiler per
	// goroutine) are distinguishable in shared logs. Faults do not carry it.
	BuildID uuid.UUID

	log *jitlog.Logger

	compiled bool
	length   int
}

// SetLogger attaches a jitlog.Logger; nil disables logging (the zero value
// already behaves this way since (*Logger)(nil).Debugf is a no-op).
func (c *Compiler) SetLogger(l *jitlog.Logger) { c.log = l }

// New creates a Compiler targeting arch. trace may be nil; a nil handler
// simply means no call site's CodePromise is ever observed.
func New(arch asm.Architecture, trace TraceHandler) *Compiler {
	return &Compiler{
		arch:             arch,
		assembler:        asm.New(arch),
		regs:             NewRegisterFile(arch),
		stack:            &Stack{},
		logicalInsts:     make(map[int]*LogicalInstruction),
		junctionSet:      make(map[int]bool),
		traceHandler:     trace,
		BuildID:          uuid.New(),
		currentLogicalIP: -1,
	}
}

func (c *Compiler) newValue() *Value {
	v := &Value{id: len(c.values)}
	c.values = append(c.values, v)
	return v
}

func (c *Compiler) appendEvent(e *Event) {
	e.logicalIP = c.currentLogicalIP
	if c.headEvent == nil {
		c.headEvent = e
	} else {
		c.tailEvent.next = e
	}
	c.tailEvent = e
	if c.currentInst != nil {
		if c.currentInst.First == nil {
			c.currentInst.First = e
		}
		c.currentInst.Last = e
	}
}

func (c *Compiler) instFor(n int) *LogicalInstruction {
	inst, ok := c.logicalInsts[n]
	if !ok {
		inst = &LogicalInstruction{IP: n, PredecessorIP: -1}
		c.logicalInsts[n] = inst
	}
	return inst
}

// --- Operand constructors (§3 Value, §4.1) --------------------------------

// Constant returns a Value holding a resolved immediate.
func (c *Compiler) Constant(v int64) *Value {
	val := c.newValue()
	val.addSite(ConstantSite{Value: promise.Of(v)})
	return val
}

// ConstantPromise returns a Value holding a late-bound immediate.
func (c *Compiler) ConstantPromise(p promise.Promise) *Value {
	val := c.newValue()
	val.addSite(ConstantSite{Value: p})
	return val
}

// Address returns a Value holding an absolute address promise.
func (c *Compiler) Address(p promise.Promise) *Value {
	val := c.newValue()
	val.addSite(AddressSite{Value: p})
	return val
}

// Base returns a Value aliasing the architecture's frame-pointer register.
func (c *Compiler) Base() *Value {
	v := c.newValue()
	v.addSite(RegisterSite{Low: c.arch.BaseRegister(), High: -1})
	return v
}

// Thread returns a Value aliasing the architecture's reserved thread/context
// register (r14 on X86_64).
func (c *Compiler) Thread() *Value {
	v := c.newValue()
	v.addSite(RegisterSite{Low: c.arch.ThreadRegister(), High: -1})
	return v
}

// Label returns a Value whose address is unresolved until a later Mark call
// fixes it to the code position reached at that point in emission order.
func (c *Compiler) Label() *Value {
	v := c.newValue()
	v.addSite(AddressSite{Value: &labelPromise{}})
	return v
}

// Memory enqueues a MemoryEvent computing base [+ index*scale] + displacement,
// keeping base and index (if any) as live reads at the point of use (§4.1).
func (c *Compiler) Memory(base, index *Value, displacement int32, scale int) *Value {
	result := c.newValue()
	e := &Event{}
	reads := []*Read{base.addRead(c.arch.WordSize(), nil)}
	if index != nil {
		reads = append(reads, index.addRead(c.arch.WordSize(), nil))
	}
	e.reads = reads
	e.detail = &memoryDetail{base: base, index: index, displacement: displacement, scale: scale, result: result}
	c.appendEvent(e)
	return result
}

// Peek returns the Value owning the stack frame index slots below the
// current abstract top, without popping it (used to read an argument still
// resident on the caller's stack without disturbing later pops).
func (c *Compiler) Peek(index int) *Value {
	f := c.stack.Top
	for i := 0; i < index && f != nil; i++ {
		f = f.Next
	}
	if f == nil || f.Owner == nil {
		asm.Raise(asm.Unreachable, "peek: no value at stack depth %d", index)
	}
	return f.Owner
}

// --- Stack / control-flow bookkeeping (§4.2, §4.4) ------------------------

// Push records a new top-of-stack frame for v without emitting any code yet
// (§4.4: materialization is deferred to the first read that needs it).
func (c *Compiler) Push(size int, v *Value) {
	frame := c.stack.push(v, size)
	c.appendEvent(&Event{detail: &pushDetail{value: v, size: size, frame: frame}})
}

// Pop discards the abstract top frame and returns the Value that owned it
// (the same Value handle originally passed to Push, per §8's round-trip
// identity property).
func (c *Compiler) Pop(size int) *Value {
	frame := c.stack.pop()
	if frame == nil {
		asm.Raise(asm.Unreachable, "pop: abstract stack is empty")
	}
	result := frame.Owner
	c.appendEvent(&Event{detail: &popDetail{frame: frame, result: result, size: size}})
	return result
}

// PushState snapshots the abstract stack's depth so a later PopState can
// rewind a scoped sequence of pushes (e.g. after a conditionally-taken
// branch rejoins).
func (c *Compiler) PushState() State { return c.stack.snapshot() }

// PopState rewinds the abstract stack to a previously captured State.
func (c *Compiler) PopState(s State) { c.stack.restore(s) }

// VisitLogicalIp records n as having been reached by a branch; the first
// visit registers it as a Junction (§4.4).
func (c *Compiler) VisitLogicalIp(n int) {
	inst := c.instFor(n)
	inst.VisitCount++
	if inst.VisitCount == 1 {
		c.junctions = append(c.junctions, &Junction{IP: n, Inst: inst})
		c.junctionSet[n] = true
	}
}

// StartLogicalIp begins accumulating events under logical IP n.
func (c *Compiler) StartLogicalIp(n int) {
	inst := c.instFor(n)
	inst.PredecessorIP = c.currentLogicalIP
	c.currentLogicalIP = n
	c.currentInst = inst
}

// MachineIp returns a Promise resolving to logical IP n's eventual machine
// code offset, answerable once emission reaches it (§4.2).
func (c *Compiler) MachineIp(n int) promise.Promise {
	return ipPromise{inst: c.instFor(n)}
}

// Mark resolves label's promise to the code position reached at this point
// in emission order; label must have come from Compiler.Label.
func (c *Compiler) Mark(label *Value) {
	site, ok := label.sites[0].(AddressSite)
	if !ok {
		asm.Raise(asm.Unreachable, "mark: value is not a label")
	}
	lp, ok := site.Value.(*labelPromise)
	if !ok {
		asm.Raise(asm.Unreachable, "mark: value is not a label")
	}
	c.appendEvent(&Event{detail: &markDetail{target: lp}})
}

// PoolAppend appends a pool entry (a resolved constant or a late-bound
// promise) and returns a Promise addressing its eventual absolute offset.
func (c *Compiler) PoolAppend(v any) promise.Promise {
	switch t := v.(type) {
	case int64:
		return c.assembler.PoolAppend(promise.Of(t))
	case promise.Promise:
		return c.assembler.PoolAppend(t)
	default:
		asm.Raise(asm.Unreachable, "poolAppend: unsupported value type")
		return nil
	}
}

// --- Data movement (§4.1, §4.5) -------------------------------------------

// Store writes src to the memory location dst (dst must be a Memory-backed
// Value, typically the result of Compiler.Memory).
func (c *Compiler) Store(size int, src, dst *Value) {
	e := &Event{}
	e.reads = []*Read{src.addRead(size, nil), dst.addRead(size, nil)}
	e.detail = &storeDetail{src: src, dst: dst, size: size}
	c.appendEvent(e)
}

// Load reads size bytes from the memory location src into a fresh Value.
func (c *Compiler) Load(size int, src *Value) *Value {
	result := c.newValue()
	e := &Event{}
	e.reads = []*Read{src.addRead(size, nil)}
	e.writes = []*Write{{value: result, size: size}}
	e.detail = &moveDetail{src: src, dst: result, size: size}
	c.appendEvent(e)
	return result
}

// Loadz is Load with the result zero-extended to a full word. On X86_64 a
// 32-bit destination write already zeroes the upper 32 bits of its register,
// so a 4-byte Loadz needs no extra encoding beyond a plain Load. A 1- or
// 2-byte Loadz is also a plain Load and leaves the register's upper bits
// unchanged: no movzx encoder is implemented.
func (c *Compiler) Loadz(size int, src *Value) *Value {
	return c.Load(size, src)
}

// Load4To8 loads a 4-byte value and widens it to 8 bytes, relying on the
// same automatic upper-bit zeroing Loadz does.
func (c *Compiler) Load4To8(src *Value) *Value {
	return c.Load(4, src)
}

// --- Arithmetic (§4.1, §4.3 open question on register constraints) -------

func (c *Compiler) combine(op asm.Op, size int, a, b *Value) *Value {
	result := c.newValue()
	e := &Event{}
	e.reads = []*Read{a.addRead(size, nil), b.addRead(size, nil)}
	e.writes = []*Write{{value: result, size: size}}
	e.detail = &combineDetail{op: op, a: a, b: b, result: result, size: size}
	c.appendEvent(e)
	return result
}

func (c *Compiler) Add(size int, a, b *Value) *Value  { return c.combine(asm.Add, size, a, b) }
func (c *Compiler) Sub(size int, a, b *Value) *Value  { return c.combine(asm.Sub, size, a, b) }
func (c *Compiler) Mul(size int, a, b *Value) *Value  { return c.combine(asm.Mul, size, a, b) }
func (c *Compiler) Div(size int, a, b *Value) *Value  { return c.combine(asm.Div, size, a, b) }
func (c *Compiler) Rem(size int, a, b *Value) *Value  { return c.combine(asm.Rem, size, a, b) }
func (c *Compiler) And(size int, a, b *Value) *Value  { return c.combine(asm.And, size, a, b) }
func (c *Compiler) Or(size int, a, b *Value) *Value   { return c.combine(asm.Or, size, a, b) }
func (c *Compiler) Xor(size int, a, b *Value) *Value  { return c.combine(asm.Xor, size, a, b) }
func (c *Compiler) Shl(size int, a, b *Value) *Value  { return c.combine(asm.Shl, size, a, b) }
func (c *Compiler) Shr(size int, a, b *Value) *Value  { return c.combine(asm.Shr, size, a, b) }
func (c *Compiler) Ushr(size int, a, b *Value) *Value { return c.combine(asm.Ushr, size, a, b) }

// Neg negates a in place, returning the result Value.
func (c *Compiler) Neg(size int, a *Value) *Value {
	result := c.newValue()
	e := &Event{}
	e.reads = []*Read{a.addRead(size, nil)}
	e.writes = []*Write{{value: result, size: size}}
	e.detail = &translateDetail{op: asm.Neg, value: a, result: result, size: size}
	c.appendEvent(e)
	return result
}

// Cmp compares a against b, setting the architecture's flags for a following
// conditional branch; it produces no Value.
func (c *Compiler) Cmp(size int, a, b *Value) {
	e := &Event{}
	e.reads = []*Read{a.addRead(size, nil), b.addRead(size, nil)}
	e.detail = &compareDetail{a: a, b: b, size: size}
	c.appendEvent(e)
}

// --- Control flow (§4.1, §4.4) --------------------------------------------

func (c *Compiler) jump(op asm.Op, target *Value) {
	e := &Event{}
	e.reads = []*Read{target.addRead(c.arch.WordSize(), nil)}
	e.detail = &branchDetail{op: op, target: target}
	c.appendEvent(e)
}

func (c *Compiler) Jmp(target *Value)  { c.jump(asm.Jmp, target) }
func (c *Compiler) Je(target *Value)   { c.jump(asm.JumpIfEqual, target) }
func (c *Compiler) Jne(target *Value)  { c.jump(asm.JumpIfNotEqual, target) }
func (c *Compiler) Jl(target *Value)   { c.jump(asm.JumpIfLess, target) }
func (c *Compiler) Jle(target *Value)  { c.jump(asm.JumpIfLessEqual, target) }
func (c *Compiler) Jg(target *Value)   { c.jump(asm.JumpIfGreater, target) }
func (c *Compiler) Jge(target *Value)  { c.jump(asm.JumpIfGreaterEqual, target) }

// Call emits a direct call through addr, or an indirect call through
// indirection if indirection is non-nil (addr is then ignored). trace requests a CodePromise handed to the
// Compiler's TraceHandler once the call site's return address is known.
func (c *Compiler) Call(addr, indirection *Value, args []*Value, trace bool) *Value {
	result := c.newValue()
	e := &Event{}
	var reads []*Read
	for _, a := range args {
		reads = append(reads, a.addRead(c.arch.WordSize(), nil))
	}
	if indirection != nil {
		reads = append(reads, indirection.addRead(c.arch.WordSize(), nil))
	} else {
		reads = append(reads, addr.addRead(c.arch.WordSize(), nil))
	}
	e.reads = reads
	e.writes = []*Write{{value: result, size: c.arch.WordSize()}}
	e.detail = &callDetail{addr: addr, indirection: indirection, args: args, result: result, trace: trace}
	c.appendEvent(e)
	return result
}

// Return_ emits the function epilogue, optionally placing v in the
// architecture's return register first.
func (c *Compiler) Return_(size int, v *Value) {
	e := &Event{}
	if v != nil {
		e.reads = []*Read{v.addRead(size, nil)}
	}
	e.detail = &returnDetail{value: v, size: size}
	c.appendEvent(e)
}

// --- Driver (§2 steps 2-3) -------------------------------------------------

// syncAll materializes every currently-unpushed abstract stack frame, the
// unconditional reconciliation §4.4 requires at every junction so all
// incoming edges agree on the stack pointer's offset.
func (c *Compiler) syncAll() {
	if c.stack.Top != nil {
		c.syncStack(c.stack.Top)
	}
}

// Compile runs the junction fix-up and allocation/emission passes (§2 steps
// 2-3) and returns the final code length, or the Fault any step raised.
func (c *Compiler) Compile() (length int, err error) {
	defer asm.Recover(&err)
	c.log.Debugf("compile: %d events, %d logical instructions", eventCount(c.headEvent), len(c.logicalInsts))

	bp := c.arch.BaseRegister()
	sp := c.arch.StackRegister()
	c.assembler.Apply1(asm.Push, c.arch.WordSize(), asm.Register{Low: bp, High: -1})
	c.assembler.Apply2(asm.Move, c.arch.WordSize(), asm.Register{Low: sp, High: -1}, asm.Register{Low: bp, High: -1})

	for e := c.headEvent; e != nil; e = e.next {
		if inst, ok := c.logicalInsts[e.logicalIP]; ok && e == inst.First {
			if c.junctionSet[e.logicalIP] {
				c.syncAll()
			}
			if !inst.machineOffsetKnown {
				inst.MachineOffset = c.assembler.Length()
				inst.machineOffsetKnown = true
			}
		}
		if bd, ok := e.detail.(*branchDetail); ok {
			_ = bd
			c.syncAll()
		}
		e.detail.compile(c, e)
		e.resolveCodePromises(c.assembler.Length())
		if cd, ok := e.detail.(*callDetail); ok && cd.trace && c.traceHandler != nil {
			for _, p := range e.codePromises {
				c.traceHandler.HandleTrace(p)
			}
		}
	}

	c.assembler.MarkEmissionComplete()
	c.length = c.assembler.Length()
	c.compiled = true
	c.log.Debugf("compile: emitted %d bytes, pool %d bytes", c.length, c.assembler.PoolSize())
	return c.length, nil
}

func eventCount(head *Event) int {
	n := 0
	for e := head; e != nil; e = e.next {
		n++
	}
	return n
}

// PoolSize returns the size in bytes of the constant pool appended after
// the code section.
func (c *Compiler) PoolSize() int { return c.assembler.PoolSize() }

// WriteTo copies the compiled code and constant pool into dst, resolving
// every deferred patch Task (§6, §8). Compile must have already succeeded.
func (c *Compiler) WriteTo(dst []byte) (err error) {
	defer asm.Recover(&err)
	if !c.compiled {
		asm.Raise(asm.Unreachable, "writeTo: called before a successful Compile")
	}
	return c.assembler.WriteTo(dst)
}
