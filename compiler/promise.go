package compiler

import "github.com/xyproto/jcore/promise"

// codePromise is resolved the instant the Event that created it finishes
// compiling, to the code length at that point (§3 Promise, Code kind). Used
// by Call events to hand the trace handler a GC safe-point address.
type codePromise struct {
	resolved bool
	value    int64
}

func (p *codePromise) Resolved() bool { return p.resolved }
func (p *codePromise) Value() (int64, error) {
	if !p.resolved {
		return 0, promise.ErrNotResolved
	}
	return p.value, nil
}

func (p *codePromise) resolve(v int64) {
	p.resolved = true
	p.value = v
}

// ipPromise answers the machine offset of a LogicalInstruction once
// emission has reached it (§3 Promise, Ip kind; §4.2 machineIp).
type ipPromise struct {
	inst *LogicalInstruction
}

func (p ipPromise) Resolved() bool { return p.inst.machineOffsetKnown }
func (p ipPromise) Value() (int64, error) {
	if !p.inst.machineOffsetKnown {
		return 0, promise.ErrNotResolved
	}
	return int64(p.inst.MachineOffset), nil
}

// labelPromise backs a Compiler.Label value; a later Mark call resolves it
// to the code position reached at that point in emission order (§4.2).
type labelPromise struct {
	resolved bool
	value    int64
}

func (p *labelPromise) Resolved() bool { return p.resolved }
func (p *labelPromise) Value() (int64, error) {
	if !p.resolved {
		return 0, promise.ErrNotResolved
	}
	return p.value, nil
}

func (p *labelPromise) resolve(v int64) {
	p.resolved = true
	p.value = v
}
