package compiler

import (
	"github.com/xyproto/jcore/asm"
	"github.com/xyproto/jcore/promise"
)

// Fault is the fatal error type the Compiler and Assembler both raise (§7).
// It is an alias rather than a second type so a single recover site at
// Compiler.Compile / Compiler.WriteTo catches panics from either layer.
type Fault = asm.Fault

// System is the external abort/assertion sink (§6). The default Compiler
// behavior (panicking a Fault, recovered into a returned error) needs no
// System at all; a host VM that wants its own fatal-error path can still
// observe every Fault via the error Compile/WriteTo return.
type System interface {
	Abort(message string)
}

// TraceHandler registers a GC safe-point at every call site (§6, §4.5):
// handleTrace is invoked with a CodePromise that resolves to the call's
// return address once that event finishes compiling.
type TraceHandler interface {
	HandleTrace(p promise.Promise)
}
