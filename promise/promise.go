// Package promise implements the late-bound integer values used to patch
// forward references (branch displacements, pool addresses, call targets)
// once an emitted code buffer has a final home in memory.
package promise

import "errors"

// ErrNotResolved is returned by Value when a promise is queried before it
// can be answered. Seeing this escape a compile is an ordering bug in the
// caller, not a recoverable condition.
var ErrNotResolved = errors.New("promise: value queried before resolved")

// Promise is a late-bound integer, typically a code address. Every promise
// answers Resolved before a caller should trust Value.
type Promise interface {
	Value() (int64, error)
	Resolved() bool
}

// Resolved wraps a value that is already known, such as a literal constant
// or an address computed ahead of time by the host VM.
type Resolved struct {
	V int64
}

// Of is a convenience constructor for a Resolved promise.
func Of(v int64) Resolved { return Resolved{V: v} }

func (r Resolved) Value() (int64, error) { return r.V, nil }
func (r Resolved) Resolved() bool        { return true }

// Func adapts a resolver closure to the Promise interface. The compiler's
// own promise kinds (code offsets, logical-IP offsets, labels) and the
// assembler's pool slots are separate types, not Funcs. The
// Promise methods are on the pointer receiver deliberately: Sites that
// wrap a Promise are compared by == elsewhere (Site "is this my current
// site" checks), and a value-receiver closure type is not comparable.
type Func struct {
	ResolveFn func() (int64, bool)
}

func (f *Func) Value() (int64, error) {
	if v, ok := f.ResolveFn(); ok {
		return v, nil
	}
	return 0, ErrNotResolved
}

func (f *Func) Resolved() bool {
	_, ok := f.ResolveFn()
	return ok
}
