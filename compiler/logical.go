package compiler

// LogicalInstruction is one per logical-IP slot (§3): it tracks how many
// times control flow has visited it, the first/last Event appended under
// it, and — once emission reaches it — the machine offset that answers any
// machineIp promise pointed at it.
type LogicalInstruction struct {
	IP                 int
	VisitCount         int
	First, Last        *Event
	MachineOffset      int
	machineOffsetKnown bool
	PredecessorIP      int // -1 if none
	stackOnEntry       *StackFrame
}

// Junction is a logical IP that has been visited as a branch target at
// least once. The Compiler records junctions but does not walk this list or
// propagate marks from predecessors: Compile materializes the whole
// abstract stack at a junction's first event and before every branch, so
// incoming edges agree on the stack pointer offset at the join (§4.4).
type Junction struct {
	IP   int
	Inst *LogicalInstruction
}
