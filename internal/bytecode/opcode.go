// Package bytecode defines the stack-oriented instruction set the compiler
// emits and the interpreter dispatches, and the immutable Code object that
// holds a compiled unit (§4.5).
package bytecode

import "github.com/rainbow-alex/burn/internal/ident"

// Op identifies an instruction. Operands are carried alongside it in an
// Instruction rather than encoded into a byte stream, matching the pack's
// register/stack VM references (e.g. wudi/hey's opcodes package) more than
// a packed bytecode format: Burn's "bytecode" is a slice of tagged structs,
// not raw bytes, which keeps Nop-patching (§4.10) a plain field assignment.
type Op int

const (
	// Stack/VM.
	Nop Op = iota
	Pop
	Fail // unreachable marker; hit only on an engine invariant violation.

	// Literals.
	PushNothing
	PushBoolean
	PushInteger
	PushFloat
	PushString
	PushFunction
	InlinedModule

	// Variables.
	LoadLocal
	StoreLocal
	InitializeSharedLocal
	LoadSharedLocal
	StoreSharedLocal
	LoadStaticBound
	StoreStaticBound
	LoadSharedBound
	StoreSharedBound

	// Names and modules.
	LoadImplicit
	Use

	// Access.
	GetProperty
	SetProperty
	GetItem

	// Calls/returns.
	Call
	Return
	ReturnNothing

	// Flow.
	Jump
	JumpIfPopFalsy
	FlowJump
	PopFlowPoint

	// Try/catch/finally.
	PushStartCatchFlowPoint
	PushStartFinallyFlowPoint
	Throw
	ThrownIs
	CatchLocalOrJump
	CatchSharedLocalOrJump
	CatchLocal
	CatchSharedLocal
	Rethrow
	StartFinally
	EndFinally

	// Operators.
	Add
	Subtract
	Multiply
	Divide
	Union
	Intersection
	Is
	Eq
	Neq
	Lt
	Gt
	LtEq
	GtEq
	Not
	ShortCircuitAnd
	ShortCircuitOr

	// Misc.
	ToString
	Print
)

var opNames = map[Op]string{
	Nop: "Nop", Pop: "Pop", Fail: "Fail",
	PushNothing: "PushNothing", PushBoolean: "PushBoolean", PushInteger: "PushInteger",
	PushFloat: "PushFloat", PushString: "PushString", PushFunction: "PushFunction",
	InlinedModule: "InlinedModule",
	LoadLocal:     "LoadLocal", StoreLocal: "StoreLocal",
	InitializeSharedLocal: "InitializeSharedLocal", LoadSharedLocal: "LoadSharedLocal", StoreSharedLocal: "StoreSharedLocal",
	LoadStaticBound: "LoadStaticBound", StoreStaticBound: "StoreStaticBound",
	LoadSharedBound: "LoadSharedBound", StoreSharedBound: "StoreSharedBound",
	LoadImplicit: "LoadImplicit", Use: "Use",
	GetProperty: "GetProperty", SetProperty: "SetProperty", GetItem: "GetItem",
	Call: "Call", Return: "Return", ReturnNothing: "ReturnNothing",
	Jump: "Jump", JumpIfPopFalsy: "JumpIfPopFalsy", FlowJump: "FlowJump", PopFlowPoint: "PopFlowPoint",
	PushStartCatchFlowPoint: "PushStartCatchFlowPoint", PushStartFinallyFlowPoint: "PushStartFinallyFlowPoint",
	Throw: "Throw", ThrownIs: "ThrownIs",
	CatchLocalOrJump: "CatchLocalOrJump", CatchSharedLocalOrJump: "CatchSharedLocalOrJump",
	CatchLocal: "CatchLocal", CatchSharedLocal: "CatchSharedLocal",
	Rethrow: "Rethrow", StartFinally: "StartFinally", EndFinally: "EndFinally",
	Add: "Add", Subtract: "Subtract", Multiply: "Multiply", Divide: "Divide", Union: "Union",
	Intersection: "Intersection",
	Is: "Is", Eq: "Eq", Neq: "Neq", Lt: "Lt", Gt: "Gt", LtEq: "LtEq", GtEq: "GtEq", Not: "Not",
	ShortCircuitAnd: "ShortCircuitAnd", ShortCircuitOr: "ShortCircuitOr",
	ToString: "ToString", Print: "Print",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "Op(?)"
}

// Instruction is one bytecode instruction plus its operands. Not every
// field is used by every Op; the compiler only ever sets the fields an Op
// actually reads (§4.5/§4.6).
type Instruction struct {
	Op Op

	// Int is the generic integer operand: a pc for jumps, a slot index for
	// Load*/Store*/Catch*, an argument count for Call, a pool index for
	// PushString/PushFunction, a flow-point count for FlowJump.
	Int int
	// Int2 is a second integer operand, used by CatchLocalOrJump/
	// CatchSharedLocalOrJump (slot, pc) and FlowJump (n_flow_points, pc).
	Int2 int

	Bool  bool
	Float float64

	Name *ident.Handle

	// Module is the resolved pointer target of InlinedModule. It is left
	// as `any` here (rather than a concrete *module.Module) to avoid a
	// package cycle between bytecode and module; the interpreter type
	// -asserts it back to *module.Module at dispatch time.
	Module any

	// UseOp is the host operation object a Use instruction invokes; left
	// as `any` for the same reason as Module.
	UseOp any
}
