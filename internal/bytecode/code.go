package bytecode

// Code is immutable after compilation, save for Nop-patching performed by
// use inlining (§4.10, §5 "Shared resource policy"): that single mutation
// is idempotent, so the immutability invariant (§3 "Invariants") holds in
// every observable sense.
type Code struct {
	Instructions []Instruction

	NLocalVariables       int
	NSharedLocalVariables int

	Strings   []string
	Functions []*FunctionDefinition

	// UsePoints is compile-time bookkeeping for every `use` statement in
	// this Code: its own Use opcode offset, the dotted path it names, and
	// every Name-reference call site (LoadImplicit placeholders) resolved
	// against its trailing identifier in the same scope (§4.10). The
	// compiler has no module-tree dependency, so it leaves these unwired;
	// package module's WireUse links them into live host operations
	// after compilation, once a module tree is available.
	UsePoints []*UsePoint
}

// UsePoint is one `use` statement's compile-time bookkeeping, see Code.UsePoints.
type UsePoint struct {
	Path        []string
	UseOffset   int
	NameOffsets []int
}

// PatchNop rewrites the instruction at offset to a Nop. This is the only
// mutation Code permits after compilation; it backs use-inlining's
// "replace the original Use opcode with Nop so re-entries are no-ops"
// step (§4.10 step 4).
func (c *Code) PatchNop(offset int) {
	c.Instructions[offset] = Instruction{Op: Nop}
}

// Patch rewrites the instruction at offset in place. Used by use-inlining
// to turn a Name-resolving call site into a constant push (InlinedModule).
func (c *Code) Patch(offset int, instr Instruction) {
	c.Instructions[offset] = instr
}

// ParamStorage records where an incoming argument is written: a Local slot
// or a SharedLocal cell, per the parameter's own storage classification.
type ParamStorage int

const (
	ParamLocal ParamStorage = iota
	ParamSharedLocal
)

// Parameter is one declared function parameter.
type Parameter struct {
	Storage ParamStorage
	Slot    int
}

// BindingSource names which array of the enclosing frame a binding is
// copied or shared from.
type BindingSource int

const (
	FromLocal BindingSource = iota
	FromSharedLocal
	FromStaticBound
	FromSharedBound
)

// BindingTarget names which captured array of the new closure a binding
// populates.
type BindingTarget int

const (
	ToStaticBound BindingTarget = iota
	ToSharedBound
)

// Binding describes how to materialize one captured variable when a
// closure is instantiated from a FunctionDefinition (§3 "Code", §4.9).
type Binding struct {
	Source     BindingSource
	SourceSlot int

	Target     BindingTarget
	TargetSlot int
}

// FunctionDefinition is a compiler-emitted, pool-resident description of a
// nested function: its own Code, parameter list, and the bindings needed
// to instantiate a closure over it.
type FunctionDefinition struct {
	Name string // empty for anonymous function literals; used in traces only.

	Code       *Code
	Parameters []Parameter

	Bindings []Binding

	NStaticBoundVariables int
	NSharedBoundVariables int
}
