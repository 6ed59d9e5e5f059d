// Package vm implements the fiber-based interpreter core (§4.7), the Call
// protocol (§4.8), closure instantiation (§4.9) and the host-operation
// bridge (§6) that dispatches a `use` opcode into package module. Naming
// mirrors yaegi's interp package: a single Options/New constructor pair, a
// VM holding long-lived engine state distinct from a Fiber's per-execution
// stacks.
package vm

import (
	"io"
	"os"

	"github.com/rainbow-alex/burn/internal/analysis"
	"github.com/rainbow-alex/burn/internal/ast"
	"github.com/rainbow-alex/burn/internal/bytecode"
	"github.com/rainbow-alex/burn/internal/compiler"
	"github.com/rainbow-alex/burn/internal/intrinsic"
	"github.com/rainbow-alex/burn/internal/mem"
	"github.com/rainbow-alex/burn/internal/module"
	"github.com/rainbow-alex/burn/internal/trace"
	"github.com/rainbow-alex/burn/internal/value"
)

// Options configures a VM, named and shaped after yaegi's interp.Options
// (§6 "External interfaces"): stdio, the module search path, debug/quiet
// flags and the uncaught-throwable handler chain.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// SearchPaths are scanned for `<name>/burn_module.json` during `use`
	// root resolution (§4.10 "FindRoot"), mirroring yaegi's GoPath.
	SearchPaths []string

	Debug bool
	Quiet bool

	// Globals seeds the implicit module (§3 GLOSSARY "Implicit module")
	// beyond the builtin type tokens — e.g. a host embedding the engine
	// can inject its own bridge functions here.
	Globals map[string]value.Value

	// UncaughtHandlers run, in registration order, when a fiber's root
	// frame finishes with an uncaught Throw (§6 "Uncaught-throwable
	// handler registration order", a supplemented feature).
	UncaughtHandlers []func(thrown value.Value)

	// ReplHistory is the liner history file path for a REPL driver built
	// on top of this package; unused by the engine itself.
	ReplHistory string

	// Tracer, when non-nil, receives opcode and GC-sweep events as fibers run
	// (§6, -d/--debug). Left nil by default: dispatch's tracer hook is a
	// method on a possibly-nil *trace.Tracer, so there is no branch to
	// gate at every call site.
	Tracer *trace.Tracer
}

// VM is the long-lived engine instance: the module tree, the GC manager,
// the implicit module, and I/O/behavior configuration. Fibers are
// transient per-execution state created from it via NewFiber.
type VM struct {
	opts Options

	Tree     *module.Tree
	Implicit *module.Module
	gc       *mem.Manager
	tracer   *trace.Tracer
}

// New constructs a VM, mirroring interp.New: it wires the implicit module
// (builtin type tokens plus any Options.Globals) and a module.Tree rooted
// at opts.SearchPaths, ready to compile and run fibers.
func New(opts Options, loader module.SourceLoader) *VM {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}

	vm := &VM{
		opts:     opts,
		Tree:     module.NewTree(opts.SearchPaths, loader),
		Implicit: module.NewModule("<implicit>"),
		gc:       mem.NewManager(),
		tracer:   opts.Tracer,
	}
	vm.seedImplicit()
	return vm
}

func (vm *VM) seedImplicit() {
	vm.Implicit.Set("Boolean", intrinsic.Boolean)
	vm.Implicit.Set("Integer", intrinsic.Integer)
	vm.Implicit.Set("Float", intrinsic.Float)
	vm.Implicit.Set("Number", intrinsic.Number)
	vm.Implicit.Set("String", intrinsic.String)
	vm.Implicit.Set("Type", intrinsic.Type)
	vm.Implicit.Set("Throwable", intrinsic.Throwable)
	for name, v := range vm.opts.Globals {
		vm.Implicit.Set(name, v)
	}
}

// lookupImplicit resolves a free Name mention against the implicit module
// (§3 GLOSSARY "Implicit module"); an unresolved name evaluates to Nothing
// rather than faulting, since analysis (§4.4 pass 4) only distinguishes
// Use-resolved from Implicit at compile time and never rules out the name
// existing at runtime.
func (vm *VM) lookupImplicit(name string) value.Value {
	if v, ok := vm.Implicit.GetMember(name); ok {
		return v
	}
	return value.Nothing
}

// writeOut backs the Print opcode (§4.5, §6 "External interfaces"). Quiet
// (-q/--quiet) scopes only to source-fragment echo in error rendering, not
// to a program's own output, so it is never consulted here.
func (vm *VM) writeOut(s string) {
	io.WriteString(vm.opts.Stdout, s+"\n")
}

// GC exposes the VM's cycle collector, primarily for tests and the trace
// package's sweep-event reporting.
func (vm *VM) GC() *mem.Manager { return vm.gc }

// Sweep runs one mark/sweep pass over the GC manager, rooted at roots
// (every value.Function currently reachable from a live fiber or
// persisted REPL cell — collecting the live root set itself is the
// embedding host's responsibility, per SPEC_FULL.md's "GC mark-phase
// implementation" Non-goal), and reports it to the tracer if one is set.
func (vm *VM) Sweep(roots []mem.GcObject) {
	before := vm.gc.Count()
	vm.gc.Sweep(roots)
	vm.tracer.GCSweep(before, vm.gc.Count())
}

// Compile compiles root to bytecode and wires its `use` statements against
// this VM's module tree (§4.10), the step every top-level entry point
// (REPL, script runner, embedding host) must perform before executing it —
// exactly what module.WireUse already does internally for module sources.
func (vm *VM) Compile(root *ast.Root) (*bytecode.Code, []error) {
	code, errs := compiler.Compile(root, analysis.Options{})
	if len(errs) > 0 {
		return nil, errs
	}
	module.WireUse(code, vm.Tree)
	return code, nil
}

// Eval compiles and runs root's statements as a fresh root frame, returning
// its Result/whether it ended in an uncaught throw.
func (vm *VM) Eval(root *ast.Root) (*Fiber, []error) {
	code, errs := vm.Compile(root)
	if len(errs) > 0 {
		return nil, errs
	}
	fb := NewFiber(vm, code)
	fb.Run()
	if fb.HasThrown {
		vm.reportUncaught(fb.Thrown)
	}
	return fb, nil
}

func (vm *VM) reportUncaught(thrown value.Value) {
	for _, h := range vm.opts.UncaughtHandlers {
		h(thrown)
	}
	if len(vm.opts.UncaughtHandlers) == 0 {
		io.WriteString(vm.opts.Stderr, "uncaught: "+thrown.ToString()+"\n")
	}
}
