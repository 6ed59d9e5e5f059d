package module

import (
	"path/filepath"
	"strings"

	"github.com/rainbow-alex/burn/internal/analysis"
	"github.com/rainbow-alex/burn/internal/bytecode"
	"github.com/rainbow-alex/burn/internal/compiler"
	"github.com/rainbow-alex/burn/internal/intrinsic"
	"github.com/rainbow-alex/burn/internal/value"
)

// StepKind is the host-operation ABI's four-way result (§6 "Host-operation
// ABI").
type StepKind int

const (
	StepOk StepKind = iota
	StepThrow
	StepBurn
	StepYield
)

// Step is what run(vm, previousResult) returns. Code is set only for
// StepBurn: the vm constructs and pushes a fresh root frame over it, runs it
// to completion, and resumes this operation with the outcome.
type Step struct {
	Kind  StepKind
	Value value.Value
	Code  *bytecode.Code
}

func ok(v value.Value) Step    { return Step{Kind: StepOk, Value: v} }
func throw(v value.Value) Step { return Step{Kind: StepThrow, Value: v} }
func burnCode(c *bytecode.Code) Step { return Step{Kind: StepBurn, Code: c} }

// Site is one (code, opcode offset) pair the Inline step rewrites (§4.10
// step 4).
type Site struct {
	Code   *bytecode.Code
	Offset int
}

type useState int

const (
	stateFindRoot useState = iota
	stateImportRoot
	stateImportSubs
	stateInline
	stateDone
)

// UseOperation is the multi-step host operation a `Use` opcode points at
// (§4.10): FindRoot, ImportRoot, ImportSubs, Inline, invoked as successive
// resumptions of Step by the vm's opcode dispatch loop.
type UseOperation struct {
	Path []string
	Tree *Tree

	// UseSite is the `use` statement's own opcode; once resolution
	// succeeds it is rewritten to Nop (§4.10 step 4, §8 "Idempotent use").
	UseSite Site
	// NameSites are every Name-node call site resolved against this
	// use's trailing identifier; each is rewritten to a constant
	// InlinedModule push (§4.10 step 4).
	NameSites []Site

	state        useState
	root         *Module
	pendingDir   string
	sources      []string
	sourceIndex  int
	awaitingCode bool
	done         bool
}

// NewUseOperation constructs the operation for one `use` statement; WireUse
// then calls AddNameSite for every Name reference the compiler recorded in
// the UsePoint's NameOffsets (§4.4 pass 4, §4.6 "Use").
func NewUseOperation(path []string, tree *Tree) *UseOperation {
	return &UseOperation{Path: append([]string(nil), path...), Tree: tree}
}

// AddNameSite registers a deferred Name-reference call site to patch once
// resolution completes.
func (op *UseOperation) AddNameSite(code *bytecode.Code, offset int) {
	op.NameSites = append(op.NameSites, Site{Code: code, Offset: offset})
}

// Step advances the state machine by one resumption. prev is Ok(Nothing) on
// the very first call, Ok(v) after a queued module source returns, or
// Throw(v) after one throws (§6 "Host-operation ABI").
func (op *UseOperation) Step(prev Step) Step {
	for {
		switch op.state {

		case stateFindRoot:
			rootName := op.Path[0]
			if m, found := op.Tree.Get(rootName); found {
				op.root = m
				op.state = stateImportSubs
				continue
			}
			dir, meta, err := op.Tree.locate(rootName)
			if err != nil {
				return throw(intrinsic.NewTypeError(err.Error()))
			}
			op.root = NewModule(rootName)
			op.Tree.Register(op.root)
			op.pendingDir = dir
			op.sources = meta.Sources
			op.state = stateImportRoot
			continue

		case stateImportRoot:
			if op.awaitingCode {
				op.awaitingCode = false
				if prev.Kind == StepThrow {
					return throw(prev.Value)
				}
				op.sourceIndex++
			}
			if op.sourceIndex >= len(op.sources) {
				op.state = stateImportSubs
				continue
			}
			root, err := op.Tree.Loader(op.sourceAbsPath(op.sources[op.sourceIndex]))
			if err != nil {
				return throw(intrinsic.NewTypeError(err.Error()))
			}
			code, errs := compiler.Compile(root, analysis.Options{})
			if len(errs) > 0 {
				return throw(intrinsic.NewTypeError(errs[0].Error()))
			}
			WireUse(code, op.Tree)
			op.awaitingCode = true
			return burnCode(code)

		case stateImportSubs:
			if len(op.Path) > 1 {
				return throw(intrinsic.NewTypeError(
					"use of " + strings.Join(op.Path, ".") + ": " + ErrSubImportUnsupported.Error(),
				))
			}
			op.state = stateInline
			continue

		case stateInline:
			resolved := value.Module(op.root)
			for _, site := range op.NameSites {
				site.Code.Patch(site.Offset, bytecode.Instruction{Op: bytecode.InlinedModule, Module: op.root})
			}
			if op.UseSite.Code != nil {
				op.UseSite.Code.PatchNop(op.UseSite.Offset)
			}
			op.state = stateDone
			op.done = true
			return ok(resolved)

		case stateDone:
			// The UseSite is Nop'd after success, so the vm will not
			// normally re-dispatch here; kept for direct Step re-entry in
			// tests (§8 "Idempotent use").
			return ok(value.Module(op.root))
		}
	}
}

func (op *UseOperation) sourceAbsPath(relative string) string {
	return filepath.Join(op.pendingDir, relative)
}

// Done reports whether Inline has already run.
func (op *UseOperation) Done() bool { return op.done }
