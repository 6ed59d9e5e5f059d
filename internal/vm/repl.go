package vm

import (
	"github.com/rainbow-alex/burn/internal/analysis"
	"github.com/rainbow-alex/burn/internal/ast"
	"github.com/rainbow-alex/burn/internal/compiler"
	"github.com/rainbow-alex/burn/internal/module"
	"github.com/rainbow-alex/burn/internal/value"
)

// ReplSession threads a REPL's prior top-level bindings into each new
// compilation (§6 "REPL persistence", §8's testable law: a variable bound
// in one entry is readable — and further mutable by plain assignment,
// without re-`let` — in a later entry). Analysis forces every root-frame
// variable to SharedLocal+SharedBound for a ReplTopLevel compile (§4.4), so
// persistence here is just keeping the same value.Cell alive across
// separate Fiber runs, keyed by the stable *ast.VariableDecl identity a
// REPL driver reuses across entries for the same name.
type ReplSession struct {
	vm    *VM
	cells map[*ast.VariableDecl]value.Cell
}

// NewReplSession starts an empty session against vm.
func NewReplSession(vm *VM) *ReplSession {
	return &ReplSession{vm: vm, cells: map[*ast.VariableDecl]value.Cell{}}
}

// Eval compiles and runs one REPL entry. root.Scope should include every
// *ast.VariableDecl a previous entry already declared that this entry's
// statements mention, in addition to any declared fresh by this entry's
// own `let`s — exactly as a single compilation unit's scope would if the
// whole session had been one script (§4.4 pass 1 "resolution").
func (s *ReplSession) Eval(root *ast.Root) (*Fiber, []error) {
	code, errs := compiler.Compile(root, analysis.Options{ReplTopLevel: true})
	if len(errs) > 0 {
		return nil, errs
	}
	module.WireUse(code, s.vm.Tree)

	fb := NewFiber(s.vm, code)
	rf := fb.top()

	for _, decl := range root.Scope {
		if cell, ok := s.cells[decl]; ok {
			rf.SharedLocal[analysis.Info(decl).Slot] = cell
		}
	}

	fb.Run()

	for _, decl := range root.Scope {
		s.cells[decl] = rf.SharedLocal[analysis.Info(decl).Slot]
	}

	if fb.HasThrown {
		s.vm.reportUncaught(fb.Thrown)
	}
	return fb, nil
}
