package vm

import (
	"github.com/rainbow-alex/burn/internal/bytecode"
	"github.com/rainbow-alex/burn/internal/value"
)

// instantiateClosure materializes a value.Function from a pool-resident
// FunctionDefinition at the point its PushFunction instruction executes,
// copying or sharing each captured binding out of the enclosing frame f
// (§4.9 "Closure instantiation"):
//   - LocalToStaticBound / StaticBoundToStaticBound: copy the value.
//   - SharedLocalToSharedBound / SharedBoundToSharedBound: clone the cell,
//     so writes through either closure's copy are observed by the other.
func (fb *Fiber) instantiateClosure(f *Frame, def *bytecode.FunctionDefinition) value.Value {
	staticBound := make([]value.Value, def.NStaticBoundVariables)
	sharedBound := make([]value.Cell, def.NSharedBoundVariables)

	for _, b := range def.Bindings {
		switch b.Target {
		case bytecode.ToStaticBound:
			staticBound[b.TargetSlot] = readBoundSource(f, b)
		case bytecode.ToSharedBound:
			sharedBound[b.TargetSlot] = readBoundCell(f, b)
		}
	}

	fn := &value.Function{StaticBound: staticBound, SharedBound: sharedBound, Def: def}
	if def.Name != "" {
		fn.Name = def.Name
	}
	fb.vm.gc.Register(fn)
	return value.FunctionValue(fn)
}

// readBoundSource reads a plain (non-cell) value for a binding whose source
// is Local or StaticBound.
func readBoundSource(f *Frame, b bytecode.Binding) value.Value {
	switch b.Source {
	case bytecode.FromLocal:
		return f.Local[b.SourceSlot]
	case bytecode.FromStaticBound:
		return f.StaticBound[b.SourceSlot]
	default:
		// A ToStaticBound target can only be sourced from Local or
		// StaticBound (§4.9): SharedLocal/SharedBound sources always
		// target SharedBound, per the analysis pass that builds Bindings.
		fault("binding source/target mismatch: shared source targeting StaticBound")
		return value.Value{}
	}
}

// readBoundCell reads (and clones) the shared cell for a binding whose
// source is SharedLocal or SharedBound.
func readBoundCell(f *Frame, b bytecode.Binding) value.Cell {
	switch b.Source {
	case bytecode.FromSharedLocal:
		return f.SharedLocal[b.SourceSlot].Clone()
	case bytecode.FromSharedBound:
		return f.SharedBound[b.SourceSlot].Clone()
	default:
		fault("binding source/target mismatch: non-shared source targeting SharedBound")
		return value.Cell{}
	}
}
