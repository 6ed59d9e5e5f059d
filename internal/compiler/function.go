package compiler

import (
	"github.com/rainbow-alex/burn/internal/analysis"
	"github.com/rainbow-alex/burn/internal/ast"
	"github.com/rainbow-alex/burn/internal/bytecode"
)

// compileFunctionLiteral compiles fn's body into its own Code and records
// its parameter/binding layout as a pool-resident FunctionDefinition,
// returning its index in the enclosing Code's Functions pool (§4.6
// "Function", §4.9 "Closure instantiation").
func (e *emitter) compileFunctionLiteral(fn *ast.Function) int {
	childFrame := e.c.result.Frames[fn]
	childCode := e.c.compileFrame(childFrame, fn.Body)

	params := make([]bytecode.Parameter, len(fn.Parameters))
	for i, p := range fn.Parameters {
		vi := analysis.Info(p)
		if vi.Storage == analysis.SharedLocal {
			params[i] = bytecode.Parameter{Storage: bytecode.ParamSharedLocal, Slot: vi.Slot}
		} else {
			params[i] = bytecode.Parameter{Storage: bytecode.ParamLocal, Slot: vi.Slot}
		}
	}

	bindings := make([]bytecode.Binding, len(childFrame.Bindings))
	for i, b := range childFrame.Bindings {
		var source bytecode.BindingSource
		switch {
		case b.SourceIsLocal && !b.SourceShared:
			source = bytecode.FromLocal
		case b.SourceIsLocal && b.SourceShared:
			source = bytecode.FromSharedLocal
		case !b.SourceIsLocal && !b.SourceShared:
			source = bytecode.FromStaticBound
		default:
			source = bytecode.FromSharedBound
		}
		target := bytecode.ToStaticBound
		if b.TargetShared {
			target = bytecode.ToSharedBound
		}
		bindings[i] = bytecode.Binding{
			Source: source, SourceSlot: b.SourceSlot,
			Target: target, TargetSlot: b.TargetSlot,
		}
	}

	def := &bytecode.FunctionDefinition{
		Code:       childCode,
		Parameters: params,
		Bindings:   bindings,

		NStaticBoundVariables: childFrame.NStaticBoundVariables,
		NSharedBoundVariables: childFrame.NSharedBoundVariables,
	}

	idx := len(e.code.Functions)
	e.code.Functions = append(e.code.Functions, def)
	return idx
}
