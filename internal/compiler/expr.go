package compiler

import (
	"github.com/rainbow-alex/burn/internal/analysis"
	"github.com/rainbow-alex/burn/internal/ast"
	"github.com/rainbow-alex/burn/internal/bytecode"
	"github.com/rainbow-alex/burn/internal/ident"
)

func (e *emitter) expr(x ast.Expr) {
	switch n := x.(type) {

	case *ast.NothingLit:
		e.emit(bytecode.Instruction{Op: bytecode.PushNothing})
	case *ast.BooleanLit:
		e.emit(bytecode.Instruction{Op: bytecode.PushBoolean, Bool: n.Value})
	case *ast.IntegerLit:
		e.emit(bytecode.Instruction{Op: bytecode.PushInteger, Int: int(n.Value)})
	case *ast.FloatLit:
		e.emit(bytecode.Instruction{Op: bytecode.PushFloat, Float: n.Value})
	case *ast.StringLit:
		idx := len(e.code.Strings)
		e.code.Strings = append(e.code.Strings, n.Value)
		e.emit(bytecode.Instruction{Op: bytecode.PushString, Int: idx})

	case *ast.Variable:
		e.loadVariable(n)

	case *ast.Name:
		e.loadName(n)

	case *ast.DotAccess:
		e.expr(n.Target)
		e.emit(bytecode.Instruction{Op: bytecode.GetProperty, Name: ident.Intern(n.Name)})

	case *ast.ItemAccess:
		e.expr(n.Target)
		e.expr(n.Item)
		e.emit(bytecode.Instruction{Op: bytecode.GetItem})

	case *ast.Call:
		e.expr(n.Callee)
		for _, a := range n.Args {
			e.expr(a)
		}
		e.emit(bytecode.Instruction{Op: bytecode.Call, Int: len(n.Args)})

	case *ast.Binary:
		e.compileBinary(n)

	case *ast.Unary:
		e.expr(n.Operand)
		switch n.Op {
		case ast.OpNot:
			e.emit(bytecode.Instruction{Op: bytecode.Not})
		}

	case *ast.Function:
		idx := e.compileFunctionLiteral(n)
		e.emit(bytecode.Instruction{Op: bytecode.PushFunction, Int: idx})
	}
}

var binaryOps = map[ast.BinaryOp]bytecode.Op{
	ast.OpAdd: bytecode.Add, ast.OpSubtract: bytecode.Subtract,
	ast.OpMultiply: bytecode.Multiply, ast.OpDivide: bytecode.Divide,
	ast.OpUnion: bytecode.Union, ast.OpIntersection: bytecode.Intersection, ast.OpIs: bytecode.Is,
	ast.OpEq: bytecode.Eq, ast.OpNeq: bytecode.Neq,
	ast.OpLt: bytecode.Lt, ast.OpGt: bytecode.Gt,
	ast.OpLtEq: bytecode.LtEq, ast.OpGtEq: bytecode.GtEq,
}

// compileBinary lowers every binary operator. `and`/`or` are short
// circuiting (§4.5): the left value is evaluated, peeked by
// ShortCircuitAnd/Or; on the shortcut path it is left on the stack as the
// result without popping, otherwise it is popped and the right operand's
// value becomes the result.
func (e *emitter) compileBinary(n *ast.Binary) {
	switch n.Op {
	case ast.OpAnd:
		e.expr(n.Left)
		j := e.emit(bytecode.Instruction{Op: bytecode.ShortCircuitAnd})
		e.emit(bytecode.Instruction{Op: bytecode.Pop})
		e.expr(n.Right)
		e.patchJump(j, bytecode.ShortCircuitAnd, e.here())
	case ast.OpOr:
		e.expr(n.Left)
		j := e.emit(bytecode.Instruction{Op: bytecode.ShortCircuitOr})
		e.emit(bytecode.Instruction{Op: bytecode.Pop})
		e.expr(n.Right)
		e.patchJump(j, bytecode.ShortCircuitOr, e.here())
	default:
		e.expr(n.Left)
		e.expr(n.Right)
		op, ok := binaryOps[n.Op]
		if !ok {
			e.c.errors = append(e.c.errors, newDiagnostic(n.Pos(), "unknown binary operator"))
			return
		}
		e.emit(bytecode.Instruction{Op: op})
	}
}

// loadVariable emits the Load* instruction matching a mention's resolved
// storage: Local/SharedLocal if the mention is in the declaring frame
// itself, StaticBound/SharedBound (via this frame's own Binding) if the
// mention reaches outward into a captured variable (§4.6, §4.9).
func (e *emitter) loadVariable(v *ast.Variable) {
	op, slot := e.variableSlot(v, bytecode.LoadLocal, bytecode.LoadSharedLocal, bytecode.LoadStaticBound, bytecode.LoadSharedBound)
	e.emit(bytecode.Instruction{Op: op, Int: slot})
}

func (e *emitter) storeVariable(v *ast.Variable) {
	op, slot := e.variableSlot(v, bytecode.StoreLocal, bytecode.StoreSharedLocal, bytecode.StoreStaticBound, bytecode.StoreSharedBound)
	e.emit(bytecode.Instruction{Op: op, Int: slot})
}

func (e *emitter) variableSlot(v *ast.Variable, localOp, sharedLocalOp, staticBoundOp, sharedBoundOp bytecode.Op) (bytecode.Op, int) {
	decl := v.Annotation.Variable
	vi := analysis.Info(decl)

	if vi.Frame == e.frame {
		if vi.Storage == analysis.SharedLocal {
			return sharedLocalOp, vi.Slot
		}
		return localOp, vi.Slot
	}

	b, ok := e.frame.BindingFor(decl)
	if !ok {
		// Engine invariant violation: the resolver guarantees every frame
		// between a mention and its declaration records a binding.
		panic("compiler: missing binding for captured variable")
	}
	if b.TargetShared {
		return sharedBoundOp, b.TargetSlot
	}
	return staticBoundOp, b.TargetSlot
}

// loadName compiles a free Name mention. Both branches emit the same
// LoadImplicit placeholder (§4.6 "Use"): if the Name resolved to a `use`,
// the call site is registered with that use's UsePoint so module.WireUse
// can later rewrite it to a constant InlinedModule push; otherwise it stays
// a genuine implicit-module lookup, resolved at runtime (§4.4 pass 4).
func (e *emitter) loadName(n *ast.Name) {
	off := e.emit(bytecode.Instruction{Op: bytecode.LoadImplicit, Name: ident.Intern(n.Identifier)})
	if n.Annotation.Kind == ast.ResolvedUse {
		if up, ok := e.lookupUse(n.Annotation.Use); ok {
			up.NameOffsets = append(up.NameOffsets, off)
		}
	}
}
