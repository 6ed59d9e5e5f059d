package compiler

import (
	"github.com/rainbow-alex/burn/internal/analysis"
	"github.com/rainbow-alex/burn/internal/ast"
	"github.com/rainbow-alex/burn/internal/bytecode"
)

func (e *emitter) stmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		e.stmt(s)
	}
}

func (e *emitter) stmt(s ast.Stmt) {
	switch n := s.(type) {

	case *ast.If:
		e.compileIf(n)

	case *ast.While:
		e.compileWhile(n)

	case *ast.Try:
		e.compileTry(n)

	case *ast.Let:
		e.compileLet(n)

	case *ast.Assignment:
		e.expr(n.Value)
		e.storeVariable(n.Target)

	case *ast.Print:
		e.expr(n.Value)
		e.emit(bytecode.Instruction{Op: bytecode.ToString})
		e.emit(bytecode.Instruction{Op: bytecode.Print})

	case *ast.Return:
		if n.Value != nil {
			e.expr(n.Value)
			e.emit(bytecode.Instruction{Op: bytecode.Return})
		} else {
			e.emit(bytecode.Instruction{Op: bytecode.ReturnNothing})
		}

	case *ast.Throw:
		e.expr(n.Value)
		e.emit(bytecode.Instruction{Op: bytecode.Throw})

	case *ast.Use:
		e.compileUse(n)

	case *ast.ExpressionStatement:
		e.expr(n.Value)
		e.emit(bytecode.Instruction{Op: bytecode.Pop})
	}
}

// compileIf lowers an If/else-if/else chain (§4.6): each clause's test is
// followed by a placeholder jump-on-false to the next clause, and each
// clause body ends with a placeholder jump to the shared end.
func (e *emitter) compileIf(n *ast.If) {
	var ends []int

	e.expr(n.Test)
	jf := e.emit(bytecode.Instruction{Op: bytecode.JumpIfPopFalsy})
	e.pushUseScope()
	e.stmts(n.Then)
	e.popUseScope()
	ends = append(ends, e.emit(bytecode.Instruction{Op: bytecode.Jump}))
	e.patchJump(jf, bytecode.JumpIfPopFalsy, e.here())

	for _, clause := range n.ElseIf {
		e.expr(clause.Test)
		jf2 := e.emit(bytecode.Instruction{Op: bytecode.JumpIfPopFalsy})
		e.pushUseScope()
		e.stmts(clause.Then)
		e.popUseScope()
		ends = append(ends, e.emit(bytecode.Instruction{Op: bytecode.Jump}))
		e.patchJump(jf2, bytecode.JumpIfPopFalsy, e.here())
	}

	if n.HasElse {
		e.pushUseScope()
		e.stmts(n.Else)
		e.popUseScope()
	}

	end := e.here()
	for _, j := range ends {
		e.patchJump(j, bytecode.Jump, end)
	}
}

// compileWhile lowers a while/else loop (§4.6): test, placeholder
// jump-on-false to the else/end, body, unconditional jump back to the
// loop start.
func (e *emitter) compileWhile(n *ast.While) {
	loopStart := e.here()
	e.expr(n.Test)
	jf := e.emit(bytecode.Instruction{Op: bytecode.JumpIfPopFalsy})
	e.pushUseScope()
	e.stmts(n.Body)
	e.popUseScope()
	e.emit(bytecode.Instruction{Op: bytecode.Jump, Int: loopStart})

	elseStart := e.here()
	e.patchJump(jf, bytecode.JumpIfPopFalsy, elseStart)
	if n.HasElse {
		e.pushUseScope()
		e.stmts(n.Else)
		e.popUseScope()
	}
}

// compileTry lowers try/catch/finally (§4.6, §4.7, §8 "Finally runs").
// Normal completion of the try body reaches the finally purely by sequential
// layout/unconditional jump, with flow still Running; an active
// Throwing/Returning/Jumping flow instead finds the StartFinally flow point
// the interpreter pushed and redirects there itself (§4.7).
func (e *emitter) compileTry(n *ast.Try) {
	var finallyPush int
	if n.HasFinally {
		finallyPush = e.emit(bytecode.Instruction{Op: bytecode.PushStartFinallyFlowPoint})
	}

	var catchPush int
	hasCatches := len(n.Catches) > 0
	if hasCatches {
		catchPush = e.emit(bytecode.Instruction{Op: bytecode.PushStartCatchFlowPoint})
	}

	e.pushUseScope()
	e.stmts(n.Body)
	e.popUseScope()

	if hasCatches {
		e.emit(bytecode.Instruction{Op: bytecode.PopFlowPoint})
	}
	if n.HasFinally {
		// The try body completed without an active Throwing/Returning flow
		// to carry it into the finally via propagate (§4.7), so the finally
		// flow point pushed above must be discarded explicitly here — same
		// reasoning as the catch PopFlowPoint just above, otherwise it
		// lingers on the stack and misfires for an unrelated later flow in
		// the enclosing frame.
		e.emit(bytecode.Instruction{Op: bytecode.PopFlowPoint})
	}
	normalExit := e.emit(bytecode.Instruction{Op: bytecode.Jump})

	catchStart := e.here()
	if hasCatches {
		e.patchJump(catchPush, bytecode.PushStartCatchFlowPoint, catchStart)
	}

	var toFinallyOrEnd []int
	for _, clause := range n.Catches {
		var skipToNext int
		hasSkip := false
		if clause.Type != nil {
			e.expr(clause.Type)
			e.emit(bytecode.Instruction{Op: bytecode.ThrownIs})
			op, slot := e.catchOp(clause.Decl, bytecode.CatchLocalOrJump, bytecode.CatchSharedLocalOrJump)
			skipToNext = e.emit(bytecode.Instruction{Op: op, Int: slot})
			hasSkip = true
		} else if clause.Decl != nil {
			op, slot := e.catchOp(clause.Decl, bytecode.CatchLocal, bytecode.CatchSharedLocal)
			e.emit(bytecode.Instruction{Op: op, Int: slot})
		}

		e.pushUseScope()
		e.stmts(clause.Body)
		e.popUseScope()
		if n.HasFinally {
			// The matching catch clause's own flow point was already
			// consumed by propagate() when Throwing became Catching; only
			// the finally point is still pending, and this clause body
			// completed normally, so it must be popped explicitly here too.
			e.emit(bytecode.Instruction{Op: bytecode.PopFlowPoint})
		}
		toFinallyOrEnd = append(toFinallyOrEnd, e.emit(bytecode.Instruction{Op: bytecode.Jump}))

		if hasSkip {
			next := e.here()
			instr := e.code.Instructions[skipToNext]
			instr.Int2 = next
			e.code.Patch(skipToNext, instr)
		}
	}
	if hasCatches {
		e.emit(bytecode.Instruction{Op: bytecode.Rethrow})
	}

	finallyStart := e.here()
	if n.HasFinally {
		e.patchJump(finallyPush, bytecode.PushStartFinallyFlowPoint, finallyStart)
		e.emit(bytecode.Instruction{Op: bytecode.StartFinally})
		e.pushUseScope()
		e.stmts(n.Finally)
		e.popUseScope()
		e.emit(bytecode.Instruction{Op: bytecode.EndFinally})
	}

	e.patchJump(normalExit, bytecode.Jump, finallyStart)
	for _, j := range toFinallyOrEnd {
		e.patchJump(j, bytecode.Jump, finallyStart)
	}
}

func (e *emitter) catchOp(decl *ast.VariableDecl, localOp, sharedOp bytecode.Op) (bytecode.Op, int) {
	vi := analysis.Info(decl)
	if vi.Storage == analysis.SharedLocal {
		return sharedOp, vi.Slot
	}
	return localOp, vi.Slot
}

// compileLet lowers a `let` declaration (§4.6): InitializeSharedLocal first
// if the variable is SharedLocal (creating its cell before the default
// expression runs), then the default (or PushNothing) and a store.
func (e *emitter) compileLet(n *ast.Let) {
	vi := analysis.Info(n.Decl)
	shared := vi.Storage == analysis.SharedLocal
	if shared {
		e.emit(bytecode.Instruction{Op: bytecode.InitializeSharedLocal, Int: vi.Slot})
	}
	if n.Default != nil {
		e.expr(n.Default)
	} else {
		e.emit(bytecode.Instruction{Op: bytecode.PushNothing})
	}
	if shared {
		e.emit(bytecode.Instruction{Op: bytecode.StoreSharedLocal, Int: vi.Slot})
	} else {
		e.emit(bytecode.Instruction{Op: bytecode.StoreLocal, Int: vi.Slot})
	}
}

// compileUse allocates a UsePoint (§4.10 "allocate a Use operation object
// carrying the dotted path"), emits the Use opcode pointing at it (UseOp
// left nil; package module wires it after compilation), and registers the
// trailing identifier so Name references in this scope attach to it.
func (e *emitter) compileUse(n *ast.Use) {
	up := &bytecode.UsePoint{Path: append([]string(nil), n.Path...)}
	up.UseOffset = e.emit(bytecode.Instruction{Op: bytecode.Use})
	e.code.UsePoints = append(e.code.UsePoints, up)
	if len(n.Path) > 0 {
		e.registerUse(n.Path[len(n.Path)-1], up)
	}
}
