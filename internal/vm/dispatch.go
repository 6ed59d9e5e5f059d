package vm

import (
	"fmt"

	"github.com/rainbow-alex/burn/internal/bytecode"
	"github.com/rainbow-alex/burn/internal/intrinsic"
	"github.com/rainbow-alex/burn/internal/value"
)

// dispatch decodes and executes exactly one instruction of f under Running
// or Catching flow (§4.7 "Running or Catching: decode and execute"), leaving
// every other flow transition to propagate. Returns true once the fiber has
// fully completed.
func (fb *Fiber) dispatch(f *Frame) bool {
	instr := f.Code.Instructions[f.PC]

	switch instr.Op {

	case bytecode.Nop:
		f.PC++

	case bytecode.Pop:
		fb.pop()
		f.PC++

	case bytecode.Fail:
		fault("Fail opcode reached")

	case bytecode.PushNothing:
		fb.push(value.Nothing)
		f.PC++
	case bytecode.PushBoolean:
		fb.push(value.Boolean(instr.Bool))
		f.PC++
	case bytecode.PushInteger:
		fb.push(value.Integer(int64(instr.Int)))
		f.PC++
	case bytecode.PushFloat:
		fb.push(value.Float(instr.Float))
		f.PC++
	case bytecode.PushString:
		fb.push(value.String(f.Code.Strings[instr.Int]))
		f.PC++
	case bytecode.PushFunction:
		fb.push(fb.instantiateClosure(f, f.Code.Functions[instr.Int]))
		f.PC++
	case bytecode.InlinedModule:
		m, _ := instr.Module.(value.ModuleRef)
		fb.push(value.Module(m))
		f.PC++

	case bytecode.LoadLocal:
		fb.push(f.Local[instr.Int])
		f.PC++
	case bytecode.StoreLocal:
		f.Local[instr.Int] = fb.pop()
		f.PC++
	case bytecode.InitializeSharedLocal:
		f.SharedLocal[instr.Int] = value.NewCell(value.Nothing)
		f.PC++
	case bytecode.LoadSharedLocal:
		fb.push(f.SharedLocal[instr.Int].Get())
		f.PC++
	case bytecode.StoreSharedLocal:
		f.SharedLocal[instr.Int].Set(fb.pop())
		f.PC++
	case bytecode.LoadStaticBound:
		fb.push(f.StaticBound[instr.Int])
		f.PC++
	case bytecode.StoreStaticBound:
		f.StaticBound[instr.Int] = fb.pop()
		f.PC++
	case bytecode.LoadSharedBound:
		fb.push(f.SharedBound[instr.Int].Get())
		f.PC++
	case bytecode.StoreSharedBound:
		f.SharedBound[instr.Int].Set(fb.pop())
		f.PC++

	case bytecode.LoadImplicit:
		fb.push(fb.vm.lookupImplicit(instr.Name.String()))
		f.PC++

	case bytecode.Use:
		op, ok := instr.UseOp.(HostOperation)
		if !ok || op == nil {
			fault("Use opcode with unwired operation at pc %d", f.PC)
		}
		f.PC++ // resume here once the host operation concludes.
		fb.pushCallFrame(&Frame{Kind: HostFrame, Op: op})

	case bytecode.GetProperty:
		target := fb.pop()
		v, err := getProperty(target, instr.Name.String())
		if err.IsThrowable() {
			fb.flow = Flow{Kind: Throwing, Value: err}
			return false
		}
		fb.push(v)
		f.PC++

	case bytecode.SetProperty:
		val := fb.pop()
		target := fb.pop()
		_ = val
		fb.flow = Flow{Kind: Throwing, Value: intrinsic.NewTypeError(
			"can't set a property on " + target.Repr())}

	case bytecode.GetItem:
		item := fb.pop()
		target := fb.pop()
		fb.flow = Flow{Kind: Throwing, Value: intrinsic.NewTypeError(
			"can't index into " + target.Repr() + " with " + item.Repr())}

	case bytecode.Call:
		fb.dispatchCall(f, instr.Int)

	case bytecode.Return:
		fb.flow = Flow{Kind: Returning, Value: fb.pop()}
	case bytecode.ReturnNothing:
		fb.flow = Flow{Kind: Returning, Value: value.Nothing}

	case bytecode.Jump:
		f.PC = instr.Int
	case bytecode.JumpIfPopFalsy:
		v := fb.pop()
		if !v.IsTruthy() {
			f.PC = instr.Int
		} else {
			f.PC++
		}
	case bytecode.FlowJump:
		// Unreachable from compiler-emitted code (the compiler never emits
		// it; no `break`/`continue`-like construct exists), but implemented
		// for completeness per the instruction set: unconditionally pop N
		// flow points and jump within this frame.
		for i := 0; i < instr.Int; i++ {
			fb.popFlowPoint()
		}
		f.PC = instr.Int2

	case bytecode.PopFlowPoint:
		fb.popFlowPoint()
		f.PC++

	case bytecode.PushStartCatchFlowPoint:
		fb.pushFlowPoint(FlowPoint{Kind: FPCatch, PC: instr.Int})
		f.PC++
	case bytecode.PushStartFinallyFlowPoint:
		fb.pushFlowPoint(FlowPoint{Kind: FPFinally, PC: instr.Int})
		f.PC++

	case bytecode.Throw:
		v := fb.pop()
		if !v.IsThrowable() {
			v = intrinsic.NewTypeError(v.Repr() + " is not Throwable.")
		}
		fb.flow = Flow{Kind: Throwing, Value: v}

	case bytecode.ThrownIs:
		typ := fb.pop()
		ok, err := intrinsic.Is(fb.flow.Value, typ)
		if err.IsThrowable() {
			fb.flow = Flow{Kind: Throwing, Value: err}
			return false
		}
		fb.push(value.Boolean(ok))
		f.PC++

	case bytecode.CatchLocalOrJump:
		matched := fb.pop().AsBoolean()
		if matched {
			f.Local[instr.Int] = fb.flow.Value
			fb.flow = Flow{Kind: Running}
			f.PC++
		} else {
			f.PC = instr.Int2
		}
	case bytecode.CatchSharedLocalOrJump:
		matched := fb.pop().AsBoolean()
		if matched {
			f.SharedLocal[instr.Int] = value.NewCell(fb.flow.Value)
			fb.flow = Flow{Kind: Running}
			f.PC++
		} else {
			f.PC = instr.Int2
		}
	case bytecode.CatchLocal:
		f.Local[instr.Int] = fb.flow.Value
		fb.flow = Flow{Kind: Running}
		f.PC++
	case bytecode.CatchSharedLocal:
		f.SharedLocal[instr.Int] = value.NewCell(fb.flow.Value)
		fb.flow = Flow{Kind: Running}
		f.PC++

	case bytecode.Rethrow:
		fb.flow = Flow{Kind: Throwing, Value: fb.flow.Value}

	case bytecode.StartFinally:
		if fb.pendingFinally != nil {
			fb.suppressed = append(fb.suppressed, *fb.pendingFinally)
			fb.pendingFinally = nil
		} else {
			fb.suppressed = append(fb.suppressed, Flow{Kind: Running})
		}
		f.PC++
	case bytecode.EndFinally:
		fb.endFinally()
		f.PC++

	case bytecode.Add:
		fb.binary(f, intrinsic.Add)
	case bytecode.Subtract:
		fb.binary(f, intrinsic.Subtract)
	case bytecode.Multiply:
		fb.binary(f, intrinsic.Multiply)
	case bytecode.Divide:
		fb.binary(f, intrinsic.Divide)
	case bytecode.Union:
		fb.binary(f, intrinsic.Union)
	case bytecode.Intersection:
		fb.binary(f, intrinsic.Intersection)
	case bytecode.Eq:
		fb.binary(f, intrinsic.Eq)
	case bytecode.Neq:
		fb.binary(f, intrinsic.Neq)
	case bytecode.Lt:
		fb.binary(f, intrinsic.Lt)
	case bytecode.Gt:
		fb.binary(f, intrinsic.Gt)
	case bytecode.LtEq:
		fb.binary(f, intrinsic.LtEq)
	case bytecode.GtEq:
		fb.binary(f, intrinsic.GtEq)

	case bytecode.Is:
		right := fb.pop()
		left := fb.pop()
		ok, err := intrinsic.Is(left, right)
		if err.IsThrowable() {
			fb.flow = Flow{Kind: Throwing, Value: err}
			return false
		}
		fb.push(value.Boolean(ok))
		f.PC++

	case bytecode.Not:
		v := fb.pop()
		fb.push(value.Boolean(!v.IsTruthy()))
		f.PC++

	case bytecode.ShortCircuitAnd:
		if !fb.peek().IsTruthy() {
			f.PC = instr.Int
		} else {
			f.PC++
		}
	case bytecode.ShortCircuitOr:
		if fb.peek().IsTruthy() {
			f.PC = instr.Int
		} else {
			f.PC++
		}

	case bytecode.ToString:
		v := fb.pop()
		fb.push(value.String(v.ToString()))
		f.PC++
	case bytecode.Print:
		v := fb.pop()
		fb.vm.writeOut(v.AsString())
		f.PC++

	default:
		fault("unhandled opcode %s", instr.Op)
	}

	return false
}

// binary applies a two-operand intrinsic operation, routing a TypeError
// result into the flow machine as a Throw (§4.11).
func (fb *Fiber) binary(f *Frame, op func(left, right value.Value) (value.Value, value.Value)) {
	right := fb.pop()
	left := fb.pop()
	result, err := op(left, right)
	if err.IsThrowable() {
		fb.flow = Flow{Kind: Throwing, Value: err}
		return
	}
	fb.push(result)
	f.PC++
}

// dispatchCall pops the callee and its n arguments and either starts a new
// burn frame over it (§4.8 "Call protocol"), raises a TypeError for a
// non-callable target, or raises an ArgumentError for a mismatched
// argument count.
func (fb *Fiber) dispatchCall(f *Frame, n int) {
	args := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = fb.pop()
	}
	callee := fb.pop()

	// Advance past the Call instruction now, before switching frames, so a
	// normal return resumes the caller at the instruction after Call
	// (mirrors the Use opcode's own f.PC++ before its frame push).
	f.PC++

	if callee.Kind() != value.KindFunction || callee.AsFunction() == nil {
		fb.flow = Flow{Kind: Throwing, Value: intrinsic.NewTypeError(callee.Repr() + " is not callable")}
		return
	}

	fn := callee.AsFunction()
	def, ok := fn.Def.(*bytecode.FunctionDefinition)
	if !ok {
		fault("Function.Def is not a *bytecode.FunctionDefinition")
	}

	if n != len(def.Parameters) {
		fb.flow = Flow{Kind: Throwing, Value: intrinsic.NewArgumentError(
			fmt.Sprintf("expected %d argument(s), got %d", len(def.Parameters), n))}
		return
	}

	calleeFrame := newBurnFrame(def.Code, fn.StaticBound, fn.SharedBound, fn, nil)
	for i, p := range def.Parameters {
		switch p.Storage {
		case bytecode.ParamLocal:
			calleeFrame.Local[p.Slot] = args[i]
		case bytecode.ParamSharedLocal:
			calleeFrame.SharedLocal[p.Slot] = value.NewCell(args[i])
		}
	}

	fb.pushCallFrame(calleeFrame)
}

// getProperty implements `.name` access (§3 GLOSSARY "Module"): only
// modules expose members; every other kind raises a TypeError, since the
// value model (§3) defines no other property-bearing kind.
func getProperty(target value.Value, name string) (value.Value, value.Value) {
	if target.Kind() == value.KindModule {
		if m := target.AsModule(); m != nil {
			if v, ok := m.GetMember(name); ok {
				return v, value.Value{}
			}
			return value.Value{}, intrinsic.NewTypeError(m.ModuleName() + " has no member " + name)
		}
	}
	return value.Value{}, intrinsic.NewTypeError("can't get property " + name + " of " + target.Repr())
}
