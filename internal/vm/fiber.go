package vm

import (
	"github.com/rainbow-alex/burn/internal/bytecode"
	"github.com/rainbow-alex/burn/internal/module"
	"github.com/rainbow-alex/burn/internal/value"
)

// Fiber is one execution context: a frame stack, a data stack, and the
// fiber-wide flow-point/suppressed-flow stacks the flow machine threads
// calls and try/catch/finally through (§3 "Fiber", §4.7).
type Fiber struct {
	vm *VM

	frames []*Frame
	data   []value.Value

	flowPoints []FlowPoint
	suppressed []Flow

	// pendingFinally carries the flow a just-popped FPFinally point
	// suspended, for the StartFinally dispatch immediately following it to
	// push onto suppressed (§4.6 "Try"); nil when StartFinally is instead
	// reached by falling straight through a try body that completed
	// normally, in which case StartFinally pushes a plain Running entry
	// itself. See propagate's FPFinally case and dispatch.go's StartFinally.
	pendingFinally *Flow

	flow Flow

	// Result/Thrown hold the outcome once the root frame has fully
	// completed; Run reads these after its loop exits.
	Result  value.Value
	Thrown  value.Value
	HasThrown bool
}

// NewFiber starts a fiber executing code as its root burn frame (§3
// "Fiber"). code is typically the top-level script/REPL entry's compiled
// Code, already passed through module.WireUse.
func NewFiber(vm *VM, code *bytecode.Code) *Fiber {
	fb := &Fiber{vm: vm, flow: Flow{Kind: Running}}
	fb.frames = append(fb.frames, newBurnFrame(code, nil, nil, nil, nil))
	// The root frame needs its own frame-boundary flow point, exactly like
	// a callee pushed via pushCallFrame, so a Return/ReturnNothing (or any
	// flow simply running off the end of the root frame) has something to
	// pop in propagate() instead of underflowing an empty flow-point stack.
	fb.pushFlowPoint(FlowPoint{Kind: FPPopFrame})
	return fb
}

func newBurnFrame(code *bytecode.Code, staticBound []value.Value, sharedBound []value.Cell, fn *value.Function, args []value.Value) *Frame {
	f := &Frame{
		Kind:        BurnFrame,
		Code:        code,
		Local:       make([]value.Value, code.NLocalVariables),
		SharedLocal: make([]value.Cell, code.NSharedLocalVariables),
		StaticBound: staticBound,
		SharedBound: sharedBound,
		Fn:          fn,
	}
	for i := range args {
		if i < len(f.Local) {
			f.Local[i] = args[i]
		}
	}
	return f
}

func (fb *Fiber) top() *Frame { return fb.frames[len(fb.frames)-1] }

func (fb *Fiber) push(v value.Value) { fb.data = append(fb.data, v) }

func (fb *Fiber) pop() value.Value {
	n := len(fb.data) - 1
	if n < 0 {
		fault("data stack underflow")
	}
	v := fb.data[n]
	fb.data = fb.data[:n]
	return v
}

func (fb *Fiber) peek() value.Value { return fb.data[len(fb.data)-1] }

func (fb *Fiber) pushFlowPoint(fp FlowPoint) { fb.flowPoints = append(fb.flowPoints, fp) }

// pushCallFrame pushes f as a callee of the current top frame (a burn
// function Call, or a Use opcode handing off to a host operation): the
// matching frame-boundary flow point is installed first, choosing
// PopFrameAndRestoreFlow over PopFrame when the ambient flow is Catching so
// a normal return resumes the interrupted catch-clause dispatch correctly
// (§4.6 "Try", §4.8).
func (fb *Fiber) pushCallFrame(f *Frame) {
	fp := FlowPoint{Kind: FPPopFrame}
	if fb.flow.Kind == Catching {
		fp = FlowPoint{Kind: FPPopFrameAndRestoreFlow, SavedFlow: fb.flow}
	}
	fb.pushFlowPoint(fp)
	fb.frames = append(fb.frames, f)
	fb.flow = Flow{Kind: Running}
}

func (fb *Fiber) popFlowPoint() FlowPoint {
	n := len(fb.flowPoints) - 1
	if n < 0 {
		fault("flow-point stack underflow")
	}
	fp := fb.flowPoints[n]
	fb.flowPoints = fb.flowPoints[:n]
	return fp
}

// Run drives the fiber to completion: the root frame either Returns (Result
// holds the value) or an uncaught Throw escapes it (Thrown holds the value,
// HasThrown is set). A StepYield from a host operation is the one case Run
// returns early without completing; the caller (a scheduler ambient to this
// package) is expected to resume by calling Run again once the yielded
// operation is ready to proceed — this repo runs fibers to completion
// synchronously and never actually produces StepYield, since its one host
// operation (module resolution) never yields (§6 "Non-goals").
func (fb *Fiber) Run() {
	for {
		f := fb.top()

		if f.Kind == HostFrame {
			if fb.stepHostFrame(f) {
				return
			}
			continue
		}

		switch fb.flow.Kind {
		case Running, Catching:
			fb.vm.tracer.Opcode(len(fb.frames), f.PC, f.Code.Instructions[f.PC])
			if fb.dispatch(f) {
				return
			}
		default:
			if fb.propagate() {
				return
			}
		}
	}
}

// stepHostFrame resumes f.Op with the previous frame's outcome and applies
// the result (§6 "Host-operation ABI"). Returns true if the fiber is done.
func (fb *Fiber) stepHostFrame(f *Frame) bool {
	prev := module.Step{Kind: module.StepOk}
	switch fb.flow.Kind {
	case Throwing:
		prev = module.Step{Kind: module.StepThrow, Value: fb.flow.Value}
	case Returning:
		prev = module.Step{Kind: module.StepOk, Value: fb.flow.Value}
	}

	result := f.Op.Step(prev)
	switch result.Kind {
	case module.StepOk:
		fb.flow = Flow{Kind: Returning, Value: result.Value}
		return fb.propagate()
	case module.StepThrow:
		fb.flow = Flow{Kind: Throwing, Value: result.Value}
		return fb.propagate()
	case module.StepBurn:
		fb.frames = append(fb.frames, newBurnFrame(result.Code, nil, nil, nil, nil))
		fb.pushFlowPoint(FlowPoint{Kind: FPPopFrame})
		fb.flow = Flow{Kind: Running}
	case module.StepYield:
		return true
	}
	return false
}

// propagate advances a Throwing/Returning/Jumping flow by consulting the
// flow-point stack one entry at a time, exactly as described in §4.7: a
// Catch point redirects a Throwing flow into Catching at its pc; a Finally
// point always redirects (suspending whatever was propagating); a frame
// boundary point pops the frame and either resumes normal dispatch
// (Returning crossing a plain call) or keeps propagating in the caller.
// Returns true once the whole fiber has finished.
func (fb *Fiber) propagate() bool {
	fp := fb.popFlowPoint()
	f := fb.top()

	switch fp.Kind {
	case FPCatch:
		if fb.flow.Kind == Throwing {
			fb.flow = Flow{Kind: Catching, Value: fb.flow.Value}
			f.PC = fp.PC
		}
		// Returning/Jumping are not intercepted by a catch point.

	case FPFinally:
		saved := fb.flow
		fb.pendingFinally = &saved
		fb.flow = Flow{Kind: Running}
		f.PC = fp.PC

	case FPPopFrame:
		fb.frames = fb.frames[:len(fb.frames)-1]
		if len(fb.frames) == 0 {
			return fb.finish()
		}
		if fb.flow.Kind == Returning && fb.top().Kind == BurnFrame {
			fb.push(fb.flow.Value)
			fb.flow = Flow{Kind: Running}
		}
		// Throwing/Jumping keep propagating against the caller's own flow
		// points on the next loop iteration. A Returning flow crossing back
		// into a HostFrame is left exactly as-is too: the host-operation
		// ABI (§6) threads a callee's outcome through Step's prev argument
		// rather than a burn-frame data stack, so stepHostFrame reads
		// fb.flow directly on the very next Run loop iteration.

	case FPPopFrameAndRestoreFlow:
		fb.frames = fb.frames[:len(fb.frames)-1]
		if len(fb.frames) == 0 {
			return fb.finish()
		}
		if fb.flow.Kind == Returning {
			fb.push(fb.flow.Value)
			fb.flow = fp.SavedFlow
		}
	}

	return false
}

// finish records the fiber's terminal outcome once the root frame itself
// has been popped.
func (fb *Fiber) finish() bool {
	switch fb.flow.Kind {
	case Returning:
		fb.Result = fb.flow.Value
	case Throwing:
		fb.Thrown = fb.flow.Value
		fb.HasThrown = true
	}
	return true
}

// endFinally resumes whatever flow the matching StartFinally pushed onto
// suppressed (§4.6 "Try", §8 "Finally runs") — the suspended
// Throwing/Returning/Jumping flow a propagated entry into this finally
// interrupted, or a plain Running entry if the try body instead completed
// normally straight into this finally.
func (fb *Fiber) endFinally() {
	n := len(fb.suppressed) - 1
	if n < 0 {
		fault("suppressed-flow stack underflow")
	}
	fb.flow = fb.suppressed[n]
	fb.suppressed = fb.suppressed[:n]
}
