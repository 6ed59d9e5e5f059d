package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainbow-alex/burn/internal/bytecode"
	"github.com/rainbow-alex/burn/internal/intrinsic"
	"github.com/rainbow-alex/burn/internal/module"
	"github.com/rainbow-alex/burn/internal/value"
	"github.com/rainbow-alex/burn/internal/vm"
)

func testVM(t *testing.T) *vm.VM {
	t.Helper()
	return vm.New(vm.Options{}, nil)
}

func TestArithmeticAndReturn(t *testing.T) {
	code := &bytecode.Code{
		Instructions: []bytecode.Instruction{
			{Op: bytecode.PushInteger, Int: 1},
			{Op: bytecode.PushInteger, Int: 2},
			{Op: bytecode.Add},
			{Op: bytecode.Return},
		},
	}

	fb := vm.NewFiber(testVM(t), code)
	fb.Run()

	require.False(t, fb.HasThrown)
	assert.Equal(t, int64(3), fb.Result.AsInteger())
}

func TestDivideAlwaysTypeErrorEscapesUncaught(t *testing.T) {
	code := &bytecode.Code{
		Instructions: []bytecode.Instruction{
			{Op: bytecode.PushInteger, Int: 2},
			{Op: bytecode.PushInteger, Int: 3},
			{Op: bytecode.Divide},
			{Op: bytecode.Return},
		},
	}

	fb := vm.NewFiber(testVM(t), code)
	fb.Run()

	require.True(t, fb.HasThrown)
	assert.True(t, fb.Thrown.IsThrowable())
	assert.True(t, intrinsic.IsTypeError(fb.Thrown))
}

// TestCallProtocolResumesAfterCallInstruction exercises the Call opcode's
// frame push/pop and confirms the caller resumes at the instruction after
// Call, not the Call instruction itself (§4.8).
func TestCallProtocolResumesAfterCallInstruction(t *testing.T) {
	identity := &bytecode.FunctionDefinition{
		Code: &bytecode.Code{
			NLocalVariables: 1,
			Instructions: []bytecode.Instruction{
				{Op: bytecode.LoadLocal, Int: 0},
				{Op: bytecode.Return},
			},
		},
		Parameters: []bytecode.Parameter{{Storage: bytecode.ParamLocal, Slot: 0}},
	}

	code := &bytecode.Code{
		Functions: []*bytecode.FunctionDefinition{identity},
		Instructions: []bytecode.Instruction{
			{Op: bytecode.PushFunction, Int: 0},
			{Op: bytecode.PushInteger, Int: 7},
			{Op: bytecode.Call, Int: 1},
			{Op: bytecode.PushInteger, Int: 1},
			{Op: bytecode.Add},
			{Op: bytecode.Return},
		},
	}

	fb := vm.NewFiber(testVM(t), code)
	fb.Run()

	require.False(t, fb.HasThrown)
	assert.Equal(t, int64(8), fb.Result.AsInteger())
}

func TestCallOfNonFunctionRaisesTypeError(t *testing.T) {
	code := &bytecode.Code{
		Instructions: []bytecode.Instruction{
			{Op: bytecode.PushInteger, Int: 1},
			{Op: bytecode.Call, Int: 0},
			{Op: bytecode.Return},
		},
	}

	fb := vm.NewFiber(testVM(t), code)
	fb.Run()

	require.True(t, fb.HasThrown)
	assert.Contains(t, fb.Thrown.ToString(), "is not callable")
	assert.True(t, intrinsic.IsTypeError(fb.Thrown))
}

// TestCallWithWrongArgumentCountRaisesArgumentError exercises dispatchCall's
// arity check: calling a one-parameter function with zero arguments must
// raise an ArgumentError rather than silently defaulting the missing slot.
func TestCallWithWrongArgumentCountRaisesArgumentError(t *testing.T) {
	identity := &bytecode.FunctionDefinition{
		Code: &bytecode.Code{
			NLocalVariables: 1,
			Instructions: []bytecode.Instruction{
				{Op: bytecode.LoadLocal, Int: 0},
				{Op: bytecode.Return},
			},
		},
		Parameters: []bytecode.Parameter{{Storage: bytecode.ParamLocal, Slot: 0}},
	}

	code := &bytecode.Code{
		Functions: []*bytecode.FunctionDefinition{identity},
		Instructions: []bytecode.Instruction{
			{Op: bytecode.PushFunction, Int: 0},
			{Op: bytecode.Call, Int: 0},
			{Op: bytecode.Return},
		},
	}

	fb := vm.NewFiber(testVM(t), code)
	fb.Run()

	require.True(t, fb.HasThrown)
	assert.Contains(t, fb.Thrown.ToString(), "ArgumentError")
	assert.True(t, intrinsic.IsArgumentError(fb.Thrown))
	assert.False(t, intrinsic.IsTypeError(fb.Thrown))
}

// TestFlowJumpDropsInterveningFlowPoints exercises FlowJump (§4.5
// Instruction.Int/Int2 docs): compiler-unreachable (no break/continue
// construct exists), but implemented for instruction-set completeness.
func TestFlowJumpDropsInterveningFlowPoints(t *testing.T) {
	code := &bytecode.Code{
		Instructions: []bytecode.Instruction{
			{Op: bytecode.PushStartCatchFlowPoint, Int: 99},
			{Op: bytecode.FlowJump, Int: 1, Int2: 3},
			{Op: bytecode.PushInteger, Int: 111}, // skipped
			{Op: bytecode.PushInteger, Int: 222},
			{Op: bytecode.Return},
		},
	}

	fb := vm.NewFiber(testVM(t), code)
	fb.Run()

	require.False(t, fb.HasThrown)
	assert.Equal(t, int64(222), fb.Result.AsInteger())
}

// twoStepHostOp simulates a host operation that burns a nested root frame
// once before concluding (§6 "Host-operation ABI"): "Operations may call
// run multiple times to resume after nested frames complete."
type twoStepHostOp struct {
	calls int
}

func (o *twoStepHostOp) Step(prev module.Step) module.Step {
	o.calls++
	if o.calls == 1 {
		inner := &bytecode.Code{Instructions: []bytecode.Instruction{
			{Op: bytecode.PushInteger, Int: 42},
			{Op: bytecode.Return},
		}}
		return module.Step{Kind: module.StepBurn, Code: inner}
	}
	return module.Step{Kind: module.StepOk, Value: value.Integer(prev.Value.AsInteger() + 1)}
}

func TestUseOpcodeHostOperationResumesAfterBurnStep(t *testing.T) {
	op := &twoStepHostOp{}
	code := &bytecode.Code{
		Instructions: []bytecode.Instruction{
			{Op: bytecode.Use, UseOp: op},
			{Op: bytecode.Return},
		},
	}

	fb := vm.NewFiber(testVM(t), code)
	fb.Run()

	require.False(t, fb.HasThrown)
	assert.Equal(t, int64(43), fb.Result.AsInteger())
	assert.Equal(t, 2, op.calls)
}

type throwingHostOp struct{}

func (throwingHostOp) Step(prev module.Step) module.Step {
	return module.Step{Kind: module.StepThrow, Value: value.Nothing}
}

func TestUseOpcodeHostOperationThrowEscapesUncaught(t *testing.T) {
	code := &bytecode.Code{
		Instructions: []bytecode.Instruction{
			{Op: bytecode.Use, UseOp: throwingHostOp{}},
			{Op: bytecode.Return},
		},
	}

	fb := vm.NewFiber(testVM(t), code)
	fb.Run()

	require.True(t, fb.HasThrown)
}
