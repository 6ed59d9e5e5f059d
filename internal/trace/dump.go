package trace

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/rainbow-alex/burn/internal/bytecode"
)

// DumpCode renders code's instruction listing as a tree: one branch per
// nested FunctionDefinition, instructions listed in order underneath their
// owning Code (§4.5 "Code"). Grounded on the pack's own use of treeprint for
// AST/bytecode dumps (gad-lang/gad).
func DumpCode(code *bytecode.Code) string {
	root := treeprint.New()
	root.SetValue("Code")
	dumpCodeInto(root, code)
	return root.String()
}

func dumpCodeInto(node treeprint.Tree, code *bytecode.Code) {
	for pc, instr := range code.Instructions {
		node.AddNode(fmt.Sprintf("%04d  %s", pc, describeInstruction(instr)))
	}
	for i, def := range code.Functions {
		branch := node.AddBranch(fmt.Sprintf("Function[%d] %s", i, def.Name))
		dumpCodeInto(branch, def.Code)
	}
}

func describeInstruction(instr bytecode.Instruction) string {
	switch instr.Op {
	case bytecode.PushInteger:
		return fmt.Sprintf("%s %d", instr.Op, instr.Int)
	case bytecode.PushFloat:
		return fmt.Sprintf("%s %g", instr.Op, instr.Float)
	case bytecode.PushBoolean:
		return fmt.Sprintf("%s %t", instr.Op, instr.Bool)
	case bytecode.LoadImplicit, bytecode.GetProperty:
		return fmt.Sprintf("%s %s", instr.Op, instr.Name)
	case bytecode.Jump, bytecode.JumpIfPopFalsy, bytecode.ShortCircuitAnd, bytecode.ShortCircuitOr,
		bytecode.PushStartCatchFlowPoint, bytecode.PushStartFinallyFlowPoint:
		return fmt.Sprintf("%s -> %d", instr.Op, instr.Int)
	case bytecode.CatchLocalOrJump, bytecode.CatchSharedLocalOrJump:
		return fmt.Sprintf("%s slot=%d else->%d", instr.Op, instr.Int, instr.Int2)
	default:
		return instr.Op.String()
	}
}
