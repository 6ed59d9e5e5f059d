package module

import "github.com/rainbow-alex/burn/internal/bytecode"

// WireUse links every UsePoint recorded in code (and, recursively, in every
// nested FunctionDefinition's own Code) into a live UseOperation against
// tree, patching each Use opcode's UseOp field. This is the one step that
// depends on a module tree, which is why the compiler itself cannot do it
// (§4.10; avoids a compiler<->module import cycle, see DESIGN.md).
func WireUse(code *bytecode.Code, tree *Tree) {
	seen := map[*bytecode.Code]bool{}
	wireOne(code, tree, seen)
}

func wireOne(code *bytecode.Code, tree *Tree, seen map[*bytecode.Code]bool) {
	if seen[code] {
		return
	}
	seen[code] = true

	for _, up := range code.UsePoints {
		op := NewUseOperation(up.Path, tree)
		op.UseSite = Site{Code: code, Offset: up.UseOffset}
		for _, off := range up.NameOffsets {
			op.AddNameSite(code, off)
		}
		instr := code.Instructions[up.UseOffset]
		instr.UseOp = op
		code.Patch(up.UseOffset, instr)
	}

	for _, def := range code.Functions {
		wireOne(def.Code, tree, seen)
	}
}
