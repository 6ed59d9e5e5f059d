package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rainbow-alex/burn/internal/bytecode"
)

func TestPatchNopReplacesInstructionInPlace(t *testing.T) {
	code := &bytecode.Code{
		Instructions: []bytecode.Instruction{
			{Op: bytecode.Use},
			{Op: bytecode.Return},
		},
	}

	code.PatchNop(0)

	assert.Equal(t, bytecode.Nop, code.Instructions[0].Op)
	assert.Equal(t, bytecode.Return, code.Instructions[1].Op, "PatchNop must not disturb other offsets")
}

func TestPatchOverwritesInstructionAtOffset(t *testing.T) {
	code := &bytecode.Code{
		Instructions: []bytecode.Instruction{
			{Op: bytecode.LoadImplicit},
		},
	}

	code.Patch(0, bytecode.Instruction{Op: bytecode.InlinedModule, Int: 3})

	assert.Equal(t, bytecode.InlinedModule, code.Instructions[0].Op)
	assert.Equal(t, 3, code.Instructions[0].Int)
}
