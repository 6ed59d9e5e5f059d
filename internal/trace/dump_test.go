package trace_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rainbow-alex/burn/internal/bytecode"
	"github.com/rainbow-alex/burn/internal/trace"
)

func TestDumpCodeListsInstructionsInOrder(t *testing.T) {
	code := &bytecode.Code{
		Instructions: []bytecode.Instruction{
			{Op: bytecode.PushInteger, Int: 1},
			{Op: bytecode.Return},
		},
	}

	out := trace.DumpCode(code)

	assert.Contains(t, out, "PushInteger 1")
	assert.True(t, strings.Index(out, "0000") < strings.Index(out, "0001"))
}

func TestDumpCodeNestsFunctionDefinitionsAsBranches(t *testing.T) {
	inner := &bytecode.Code{
		Instructions: []bytecode.Instruction{{Op: bytecode.ReturnNothing}},
	}
	outer := &bytecode.Code{
		Functions: []*bytecode.FunctionDefinition{{Name: "bump", Code: inner}},
		Instructions: []bytecode.Instruction{
			{Op: bytecode.ReturnNothing},
		},
	}

	out := trace.DumpCode(outer)

	assert.Contains(t, out, "Function[0] bump")
	assert.Contains(t, out, "ReturnNothing")
}
