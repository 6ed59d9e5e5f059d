package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainbow-alex/burn/internal/ast"
	"github.com/rainbow-alex/burn/internal/vm"
)

// TestReplSessionPersistsBindingAcrossEntries exercises §8's testable law
// that a variable bound in one REPL entry is readable, and further
// mutable by plain assignment without re-`let`, in a later entry that
// shares the same *ast.VariableDecl in its Scope (exactly how a REPL
// driver re-uses declarations for a name already seen this session).
func TestReplSessionPersistsBindingAcrossEntries(t *testing.T) {
	decl := &ast.VariableDecl{Name: "counter"}

	// Entry 1: let counter = 1
	entry1 := &ast.Root{
		Scope: []*ast.VariableDecl{decl},
		Statements: []ast.Stmt{
			&ast.Let{Decl: decl, Default: &ast.IntegerLit{Value: 1}},
		},
	}

	// Entry 2: counter = counter + 1 \n print counter
	mention := &ast.Variable{Identifier: "counter"}
	target := &ast.Variable{Identifier: "counter"}
	entry2 := &ast.Root{
		Scope: []*ast.VariableDecl{decl},
		Statements: []ast.Stmt{
			&ast.Assignment{
				Target: target,
				Value: &ast.Binary{
					Op:    ast.OpAdd,
					Left:  mention,
					Right: &ast.IntegerLit{Value: 1},
				},
			},
			&ast.Print{Value: &ast.Variable{Identifier: "counter"}},
		},
	}

	var out bytes.Buffer
	engine := vm.New(vm.Options{Stdout: &out}, nil)
	session := vm.NewReplSession(engine)

	_, errs := session.Eval(entry1)
	require.Empty(t, errs)

	fb, errs := session.Eval(entry2)
	require.Empty(t, errs)
	require.False(t, fb.HasThrown)
	assert.Equal(t, "2\n", out.String())
}
