package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainbow-alex/burn/internal/ast"
	"github.com/rainbow-alex/burn/internal/value"
	"github.com/rainbow-alex/burn/internal/vm"
)

// let x = 1 + 2
// print x
func simpleRoot() *ast.Root {
	decl := &ast.VariableDecl{Name: "x"}
	v := &ast.Variable{Identifier: "x"}
	return &ast.Root{
		Scope: []*ast.VariableDecl{decl},
		Statements: []ast.Stmt{
			&ast.Let{
				Decl: decl,
				Default: &ast.Binary{
					Op:    ast.OpAdd,
					Left:  &ast.IntegerLit{Value: 1},
					Right: &ast.IntegerLit{Value: 2},
				},
			},
			&ast.Print{Value: v},
		},
	}
}

func TestVMEvalCompilesAndRunsAScript(t *testing.T) {
	var out bytes.Buffer
	engine := vm.New(vm.Options{Stdout: &out, Stderr: &out}, nil)

	fb, errs := engine.Eval(simpleRoot())

	require.Empty(t, errs)
	require.False(t, fb.HasThrown)
	assert.Equal(t, "3\n", out.String())
}

// Quiet (§6 "-q/--quiet") scopes only to source-fragment echo in error
// rendering; it must never silence a correct program's own Print output.
func TestVMEvalPrintOutputSurvivesQuietOption(t *testing.T) {
	var out bytes.Buffer
	engine := vm.New(vm.Options{Stdout: &out, Quiet: true}, nil)

	fb, errs := engine.Eval(simpleRoot())

	require.Empty(t, errs)
	require.False(t, fb.HasThrown)
	assert.Equal(t, "3\n", out.String())
}

func TestVMEvalSeedsImplicitModuleFromGlobals(t *testing.T) {
	name := &ast.Name{Identifier: "answer"}
	root := &ast.Root{
		Statements: []ast.Stmt{
			&ast.Print{Value: name},
		},
	}

	var out bytes.Buffer
	engine := vm.New(vm.Options{
		Stdout:  &out,
		Globals: map[string]value.Value{"answer": value.Integer(42)},
	}, nil)

	fb, errs := engine.Eval(root)

	require.Empty(t, errs)
	require.False(t, fb.HasThrown)
	assert.Equal(t, "42\n", out.String())
}

func TestVMEvalReportsUncaughtThrowToHandlers(t *testing.T) {
	root := &ast.Root{
		Statements: []ast.Stmt{
			&ast.Throw{Value: &ast.IntegerLit{Value: 1}},
		},
	}

	var reported []value.Value
	engine := vm.New(vm.Options{
		UncaughtHandlers: []func(value.Value){
			func(v value.Value) { reported = append(reported, v) },
		},
	}, nil)

	fb, errs := engine.Eval(root)

	require.Empty(t, errs)
	assert.True(t, fb.HasThrown)
	require.Len(t, reported, 1)
	assert.True(t, reported[0].IsThrowable())
}
