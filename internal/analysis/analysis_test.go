package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainbow-alex/burn/internal/analysis"
	"github.com/rainbow-alex/burn/internal/ast"
)

// let x = 1
// print x
func TestAnalyzeLocalVariableNeverCapturedStaysLocal(t *testing.T) {
	decl := &ast.VariableDecl{Name: "x"}
	root := &ast.Root{
		Scope: []*ast.VariableDecl{decl},
		Statements: []ast.Stmt{
			&ast.Let{Decl: decl, Default: &ast.IntegerLit{Value: 1}},
			&ast.Print{Value: &ast.Variable{Identifier: "x"}},
		},
	}

	_, errs := analysis.Analyze(root, analysis.Options{})
	require.Empty(t, errs)

	info := analysis.Info(decl)
	require.NotNil(t, info)
	assert.Equal(t, analysis.Local, info.Storage)
	assert.Equal(t, analysis.NotBound, info.Bound)
}

// print undeclared  -> unknown-variable analysis error
func TestAnalyzeUnknownVariableProducesError(t *testing.T) {
	root := &ast.Root{
		Statements: []ast.Stmt{
			&ast.Print{Value: &ast.Variable{Identifier: "undeclared"}},
		},
	}

	_, errs := analysis.Analyze(root, analysis.Options{})
	require.NotEmpty(t, errs)
}

// let counter = 0
// let bump = fn() { counter = counter + 1 }
// print counter
//
// counter is mutated from a nested frame and also read after the bind in
// its own declaring frame, so it must classify as SharedLocal+SharedBound
// (§3 "Variables and storage classes").
func TestAnalyzeVariableMutatedByNestedFrameIsSharedBound(t *testing.T) {
	counterDecl := &ast.VariableDecl{Name: "counter"}
	bumpDecl := &ast.VariableDecl{Name: "bump"}

	fn := &ast.Function{
		Body: []ast.Stmt{
			&ast.Assignment{
				Target: &ast.Variable{Identifier: "counter"},
				Value: &ast.Binary{
					Op:    ast.OpAdd,
					Left:  &ast.Variable{Identifier: "counter"},
					Right: &ast.IntegerLit{Value: 1},
				},
			},
		},
	}

	root := &ast.Root{
		Scope: []*ast.VariableDecl{counterDecl, bumpDecl},
		Statements: []ast.Stmt{
			&ast.Let{Decl: counterDecl, Default: &ast.IntegerLit{Value: 0}},
			&ast.Let{Decl: bumpDecl, Default: fn},
			&ast.Print{Value: &ast.Variable{Identifier: "counter"}},
		},
	}

	_, errs := analysis.Analyze(root, analysis.Options{})
	require.Empty(t, errs)

	info := analysis.Info(counterDecl)
	require.NotNil(t, info)
	assert.Equal(t, analysis.SharedLocal, info.Storage)
	assert.Equal(t, analysis.SharedBound, info.Bound)
	require.Len(t, info.RootBinds, 1)
	assert.True(t, info.RootBinds[0].Mutable)
}

// REPL top-level entries force every root-scope variable to
// SharedLocal+SharedBound regardless of how it's used, since a later
// entry may reopen and mutate it (§4.4, §6).
func TestAnalyzeReplTopLevelForcesSharedRegardlessOfUsage(t *testing.T) {
	decl := &ast.VariableDecl{Name: "x"}
	root := &ast.Root{
		Scope: []*ast.VariableDecl{decl},
		Statements: []ast.Stmt{
			&ast.Let{Decl: decl, Default: &ast.IntegerLit{Value: 1}},
		},
	}

	_, errs := analysis.Analyze(root, analysis.Options{ReplTopLevel: true})
	require.Empty(t, errs)

	info := analysis.Info(decl)
	require.NotNil(t, info)
	assert.True(t, info.ForceShared)
	assert.Equal(t, analysis.SharedLocal, info.Storage)
	assert.Equal(t, analysis.SharedBound, info.Bound)
}
