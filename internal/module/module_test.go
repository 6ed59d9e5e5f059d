package module_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/rainbow-alex/burn/internal/ast"
	"github.com/rainbow-alex/burn/internal/bytecode"
	"github.com/rainbow-alex/burn/internal/module"
)

// mathlibFixture materializes a one-module search path via txtar (§4.10
// step 1 "scan configured import paths"): mathlib/burn_module.json
// declaring a single source file.
func mathlibFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	arc := txtar.Parse([]byte(`
-- mathlib/burn_module.json --
{"sources": ["main.burn"]}
-- mathlib/main.burn --
print 1
`))
	for _, f := range arc.Files {
		path := filepath.Join(dir, f.Name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
	}
	return dir
}

func TestParseMetadataRequiresSourcesList(t *testing.T) {
	_, err := module.ParseMetadata([]byte(`{}`))
	assert.ErrorIs(t, err, module.ErrInvalidMetadata)
}

func TestParseMetadataRejectsMalformedJSON(t *testing.T) {
	_, err := module.ParseMetadata([]byte(`not json`))
	assert.ErrorIs(t, err, module.ErrInvalidMetadata)
}

func TestParseMetadataRejectsTooOldEngine(t *testing.T) {
	_, err := module.ParseMetadata([]byte(`{"sources": ["a.burn"], "minBurnVersion": "v99.0.0"}`))
	assert.ErrorIs(t, err, module.ErrEngineTooOld)
}

func TestParseMetadataAcceptsSatisfiedMinVersion(t *testing.T) {
	m, err := module.ParseMetadata([]byte(`{"sources": ["a.burn"], "minBurnVersion": "v0.0.1"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.burn"}, m.Sources)
}

// emptyRoot stands in for whatever the host's parser would have produced
// for "print 1" — this package's tests never exercise a real parser
// (spec.md's Non-goal), only the module-resolution machinery around it.
func emptyRoot(string) (*ast.Root, error) {
	return &ast.Root{}, nil
}

func TestUseOperationFullLifecycleRegistersAndInlinesModule(t *testing.T) {
	tree := module.NewTree([]string{mathlibFixture(t)}, emptyRoot)

	useCode := &bytecode.Code{Instructions: []bytecode.Instruction{{Op: bytecode.Use}}}
	nameCode := &bytecode.Code{Instructions: []bytecode.Instruction{{Op: bytecode.LoadImplicit}}}

	op := module.NewUseOperation([]string{"mathlib"}, tree)
	op.UseSite = module.Site{Code: useCode, Offset: 0}
	op.AddNameSite(nameCode, 0)

	// FindRoot -> ImportRoot: the one declared source burns as a fresh
	// root frame.
	step := op.Step(module.Step{Kind: module.StepOk})
	require.Equal(t, module.StepBurn, step.Kind)
	require.NotNil(t, step.Code)

	// The source frame "returns" (ends in ReturnNothing in a real run);
	// resume with its outcome.
	step = op.Step(module.Step{Kind: module.StepOk})

	// ImportSubs (single-segment path, a no-op) falls straight into
	// Inline, which patches both call sites and reports Ok.
	require.Equal(t, module.StepOk, step.Kind)
	assert.True(t, op.Done())

	assert.Equal(t, bytecode.Nop, useCode.Instructions[0].Op, "the Use opcode must be Nop'd after success (§8 idempotent use)")
	assert.Equal(t, bytecode.InlinedModule, nameCode.Instructions[0].Op)

	_, found := tree.Get("mathlib")
	assert.True(t, found, "FindRoot must register the new root module on the tree")
}

func TestUseOperationIdempotentAfterSuccess(t *testing.T) {
	tree := module.NewTree([]string{mathlibFixture(t)}, emptyRoot)
	op := module.NewUseOperation([]string{"mathlib"}, tree)

	step := op.Step(module.Step{Kind: module.StepOk})
	require.Equal(t, module.StepBurn, step.Kind)
	step = op.Step(module.Step{Kind: module.StepOk})
	require.Equal(t, module.StepOk, step.Kind)
	require.True(t, op.Done())

	// §8 "Idempotent use": re-entering Step after Done() must not panic
	// or re-run FindRoot/ImportRoot, just report the same loaded module.
	again := op.Step(module.Step{Kind: module.StepOk})
	assert.Equal(t, module.StepOk, again.Kind)
}

func TestUseOperationUnknownRootThrows(t *testing.T) {
	tree := module.NewTree([]string{t.TempDir()}, emptyRoot)
	op := module.NewUseOperation([]string{"nonexistent"}, tree)

	step := op.Step(module.Step{Kind: module.StepOk})
	assert.Equal(t, module.StepThrow, step.Kind)
}

func TestUseOperationSubImportUnsupported(t *testing.T) {
	tree := module.NewTree([]string{mathlibFixture(t)}, emptyRoot)
	op := module.NewUseOperation([]string{"mathlib", "trig"}, tree)

	step := op.Step(module.Step{Kind: module.StepOk})
	require.Equal(t, module.StepBurn, step.Kind)
	step = op.Step(module.Step{Kind: module.StepOk})
	assert.Equal(t, module.StepThrow, step.Kind)
}

func TestUseOperationPropagatesSourceThrow(t *testing.T) {
	tree := module.NewTree([]string{mathlibFixture(t)}, emptyRoot)
	op := module.NewUseOperation([]string{"mathlib"}, tree)

	step := op.Step(module.Step{Kind: module.StepOk})
	require.Equal(t, module.StepBurn, step.Kind)

	thrown := module.Step{Kind: module.StepThrow}
	step = op.Step(thrown)
	assert.Equal(t, module.StepThrow, step.Kind)
}

func TestWireUseLinksUsePointsRecursivelyThroughFunctions(t *testing.T) {
	tree := module.NewTree([]string{mathlibFixture(t)}, emptyRoot)

	inner := &bytecode.Code{
		UsePoints: []*bytecode.UsePoint{
			{Path: []string{"mathlib"}, UseOffset: 0},
		},
		Instructions: []bytecode.Instruction{{Op: bytecode.Use}},
	}
	outer := &bytecode.Code{
		Functions:    []*bytecode.FunctionDefinition{{Code: inner}},
		Instructions: []bytecode.Instruction{{Op: bytecode.ReturnNothing}},
	}

	module.WireUse(outer, tree)

	_, ok := inner.Instructions[0].UseOp.(*module.UseOperation)
	assert.True(t, ok, "a nested FunctionDefinition's Code must get its own UseOperation wired in")
}
