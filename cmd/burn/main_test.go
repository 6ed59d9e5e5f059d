package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHelpFlagExitsZero(t *testing.T) {
	assert.Equal(t, 0, run([]string{"-h"}))
}

func TestRunUnknownFlagExitsOne(t *testing.T) {
	assert.Equal(t, 1, run([]string{"--not-a-real-flag"}))
}

func TestRunMissingFileExitsOne(t *testing.T) {
	assert.Equal(t, 1, run([]string{filepath.Join(t.TempDir(), "missing.burn")}))
}

// An empty source file parses to an empty ast.Root (parseSource's stub
// behavior) and runs to completion with no uncaught throw.
func TestRunEmptyFileExitsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.burn")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	assert.Equal(t, 0, run([]string{path}))
}

// Non-empty source text hits the parser-boundary stub (no lexer/parser is
// linked into this build) and must fail cleanly rather than panic.
func TestRunFileWithSourceTextExitsOneAtParserStub(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonempty.burn")
	require.NoError(t, os.WriteFile(path, []byte("print 1\n"), 0o644))

	assert.Equal(t, 1, run([]string{path}))
}
