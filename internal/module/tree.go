package module

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/rainbow-alex/burn/internal/ast"
)

// SourceLoader turns an absolute source path into a parsed AST. The engine
// has no lexer/parser (spec.md's explicit Non-goal carried into
// SPEC_FULL.md); every caller — the host embedding the engine, and every
// test in this repo — supplies already-parsed ASTs, exactly as a real
// front end would after parsing the file at path.
type SourceLoader func(path string) (*ast.Root, error)

// Tree is the module root namespace (§5 "the module tree is built during
// VM initialization, then effectively frozen for read access"): a
// deterministically ordered set of named root Modules, plus the
// configuration `use` resolution needs to load a new one from disk.
type Tree struct {
	SearchPaths []string
	Loader      SourceLoader

	order []string
	roots map[string]*Module
}

// NewTree creates an empty tree that resolves unknown root names by
// scanning searchPaths for "<name>/burn_module.json", loading each
// declared source with loader.
func NewTree(searchPaths []string, loader SourceLoader) *Tree {
	return &Tree{SearchPaths: searchPaths, Loader: loader, roots: map[string]*Module{}}
}

// Get returns an already-loaded root module by name.
func (t *Tree) Get(name string) (*Module, bool) {
	m, ok := t.roots[name]
	return m, ok
}

// Register installs a newly created root module, idempotently (§5 "a `use`
// installing a newly loaded module at a name... idempotent after success").
func (t *Tree) Register(m *Module) {
	if _, exists := t.roots[m.name]; exists {
		return
	}
	t.order = append(t.order, m.name)
	t.roots[m.name] = m
}

// Roots returns every loaded root module name in registration order.
func (t *Tree) Roots() []string { return append([]string(nil), t.order...) }

// locate scans SearchPaths for "<name>/burn_module.json" and returns its
// directory and parsed metadata (§4.10 step 1 "scan configured import
// paths").
func (t *Tree) locate(name string) (dir string, meta *Metadata, err error) {
	for _, base := range t.SearchPaths {
		candidate := filepath.Join(base, name)
		data, readErr := os.ReadFile(filepath.Join(candidate, "burn_module.json"))
		if readErr != nil {
			if os.IsNotExist(readErr) {
				continue
			}
			return "", nil, errors.Wrapf(readErr, "module: reading burn_module.json for %q", name)
		}
		m, parseErr := ParseMetadata(data)
		if parseErr != nil {
			return "", nil, errors.Wrapf(parseErr, "module: %q", name)
		}
		return candidate, m, nil
	}
	return "", nil, errors.Wrapf(ErrModuleNotFound, "root %q", name)
}
