package module

import "github.com/pkg/errors"

// ErrSubImportUnsupported is returned (supplemented, see SPEC_FULL.md) when
// a `use` path has more than one segment: traversing into submodules is the
// ImportSubs step the original left unimplemented (spec §4.10 step 3, §9
// "Open questions observed in the source"). We fail loudly with a named,
// tested error rather than silently no-op'ing.
var ErrSubImportUnsupported = errors.New("module: sub-module import (use path with more than one segment) is not supported")

// ErrModuleNotFound is returned by FindRoot when no configured search path
// contains `<name>/burn_module.json`.
var ErrModuleNotFound = errors.New("module: no burn_module.json found for root name on any configured search path")

// ErrInvalidMetadata is returned when burn_module.json fails to parse or is
// missing its required `sources` list.
var ErrInvalidMetadata = errors.New("module: invalid burn_module.json")

// ErrEngineTooOld is returned when a module's metadata declares a
// minBurnVersion newer than this engine (supplemented from SPEC_FULL.md's
// domain-stack section; validated with golang.org/x/mod/semver).
var ErrEngineTooOld = errors.New("module: engine version is older than the module's declared minBurnVersion")
