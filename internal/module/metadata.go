package module

import (
	"encoding/json"

	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

// EngineVersion is this engine's own semver, compared against a module's
// optional minBurnVersion (supplemented, see SPEC_FULL.md domain stack).
const EngineVersion = "v0.1.0"

// Metadata is the decoded contents of a module directory's
// burn_module.json (§6 "Module metadata"): at minimum a `sources` list,
// loaded and executed in order as fresh root frames.
type Metadata struct {
	Sources []string `json:"sources"`

	// MinBurnVersion, when set, is the lowest engine semver this module
	// declares itself compatible with (supplemented from the original's
	// module loader, dropped by the spec.md distillation).
	MinBurnVersion string `json:"minBurnVersion,omitempty"`
}

// ParseMetadata decodes and validates a burn_module.json payload.
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(ErrInvalidMetadata, err.Error())
	}
	if len(m.Sources) == 0 {
		return nil, errors.Wrap(ErrInvalidMetadata, `"sources" must list at least one file`)
	}
	if m.MinBurnVersion != "" {
		if !semver.IsValid(m.MinBurnVersion) {
			return nil, errors.Wrapf(ErrInvalidMetadata, "minBurnVersion %q is not a valid semver", m.MinBurnVersion)
		}
		if semver.Compare(EngineVersion, m.MinBurnVersion) < 0 {
			return nil, errors.Wrapf(ErrEngineTooOld, "engine %s < required %s", EngineVersion, m.MinBurnVersion)
		}
	}
	return &m, nil
}
