// Package module implements the module tree and the `use` host operation
// that resolves a dotted import path into a Module value and inlines every
// call site that referenced it (§4.10).
package module

import "github.com/rainbow-alex/burn/internal/value"

// Module is one loaded module: a host-owned namespace whose members are
// added with Set. Running its source files as root frames (§6 "Module
// metadata") does not add members to it. Member
// order is preserved (a slice plus an index map, not a bare Go map) so that
// tree dumps and diagnostics are deterministic (§8 "Compile determinism"
// extends in spirit to module introspection).
type Module struct {
	name    string
	order   []string
	members map[string]value.Value
}

// NewModule creates an empty module registered under name; members are added
// only through Set.
func NewModule(name string) *Module {
	return &Module{name: name, members: map[string]value.Value{}}
}

// ModuleName implements value.ModuleRef.
func (m *Module) ModuleName() string { return m.name }

// GetMember implements value.ModuleRef.
func (m *Module) GetMember(name string) (value.Value, bool) {
	v, ok := m.members[name]
	return v, ok
}

// Set installs or overwrites a member, recording first-sight order.
func (m *Module) Set(name string, v value.Value) {
	if _, exists := m.members[name]; !exists {
		m.order = append(m.order, name)
	}
	m.members[name] = v
}

// Members returns the module's members in first-sight order.
func (m *Module) Members() []string { return append([]string(nil), m.order...) }

var _ value.ModuleRef = (*Module)(nil)
