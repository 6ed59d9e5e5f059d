// Package value implements the tagged value model (§3): a sum of
// primitive, shared-owned, cycle-collected and host-defined variants, all
// cloneable without ever deep-copying their contents.
package value

import (
	"fmt"

	"github.com/rainbow-alex/burn/internal/mem"
)

// Kind tags which variant a Value holds.
type Kind int

const (
	KindNothing Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindFunction
	KindTypeUnion
	KindTypeIntersection
	KindModule
	KindStaticSpecial
	KindRcSpecial
)

func (k Kind) String() string {
	switch k {
	case KindNothing:
		return "Nothing"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindFunction:
		return "Function"
	case KindTypeUnion:
		return "TypeUnion"
	case KindTypeIntersection:
		return "TypeIntersection"
	case KindModule:
		return "Module"
	case KindStaticSpecial:
		return "StaticSpecial"
	case KindRcSpecial:
		return "RcSpecial"
	default:
		return "Kind(?)"
	}
}

// ModuleRef is a weak, non-owning handle to a host-owned module (§3). It
// is an interface, not a concrete *module.Module, so that package value
// does not depend on package module (which itself holds Values).
type ModuleRef interface {
	ModuleName() string
	GetMember(name string) (Value, bool)
}

// Special is the capability set a host-defined object implements to
// participate in the value system (§3, GLOSSARY).
type Special interface {
	Repr() string
	ToString() string
	IsTruthy() bool
	IsTypeToken() bool
	TypeTest(v Value) bool
	IsThrowable() bool
}

// Function is the runtime representation of a closure: a cycle-collected
// object participating in mem.Manager's mark/sweep because its
// SharedBound array can reference cells that, transitively, reference
// this same Function again (§9).
type Function struct {
	Name string

	// Def is left untyped (any, concretely *bytecode.FunctionDefinition)
	// to avoid value<->bytecode import concerns beyond Code's own pool
	// entries; the vm package type-asserts it when constructing a Frame.
	Def any

	StaticBound []Value
	SharedBound []Cell

	died bool
}

// Mark implements mem.GcObject: forward the walk through every captured
// shared cell whose current value is itself a Function.
func (f *Function) Mark(visit func(mem.GcObject)) {
	for _, c := range f.SharedBound {
		v := c.Get()
		if v.kind == KindFunction && v.fn != nil {
			visit(v.fn)
		}
	}
}

// Die drops the strong references this Function holds (its captured
// cells), breaking any cycle it participated in.
func (f *Function) Die() {
	f.died = true
	f.SharedBound = nil
	f.StaticBound = nil
}

// Cell is a shared-owned, mutable holder used for SharedLocal slots and
// SharedBound captures (§3 "Variables and storage classes"): reads/writes
// indirect through it, and cloning it shares the same storage rather than
// copying the value.
type Cell struct {
	rc mem.Rc[Value]
}

// NewCell allocates a fresh cell holding v.
func NewCell(v Value) Cell { return Cell{rc: mem.NewRc(v)} }

// Get returns the cell's current value.
func (c Cell) Get() Value {
	if p := c.rc.Get(); p != nil {
		return *p
	}
	return Value{}
}

// Set overwrites the cell's current value; every clone observes the
// change, since all clones share the same backing box.
func (c Cell) Set(v Value) {
	if p := c.rc.Get(); p != nil {
		*p = v
	}
}

// Clone returns a new holder over the same shared storage.
func (c Cell) Clone() Cell { return Cell{rc: c.rc.Clone()} }

// Value is a tagged union over every variant named in §3. It is always
// passed by value and is safe to copy; Clone adjusts refcounts on shared
// variants but never deep-copies their contents.
type Value struct {
	kind Kind

	b bool
	i int64
	f float64

	str mem.Rc[string]

	members mem.Rc[[]Value] // TypeUnion / TypeIntersection member list

	module ModuleRef

	static Special // StaticSpecial: immortal, not refcounted
	shared mem.Rc[Special]

	fn *Function
}

// Nothing is the singleton Nothing value.
var Nothing = Value{kind: KindNothing}

func Boolean(b bool) Value  { return Value{kind: KindBoolean, b: b} }
func Integer(i int64) Value { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, str: mem.NewRc(s)} }

func TypeUnion(members []Value) Value {
	return Value{kind: KindTypeUnion, members: mem.NewRc(append([]Value(nil), members...))}
}

func TypeIntersection(members []Value) Value {
	return Value{kind: KindTypeIntersection, members: mem.NewRc(append([]Value(nil), members...))}
}

func Module(m ModuleRef) Value { return Value{kind: KindModule, module: m} }

func StaticSpecialValue(s Special) Value { return Value{kind: KindStaticSpecial, static: s} }

func RcSpecialValue(s Special) Value { return Value{kind: KindRcSpecial, shared: mem.NewRc(s)} }

func FunctionValue(fn *Function) Value { return Value{kind: KindFunction, fn: fn} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsBoolean() bool    { return v.b }
func (v Value) AsInteger() int64   { return v.i }
func (v Value) AsFloat() float64   { return v.f }
func (v Value) AsString() string {
	if p := v.str.Get(); p != nil {
		return *p
	}
	return ""
}
func (v Value) AsMembers() []Value {
	if p := v.members.Get(); p != nil {
		return *p
	}
	return nil
}
func (v Value) AsModule() ModuleRef { return v.module }
func (v Value) AsFunction() *Function { return v.fn }

// AsSpecial returns the Special capability set for a StaticSpecial or
// RcSpecial value, or nil otherwise.
func (v Value) AsSpecial() Special {
	switch v.kind {
	case KindStaticSpecial:
		return v.static
	case KindRcSpecial:
		if p := v.shared.Get(); p != nil {
			return *p
		}
	}
	return nil
}

// Clone adjusts refcounts on every shared variant; it never deep-copies.
func (v Value) Clone() Value {
	switch v.kind {
	case KindString:
		v.str = v.str.Clone()
	case KindTypeUnion, KindTypeIntersection:
		v.members = v.members.Clone()
	case KindRcSpecial:
		v.shared = v.shared.Clone()
	}
	return v
}

// IsTruthy implements the language's truthiness rule: Nothing and false
// are falsy, Integer(0)/Float(0) are falsy, empty strings are falsy,
// everything else (including every Special, deferring to its own
// IsTruthy) is truthy.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindNothing:
		return false
	case KindBoolean:
		return v.b
	case KindInteger:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.AsString() != ""
	case KindStaticSpecial, KindRcSpecial:
		return v.AsSpecial().IsTruthy()
	default:
		return true
	}
}

// ToString produces the host string representation (§4.11 "to_string /
// repr produce host strings and are total").
func (v Value) ToString() string {
	switch v.kind {
	case KindNothing:
		return "nothing"
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	case KindInteger:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return v.AsString()
	case KindFunction:
		return "<function>"
	case KindTypeUnion:
		return joinTypeNames(v.AsMembers(), " | ")
	case KindTypeIntersection:
		return joinTypeNames(v.AsMembers(), " & ")
	case KindModule:
		if v.module != nil {
			return "<module " + v.module.ModuleName() + ">"
		}
		return "<module>"
	case KindStaticSpecial, KindRcSpecial:
		return v.AsSpecial().ToString()
	default:
		return "?"
	}
}

// Repr produces a debug representation; defers to Special.Repr() for the
// two special variants, quotes strings, and falls back to ToString for
// everything else.
func (v Value) Repr() string {
	if s := v.AsSpecial(); s != nil {
		return s.Repr()
	}
	if v.kind == KindString {
		return fmt.Sprintf("%q", v.AsString())
	}
	return v.ToString()
}

func joinTypeNames(members []Value, sep string) string {
	out := ""
	for i, m := range members {
		if i > 0 {
			out += sep
		}
		out += m.ToString()
	}
	return out
}

// IsThrowable reports whether v may be thrown directly (§7.2 "throw opcode
// validates this"): only values carrying a Special capable of answering
// IsThrowable() true qualify.
func (v Value) IsThrowable() bool {
	s := v.AsSpecial()
	return s != nil && s.IsThrowable()
}
