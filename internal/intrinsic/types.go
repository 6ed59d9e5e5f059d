// Package intrinsic implements the builtin type tokens, the TypeError/
// ArgumentError special objects, and the arithmetic/type operations dispatched
// by the `Binary`/`Unary` opcodes (§4.11).
package intrinsic

import "github.com/rainbow-alex/burn/internal/value"

// typeToken is a StaticSpecial type descriptor: an immortal, 'static-like
// value (never refcounted — constructed once as a package-level var and
// always boxed via value.StaticSpecialValue) that answers `is` tests for one
// builtin type (§3 "StaticSpecial", grounded on
// original_source/.../builtin/intrinsic/types.rs's StaticSpecialDef table).
type typeToken struct {
	name string
	test func(value.Value) bool
}

func (t *typeToken) Repr() string          { return t.name }
func (t *typeToken) ToString() string      { return t.name }
func (t *typeToken) IsTruthy() bool        { return true }
func (t *typeToken) IsTypeToken() bool     { return true }
func (t *typeToken) TypeTest(v value.Value) bool { return t.test(v) }
func (t *typeToken) IsThrowable() bool     { return false }

var (
	booleanToken = &typeToken{name: "Boolean", test: func(v value.Value) bool { return v.Kind() == value.KindBoolean }}
	integerToken = &typeToken{name: "Integer", test: func(v value.Value) bool { return v.Kind() == value.KindInteger }}
	floatToken   = &typeToken{name: "Float", test: func(v value.Value) bool { return v.Kind() == value.KindFloat }}
	numberToken  = &typeToken{name: "Number", test: func(v value.Value) bool {
		return v.Kind() == value.KindInteger || v.Kind() == value.KindFloat
	}}
	stringToken = &typeToken{name: "String", test: func(v value.Value) bool { return v.Kind() == value.KindString }}
	typeTypeToken  = &typeToken{name: "Type", test: IsType}
	throwableToken = &typeToken{name: "Throwable", test: func(v value.Value) bool {
		s := v.AsSpecial()
		return s != nil && s.IsThrowable()
	}}
)

// Boolean, Integer, Float, Number, String, Type and Throwable are the
// builtin type tokens the vm binds into its implicit module (§4.11, GLOSSARY
// "type token").
var (
	Boolean   = value.StaticSpecialValue(booleanToken)
	Integer   = value.StaticSpecialValue(integerToken)
	Float     = value.StaticSpecialValue(floatToken)
	Number    = value.StaticSpecialValue(numberToken)
	String    = value.StaticSpecialValue(stringToken)
	Type      = value.StaticSpecialValue(typeTypeToken)
	Throwable = value.StaticSpecialValue(throwableToken)
)

// IsType reports whether v can itself be used as the right-hand operand of
// an `is` test (original_source's `is_type`): TypeUnions, TypeIntersections
// and any Special whose IsTypeToken() answers true.
func IsType(v value.Value) bool {
	switch v.Kind() {
	case value.KindTypeUnion, value.KindTypeIntersection:
		return true
	case value.KindStaticSpecial, value.KindRcSpecial:
		s := v.AsSpecial()
		return s != nil && s.IsTypeToken()
	default:
		return false
	}
}
