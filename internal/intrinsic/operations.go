package intrinsic

import (
	"fmt"

	"github.com/rainbow-alex/burn/internal/value"
)

// Add implements the `+` operator: Integer/Float pairs widen per the usual
// numeric-tower rule, everything else raises a TypeError (§4.11, grounded on
// original_source/.../builtin/intrinsic/operations.rs::add).
func Add(left, right value.Value) (value.Value, value.Value) {
	switch left.Kind() {
	case value.KindInteger:
		switch right.Kind() {
		case value.KindInteger:
			return value.Integer(left.AsInteger() + right.AsInteger()), value.Value{}
		case value.KindFloat:
			return value.Float(float64(left.AsInteger()) + right.AsFloat()), value.Value{}
		}
	case value.KindFloat:
		switch right.Kind() {
		case value.KindInteger:
			return value.Float(left.AsFloat() + float64(right.AsInteger())), value.Value{}
		case value.KindFloat:
			return value.Float(left.AsFloat() + right.AsFloat()), value.Value{}
		}
	}
	return value.Value{}, NewTypeError(fmt.Sprintf("Can't add %s and %s", left.Repr(), right.Repr()))
}

// Subtract implements the `-` operator; same widening rule as Add.
func Subtract(left, right value.Value) (value.Value, value.Value) {
	switch left.Kind() {
	case value.KindInteger:
		switch right.Kind() {
		case value.KindInteger:
			return value.Integer(left.AsInteger() - right.AsInteger()), value.Value{}
		case value.KindFloat:
			return value.Float(float64(left.AsInteger()) - right.AsFloat()), value.Value{}
		}
	case value.KindFloat:
		switch right.Kind() {
		case value.KindInteger:
			return value.Float(left.AsFloat() - float64(right.AsInteger())), value.Value{}
		case value.KindFloat:
			return value.Float(left.AsFloat() - right.AsFloat()), value.Value{}
		}
	}
	return value.Value{}, NewTypeError(fmt.Sprintf("Can't subtract %s and %s", left.Repr(), right.Repr()))
}

// Multiply always raises a TypeError: the original never implements it
// (operations.rs::multiply is an unconditional stub). Per §9 "do not infer
// implementations" we reproduce the stub rather than adding real numeric
// multiplication.
func Multiply(left, right value.Value) (value.Value, value.Value) {
	return value.Value{}, NewTypeError(fmt.Sprintf("Can't multiply %s and %s", left.Repr(), right.Repr()))
}

// Divide always raises a TypeError, for the same reason as Multiply.
func Divide(left, right value.Value) (value.Value, value.Value) {
	return value.Value{}, NewTypeError(fmt.Sprintf("Can't divide %s and %s", left.Repr(), right.Repr()))
}

// Eq, Neq, Lt, Gt, LtEq and GtEq always raise a TypeError: the original
// stubs every comparison operator unconditionally (operations.rs::eq,
// ::neq, ::lt, ::gt, ::lt_eq, ::gt_eq), including equality. §9 explicitly
// flags this: "several comparison operations always produce a TypeError;
// do not infer implementations."
func Eq(left, right value.Value) (value.Value, value.Value)   { return compareStub(left, right) }
func Neq(left, right value.Value) (value.Value, value.Value)  { return compareStub(left, right) }
func Lt(left, right value.Value) (value.Value, value.Value)   { return compareStub(left, right) }
func Gt(left, right value.Value) (value.Value, value.Value)   { return compareStub(left, right) }
func LtEq(left, right value.Value) (value.Value, value.Value) { return compareStub(left, right) }
func GtEq(left, right value.Value) (value.Value, value.Value) { return compareStub(left, right) }

func compareStub(left, right value.Value) (value.Value, value.Value) {
	return value.Value{}, NewTypeError(fmt.Sprintf("Can't compare %s and %s", left.Repr(), right.Repr()))
}

// Union implements the `|` type operator: both operands must themselves be
// types (§4.11, grounded on operations.rs::union). The resulting TypeUnion
// is flattened, not nested (DESIGN.md Open Question 5): unioning a type
// that is itself a TypeUnion splices its members in rather than nesting a
// new cons cell, which leaves `Is`'s linear OR-fold equivalent to the
// original's binary recursion for any union built this way.
func Union(left, right value.Value) (value.Value, value.Value) {
	if !IsType(left) {
		return value.Value{}, NewTypeError(fmt.Sprintf("Can't create type union: %s is not a type", left.Repr()))
	}
	if !IsType(right) {
		return value.Value{}, NewTypeError(fmt.Sprintf("Can't create type union: %s is not a type", right.Repr()))
	}
	members := append(flattenUnion(left), flattenUnion(right)...)
	return value.TypeUnion(members), value.Value{}
}

func flattenUnion(v value.Value) []value.Value {
	if v.Kind() == value.KindTypeUnion {
		return append([]value.Value(nil), v.AsMembers()...)
	}
	return []value.Value{v}
}

// Intersection implements the `&` type operator analogously to Union, for
// the benefit of type expressions that combine capabilities; `is_type`
// recognizes TypeIntersection values, even though the original's builtin
// operations file never constructs one directly. Members are flattened as
// with Union.
func Intersection(left, right value.Value) (value.Value, value.Value) {
	if !IsType(left) {
		return value.Value{}, NewTypeError(fmt.Sprintf("Can't create type intersection: %s is not a type", left.Repr()))
	}
	if !IsType(right) {
		return value.Value{}, NewTypeError(fmt.Sprintf("Can't create type intersection: %s is not a type", right.Repr()))
	}
	flatten := func(v value.Value) []value.Value {
		if v.Kind() == value.KindTypeIntersection {
			return append([]value.Value(nil), v.AsMembers()...)
		}
		return []value.Value{v}
	}
	members := append(flatten(left), flatten(right)...)
	return value.TypeIntersection(members), value.Value{}
}

// Is implements the `is` type-test operator (§4.11, grounded on
// operations.rs::is). type_ must itself be a type: a TypeUnion folds via OR
// over its members, a type-token Special defers to its TypeTest. There is
// deliberately no TypeIntersection case (DESIGN.md Open Question 6): the
// original has none either, so testing against an intersection always
// raises the same "is not a type" TypeError as any other non-type operand.
func Is(v, type_ value.Value) (bool, value.Value) {
	switch type_.Kind() {
	case value.KindTypeUnion:
		for _, member := range type_.AsMembers() {
			ok, err := Is(v, member)
			if err.IsThrowable() {
				return false, err
			}
			if ok {
				return true, value.Value{}
			}
		}
		return false, value.Value{}

	case value.KindStaticSpecial, value.KindRcSpecial:
		s := type_.AsSpecial()
		if s != nil && s.IsTypeToken() {
			return s.TypeTest(v), value.Value{}
		}
	}

	return false, NewTypeError(fmt.Sprintf("%s is not a type", type_.Repr()))
}
