package intrinsic

import "github.com/rainbow-alex/burn/internal/value"

// typeError is the RcSpecial object substituted for any non-throwable value
// at a throw site, and raised directly by the arithmetic/type operations
// below (§4.11, grounded on
// original_source/.../builtin/intrinsic/errors.rs's TypeError).
type typeError struct{ message string }

func (e *typeError) Repr() string            { return "<TypeError>" }
func (e *typeError) ToString() string        { return "TypeError: " + e.message }
func (e *typeError) IsTruthy() bool          { return true }
func (e *typeError) IsTypeToken() bool       { return false }
func (e *typeError) TypeTest(value.Value) bool { return false }
func (e *typeError) IsThrowable() bool       { return true }

// NewTypeError constructs a throwable TypeError carrying message.
func NewTypeError(message string) value.Value {
	return value.RcSpecialValue(&typeError{message: message})
}

// argumentError is raised by the vm's call dispatch when a call's argument
// count does not match the callee's parameters (original_source's
// ArgumentError).
type argumentError struct{ message string }

func (e *argumentError) Repr() string            { return "<ArgumentError>" }
func (e *argumentError) ToString() string        { return "ArgumentError: " + e.message }
func (e *argumentError) IsTruthy() bool          { return true }
func (e *argumentError) IsTypeToken() bool       { return false }
func (e *argumentError) TypeTest(value.Value) bool { return false }
func (e *argumentError) IsThrowable() bool       { return true }

// NewArgumentError constructs a throwable ArgumentError carrying message.
func NewArgumentError(message string) value.Value {
	return value.RcSpecialValue(&argumentError{message: message})
}

// IsTypeError reports whether v is a TypeError value, mirroring
// original_source's `is_type_error` type test (used by Throwable::TypeError
// `is` checks in host code and tests).
func IsTypeError(v value.Value) bool {
	if v.Kind() != value.KindRcSpecial {
		return false
	}
	s := v.AsSpecial()
	_, ok := s.(*typeError)
	return ok
}

// IsArgumentError reports whether v is an ArgumentError value.
func IsArgumentError(v value.Value) bool {
	if v.Kind() != value.KindRcSpecial {
		return false
	}
	s := v.AsSpecial()
	_, ok := s.(*argumentError)
	return ok
}
