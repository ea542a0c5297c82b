package bytecode

import "reflect"

// Value is a single VM stack/constant/slot value. Using reflect.Value
// directly (rather than a hand-rolled tagged union) is the Go-native
// choice here: every slot this VM ever touches — a closure field, an
// array-slab element, a struct field being initialized — is already a
// reflect.Value by construction, so there is no boundary where boxing
// into a second representation would buy anything.
type Value = reflect.Value

// IntValue wraps an int64 literal.
func IntValue(i int64) Value { return reflect.ValueOf(i) }

// FloatValue wraps a float64 literal.
func FloatValue(f float64) Value { return reflect.ValueOf(f) }

// BoolValue wraps a bool literal.
func BoolValue(b bool) Value { return reflect.ValueOf(b) }

// StringValue wraps a string literal.
func StringValue(s string) Value { return reflect.ValueOf(s) }

// TypeHandleValue wraps a reflect.Type as a first-class value (the Go
// stand-in for a CLR type-handle literal — Go's reflect.Type already
// serves as that handle, no GetTypeFromHandle indirection required).
func TypeHandleValue(t reflect.Type) Value { return reflect.ValueOf(t) }

// ZeroValue produces the nil/zero value of t (the Go stand-in for a
// typed null literal).
func ZeroValue(t reflect.Type) Value { return reflect.Zero(t) }

// MetaValue wraps an arbitrary compiler-internal metadata struct (method
// references, constructor specs, capture bindings) so it can live in the
// same constant pool as ordinary literals.
func MetaValue(v any) Value { return reflect.ValueOf(v) }

// IsNilLike reports whether v is a reference-kind value holding nil.
func IsNilLike(v Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}
