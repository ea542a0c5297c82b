// Package rtti adapts the standard reflect package to the narrow
// reflection contract the compiler needs: type categories, property
// accessors, ordered declared fields, and a universal reference type
// handle. It is the Go rendition of the host reflection interface spec'd
// for this compiler (types, fields, properties, constructors, methods,
// value-type vs reference-type).
package rtti

import "reflect"

// AnyType is the universal reference type: Go's interface{}/any.
var AnyType = reflect.TypeOf((*any)(nil)).Elem()

// IsValueType reports whether t behaves like a CLR value type: copied on
// assignment, never nil. Pointers, interfaces, slices, maps, channels and
// funcs are reference-like and return false.
func IsValueType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return false
	default:
		return true
	}
}

// IsEnum reports whether t is a named integer type, the Go stand-in for
// a CLR enumeration (as opposed to a bare int/int64 literal type).
func IsEnum(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return t.Name() != "" && t.PkgPath() != ""
	default:
		return false
	}
}

// Property is a getter/setter pair standing in for a CLR property. Go has
// no first-class properties; the idiomatic equivalent used throughout
// this codebase is a Get<Name>/Set<Name> method pair, or a bare exported
// field when there is no pair.
type Property struct {
	Name    string
	Getter  *reflect.Method
	Setter  *reflect.Method
	Field   *reflect.StructField
	FieldOf reflect.Type
}

// HasGetter reports whether the property can be read.
func (p Property) HasGetter() bool {
	return p.Getter != nil || p.Field != nil
}

// HasSetter reports whether the property can be assigned.
func (p Property) HasSetter() bool {
	return p.Setter != nil || p.Field != nil
}

// ResolveProperty looks up a settable/gettable member named name on t,
// preferring an explicit Get<Name>/Set<Name> method pair and falling
// back to an exported field of the same name.
func ResolveProperty(t reflect.Type, name string) (Property, bool) {
	prop := Property{Name: name}
	found := false

	if m, ok := methodByName(t, "Get"+name); ok && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 {
		prop.Getter = &m
		found = true
	}
	if m, ok := methodByName(t, "Set"+name); ok && m.Type.NumIn() == 2 {
		prop.Setter = &m
		found = true
	}
	if !found {
		fieldType := t
		if fieldType.Kind() == reflect.Ptr {
			fieldType = fieldType.Elem()
		}
		if fieldType.Kind() == reflect.Struct {
			if f, ok := fieldType.FieldByName(name); ok && f.IsExported() {
				prop.Field = &f
				prop.FieldOf = fieldType
				found = true
			}
		}
	}
	return prop, found
}

func methodByName(t reflect.Type, name string) (reflect.Method, bool) {
	if t == nil {
		return reflect.Method{}, false
	}
	return t.MethodByName(name)
}

// DeclaredFields returns all fields of a struct type (exported or not) in
// declaration order, or nil for a non-struct type. Fixed-arity closures
// do not go through it: ClosureObject addresses their slots by field
// index directly.
func DeclaredFields(t reflect.Type) []reflect.StructField {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	fields := make([]reflect.StructField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		fields = append(fields, t.Field(i))
	}
	return fields
}
