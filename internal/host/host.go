// Package host defines the narrow adapter interfaces internal/compiler
// consumes: Reflector (reflection metadata) and EmitterTarget (the
// instruction-stream sink). Keeping these as interfaces, rather than
// compiler depending on a concrete *bytecode.Chunk throughout, is the
// accept-interfaces idiom — the same shape go-dws/internal/interp takes
// ast.Expression/ast.Node interfaces rather than depending on concrete
// parser types.
package host

import (
	"reflect"

	"github.com/cwbudde/go-exprjit/internal/bytecode"
	"github.com/cwbudde/go-exprjit/internal/rtti"
)

// Reflector is every reflection query the analyzer/emitter need.
type Reflector interface {
	IsValueType(t reflect.Type) bool
	IsEnum(t reflect.Type) bool
	AnyType() reflect.Type
	ResolveProperty(t reflect.Type, name string) (rtti.Property, bool)
	DeclaredFields(t reflect.Type) []reflect.StructField
}

// EmitterTarget is the restricted instruction-stream sink of spec §6:
// load/store locals, fields, static fields, the dense/short/wide literal
// forms, casts, array/object construction, calls, comparisons, dup/ret,
// plus the constant and capture pools backing the operand-carrying ops.
// *bytecode.Chunk satisfies this directly.
type EmitterTarget interface {
	WriteOp(op bytecode.OpCode, a byte, b uint16) int
	WriteSimple(op bytecode.OpCode) int
	AddConstant(v bytecode.Value) uint16
	AddCapture(b bytecode.CaptureBinding) uint16
	DeclareLocal() uint16
}

// Reflection is the rtti-backed Reflector implementation.
type Reflection struct{}

func (Reflection) IsValueType(t reflect.Type) bool { return rtti.IsValueType(t) }
func (Reflection) IsEnum(t reflect.Type) bool      { return rtti.IsEnum(t) }
func (Reflection) AnyType() reflect.Type           { return rtti.AnyType }
func (Reflection) ResolveProperty(t reflect.Type, name string) (rtti.Property, bool) {
	return rtti.ResolveProperty(t, name)
}
func (Reflection) DeclaredFields(t reflect.Type) []reflect.StructField {
	return rtti.DeclaredFields(t)
}
