// Package closure computes and materializes ClosureInfo: the binding
// analyzer's record of everything one lambda body captures (constants,
// captured outer parameters, nested lambdas), and the two physical
// shapes a closure can take once that record is complete.
package closure

import (
	"reflect"
	"sync"

	"github.com/cwbudde/go-exprjit/internal/bytecode"
	"github.com/cwbudde/go-exprjit/internal/exprtree"
)

// MaxFixed is the largest slot count that gets the fixed-arity,
// reflect.StructOf-backed representation. Above it, closures fall back
// to the array-slab representation. Ten hand-written product types
// would collapse to one generic construction in a language with
// generics over field count; reflect.StructOf is that one construction.
const MaxFixed = 10

// NestedLambdaInfo is one nested lambda discovered inside an enclosing
// lambda's body: its own binding analysis, plus (once the driver has
// compiled it) its materialized closure object and Chunk.
type NestedLambdaInfo struct {
	Lambda *exprtree.Lambda
	Info   *ClosureInfo

	Closure  *bytecode.ClosureObject
	Chunk    *bytecode.Chunk
	Callable bytecode.Value // the finalized func value stored into the outer slot
}

// ClosureInfo is the binding analyzer's output for one lambda body: the
// three capture categories in the fixed global slot order
// constants ++ capturedParams ++ nestedLambdas that both passes agree on.
type ClosureInfo struct {
	Constants      []*exprtree.Constant
	CapturedParams []*exprtree.Parameter
	NestedLambdas  []*NestedLambdaInfo
}

// SlotCount is the total number of closure slots this lambda needs.
func (ci *ClosureInfo) SlotCount() int {
	return len(ci.Constants) + len(ci.CapturedParams) + len(ci.NestedLambdas)
}

// SlotType returns the declared type of slot i in the global ordering.
func (ci *ClosureInfo) SlotType(i int) reflect.Type {
	switch {
	case i < len(ci.Constants):
		return ci.Constants[i].Typ
	case i < len(ci.Constants)+len(ci.CapturedParams):
		return ci.CapturedParams[i-len(ci.Constants)].Typ
	default:
		idx := i - len(ci.Constants) - len(ci.CapturedParams)
		return ci.NestedLambdas[idx].Lambda.Type()
	}
}

// ConstantSlot returns the slot index of a constant already known to be
// part of this closure (the emitter looks this up after the analyzer
// has deduplicated constants on insert).
func (ci *ClosureInfo) ConstantSlot(c *exprtree.Constant) (int, bool) {
	for i, other := range ci.Constants {
		if other == c {
			return i, true
		}
	}
	return -1, false
}

// ParamSlot returns the slot index of a captured parameter.
func (ci *ClosureInfo) ParamSlot(p *exprtree.Parameter) (int, bool) {
	for i, other := range ci.CapturedParams {
		if other == p {
			return len(ci.Constants) + i, true
		}
	}
	return -1, false
}

// NestedSlot returns the slot index of a nested lambda's closure/callable.
func (ci *ClosureInfo) NestedSlot(l *exprtree.Lambda) (int, bool) {
	for i, n := range ci.NestedLambdas {
		if n.Lambda == l {
			return len(ci.Constants) + len(ci.CapturedParams) + i, true
		}
	}
	return -1, false
}

var structTypeCache sync.Map // key: string signature -> reflect.Type

// Materialize builds the runtime closure object for ci: a fixed-arity
// reflect.StructOf value when SlotCount() <= MaxFixed, otherwise an
// array-slab. This happens exactly once per lambda, at compile time.
// Constant slots and nested-lambda slots are populated with their final
// value immediately (constants never change; a nested lambda's own
// identity never changes, only the values threaded into *its* closure
// do); captured-param slots are left at the zero value of their type,
// to be overwritten at runtime by OpThreadCapture.
func Materialize(ci *ClosureInfo) *bytecode.ClosureObject {
	n := ci.SlotCount()
	types := make([]reflect.Type, n)
	values := make([]reflect.Value, n)
	for i := 0; i < n; i++ {
		types[i] = ci.SlotType(i)
		values[i] = ci.slotValue(i, types[i])
	}

	if n <= MaxFixed {
		structType := fixedArityStructType(types)
		instance := reflect.New(structType).Elem()
		for i, v := range values {
			instance.Field(i).Set(v)
		}
		return bytecode.NewFixedArityClosure(instance)
	}

	slab := make([]bytecode.Value, n)
	copy(slab, values)
	return bytecode.NewArraySlabClosure(slab)
}

func (ci *ClosureInfo) slotValue(i int, t reflect.Type) reflect.Value {
	switch {
	case i < len(ci.Constants):
		return ci.Constants[i].Value
	case i < len(ci.Constants)+len(ci.CapturedParams):
		return reflect.Zero(t)
	default:
		idx := i - len(ci.Constants) - len(ci.CapturedParams)
		return ci.NestedLambdas[idx].Callable
	}
}

// fixedArityStructType returns (caching by signature) the StructOf type
// for the given ordered field types. The cache exists because many
// distinct lambdas in a program commonly share an arity-and-type
// signature (e.g. two captured ints); rebuilding the same StructOf type
// repeatedly would be wasted work for no behavioral benefit.
func fixedArityStructType(types []reflect.Type) reflect.Type {
	key := signature(types)
	if cached, ok := structTypeCache.Load(key); ok {
		return cached.(reflect.Type)
	}
	fields := make([]reflect.StructField, len(types))
	for i, t := range types {
		fields[i] = reflect.StructField{
			Name: fieldName(i),
			Type: t,
		}
	}
	st := reflect.StructOf(fields)
	actual, _ := structTypeCache.LoadOrStore(key, st)
	return actual.(reflect.Type)
}

func fieldName(i int) string {
	const letters = "ABCDEFGHIJ"
	return "F" + string(letters[i])
}

func signature(types []reflect.Type) string {
	s := ""
	for _, t := range types {
		s += t.String() + ";"
	}
	return s
}
