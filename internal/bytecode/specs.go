package bytecode

import "reflect"

// MethodRef resolves an OpCall/OpCallVirt target. For a
// direct (non-virtual) call, Direct holds the unbound method func
// (reflect.Method.Func) so the receiver is passed explicitly. For a
// virtual call, only Name is used: the VM resolves it through the
// receiver's dynamic type each time, the Go analogue of callvirt.
type MethodRef struct {
	Direct reflect.Value
	Name   string
}

// FieldRef resolves an OpLoadStaticField target, or the field half of a
// MemberInit binding.
type FieldRef struct {
	Owner reflect.Type
	Name  string
}

// NewObjSpec resolves an OpNewObj target: either Ctor (a func(args...) T
// value) or, when Ctor is invalid, the zero value of ResultType.
type NewObjSpec struct {
	Ctor       reflect.Value
	ResultType reflect.Type
}

// CaptureBinding re-threads one outer value into one nested lambda's
// closure slot every time the owning frame executes (see
// internal/compiler/emitter.go's handling of nested Lambda nodes).
// InnerClosure is materialized once, at compile time; only the slot
// contents are overwritten on each subsequent execution.
type CaptureBinding struct {
	InnerClosure *ClosureObject
	SourceKind   CaptureSource
	InnerSlot    int
	SourceIndex  int
	BoxAsAny     bool
}

// CaptureSource says where OpThreadCapture reads the value to thread.
type CaptureSource int

const (
	// CaptureFromArg reads declared parameter SourceIndex of the current frame.
	CaptureFromArg CaptureSource = iota
	// CaptureFromClosureSlot reads slot SourceIndex of the current closure.
	CaptureFromClosureSlot
)
