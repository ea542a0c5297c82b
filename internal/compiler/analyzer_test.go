package compiler

import (
	"reflect"
	"testing"

	"github.com/cwbudde/go-exprjit/internal/exprtree"
)

func TestBindNoCaptureReturnsNilInfo(t *testing.T) {
	body := &exprtree.Constant{Typ: reflect.TypeOf(int64(0)), Value: reflect.ValueOf(int64(1))}
	info, err := Bind(body, nil, reflector)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info != nil {
		t.Fatalf("expected nil ClosureInfo for an inline-encodable constant, got %+v", info)
	}
}

func TestBindCapturesFreeParameter(t *testing.T) {
	x := &exprtree.Parameter{Typ: reflect.TypeOf(int64(0)), Name: "x"}
	info, err := Bind(x, nil, reflector)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info == nil || len(info.CapturedParams) != 1 || info.CapturedParams[0] != x {
		t.Fatalf("expected x captured exactly once, got %+v", info)
	}
}

func TestBindDedupsRepeatedCapture(t *testing.T) {
	x := &exprtree.Parameter{Typ: reflect.TypeOf(int64(0)), Name: "x"}
	body := &exprtree.Comparison{Left: x, Right: x, Op: exprtree.CompareEq}
	info, err := Bind(body, nil, reflector)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.CapturedParams) != 1 {
		t.Fatalf("expected exactly one captured param slot, got %d", len(info.CapturedParams))
	}
}

func TestBindUnrecognizedKind(t *testing.T) {
	_, err := Bind(unknownNode{}, nil, reflector)
	var unsup *Unsupported
	if err == nil {
		t.Fatal("expected unsupported error")
	}
	if !asUnsupported(err, &unsup) || unsup.Reason != ReasonUnrecognizedKind {
		t.Fatalf("expected ReasonUnrecognizedKind, got %v", err)
	}
}

func TestBindNonAssignmentBindingRejected(t *testing.T) {
	n := &exprtree.New{ResultType: reflect.TypeOf(struct{ X int }{})}
	body := &exprtree.MemberInit{
		New:      n,
		Bindings: []exprtree.Binding{{Member: "X", Kind: exprtree.BindingOther}},
	}
	_, err := Bind(body, nil, reflector)
	var unsup *Unsupported
	if !asUnsupported(err, &unsup) || unsup.Reason != ReasonNonAssignmentBinding {
		t.Fatalf("expected ReasonNonAssignmentBinding, got %v", err)
	}
}

func TestBindNestedLambdaDoesNotRecaptureDeclaredParam(t *testing.T) {
	x := &exprtree.Parameter{Typ: reflect.TypeOf(int64(0)), Name: "x"}
	inner := &exprtree.Lambda{ReturnType: reflect.TypeOf(int64(0)), Body: x}
	info, err := Bind(inner, []*exprtree.Parameter{x}, reflector)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info == nil || len(info.NestedLambdas) != 1 {
		t.Fatalf("expected one nested lambda, got %+v", info)
	}
	if len(info.CapturedParams) != 0 {
		t.Fatalf("x is declared by the outer body, should not be re-captured: %+v", info.CapturedParams)
	}
}

type unknownNode struct{}

func (unknownNode) Kind() exprtree.Kind  { return exprtree.Kind(-1) }
func (unknownNode) Type() reflect.Type { return reflect.TypeOf(0) }

func asUnsupported(err error, target **Unsupported) bool {
	u, ok := err.(*Unsupported)
	if !ok {
		return false
	}
	*target = u
	return true
}
