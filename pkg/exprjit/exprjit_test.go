package exprjit_test

import (
	"reflect"
	"testing"

	"github.com/cwbudde/go-exprjit/internal/exprtree"
	"github.com/cwbudde/go-exprjit/pkg/exprjit"
)

func TestConstantReturn(t *testing.T) {
	tree := &exprtree.Lambda{
		ReturnType: reflect.TypeOf(int64(0)),
		Body:       &exprtree.Constant{Typ: reflect.TypeOf(int64(0)), Value: reflect.ValueOf(int64(42))},
	}
	fn, ok := exprjit.Compile[func() int64](tree)
	if !ok {
		t.Fatal("expected fast path")
	}
	if got := fn(); got != 42 {
		t.Fatalf("got %d want 42", got)
	}
}

func TestParamComparison(t *testing.T) {
	x := &exprtree.Parameter{Typ: reflect.TypeOf(int64(0)), Name: "x"}
	tree := &exprtree.Lambda{
		Params:     []*exprtree.Parameter{x},
		ReturnType: reflect.TypeOf(false),
		Body: &exprtree.Comparison{
			Left:  x,
			Right: &exprtree.Constant{Typ: reflect.TypeOf(int64(0)), Value: reflect.ValueOf(int64(1))},
			Op:    exprtree.CompareEq,
		},
	}
	fn, ok := exprjit.Compile[func(int64) bool](tree)
	if !ok {
		t.Fatal("expected fast path")
	}
	if !fn(1) {
		t.Fatal("expected true for x=1")
	}
	if fn(2) {
		t.Fatal("expected false for x=2")
	}
}

type heapObject struct{ Field string }

func TestConstantFieldAccess(t *testing.T) {
	obj := &heapObject{Field: "hi"}
	tree := &exprtree.Lambda{
		ReturnType: reflect.TypeOf(""),
		Body: &exprtree.MemberAccess{
			Object:       &exprtree.Constant{Typ: reflect.TypeOf(obj), Value: reflect.ValueOf(obj)},
			ResultType:   reflect.TypeOf(""),
			PropertyName: "Field",
		},
	}
	fn, ok := exprjit.Compile[func() string](tree)
	if !ok {
		t.Fatal("expected fast path")
	}
	if got := fn(); got != "hi" {
		t.Fatalf("got %q want %q", got, "hi")
	}
}

type demoPair struct{ First, Second string }

func TestMemberInit(t *testing.T) {
	a := &exprtree.Parameter{Typ: reflect.TypeOf(""), Name: "a"}
	b := &exprtree.Parameter{Typ: reflect.TypeOf(""), Name: "b"}
	pairType := reflect.TypeOf(demoPair{})
	tree := &exprtree.Lambda{
		Params:     []*exprtree.Parameter{a, b},
		ReturnType: pairType,
		Body: &exprtree.MemberInit{
			New: &exprtree.New{ResultType: pairType},
			Bindings: []exprtree.Binding{
				{Member: "First", Value: a, Kind: exprtree.BindingAssign},
				{Member: "Second", Value: b, Kind: exprtree.BindingAssign},
			},
		},
	}
	fn, ok := exprjit.Compile[func(string, string) demoPair](tree)
	if !ok {
		t.Fatal("expected fast path")
	}
	got := fn("x", "y")
	if got.First != "x" || got.Second != "y" {
		t.Fatalf("got %+v", got)
	}
}

func TestNewArray(t *testing.T) {
	intType := reflect.TypeOf(int64(0))
	lit := func(v int64) exprtree.Node {
		return &exprtree.Constant{Typ: intType, Value: reflect.ValueOf(v)}
	}
	tree := &exprtree.Lambda{
		ReturnType: reflect.SliceOf(intType),
		Body:       &exprtree.NewArrayInit{ElemType: intType, Elements: []exprtree.Node{lit(1), lit(2), lit(3)}},
	}
	fn, ok := exprjit.Compile[func() []int64](tree)
	if !ok {
		t.Fatal("expected fast path")
	}
	got := fn()
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestNestedCapture(t *testing.T) {
	x := &exprtree.Parameter{Typ: reflect.TypeOf(int64(0)), Name: "x"}
	inner := &exprtree.Lambda{ReturnType: reflect.TypeOf(int64(0)), Body: x}
	tree := &exprtree.Lambda{
		Params:     []*exprtree.Parameter{x},
		ReturnType: inner.Type(),
		Body:       inner,
	}
	fn, ok := exprjit.Compile[func(int64) func() int64](tree)
	if !ok {
		t.Fatal("expected fast path")
	}
	got7 := fn(7)
	if got7() != 7 {
		t.Fatalf("expected 7")
	}
	got8 := fn(8)
	if got8() != 8 {
		t.Fatalf("expected 8")
	}
}

func TestUnsupportedNodeFallsBack(t *testing.T) {
	tree := &exprtree.Lambda{
		ReturnType: reflect.TypeOf(int64(0)),
		Body:       unsupportedNode{},
	}
	_, ok := exprjit.Compile[func() int64](tree)
	if ok {
		t.Fatal("expected fallback for an unrecognized node kind")
	}
}

type unsupportedNode struct{}

func (unsupportedNode) Kind() exprtree.Kind  { return exprtree.Kind(-1) }
func (unsupportedNode) Type() reflect.Type { return reflect.TypeOf(0) }
