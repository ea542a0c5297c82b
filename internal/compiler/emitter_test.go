package compiler

import (
	"reflect"
	"testing"

	"github.com/cwbudde/go-exprjit/internal/bytecode"
	"github.com/cwbudde/go-exprjit/internal/exprtree"
)

func mustCompile(t *testing.T, body exprtree.Node, params []*exprtree.Parameter, returnType reflect.Type) *Result {
	t.Helper()
	paramTypes := make([]reflect.Type, len(params))
	for i, p := range params {
		paramTypes[i] = p.Typ
	}
	result, err := Compile(body, params, paramTypes, returnType)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return result
}

func TestConstantReturnNoClosure(t *testing.T) {
	body := &exprtree.Constant{Typ: reflect.TypeOf(int64(0)), Value: reflect.ValueOf(int64(42))}
	result := mustCompile(t, body, nil, reflect.TypeOf(int64(0)))
	if result.Closure != nil {
		t.Fatalf("inline-encodable constant should not allocate a closure")
	}
	fn := result.Callable.Func()
	out := fn.Call(nil)
	if out[0].Int() != 42 {
		t.Fatalf("expected 42, got %v", out[0])
	}
}

func TestParamComparisonArgumentShift(t *testing.T) {
	x := &exprtree.Parameter{Typ: reflect.TypeOf(int64(0)), Name: "x"}
	body := &exprtree.Comparison{
		Left:  x,
		Right: &exprtree.Constant{Typ: reflect.TypeOf(int64(0)), Value: reflect.ValueOf(int64(1))},
		Op:    exprtree.CompareEq,
	}
	result := mustCompile(t, body, []*exprtree.Parameter{x}, reflect.TypeOf(false))
	if result.Closure != nil {
		t.Fatalf("no captures expected, closure should be nil")
	}
	fn := result.Callable.Func()
	if got := fn.Call([]reflect.Value{reflect.ValueOf(int64(1))})[0].Bool(); !got {
		t.Fatalf("expected true for x=1")
	}
	if got := fn.Call([]reflect.Value{reflect.ValueOf(int64(2))})[0].Bool(); got {
		t.Fatalf("expected false for x=2")
	}
}

func TestComparisonOfTwoConstantsFolds(t *testing.T) {
	body := &exprtree.Comparison{
		Left:  &exprtree.Constant{Typ: reflect.TypeOf(int64(0)), Value: reflect.ValueOf(int64(1))},
		Right: &exprtree.Constant{Typ: reflect.TypeOf(int64(0)), Value: reflect.ValueOf(int64(2))},
		Op:    exprtree.CompareLt,
	}
	result := mustCompile(t, body, nil, reflect.TypeOf(false))
	if result.Info != nil {
		t.Fatalf("a folded comparison should allocate no closure slots, got %+v", result.Info)
	}
	for _, inst := range result.Chunk.Code {
		if inst.OpCode() == bytecode.OpClt || inst.OpCode() == bytecode.OpCeq || inst.OpCode() == bytecode.OpCgt {
			t.Fatalf("expected the comparison to fold away, found %s in %v", inst.OpCode(), result.Chunk.Code)
		}
	}
	if got := result.Callable.Func().Call(nil)[0].Bool(); !got {
		t.Fatal("expected 1 < 2 to fold to true")
	}
}

type box struct{ Field string }

func TestConstantFieldAccessAllocatesOneSlot(t *testing.T) {
	obj := &box{Field: "hi"}
	c := &exprtree.Constant{Typ: reflect.TypeOf(obj), Value: reflect.ValueOf(obj)}
	body := &exprtree.MemberAccess{Object: c, ResultType: reflect.TypeOf(""), PropertyName: "Field"}
	result := mustCompile(t, body, nil, reflect.TypeOf(""))
	if result.Info == nil || len(result.Info.Constants) != 1 {
		t.Fatalf("expected exactly one constant slot, got %+v", result.Info)
	}
	fn := result.Callable.Func()
	if got := fn.Call(nil)[0].String(); got != "hi" {
		t.Fatalf("expected \"hi\", got %q", got)
	}
}

type pair struct{ First, Second string }

func TestMemberInitAssignsFields(t *testing.T) {
	a := &exprtree.Parameter{Typ: reflect.TypeOf(""), Name: "a"}
	b := &exprtree.Parameter{Typ: reflect.TypeOf(""), Name: "b"}
	pairType := reflect.TypeOf(pair{})
	body := &exprtree.MemberInit{
		New: &exprtree.New{ResultType: pairType},
		Bindings: []exprtree.Binding{
			{Member: "First", Value: a, Kind: exprtree.BindingAssign},
			{Member: "Second", Value: b, Kind: exprtree.BindingAssign},
		},
	}
	result := mustCompile(t, body, []*exprtree.Parameter{a, b}, pairType)
	fn := result.Callable.Func()
	out := fn.Call([]reflect.Value{reflect.ValueOf("x"), reflect.ValueOf("y")})[0].Interface().(pair)
	if out.First != "x" || out.Second != "y" {
		t.Fatalf("got %+v", out)
	}
}

type labeledBox struct{ Label string }

func (b *labeledBox) SetLabel(v string) { b.Label = v }

func TestMemberInitDispatchesVirtualSetter(t *testing.T) {
	s := &exprtree.Parameter{Typ: reflect.TypeOf(""), Name: "s"}
	ptrType := reflect.TypeOf((*labeledBox)(nil))
	ctor := reflect.ValueOf(func() *labeledBox { return &labeledBox{} })
	body := &exprtree.MemberInit{
		New: &exprtree.New{Constructor: ctor, ResultType: ptrType},
		Bindings: []exprtree.Binding{
			{Member: "Label", Value: s, Kind: exprtree.BindingAssign, Virtual: true},
		},
	}
	result := mustCompile(t, body, []*exprtree.Parameter{s}, ptrType)
	fn := result.Callable.Func()
	out := fn.Call([]reflect.Value{reflect.ValueOf("hello")})[0].Interface().(*labeledBox)
	if out.Label != "hello" {
		t.Fatalf("got %+v, want Label=hello", out)
	}
}

func TestNewArrayInitReturnsFreshSlice(t *testing.T) {
	intType := reflect.TypeOf(int64(0))
	lit := func(v int64) exprtree.Node {
		return &exprtree.Constant{Typ: intType, Value: reflect.ValueOf(v)}
	}
	body := &exprtree.NewArrayInit{ElemType: intType, Elements: []exprtree.Node{lit(1), lit(2), lit(3)}}
	result := mustCompile(t, body, nil, reflect.SliceOf(intType))
	fn := result.Callable.Func()
	got := fn.Call(nil)[0].Interface().([]int64)
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

func TestNestedLambdaCapturesPerConstruction(t *testing.T) {
	x := &exprtree.Parameter{Typ: reflect.TypeOf(int64(0)), Name: "x"}
	inner := &exprtree.Lambda{ReturnType: reflect.TypeOf(int64(0)), Body: x}
	result := mustCompile(t, inner, []*exprtree.Parameter{x}, inner.Type())
	fn := result.Callable.Func()

	first := fn.Call([]reflect.Value{reflect.ValueOf(int64(7))})[0]
	if got := first.Call(nil)[0].Int(); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}

	second := fn.Call([]reflect.Value{reflect.ValueOf(int64(8))})[0]
	if got := second.Call(nil)[0].Int(); got != 8 {
		t.Fatalf("expected 8, got %d", got)
	}
	// the first callable's captured value is overwritten in place, not
	// preserved per construction, matching scenario 6's documented
	// per-construction (not per-closure) capture semantics.
	if got := first.Call(nil)[0].Int(); got != 8 {
		t.Fatalf("expected the first callable to observe the overwritten value 8, got %d", got)
	}
}

func TestIdempotentRecompile(t *testing.T) {
	x := &exprtree.Parameter{Typ: reflect.TypeOf(int64(0)), Name: "x"}
	body := &exprtree.Comparison{Left: x, Right: x, Op: exprtree.CompareEq}
	r1 := mustCompile(t, body, []*exprtree.Parameter{x}, reflect.TypeOf(false))
	r2 := mustCompile(t, body, []*exprtree.Parameter{x}, reflect.TypeOf(false))
	in := []reflect.Value{reflect.ValueOf(int64(3))}
	if r1.Callable.Func().Call(in)[0].Bool() != r2.Callable.Func().Call(in)[0].Bool() {
		t.Fatalf("two compiles of the same tree produced different outputs")
	}
}
