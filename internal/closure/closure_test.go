package closure_test

import (
	"reflect"
	"testing"

	"github.com/cwbudde/go-exprjit/internal/closure"
	"github.com/cwbudde/go-exprjit/internal/exprtree"
)

func constInfo(n int) *closure.ClosureInfo {
	info := &closure.ClosureInfo{}
	for i := 0; i < n; i++ {
		info.Constants = append(info.Constants, &exprtree.Constant{
			Typ:   reflect.TypeOf(int64(0)),
			Value: reflect.ValueOf(int64(i)),
		})
	}
	return info
}

func TestMaterializeFixedArity(t *testing.T) {
	info := constInfo(3)
	obj := closure.Materialize(info)
	if obj.IsArraySlab() {
		t.Fatal("expected the fixed-arity form for 3 slots")
	}
	if obj.Len() != 3 {
		t.Fatalf("got %d slots, want 3", obj.Len())
	}
	if obj.Get(1).Int() != 1 {
		t.Fatalf("slot 1 = %v, want 1", obj.Get(1))
	}
}

func TestMaterializeArraySlab(t *testing.T) {
	info := constInfo(closure.MaxFixed + 1)
	obj := closure.Materialize(info)
	if !obj.IsArraySlab() {
		t.Fatal("expected the array-slab form above MaxFixed")
	}
	if obj.Len() != closure.MaxFixed+1 {
		t.Fatalf("got %d slots", obj.Len())
	}
}

func TestSlotOrderingConstantsThenParamsThenNested(t *testing.T) {
	p := &exprtree.Parameter{Typ: reflect.TypeOf(""), Name: "p"}
	l := &exprtree.Lambda{ReturnType: reflect.TypeOf(0)}
	info := &closure.ClosureInfo{
		Constants:      []*exprtree.Constant{{Typ: reflect.TypeOf(int64(0)), Value: reflect.ValueOf(int64(1))}},
		CapturedParams: []*exprtree.Parameter{p},
		NestedLambdas:  []*closure.NestedLambdaInfo{{Lambda: l, Callable: reflect.ValueOf(func() int { return 0 })}},
	}
	if slot, _ := info.ConstantSlot(info.Constants[0]); slot != 0 {
		t.Fatalf("constant slot = %d, want 0", slot)
	}
	if slot, _ := info.ParamSlot(p); slot != 1 {
		t.Fatalf("param slot = %d, want 1", slot)
	}
	if slot, _ := info.NestedSlot(l); slot != 2 {
		t.Fatalf("nested slot = %d, want 2", slot)
	}
}
