package cmd

import (
	"reflect"

	"github.com/cwbudde/go-exprjit/internal/exprtree"
)

// Box is a demo reference type with a single public field, standing in
// for the "user reference type with a public field" scenario 3 needs.
type Box struct {
	Field string
}

// Pair is a demo struct type (built by value) with public settable
// fields, standing in for scenario 4's MemberInit target.
type Pair struct {
	First  string
	Second string
}

// Scenario is one named, buildable demo tree from the canonical list of
// compile scenarios this compiler is meant to handle.
type Scenario struct {
	Name        string
	Description string
	Build       func() *exprtree.Lambda
}

var demoScenarios = []Scenario{
	{
		Name:        "constant-return",
		Description: "() => 42",
		Build: func() *exprtree.Lambda {
			return &exprtree.Lambda{
				ReturnType: reflect.TypeOf(int64(0)),
				Body:       &exprtree.Constant{Typ: reflect.TypeOf(int64(0)), Value: reflect.ValueOf(int64(42))},
			}
		},
	},
	{
		Name:        "param-comparison",
		Description: "(x:int) => x == 1",
		Build: func() *exprtree.Lambda {
			x := &exprtree.Parameter{Typ: reflect.TypeOf(int64(0)), Name: "x"}
			return &exprtree.Lambda{
				Params:     []*exprtree.Parameter{x},
				ReturnType: reflect.TypeOf(false),
				Body: &exprtree.Comparison{
					Left:  x,
					Right: &exprtree.Constant{Typ: reflect.TypeOf(int64(0)), Value: reflect.ValueOf(int64(1))},
					Op:    exprtree.CompareEq,
				},
			}
		},
	},
	{
		Name:        "constant-field-access",
		Description: `() => someHeapObject.Field  // Field == "hi"`,
		Build: func() *exprtree.Lambda {
			box := &Box{Field: "hi"}
			boxPtrType := reflect.TypeOf(box)
			c := &exprtree.Constant{Typ: boxPtrType, Value: reflect.ValueOf(box)}
			return &exprtree.Lambda{
				ReturnType: reflect.TypeOf(""),
				Body: &exprtree.MemberAccess{
					Object:       c,
					ResultType:   reflect.TypeOf(""),
					PropertyName: "Field",
				},
			}
		},
	},
	{
		Name:        "member-init",
		Description: `(a, b string) => new Pair{First = a, Second = b}`,
		Build: func() *exprtree.Lambda {
			a := &exprtree.Parameter{Typ: reflect.TypeOf(""), Name: "a"}
			b := &exprtree.Parameter{Typ: reflect.TypeOf(""), Name: "b"}
			pairType := reflect.TypeOf(Pair{})
			n := &exprtree.New{ResultType: pairType}
			return &exprtree.Lambda{
				Params:     []*exprtree.Parameter{a, b},
				ReturnType: pairType,
				Body: &exprtree.MemberInit{
					New: n,
					Bindings: []exprtree.Binding{
						{Member: "First", Value: a, Kind: exprtree.BindingAssign},
						{Member: "Second", Value: b, Kind: exprtree.BindingAssign},
					},
				},
			}
		},
	},
	{
		Name:        "new-array",
		Description: "() => new int[] { 1, 2, 3 }",
		Build: func() *exprtree.Lambda {
			intType := reflect.TypeOf(int64(0))
			lit := func(v int64) exprtree.Node {
				return &exprtree.Constant{Typ: intType, Value: reflect.ValueOf(v)}
			}
			return &exprtree.Lambda{
				ReturnType: reflect.SliceOf(intType),
				Body: &exprtree.NewArrayInit{
					ElemType: intType,
					Elements: []exprtree.Node{lit(1), lit(2), lit(3)},
				},
			}
		},
	},
	{
		Name:        "nested-capture",
		Description: "(x:int) => (() => x)",
		Build: func() *exprtree.Lambda {
			x := &exprtree.Parameter{Typ: reflect.TypeOf(int64(0)), Name: "x"}
			inner := &exprtree.Lambda{ReturnType: reflect.TypeOf(int64(0)), Body: x}
			return &exprtree.Lambda{
				Params:     []*exprtree.Parameter{x},
				ReturnType: inner.Type(),
				Body:       inner,
			}
		},
	},
}
