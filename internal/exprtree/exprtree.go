// Package exprtree is the in-memory expression-tree data model the
// compiler consumes. It plays the role the host runtime's expression
// tree plays in the original design: a discriminated node tree with a
// static type and kind-specific typed operand accessors. It is deliberately
// narrow — only the node kinds this compiler supports exist here at all;
// anything else belongs to the general-purpose tree the fast path falls
// back from.
package exprtree

import "reflect"

// Kind discriminates a Node's concrete shape.
type Kind int

const (
	KindParameter Kind = iota
	KindConstant
	KindConvert
	KindArrayIndex
	KindNew
	KindNewArrayInit
	KindMemberInit
	KindCall
	KindMemberAccess
	KindLambda
	KindInvoke
	KindComparison
)

func (k Kind) String() string {
	switch k {
	case KindParameter:
		return "Parameter"
	case KindConstant:
		return "Constant"
	case KindConvert:
		return "Convert"
	case KindArrayIndex:
		return "ArrayIndex"
	case KindNew:
		return "New"
	case KindNewArrayInit:
		return "NewArrayInit"
	case KindMemberInit:
		return "MemberInit"
	case KindCall:
		return "Call"
	case KindMemberAccess:
		return "MemberAccess"
	case KindLambda:
		return "Lambda"
	case KindInvoke:
		return "Invoke"
	case KindComparison:
		return "Comparison"
	default:
		return "Unknown"
	}
}

// Node is any expression-tree node this compiler understands. Node
// identity (for capture dedup and nested-lambda lookup) is Go pointer
// identity of the concrete value implementing this interface.
type Node interface {
	Kind() Kind
	Type() reflect.Type
}

// Parameter is a formal parameter or a reference to one. The same
// *Parameter value is shared between a Lambda's declared parameter list
// and every Node in its body that refers to it — identity, not name,
// is what binding analysis keys on.
type Parameter struct {
	Typ  reflect.Type
	Name string
}

func (p *Parameter) Kind() Kind        { return KindParameter }
func (p *Parameter) Type() reflect.Type { return p.Typ }

// Constant is a literal value baked into the tree at build time.
type Constant struct {
	Typ   reflect.Type
	Value reflect.Value
}

func (c *Constant) Kind() Kind        { return KindConstant }
func (c *Constant) Type() reflect.Type { return c.Typ }

// IsNull reports whether the constant's value is a nil/zero reference.
func (c *Constant) IsNull() bool {
	if !c.Value.IsValid() {
		return true
	}
	switch c.Value.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return c.Value.IsNil()
	default:
		return false
	}
}

// Convert is a reference upcast/downcast to Target.
type Convert struct {
	Operand Node
	Target  reflect.Type
}

func (c *Convert) Kind() Kind        { return KindConvert }
func (c *Convert) Type() reflect.Type { return c.Target }

// ArrayIndex reads Left[Index].
type ArrayIndex struct {
	Left     Node
	Index    Node
	ElemType reflect.Type
}

func (a *ArrayIndex) Kind() Kind        { return KindArrayIndex }
func (a *ArrayIndex) Type() reflect.Type { return a.ElemType }

// New constructs a value of ResultType, optionally via Constructor (a
// func(args...) ResultType value); when Constructor is the zero Value,
// construction is the type's zero value.
type New struct {
	Constructor reflect.Value
	ResultType  reflect.Type
	Args        []Node
}

func (n *New) Kind() Kind        { return KindNew }
func (n *New) Type() reflect.Type { return n.ResultType }

// NewArrayInit constructs a fresh slice of ElemType from Elements.
type NewArrayInit struct {
	ElemType Type
	Elements []Node
}

// Type is an alias kept local so callers don't need to import reflect
// just to build a NewArrayInit literal.
type Type = reflect.Type

func (n *NewArrayInit) Kind() Kind        { return KindNewArrayInit }
func (n *NewArrayInit) Type() reflect.Type { return reflect.SliceOf(n.ElemType) }

// BindingKind discriminates a MemberInit binding. Only BindingAssign is
// supported; any other kind (e.g. a method-call-style binding) must be
// rejected by the analyzer.
type BindingKind int

const (
	BindingAssign BindingKind = iota
	BindingOther
)

// Binding is one member-init binding (Member = Value when Kind is
// BindingAssign). Virtual mirrors Call/MemberAccess's: the property
// setter is dispatched through the receiver's dynamic type when set,
// direct otherwise.
type Binding struct {
	Value   Node
	Member  string
	Kind    BindingKind
	Virtual bool
}

// MemberInit is `new Obj{ Field1 = v1, Field2 = v2 }`: a New followed by
// assignment-only bindings. Any binding that is not a plain assignment is
// unsupported and must be rejected by the analyzer.
type MemberInit struct {
	New      *New
	Bindings []Binding
}

func (m *MemberInit) Kind() Kind        { return KindMemberInit }
func (m *MemberInit) Type() reflect.Type { return m.New.ResultType }

// Call invokes Method on Receiver (nil Receiver means a static method).
// Virtual selects dispatch-through-dynamic-type (Go's natural method-value
// dispatch) versus a direct, non-virtual call bound to the declared type.
type Call struct {
	Receiver   Node
	ResultType reflect.Type
	Method     reflect.Method
	Args       []Node
	Virtual    bool
}

func (c *Call) Kind() Kind        { return KindCall }
func (c *Call) Type() reflect.Type { return c.ResultType }

// MemberAccess reads a field or property. Object is nil for a static
// member, in which case StaticOwner names the declaring type.
type MemberAccess struct {
	Object      Node
	StaticOwner reflect.Type
	ResultType  reflect.Type
	PropertyName string
	Virtual     bool
}

func (m *MemberAccess) Kind() Kind        { return KindMemberAccess }
func (m *MemberAccess) Type() reflect.Type { return m.ResultType }

// Lambda is both the top-level compile request and, as an operand inside
// another Lambda's body, a nested-lambda expression.
type Lambda struct {
	Body       Node
	ReturnType reflect.Type
	Params     []*Parameter
}

func (l *Lambda) Kind() Kind { return KindLambda }
func (l *Lambda) Type() reflect.Type {
	in := make([]reflect.Type, len(l.Params))
	for i, p := range l.Params {
		in[i] = p.Typ
	}
	out := []reflect.Type{}
	if l.ReturnType != nil {
		out = append(out, l.ReturnType)
	}
	return reflect.FuncOf(in, out, false)
}

// Invoke calls a delegate-valued Target with Args.
type Invoke struct {
	Target     Node
	ResultType reflect.Type
	Args       []Node
}

func (i *Invoke) Kind() Kind        { return KindInvoke }
func (i *Invoke) Type() reflect.Type { return i.ResultType }

// CompareOp is one of the six supported numeric/comparable comparisons.
type CompareOp int

const (
	CompareLt CompareOp = iota
	CompareLe
	CompareGt
	CompareGe
	CompareEq
	CompareNe
)

// Comparison is one of the six supported binary comparisons.
type Comparison struct {
	Left  Node
	Right Node
	Op    CompareOp
}

func (c *Comparison) Kind() Kind        { return KindComparison }
func (c *Comparison) Type() reflect.Type { return reflect.TypeOf(false) }
