package compiler

import (
	"fmt"
	"reflect"

	"github.com/cwbudde/go-exprjit/internal/closure"
	"github.com/cwbudde/go-exprjit/internal/exprtree"
	"github.com/cwbudde/go-exprjit/internal/host"
)

// binder is the binding analyzer's working state for one compile. It
// recurses into nested lambdas via compileLowLevel (driver.go), which
// lives in this same package precisely so the analyzer can call the
// driver and the driver can call the analyzer without an import cycle —
// the same reason go-dws/internal/bytecode keeps its Compiler's
// analysis-ish state and its emission helpers side by side in one
// package.
type binder struct {
	declared []*exprtree.Parameter
	refl     host.Reflector
	info     *closure.ClosureInfo
	used     bool // true once any slot has been recorded
}

// Bind walks body and returns the ClosureInfo it needs, or nil if body
// captures nothing at all (no closure is materialized in that case).
func Bind(body exprtree.Node, declared []*exprtree.Parameter, refl host.Reflector) (*closure.ClosureInfo, error) {
	b := &binder{declared: declared, refl: refl, info: &closure.ClosureInfo{}}
	if err := b.visit(body); err != nil {
		return nil, err
	}
	if !b.used {
		return nil, nil
	}
	return b.info, nil
}

func (b *binder) isDeclared(p *exprtree.Parameter) bool {
	for _, d := range b.declared {
		if d == p {
			return true
		}
	}
	return false
}

func (b *binder) addConstant(c *exprtree.Constant) {
	if _, ok := b.info.ConstantSlot(c); ok {
		return
	}
	b.info.Constants = append(b.info.Constants, c)
	b.used = true
}

func (b *binder) addCapturedParam(p *exprtree.Parameter) {
	if _, ok := b.info.ParamSlot(p); ok {
		return
	}
	b.info.CapturedParams = append(b.info.CapturedParams, p)
	b.used = true
}

func (b *binder) visit(n exprtree.Node) error {
	switch v := n.(type) {
	case *exprtree.Parameter:
		if !b.isDeclared(v) {
			b.addCapturedParam(v)
		}
		return nil

	case *exprtree.Constant:
		if !b.isInlineEncodable(v) {
			b.addConstant(v)
		}
		return nil

	case *exprtree.Convert:
		return b.visit(v.Operand)

	case *exprtree.ArrayIndex:
		if err := b.visit(v.Left); err != nil {
			return err
		}
		return b.visit(v.Index)

	case *exprtree.New:
		return b.visitArgs(v.Args)

	case *exprtree.NewArrayInit:
		return b.visit2(v.Elements)

	case *exprtree.MemberInit:
		if err := b.visit(v.New); err != nil {
			return err
		}
		for _, bind := range v.Bindings {
			if bind.Kind != exprtree.BindingAssign {
				return unsupported(ReasonNonAssignmentBinding, bind.Member)
			}
			if err := b.visit(bind.Value); err != nil {
				return err
			}
		}
		return nil

	case *exprtree.Call:
		if v.Receiver != nil {
			if err := b.visit(v.Receiver); err != nil {
				return err
			}
		}
		return b.visitArgs(v.Args)

	case *exprtree.MemberAccess:
		if v.Object != nil {
			return b.visit(v.Object)
		}
		return nil

	case *exprtree.Lambda:
		return b.visitNestedLambda(v)

	case *exprtree.Invoke:
		if err := b.visit(v.Target); err != nil {
			return err
		}
		return b.visitArgs(v.Args)

	case *exprtree.Comparison:
		if err := b.visit(v.Left); err != nil {
			return err
		}
		return b.visit(v.Right)

	default:
		return unsupported(ReasonUnrecognizedKind, fmt.Sprintf("%T", n))
	}
}

func (b *binder) visitArgs(args []exprtree.Node) error { return b.visit2(args) }

func (b *binder) visit2(nodes []exprtree.Node) error {
	for _, n := range nodes {
		if err := b.visit(n); err != nil {
			return err
		}
	}
	return nil
}

// isInlineEncodable mirrors spec.md §4.1: null, int, double, bool,
// string, the type-handle type itself, or an enumeration.
func (b *binder) isInlineEncodable(c *exprtree.Constant) bool {
	if c.IsNull() {
		return true
	}
	t := c.Typ
	switch t.Kind() {
	case reflect.Int, reflect.Int64, reflect.Float64, reflect.Bool, reflect.String:
		return true
	}
	if t == reflect.TypeOf(reflect.TypeOf(0)) {
		return true
	}
	return b.refl.IsEnum(t)
}

func (b *binder) visitNestedLambda(l *exprtree.Lambda) error {
	result, err := compileLowLevel(l.Body, l.Params, paramTypes(l.Params), l.ReturnType, b.refl)
	if err != nil {
		return unsupported(ReasonNestedUnsupported, err.Error())
	}

	nested := &closure.NestedLambdaInfo{
		Lambda:   l,
		Info:     result.Info,
		Chunk:    result.Chunk,
		Closure:  result.Closure,
		Callable: result.Callable.Func(),
	}
	b.info.NestedLambdas = append(b.info.NestedLambdas, nested)
	b.used = true

	if result.Info == nil {
		return nil
	}
	for _, p := range result.Info.CapturedParams {
		if !b.isDeclared(p) {
			b.addCapturedParam(p)
		}
	}
	return nil
}

func paramTypes(params []*exprtree.Parameter) []reflect.Type {
	out := make([]reflect.Type, len(params))
	for i, p := range params {
		out[i] = p.Typ
	}
	return out
}
