package compiler

import (
	"fmt"
	"reflect"

	"github.com/cwbudde/go-exprjit/internal/bytecode"
	"github.com/cwbudde/go-exprjit/internal/closure"
	"github.com/cwbudde/go-exprjit/internal/exprtree"
	"github.com/cwbudde/go-exprjit/internal/host"
)

var anyTypeHandle = reflect.TypeOf(reflect.TypeOf(0))

type emitter struct {
	target     host.EmitterTarget
	refl       host.Reflector
	declared   []*exprtree.Parameter
	info       *closure.ClosureInfo // nil when the lambda captures nothing
	hasClosure bool
}

// Emit appends bytecode for body that leaves its value on the stack.
func Emit(target host.EmitterTarget, refl host.Reflector, body exprtree.Node, declared []*exprtree.Parameter, info *closure.ClosureInfo) error {
	e := &emitter{target: target, refl: refl, declared: declared, info: info, hasClosure: info != nil}
	return e.emit(body)
}

func (e *emitter) emit(n exprtree.Node) error {
	switch v := n.(type) {
	case *exprtree.Parameter:
		return e.emitParameter(v)
	case *exprtree.Constant:
		return e.emitConstant(v)
	case *exprtree.Convert:
		return e.emitConvert(v)
	case *exprtree.ArrayIndex:
		return e.emitArrayIndex(v)
	case *exprtree.New:
		return e.emitNew(v)
	case *exprtree.NewArrayInit:
		return e.emitNewArrayInit(v)
	case *exprtree.MemberInit:
		return e.emitMemberInit(v)
	case *exprtree.Call:
		return e.emitCall(v)
	case *exprtree.MemberAccess:
		return e.emitMemberAccess(v)
	case *exprtree.Lambda:
		return e.emitNestedLambda(v)
	case *exprtree.Invoke:
		return e.emitInvoke(v)
	case *exprtree.Comparison:
		return e.emitComparison(v)
	default:
		return unsupported(ReasonUnrecognizedKind, fmt.Sprintf("%T", n))
	}
}

func (e *emitter) argIndex(k int) int {
	if e.hasClosure {
		return k + 1
	}
	return k
}

func (e *emitter) loadArg(idx int) {
	switch {
	case idx == 0:
		e.target.WriteSimple(bytecode.OpLoadArg0)
	case idx == 1:
		e.target.WriteSimple(bytecode.OpLoadArg1)
	case idx == 2:
		e.target.WriteSimple(bytecode.OpLoadArg2)
	case idx == 3:
		e.target.WriteSimple(bytecode.OpLoadArg3)
	case idx <= 255:
		e.target.WriteOp(bytecode.OpLoadArgS, byte(idx), 0)
	default:
		e.target.WriteOp(bytecode.OpLoadArgW, 0, uint16(idx))
	}
}

func (e *emitter) loadSlot(i int) {
	e.target.WriteOp(bytecode.OpLoadClosureSlot, 0, uint16(i))
}

func (e *emitter) storeSlot(i int) {
	e.target.WriteOp(bytecode.OpStoreClosureSlot, 0, uint16(i))
}

func (e *emitter) pushIntLiteral(n int) {
	switch {
	case n == -1:
		e.target.WriteSimple(bytecode.OpLoadIntM1)
	case n >= 0 && n <= 8:
		e.target.WriteSimple(bytecode.OpCode(int(bytecode.OpLoadInt0) + n))
	case n >= -128 && n <= 127:
		e.target.WriteOp(bytecode.OpLoadIntS, byte(int8(n)), 0)
	default:
		idx := e.target.AddConstant(bytecode.IntValue(int64(n)))
		e.target.WriteOp(bytecode.OpLoadIntW, 0, idx)
	}
}

func (e *emitter) emitParameter(p *exprtree.Parameter) error {
	for k, d := range e.declared {
		if d == p {
			e.loadArg(e.argIndex(k))
			return nil
		}
	}
	if e.info == nil {
		return unsupported(ReasonOrphanCapture, p.Name)
	}
	slot, ok := e.info.ParamSlot(p)
	if !ok {
		return unsupported(ReasonOrphanCapture, p.Name)
	}
	e.loadSlot(slot)
	return nil
}

func isInlineEncodable(refl host.Reflector, c *exprtree.Constant) bool {
	if c.IsNull() {
		return true
	}
	switch c.Typ.Kind() {
	case reflect.Int, reflect.Int64, reflect.Float64, reflect.Bool, reflect.String:
		return true
	}
	if c.Typ == anyTypeHandle {
		return true
	}
	return refl.IsEnum(c.Typ)
}

func (e *emitter) emitConstant(c *exprtree.Constant) error {
	if isInlineEncodable(e.refl, c) {
		return e.emitInlineConstant(c)
	}

	if e.info == nil {
		return unsupported(ReasonOrphanCapture, "constant outside any closure")
	}
	slot, ok := e.info.ConstantSlot(c)
	if !ok {
		return unsupported(ReasonOrphanCapture, "constant not found in closure")
	}
	e.loadSlot(slot)
	if c.Typ == e.refl.AnyType() && c.Value.IsValid() && e.refl.IsValueType(c.Value.Type()) {
		e.target.WriteSimple(bytecode.OpBox)
	}
	return nil
}

func (e *emitter) emitInlineConstant(c *exprtree.Constant) error {
	if c.IsNull() {
		idx := e.target.AddConstant(bytecode.TypeHandleValue(c.Typ))
		e.target.WriteOp(bytecode.OpLoadNull, 0, idx)
		return nil
	}
	switch c.Typ.Kind() {
	case reflect.Bool:
		if c.Value.Bool() {
			e.target.WriteSimple(bytecode.OpLoadTrue)
		} else {
			e.target.WriteSimple(bytecode.OpLoadFalse)
		}
	case reflect.Int, reflect.Int64:
		e.pushIntLiteralWide(c.Value.Int())
	case reflect.Float64:
		idx := e.target.AddConstant(bytecode.FloatValue(c.Value.Float()))
		e.target.WriteOp(bytecode.OpLoadDouble, 0, idx)
	case reflect.String:
		idx := e.target.AddConstant(bytecode.StringValue(c.Value.String()))
		e.target.WriteOp(bytecode.OpLoadString, 0, idx)
	default:
		if c.Typ == anyTypeHandle {
			idx := e.target.AddConstant(bytecode.TypeHandleValue(c.Value.Interface().(reflect.Type)))
			e.target.WriteOp(bytecode.OpLoadTypeHandle, 0, idx)
			return nil
		}
		// enumeration: preserve the exact named type via a general constant load.
		idx := e.target.AddConstant(c.Value)
		e.target.WriteOp(bytecode.OpLoadConst, 0, idx)
	}
	return nil
}

func (e *emitter) pushIntLiteralWide(n int64) {
	switch {
	case n == -1:
		e.target.WriteSimple(bytecode.OpLoadIntM1)
	case n >= 0 && n <= 8:
		e.target.WriteSimple(bytecode.OpCode(int(bytecode.OpLoadInt0) + int(n)))
	case n >= -128 && n <= 127:
		e.target.WriteOp(bytecode.OpLoadIntS, byte(int8(n)), 0)
	default:
		idx := e.target.AddConstant(bytecode.IntValue(n))
		e.target.WriteOp(bytecode.OpLoadIntW, 0, idx)
	}
}

func (e *emitter) emitConvert(v *exprtree.Convert) error {
	if err := e.emit(v.Operand); err != nil {
		return err
	}
	if v.Target == e.refl.AnyType() {
		return unsupported(ReasonConvertToReference, v.Target.String())
	}
	idx := e.target.AddConstant(bytecode.TypeHandleValue(v.Target))
	e.target.WriteOp(bytecode.OpCastClass, 0, idx)
	return nil
}

func (e *emitter) emitArrayIndex(v *exprtree.ArrayIndex) error {
	if err := e.emit(v.Left); err != nil {
		return err
	}
	if err := e.emit(v.Index); err != nil {
		return err
	}
	e.target.WriteSimple(bytecode.OpLdelemRef)
	return nil
}

func (e *emitter) emitNew(v *exprtree.New) error {
	for _, a := range v.Args {
		if err := e.emit(a); err != nil {
			return err
		}
	}
	spec := bytecode.NewObjSpec{Ctor: v.Constructor, ResultType: v.ResultType}
	idx := e.target.AddConstant(bytecode.MetaValue(spec))
	e.target.WriteOp(bytecode.OpNewObj, byte(len(v.Args)), idx)
	return nil
}

// emitNewArrayInit always stores through the reference-element path. In
// this VM an array-slab/array element is already an addressable
// reflect.Value by construction, so the ldelema+stobj pair the spec
// reserves for value-typed elements and stelem.ref for reference-typed
// elements collapse to the same store here; OpLdelemA/OpStobj remain in
// the instruction set for interface completeness but this emitter never
// needs to choose them over OpStelemRef.
func (e *emitter) emitNewArrayInit(v *exprtree.NewArrayInit) error {
	local := e.target.DeclareLocal()

	e.pushIntLiteral(len(v.Elements))
	elemIdx := e.target.AddConstant(bytecode.TypeHandleValue(v.ElemType))
	e.target.WriteOp(bytecode.OpNewArr, 0, elemIdx)
	e.target.WriteOp(bytecode.OpStoreLocal, 0, local)

	for i, el := range v.Elements {
		e.target.WriteOp(bytecode.OpLoadLocal, 0, local)
		e.pushIntLiteral(i)
		if err := e.emit(el); err != nil {
			return err
		}
		e.target.WriteSimple(bytecode.OpStelemRef)
	}
	e.target.WriteOp(bytecode.OpLoadLocal, 0, local)
	return nil
}

func (e *emitter) emitMemberInit(v *exprtree.MemberInit) error {
	if err := e.emitNew(v.New); err != nil {
		return err
	}
	local := e.target.DeclareLocal()
	e.target.WriteOp(bytecode.OpStoreLocal, 0, local)

	for _, bind := range v.Bindings {
		if bind.Kind != exprtree.BindingAssign {
			return unsupported(ReasonNonAssignmentBinding, bind.Member)
		}
		e.target.WriteOp(bytecode.OpLoadLocal, 0, local)
		if err := e.emit(bind.Value); err != nil {
			return err
		}
		prop, ok := e.refl.ResolveProperty(v.New.ResultType, bind.Member)
		if !ok || prop.Setter == nil {
			if ok && prop.Field != nil {
				ref := bytecode.FieldRef{Owner: v.New.ResultType, Name: bind.Member}
				idx := e.target.AddConstant(bytecode.MetaValue(ref))
				e.target.WriteOp(bytecode.OpStoreField, 0, idx)
				continue
			}
			return unsupported(ReasonMissingAccessor, bind.Member)
		}
		if bind.Virtual {
			ref := bytecode.MethodRef{Name: prop.Setter.Name}
			idx := e.target.AddConstant(bytecode.MetaValue(ref))
			e.target.WriteOp(bytecode.OpCallVirt, 2, idx)
			continue
		}
		ref := bytecode.MethodRef{Direct: prop.Setter.Func}
		idx := e.target.AddConstant(bytecode.MetaValue(ref))
		e.target.WriteOp(bytecode.OpCall, 2, idx)
	}
	e.target.WriteOp(bytecode.OpLoadLocal, 0, local)
	return nil
}

func (e *emitter) emitCall(v *exprtree.Call) error {
	if v.Receiver != nil {
		if err := e.emit(v.Receiver); err != nil {
			return err
		}
	}
	for _, a := range v.Args {
		if err := e.emit(a); err != nil {
			return err
		}
	}
	argc := len(v.Args)
	if v.Receiver != nil {
		argc++
	}
	if v.Virtual {
		ref := bytecode.MethodRef{Name: v.Method.Name}
		idx := e.target.AddConstant(bytecode.MetaValue(ref))
		e.target.WriteOp(bytecode.OpCallVirt, byte(argc), idx)
		return nil
	}
	ref := bytecode.MethodRef{Direct: v.Method.Func}
	idx := e.target.AddConstant(bytecode.MetaValue(ref))
	e.target.WriteOp(bytecode.OpCall, byte(argc), idx)
	return nil
}

func (e *emitter) emitMemberAccess(v *exprtree.MemberAccess) error {
	if v.Object == nil {
		ref := bytecode.FieldRef{Owner: v.StaticOwner, Name: v.PropertyName}
		idx := e.target.AddConstant(bytecode.MetaValue(ref))
		e.target.WriteOp(bytecode.OpLoadStaticField, 0, idx)
		return nil
	}
	if err := e.emit(v.Object); err != nil {
		return err
	}
	owner := v.Object.Type()
	prop, ok := e.refl.ResolveProperty(owner, v.PropertyName)
	if ok && prop.Getter != nil {
		if v.Virtual {
			ref := bytecode.MethodRef{Name: prop.Getter.Name}
			idx := e.target.AddConstant(bytecode.MetaValue(ref))
			e.target.WriteOp(bytecode.OpCallVirt, 1, idx)
			return nil
		}
		ref := bytecode.MethodRef{Direct: prop.Getter.Func}
		idx := e.target.AddConstant(bytecode.MetaValue(ref))
		e.target.WriteOp(bytecode.OpCall, 1, idx)
		return nil
	}
	if ok && prop.Field != nil {
		ref := bytecode.FieldRef{Owner: owner, Name: v.PropertyName}
		idx := e.target.AddConstant(bytecode.MetaValue(ref))
		e.target.WriteOp(bytecode.OpLoadField, 0, idx)
		return nil
	}
	return unsupported(ReasonMissingAccessor, v.PropertyName)
}

// emitNestedLambda finds the already-compiled inner callable by node
// identity and threads live outer values into its closure, once per
// execution of the owning frame (see internal/bytecode's OpThreadCapture).
func (e *emitter) emitNestedLambda(l *exprtree.Lambda) error {
	if e.info == nil {
		return unsupported(ReasonNestedUnsupported, "no closure for nested lambda")
	}
	slot, ok := e.info.NestedSlot(l)
	if !ok {
		return unsupported(ReasonNestedUnsupported, "nested lambda not found in closure")
	}
	e.loadSlot(slot)

	var nested *closure.NestedLambdaInfo
	for i := len(e.info.NestedLambdas) - 1; i >= 0; i-- {
		if e.info.NestedLambdas[i].Lambda == l {
			nested = e.info.NestedLambdas[i]
			break
		}
	}
	if nested.Info == nil {
		return nil
	}
	for _, p := range nested.Info.CapturedParams {
		innerSlot, _ := nested.Info.ParamSlot(p)
		cb := bytecode.CaptureBinding{
			InnerClosure: nested.Closure,
			InnerSlot:    innerSlot,
		}
		if k, ok := declaredIndex(e.declared, p); ok {
			cb.SourceKind = bytecode.CaptureFromArg
			cb.SourceIndex = e.argIndex(k)
		} else if outerSlot, ok := e.info.ParamSlot(p); ok {
			cb.SourceKind = bytecode.CaptureFromClosureSlot
			cb.SourceIndex = outerSlot
		} else {
			return unsupported(ReasonOrphanCapture, p.Name)
		}
		idx := e.target.AddCapture(cb)
		e.target.WriteOp(bytecode.OpThreadCapture, 0, idx)
	}
	return nil
}

func declaredIndex(declared []*exprtree.Parameter, p *exprtree.Parameter) (int, bool) {
	for i, d := range declared {
		if d == p {
			return i, true
		}
	}
	return -1, false
}

func (e *emitter) emitInvoke(v *exprtree.Invoke) error {
	if err := e.emit(v.Target); err != nil {
		return err
	}
	for _, a := range v.Args {
		if err := e.emit(a); err != nil {
			return err
		}
	}
	e.target.WriteOp(bytecode.OpInvokeDelegate, byte(len(v.Args)), 0)
	return nil
}

func (e *emitter) emitComparison(v *exprtree.Comparison) error {
	if folded, ok := e.tryFoldComparison(v); ok {
		if folded {
			e.target.WriteSimple(bytecode.OpLoadTrue)
		} else {
			e.target.WriteSimple(bytecode.OpLoadFalse)
		}
		return nil
	}
	if err := e.emit(v.Left); err != nil {
		return err
	}
	if err := e.emit(v.Right); err != nil {
		return err
	}
	switch v.Op {
	case exprtree.CompareEq:
		e.target.WriteSimple(bytecode.OpCeq)
	case exprtree.CompareLt:
		e.target.WriteSimple(bytecode.OpClt)
	case exprtree.CompareGt:
		e.target.WriteSimple(bytecode.OpCgt)
	case exprtree.CompareNe:
		e.target.WriteSimple(bytecode.OpCeq)
		e.target.WriteSimple(bytecode.OpLoadFalse)
		e.target.WriteSimple(bytecode.OpCeq)
	case exprtree.CompareLe:
		e.target.WriteSimple(bytecode.OpCgt)
		e.target.WriteSimple(bytecode.OpLoadFalse)
		e.target.WriteSimple(bytecode.OpCeq)
	case exprtree.CompareGe:
		e.target.WriteSimple(bytecode.OpClt)
		e.target.WriteSimple(bytecode.OpLoadFalse)
		e.target.WriteSimple(bytecode.OpCeq)
	}
	return nil
}

// tryFoldComparison mirrors go-dws's tryFoldBinaryExpression: when both
// operands are already-known literal values, the comparison folds to a
// single bool constant at compile time instead of two loads plus a
// compare opcode.
func (e *emitter) tryFoldComparison(v *exprtree.Comparison) (bool, bool) {
	left, ok := literalValue(e.refl, v.Left)
	if !ok {
		return false, false
	}
	right, ok := literalValue(e.refl, v.Right)
	if !ok {
		return false, false
	}
	return evaluateComparison(v.Op, left, right)
}

// literalValue is the fold candidate check, go-dws's literalValue
// narrowed to the inline-encodable constant kinds this compiler's
// binder already recognizes (see isInlineEncodable); a type-handle
// constant is excluded since it has no ordering/equality this VM folds.
func literalValue(refl host.Reflector, n exprtree.Node) (reflect.Value, bool) {
	c, ok := n.(*exprtree.Constant)
	if !ok || c.IsNull() || c.Typ == anyTypeHandle || !isInlineEncodable(refl, c) {
		return reflect.Value{}, false
	}
	return c.Value, true
}

// evaluateComparison mirrors go-dws's evaluateBinaryComparison.
func evaluateComparison(op exprtree.CompareOp, left, right reflect.Value) (bool, bool) {
	switch op {
	case exprtree.CompareEq:
		return valuesEqualForFold(left, right)
	case exprtree.CompareNe:
		eq, ok := valuesEqualForFold(left, right)
		return !eq, ok
	case exprtree.CompareLt:
		return lessForFold(left, right)
	case exprtree.CompareGt:
		return lessForFold(right, left)
	case exprtree.CompareLe:
		gt, ok := lessForFold(right, left)
		return !gt, ok
	case exprtree.CompareGe:
		lt, ok := lessForFold(left, right)
		return !lt, ok
	default:
		return false, false
	}
}

func valuesEqualForFold(left, right reflect.Value) (bool, bool) {
	switch {
	case left.Kind() == reflect.Bool:
		return left.Bool() == right.Bool(), true
	case left.Kind() == reflect.String:
		return left.String() == right.String(), true
	case left.CanFloat():
		return left.Float() == right.Float(), true
	case left.CanInt():
		return left.Int() == right.Int(), true
	case left.CanUint():
		return left.Uint() == right.Uint(), true
	default:
		return false, false
	}
}

func lessForFold(left, right reflect.Value) (bool, bool) {
	switch {
	case left.Kind() == reflect.String:
		return left.String() < right.String(), true
	case left.CanFloat():
		return left.Float() < right.Float(), true
	case left.CanInt():
		return left.Int() < right.Int(), true
	case left.CanUint():
		return left.Uint() < right.Uint(), true
	default:
		return false, false
	}
}
