package bytecode

import (
	"fmt"
	"reflect"
)

// RuntimeError is a failure raised while executing a Chunk, as opposed
// to one raised by the analyzer or emitter before any code ran.
type RuntimeError struct {
	Chunk  string
	Offset int
	Op     OpCode
	Msg    string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s at %s+%d", e.Chunk, e.Msg, e.Op, e.Offset)
}

// frame is one execution of a Chunk: its argument list, local slots and
// evaluation stack. Frames are not reused across calls — there is no
// call stack of frames here since this VM never emits a CALL into
// another Chunk; OpCall/OpCallVirt/OpInvokeDelegate always dispatch to
// host Go functions via reflection, never recurse into the interpreter.
type frame struct {
	chunk  *Chunk
	args   []Value
	locals []Value
	stack  []Value
}

func (f *frame) push(v Value) { f.stack = append(f.stack, v) }

func (f *frame) pop() Value {
	n := len(f.stack) - 1
	v := f.stack[n]
	f.stack = f.stack[:n]
	return v
}

func (f *frame) popN(n int) []Value {
	out := make([]Value, n)
	copy(out, f.stack[len(f.stack)-n:])
	f.stack = f.stack[:len(f.stack)-n]
	return out
}

// Run executes chunk against args (args[0] is the closure value when
// chunk.HasClosure) and returns the single value OpRet produced.
func Run(chunk *Chunk, args []Value) (Value, error) {
	f := &frame{
		chunk:  chunk,
		args:   args,
		locals: make([]Value, chunk.LocalCount),
	}
	return f.run()
}

func (f *frame) closure() *ClosureObject {
	co, _ := f.args[0].Interface().(*ClosureObject)
	return co
}

func (f *frame) run() (Value, error) {
	c := f.chunk
	pc := 0
	for pc < len(c.Code) {
		inst := c.Code[pc]
		op := inst.OpCode()
		switch op {
		case OpLoadConst:
			f.push(c.Constants[inst.B()])
		case OpLoadConst0:
			f.push(c.Constants[0])
		case OpLoadConst1:
			f.push(c.Constants[1])

		case OpLoadArg0:
			f.push(f.args[0])
		case OpLoadArg1:
			f.push(f.args[1])
		case OpLoadArg2:
			f.push(f.args[2])
		case OpLoadArg3:
			f.push(f.args[3])
		case OpLoadArgS:
			f.push(f.args[inst.A()])
		case OpLoadArgW:
			f.push(f.args[inst.B()])

		case OpLoadLocal:
			f.push(f.locals[inst.B()])
		case OpStoreLocal:
			f.locals[inst.B()] = f.pop()

		case OpLoadClosureSlot:
			f.push(f.closure().Get(int(inst.B())))
		case OpStoreClosureSlot:
			f.closure().Set(int(inst.B()), f.pop())

		case OpLoadField:
			ref := c.Constants[inst.B()].Interface().(FieldRef)
			receiver := f.pop()
			f.push(loadNamedField(receiver, ref.Name))
		case OpStoreField:
			ref := c.Constants[inst.B()].Interface().(FieldRef)
			val := f.pop()
			receiver := f.pop()
			storeNamedField(receiver, ref.Name, val)

		case OpLoadStaticField:
			ref := c.Constants[inst.B()].Interface().(FieldRef)
			v, err := loadStaticField(ref)
			if err != nil {
				return Value{}, f.err(pc, op, err.Error())
			}
			f.push(v)

		case OpLoadNull:
			f.push(ZeroValue(c.Constants[inst.B()].Interface().(reflect.Type)))
		case OpLoadTrue:
			f.push(BoolValue(true))
		case OpLoadFalse:
			f.push(BoolValue(false))

		case OpLoadIntM1:
			f.push(IntValue(-1))
		case OpLoadInt0, OpLoadInt1, OpLoadInt2, OpLoadInt3, OpLoadInt4,
			OpLoadInt5, OpLoadInt6, OpLoadInt7, OpLoadInt8:
			f.push(IntValue(int64(op - OpLoadInt0)))
		case OpLoadIntS:
			f.push(IntValue(int64(int8(inst.A()))))
		case OpLoadIntW:
			f.push(c.Constants[inst.B()])
		case OpLoadDouble:
			f.push(c.Constants[inst.B()])
		case OpLoadString:
			f.push(c.Constants[inst.B()])
		case OpLoadTypeHandle:
			f.push(c.Constants[inst.B()])

		case OpBox:
			// No-op: every Value here is already an interface-shaped
			// reflect.Value, so there is no separate boxed representation
			// to convert into.

		case OpCastClass:
			target := c.Constants[inst.B()].Interface().(reflect.Type)
			v := f.pop()
			if !v.IsValid() || !v.Type().AssignableTo(target) {
				if v.IsValid() && v.Type().ConvertibleTo(target) {
					f.push(v.Convert(target))
					break
				}
				return Value{}, f.err(pc, op, fmt.Sprintf("cannot cast %v to %v", typeOf(v), target))
			}
			f.push(v)

		case OpNewArr:
			elemType := c.Constants[inst.B()].Interface().(reflect.Type)
			n := f.pop()
			slice := reflect.MakeSlice(reflect.SliceOf(elemType), int(n.Int()), int(n.Int()))
			f.push(slice)

		case OpLdelemRef, OpLdelemA:
			idx := f.pop()
			arr := f.pop()
			f.push(arr.Index(int(idx.Int())))

		case OpStelemRef, OpStobj:
			val := f.pop()
			idx := f.pop()
			arr := f.pop()
			arr.Index(int(idx.Int())).Set(val)

		case OpNewObj:
			spec := c.Constants[inst.B()].Interface().(NewObjSpec)
			argv := f.popN(int(inst.A()))
			if !spec.Ctor.IsValid() {
				f.push(reflect.New(spec.ResultType).Elem())
				break
			}
			results := spec.Ctor.Call(argv)
			addr := reflect.New(spec.ResultType).Elem()
			addr.Set(results[0])
			f.push(addr)

		case OpCall, OpCallVirt:
			ref := c.Constants[inst.B()].Interface().(MethodRef)
			argc := int(inst.A())
			argv := f.popN(argc)
			var results []Value
			if op == OpCallVirt {
				receiver := argv[0]
				method := receiver.MethodByName(ref.Name)
				results = method.Call(argv[1:])
			} else {
				results = ref.Direct.Call(argv)
			}
			if len(results) > 0 {
				f.push(results[0])
			}

		case OpInvokeDelegate:
			argc := int(inst.A())
			argv := f.popN(argc)
			target := f.pop()
			results := target.Call(argv)
			if len(results) > 0 {
				f.push(results[0])
			}

		case OpThreadCapture:
			cb := c.Captures[inst.B()]
			var v Value
			switch cb.SourceKind {
			case CaptureFromArg:
				v = f.args[cb.SourceIndex]
			case CaptureFromClosureSlot:
				v = f.closure().Get(cb.SourceIndex)
			}
			if cb.BoxAsAny {
				boxed := reflect.New(anyType).Elem()
				boxed.Set(v)
				v = boxed
			}
			cb.InnerClosure.Set(cb.InnerSlot, v)

		case OpCeq:
			b := f.pop()
			a := f.pop()
			eq, err := compareEq(a, b)
			if err != nil {
				return Value{}, f.err(pc, op, err.Error())
			}
			f.push(BoolValue(eq))
		case OpClt:
			b := f.pop()
			a := f.pop()
			lt, err := compareLess(a, b)
			if err != nil {
				return Value{}, f.err(pc, op, err.Error())
			}
			f.push(BoolValue(lt))
		case OpCgt:
			b := f.pop()
			a := f.pop()
			lt, err := compareLess(b, a)
			if err != nil {
				return Value{}, f.err(pc, op, err.Error())
			}
			f.push(BoolValue(lt))

		case OpDup:
			top := f.stack[len(f.stack)-1]
			f.push(top)

		case OpRet:
			if len(f.stack) == 0 {
				return Value{}, nil
			}
			return f.pop(), nil

		default:
			return Value{}, f.err(pc, op, "unimplemented opcode")
		}
		pc++
	}
	return Value{}, nil
}

func (f *frame) err(pc int, op OpCode, msg string) *RuntimeError {
	return &RuntimeError{Chunk: f.chunk.Name, Offset: pc, Op: op, Msg: msg}
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

func typeOf(v Value) reflect.Type {
	if !v.IsValid() {
		return nil
	}
	return v.Type()
}

func loadNamedField(receiver Value, name string) Value {
	if receiver.Kind() == reflect.Ptr {
		receiver = receiver.Elem()
	}
	return receiver.FieldByName(name)
}

func storeNamedField(receiver Value, name string, val Value) {
	if receiver.Kind() == reflect.Ptr {
		receiver = receiver.Elem()
	}
	receiver.FieldByName(name).Set(val)
}

// loadStaticField resolves a static member the same way a property
// getter is resolved: Go has no class-level storage, so a static field
// must be exposed as a zero-argument "Get<Name>" method on the type
// itself (a method with a nil/zero receiver, the idiomatic Go stand-in
// for a static accessor).
func loadStaticField(ref FieldRef) (Value, error) {
	getter, ok := ref.Owner.MethodByName("Get" + ref.Name)
	if !ok {
		return Value{}, fmt.Errorf("no static accessor Get%s on %v", ref.Name, ref.Owner)
	}
	results := getter.Func.Call([]Value{reflect.Zero(ref.Owner)})
	return results[0], nil
}

func compareEq(a, b Value) (bool, error) {
	if IsNilLike(a) || IsNilLike(b) {
		return IsNilLike(a) == IsNilLike(b), nil
	}
	return a.Interface() == b.Interface(), nil
}

func compareLess(a, b Value) (bool, error) {
	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() < b.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return a.Uint() < b.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return a.Float() < b.Float(), nil
	case reflect.String:
		return a.String() < b.String(), nil
	default:
		return false, fmt.Errorf("type %v is not ordered", a.Type())
	}
}
