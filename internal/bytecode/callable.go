package bytecode

import "reflect"

// CompiledLambda ties a Chunk to its (already-materialized) closure
// object and the declared Go func signature, and produces the callable
// handed back to the caller. This is the VM-backed stand-in for the
// host's "bind a DynamicMethod to a closure and hand back a delegate"
// step: there, the JIT produces native code; here, reflect.MakeFunc
// produces a genuine Go func value whose body re-enters the VM loop.
type CompiledLambda struct {
	Chunk    *Chunk
	Closure  *ClosureObject
	Sig      reflect.Type
}

// Func returns a Go func value matching Sig. Every invocation re-enters
// the VM; there is no native code generation in this compiler, only
// bytecode interpretation, so "compiled" here means "bound and ready to
// invoke at a fixed argument-shift and slot layout", not "JIT-compiled
// to machine code".
func (cl *CompiledLambda) Func() reflect.Value {
	return reflect.MakeFunc(cl.Sig, func(in []Value) []Value {
		args := in
		if cl.Chunk.HasClosure {
			args = make([]Value, len(in)+1)
			args[0] = reflect.ValueOf(cl.Closure)
			copy(args[1:], in)
		}
		result, err := Run(cl.Chunk, args)
		if err != nil {
			panic(err)
		}
		if cl.Sig.NumOut() == 0 {
			return nil
		}
		if !result.IsValid() {
			return []Value{reflect.Zero(cl.Sig.Out(0))}
		}
		return []Value{result}
	})
}

// Interface is a convenience wrapper returning Func().Interface().
func (cl *CompiledLambda) Interface() any {
	return cl.Func().Interface()
}
