// Package compiler is the two-pass pipeline: analyzer.go walks the tree
// to produce a ClosureInfo, emitter.go walks it again to produce
// bytecode, driver.go orchestrates the two passes and finalizes a
// callable bound to the materialized closure.
package compiler

import (
	"reflect"

	"github.com/cwbudde/go-exprjit/internal/bytecode"
	"github.com/cwbudde/go-exprjit/internal/closure"
	"github.com/cwbudde/go-exprjit/internal/exprtree"
	"github.com/cwbudde/go-exprjit/internal/host"
)

// Result is the output of one low-level compile: the chunk, the
// (possibly nil) closure object and binding info, and the finalized
// callable bound to that closure.
type Result struct {
	Chunk    *bytecode.Chunk
	Closure  *bytecode.ClosureObject
	Info     *closure.ClosureInfo
	Callable *bytecode.CompiledLambda
}

var reflector host.Reflector = host.Reflection{}

// Compile is the public low-level entry point: body/declaredParams describe
// the lambda, paramTypes/returnType fix its Go func signature.
func Compile(body exprtree.Node, declaredParams []*exprtree.Parameter, paramTypes []reflect.Type, returnType reflect.Type) (*Result, error) {
	return compileLowLevel(body, declaredParams, paramTypes, returnType, reflector)
}

// compileLowLevel implements spec.md §4.4's six steps. It is also the
// recursion target the analyzer calls into for nested lambdas (see
// analyzer.go's visitNestedLambda) — both live in this package so that
// recursion needs no forward declaration across package boundaries.
func compileLowLevel(body exprtree.Node, declaredParams []*exprtree.Parameter, paramTypes []reflect.Type, returnType reflect.Type, refl host.Reflector) (*Result, error) {
	// 1. Binding analysis.
	info, err := Bind(body, declaredParams, refl)
	if err != nil {
		return nil, err
	}

	// 2. Closure materialization.
	var closureObj *bytecode.ClosureObject
	if info != nil {
		closureObj = closure.Materialize(info)
	}

	// 3. Fresh emitter target with the declared signature.
	chunk := bytecode.NewChunk("lambda")
	chunk.ArgCount = len(declaredParams)
	chunk.HasClosure = info != nil

	// 4. Emission.
	if err := Emit(chunk, refl, body, declaredParams, info); err != nil {
		return nil, err
	}

	// 5. Return.
	chunk.WriteSimple(bytecode.OpRet)

	// 6. Finalize as callable.
	sig := funcSignature(paramTypes, returnType)
	callable := &bytecode.CompiledLambda{Chunk: chunk, Closure: closureObj, Sig: sig}

	return &Result{Chunk: chunk, Closure: closureObj, Info: info, Callable: callable}, nil
}

func funcSignature(paramTypes []reflect.Type, returnType reflect.Type) reflect.Type {
	out := []reflect.Type{}
	if returnType != nil {
		out = append(out, returnType)
	}
	return reflect.FuncOf(paramTypes, out, false)
}
