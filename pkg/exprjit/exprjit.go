// Package exprjit compiles a restricted subset of in-memory expression
// trees (internal/exprtree) directly into invocable Go closures,
// skipping the general-purpose tree evaluator for the common shapes it
// supports. Compile returns ok=false for anything outside that subset
// so callers can fall back to evaluating the tree themselves.
package exprjit

import (
	"reflect"

	"github.com/cwbudde/go-exprjit/internal/compiler"
	"github.com/cwbudde/go-exprjit/internal/exprtree"
)

// Compile attempts the fast path for tree, a top-level Lambda. T must
// match tree's Go func signature (declared parameter types, and a
// single return value if ReturnType is set). Returns ok=false on any
// unsupported node — compilation never panics or returns a partial
// result for well-formed input.
func Compile[T any](tree *exprtree.Lambda) (T, bool) {
	var zero T
	paramTypes := make([]reflect.Type, len(tree.Params))
	for i, p := range tree.Params {
		paramTypes[i] = p.Typ
	}

	result, err := compiler.Compile(tree.Body, tree.Params, paramTypes, tree.ReturnType)
	if err != nil {
		return zero, false
	}

	fn := result.Callable.Interface()
	typed, ok := fn.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// CompileBody is the low-level form used for nested compiles and for
// callers that already have the body/parameter list apart from any
// enclosing Lambda node. It returns the finalized callable as a
// reflect.Value so callers that don't know T at compile time (tests,
// the CLI) can still invoke it via reflect.Value.Call.
func CompileBody(body exprtree.Node, params []*exprtree.Parameter, paramTypes []reflect.Type, returnType reflect.Type) (reflect.Value, bool) {
	result, err := compiler.Compile(body, params, paramTypes, returnType)
	if err != nil {
		return reflect.Value{}, false
	}
	return result.Callable.Func(), true
}
