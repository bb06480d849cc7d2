// Package jsonata implements a JSONata query and transformation engine.
//
// JSONata is a lightweight query and transformation language for JSON
// data, inspired by the location-path semantics of XPath. The engine
// compiles an expression into an immutable AST and evaluates it against a
// JSON input, producing a JSON output.
//
// # Quick Start
//
//	// Compile once, evaluate many times
//	expr, err := jsonata.Compile(`$sum(Account.Order.Product.(Price * Quantity))`)
//	out, err := expr.EvalString(ctx, `{"Account": ...}`)
//
//	// One-shot evaluation of JSON text
//	out, err := jsonata.EvalString(ctx, `"Hello, " & name & "!"`, `{"name":"world"}`)
//
// For full control over the value model and the evaluation arena, use the
// pkg/parser, pkg/value and pkg/evaluator packages directly.
package jsonata

import (
	"context"
	"fmt"

	"github.com/johanventer/jsonata-go/pkg/cache"
	"github.com/johanventer/jsonata-go/pkg/evaluator"
	"github.com/johanventer/jsonata-go/pkg/parser"
	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

// Expr is a compiled expression bound to evaluator options. It is
// arena-agnostic and safe for concurrent use; each evaluation allocates
// its own arena.
type Expr struct {
	compiled *types.Expression
	eval     *evaluator.Evaluator
}

// Compile compiles a JSONata expression for repeated evaluation.
func Compile(src string, opts ...evaluator.EvalOption) (*Expr, error) {
	compiled, err := parser.Compile(src)
	if err != nil {
		return nil, err
	}
	return &Expr{
		compiled: compiled,
		eval:     evaluator.New(opts...),
	}, nil
}

// MustCompile is like Compile but panics on error. It simplifies safe
// initialization of global variables.
func MustCompile(src string, opts ...evaluator.EvalOption) *Expr {
	expr, err := Compile(src, opts...)
	if err != nil {
		panic(fmt.Sprintf("jsonata: Compile(%q): %v", src, err))
	}
	return expr
}

// CompileCached compiles through an expression cache, avoiding a
// re-parse when the same source text is compiled repeatedly.
func CompileCached(src string, c *cache.Cache, opts ...evaluator.EvalOption) (*Expr, error) {
	compiled, err := c.GetOrCompile(src, parser.Compile)
	if err != nil {
		return nil, err
	}
	return &Expr{
		compiled: compiled,
		eval:     evaluator.New(opts...),
	}, nil
}

// AST returns the compiled expression.
func (e *Expr) AST() *types.Expression {
	return e.compiled
}

// Eval evaluates the expression against an already-parsed input value,
// allocating results in arena.
func (e *Expr) Eval(ctx context.Context, arena *value.Arena, input *value.Value) (*value.Value, error) {
	return e.eval.Eval(ctx, e.compiled, arena, input)
}

// EvalString evaluates the expression against a JSON document and
// serializes the result. An Undefined result yields the empty string.
func (e *Expr) EvalString(ctx context.Context, inputJSON string) (string, error) {
	arena := value.NewArena()
	input, err := value.ParseJSON(arena, inputJSON)
	if err != nil {
		return "", err
	}
	result, err := e.eval.Eval(ctx, e.compiled, arena, input)
	if err != nil {
		return "", err
	}
	return value.Serialize(result, false)
}

// EvalString compiles and evaluates in a single call. For repeated
// evaluations of the same expression, use Compile.
func EvalString(ctx context.Context, src, inputJSON string, opts ...evaluator.EvalOption) (string, error) {
	expr, err := Compile(src, opts...)
	if err != nil {
		return "", err
	}
	return expr.EvalString(ctx, inputJSON)
}
