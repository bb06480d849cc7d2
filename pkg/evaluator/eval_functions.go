package evaluator

import (
	"fmt"

	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

// evalCall evaluates a function call: the callee, then the arguments left
// to right, then the application. A call in tail position of a lambda
// body returns a thunk for the caller's trampoline instead of recursing.
func (s *state) evalCall(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	callee, err := s.eval(node.LHS, input, env)
	if err != nil {
		return nil, err
	}
	if !callee.IsCallable() {
		return nil, types.NewError(types.ErrInvokedNonFunction,
			"attempted to invoke a non-function", node.Position)
	}

	args := make([]*value.Value, len(node.Arguments))
	for i, argNode := range node.Arguments {
		if args[i], err = s.eval(argNode, input, env); err != nil {
			return nil, err
		}
	}

	if node.Tail {
		if lambda, ok := callee.Callable().(*Lambda); ok {
			return s.arena.Callable(value.KindLambda, &thunk{lambda: lambda, args: args}), nil
		}
	}

	return s.apply(callee, args, input, node.Position)
}

// apply dispatches a call to a lambda, a built-in, or a partial
// application.
func (s *state) apply(callee *value.Value, args []*value.Value, input *value.Value, pos int) (*value.Value, error) {
	switch fn := callee.Callable().(type) {
	case *Lambda:
		return s.callLambda(fn, args)
	case *NativeFn:
		return s.callNative(fn, args, input, pos)
	case *partial:
		return s.callPartial(fn, args, input, pos)
	default:
		return nil, types.NewError(types.ErrInvokedNonFunction,
			"attempted to invoke a non-function", pos)
	}
}

// callLambda applies a lambda and trampolines tail calls: while the body
// returns a thunk, the loop re-applies it without growing the Go stack.
// Parameters bind positionally; missing arguments are Undefined and extra
// ones are ignored.
func (s *state) callLambda(lambda *Lambda, args []*value.Value) (*value.Value, error) {
	for {
		frame := NewFrame(lambda.Env)
		for i, param := range lambda.Params {
			if i < len(args) {
				frame.Bind(param, args[i])
			} else {
				frame.Bind(param, value.Undefined())
			}
		}

		result, err := s.eval(lambda.Body, lambda.Input, frame)
		if err != nil {
			return nil, err
		}

		if th, ok := result.Callable().(*thunk); ok {
			lambda, args = th.lambda, th.args
			continue
		}
		return result, nil
	}
}

// callNative applies a built-in. When the built-in opts into context
// substitution and the call site passed one argument fewer than the
// minimum, the current context is prepended.
func (s *state) callNative(fn *NativeFn, args []*value.Value, input *value.Value, pos int) (*value.Value, error) {
	if fn.AcceptsContext && len(args) == fn.MinArgs-1 {
		args = append([]*value.Value{input}, args...)
	}

	if len(args) < fn.MinArgs {
		return nil, types.NewError(types.ErrBadArgument,
			fmt.Sprintf("$%s expects at least %d arguments, got %d", fn.Name, fn.MinArgs, len(args)), pos)
	}
	if fn.MaxArgs >= 0 && len(args) > fn.MaxArgs {
		return nil, types.NewError(types.ErrBadArgument,
			fmt.Sprintf("$%s expects at most %d arguments, got %d", fn.Name, fn.MaxArgs, len(args)), pos)
	}

	return fn.Impl(s, pos, args)
}

// callPartial fills the holes of a partial application left to right and
// applies the target.
func (s *state) callPartial(p *partial, args []*value.Value, input *value.Value, pos int) (*value.Value, error) {
	full := make([]*value.Value, len(p.args))
	next := 0
	for i, bound := range p.args {
		if bound != nil {
			full[i] = bound
			continue
		}
		if next < len(args) {
			full[i] = args[next]
			next++
		} else {
			full[i] = value.Undefined()
		}
	}
	full = append(full, args[next:]...)
	return s.apply(p.target, full, input, pos)
}

// evalPartial evaluates f(a, ?, c): the callee and the bound arguments
// evaluate now, the holes become parameters of the derived function.
func (s *state) evalPartial(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	callee, err := s.eval(node.LHS, input, env)
	if err != nil {
		return nil, err
	}
	if !callee.IsCallable() {
		return nil, types.NewError(types.ErrInvokedNonFunction,
			"attempted to partially apply a non-function", node.Position)
	}

	p := &partial{target: callee, args: make([]*value.Value, len(node.Arguments))}
	for i, argNode := range node.Arguments {
		if argNode.Type == types.NodePlaceholder {
			p.holes++
			continue
		}
		if p.args[i], err = s.eval(argNode, input, env); err != nil {
			return nil, err
		}
	}

	return s.arena.Callable(value.KindLambda, p), nil
}

// call invokes a function value from inside a built-in (higher-order
// functions). The current context is not substituted.
func (s *state) call(fn *value.Value, args []*value.Value, pos int) (*value.Value, error) {
	if !fn.IsCallable() {
		return nil, types.NewError(types.ErrInvokedNonFunction,
			"argument must be a function", pos)
	}
	if native, ok := fn.Callable().(*NativeFn); ok {
		// Higher-order callers pass exactly the arguments the
		// callback accepts; trim extras for fixed-arity built-ins.
		if native.MaxArgs >= 0 && len(args) > native.MaxArgs {
			args = args[:native.MaxArgs]
		}
		return s.callNative(native, args, value.Undefined(), pos)
	}
	return s.apply(fn, args, value.Undefined(), pos)
}

// arity returns the number of parameters a function value declares,
// used by higher-order built-ins to decide how many arguments to pass.
func arity(fn *value.Value) int {
	switch f := fn.Callable().(type) {
	case *Lambda:
		return len(f.Params)
	case *NativeFn:
		if f.MaxArgs >= 0 {
			return f.MaxArgs
		}
		return f.MinArgs
	case *partial:
		return f.holes
	default:
		return 0
	}
}
