package evaluator

import (
	"fmt"
	"sync"

	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

// The built-in registry is a table keyed by function name. Each entry
// declares its arity bounds, whether the current context substitutes for
// a missing first argument, and the native handle. The table is built
// once and read-only afterwards.

var (
	registryOnce sync.Once
	registry     map[string]*NativeFn
)

func builtinRegistry() map[string]*NativeFn {
	registryOnce.Do(func() {
		registry = make(map[string]*NativeFn)
		for _, group := range [][]*NativeFn{
			stringBuiltins(),
			numericBuiltins(),
			aggregateBuiltins(),
			arrayBuiltins(),
			objectBuiltins(),
			higherOrderBuiltins(),
			miscBuiltins(),
		} {
			for _, fn := range group {
				registry[fn.Name] = fn
			}
		}
	})
	return registry
}

// bindBuiltins loads every registry entry into the root frame as a
// callable value.
func bindBuiltins(s *state, env *Frame) {
	for name, fn := range builtinRegistry() {
		env.Bind(name, s.arena.Callable(value.KindNative, fn))
	}
}

// Argument helpers shared by the built-in implementations. Built-ins do
// their own type checking and raise T0410 with the failing argument's
// ordinal.

func argBad(name string, pos, index int, want string) error {
	return types.NewError(types.ErrBadArgument,
		fmt.Sprintf("argument %d of $%s must be %s", index+1, name, want), pos)
}

func argString(name string, pos int, args []*value.Value, index int) (string, error) {
	if !args[index].IsString() {
		return "", argBad(name, pos, index, "a string")
	}
	return args[index].Str(), nil
}

func argNumber(name string, pos int, args []*value.Value, index int) (float64, error) {
	if !args[index].IsNumber() {
		return 0, argBad(name, pos, index, "a number")
	}
	return args[index].Number(), nil
}

func argInteger(name string, pos int, args []*value.Value, index int) (int, error) {
	if !args[index].IsNumber() || !args[index].IsInteger() {
		return 0, argBad(name, pos, index, "an integer")
	}
	return int(args[index].Number()), nil
}

func argObject(name string, pos int, args []*value.Value, index int) (*value.Value, error) {
	if !args[index].IsObject() {
		return nil, argBad(name, pos, index, "an object")
	}
	return args[index], nil
}

func argFunction(name string, pos int, args []*value.Value, index int) (*value.Value, error) {
	if !args[index].IsCallable() {
		return nil, argBad(name, pos, index, "a function")
	}
	return args[index], nil
}

// argNumbers promotes a scalar number to a singleton and checks every
// member of an array argument is a number (T0412 otherwise).
func argNumbers(name string, pos int, args []*value.Value, index int) ([]*value.Value, error) {
	arg := args[index]
	if arg.IsNumber() {
		return []*value.Value{arg}, nil
	}
	if !arg.IsArray() {
		return nil, argBad(name, pos, index, "an array of numbers")
	}
	for _, item := range arg.Elems() {
		if !item.IsNumber() {
			return nil, types.NewError(types.ErrBadArgumentArray,
				fmt.Sprintf("argument %d of $%s must be an array of numbers", index+1, name), pos)
		}
	}
	return arg.Elems(), nil
}
