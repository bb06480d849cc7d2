package evaluator

import (
	"github.com/johanventer/jsonata-go/pkg/value"
)

func aggregateBuiltins() []*NativeFn {
	return []*NativeFn{
		{Name: "sum", MinArgs: 1, MaxArgs: 1, Impl: fnSum},
		{Name: "max", MinArgs: 1, MaxArgs: 1, Impl: fnMax},
		{Name: "min", MinArgs: 1, MaxArgs: 1, Impl: fnMin},
		{Name: "average", MinArgs: 1, MaxArgs: 1, Impl: fnAverage},
		{Name: "count", MinArgs: 1, MaxArgs: 1, Impl: fnCount},
	}
}

func fnSum(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	numbers, err := argNumbers("sum", pos, args, 0)
	if err != nil {
		return nil, err
	}
	var total float64
	for _, n := range numbers {
		total += n.Number()
	}
	return s.arena.Number(total), nil
}

func fnMax(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	numbers, err := argNumbers("max", pos, args, 0)
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return value.Undefined(), nil
	}
	max := numbers[0].Number()
	for _, n := range numbers[1:] {
		if n.Number() > max {
			max = n.Number()
		}
	}
	return s.arena.Number(max), nil
}

func fnMin(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	numbers, err := argNumbers("min", pos, args, 0)
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return value.Undefined(), nil
	}
	min := numbers[0].Number()
	for _, n := range numbers[1:] {
		if n.Number() < min {
			min = n.Number()
		}
	}
	return s.arena.Number(min), nil
}

func fnAverage(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	numbers, err := argNumbers("average", pos, args, 0)
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return value.Undefined(), nil
	}
	var total float64
	for _, n := range numbers {
		total += n.Number()
	}
	return s.arena.Number(total / float64(len(numbers))), nil
}

// fnCount treats a scalar as a singleton and Undefined as empty.
func fnCount(s *state, pos int, args []*value.Value) (*value.Value, error) {
	return s.arena.Number(float64(len(items(args[0])))), nil
}
