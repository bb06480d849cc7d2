package evaluator

import (
	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

func higherOrderBuiltins() []*NativeFn {
	return []*NativeFn{
		{Name: "map", MinArgs: 2, MaxArgs: 2, Impl: fnMap},
		{Name: "filter", MinArgs: 2, MaxArgs: 2, Impl: fnFilter},
		{Name: "reduce", MinArgs: 2, MaxArgs: 3, Impl: fnReduce},
		{Name: "single", MinArgs: 2, MaxArgs: 2, Impl: fnSingle},
	}
}

// hofArgs builds the argument list for a callback, passing the member,
// its index, and the whole array as far as the callback's arity allows.
func (s *state) hofArgs(fn *value.Value, member *value.Value, index int, whole *value.Value) []*value.Value {
	args := []*value.Value{member}
	if argc := arity(fn); argc >= 2 {
		args = append(args, s.arena.Number(float64(index)))
		if argc >= 3 {
			args = append(args, whole)
		}
	}
	return args
}

func fnMap(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	fn, err := argFunction("map", pos, args, 1)
	if err != nil {
		return nil, err
	}

	result := s.arena.Sequence(args[0].Len())
	for i, member := range items(args[0]) {
		res, err := s.call(fn, s.hofArgs(fn, member, i, args[0]), pos)
		if err != nil {
			return nil, err
		}
		if !res.IsUndefined() {
			result.Append(res)
		}
	}
	return collapse(result), nil
}

func fnFilter(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	fn, err := argFunction("filter", pos, args, 1)
	if err != nil {
		return nil, err
	}

	result := s.arena.Sequence(args[0].Len())
	for i, member := range items(args[0]) {
		keep, err := s.call(fn, s.hofArgs(fn, member, i, args[0]), pos)
		if err != nil {
			return nil, err
		}
		if truthy(keep) {
			result.Append(member)
		}
	}
	return collapse(result), nil
}

// fnReduce folds left. Without an initial value the first member seeds
// the accumulator; the callback receives (accumulator, member).
func fnReduce(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	fn, err := argFunction("reduce", pos, args, 1)
	if err != nil {
		return nil, err
	}

	members := items(args[0])
	var acc *value.Value
	start := 0
	if len(args) == 3 {
		acc = args[2]
	} else {
		if len(members) == 0 {
			return value.Undefined(), nil
		}
		acc = members[0]
		start = 1
	}

	for _, member := range members[start:] {
		if acc, err = s.call(fn, []*value.Value{acc, member}, pos); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// fnSingle returns the only member satisfying the predicate; zero or
// more than one match is an error.
func fnSingle(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	fn, err := argFunction("single", pos, args, 1)
	if err != nil {
		return nil, err
	}

	var found *value.Value
	for i, member := range items(args[0]) {
		keep, err := s.call(fn, s.hofArgs(fn, member, i, args[0]), pos)
		if err != nil {
			return nil, err
		}
		if !truthy(keep) {
			continue
		}
		if found != nil {
			return nil, types.NewError(types.ErrSingleNoMatch,
				"the single function matched more than one member", pos)
		}
		found = member
	}
	if found == nil {
		return nil, types.NewError(types.ErrSingleNoMatch,
			"the single function matched no members", pos)
	}
	return found, nil
}
