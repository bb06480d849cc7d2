package evaluator

import (
	"sort"

	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

func arrayBuiltins() []*NativeFn {
	return []*NativeFn{
		{Name: "append", MinArgs: 2, MaxArgs: 2, Impl: fnAppend},
		{Name: "reverse", MinArgs: 1, MaxArgs: 1, Impl: fnReverse},
		{Name: "sort", MinArgs: 1, MaxArgs: 2, Impl: fnSort},
		{Name: "distinct", MinArgs: 1, MaxArgs: 1, Impl: fnDistinct},
		{Name: "zip", MinArgs: 1, MaxArgs: -1, Impl: fnZip},
	}
}

// fnAppend concatenates two values as sequences. Undefined on either
// side is the identity.
func fnAppend(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return args[1], nil
	}
	if args[1].IsUndefined() {
		return args[0], nil
	}
	result := s.arena.Sequence(args[0].Len() + args[1].Len())
	for _, item := range items(args[0]) {
		result.Append(item)
	}
	for _, item := range items(args[1]) {
		result.Append(item)
	}
	return result, nil
}

func fnReverse(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	members := items(args[0])
	result := s.arena.Array(len(members))
	result.SetCons()
	for i := len(members) - 1; i >= 0; i-- {
		result.Append(members[i])
	}
	return result, nil
}

// fnSort sorts stably. Without a comparator every member must be a
// number or every member a string; a comparator function returns true
// when its first argument should come after its second.
func fnSort(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	members := items(args[0])
	sorted := make([]*value.Value, len(members))
	copy(sorted, members)

	var sortErr error
	if len(args) == 2 {
		comparator, err := argFunction("sort", pos, args, 1)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(sorted, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			swap, err := s.call(comparator, []*value.Value{sorted[j], sorted[i]}, pos)
			if err != nil {
				sortErr = err
				return false
			}
			return truthy(swap)
		})
	} else {
		allNumbers, allStrings := true, true
		for _, m := range sorted {
			allNumbers = allNumbers && m.IsNumber()
			allStrings = allStrings && m.IsString()
		}
		switch {
		case allNumbers:
			sort.SliceStable(sorted, func(i, j int) bool {
				return sorted[i].Number() < sorted[j].Number()
			})
		case allStrings:
			sort.SliceStable(sorted, func(i, j int) bool {
				return sorted[i].Str() < sorted[j].Str()
			})
		default:
			return nil, types.NewError(types.ErrNotComparable,
				"the members to sort must be all numbers or all strings", pos)
		}
	}
	if sortErr != nil {
		return nil, sortErr
	}

	result := s.arena.Array(len(sorted))
	result.SetCons()
	for _, m := range sorted {
		result.Append(m)
	}
	return result, nil
}

func fnDistinct(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	members := items(args[0])
	result := s.arena.Sequence(len(members))
	for _, m := range members {
		seen := false
		for _, kept := range result.Elems() {
			if value.DeepEqual(m, kept) {
				seen = true
				break
			}
		}
		if !seen {
			result.Append(m)
		}
	}
	return collapse(result), nil
}

// fnZip convolves its array arguments; the result length is that of the
// shortest argument.
func fnZip(s *state, pos int, args []*value.Value) (*value.Value, error) {
	shortest := -1
	rows := make([][]*value.Value, len(args))
	for i, arg := range args {
		if arg.IsUndefined() {
			return s.arena.Array(0), nil
		}
		rows[i] = items(arg)
		if shortest < 0 || len(rows[i]) < shortest {
			shortest = len(rows[i])
		}
	}

	result := s.arena.Array(shortest)
	result.SetCons()
	for i := 0; i < shortest; i++ {
		tuple := s.arena.Array(len(rows))
		tuple.SetCons()
		for _, row := range rows {
			tuple.Append(row[i])
		}
		result.Append(tuple)
	}
	return result, nil
}
