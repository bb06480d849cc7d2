package evaluator

import (
	"github.com/johanventer/jsonata-go/pkg/value"
)

func objectBuiltins() []*NativeFn {
	return []*NativeFn{
		{Name: "keys", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnKeys},
		{Name: "values", MinArgs: 1, MaxArgs: 1, Impl: fnValues},
		{Name: "lookup", MinArgs: 2, MaxArgs: 2, Impl: fnLookup},
		{Name: "merge", MinArgs: 1, MaxArgs: 1, Impl: fnMerge},
		{Name: "spread", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnSpread},
		{Name: "each", MinArgs: 2, MaxArgs: 2, Impl: fnEach},
		{Name: "sift", MinArgs: 2, MaxArgs: 2, Impl: fnSift},
	}
}

// fnKeys returns an object's keys in insertion order. Over an array it
// returns the union of the members' keys, first occurrence first.
func fnKeys(s *state, pos int, args []*value.Value) (*value.Value, error) {
	v := args[0]
	result := s.arena.Sequence(v.Len())
	switch v.Kind() {
	case value.KindObject:
		for _, key := range v.Keys() {
			result.Append(s.arena.String(key))
		}
	case value.KindArray:
		seen := make(map[string]bool)
		for _, member := range v.Elems() {
			if !member.IsObject() {
				continue
			}
			for _, key := range member.Keys() {
				if !seen[key] {
					seen[key] = true
					result.Append(s.arena.String(key))
				}
			}
		}
	default:
		return value.Undefined(), nil
	}
	return collapse(result), nil
}

func fnValues(s *state, pos int, args []*value.Value) (*value.Value, error) {
	v := args[0]
	if v.IsUndefined() {
		return value.Undefined(), nil
	}
	result := s.arena.Sequence(v.Len())
	switch v.Kind() {
	case value.KindObject:
		for _, key := range v.Keys() {
			appendSpliced(result, v.Field(key))
		}
	case value.KindArray:
		for _, member := range v.Elems() {
			appendSpliced(result, member)
		}
	default:
		return v, nil
	}
	return collapse(result), nil
}

// fnLookup looks a key up in an object, or maps the lookup over an array
// of objects the way a path step does.
func fnLookup(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	key, err := argString("lookup", pos, args, 1)
	if err != nil {
		return nil, err
	}
	return s.evalName(key, args[0]), nil
}

// fnMerge merges an object, or an array of objects, into one object.
// Later fields win.
func fnMerge(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	result := s.arena.Object()
	for _, member := range items(args[0]) {
		if !member.IsObject() {
			return nil, argBad("merge", pos, 0, "an array of objects")
		}
		for _, key := range member.Keys() {
			result.SetField(key, member.Field(key))
		}
	}
	return result, nil
}

// fnSpread splits an object into an array of single-field objects; an
// array argument spreads every member.
func fnSpread(s *state, pos int, args []*value.Value) (*value.Value, error) {
	v := args[0]
	if v.IsUndefined() {
		return value.Undefined(), nil
	}
	result := s.arena.Sequence(v.Len())
	var spread func(v *value.Value) error
	spread = func(v *value.Value) error {
		switch v.Kind() {
		case value.KindObject:
			for _, key := range v.Keys() {
				single := s.arena.Object()
				single.SetField(key, v.Field(key))
				result.Append(single)
			}
		case value.KindArray:
			for _, member := range v.Elems() {
				if err := spread(member); err != nil {
					return err
				}
			}
		default:
			return argBad("spread", pos, 0, "an object or an array of objects")
		}
		return nil
	}
	if err := spread(v); err != nil {
		return nil, err
	}
	return collapse(result), nil
}

// fnEach applies a function to every field of an object, passing the
// value and optionally the key, and returns the results as an array.
func fnEach(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	obj, err := argObject("each", pos, args, 0)
	if err != nil {
		return nil, err
	}
	fn, err := argFunction("each", pos, args, 1)
	if err != nil {
		return nil, err
	}

	argc := arity(fn)
	result := s.arena.Sequence(obj.Len())
	for _, key := range obj.Keys() {
		callArgs := []*value.Value{obj.Field(key)}
		if argc >= 2 {
			callArgs = append(callArgs, s.arena.String(key))
		}
		res, err := s.call(fn, callArgs, pos)
		if err != nil {
			return nil, err
		}
		if !res.IsUndefined() {
			result.Append(res)
		}
	}
	return collapse(result), nil
}

// fnSift keeps the fields of an object for which the function returns a
// truthy result.
func fnSift(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	obj, err := argObject("sift", pos, args, 0)
	if err != nil {
		return nil, err
	}
	fn, err := argFunction("sift", pos, args, 1)
	if err != nil {
		return nil, err
	}

	argc := arity(fn)
	result := s.arena.Object()
	for _, key := range obj.Keys() {
		callArgs := []*value.Value{obj.Field(key)}
		if argc >= 2 {
			callArgs = append(callArgs, s.arena.String(key))
		}
		keep, err := s.call(fn, callArgs, pos)
		if err != nil {
			return nil, err
		}
		if truthy(keep) {
			result.SetField(key, obj.Field(key))
		}
	}
	if result.Len() == 0 {
		return value.Undefined(), nil
	}
	return result, nil
}
