package evaluator

import (
	"github.com/johanventer/jsonata-go/pkg/value"
)

// appendSpliced adds v to a sequence being built, splicing arrays one
// level. Constructed arrays ([...] literals) and keep-singleton arrays
// stay whole; Undefined is dropped (it is the identity under sequence
// concatenation).
func appendSpliced(seq, v *value.Value) {
	if v.IsUndefined() {
		return
	}
	if v.IsArray() && !v.IsCons() && !v.KeepsSingleton() {
		for _, item := range v.Elems() {
			if !item.IsUndefined() {
				seq.Append(item)
			}
		}
		return
	}
	seq.Append(v)
}

// collapse applies the sequence collapse rule: an empty sequence is
// Undefined and a single-element sequence without keep-singleton becomes
// its sole element. Non-sequences pass through.
func collapse(v *value.Value) *value.Value {
	if !v.IsSequence() {
		return v
	}
	switch v.Len() {
	case 0:
		return value.Undefined()
	case 1:
		if !v.KeepsSingleton() {
			return v.At(0)
		}
	}
	return v
}

// items returns the members an expression iterates over: an array's
// elements, or the value itself promoted to a singleton. Undefined has no
// members.
func items(v *value.Value) []*value.Value {
	switch v.Kind() {
	case value.KindUndefined:
		return nil
	case value.KindArray:
		return v.Elems()
	default:
		return []*value.Value{v}
	}
}

// keepArrayed forces a value produced under an empty-bracket suffix to
// stay an array: scalars are wrapped, sequences stop collapsing.
func (s *state) keepArrayed(v *value.Value) *value.Value {
	switch {
	case v.IsUndefined():
		return v
	case v.IsSequence():
		v.SetKeepSingleton()
		return v
	case v.IsArray():
		return v
	default:
		seq := s.arena.SingletonSequence(v)
		seq.SetKeepSingleton()
		return seq
	}
}

// truthy implements the boolean test: Undefined, false, 0, "", empty
// array and empty object are false; everything else is true.
func truthy(v *value.Value) bool {
	switch v.Kind() {
	case value.KindUndefined:
		return false
	case value.KindBool:
		return v.Bool()
	case value.KindNumber:
		return v.Number() != 0
	case value.KindString:
		return v.Str() != ""
	case value.KindArray, value.KindObject:
		return v.Len() > 0
	default:
		return true
	}
}
