package evaluator

import (
	"github.com/google/uuid"

	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

func miscBuiltins() []*NativeFn {
	return []*NativeFn{
		{Name: "boolean", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnBoolean},
		{Name: "not", MinArgs: 1, MaxArgs: 1, Impl: fnNot},
		{Name: "exists", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnExists},
		{Name: "type", MinArgs: 1, MaxArgs: 1, Impl: fnType},
		{Name: "error", MinArgs: 0, MaxArgs: 1, Impl: fnError},
		{Name: "uuid", MinArgs: 0, MaxArgs: 0, Impl: fnUUID},
		{Name: "millis", MinArgs: 0, MaxArgs: 0, Impl: fnMillis},
		{Name: "now", MinArgs: 0, MaxArgs: 0, Impl: fnNow},
	}
}

func fnBoolean(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	return value.Bool(truthy(args[0])), nil
}

func fnNot(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	return value.Bool(!truthy(args[0])), nil
}

func fnExists(s *state, pos int, args []*value.Value) (*value.Value, error) {
	return value.Bool(!args[0].IsUndefined()), nil
}

func fnType(s *state, pos int, args []*value.Value) (*value.Value, error) {
	var name string
	switch args[0].Kind() {
	case value.KindUndefined:
		return value.Undefined(), nil
	case value.KindNull:
		name = "null"
	case value.KindBool:
		name = "boolean"
	case value.KindNumber:
		name = "number"
	case value.KindString:
		name = "string"
	case value.KindArray:
		name = "array"
	case value.KindObject:
		name = "object"
	default:
		name = "function"
	}
	return s.arena.String(name), nil
}

// fnError raises a domain error from the expression itself.
func fnError(s *state, pos int, args []*value.Value) (*value.Value, error) {
	message := "error raised by the expression"
	if len(args) == 1 && args[0].IsString() {
		message = args[0].Str()
	}
	return nil, types.NewError(types.ErrFunctionDomain, message, pos)
}

func fnUUID(s *state, pos int, args []*value.Value) (*value.Value, error) {
	return s.arena.String(uuid.NewString()), nil
}

// fnMillis and fnNow report the evaluation's start timestamp, so every
// call within one evaluation observes the same instant.
func fnMillis(s *state, pos int, args []*value.Value) (*value.Value, error) {
	return s.arena.Number(float64(s.started.UnixMilli())), nil
}

func fnNow(s *state, pos int, args []*value.Value) (*value.Value, error) {
	return s.arena.String(s.started.UTC().Format("2006-01-02T15:04:05.000Z07:00")), nil
}
