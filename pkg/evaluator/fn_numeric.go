package evaluator

import (
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

func numericBuiltins() []*NativeFn {
	return []*NativeFn{
		{Name: "number", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnNumber},
		{Name: "abs", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: numeric1("abs", math.Abs)},
		{Name: "floor", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: numeric1("floor", math.Floor)},
		{Name: "ceil", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: numeric1("ceil", math.Ceil)},
		{Name: "round", MinArgs: 1, MaxArgs: 2, AcceptsContext: true, Impl: fnRound},
		{Name: "power", MinArgs: 2, MaxArgs: 2, AcceptsContext: true, Impl: fnPower},
		{Name: "sqrt", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnSqrt},
		{Name: "random", MinArgs: 0, MaxArgs: 0, Impl: fnRandom},
		{Name: "formatBase", MinArgs: 1, MaxArgs: 2, AcceptsContext: true, Impl: fnFormatBase},
	}
}

// numeric1 adapts a unary float function into a built-in with the usual
// Undefined propagation and type check.
func numeric1(name string, f func(float64) float64) func(*state, int, []*value.Value) (*value.Value, error) {
	return func(s *state, pos int, args []*value.Value) (*value.Value, error) {
		if args[0].IsUndefined() {
			return value.Undefined(), nil
		}
		n, err := argNumber(name, pos, args, 0)
		if err != nil {
			return nil, err
		}
		return s.arena.Number(f(n)), nil
	}
}

func fnNumber(s *state, pos int, args []*value.Value) (*value.Value, error) {
	v := args[0]
	switch v.Kind() {
	case value.KindUndefined:
		return value.Undefined(), nil
	case value.KindNumber:
		return v, nil
	case value.KindBool:
		if v.Bool() {
			return s.arena.Number(1), nil
		}
		return s.arena.Number(0), nil
	case value.KindString:
		str := strings.TrimSpace(v.Str())
		n, err := strconv.ParseFloat(str, 64)
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return nil, types.NewError(types.ErrCannotConvert,
				"unable to cast "+strconv.Quote(v.Str())+" to a number", pos)
		}
		return s.arena.Number(n), nil
	default:
		return nil, argBad("number", pos, 0, "a string, number or boolean")
	}
}

// fnRound applies banker's rounding (round half to even), the behavior
// JSONata inherits from XPath.
func fnRound(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	n, err := argNumber("round", pos, args, 0)
	if err != nil {
		return nil, err
	}

	precision := 0
	if len(args) == 2 {
		if precision, err = argInteger("round", pos, args, 1); err != nil {
			return nil, err
		}
	}

	// Shift the decimal point through the exponent of the decimal text so
	// that 2.345 becomes exactly 234.5 rather than 234.50000000000003.
	shift := func(x float64, by int) float64 {
		mant, exp, _ := strings.Cut(strconv.FormatFloat(x, 'e', -1, 64), "e")
		e, _ := strconv.Atoi(exp)
		shifted, _ := strconv.ParseFloat(mant+"e"+strconv.Itoa(e+by), 64)
		return shifted
	}
	return s.arena.Number(shift(math.RoundToEven(shift(n, precision)), -precision)), nil
}

func fnPower(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	base, err := argNumber("power", pos, args, 0)
	if err != nil {
		return nil, err
	}
	exp, err := argNumber("power", pos, args, 1)
	if err != nil {
		return nil, err
	}
	result := math.Pow(base, exp)
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return nil, types.NewError(types.ErrNumberOverflow,
			"the power function produced a non-finite number", pos)
	}
	return s.arena.Number(result), nil
}

func fnSqrt(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	n, err := argNumber("sqrt", pos, args, 0)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, types.NewError(types.ErrFunctionDomain,
			"the sqrt function cannot be applied to a negative number", pos)
	}
	return s.arena.Number(math.Sqrt(n)), nil
}

func fnRandom(s *state, pos int, args []*value.Value) (*value.Value, error) {
	return s.arena.Number(rand.Float64()), nil
}

func fnFormatBase(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	n, err := argNumber("formatBase", pos, args, 0)
	if err != nil {
		return nil, err
	}

	base := 10
	if len(args) == 2 {
		if base, err = argInteger("formatBase", pos, args, 1); err != nil {
			return nil, err
		}
		if base < 2 || base > 36 {
			return nil, types.NewError(types.ErrFunctionDomain,
				"the base of formatBase must be between 2 and 36", pos)
		}
	}

	return s.arena.String(strconv.FormatInt(int64(math.RoundToEven(n)), base)), nil
}
