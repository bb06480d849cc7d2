package evaluator

import (
	"math"

	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

// rangeLimit caps the size of a `..` range so a typo cannot exhaust
// memory.
const rangeLimit = 1e7

func (s *state) evalBinary(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	op := node.StrValue

	// Boolean operators short-circuit on the left operand.
	switch op {
	case "and", "or":
		return s.evalBoolean(node, input, env)
	}

	lhs, err := s.eval(node.LHS, input, env)
	if err != nil {
		return nil, err
	}
	rhs, err := s.eval(node.RHS, input, env)
	if err != nil {
		return nil, err
	}

	switch op {
	case "+", "-", "*", "/", "%":
		return s.evalArithmetic(op, lhs, rhs, node.Position)
	case "=", "!=":
		return s.evalEquality(op, lhs, rhs)
	case "<", "<=", ">", ">=":
		return s.evalComparison(op, lhs, rhs, node.Position)
	case "&":
		return s.evalConcat(lhs, rhs)
	case "in":
		return evalIn(lhs, rhs), nil
	case "..":
		return s.evalRange(lhs, rhs, node.Position)
	default:
		return nil, types.NewError(types.ErrSyntaxError, "unknown operator: "+op, node.Position)
	}
}

// evalArithmetic coerces nothing: both operands must already be numbers.
// Undefined operands propagate silently.
func (s *state) evalArithmetic(op string, lhs, rhs *value.Value, pos int) (*value.Value, error) {
	if lhs.IsUndefined() || rhs.IsUndefined() {
		return value.Undefined(), nil
	}
	if !lhs.IsNumber() {
		return nil, types.NewError(types.ErrLeftNotNumber,
			"the left side of "+op+" must evaluate to a number", pos)
	}
	if !rhs.IsNumber() {
		return nil, types.NewError(types.ErrRightNotNumber,
			"the right side of "+op+" must evaluate to a number", pos)
	}

	a, b := lhs.Number(), rhs.Number()
	var result float64
	switch op {
	case "+":
		result = a + b
	case "-":
		result = a - b
	case "*":
		result = a * b
	case "/":
		result = a / b
	case "%":
		result = math.Mod(a, b)
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		// Reference JSONata lets Infinity flow until serialization;
		// the default here is to fail at the operator.
		if s.compat && math.IsInf(result, 0) {
			return s.arena.Number(result), nil
		}
		return nil, types.NewError(types.ErrNumberOverflow,
			"arithmetic produced a non-finite number", pos)
	}
	return s.arena.Number(result), nil
}

// evalEquality applies structural equality. Undefined on either side
// yields false; two Undefineds are not equal.
func (s *state) evalEquality(op string, lhs, rhs *value.Value) (*value.Value, error) {
	if lhs.IsUndefined() || rhs.IsUndefined() {
		return value.Bool(false), nil
	}
	eq := value.DeepEqual(lhs, rhs)
	if op == "!=" {
		eq = !eq
	}
	return value.Bool(eq), nil
}

// evalComparison requires both operands to be numbers or both strings.
func (s *state) evalComparison(op string, lhs, rhs *value.Value, pos int) (*value.Value, error) {
	if lhs.IsUndefined() || rhs.IsUndefined() {
		return value.Undefined(), nil
	}

	if !lhs.IsNumber() && !lhs.IsString() {
		return nil, types.NewError(types.ErrNotComparable,
			"the operands of "+op+" must be numbers or strings", pos)
	}
	if !rhs.IsNumber() && !rhs.IsString() {
		return nil, types.NewError(types.ErrNotComparable,
			"the operands of "+op+" must be numbers or strings", pos)
	}
	if lhs.Kind() != rhs.Kind() {
		return nil, types.NewError(types.ErrCompareMismatch,
			"the operands of "+op+" must be of the same type", pos)
	}

	var less, equal bool
	if lhs.IsNumber() {
		less = lhs.Number() < rhs.Number()
		equal = lhs.Number() == rhs.Number()
	} else {
		less = lhs.Str() < rhs.Str()
		equal = lhs.Str() == rhs.Str()
	}

	var result bool
	switch op {
	case "<":
		result = less
	case "<=":
		result = less || equal
	case ">":
		result = !less && !equal
	case ">=":
		result = !less
	}
	return value.Bool(result), nil
}

// evalConcat coerces both sides with the $string rules; Undefined
// contributes the empty string.
func (s *state) evalConcat(lhs, rhs *value.Value) (*value.Value, error) {
	left, err := stringify(lhs)
	if err != nil {
		return nil, err
	}
	right, err := stringify(rhs)
	if err != nil {
		return nil, err
	}
	return s.arena.String(left + right), nil
}

// evalIn tests membership. A scalar right side is promoted to a
// singleton.
func evalIn(lhs, rhs *value.Value) *value.Value {
	if lhs.IsUndefined() || rhs.IsUndefined() {
		return value.Bool(false)
	}
	for _, member := range items(rhs) {
		if value.DeepEqual(lhs, member) {
			return value.Bool(true)
		}
	}
	return value.Bool(false)
}

// evalRange produces the integer sequence lhs..rhs. Undefined bounds
// yield Undefined, reversed bounds yield the empty result, non-integer
// bounds are a domain error.
func (s *state) evalRange(lhs, rhs *value.Value, pos int) (*value.Value, error) {
	if lhs.IsUndefined() || rhs.IsUndefined() {
		return value.Undefined(), nil
	}
	if !lhs.IsNumber() || !lhs.IsInteger() {
		return nil, types.NewError(types.ErrBadRangeBounds,
			"the left side of .. must evaluate to an integer", pos)
	}
	if !rhs.IsNumber() || !rhs.IsInteger() {
		return nil, types.NewError(types.ErrBadRangeBounds,
			"the right side of .. must evaluate to an integer", pos)
	}

	start, end := lhs.Number(), rhs.Number()
	if start > end {
		return value.Undefined(), nil
	}
	size := end - start + 1
	if size > rangeLimit {
		return nil, types.NewError(types.ErrRangeTooLarge,
			"range exceeds the maximum size", pos)
	}

	seq := s.arena.Sequence(int(size))
	for n := start; n <= end; n++ {
		seq.Append(s.arena.Number(n))
	}
	return collapse(seq), nil
}

func (s *state) evalBoolean(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	lhs, err := s.eval(node.LHS, input, env)
	if err != nil {
		return nil, err
	}
	left := truthy(lhs)

	if node.StrValue == "and" && !left {
		return value.Bool(false), nil
	}
	if node.StrValue == "or" && left {
		return value.Bool(true), nil
	}

	rhs, err := s.eval(node.RHS, input, env)
	if err != nil {
		return nil, err
	}
	return value.Bool(truthy(rhs)), nil
}

// evalUnary handles numeric negation.
func (s *state) evalUnary(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	operand, err := s.eval(node.LHS, input, env)
	if err != nil {
		return nil, err
	}
	if operand.IsUndefined() {
		return value.Undefined(), nil
	}
	if !operand.IsNumber() {
		return nil, types.NewError(types.ErrNegateNonNumber,
			"cannot negate a non-number", node.Position)
	}
	return s.arena.Number(-operand.Number()), nil
}

// stringify applies the $string conversion rules: strings pass through,
// numbers use the canonical number form, booleans and null their JSON
// spelling, arrays and objects their JSON serialization, functions and
// Undefined the empty string.
func stringify(v *value.Value) (string, error) {
	switch v.Kind() {
	case value.KindUndefined, value.KindLambda, value.KindNative:
		return "", nil
	case value.KindString:
		return v.Str(), nil
	default:
		return value.Serialize(v, false)
	}
}
