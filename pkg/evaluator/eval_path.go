package evaluator

import (
	"math"

	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

// evalPath evaluates a linearized step chain. The first step runs against
// the caller's context; each later step runs once per element of the
// previous step's result, with that element as the context. Results are
// spliced one level into the accumulator. An empty accumulator
// short-circuits to Undefined; a singleton collapses unless the path
// keeps arrays.
func (s *state) evalPath(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	steps := node.Steps

	// A leading variable binds against the whole context, not per
	// element, so an array input is wrapped as a single item. A filter
	// around the variable does not change that.
	head := steps[0]
	for head.Type == types.NodeFilter && head.LHS != nil {
		head = head.LHS
	}
	var seq *value.Value
	if input.IsArray() && head.Type != types.NodeVariable {
		seq = input
	} else {
		seq = s.arena.SingletonSequence(input)
	}

	for _, step := range steps {
		var err error
		seq, err = s.evalStep(step, seq, env)
		if err != nil {
			return nil, err
		}
		if seq.IsUndefined() || seq.Len() == 0 {
			break
		}
	}

	if node.KeepArray && seq.IsSequence() {
		seq.SetKeepSingleton()
	}
	return collapse(seq), nil
}

// evalStep runs one path step over every element of the input sequence
// and splices the per-element results.
func (s *state) evalStep(step *types.ASTNode, inputSeq *value.Value, env *Frame) (*value.Value, error) {
	result := s.arena.Sequence(inputSeq.Len())

	for _, item := range items(inputSeq) {
		res, err := s.evalStepOnItem(step, item, env)
		if err != nil {
			return nil, err
		}
		appendSpliced(result, res)
	}

	return result, nil
}

// evalStepOnItem evaluates a step with one element as the context. A
// filter-wrapped step applies its predicate to this element's step result
// before it joins the accumulator, so `Order.Product[0]` selects the
// first product of each order.
func (s *state) evalStepOnItem(step *types.ASTNode, item *value.Value, env *Frame) (*value.Value, error) {
	if step.Type == types.NodeFilter {
		base, err := s.evalStepOnItem(step.LHS, item, env)
		if err != nil {
			return nil, err
		}
		return s.applyPredicate(base, step.RHS, env)
	}

	switch step.Type {
	case types.NodeName:
		return s.evalName(step.StrValue, item), nil
	case types.NodeWildcard:
		return s.evalWildcard(item), nil
	case types.NodeDescendant:
		return s.evalDescendants(item), nil
	default:
		return s.eval(step, item, env)
	}
}

// evalFilterExpr evaluates a standalone expr[pred] (one not part of a
// longer path).
func (s *state) evalFilterExpr(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	base, err := s.eval(node.LHS, input, env)
	if err != nil {
		return nil, err
	}
	filtered, err := s.applyPredicate(base, node.RHS, env)
	if err != nil {
		return nil, err
	}
	if node.KeepArray && filtered.IsSequence() {
		filtered.SetKeepSingleton()
	}
	return collapse(filtered), nil
}

// applyPredicate filters a value's members through a predicate
// expression. The predicate is evaluated once per member with the member
// as its context:
//
//   - a numeric result selects by index; negatives count from the end and
//     fractions truncate toward zero
//   - any other result selects by truthiness
func (s *state) applyPredicate(base *value.Value, pred *types.ASTNode, env *Frame) (*value.Value, error) {
	if base.IsUndefined() {
		return base, nil
	}

	members := items(base)
	result := s.arena.Sequence(len(members))
	n := len(members)

	for i, member := range members {
		p, err := s.eval(pred, member, env)
		if err != nil {
			return nil, err
		}
		if indexes, ok := numericPredicate(p); ok {
			for _, idx := range indexes {
				j := int(math.Trunc(idx))
				if j < 0 {
					j += n
				}
				if j == i {
					result.Append(member)
					break
				}
			}
		} else if truthy(p) {
			result.Append(member)
		}
	}

	return result, nil
}

// numericPredicate reports whether a predicate result selects by index,
// returning the index set. A single number or an array of numbers
// qualifies.
func numericPredicate(p *value.Value) ([]float64, bool) {
	switch p.Kind() {
	case value.KindNumber:
		return []float64{p.Number()}, true
	case value.KindArray:
		if p.Len() == 0 {
			return nil, false
		}
		indexes := make([]float64, 0, p.Len())
		for _, item := range p.Elems() {
			if !item.IsNumber() {
				return nil, false
			}
			indexes = append(indexes, item.Number())
		}
		return indexes, true
	default:
		return nil, false
	}
}

// evalGroup evaluates expr{k: v, ...}. Each member of the expression's
// result contributes to the group selected by its key; the value
// expression then runs once per key with the group's members as its
// context.
func (s *state) evalGroup(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	base := input
	if node.LHS != nil {
		var err error
		base, err = s.eval(node.LHS, input, env)
		if err != nil {
			return nil, err
		}
	}
	if base.IsUndefined() {
		return value.Undefined(), nil
	}

	type group struct {
		members *value.Value // sequence
		pair    int          // index of the pair that produced the key
	}
	var order []string
	groups := make(map[string]*group)

	for _, member := range items(base) {
		for pi, pair := range node.Expressions {
			key, err := s.eval(pair.LHS, member, env)
			if err != nil {
				return nil, err
			}
			if key.IsUndefined() {
				continue
			}
			if !key.IsString() {
				return nil, types.NewError(types.ErrNonStringKey,
					"group key must evaluate to a string", pair.LHS.Position)
			}
			g, ok := groups[key.Str()]
			if !ok {
				g = &group{members: s.arena.Sequence(1), pair: pi}
				groups[key.Str()] = g
				order = append(order, key.Str())
			} else if g.pair != pi {
				return nil, types.NewError(types.ErrDuplicateKey,
					"multiple key expressions produced the key "+key.Str(), pair.LHS.Position)
			}
			g.members.Append(member)
		}
	}

	obj := s.arena.Object()
	for _, key := range order {
		g := groups[key]
		val, err := s.eval(node.Expressions[g.pair].RHS, collapse(g.members), env)
		if err != nil {
			return nil, err
		}
		if val.IsUndefined() {
			continue
		}
		obj.SetField(key, val)
	}
	return obj, nil
}
