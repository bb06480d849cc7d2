package evaluator

import (
	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

// eval evaluates one AST node with input as the current context.
func (s *state) eval(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	if node == nil {
		return value.Undefined(), nil
	}
	if err := s.enter(node.Position); err != nil {
		return nil, err
	}
	defer s.leave()

	if s.e.opts.Debug {
		s.e.logger.Debug("evaluating node", "type", node.Type, "position", node.Position, "depth", s.depth)
	}

	switch node.Type {
	case types.NodeString:
		return s.arena.String(node.StrValue), nil
	case types.NodeNumber:
		return s.arena.Number(node.NumValue), nil
	case types.NodeBoolean:
		return value.Bool(node.BoolValue), nil
	case types.NodeNull:
		return value.Null(), nil
	case types.NodeName:
		v := s.evalName(node.StrValue, input)
		if node.KeepArray {
			v = s.keepArrayed(v)
		}
		return v, nil
	case types.NodeVariable:
		return s.evalVariable(node, input, env)
	case types.NodeWildcard:
		return collapse(s.evalWildcard(input)), nil
	case types.NodeDescendant:
		return collapse(s.evalDescendants(input)), nil
	case types.NodePath:
		return s.evalPath(node, input, env)
	case types.NodeFilter:
		return s.evalFilterExpr(node, input, env)
	case types.NodeGroup:
		return s.evalGroup(node, input, env)
	case types.NodeBinary:
		return s.evalBinary(node, input, env)
	case types.NodeUnary:
		return s.evalUnary(node, input, env)
	case types.NodeArray:
		return s.evalArrayConstructor(node, input, env)
	case types.NodeObject:
		return s.evalObjectConstructor(node, input, env)
	case types.NodeCondition:
		return s.evalCondition(node, input, env)
	case types.NodeBlock:
		return s.evalBlock(node, input, env)
	case types.NodeBind:
		return s.evalBind(node, input, env)
	case types.NodeLambda:
		return s.evalLambdaDef(node, input, env)
	case types.NodeFunction:
		return s.evalCall(node, input, env)
	case types.NodePartial:
		return s.evalPartial(node, input, env)
	case types.NodeParent, types.NodeRegex, types.NodeSort:
		return nil, types.NewError(types.ErrNotImplemented,
			"operator not implemented: "+string(node.Type), node.Position)
	default:
		return nil, types.NewError(types.ErrSyntaxError,
			"unsupported node type: "+string(node.Type), node.Position)
	}
}

// evalName looks up a field against the current context. On an array
// context the lookup maps over the elements, splicing array results one
// level into the sequence.
func (s *state) evalName(name string, input *value.Value) *value.Value {
	switch input.Kind() {
	case value.KindObject:
		return input.Field(name)
	case value.KindArray:
		seq := s.arena.Sequence(input.Len())
		for _, item := range input.Elems() {
			appendSpliced(seq, s.evalName(name, item))
		}
		return collapse(seq)
	default:
		return value.Undefined()
	}
}

// evalVariable resolves $name. A bare $ is the current context, $$ the
// root context. Unknown variables are Undefined, not an error.
func (s *state) evalVariable(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	switch node.StrValue {
	case "":
		return input, nil
	case "$":
		return s.root, nil
	default:
		if v, ok := env.Lookup(node.StrValue); ok {
			return v, nil
		}
		return value.Undefined(), nil
	}
}

// evalWildcard yields all values of an object; over an array it applies
// recursively and splices.
func (s *state) evalWildcard(input *value.Value) *value.Value {
	seq := s.arena.Sequence(input.Len())
	switch input.Kind() {
	case value.KindObject:
		for _, key := range input.Keys() {
			appendSpliced(seq, input.Field(key))
		}
	case value.KindArray:
		for _, item := range input.Elems() {
			appendSpliced(seq, s.evalWildcard(item))
		}
	}
	return seq
}

// evalDescendants collects the input and all its descendants depth-first.
// Arrays contribute their members, not themselves.
func (s *state) evalDescendants(input *value.Value) *value.Value {
	seq := s.arena.Sequence(0)
	var walk func(v *value.Value)
	walk = func(v *value.Value) {
		switch v.Kind() {
		case value.KindUndefined:
		case value.KindArray:
			for _, item := range v.Elems() {
				walk(item)
			}
		case value.KindObject:
			seq.Append(v)
			for _, key := range v.Keys() {
				walk(v.Field(key))
			}
		default:
			seq.Append(v)
		}
	}
	walk(input)
	return seq
}

// evalArrayConstructor builds a user-visible array. Undefined members are
// filtered; a member that evaluates to a non-constructed array or a
// sequence is spliced, while nested constructors stay nested.
func (s *state) evalArrayConstructor(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	arr := s.arena.Array(len(node.Expressions))
	arr.SetCons()
	for _, expr := range node.Expressions {
		item, err := s.eval(expr, input, env)
		if err != nil {
			return nil, err
		}
		if item.IsUndefined() {
			continue
		}
		if item.IsArray() && !item.IsCons() && !item.KeepsSingleton() {
			for _, sub := range item.Elems() {
				if !sub.IsUndefined() {
					arr.Append(sub)
				}
			}
		} else {
			arr.Append(item)
		}
	}
	return arr, nil
}

// evalObjectConstructor builds an object from key/value pairs against the
// current context. Keys must evaluate to strings; Undefined values omit
// the field; last write wins on duplicate keys.
func (s *state) evalObjectConstructor(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	obj := s.arena.Object()
	for _, pair := range node.Expressions {
		key, err := s.eval(pair.LHS, input, env)
		if err != nil {
			return nil, err
		}
		if !key.IsString() {
			return nil, types.NewError(types.ErrNonStringKey,
				"object key must evaluate to a string", pair.LHS.Position)
		}
		val, err := s.eval(pair.RHS, input, env)
		if err != nil {
			return nil, err
		}
		if val.IsUndefined() {
			continue
		}
		obj.SetField(key.Str(), val)
	}
	return obj, nil
}

// evalCondition evaluates cond ? then : else with the truthiness rule.
// A missing else branch yields Undefined.
func (s *state) evalCondition(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	cond, err := s.eval(node.LHS, input, env)
	if err != nil {
		return nil, err
	}
	if truthy(cond) {
		return s.eval(node.RHS, input, env)
	}
	if len(node.Expressions) > 0 {
		return s.eval(node.Expressions[0], input, env)
	}
	return value.Undefined(), nil
}

// evalBlock evaluates (e1; e2; ...) in a fresh frame and yields the last
// expression. Bindings made inside the block die with its frame.
func (s *state) evalBlock(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	frame := NewFrame(env)
	result := value.Undefined()
	var err error
	for _, expr := range node.Expressions {
		result, err = s.eval(expr, input, frame)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// evalBind evaluates $v := expr, binding v in the current frame. The
// result of the expression is the bound value.
func (s *state) evalBind(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	val, err := s.eval(node.RHS, input, env)
	if err != nil {
		return nil, err
	}
	env.Bind(node.StrValue, val)
	return val, nil
}

// evalLambdaDef captures the current environment and context into a
// function value.
func (s *state) evalLambdaDef(node *types.ASTNode, input *value.Value, env *Frame) (*value.Value, error) {
	params := make([]string, len(node.Arguments))
	for i, p := range node.Arguments {
		params[i] = p.StrValue
	}
	return s.arena.Callable(value.KindLambda, &Lambda{
		Params: params,
		Body:   node.RHS,
		Env:    env,
		Input:  input,
	}), nil
}
