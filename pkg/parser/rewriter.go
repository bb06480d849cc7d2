package parser

import (
	"github.com/johanventer/jsonata-go/pkg/types"
)

// Rewrite runs the post-parse pass over a raw AST:
//
//   - linearizes dot chains into a single path node with a step list,
//     attaching a trailing predicate to the step it filters
//   - rewrites ~> chains into function applications
//   - marks steps that may produce sequences
//   - marks calls in tail position of lambda bodies
//   - validates that ? placeholders appear only in partial-application
//     argument lists
func Rewrite(arena *types.NodeArena, root *types.ASTNode) (*types.ASTNode, error) {
	r := &rewriter{arena: arena}
	node, err := r.rewrite(root)
	if err != nil {
		return nil, err
	}
	if err := validateHoles(node, false); err != nil {
		return nil, err
	}
	return node, nil
}

type rewriter struct {
	arena *types.NodeArena
}

func (r *rewriter) rewrite(node *types.ASTNode) (*types.ASTNode, error) {
	if node == nil {
		return nil, nil
	}

	var err error
	if node.LHS, err = r.rewrite(node.LHS); err != nil {
		return nil, err
	}
	if node.RHS, err = r.rewrite(node.RHS); err != nil {
		return nil, err
	}
	for i, child := range node.Arguments {
		if node.Arguments[i], err = r.rewrite(child); err != nil {
			return nil, err
		}
	}
	for i, child := range node.Expressions {
		if node.Expressions[i], err = r.rewrite(child); err != nil {
			return nil, err
		}
	}

	switch node.Type {
	case types.NodePath:
		return r.rewritePath(node)
	case types.NodeFilter:
		return r.rewriteFilter(node)
	case types.NodeGroup:
		if node.LHS != nil && node.LHS.Type == types.NodeGroup {
			return nil, types.NewError(types.ErrMultipleGroupBy,
				"a path step can only have one grouping expression", node.Position)
		}
		return node, nil
	case types.NodeApply:
		return r.rewriteApply(node)
	case types.NodeLambda:
		markTailCalls(node.RHS)
		return node, nil
	case types.NodeName, types.NodeWildcard, types.NodeDescendant, types.NodeVariable:
		node.Seq = true
		return node, nil
	default:
		return node, nil
	}
}

// rewritePath flattens a binary dot node into a step list, splicing an
// already-flattened path on the left.
func (r *rewriter) rewritePath(node *types.ASTNode) (*types.ASTNode, error) {
	steps := make([]*types.ASTNode, 0, 4)

	if node.LHS != nil && node.LHS.Type == types.NodePath && len(node.LHS.Steps) > 0 {
		steps = append(steps, node.LHS.Steps...)
		if node.LHS.KeepArray {
			node.KeepArray = true
		}
	} else {
		if err := checkStep(node.LHS); err != nil {
			return nil, err
		}
		steps = append(steps, node.LHS)
	}

	if err := checkStep(node.RHS); err != nil {
		return nil, err
	}
	steps = append(steps, node.RHS)

	path := r.arena.Alloc(types.NodePath, node.Position)
	path.Steps = steps
	path.KeepArray = node.KeepArray
	for _, s := range steps {
		if s.KeepArray {
			path.KeepArray = true
		}
	}
	return path, nil
}

// rewriteFilter attaches a predicate that follows a path to the path's
// final step, so the filter runs per step stage rather than on the
// accumulated result.
func (r *rewriter) rewriteFilter(node *types.ASTNode) (*types.ASTNode, error) {
	base := node.LHS
	if base == nil || base.Type != types.NodePath || len(base.Steps) == 0 {
		return node, nil
	}

	last := base.Steps[len(base.Steps)-1]
	wrapped := r.arena.Alloc(types.NodeFilter, node.Position)
	wrapped.LHS = last
	wrapped.RHS = node.RHS
	wrapped.Seq = last.Seq
	base.Steps[len(base.Steps)-1] = wrapped
	return base, nil
}

// rewriteApply turns a ~> f into a call of f with a prepended to the
// argument list. When f is not itself a call, a fresh call node wraps it.
func (r *rewriter) rewriteApply(node *types.ASTNode) (*types.ASTNode, error) {
	target := node.RHS

	if target != nil && target.Type == types.NodeFunction {
		target.Arguments = append([]*types.ASTNode{node.LHS}, target.Arguments...)
		target.Position = node.Position
		return target, nil
	}

	call := r.arena.Alloc(types.NodeFunction, node.Position)
	call.LHS = target
	call.Arguments = []*types.ASTNode{node.LHS}
	return call, nil
}

// checkStep validates that a node can act as a path step.
func checkStep(node *types.ASTNode) error {
	if node == nil {
		return nil
	}
	switch node.Type {
	case types.NodeNumber, types.NodeBoolean, types.NodeNull:
		return types.NewError(types.ErrInvalidStep,
			"a literal cannot be used as a path step", node.Position)
	default:
		return nil
	}
}

// markTailCalls marks function calls in tail position of a lambda body.
// The evaluator returns a thunk for marked calls and trampolines them,
// bounding stack growth to the longest non-tail chain.
func markTailCalls(node *types.ASTNode) {
	if node == nil {
		return
	}
	switch node.Type {
	case types.NodeFunction:
		node.Tail = true
	case types.NodeCondition:
		markTailCalls(node.RHS)
		if len(node.Expressions) > 0 {
			markTailCalls(node.Expressions[0])
		}
	case types.NodeBlock:
		if len(node.Expressions) > 0 {
			markTailCalls(node.Expressions[len(node.Expressions)-1])
		}
	}
}

// validateHoles rejects ? placeholders outside partial-application
// argument lists.
func validateHoles(node *types.ASTNode, inPartialArgs bool) error {
	if node == nil {
		return nil
	}
	if node.Type == types.NodePlaceholder && !inPartialArgs {
		return types.NewError(types.ErrMisplacedHole,
			"the ? placeholder is only valid in a function call argument list", node.Position)
	}

	if err := validateHoles(node.LHS, false); err != nil {
		return err
	}
	if err := validateHoles(node.RHS, false); err != nil {
		return err
	}
	argsArePartial := node.Type == types.NodePartial
	for _, child := range node.Arguments {
		if err := validateHoles(child, argsArePartial); err != nil {
			return err
		}
	}
	for _, child := range node.Expressions {
		if err := validateHoles(child, false); err != nil {
			return err
		}
	}
	return nil
}
