package evaluator

import (
	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

// Lambda is a user-defined function: parameter names, body AST, and the
// environment and context value captured at definition time.
type Lambda struct {
	Params []string
	Body   *types.ASTNode
	Env    *Frame
	Input  *value.Value
}

// NativeFn describes a built-in function. MinArgs/MaxArgs bound the
// accepted argument count (MaxArgs -1 means unlimited). AcceptsContext
// declares that the current context substitutes for the first argument
// when the call site passes one argument fewer than MinArgs; it is an
// explicit opt-in per built-in, never inferred.
type NativeFn struct {
	Name           string
	MinArgs        int
	MaxArgs        int
	AcceptsContext bool
	Impl           func(s *state, pos int, args []*value.Value) (*value.Value, error)
}

// partial is a partially applied function: the target callable plus the
// argument list with nil holes where ? appeared. Calling it fills the
// holes left to right.
type partial struct {
	target *value.Value
	args   []*value.Value // nil entries are holes
	holes  int
}

// thunk defers a tail call. It is produced by a call in tail position and
// consumed by the trampoline in callLambda; it never escapes an
// evaluation.
type thunk struct {
	lambda *Lambda
	args   []*value.Value
}
