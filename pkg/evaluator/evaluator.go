// Package evaluator implements the tree-walking interpreter.
//
// Evaluation threads three pieces of state through the recursion: the
// current AST node, the lexical environment frame, and the current context
// value (the implicit $). Path steps, predicates and group-by rebind the
// context; everything else passes it through.
//
// The engine is single-threaded and synchronous per evaluation; run
// concurrent evaluations with one arena each.
package evaluator

import (
	"context"
	"log/slog"
	"time"

	"github.com/johanventer/jsonata-go/pkg/types"
	"github.com/johanventer/jsonata-go/pkg/value"
)

// Evaluator evaluates compiled expressions against input values.
// It is immutable after construction and safe for concurrent use, provided
// every Eval call gets its own arena.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Timeout bounds one evaluation's wall-clock time. Exceeding it
	// fails the evaluation with U1001.
	Timeout time.Duration
	// MaxDepth bounds the evaluation stack depth (U1002 on overflow).
	MaxDepth int
	// Bindings are extra variables visible to the expression.
	Bindings map[string]*value.Value
	// JSCompat toggles a small set of quirks where reference JSONata
	// differs from this engine's defaults: division by zero yields
	// Infinity (caught only at serialization) instead of an immediate
	// domain error.
	JSCompat bool
	// Debug enables per-node trace logging.
	Debug bool
	// Logger receives debug traces; defaults to slog.Default.
	Logger *slog.Logger
}

// EvalOption configures an Evaluator.
type EvalOption func(*EvalOptions)

// WithTimeout sets the evaluation timeout.
func WithTimeout(d time.Duration) EvalOption {
	return func(o *EvalOptions) { o.Timeout = d }
}

// WithMaxDepth sets the maximum evaluation stack depth.
func WithMaxDepth(n int) EvalOption {
	return func(o *EvalOptions) { o.MaxDepth = n }
}

// WithBindings supplies extra variable bindings for the evaluation.
func WithBindings(b map[string]*value.Value) EvalOption {
	return func(o *EvalOptions) { o.Bindings = b }
}

// WithJSCompat toggles reference-JSONata compatibility quirks.
func WithJSCompat(enabled bool) EvalOption {
	return func(o *EvalOptions) { o.JSCompat = enabled }
}

// WithDebug enables per-node trace logging.
func WithDebug(enabled bool) EvalOption {
	return func(o *EvalOptions) { o.Debug = enabled }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EvalOption {
	return func(o *EvalOptions) { o.Logger = l }
}

// New creates a new Evaluator.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Timeout:  30 * time.Second,
		MaxDepth: 10000,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Evaluator{
		opts:   options,
		logger: options.Logger,
	}
}

// state carries the per-evaluation mutable state: the arena, the limit
// counters, and the root context.
type state struct {
	e        *Evaluator
	ctx      context.Context
	arena    *value.Arena
	root     *value.Value
	started  time.Time
	deadline time.Time
	depth    int
	maxDepth int
	ticks    int
	compat   bool
}

// Eval evaluates a compiled expression against input, allocating all
// result values in arena. The arena must not be shared with a concurrent
// evaluation, and results must not be used after the arena is reset.
func (e *Evaluator) Eval(ctx context.Context, expr *types.Expression, arena *value.Arena, input *value.Value) (*value.Value, error) {
	if expr == nil || expr.AST() == nil {
		return nil, types.NewError(types.ErrSyntaxError, "invalid expression", 0)
	}
	if input == nil {
		input = value.Undefined()
	}

	s := &state{
		e:        e,
		ctx:      ctx,
		arena:    arena,
		root:     input,
		started:  time.Now(),
		maxDepth: e.opts.MaxDepth,
		compat:   e.opts.JSCompat,
	}
	if e.opts.Timeout > 0 {
		s.deadline = s.started.Add(e.opts.Timeout)
	}

	env := NewFrame(nil)
	bindBuiltins(s, env)
	env.Bind("$", input)    // $$
	env.Bind("root", input) // $root
	for name, v := range e.opts.Bindings {
		env.Bind(name, v)
	}

	return s.eval(expr.AST(), input, NewFrame(env))
}

// limitCheckInterval is how many node visits pass between deadline and
// cancellation polls.
const limitCheckInterval = 256

// enter is called on every node visit; it enforces the depth limit and
// periodically polls the deadline and the caller's context.
func (s *state) enter(pos int) error {
	s.depth++
	if s.maxDepth > 0 && s.depth > s.maxDepth {
		return types.NewError(types.ErrDepthExceeded, "evaluation depth limit exceeded", pos)
	}
	s.ticks++
	if s.ticks%limitCheckInterval == 0 {
		if !s.deadline.IsZero() && time.Now().After(s.deadline) {
			return types.NewError(types.ErrTimeout, "evaluation timed out", pos)
		}
		if s.ctx != nil {
			select {
			case <-s.ctx.Done():
				return types.NewError(types.ErrTimeout, "evaluation cancelled", pos).WithCause(s.ctx.Err())
			default:
			}
		}
	}
	return nil
}

func (s *state) leave() {
	s.depth--
}
