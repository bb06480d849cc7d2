// Package parser turns JSONata source text into an AST.
//
// The pipeline is lexer -> Pratt parser -> post-parse rewriter. The parser
// produces a raw tree of binary dot nodes, filters and groups; the rewriter
// linearizes paths, rewrites ~> chains into calls and marks tail positions.
package parser

import (
	"fmt"
	"math"
	"strconv"

	"github.com/johanventer/jsonata-go/pkg/types"
)

// Parser implements Pratt's top-down operator precedence algorithm.
type Parser struct {
	lexer   *Lexer
	arena   *types.NodeArena
	current Token
}

// NewParser creates a parser for the given input string.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
		arena: types.NewNodeArena(),
	}
	p.advance()
	return p
}

// Compile parses and rewrites an expression in one call.
func Compile(input string) (*types.Expression, error) {
	p := NewParser(input)
	root, err := p.Parse()
	if err != nil {
		return nil, err
	}
	root, err = Rewrite(p.arena, root)
	if err != nil {
		return nil, err
	}
	return types.NewExpression(root, input, p.arena), nil
}

// Parse parses the entire expression and returns the raw (pre-rewrite) AST.
func (p *Parser) Parse() (*types.ASTNode, error) {
	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}
	if p.current.Type == TokenEOF {
		return nil, p.errorf(types.ErrSyntaxError, "empty expression")
	}

	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}
	if p.current.Type != TokenEOF {
		return nil, p.errorf(types.ErrUnexpectedToken, "unexpected token: %s", p.currentText())
	}

	return node, nil
}

// Binding powers, low to high. Higher binds more tightly.
var precedence = map[TokenType]int{
	TokenAssign:       10,
	TokenQuestion:     15, // ternary
	TokenOr:           20,
	TokenAnd:          25,
	TokenEqual:        30,
	TokenNotEqual:     30,
	TokenLess:         30,
	TokenLessEqual:    30,
	TokenGreater:      30,
	TokenGreaterEqual: 30,
	TokenIn:           30,
	TokenConcat:       35,
	TokenPlus:         40,
	TokenMinus:        40,
	TokenMult:         45,
	TokenDiv:          45,
	TokenMod:          45,
	TokenRange:        50,
	TokenApply:        55,
	TokenDot:          65,
	TokenDescendant:   65,
	TokenSort:         65,
	TokenBracketOpen:  70,
	TokenBraceOpen:    70,
	TokenParenOpen:    70,
	TokenAt:           75,
	TokenHash:         75,
}

// unaryBP is the binding power of prefix minus; it binds tighter than any
// arithmetic operator but looser than path steps.
const unaryBP = 60

func (p *Parser) getPrecedence(tt TokenType) int {
	return precedence[tt]
}

// advance moves to the next token. A regex literal is only lexed when the
// previous token is `=`, `!=`, `~>`, a comma, `(`, `[`, a colon, or nothing
// at all; after any other token a `/` is read as division.
func (p *Parser) advance() {
	allowRegex := p.isOperandPosition()
	p.current = p.lexer.Next(allowRegex)
}

func (p *Parser) isOperandPosition() bool {
	switch p.current.Type {
	case TokenEqual, TokenNotEqual, TokenApply,
		TokenComma, TokenParenOpen, TokenBracketOpen, TokenColon, TokenEOF:
		return true
	default:
		return false
	}
}

// expect checks the current token type and advances past it.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type == TokenError {
		return p.lexer.Error()
	}
	if p.current.Type == TokenEOF {
		return p.errorf(types.ErrUnexpectedEnd, "expected %s before end of expression", tt.String())
	}
	if p.current.Type != tt {
		return p.errorf(types.ErrUnexpectedToken, "expected %s but got %s", tt.String(), p.currentText())
	}
	p.advance()
	return nil
}

func (p *Parser) errorf(code types.ErrorCode, format string, args ...any) error {
	return types.NewError(code, fmt.Sprintf(format, args...), p.current.Position).WithToken(p.current.Value)
}

func (p *Parser) currentText() string {
	if p.current.Value != "" {
		return p.current.Value
	}
	return p.current.Type.String()
}

func (p *Parser) node(tt types.NodeType, pos int) *types.ASTNode {
	return p.arena.Alloc(tt, pos)
}

// parseExpression parses an expression with minimum binding power rbp.
func (p *Parser) parseExpression(rbp int) (*types.ASTNode, error) {
	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for rbp < p.getPrecedence(p.current.Type) {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parsePrefix handles tokens valid in operand position (nud).
func (p *Parser) parsePrefix() (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenString:
		n := p.node(types.NodeString, token.Position)
		n.StrValue = token.Value
		p.advance()
		return n, nil
	case TokenNumber:
		return p.parseNumber()
	case TokenBoolean:
		n := p.node(types.NodeBoolean, token.Position)
		n.BoolValue = token.Value == "true"
		p.advance()
		return n, nil
	case TokenNull:
		n := p.node(types.NodeNull, token.Position)
		p.advance()
		return n, nil
	case TokenName, TokenNameEsc:
		if token.Type == TokenName && (token.Value == "function" || token.Value == "λ") {
			return p.parseLambda()
		}
		n := p.node(types.NodeName, token.Position)
		n.StrValue = token.Value
		p.advance()
		return n, nil
	case TokenAnd, TokenOr, TokenIn:
		// Keyword operators double as field names in operand position.
		n := p.node(types.NodeName, token.Position)
		n.StrValue = token.Type.String()
		p.advance()
		return n, nil
	case TokenVariable:
		n := p.node(types.NodeVariable, token.Position)
		n.StrValue = token.Value
		p.advance()
		return n, nil
	case TokenMinus:
		return p.parseNegation()
	case TokenParenOpen:
		return p.parseGrouping()
	case TokenBracketOpen:
		return p.parseArrayConstructor()
	case TokenBraceOpen:
		return p.parseObjectConstructor()
	case TokenMult:
		n := p.node(types.NodeWildcard, token.Position)
		p.advance()
		return n, nil
	case TokenDescendant:
		n := p.node(types.NodeDescendant, token.Position)
		p.advance()
		return n, nil
	case TokenMod:
		return nil, p.errorf(types.ErrNotImplemented, "the parent operator is not implemented")
	case TokenRegex:
		return nil, p.errorf(types.ErrNotImplemented, "regular expressions are not implemented")
	case TokenPipe:
		return nil, p.errorf(types.ErrNotImplemented, "object transforms are not implemented")
	case TokenEOF:
		return nil, p.errorf(types.ErrUnexpectedEnd, "unexpected end of expression")
	default:
		return nil, p.errorf(types.ErrUnexpectedToken, "unexpected token: %s", p.currentText())
	}
}

// parseInfix handles tokens valid in operator position (led).
func (p *Parser) parseInfix(left *types.ASTNode) (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenDot:
		return p.parsePathStep(left)
	case TokenBracketOpen:
		return p.parseFilter(left)
	case TokenBraceOpen:
		return p.parseGroupBy(left)
	case TokenParenOpen:
		return p.parseFunctionCall(left)
	case TokenQuestion:
		return p.parseConditional(left)
	case TokenAssign:
		return p.parseAssignment(left)
	case TokenDescendant:
		// "a**b" without dots; treat as a syntax error like the
		// reference grammar does.
		return nil, p.errorf(types.ErrUnexpectedToken, "unexpected token: %s", p.currentText())
	case TokenSort:
		return nil, p.errorf(types.ErrNotImplemented, "the sort operator is not implemented")
	case TokenAt, TokenHash:
		return nil, p.errorf(types.ErrNotImplemented, "focus and index variable binding is not implemented")
	case TokenPlus, TokenMinus, TokenMult, TokenDiv, TokenMod,
		TokenEqual, TokenNotEqual, TokenLess, TokenLessEqual,
		TokenGreater, TokenGreaterEqual, TokenConcat,
		TokenAnd, TokenOr, TokenIn, TokenRange, TokenApply:
		return p.parseBinaryOp(left)
	default:
		return nil, p.errorf(types.ErrUnexpectedToken, "unexpected token: %s", p.currentText())
	}
}

// parseNumber parses a number literal.
func (p *Parser) parseNumber() (*types.ASTNode, error) {
	n := p.node(types.NodeNumber, p.current.Position)

	val, err := strconv.ParseFloat(p.current.Value, 64)
	if err != nil || math.IsInf(val, 0) {
		return nil, p.errorf(types.ErrNumberOutOfRange, "number out of range: %s", p.current.Value)
	}

	n.NumValue = val
	p.advance()
	return n, nil
}

// parseNegation parses unary minus. Negation of a number literal is folded
// into the literal.
func (p *Parser) parseNegation() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()

	expr, err := p.parseExpression(unaryBP)
	if err != nil {
		return nil, err
	}

	if expr.Type == types.NodeNumber {
		expr.NumValue = -expr.NumValue
		expr.Position = pos
		return expr, nil
	}

	n := p.node(types.NodeUnary, pos)
	n.StrValue = "-"
	n.LHS = expr
	return n, nil
}

// parseGrouping parses a parenthesized expression or block. A block is one
// or more expressions separated by semicolons and introduces a new lexical
// scope; a single expression without semicolons is pure grouping, except
// that a lone assignment still gets its own scope.
func (p *Parser) parseGrouping() (*types.ASTNode, error) {
	startPos := p.current.Position
	p.advance() // skip '('

	if p.current.Type == TokenParenClose {
		// () is the empty sequence
		n := p.node(types.NodeBlock, startPos)
		p.advance()
		return n, nil
	}

	var exprs []*types.ASTNode
	hasSemicolon := false

	for p.current.Type != TokenParenClose {
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)

		if p.current.Type != TokenSemicolon {
			break
		}
		hasSemicolon = true
		p.advance()
		if p.current.Type == TokenParenClose {
			break // trailing semicolon
		}
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	if len(exprs) == 1 && !hasSemicolon && exprs[0].Type != types.NodeBind {
		return exprs[0], nil
	}

	n := p.node(types.NodeBlock, startPos)
	n.Expressions = exprs
	return n, nil
}

// parseArrayConstructor parses [a, b, c].
func (p *Parser) parseArrayConstructor() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // skip '['

	n := p.node(types.NodeArray, pos)

	if p.current.Type == TokenBracketClose {
		p.advance()
		return n, nil
	}

	for {
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		n.Expressions = append(n.Expressions, expr)

		if p.current.Type == TokenBracketClose {
			p.advance()
			return n, nil
		}
		if err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}
}

// parseObjectPairs parses the key/value list shared by prefix object
// constructors and infix group-by. The opening brace is current.
func (p *Parser) parseObjectPairs(n *types.ASTNode) error {
	p.advance() // skip '{'

	if p.current.Type == TokenBraceClose {
		p.advance()
		return nil
	}

	for {
		key, err := p.parseExpression(0)
		if err != nil {
			return err
		}
		if err := p.expect(TokenColon); err != nil {
			return err
		}
		val, err := p.parseExpression(0)
		if err != nil {
			return err
		}

		pair := p.node(types.NodeBinary, key.Position)
		pair.StrValue = ":"
		pair.LHS = key
		pair.RHS = val
		n.Expressions = append(n.Expressions, pair)

		if p.current.Type == TokenBraceClose {
			p.advance()
			return nil
		}
		if err := p.expect(TokenComma); err != nil {
			return err
		}
	}
}

// parseObjectConstructor parses {k: v, ...} in prefix position.
func (p *Parser) parseObjectConstructor() (*types.ASTNode, error) {
	n := p.node(types.NodeObject, p.current.Position)
	if err := p.parseObjectPairs(n); err != nil {
		return nil, err
	}
	return n, nil
}

// parseGroupBy parses expr{k: v, ...}.
func (p *Parser) parseGroupBy(left *types.ASTNode) (*types.ASTNode, error) {
	n := p.node(types.NodeGroup, p.current.Position)
	n.LHS = left
	if err := p.parseObjectPairs(n); err != nil {
		return nil, err
	}
	return n, nil
}

// parseKeywordName consumes a keyword literal token standing where a
// field name is expected and returns it as a name node, or nil when the
// current token is not one.
func (p *Parser) parseKeywordName() *types.ASTNode {
	switch p.current.Type {
	case TokenBoolean, TokenNull:
		n := p.node(types.NodeName, p.current.Position)
		n.StrValue = p.current.Value
		p.advance()
		return n
	default:
		return nil
	}
}

// parsePathStep parses the '.' operator into a raw binary path node; the
// rewriter flattens chains into a step list. Keyword literals (true,
// false, null) after a dot are field names, like the keyword operators.
func (p *Parser) parsePathStep(left *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // skip '.'

	right := p.parseKeywordName()
	var err error
	if right == nil {
		right, err = p.parseExpression(precedence[TokenDot])
	}
	if err != nil {
		return nil, err
	}

	n := p.node(types.NodePath, pos)
	n.LHS = left
	n.RHS = right
	if left.KeepArray {
		n.KeepArray = true
	}
	return n, nil
}

// parseFilter parses expr[pred]. Empty brackets ([]) keep the result as an
// array instead of collapsing a singleton sequence.
func (p *Parser) parseFilter(left *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // skip '['

	if p.current.Type == TokenBracketClose {
		p.advance()
		left.KeepArray = true
		return left, nil
	}

	pred, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenBracketClose); err != nil {
		return nil, err
	}

	n := p.node(types.NodeFilter, pos)
	n.LHS = left
	n.RHS = pred
	n.KeepArray = left.KeepArray
	return n, nil
}

// parseBinaryOp parses a left-associative binary operator.
func (p *Parser) parseBinaryOp(left *types.ASTNode) (*types.ASTNode, error) {
	op := p.current
	prec := p.getPrecedence(op.Type)
	p.advance()

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}

	tt := types.NodeBinary
	if op.Type == TokenApply {
		tt = types.NodeApply
	}
	n := p.node(tt, op.Position)
	n.StrValue = op.Type.String()
	n.LHS = left
	n.RHS = right
	return n, nil
}

// parseFunctionCall parses a call argument list. A ? argument is a
// placeholder and turns the call into a partial application.
func (p *Parser) parseFunctionCall(callee *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // skip '('

	n := p.node(types.NodeFunction, pos)
	n.LHS = callee
	hasPlaceholder := false

	if p.current.Type != TokenParenClose {
		for {
			if p.current.Type == TokenQuestion {
				hole := p.node(types.NodePlaceholder, p.current.Position)
				n.Arguments = append(n.Arguments, hole)
				hasPlaceholder = true
				p.advance()
			} else {
				arg, err := p.parseExpression(0)
				if err != nil {
					return nil, err
				}
				n.Arguments = append(n.Arguments, arg)
			}

			if p.current.Type == TokenParenClose {
				break
			}
			if err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	if hasPlaceholder {
		n.Type = types.NodePartial
	}
	return n, nil
}

// parseConditional parses cond ? then : else. The else branch is optional
// and defaults to undefined.
func (p *Parser) parseConditional(cond *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // skip '?'

	thenExpr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	n := p.node(types.NodeCondition, pos)
	n.LHS = cond
	n.RHS = thenExpr

	if p.current.Type == TokenColon {
		p.advance()
		elseExpr, err := p.parseExpression(precedence[TokenQuestion] - 1)
		if err != nil {
			return nil, err
		}
		n.Expressions = []*types.ASTNode{elseExpr}
	}

	return n, nil
}

// parseLambda parses function($a, $b) { body }. Parameters must be
// variables (S0208). A signature in angle brackets after the parameter
// list is rejected (S0201): signatures are unsupported.
func (p *Parser) parseLambda() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // skip 'function' or 'λ'

	n := p.node(types.NodeLambda, pos)

	if err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}

	if p.current.Type != TokenParenClose {
		for {
			if p.current.Type != TokenVariable || p.current.Value == "" {
				return nil, p.errorf(types.ErrInvalidParam, "parameter of a function definition must be a variable name, got %s", p.currentText())
			}
			param := p.node(types.NodeVariable, p.current.Position)
			param.StrValue = p.current.Value
			n.Arguments = append(n.Arguments, param)
			p.advance()

			if p.current.Type == TokenParenClose {
				break
			}
			if err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
	}
	p.advance() // skip ')'

	if p.current.Type == TokenLess {
		return nil, p.errorf(types.ErrSyntaxError, "function signatures are not supported")
	}

	if err := p.expect(TokenBraceOpen); err != nil {
		return nil, err
	}

	body, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	n.RHS = body

	if err := p.expect(TokenBraceClose); err != nil {
		return nil, err
	}

	return n, nil
}

// parseAssignment parses $var := expr. The left side must be a bare
// variable name (S0212); chains are right-associative.
func (p *Parser) parseAssignment(left *types.ASTNode) (*types.ASTNode, error) {
	if left.Type != types.NodeVariable || left.StrValue == "" {
		return nil, types.NewError(types.ErrExpectedVarLeft,
			"the left side of := must be a variable name", left.Position)
	}

	pos := p.current.Position
	prec := p.getPrecedence(TokenAssign)
	p.advance() // skip ':='

	right, err := p.parseExpression(prec - 1)
	if err != nil {
		return nil, err
	}

	n := p.node(types.NodeBind, pos)
	n.StrValue = left.StrValue
	n.LHS = left
	n.RHS = right
	return n, nil
}
