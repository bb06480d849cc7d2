package parser

import (
	"errors"
	"testing"

	"github.com/johanventer/jsonata-go/pkg/types"
)

type lexerTestCase struct {
	name     string
	input    string
	expected []Token
	errCode  types.ErrorCode
}

func runLexerTests(t *testing.T, tests []lexerTestCase) {
	t.Helper()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLexer(tc.input)
			var got []Token
			for {
				tok := l.Next(false)
				if tok.Type == TokenEOF || tok.Type == TokenError {
					break
				}
				got = append(got, tok)
			}

			if tc.errCode != "" {
				err := l.Error()
				if err == nil {
					t.Fatalf("expected error %s, got none", tc.errCode)
				}
				var jerr *types.Error
				if !errors.As(err, &jerr) || jerr.Code != tc.errCode {
					t.Fatalf("expected error code %s, got %v", tc.errCode, err)
				}
				return
			}
			if err := l.Error(); err != nil {
				t.Fatalf("unexpected lexer error: %v", err)
			}

			if len(got) != len(tc.expected) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tc.expected), len(got), got)
			}
			for i, want := range tc.expected {
				if got[i] != want {
					t.Errorf("token %d: expected %+v, got %+v", i, want, got[i])
				}
			}
		})
	}
}

func TestLexerBasics(t *testing.T) {
	runLexerTests(t, []lexerTestCase{
		{
			name:  "name with whitespace",
			input: "   abc  ",
			expected: []Token{
				{Type: TokenName, Value: "abc", Position: 3},
			},
		},
		{
			name:  "double quoted string",
			input: `"hello"`,
			expected: []Token{
				{Type: TokenString, Value: "hello", Position: 1},
			},
		},
		{
			name:  "single quoted string",
			input: `'world'`,
			expected: []Token{
				{Type: TokenString, Value: "world", Position: 1},
			},
		},
		{
			name:  "numbers",
			input: "0 42 3.14 1e-10",
			expected: []Token{
				{Type: TokenNumber, Value: "0", Position: 0},
				{Type: TokenNumber, Value: "42", Position: 2},
				{Type: TokenNumber, Value: "3.14", Position: 5},
				{Type: TokenNumber, Value: "1e-10", Position: 10},
			},
		},
		{
			name:  "number then range",
			input: "1..5",
			expected: []Token{
				{Type: TokenNumber, Value: "1", Position: 0},
				{Type: TokenRange, Value: "..", Position: 1},
				{Type: TokenNumber, Value: "5", Position: 3},
			},
		},
		{
			name:  "variables",
			input: "$x $ $$",
			expected: []Token{
				{Type: TokenVariable, Value: "x", Position: 1},
				{Type: TokenVariable, Value: "", Position: 4},
				{Type: TokenVariable, Value: "$", Position: 6},
			},
		},
		{
			name:  "two char symbols",
			input: "!= <= >= ~> := **",
			expected: []Token{
				{Type: TokenNotEqual, Value: "!=", Position: 0},
				{Type: TokenLessEqual, Value: "<=", Position: 3},
				{Type: TokenGreaterEqual, Value: ">=", Position: 6},
				{Type: TokenApply, Value: "~>", Position: 9},
				{Type: TokenAssign, Value: ":=", Position: 12},
				{Type: TokenDescendant, Value: "**", Position: 15},
			},
		},
		{
			name:  "keywords",
			input: "and or in true null",
			expected: []Token{
				{Type: TokenAnd, Value: "and", Position: 0},
				{Type: TokenOr, Value: "or", Position: 4},
				{Type: TokenIn, Value: "in", Position: 7},
				{Type: TokenBoolean, Value: "true", Position: 10},
				{Type: TokenNull, Value: "null", Position: 15},
			},
		},
		{
			name:  "escaped name",
			input: "`first name`",
			expected: []Token{
				{Type: TokenNameEsc, Value: "first name", Position: 1},
			},
		},
		{
			name:  "comment is skipped",
			input: "a /* comment */ b",
			expected: []Token{
				{Type: TokenName, Value: "a", Position: 0},
				{Type: TokenName, Value: "b", Position: 16},
			},
		},
		{
			name:  "string escapes decoded",
			input: `"a\tbA"`,
			expected: []Token{
				{Type: TokenString, Value: "a\tbA", Position: 1},
			},
		},
		{
			name:  "surrogate pair decoded",
			input: `"\uD83D\uDE00"`,
			expected: []Token{
				{Type: TokenString, Value: "😀", Position: 1},
			},
		},
		{
			name:    "unsupported escape",
			input:   `"a\q"`,
			errCode: types.ErrUnsupportedEscape,
		},
		{
			name:    "invalid unicode escape",
			input:   `"\uZZZZ"`,
			errCode: types.ErrInvalidUnicode,
		},
		{
			name:    "lone exclamation mark",
			input:   "a ! b",
			errCode: types.ErrUnknownOperator,
		},
		{
			name:    "unterminated string",
			input:   `"abc`,
			errCode: types.ErrStringNotClosed,
		},
		{
			name:    "unterminated comment",
			input:   "a /* never closed",
			errCode: types.ErrCommentNotClosed,
		},
		{
			name:    "unterminated escaped name",
			input:   "`oops",
			errCode: types.ErrNameNotClosed,
		},
	})
}

func TestLexerRegexContext(t *testing.T) {
	// In operand position a slash opens a regex literal.
	l := NewLexer("/ab+/i")
	tok := l.Next(true)
	if tok.Type != TokenRegex {
		t.Fatalf("expected regex token, got %v", tok.Type)
	}
	if tok.Value != "ab+" {
		t.Errorf("expected pattern %q, got %q", "ab+", tok.Value)
	}

	// In operator position the same slash is division.
	l = NewLexer("/")
	tok = l.Next(false)
	if tok.Type != TokenDiv {
		t.Fatalf("expected division token, got %v", tok.Type)
	}
}

func FuzzLexer(f *testing.F) {
	for _, seed := range []string{
		`"Hello, " & name & "!"`,
		"$sum(Account.Order.Product.(Price * Quantity))",
		"(1..10)[$ % 2 = 0]",
		"`a b` /*c*/ 'd\\u0041'",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, input string) {
		l := NewLexer(input)
		for i := 0; i < 10000; i++ {
			tok := l.Next(false)
			if tok.Type == TokenEOF || tok.Type == TokenError {
				break
			}
		}
	})
}
