package jsonata

import (
	"context"
	"testing"

	"github.com/johanventer/jsonata-go/pkg/cache"
	"github.com/johanventer/jsonata-go/pkg/evaluator"
	"github.com/johanventer/jsonata-go/pkg/value"
)

func TestEvalString(t *testing.T) {
	out, err := EvalString(context.Background(), `"Hello, " & name & "!"`, `{"name":"world"}`)
	if err != nil {
		t.Fatal(err)
	}
	if out != `"Hello, world!"` {
		t.Errorf("expected greeting, got %s", out)
	}
}

func TestCompileOnceEvalMany(t *testing.T) {
	expr, err := Compile("$sum(values)")
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		input string
		want  string
	}{
		{`{"values":[1,2,3]}`, "6"},
		{`{"values":[10]}`, "10"},
		{`{}`, ""},
	} {
		out, err := expr.EvalString(context.Background(), tc.input)
		if err != nil {
			t.Fatal(err)
		}
		if out != tc.want {
			t.Errorf("input %s: expected %s, got %s", tc.input, tc.want, out)
		}
	}
}

func TestCompileError(t *testing.T) {
	if _, err := Compile("1 +"); err == nil {
		t.Fatal("expected a compile error")
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected MustCompile to panic on a bad expression")
		}
	}()
	MustCompile("1 +")
}

func TestCompileCached(t *testing.T) {
	c := cache.New(8)
	for i := 0; i < 3; i++ {
		expr, err := CompileCached("a + b", c)
		if err != nil {
			t.Fatal(err)
		}
		out, err := expr.EvalString(context.Background(), `{"a":1,"b":2}`)
		if err != nil {
			t.Fatal(err)
		}
		if out != "3" {
			t.Errorf("expected 3, got %s", out)
		}
	}
	if c.Len() != 1 {
		t.Errorf("expected one cached expression, got %d", c.Len())
	}
}

func TestEvalWithArena(t *testing.T) {
	arena := value.NewArena()
	input, err := value.ParseJSON(arena, `{"a":2}`)
	if err != nil {
		t.Fatal(err)
	}

	expr, err := Compile("$x + a", evaluator.WithBindings(map[string]*value.Value{
		"x": arena.Number(40),
	}))
	if err != nil {
		t.Fatal(err)
	}
	result, err := expr.Eval(context.Background(), arena, input)
	if err != nil {
		t.Fatal(err)
	}
	out, err := value.Serialize(result, false)
	if err != nil {
		t.Fatal(err)
	}
	if out != "42" {
		t.Errorf("expected 42, got %s", out)
	}
}
