package evaluator

import (
	"errors"
	"regexp"
	"strconv"
	"testing"

	"github.com/johanventer/jsonata-go/pkg/types"
)

func TestStringFunctions(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "string of a number", expr: "$string(2.5)", want: `"2.5"`},
		{name: "string of a string", expr: `$string("x")`, want: `"x"`},
		{name: "string of an object", expr: `$string({"a":[1,2]})`, want: `"{\"a\":[1,2]}"`},
		{name: "string of undefined", expr: "$string(nothing)", input: `{}`, want: ""},
		{name: "string from context", expr: "a.$string()", input: `{"a":42}`, want: `"42"`},
		{name: "length", expr: `$length("héllo")`, want: "5"},
		{name: "length from context", expr: `$length()`, input: `"four"`, want: "4"},
		{name: "length of non-string", expr: "$length(42)", errCode: types.ErrBadArgument},
		{name: "substring", expr: `$substring("hello world", 6)`, want: `"world"`},
		{name: "substring with length", expr: `$substring("hello", 1, 3)`, want: `"ell"`},
		{name: "substring negative start", expr: `$substring("hello", -2)`, want: `"lo"`},
		{name: "substringBefore", expr: `$substringBefore("a@b", "@")`, want: `"a"`},
		{name: "substringBefore missing separator", expr: `$substringBefore("ab", "@")`, want: `"ab"`},
		{name: "substringAfter", expr: `$substringAfter("a@b", "@")`, want: `"b"`},
		{name: "uppercase", expr: `$uppercase("abc")`, want: `"ABC"`},
		{name: "lowercase", expr: `$lowercase("ABC")`, want: `"abc"`},
		{name: "trim normalizes whitespace", expr: `$trim("  a  b \n c ")`, want: `"a b c"`},
		{name: "pad right", expr: `$pad("ab", 4)`, want: `"ab  "`},
		{name: "pad left", expr: `$pad("ab", -4, "0")`, want: `"00ab"`},
		{name: "pad shorter than string", expr: `$pad("abc", 2)`, want: `"abc"`},
		{name: "contains", expr: `$contains("hello", "ell")`, want: "true"},
		{name: "split", expr: `$split("a,b,c", ",")`, want: `["a","b","c"]`},
		{name: "split with limit", expr: `$split("a,b,c", ",", 2)`, want: `["a","b"]`},
		{name: "split into characters", expr: `$split("abc", "")`, want: `["a","b","c"]`},
		{name: "join", expr: `$join(["a","b"], "-")`, want: `"a-b"`},
		{name: "join without separator", expr: `$join(["a","b"])`, want: `"ab"`},
		{name: "join rejects numbers", expr: "$join([1,2])", errCode: types.ErrBadArgument},
		{name: "replace", expr: `$replace("aaa", "a", "b")`, want: `"bbb"`},
		{name: "replace with limit", expr: `$replace("aaa", "a", "b", 2)`, want: `"bba"`},
		{name: "replace empty pattern", expr: `$replace("a", "", "b")`, errCode: types.ErrBadArgument},
	})
}

func TestNumericFunctions(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "number of a string", expr: `$number("3.5")`, want: "3.5"},
		{name: "number of a boolean", expr: "$number(true)", want: "1"},
		{name: "number passes numbers through", expr: "$number(4)", want: "4"},
		{name: "number of garbage", expr: `$number("abc")`, errCode: types.ErrCannotConvert},
		{name: "abs", expr: "$abs(-5)", want: "5"},
		{name: "floor", expr: "$floor(3.7)", want: "3"},
		{name: "ceil", expr: "$ceil(3.2)", want: "4"},
		{name: "round", expr: "$round(2.5)", want: "2"},
		{name: "round half to even", expr: "$round(3.5)", want: "4"},
		{name: "round with precision", expr: "$round(2.345, 2)", want: "2.34"},
		{name: "power", expr: "$power(2, 10)", want: "1024"},
		{name: "sqrt", expr: "$sqrt(16)", want: "4"},
		{name: "sqrt of negative", expr: "$sqrt(-1)", errCode: types.ErrFunctionDomain},
		{name: "formatBase", expr: "$formatBase(255, 16)", want: `"ff"`},
		{name: "formatBase default", expr: "$formatBase(42)", want: `"42"`},
		{name: "formatBase bad base", expr: "$formatBase(1, 99)", errCode: types.ErrFunctionDomain},
	})
}

func TestAggregateFunctions(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "sum", expr: "$sum([1,2,3])", want: "6"},
		{name: "sum of scalar", expr: "$sum(5)", want: "5"},
		{name: "sum of undefined", expr: "$sum(nothing)", input: `{}`, want: ""},
		{name: "sum rejects strings", expr: `$sum([1,"a"])`, errCode: types.ErrBadArgumentArray},
		{name: "max", expr: "$max([3,1,2])", want: "3"},
		{name: "min", expr: "$min([3,1,2])", want: "1"},
		{name: "average", expr: "$average([1,2,3])", want: "2"},
		{name: "count", expr: "$count([1,2,3])", want: "3"},
		{name: "count of scalar", expr: "$count(1)", want: "1"},
		{name: "count of undefined", expr: "$count(nothing)", input: `{}`, want: "0"},
	})
}

func TestArrayFunctions(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "append", expr: "$append([1,2], [3])", want: "[1,2,3]"},
		{name: "append scalar", expr: "$append(1, 2)", want: "[1,2]"},
		{name: "append undefined identity", expr: "$append(nothing, [1])", input: `{}`, want: "[1]"},
		{name: "reverse", expr: "$reverse([1,2,3])", want: "[3,2,1]"},
		{name: "sort numbers", expr: "$sort([3,1,2])", want: "[1,2,3]"},
		{name: "sort strings", expr: `$sort(["b","a"])`, want: `["a","b"]`},
		{name: "sort mixed rejected", expr: `$sort([1,"a"])`, errCode: types.ErrNotComparable},
		{name: "sort with comparator", expr: "$sort([1,3,2], function($l, $r){ $l < $r })", want: "[3,2,1]"},
		{name: "distinct", expr: "$distinct([1,2,1,3,2])", want: "[1,2,3]"},
		{name: "distinct deep", expr: `$distinct([{"a":1},{"a":1}])`, want: `{"a":1}`},
		{name: "zip", expr: "$zip([1,2],[3,4])", want: "[[1,3],[2,4]]"},
		{name: "zip truncates to shortest", expr: "$zip([1,2,3],[4])", want: "[[1,4]]"},
		{name: "zip single array", expr: "$zip([1,2])", want: "[[1],[2]]"},
	})
}

func TestObjectFunctions(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "keys", expr: "$keys($)", input: `{"b":1,"a":2}`, want: `["b","a"]`},
		{name: "keys over array union", expr: "$keys($)", input: `[{"a":1},{"b":2},{"a":3}]`, want: `["a","b"]`},
		{name: "values", expr: "$values($)", input: `{"a":1,"b":2}`, want: "[1,2]"},
		{name: "lookup", expr: `$lookup($, "a")`, input: `{"a":1}`, want: "1"},
		{name: "lookup over array", expr: `$lookup(items, "a")`, input: `{"items":[{"a":1},{"a":2}]}`, want: "[1,2]"},
		{name: "merge", expr: `$merge([{"a":1},{"b":2},{"a":3}])`, want: `{"a":3,"b":2}`},
		{name: "spread", expr: "$spread($)", input: `{"a":1,"b":2}`, want: `[{"a":1},{"b":2}]`},
		{name: "each", expr: `$each($, function($v, $k){ $k & "=" & $v })`, input: `{"a":1,"b":2}`, want: `["a=1","b=2"]`},
		{name: "sift", expr: "$sift($, function($v){ $v > 1 })", input: `{"a":1,"b":2,"c":3}`, want: `{"b":2,"c":3}`},
		{name: "sift empty result is undefined", expr: "$sift($, function($v){ false })", input: `{"a":1}`, want: ""},
	})
}

func TestHigherOrderFunctions(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "map", expr: "$map([1,2,3], function($v){ $v * 2 })", want: "[2,4,6]"},
		{name: "map with index", expr: "$map([9,9], function($v, $i){ $i })", want: "[0,1]"},
		{name: "map with builtin", expr: `$map(["a","b"], $uppercase)`, want: `["A","B"]`},
		{name: "filter", expr: "$filter([1,2,3,4], function($v){ $v % 2 = 0 })", want: "[2,4]"},
		{name: "reduce", expr: "$reduce([1,2,3,4], function($a, $b){ $a + $b })", want: "10"},
		{name: "reduce with init", expr: "$reduce([1,2], function($a, $b){ $a + $b }, 10)", want: "13"},
		{name: "reduce of empty", expr: "$reduce([], function($a, $b){ $a })", want: ""},
		{name: "single", expr: "$single([1,2,3], function($v){ $v = 2 })", want: "2"},
		{name: "single no match", expr: "$single([1], function($v){ false })", errCode: types.ErrSingleNoMatch},
		{name: "single with multiple matches", expr: "$single([1,1], function($v){ true })", errCode: types.ErrSingleNoMatch},
	})
}

func TestMiscFunctions(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "boolean", expr: "$boolean(1)", want: "true"},
		{name: "boolean of empty array", expr: "$boolean([])", want: "false"},
		{name: "not", expr: "$not(false)", want: "true"},
		{name: "exists", expr: "$exists(a)", input: `{"a":0}`, want: "true"},
		{name: "exists of missing", expr: "$exists(nope)", input: `{}`, want: "false"},
		{name: "exists from context", expr: "a.$exists()", input: `{"a":1}`, want: "true"},
		{name: "exists of undefined context", expr: "$exists()", input: "", want: "false"},
		{name: "type of string", expr: `$type("x")`, want: `"string"`},
		{name: "type of null", expr: "$type(null)", want: `"null"`},
		{name: "type of array", expr: "$type([1])", want: `"array"`},
		{name: "type of function", expr: "$type($string)", want: `"function"`},
		{name: "error raises", expr: `$error("boom")`, errCode: types.ErrFunctionDomain},
	})
}

func TestUUIDFunction(t *testing.T) {
	got, err := evalString(t, "$uuid()", "")
	if err != nil {
		t.Fatal(err)
	}
	unquoted, err := strconv.Unquote(got)
	if err != nil {
		t.Fatalf("expected a JSON string, got %s", got)
	}
	pattern := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	if !pattern.MatchString(unquoted) {
		t.Errorf("expected a UUID, got %s", unquoted)
	}
}

func TestMillisAndNow(t *testing.T) {
	got, err := evalString(t, "$millis() = $millis()", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "true" {
		t.Error("expected every $millis call within one evaluation to agree")
	}

	now, err := evalString(t, "$now()", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(now) < 20 {
		t.Errorf("expected a timestamp, got %s", now)
	}
}

func TestRandomFunction(t *testing.T) {
	got, err := evalString(t, "$random() >= 0 and $random() < 1", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "true" {
		t.Errorf("expected $random in [0,1), got %s", got)
	}
}

func TestBuiltinRegistryReadOnly(t *testing.T) {
	first := builtinRegistry()
	second := builtinRegistry()
	if len(first) == 0 {
		t.Fatal("registry must not be empty")
	}
	for name, fn := range first {
		if second[name] != fn {
			t.Fatalf("registry rebuilt between calls: %s", name)
		}
	}
	var jerr *types.Error
	_, err := evalString(t, "$definitelymissing()", "")
	if !errors.As(err, &jerr) || jerr.Code != types.ErrInvokedNonFunction {
		t.Fatalf("expected T1006 for unknown function, got %v", err)
	}
}
