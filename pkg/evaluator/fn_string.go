package evaluator

import (
	"strings"
	"unicode/utf8"

	"github.com/johanventer/jsonata-go/pkg/value"
)

// String built-ins. All of these except $join substitute the current
// context for a missing first argument, and all propagate an Undefined first argument
// silently.
func stringBuiltins() []*NativeFn {
	return []*NativeFn{
		{Name: "string", MinArgs: 1, MaxArgs: 2, AcceptsContext: true, Impl: fnString},
		{Name: "length", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnLength},
		{Name: "substring", MinArgs: 2, MaxArgs: 3, AcceptsContext: true, Impl: fnSubstring},
		{Name: "substringBefore", MinArgs: 2, MaxArgs: 2, AcceptsContext: true, Impl: fnSubstringBefore},
		{Name: "substringAfter", MinArgs: 2, MaxArgs: 2, AcceptsContext: true, Impl: fnSubstringAfter},
		{Name: "uppercase", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnUppercase},
		{Name: "lowercase", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnLowercase},
		{Name: "trim", MinArgs: 1, MaxArgs: 1, AcceptsContext: true, Impl: fnTrim},
		{Name: "pad", MinArgs: 2, MaxArgs: 3, AcceptsContext: true, Impl: fnPad},
		{Name: "contains", MinArgs: 2, MaxArgs: 2, AcceptsContext: true, Impl: fnContains},
		{Name: "split", MinArgs: 2, MaxArgs: 3, AcceptsContext: true, Impl: fnSplit},
		{Name: "join", MinArgs: 1, MaxArgs: 2, Impl: fnJoin},
		{Name: "replace", MinArgs: 3, MaxArgs: 4, AcceptsContext: true, Impl: fnReplace},
	}
}

func fnString(s *state, pos int, args []*value.Value) (*value.Value, error) {
	v := args[0]
	if v.IsUndefined() {
		return value.Undefined(), nil
	}
	prettify := len(args) == 2 && truthy(args[1])
	if v.IsString() {
		return v, nil
	}
	var out string
	var err error
	if prettify {
		out, err = value.Serialize(v, true)
	} else {
		out, err = stringify(v)
	}
	if err != nil {
		return nil, err
	}
	return s.arena.String(out), nil
}

func fnLength(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	str, err := argString("length", pos, args, 0)
	if err != nil {
		return nil, err
	}
	return s.arena.Number(float64(utf8.RuneCountInString(str))), nil
}

func fnSubstring(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	str, err := argString("substring", pos, args, 0)
	if err != nil {
		return nil, err
	}
	start, err := argNumber("substring", pos, args, 1)
	if err != nil {
		return nil, err
	}

	runes := []rune(str)
	n := len(runes)

	first := int(start)
	if first < 0 {
		first += n
		if first < 0 {
			first = 0
		}
	}
	if first >= n {
		return s.arena.String(""), nil
	}

	last := n
	if len(args) == 3 {
		length, err := argNumber("substring", pos, args, 2)
		if err != nil {
			return nil, err
		}
		if length < 0 {
			length = 0
		}
		last = first + int(length)
		if last > n {
			last = n
		}
	}

	return s.arena.String(string(runes[first:last])), nil
}

func fnSubstringBefore(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	str, err := argString("substringBefore", pos, args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := argString("substringBefore", pos, args, 1)
	if err != nil {
		return nil, err
	}
	if i := strings.Index(str, sep); i >= 0 {
		return s.arena.String(str[:i]), nil
	}
	return s.arena.String(str), nil
}

func fnSubstringAfter(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	str, err := argString("substringAfter", pos, args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := argString("substringAfter", pos, args, 1)
	if err != nil {
		return nil, err
	}
	if i := strings.Index(str, sep); i >= 0 {
		return s.arena.String(str[i+len(sep):]), nil
	}
	return s.arena.String(str), nil
}

func fnUppercase(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	str, err := argString("uppercase", pos, args, 0)
	if err != nil {
		return nil, err
	}
	return s.arena.String(strings.ToUpper(str)), nil
}

func fnLowercase(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	str, err := argString("lowercase", pos, args, 0)
	if err != nil {
		return nil, err
	}
	return s.arena.String(strings.ToLower(str)), nil
}

// fnTrim collapses runs of whitespace to a single space and strips the
// ends, per the XPath normalize-space rules JSONata follows.
func fnTrim(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	str, err := argString("trim", pos, args, 0)
	if err != nil {
		return nil, err
	}
	return s.arena.String(strings.Join(strings.Fields(str), " ")), nil
}

func fnPad(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	str, err := argString("pad", pos, args, 0)
	if err != nil {
		return nil, err
	}
	width, err := argInteger("pad", pos, args, 1)
	if err != nil {
		return nil, err
	}
	padChars := " "
	if len(args) == 3 {
		if padChars, err = argString("pad", pos, args, 2); err != nil {
			return nil, err
		}
		if padChars == "" {
			return s.arena.String(str), nil
		}
	}

	size := utf8.RuneCountInString(str)
	missing := width
	if missing < 0 {
		missing = -missing
	}
	missing -= size
	if missing <= 0 {
		return s.arena.String(str), nil
	}

	pad := strings.Repeat(padChars, missing/len([]rune(padChars))+1)
	pad = string([]rune(pad)[:missing])

	if width < 0 {
		return s.arena.String(pad + str), nil
	}
	return s.arena.String(str + pad), nil
}

func fnContains(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	str, err := argString("contains", pos, args, 0)
	if err != nil {
		return nil, err
	}
	sub, err := argString("contains", pos, args, 1)
	if err != nil {
		return nil, err
	}
	return value.Bool(strings.Contains(str, sub)), nil
}

func fnSplit(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	str, err := argString("split", pos, args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := argString("split", pos, args, 1)
	if err != nil {
		return nil, err
	}

	limit := -1
	if len(args) == 3 {
		n, err := argNumber("split", pos, args, 2)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, argBad("split", pos, 2, "a non-negative number")
		}
		limit = int(n)
	}

	var parts []string
	if sep == "" {
		for _, r := range str {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(str, sep)
	}
	if limit >= 0 && len(parts) > limit {
		parts = parts[:limit]
	}

	arr := s.arena.Array(len(parts))
	arr.SetCons()
	for _, part := range parts {
		arr.Append(s.arena.String(part))
	}
	return arr, nil
}

func fnJoin(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}

	sep := ""
	if len(args) == 2 {
		var err error
		if sep, err = argString("join", pos, args, 1); err != nil {
			return nil, err
		}
	}

	parts := make([]string, 0, args[0].Len())
	for _, item := range items(args[0]) {
		if !item.IsString() {
			return nil, argBad("join", pos, 0, "an array of strings")
		}
		parts = append(parts, item.Str())
	}
	return s.arena.String(strings.Join(parts, sep)), nil
}

// fnReplace substitutes occurrences of a literal pattern. Regex patterns
// are not implemented; the pattern must be a non-empty string.
func fnReplace(s *state, pos int, args []*value.Value) (*value.Value, error) {
	if args[0].IsUndefined() {
		return value.Undefined(), nil
	}
	str, err := argString("replace", pos, args, 0)
	if err != nil {
		return nil, err
	}
	pattern, err := argString("replace", pos, args, 1)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		return nil, argBad("replace", pos, 1, "a non-empty string")
	}
	replacement, err := argString("replace", pos, args, 2)
	if err != nil {
		return nil, err
	}

	limit := -1
	if len(args) == 4 {
		n, err := argNumber("replace", pos, args, 3)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, argBad("replace", pos, 3, "a non-negative number")
		}
		limit = int(n)
	}

	return s.arena.String(strings.Replace(str, pattern, replacement, limit)), nil
}
