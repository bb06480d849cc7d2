package value

import (
	"testing"
)

func TestParseJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string // compact serialization; defaults to src
	}{
		{name: "null", src: `null`},
		{name: "booleans", src: `[true,false]`},
		{name: "number", src: `42`},
		{name: "fraction", src: `2.5`},
		{name: "string", src: `"hello"`},
		{name: "escapes", src: `"a\"b\\c\nd"`},
		{name: "array", src: `[1,2,3]`},
		{name: "nested", src: `{"a":{"b":[1,{"c":null}]}}`},
		{name: "key order preserved", src: `{"z":1,"a":2,"m":3}`},
		{name: "empty object", src: `{}`},
		{name: "empty array", src: `[]`},
		{name: "unicode", src: `"héllo ✓"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewArena()
			v, err := ParseJSON(a, tc.src)
			if err != nil {
				t.Fatalf("ParseJSON: %v", err)
			}
			out, err := Serialize(v, false)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			want := tc.want
			if want == "" {
				want = tc.src
			}
			if out != want {
				t.Errorf("round trip: expected %s, got %s", want, out)
			}
		})
	}
}

func TestParseJSONInvalid(t *testing.T) {
	a := NewArena()
	if _, err := ParseJSON(a, `{"a":`); err == nil {
		t.Error("expected an error for truncated JSON")
	}
	if _, err := ParseJSON(a, ``); err == nil {
		t.Error("expected an error for empty input")
	}
}

func TestSerializeUndefined(t *testing.T) {
	a := NewArena()

	// top level: empty string
	out, err := Serialize(Undefined(), false)
	if err != nil || out != "" {
		t.Errorf("expected empty string, got %q (%v)", out, err)
	}

	// inside an array: absent
	arr := a.Array(3)
	arr.Append(a.Number(1))
	arr.Append(Undefined())
	arr.Append(a.Number(2))
	out, _ = Serialize(arr, false)
	if out != "[1,2]" {
		t.Errorf("expected [1,2], got %s", out)
	}

	// inside an object: absent
	obj := a.Object()
	obj.SetField("a", a.Number(1))
	obj.SetField("b", Undefined())
	out, _ = Serialize(obj, false)
	if out != `{"a":1}` {
		t.Errorf("expected {\"a\":1}, got %s", out)
	}
}

func TestSerializePretty(t *testing.T) {
	a := NewArena()
	v, err := ParseJSON(a, `{"a":[1,2]}`)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Serialize(v, true)
	if err != nil {
		t.Fatal(err)
	}
	if out == `{"a":[1,2]}` {
		t.Errorf("expected indented output, got %s", out)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{42, "42"},
		{-1, "-1"},
		{0, "0"},
		{2.5, "2.5"},
		{1e21, "1e+21"},
		{1e-10, "1e-10"},
	}
	for _, tc := range tests {
		got, err := FormatNumber(tc.in)
		if err != nil {
			t.Errorf("FormatNumber(%v): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("FormatNumber(%v): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestDeepEqual(t *testing.T) {
	a := NewArena()
	parse := func(src string) *Value {
		v, err := ParseJSON(a, src)
		if err != nil {
			t.Fatalf("ParseJSON(%s): %v", src, err)
		}
		return v
	}

	tests := []struct {
		name  string
		x, y  string
		equal bool
	}{
		{"numbers", "1", "1.0", true},
		{"strings", `"a"`, `"a"`, true},
		{"different kinds", "1", `"1"`, false},
		{"arrays", "[1,[2,3]]", "[1,[2,3]]", true},
		{"array order matters", "[1,2]", "[2,1]", false},
		{"objects ignore key order", `{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{"objects differ by value", `{"a":1}`, `{"a":2}`, false},
		{"null", "null", "null", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeepEqual(parse(tc.x), parse(tc.y)); got != tc.equal {
				t.Errorf("DeepEqual(%s, %s): expected %v, got %v", tc.x, tc.y, tc.equal, got)
			}
		})
	}

	if !DeepEqual(Undefined(), Undefined()) {
		t.Error("Undefined must equal itself structurally")
	}
}

func TestSequenceFlags(t *testing.T) {
	a := NewArena()

	seq := a.Sequence(1)
	if !seq.IsSequence() {
		t.Error("Sequence must be flagged as a sequence")
	}
	arr := a.Array(1)
	if arr.IsSequence() {
		t.Error("Array must not be flagged as a sequence")
	}

	seq.SetKeepSingleton()
	if !seq.KeepsSingleton() {
		t.Error("keep-singleton flag lost")
	}
	arr.SetCons()
	if !arr.IsCons() {
		t.Error("cons flag lost")
	}
}

func TestArenaReset(t *testing.T) {
	a := NewArena()
	for i := 0; i < 1000; i++ {
		a.Number(float64(i))
	}
	a.Reset()
	v := a.Number(7)
	if v.Number() != 7 {
		t.Errorf("expected 7 after reset, got %v", v.Number())
	}
}

func TestObjectLastWriteWins(t *testing.T) {
	a := NewArena()
	obj := a.Object()
	obj.SetField("a", a.Number(1))
	obj.SetField("b", a.Number(2))
	obj.SetField("a", a.Number(3))

	if len(obj.Keys()) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(obj.Keys()))
	}
	if obj.Field("a").Number() != 3 {
		t.Errorf("expected overwrite to 3, got %v", obj.Field("a").Number())
	}
	out, _ := Serialize(obj, false)
	if out != `{"a":3,"b":2}` {
		t.Errorf("expected position preserved, got %s", out)
	}
}
