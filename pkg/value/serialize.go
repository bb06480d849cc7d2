package value

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/pretty"

	"github.com/johanventer/jsonata-go/pkg/types"
)

// Serialize renders a Value as JSON text.
//
// Undefined serializes as the empty string at the top level; inside arrays
// and objects, Undefined members are absent. Function values behave like
// Undefined. Non-finite numbers are a domain error (D3001).
func Serialize(v *Value, prettyPrint bool) (string, error) {
	if v == nil || v.IsUndefined() || v.IsCallable() {
		return "", nil
	}
	var sb strings.Builder
	if err := writeValue(&sb, v); err != nil {
		return "", err
	}
	out := sb.String()
	if prettyPrint {
		out = strings.TrimSuffix(string(pretty.Pretty([]byte(out))), "\n")
	}
	return out, nil
}

func writeValue(sb *strings.Builder, v *Value) error {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindNumber:
		s, err := FormatNumber(v.num)
		if err != nil {
			return err
		}
		sb.WriteString(s)
	case KindString:
		writeString(sb, v.str)
	case KindArray:
		sb.WriteByte('[')
		first := true
		for _, item := range v.elems {
			if item.IsUndefined() || item.IsCallable() {
				continue
			}
			if !first {
				sb.WriteByte(',')
			}
			first = false
			if err := writeValue(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		first := true
		for _, key := range v.keys {
			item := v.fields[key]
			if item.IsUndefined() || item.IsCallable() {
				continue
			}
			if !first {
				sb.WriteByte(',')
			}
			first = false
			writeString(sb, key)
			sb.WriteByte(':')
			if err := writeValue(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	}
	return nil
}

// FormatNumber renders a number the way JSONata's $string does: integral
// values without a decimal point, everything else in the shortest
// round-trip decimal form.
func FormatNumber(n float64) (string, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "", types.NewError(types.ErrNonFiniteResult, "attempting to serialize a non-finite number", -1)
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	}
	return strconv.FormatFloat(n, 'g', -1, 64), nil
}

const hexDigits = "0123456789abcdef"

// writeString writes s as a JSON string literal. Control characters use the
// short escapes where JSON defines them, \u00XX otherwise.
func writeString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			if c < utf8.RuneSelf {
				sb.WriteByte(c)
				i++
				continue
			}
			_, size := utf8.DecodeRuneInString(s[i:])
			sb.WriteString(s[i : i+size])
			i += size
			continue
		}
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteString(`\u00`)
			sb.WriteByte(hexDigits[c>>4])
			sb.WriteByte(hexDigits[c&0xf])
		}
		i++
	}
	sb.WriteByte('"')
}
