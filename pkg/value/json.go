package value

import (
	"github.com/tidwall/gjson"

	"github.com/johanventer/jsonata-go/pkg/types"
)

// ParseJSON parses a JSON document into an arena-allocated Value.
//
// Parsing is delegated to gjson; the tree walk below only maps its results
// onto the arena. Object member order follows the document.
func ParseJSON(a *Arena, src string) (*Value, error) {
	if !gjson.Valid(src) {
		return nil, types.NewError(types.ErrInvalidJSON, "invalid JSON input", 0)
	}
	return fromResult(a, gjson.Parse(src)), nil
}

func fromResult(a *Arena, r gjson.Result) *Value {
	switch {
	case r.IsObject():
		obj := a.Object()
		r.ForEach(func(key, item gjson.Result) bool {
			obj.SetField(key.String(), fromResult(a, item))
			return true
		})
		return obj
	case r.IsArray():
		items := r.Array()
		arr := a.Array(len(items))
		for _, item := range items {
			arr.Append(fromResult(a, item))
		}
		return arr
	}

	switch r.Type {
	case gjson.String:
		return a.String(r.Str)
	case gjson.Number:
		return a.Number(r.Num)
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.Null:
		return Null()
	default:
		return Undefined()
	}
}
