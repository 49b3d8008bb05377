// Package starlark loads widget converters written in Starlark.
//
// Each converters/<Kind>.star file defines convert(node) for the kind
// named by the file. The function returns either a head string or a
// dict or struct describing the fragment:
//
//	def convert(node):
//	    return {
//	        "head": "Gauge(value: %s)" % node.number("value"),
//	        "modifiers": [".tint(%s)" % node.color("tint")],
//	    }
package starlark

import (
	"encoding/json"
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// ToStarlark converts an attribute value to a Starlark value.
func ToStarlark(v any) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil
	case string:
		return starlark.String(val), nil
	case bool:
		return starlark.Bool(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return starlark.MakeInt64(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", val, err)
		}
		return starlark.Float(f), nil
	case float64:
		return starlark.Float(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := ToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil
	case *core.Object:
		dict := starlark.NewDict(val.Len())
		var err error
		val.Range(func(k string, item any) bool {
			var sv starlark.Value
			if sv, err = ToStarlark(item); err != nil {
				err = fmt.Errorf("dict key %q: %w", k, err)
				return false
			}
			err = dict.SetKey(starlark.String(k), sv)
			return err == nil
		})
		if err != nil {
			return nil, err
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToGo converts a Starlark value back into an attribute value.
func ToGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(val), nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		return json.Number(val.String()), nil
	case starlark.Float:
		return core.NormalizeValue(float64(val)), nil
	case *starlark.List:
		out := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			gv, err := ToGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			out[i] = gv
		}
		return out, nil
	case starlark.Tuple:
		out := make([]any, len(val))
		for i, item := range val {
			gv, err := ToGo(item)
			if err != nil {
				return nil, fmt.Errorf("tuple index %d: %w", i, err)
			}
			out[i] = gv
		}
		return out, nil
	case *starlark.Dict:
		obj := core.NewObject()
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %s", item[0].Type())
			}
			gv, err := ToGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", string(key), err)
			}
			obj.Set(string(key), gv)
		}
		return obj, nil
	case *starlarkstruct.Struct:
		obj := core.NewObject()
		for _, name := range val.AttrNames() {
			field, err := val.Attr(name)
			if err != nil {
				return nil, err
			}
			gv, err := ToGo(field)
			if err != nil {
				return nil, fmt.Errorf("struct field %q: %w", name, err)
			}
			obj.Set(name, gv)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported starlark type: %s", v.Type())
	}
}
