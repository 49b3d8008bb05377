package resolve

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// A global marker is a variable key of the form @@NAME@@. Markers may
// appear unquoted in partial source and inside longer strings.
var globalMarker = regexp.MustCompile(`^@@[A-Za-z0-9_]+@@$`)

var markerInSource = regexp.MustCompile(`@@[A-Za-z0-9_]+@@`)

// IsGlobalMarker reports whether key is a global marker.
func IsGlobalMarker(key string) bool {
	return globalMarker.MatchString(key)
}

// substituteSource replaces unquoted global markers in raw partial source
// with the JSON encoding of their values. String literals are left alone;
// quoted occurrences are handled after parsing by substituteValue.
func substituteSource(src []byte, vars *core.Object) ([]byte, error) {
	if !hasGlobalMarkers(vars) {
		return src, nil
	}

	var out strings.Builder
	out.Grow(len(src))
	inString := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inString {
			out.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(src) {
					i++
					out.WriteByte(src[i])
				}
			case '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out.WriteByte(c)
			continue
		}
		if c == '@' {
			if loc := markerInSource.FindIndex(src[i:]); loc != nil && loc[0] == 0 {
				key := string(src[i : i+loc[1]])
				if val, ok := vars.Get(key); ok {
					encoded, err := json.Marshal(val)
					if err != nil {
						return nil, fmt.Errorf("encode variable %s: %w", key, err)
					}
					out.Write(encoded)
					i += loc[1] - 1
					continue
				}
			}
		}
		out.WriteByte(c)
	}
	return []byte(out.String()), nil
}

func hasGlobalMarkers(vars *core.Object) bool {
	found := false
	vars.Range(func(key string, _ any) bool {
		found = IsGlobalMarker(key)
		return !found
	})
	return found
}

// substituteNode replaces variable placeholders throughout a parsed
// partial. A string value equal to a variable key becomes that variable's
// value, keeping its type. Global markers are also replaced inside longer
// strings. Object keys are never substituted, nor are the name and class
// fields of data entries, so a variable can override a slot's default
// without renaming the slot.
func substituteNode(n *core.Node, vars *core.Object) *core.Node {
	if n == nil || vars.Len() == 0 {
		return n
	}
	out := n.Copy()
	if v, ok := substituteString(n.Kind, vars).(string); ok {
		out.Kind = v
	}

	attrs := core.NewObject()
	n.Attrs.Range(func(key string, val any) bool {
		if key == core.KeyData {
			attrs.Set(key, substituteData(val, vars))
			return true
		}
		attrs.Set(key, substituteValue(val, vars))
		return true
	})
	out.Attrs = attrs

	if n.Child != nil {
		out.Child = substituteNode(n.Child, vars)
	}
	for i, c := range n.Children {
		out.Children[i] = substituteNode(c, vars)
	}
	return out
}

func substituteValue(v any, vars *core.Object) any {
	switch val := v.(type) {
	case string:
		return substituteString(val, vars)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = substituteValue(item, vars)
		}
		return out
	case *core.Object:
		out := core.NewObject()
		val.Range(func(k string, item any) bool {
			out.Set(k, substituteValue(item, vars))
			return true
		})
		return out
	default:
		return v
	}
}

func substituteString(s string, vars *core.Object) any {
	if v, ok := vars.Get(s); ok {
		return v
	}
	if !strings.Contains(s, "@@") {
		return s
	}
	return markerInSource.ReplaceAllStringFunc(s, func(m string) string {
		v, ok := vars.Get(m)
		if !ok {
			return m
		}
		return scalarText(v)
	})
}

// substituteData keeps name and class fields of data entries verbatim.
func substituteData(v any, vars *core.Object) any {
	entries, ok := v.([]any)
	if !ok {
		return substituteValue(v, vars)
	}
	out := make([]any, len(entries))
	for i, e := range entries {
		obj, ok := e.(*core.Object)
		if !ok {
			out[i] = substituteValue(e, vars)
			continue
		}
		entry := core.NewObject()
		obj.Range(func(k string, item any) bool {
			if k == "name" || k == "class" {
				entry.Set(k, item)
			} else {
				entry.Set(k, substituteValue(item, vars))
			}
			return true
		})
		out[i] = entry
	}
	return out
}

func scalarText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
