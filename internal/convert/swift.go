package convert

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// SwiftString quotes s as a Swift string literal.
func SwiftString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				sb.WriteString(`\u{` + strconv.FormatInt(int64(r), 16) + `}`)
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// SwiftLiteral renders an attribute value as a Swift literal.
func SwiftLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case string:
		return SwiftString(val)
	case json.Number:
		return val.String()
	case []any:
		if len(val) == 0 {
			return "[]"
		}
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = SwiftLiteral(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *core.Object:
		if val.Len() == 0 {
			return "[:]"
		}
		parts := make([]string, 0, val.Len())
		val.Range(func(k string, item any) bool {
			parts = append(parts, SwiftString(k)+": "+SwiftLiteral(item))
			return true
		})
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := core.NewObject()
		for _, k := range keys {
			obj.Set(k, val[k])
		}
		return SwiftLiteral(obj)
	default:
		if f, ok := core.Float(v); ok {
			return formatFloat(f)
		}
		return SwiftString("")
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// SwiftType maps a declared value class to a Swift type.
func SwiftType(class string) string {
	switch strings.TrimSpace(class) {
	case "", "String", "string":
		return "String"
	case "Int", "int", "Integer":
		return "Int"
	case "Bool", "bool", "Boolean":
		return "Bool"
	case "Double", "double", "Number":
		return "Double"
	case "Float", "float":
		return "Float"
	case "Array", "array":
		return "[Any]"
	case "Dictionary", "Object", "object", "Map":
		return "[String: Any]"
	default:
		return strings.TrimSpace(class)
	}
}

// ZeroValue returns the literal used for a slot without a default.
func ZeroValue(swiftType string) string {
	switch {
	case strings.HasSuffix(swiftType, "?"):
		return "nil"
	case swiftType == "String":
		return `""`
	case swiftType == "Bool":
		return "false"
	case swiftType == "Int", swiftType == "Double", swiftType == "Float", swiftType == "CGFloat":
		return "0"
	case strings.HasPrefix(swiftType, "[") && strings.Contains(swiftType, ":"):
		return "[:]"
	case strings.HasPrefix(swiftType, "["):
		return "[]"
	default:
		return swiftType + "()"
	}
}

// DefaultLiteral renders a default value for a slot of the given Swift type.
// Numeric strings assigned to numeric slots are emitted as numbers.
func DefaultLiteral(v any, swiftType string) string {
	switch swiftType {
	case "Int", "Double", "Float", "CGFloat":
		if s, ok := v.(string); ok {
			if _, err := strconv.ParseFloat(s, 64); err == nil {
				return s
			}
		}
	case "String":
		if n, ok := v.(json.Number); ok {
			return SwiftString(n.String())
		}
	}
	return SwiftLiteral(v)
}

var swiftKeywords = map[string]bool{
	"associatedtype": true, "class": true, "deinit": true, "enum": true, "extension": true,
	"fileprivate": true, "func": true, "import": true, "init": true, "inout": true,
	"internal": true, "let": true, "open": true, "operator": true, "private": true,
	"protocol": true, "public": true, "static": true, "struct": true, "subscript": true,
	"typealias": true, "var": true, "break": true, "case": true, "continue": true,
	"default": true, "defer": true, "do": true, "else": true, "fallthrough": true,
	"for": true, "guard": true, "if": true, "in": true, "repeat": true, "return": true,
	"switch": true, "where": true, "while": true, "as": true, "catch": true,
	"false": true, "is": true, "nil": true, "rethrows": true, "super": true,
	"self": true, "throw": true, "throws": true, "true": true, "try": true,
}

// Ident escapes Swift keywords used as identifiers.
func Ident(name string) string {
	if swiftKeywords[name] {
		return "`" + name + "`"
	}
	return name
}
