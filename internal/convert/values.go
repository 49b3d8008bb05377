package convert

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Expr renders a binding expression against the view's data object.
func (c *Context) Expr(expr string) string {
	return "data." + expr
}

// Value renders an attribute value: binding expressions read from data,
// anything else becomes a literal.
func (c *Context) Value(v any) string {
	if s, ok := v.(string); ok {
		if expr, wrapped := core.ParseBindingExpr(s); wrapped && expr != "" {
			return c.Expr(expr)
		}
	}
	return SwiftLiteral(v)
}

// TextValue renders a value for display in Text.
func (c *Context) TextValue(v any) string {
	if s, ok := v.(string); ok {
		if expr, wrapped := core.ParseBindingExpr(s); wrapped && expr != "" {
			return `"\(` + c.Expr(expr) + `)"`
		}
		return SwiftString(s)
	}
	if v == nil {
		return `""`
	}
	return SwiftString(strings.Trim(SwiftLiteral(v), `"`))
}

// TwoWay renders a two-way binding ($data.x) for attribute attr.
// ok is false when the value is not a binding expression.
func (c *Context) TwoWay(n *core.Node, attr string) (string, bool) {
	s, ok := n.StringAttr(attr)
	if !ok {
		return "", false
	}
	expr, wrapped := core.ParseBindingExpr(s)
	if !wrapped || expr == "" {
		return "", false
	}
	return "$" + c.Expr(expr), true
}

// Action renders the call of an event handler, if n binds one for attr.
func (c *Context) Action(n *core.Node, attr string) (string, bool) {
	s, ok := n.StringAttr(attr)
	if !ok {
		return "", false
	}
	expr, wrapped := core.ParseBindingExpr(s)
	if !wrapped || !core.IsIdentifier(expr) {
		return "", false
	}
	return fmt.Sprintf("actions?.%s()", Ident(expr)), true
}

// Color renders a color attribute. Strings starting with "#" are hex
// colors; other strings name asset colors.
func (c *Context) Color(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if expr, wrapped := core.ParseBindingExpr(s); wrapped && expr != "" {
		return "Color(hex: " + c.Expr(expr) + ")", true
	}
	if strings.HasPrefix(s, "#") {
		return "Color(hex: " + SwiftString(s) + ")", true
	}
	if s == "" {
		return "", false
	}
	return "Color(" + SwiftString(s) + ")", true
}

// Number renders a numeric attribute or binding.
func (c *Context) Number(v any) (string, bool) {
	if f, ok := core.Float(v); ok {
		return formatFloat(f), true
	}
	if s, ok := v.(string); ok {
		if expr, wrapped := core.ParseBindingExpr(s); wrapped && expr != "" {
			return "CGFloat(" + c.Expr(expr) + ")", true
		}
	}
	return "", false
}
