package core

import (
	"regexp"
	"strings"
)

// EventKind is a runtime event a node can bind a handler to.
type EventKind string

// Recognized events.
const (
	EventTap         EventKind = "tap"
	EventLongPress   EventKind = "longPress"
	EventValueChange EventKind = "valueChange"
	EventTextChange  EventKind = "textChange"
)

// EventAttributes maps event attribute names to their event kind.
var EventAttributes = map[string]EventKind{
	"onClick":       EventTap,
	"onTap":         EventTap,
	"onLongPress":   EventLongPress,
	"onLongClick":   EventLongPress,
	"onValueChange": EventValueChange,
	"onTextChange":  EventTextChange,
}

// BindingDeclaration is a named, typed data slot.
type BindingDeclaration struct {
	Name  string
	Class string // declared value kind, e.g. "Int", "String", "[String]"

	// Default is the effective default value. HasDefault is false when
	// neither the entry nor an enclosing include scope supplied one.
	Default    any
	HasDefault bool

	// FromScope is true when Default came from include variables.
	FromScope bool
	NodePath  string
}

// ActionBinding ties a node event to a handler expression.
type ActionBinding struct {
	NodeID   string // node "id" attribute, or its path when absent
	NodePath string
	Event    EventKind
	Handler  string // handler expression without the @{} wrapper
}

// BindingReference is a use of a data slot in an attribute value.
type BindingReference struct {
	Name      string // root identifier of the expression
	Expr      string
	NodePath  string
	Attribute string
}

// Binding expression wrapper: @{...}.
const (
	BindingPrefix = "@{"
	BindingSuffix = "}"
)

// ParseBindingExpr unwraps a binding expression.
// ok is false when s is not wrapped; expr is empty for "@{}".
func ParseBindingExpr(s string) (expr string, ok bool) {
	if !strings.HasPrefix(s, BindingPrefix) || !strings.HasSuffix(s, BindingSuffix) {
		return "", false
	}
	return strings.TrimSpace(s[len(BindingPrefix) : len(s)-len(BindingSuffix)]), true
}

// IsBindingExpr reports whether s is wrapped as a binding expression.
func IsBindingExpr(s string) bool {
	_, ok := ParseBindingExpr(s)
	return ok
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)

// ExprRoot returns the leading identifier of a binding expression,
// e.g. "user" for "user.name". Empty when the expression does not
// start with an identifier.
func ExprRoot(expr string) string {
	return identPattern.FindString(strings.TrimSpace(expr))
}

// IsIdentifier reports whether s is a plain identifier.
func IsIdentifier(s string) bool {
	return s != "" && identPattern.FindString(s) == s
}
