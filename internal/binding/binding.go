// Package binding extracts data slots and action handlers from resolved
// layout trees.
package binding

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Data entry keys.
const (
	keyName    = "name"
	keyClass   = "class"
	keyDefault = "defaultValue"
)

// Result holds everything extracted from one tree.
type Result struct {
	Declarations []core.BindingDeclaration
	Actions      []core.ActionBinding
	References   []core.BindingReference
	Warnings     []*core.InvalidAttributeError
}

// Handlers returns the distinct handler names in first-use order.
func (r *Result) Handlers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range r.Actions {
		if !seen[a.Handler] {
			seen[a.Handler] = true
			out = append(out, a.Handler)
		}
	}
	return out
}

// Declaration returns the declaration for name.
func (r *Result) Declaration(name string) (core.BindingDeclaration, bool) {
	for _, d := range r.Declarations {
		if d.Name == name {
			return d, true
		}
	}
	return core.BindingDeclaration{}, false
}

// Undeclared returns the names referenced but never declared, sorted.
func (r *Result) Undeclared() []string {
	declared := make(map[string]bool, len(r.Declarations))
	for _, d := range r.Declarations {
		declared[d.Name] = true
	}
	set := make(map[string]bool)
	for _, ref := range r.References {
		if !declared[ref.Name] {
			set[ref.Name] = true
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type extractor struct {
	doc    string
	result *Result
	index  map[string]int // declaration name -> position
	scopes []map[string]any
}

// Extract walks a fully resolved tree once.
//
// Every entry of a node's "data" array becomes a declaration. Its default
// comes from the innermost enclosing include scope that defines the name,
// falling back to the entry's own defaultValue. Event attributes holding
// @{handler} become action bindings. Other @{...} values are recorded as
// references; references to names never declared produce warnings.
func Extract(doc string, root *core.Node) *Result {
	x := &extractor{
		doc:    doc,
		result: &Result{},
		index:  make(map[string]int),
	}
	x.visit(root, "$")

	for _, name := range x.result.Undeclared() {
		for _, ref := range x.result.References {
			if ref.Name == name {
				x.warn(ref.NodePath, ref.Attribute, fmt.Sprintf("binding %q is not declared by any data entry", name))
				break
			}
		}
	}
	return x.result
}

func (x *extractor) visit(n *core.Node, path string) {
	if n == nil {
		return
	}
	if len(n.Scope) > 0 {
		x.scopes = append(x.scopes, n.Scope)
		defer func() { x.scopes = x.scopes[:len(x.scopes)-1] }()
	}

	n.Attrs.Range(func(key string, val any) bool {
		switch {
		case key == core.KeyData:
			x.declarations(val, path)
		case isEvent(key):
			x.action(n, key, val, path)
		default:
			x.references(val, key, path)
		}
		return true
	})

	if n.Child != nil {
		x.visit(n.Child, path+".child")
		return
	}
	for i, c := range n.Children {
		x.visit(c, fmt.Sprintf("%s.child[%d]", path, i))
	}
}

func isEvent(attr string) bool {
	_, ok := core.EventAttributes[attr]
	return ok
}

func (x *extractor) declarations(val any, path string) {
	entries, ok := val.([]any)
	if !ok {
		x.warn(path, core.KeyData, "data must be an array of entries")
		return
	}
	for i, e := range entries {
		entry, ok := e.(*core.Object)
		if !ok {
			x.warn(path, core.KeyData, fmt.Sprintf("data[%d] is not an object", i))
			continue
		}
		name, _ := entry.String(keyName)
		if !core.IsIdentifier(name) {
			x.warn(path, core.KeyData, fmt.Sprintf("data[%d] has invalid name %q", i, name))
			continue
		}
		class, ok := entry.String(keyClass)
		if !ok || class == "" {
			x.warn(path, core.KeyData, fmt.Sprintf("data[%d] %s has no class; using String", i, name))
			class = "String"
		}

		decl := core.BindingDeclaration{Name: name, Class: class, NodePath: path}
		if v, ok := x.lookupScope(name); ok {
			decl.Default, decl.HasDefault, decl.FromScope = v, true, true
		} else if v, ok := entry.Get(keyDefault); ok {
			decl.Default, decl.HasDefault = v, true
		}

		if pos, dup := x.index[name]; dup {
			prev := x.result.Declarations[pos]
			if prev.Class != class {
				x.warn(path, core.KeyData, fmt.Sprintf("%s redeclared as %s (first declared as %s at %s); keeping first",
					name, class, prev.Class, prev.NodePath))
			}
			continue
		}
		x.index[name] = len(x.result.Declarations)
		x.result.Declarations = append(x.result.Declarations, decl)
	}
}

// lookupScope searches include scopes innermost first.
func (x *extractor) lookupScope(name string) (any, bool) {
	for i := len(x.scopes) - 1; i >= 0; i-- {
		if v, ok := x.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (x *extractor) action(n *core.Node, attr string, val any, path string) {
	s, ok := val.(string)
	if !ok {
		x.warn(path, attr, "event handler must be a string")
		return
	}
	expr, wrapped := core.ParseBindingExpr(s)
	switch {
	case !wrapped:
		x.warn(path, attr, fmt.Sprintf("event handler %q is not a binding expression", s))
		return
	case expr == "":
		x.warn(path, attr, "empty binding expression")
		return
	case !core.IsIdentifier(expr):
		x.warn(path, attr, fmt.Sprintf("event handler %q must be a method name", expr))
		return
	}

	id := n.ID()
	if id == "" {
		id = path
	}
	x.result.Actions = append(x.result.Actions, core.ActionBinding{
		NodeID:   id,
		NodePath: path,
		Event:    core.EventAttributes[attr],
		Handler:  expr,
	})
}

func (x *extractor) references(val any, attr, path string) {
	switch v := val.(type) {
	case string:
		expr, wrapped := core.ParseBindingExpr(v)
		if !wrapped {
			return
		}
		if expr == "" {
			x.warn(path, attr, "empty binding expression")
			return
		}
		root := core.ExprRoot(expr)
		if root == "" {
			x.warn(path, attr, fmt.Sprintf("binding expression %q does not start with a name", expr))
			return
		}
		x.result.References = append(x.result.References, core.BindingReference{
			Name: root, Expr: expr, NodePath: path, Attribute: attr,
		})
	case []any:
		for _, item := range v {
			x.references(item, attr, path)
		}
	case *core.Object:
		v.Range(func(k string, item any) bool {
			x.references(item, attr+"."+k, path)
			return true
		})
	}
}

func (x *extractor) warn(path, attr, msg string) {
	x.result.Warnings = append(x.result.Warnings, &core.InvalidAttributeError{
		Document:  x.doc,
		NodePath:  path,
		Attribute: attr,
		Msg:       msg,
	})
}
