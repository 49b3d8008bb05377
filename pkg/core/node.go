package core

import (
	"fmt"
	"sort"
	"strings"
)

// Well-known node keys.
const (
	KeyKind      = "kind"
	KeyChild     = "child"
	KeyData      = "data"
	KeyStyle     = "style"
	KeyInclude   = "include"
	KeyVariables = "variables"
)

// Node is one widget in a layout tree.
//
// Kind is the raw widget tag; Attrs holds every other attribute except the
// child keys. A node either has Children (the "child" key held an array)
// or a single Child, never both.
//
// Nodes are immutable after parsing. Resolution stages build new nodes and
// share unchanged subtrees with their input.
type Node struct {
	Kind     string
	Attrs    *Object
	Children []*Node
	Child    *Node

	// Scope holds include variables in effect for this subtree.
	// It is set on the root of an expanded partial.
	Scope map[string]any

	// Source is the file the node was parsed from.
	Source string
}

// Items returns the node's children in order, whether declared as an
// array or as a single child.
func (n *Node) Items() []*Node {
	if n == nil {
		return nil
	}
	if n.Child != nil {
		return []*Node{n.Child}
	}
	return n.Children
}

// Attr returns an attribute value.
func (n *Node) Attr(key string) (any, bool) {
	if n == nil {
		return nil, false
	}
	return n.Attrs.Get(key)
}

// StringAttr returns a string attribute.
func (n *Node) StringAttr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	return n.Attrs.String(key)
}

// NumberAttr returns a numeric attribute.
func (n *Node) NumberAttr(key string) (float64, bool) {
	if n == nil {
		return 0, false
	}
	return n.Attrs.Number(key)
}

// StyleRef returns the style name referenced by the node, if any.
func (n *Node) StyleRef() (string, bool) {
	s, ok := n.StringAttr(KeyStyle)
	return s, ok && s != ""
}

// IncludeRef returns the partial name referenced by the node, if any.
func (n *Node) IncludeRef() (string, bool) {
	s, ok := n.StringAttr(KeyInclude)
	return s, ok && s != ""
}

// ID returns the node's "id" attribute.
func (n *Node) ID() string {
	s, _ := n.StringAttr("id")
	return s
}

// Copy returns a shallow copy of the node.
func (n *Node) Copy() *Node {
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		copy(c.Children, n.Children)
	}
	return &c
}

// WithAttrs returns a copy of n with attrs replaced.
func (n *Node) WithAttrs(attrs *Object) *Node {
	c := n.Copy()
	c.Attrs = attrs
	return c
}

// Walk visits n and every descendant depth-first in declaration order.
// The path of each node uses the form "$.child[0].child".
// Returning false from fn skips the node's descendants.
func (n *Node) Walk(fn func(node *Node, path string) bool) {
	walk(n, "$", fn)
}

func walk(n *Node, path string, fn func(*Node, string) bool) {
	if n == nil {
		return
	}
	if !fn(n, path) {
		return
	}
	if n.Child != nil {
		walk(n.Child, path+".child", fn)
		return
	}
	for i, c := range n.Children {
		walk(c, fmt.Sprintf("%s.child[%d]", path, i), fn)
	}
}

// Equal reports structural equality. Source is ignored.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind || !n.Attrs.Equal(other.Attrs) {
		return false
	}
	if !n.Child.Equal(other.Child) {
		return false
	}
	if len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	if len(n.Scope) != len(other.Scope) {
		return false
	}
	for k, v := range n.Scope {
		ov, ok := other.Scope[k]
		if !ok || !ValueEqual(v, ov) {
			return false
		}
	}
	return true
}

// String renders a compact outline, used in debug logs.
func (n *Node) String() string {
	var sb strings.Builder
	n.Walk(func(node *Node, path string) bool {
		depth := strings.Count(path, ".child")
		sb.WriteString(strings.Repeat("  ", depth))
		kind := node.Kind
		if kind == "" {
			kind = "<none>"
		}
		sb.WriteString(kind)
		if id := node.ID(); id != "" {
			sb.WriteString("#" + id)
		}
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}

// NodeFromObject converts a parsed JSON object into a node.
// A "child" key holding an object becomes Child; an array becomes Children.
// Array entries that are not objects are reported as an error.
func NodeFromObject(obj *Object, source string) (*Node, error) {
	n := &Node{Source: source}
	n.Kind, _ = obj.String(KeyKind)
	n.Attrs = obj.Without(KeyKind, KeyChild)

	raw, ok := obj.Get(KeyChild)
	if !ok {
		return n, nil
	}
	switch c := raw.(type) {
	case *Object:
		child, err := NodeFromObject(c, source)
		if err != nil {
			return nil, err
		}
		n.Child = child
	case []any:
		n.Children = make([]*Node, 0, len(c))
		for i, item := range c {
			co, ok := item.(*Object)
			if !ok {
				return nil, fmt.Errorf("child[%d] is %T, want object", i, item)
			}
			child, err := NodeFromObject(co, source)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		}
	case nil:
	default:
		return nil, fmt.Errorf("child is %T, want object or array", raw)
	}
	return n, nil
}

// ToObject converts the node back into its document form.
func (n *Node) ToObject() *Object {
	o := NewObject()
	if n.Kind != "" {
		o.Set(KeyKind, n.Kind)
	}
	n.Attrs.Range(func(k string, v any) bool {
		o.Set(k, v)
		return true
	})
	if n.Child != nil {
		o.Set(KeyChild, n.Child.ToObject())
	} else if n.Children != nil {
		arr := make([]any, len(n.Children))
		for i, c := range n.Children {
			arr[i] = c.ToObject()
		}
		o.Set(KeyChild, arr)
	}
	return o
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
