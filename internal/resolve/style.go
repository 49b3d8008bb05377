package resolve

import (
	"errors"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Merge layers own on top of base.
//
// Keys present in both take own's value, except that two object values
// merge recursively under the same rule. Arrays are replaced wholesale.
// Base keys keep their order; keys only in own follow in own's order.
func Merge(base, own *core.Object) *core.Object {
	if base.Len() == 0 {
		return own.Clone()
	}
	out := base.Clone()
	own.Range(func(key string, ov any) bool {
		if bv, ok := out.Get(key); ok {
			bo, bIsObj := bv.(*core.Object)
			oo, oIsObj := ov.(*core.Object)
			if bIsObj && oIsObj {
				out.Set(key, Merge(bo, oo))
				return true
			}
		}
		out.Set(key, ov)
		return true
	})
	return out
}

// resolveStyle merges the node's style (and the style's own parents)
// under the node's attributes and removes the style key.
func (s *session) resolveStyle(n *core.Node, path string) (*core.Node, error) {
	raw, ok := n.Attrs.Get(core.KeyStyle)
	if !ok {
		return n, nil
	}
	name, isString := raw.(string)
	if !isString || name == "" {
		s.warn(path, core.KeyStyle, "style must be a non-empty string")
		return n.WithAttrs(n.Attrs.Without(core.KeyStyle)), nil
	}

	base, err := s.styleChain(name, path, nil)
	if err != nil {
		return nil, err
	}

	out := n.Copy()
	if kind, ok := base.String(core.KeyKind); ok && out.Kind == "" {
		out.Kind = kind
	}
	if base.Has(core.KeyChild) {
		s.warn(path, core.KeyChild, "styles cannot declare children; ignored")
	}
	if base.Has(core.KeyInclude) {
		s.warn(path, core.KeyInclude, "styles cannot include partials; ignored")
	}
	base = base.Without(core.KeyKind, core.KeyChild, core.KeyInclude, core.KeyVariables)
	out.Attrs = Merge(base, n.Attrs.Without(core.KeyStyle))
	return out, nil
}

// styleChain loads a style and everything it inherits through its own
// "style" key. The returned object has no style key.
func (s *session) styleChain(name, path string, seen []string) (*core.Object, error) {
	for _, prev := range seen {
		if prev == name {
			return nil, &core.CyclicIncludeError{Document: s.doc, Chain: append(append([]string{}, seen...), name)}
		}
	}
	seen = append(seen, name)

	style, err := s.loadStyle(name, path)
	if err != nil {
		return nil, err
	}

	parentRaw, ok := style.Get(core.KeyStyle)
	if !ok {
		return style, nil
	}
	parent, isString := parentRaw.(string)
	if !isString || parent == "" {
		s.warn(path, core.KeyStyle, "style "+name+" has an invalid parent reference; ignored")
		return style.Without(core.KeyStyle), nil
	}
	base, err := s.styleChain(parent, path, seen)
	if err != nil {
		return nil, err
	}
	return Merge(base, style.Without(core.KeyStyle)), nil
}

func (s *session) loadStyle(name, path string) (*core.Object, error) {
	if cached, ok := s.styles[name]; ok {
		s.tracker.RecordStyle(s.doc, name)
		return cached, nil
	}
	style, err := s.store.LoadStyle(name)
	if err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			nf.Document = s.doc
			nf.NodePath = path
		}
		return nil, err
	}
	s.styles[name] = style
	s.tracker.RecordStyle(s.doc, name)
	s.logger.Debug("style loaded", "document", s.doc, "style", name)
	return style, nil
}
