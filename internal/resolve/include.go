package resolve

import (
	"errors"
	"path/filepath"

	"github.com/leapstack-labs/leaplayout/internal/document"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// expand replaces an include node with the resolved partial.
//
// The include node's remaining attributes (after its own style is
// resolved) are laid over the partial's root, node winning. The
// replacement root carries the include variables as its Scope.
func (s *session) expand(n *core.Node, path string) (*core.Node, error) {
	name, _ := n.IncludeRef()

	vars := core.NewObject()
	if raw, ok := n.Attrs.Get(core.KeyVariables); ok {
		if obj, isObj := raw.(*core.Object); isObj {
			vars = obj
		} else if raw != nil {
			s.warn(path, core.KeyVariables, "variables must be an object; ignored")
		}
	}

	partial, err := s.store.LoadPartial(name)
	if err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			nf.Document = s.doc
			nf.NodePath = path
		}
		return nil, err
	}

	abs, err := filepath.Abs(partial.Path)
	if err != nil {
		abs = partial.Path
	}
	if s.active[abs] {
		chain := append(append([]string{}, s.chain...), partial.Rel)
		return nil, &core.CyclicIncludeError{Document: s.doc, Chain: chain}
	}
	s.tracker.RecordPartial(s.doc, partial.Rel)
	s.logger.Debug("partial loaded", "document", s.doc, "partial", partial.Rel, "path", path)

	src, err := substituteSource(partial.Data, vars)
	if err != nil {
		return nil, err
	}
	root, err := document.ParseNode(src, partial.Path)
	if err != nil {
		return nil, err
	}
	root = substituteNode(root, vars)

	// Overlay the include node's own attributes.
	overlay := n.WithAttrs(n.Attrs.Without(core.KeyInclude, core.KeyVariables))
	overlay, err = s.resolveStyle(overlay, path)
	if err != nil {
		return nil, err
	}
	if overlay.Child != nil || len(overlay.Children) > 0 {
		s.warn(path, core.KeyChild, "children of an include node are ignored")
	}
	replacement := root.Copy()
	if overlay.Kind != "" {
		replacement.Kind = overlay.Kind
	}
	replacement.Attrs = Merge(root.Attrs, overlay.Attrs)

	s.active[abs] = true
	s.chain = append(s.chain, partial.Rel)
	defer func() {
		delete(s.active, abs)
		s.chain = s.chain[:len(s.chain)-1]
	}()

	resolved, err := s.resolveNode(replacement, path)
	if err != nil {
		return nil, err
	}
	if vars.Len() > 0 {
		resolved = resolved.Copy()
		resolved.Scope = mergeScope(resolved.Scope, vars)
	}
	return resolved, nil
}

// mergeScope overlays vars onto an inner scope. Outer callers win.
func mergeScope(inner map[string]any, vars *core.Object) map[string]any {
	if len(inner) == 0 && vars.Len() == 0 {
		return nil
	}
	scope := make(map[string]any, len(inner)+vars.Len())
	for k, v := range inner {
		scope[k] = v
	}
	vars.Range(func(k string, v any) bool {
		scope[k] = v
		return true
	})
	return scope
}
