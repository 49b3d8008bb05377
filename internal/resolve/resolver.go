// Package resolve expands styles and partial includes in layout trees.
//
// Resolution never mutates its input. Each step builds new nodes and
// shares untouched subtrees, so resolving the same document twice yields
// structurally identical trees.
package resolve

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/leapstack-labs/leaplayout/internal/document"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Resolver resolves top-level documents against a document store.
// A Resolver is safe for concurrent use across different documents.
type Resolver struct {
	store   *document.Store
	tracker *Tracker
	logger  *slog.Logger
}

// Options configures a Resolver.
type Options struct {
	// Tracker receives dependency records. A private tracker is used when nil.
	Tracker *Tracker
	Logger  *slog.Logger
}

// New creates a resolver.
func New(store *document.Store, opts Options) *Resolver {
	tracker := opts.Tracker
	if tracker == nil {
		tracker = NewTracker()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{store: store, tracker: tracker, logger: logger}
}

// Tracker returns the dependency tracker.
func (r *Resolver) Tracker() *Tracker { return r.tracker }

// Result is a fully resolved document.
type Result struct {
	Document     string
	Root         *core.Node
	Dependencies core.DependencyRecord
	Warnings     []*core.InvalidAttributeError
}

// Resolve loads and resolves a top-level document.
func (r *Resolver) Resolve(id string) (*Result, error) {
	root, err := r.store.Load(id)
	if err != nil {
		return nil, err
	}
	return r.ResolveTree(id, root)
}

// ResolveTree resolves an already parsed tree on behalf of document id.
// On failure the document's dependency record is discarded.
func (r *Resolver) ResolveTree(id string, root *core.Node) (*Result, error) {
	s := r.newSession(id)
	r.tracker.Begin(id)

	resolved, err := s.resolveNode(root, "$")
	if err != nil {
		r.tracker.Discard(id)
		return nil, fmt.Errorf("resolve %s: %w", id, err)
	}
	return &Result{
		Document:     id,
		Root:         resolved,
		Dependencies: r.tracker.Record(id),
		Warnings:     s.warnings,
	}, nil
}

// session holds the state of one document's resolution.
type session struct {
	doc     string
	store   *document.Store
	tracker *Tracker
	logger  *slog.Logger

	styles   map[string]*core.Object
	active   map[string]bool // partial files being expanded, by absolute path
	chain    []string        // partial include chain for cycle reports
	warnings []*core.InvalidAttributeError
}

func (r *Resolver) newSession(doc string) *session {
	return &session{
		doc:     doc,
		store:   r.store,
		tracker: r.tracker,
		logger:  r.logger,
		styles:  make(map[string]*core.Object),
		active:  make(map[string]bool),
	}
}

func (s *session) resolveNode(n *core.Node, path string) (*core.Node, error) {
	if n == nil {
		return nil, nil
	}
	if _, ok := n.IncludeRef(); ok {
		return s.expand(n, path)
	}
	if n.Attrs.Has(core.KeyInclude) {
		s.warn(path, core.KeyInclude, "include must be a non-empty string")
		n = n.WithAttrs(n.Attrs.Without(core.KeyInclude, core.KeyVariables))
	}

	out, err := s.resolveStyle(n, path)
	if err != nil {
		return nil, err
	}

	if n.Child != nil {
		child, err := s.resolveNode(n.Child, path+".child")
		if err != nil {
			return nil, err
		}
		if child != n.Child {
			out = copyIfSame(out, n)
			out.Child = child
		}
		return out, nil
	}

	for i, c := range n.Children {
		child, err := s.resolveNode(c, fmt.Sprintf("%s.child[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if child != c {
			out = copyIfSame(out, n)
			out.Children[i] = child
		}
	}
	return out, nil
}

// copyIfSame returns a copy of out when it is still the input node.
func copyIfSame(out, in *core.Node) *core.Node {
	if out == in {
		return in.Copy()
	}
	return out
}

func (s *session) warn(path, attr, msg string) {
	w := &core.InvalidAttributeError{Document: s.doc, NodePath: path, Attribute: attr, Msg: msg}
	s.warnings = append(s.warnings, w)
	s.logger.Warn("invalid attribute", "document", s.doc, "path", path, "attribute", attr, "reason", msg)
}
