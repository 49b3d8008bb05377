// Package dag models which documents depend on which partials and styles.
// Edges point from a dependency to its dependents, so walking children
// from a changed partial yields every document that must be recompiled.
package dag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// NodeKind classifies graph nodes.
type NodeKind string

// Node kinds. Each is also the prefix of its node IDs.
const (
	KindDocument NodeKind = "doc"
	KindPartial  NodeKind = "partial"
	KindStyle    NodeKind = "style"
)

// Node is a document, partial, or style.
type Node struct {
	ID   string // "<kind>:<name>"
	Kind NodeKind
	Name string
}

// NodeID builds the ID of a node.
func NodeID(kind NodeKind, name string) string {
	return string(kind) + ":" + name
}

// ParseNodeID splits an ID into kind and name.
func ParseNodeID(id string) (NodeKind, string, error) {
	prefix, name, ok := strings.Cut(id, ":")
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid node id %q (want kind:name)", id)
	}
	switch kind := NodeKind(prefix); kind {
	case KindDocument, KindPartial, KindStyle:
		return kind, name, nil
	default:
		return "", "", fmt.Errorf("invalid node kind %q in %q", prefix, id)
	}
}

// Graph is a bipartite dependency graph between top-level documents and
// the partials and styles they read.
type Graph struct {
	nodes    map[string]*Node
	edges    map[string][]string // dependency -> dependents
	requires map[string][]string // dependent -> dependencies
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edges:    make(map[string][]string),
		requires: make(map[string][]string),
	}
}

// FromRecords builds a graph from per-document dependency records.
func FromRecords(records map[string]core.DependencyRecord) *Graph {
	g := NewGraph()
	docs := make([]string, 0, len(records))
	for doc := range records {
		docs = append(docs, doc)
	}
	sort.Strings(docs)

	for _, doc := range docs {
		docID := g.AddNode(KindDocument, doc)
		rec := records[doc]
		for _, p := range rec.Partials {
			_ = g.AddEdge(g.AddNode(KindPartial, p), docID)
		}
		for _, s := range rec.Styles {
			_ = g.AddEdge(g.AddNode(KindStyle, s), docID)
		}
	}
	return g
}

// AddNode adds a node if it is not present and returns its ID.
func (g *Graph) AddNode(kind NodeKind, name string) string {
	id := NodeID(kind, name)
	if _, exists := g.nodes[id]; !exists {
		g.nodes[id] = &Node{ID: id, Kind: kind, Name: name}
	}
	return id
}

// AddEdge records that dependent reads dependency. Only documents have
// dependencies, and only partials and styles are dependencies.
func (g *Graph) AddEdge(dependency, dependent string) error {
	dep, ok := g.nodes[dependency]
	if !ok {
		return fmt.Errorf("dependency node %q does not exist", dependency)
	}
	doc, ok := g.nodes[dependent]
	if !ok {
		return fmt.Errorf("dependent node %q does not exist", dependent)
	}
	if doc.Kind != KindDocument {
		return fmt.Errorf("%s cannot have dependencies", dependent)
	}
	if dep.Kind == KindDocument {
		return fmt.Errorf("document %s cannot be a dependency", dependency)
	}

	if !contains(g.edges[dependency], dependent) {
		g.edges[dependency] = append(g.edges[dependency], dependent)
	}
	if !contains(g.requires[dependent], dependency) {
		g.requires[dependent] = append(g.requires[dependent], dependency)
	}
	return nil
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, dependents := range g.edges {
		count += len(dependents)
	}
	return count
}

// Nodes returns the nodes of the given kind sorted by ID; no kinds means all.
func (g *Graph) Nodes(kinds ...NodeKind) []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if len(kinds) == 0 || containsKind(kinds, n.Kind) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Dependencies returns the IDs a document reads, sorted.
func (g *Graph) Dependencies(id string) []string {
	return sorted(g.requires[id])
}

// Dependents returns the documents that read a partial or style, sorted.
func (g *Graph) Dependents(id string) []string {
	return sorted(g.edges[id])
}

// Affected returns the names of documents that must be recompiled when
// the given nodes change: changed documents themselves and every document
// depending on a changed partial or style. Unknown IDs are ignored.
func (g *Graph) Affected(changed []string) []string {
	set := make(map[string]bool)
	for _, id := range changed {
		n, ok := g.nodes[id]
		if !ok {
			continue
		}
		if n.Kind == KindDocument {
			set[n.Name] = true
			continue
		}
		for _, dep := range g.edges[id] {
			set[g.nodes[dep].Name] = true
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Unused returns partials and styles no document depends on.
func (g *Graph) Unused() []string {
	var out []string
	for id, n := range g.nodes {
		if n.Kind != KindDocument && len(g.edges[id]) == 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Subgraph returns the graph restricted to the given documents and the
// dependencies they read.
func (g *Graph) Subgraph(docs []string) *Graph {
	sub := NewGraph()
	for _, doc := range docs {
		docID := NodeID(KindDocument, doc)
		if _, ok := g.nodes[docID]; !ok {
			continue
		}
		sub.AddNode(KindDocument, doc)
		for _, depID := range g.requires[docID] {
			dep := g.nodes[depID]
			_ = sub.AddEdge(sub.AddNode(dep.Kind, dep.Name), docID)
		}
	}
	return sub
}

func sorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}

func containsKind(kinds []NodeKind, k NodeKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}
