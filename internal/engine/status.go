package engine

import (
	"github.com/leapstack-labs/leaplayout/internal/dag"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// DocumentStatus is the cache verdict for one document on disk.
type DocumentStatus struct {
	Document  string
	Path      string
	Staleness core.Staleness
	// Entry is the cache entry, nil when the document was never compiled.
	Entry *core.CacheEntry
}

// Status reports every top-level document's staleness without compiling.
func (e *Engine) Status() ([]DocumentStatus, error) {
	docs, err := e.store.List()
	if err != nil {
		return nil, err
	}
	out := make([]DocumentStatus, len(docs))
	for i, d := range docs {
		out[i] = DocumentStatus{
			Document:  d.ID,
			Path:      d.Path,
			Staleness: e.cache.Check(d.ID, d.ModTime),
		}
		if entry, ok := e.cache.Entry(d.ID); ok {
			out[i].Entry = &entry
		}
	}
	return out, nil
}

// Graph builds the dependency graph from the recorded dependency records
// of every cached document. Partials and styles on disk that no document
// reads are added as isolated nodes.
func (e *Engine) Graph() *dag.Graph {
	entries := e.cache.Entries()
	records := make(map[string]core.DependencyRecord, len(entries))
	for _, entry := range entries {
		records[entry.Document] = entry.Dependencies
	}
	g := dag.FromRecords(records)

	partials, err := e.store.ListPartials()
	if err != nil {
		e.logger.Debug("failed to list partials", "error", err)
	}
	for _, p := range partials {
		g.AddNode(dag.KindPartial, p)
	}
	styles, err := e.store.ListStyles()
	if err != nil {
		e.logger.Debug("failed to list styles", "error", err)
	}
	for _, s := range styles {
		g.AddNode(dag.KindStyle, s)
	}
	return g
}

// Deps describes one node of the dependency graph.
type Deps struct {
	ID string
	// Dependencies are the partials and styles a document reads.
	Dependencies []string
	// Dependents are the documents reading a partial or style.
	Dependents []string
}

// Dependencies looks up a node by ID or by bare name. A bare name matches
// a document first, then partials and styles with that name.
func (e *Engine) Dependencies(ref string) ([]Deps, error) {
	g := e.Graph()
	var ids []string
	if _, _, err := dag.ParseNodeID(ref); err == nil {
		ids = []string{ref}
	} else {
		ids = append(ids, dag.NodeID(dag.KindDocument, ref))
		ids = append(ids, e.dependentIDs(ref)...)
	}

	var out []Deps
	for _, id := range ids {
		if _, ok := g.GetNode(id); !ok {
			continue
		}
		out = append(out, Deps{
			ID:           id,
			Dependencies: g.Dependencies(id),
			Dependents:   g.Dependents(id),
		})
		if id == dag.NodeID(dag.KindDocument, ref) {
			break
		}
	}
	if len(out) == 0 {
		return nil, &core.NotFoundError{Kind: "graph node", Name: ref}
	}
	return out, nil
}
