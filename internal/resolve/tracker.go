package resolve

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Tracker accumulates the partials and styles each top-level document
// touches during resolution. It performs no loading itself.
//
// Each document accumulates into its own record, so concurrent
// resolutions of different documents never interleave.
type Tracker struct {
	mu      sync.Mutex
	records map[string]*record
}

type record struct {
	partials map[string]struct{}
	styles   map[string]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{records: make(map[string]*record)}
}

// Begin starts a fresh record for doc, discarding any previous one.
func (t *Tracker) Begin(doc string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[doc] = &record{
		partials: make(map[string]struct{}),
		styles:   make(map[string]struct{}),
	}
}

// RecordPartial notes that doc loaded the partial at the layouts-relative path rel.
func (t *Tracker) RecordPartial(doc, rel string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.get(doc).partials[rel] = struct{}{}
}

// RecordStyle notes that doc loaded the named style.
func (t *Tracker) RecordStyle(doc, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.get(doc).styles[name] = struct{}{}
}

// Record returns the dependencies accumulated for doc, sorted.
func (t *Tracker) Record(doc string) core.DependencyRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[doc]
	if !ok {
		return core.DependencyRecord{}
	}
	return core.DependencyRecord{
		Partials: setToSorted(rec.partials),
		Styles:   setToSorted(rec.styles),
	}
}

// Discard drops the record for doc.
func (t *Tracker) Discard(doc string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, doc)
}

// Documents returns the documents with an open record.
func (t *Tracker) Documents() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	docs := make([]string, 0, len(t.records))
	for d := range t.records {
		docs = append(docs, d)
	}
	sort.Strings(docs)
	return docs
}

// get must be called with mu held.
func (t *Tracker) get(doc string) *record {
	rec, ok := t.records[doc]
	if !ok {
		rec = &record{
			partials: make(map[string]struct{}),
			styles:   make(map[string]struct{}),
		}
		t.records[doc] = rec
	}
	return rec
}

func setToSorted(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
