// Package cache persists per-document build state between runs and
// decides which documents need recompilation.
//
// The cache file is plain YAML so it can be inspected when debugging:
//
//	version: 1
//	last_build: 2025-03-01T10:00:00Z
//	documents:
//	  login:
//	    compiled_at: 2025-03-01T09:59:58Z
//	    fingerprint: 3f2a9c1d04b7e6a8
//	    dependencies:
//	      partials: [components/_header.json]
//	      styles: [title]
//	    artifacts: [LoginData.swift, LoginView.swift]
package cache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leaplayout/internal/atomicfile"
	"github.com/leapstack-labs/leaplayout/internal/document"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// FormatVersion is the cache file format version.
const FormatVersion = 1

type fileState struct {
	Version   int                   `yaml:"version"`
	LastBuild *time.Time            `yaml:"last_build,omitempty"`
	Documents map[string]*entryData `yaml:"documents"`
}

type entryData struct {
	CompiledAt   time.Time             `yaml:"compiled_at"`
	Fingerprint  string                `yaml:"fingerprint,omitempty"`
	Dependencies core.DependencyRecord `yaml:"dependencies,omitempty"`
	Artifacts    []string              `yaml:"artifacts,omitempty"`
}

// Options configures a Cache.
type Options struct {
	// Store resolves dependency identifiers to files.
	Store *document.Store
	// OutputDir is where recorded artifacts live.
	OutputDir string
	// Fingerprint identifies the toolchain inputs. Entries recorded under a
	// different fingerprint are stale.
	Fingerprint string
	Logger      *slog.Logger
}

// Cache is the durable build cache. It is safe for concurrent use.
type Cache struct {
	path string
	opts Options

	mu    sync.Mutex
	state fileState
}

// Open loads the cache at path. A missing file yields an empty cache.
// An unreadable or corrupt file is logged and treated as empty, which
// makes every document stale.
func Open(path string, opts Options) (*Cache, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Store == nil {
		return nil, errors.New("cache: document store is required")
	}
	c := &Cache{
		path:  path,
		opts:  opts,
		state: fileState{Version: FormatVersion, Documents: make(map[string]*entryData)},
	}

	data, err := os.ReadFile(path) //nolint:gosec // cache path comes from project config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}

	var st fileState
	if err := yaml.Unmarshal(data, &st); err != nil {
		opts.Logger.Warn("ignoring corrupt build cache", "path", path, "error", err)
		return c, nil
	}
	if st.Version != FormatVersion {
		opts.Logger.Info("build cache format changed, starting fresh", "path", path, "version", st.Version)
		return c, nil
	}
	if st.Documents == nil {
		st.Documents = make(map[string]*entryData)
	}
	c.state = st
	return c, nil
}

// Path returns the cache file location.
func (c *Cache) Path() string { return c.path }

// Fingerprint returns the fingerprint new entries are recorded under.
func (c *Cache) Fingerprint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.Fingerprint
}

// SetFingerprint changes the fingerprint, for example after converter
// scripts are reloaded. Existing entries with another fingerprint become
// stale.
func (c *Cache) SetFingerprint(fp string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Fingerprint = fp
}

// NeedsRebuild reports whether document id must be recompiled given the
// modification time of its own file.
func (c *Cache) NeedsRebuild(id string, modTime time.Time) bool {
	return c.Check(id, modTime).Stale()
}

// Check returns why document id needs recompilation, or StaleUpToDate.
//
// A document is stale when it has no entry, when its own file or any
// recorded dependency changed after the recorded compile time, when a
// dependency vanished or is shadowed by a new partial file, when a
// recorded artifact is missing, or when the fingerprint differs.
func (c *Cache) Check(id string, modTime time.Time) core.Staleness {
	c.mu.Lock()
	e, ok := c.state.Documents[id]
	fingerprint := c.opts.Fingerprint
	c.mu.Unlock()

	if !ok {
		return core.Staleness{Reason: core.StaleNew}
	}
	if e.Fingerprint != fingerprint {
		return core.Staleness{Reason: core.StaleConfigChanged}
	}
	if modTime.After(e.CompiledAt) {
		return core.Staleness{Reason: core.StaleModified}
	}
	if s, stale := c.checkDependencies(e); stale {
		return s
	}
	for _, a := range e.Artifacts {
		if _, err := os.Stat(filepath.Join(c.opts.OutputDir, filepath.FromSlash(a))); err != nil {
			return core.Staleness{Reason: core.StaleArtifactMissing, Detail: a}
		}
	}
	return core.Staleness{Reason: core.StaleUpToDate}
}

func (c *Cache) checkDependencies(e *entryData) (core.Staleness, bool) {
	store := c.opts.Store
	for _, rel := range e.Dependencies.Partials {
		if s, stale := dependencyStale(store.PartialPath(rel), rel, e.CompiledAt); stale {
			return s, true
		}
		// A new "_name.json" would now win the lookup over "name.json".
		if dir, base := filepath.Split(filepath.FromSlash(rel)); !strings.HasPrefix(base, document.PartialPrefix) {
			shadow := filepath.ToSlash(filepath.Join(dir, document.PartialPrefix+base))
			if _, err := os.Stat(store.PartialPath(shadow)); err == nil {
				return core.Staleness{Reason: core.StaleDependencyChanged, Detail: shadow + " (added)"}, true
			}
		}
	}
	for _, name := range e.Dependencies.Styles {
		if s, stale := dependencyStale(store.StylePath(name), "style "+name, e.CompiledAt); stale {
			return s, true
		}
	}
	return core.Staleness{}, false
}

func dependencyStale(file, label string, compiledAt time.Time) (core.Staleness, bool) {
	mt, err := document.ModTime(file)
	if err != nil {
		return core.Staleness{Reason: core.StaleDependencyChanged, Detail: label + " (missing)"}, true
	}
	if mt.After(compiledAt) {
		return core.Staleness{Reason: core.StaleDependencyChanged, Detail: label}, true
	}
	return core.Staleness{}, false
}

// Commit replaces the entry for a successfully compiled document and
// persists the cache. If persisting fails the previous entry is restored.
func (c *Cache) Commit(entry core.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, had := c.state.Documents[entry.Document]
	artifacts := append([]string(nil), entry.Artifacts...)
	sort.Strings(artifacts)
	c.state.Documents[entry.Document] = &entryData{
		CompiledAt:   entry.CompiledAt.UTC(),
		Fingerprint:  c.opts.Fingerprint,
		Dependencies: entry.Dependencies.Normalized(),
		Artifacts:    artifacts,
	}

	if err := c.saveLocked(); err != nil {
		if had {
			c.state.Documents[entry.Document] = prev
		} else {
			delete(c.state.Documents, entry.Document)
		}
		return err
	}
	c.opts.Logger.Debug("cache entry committed", "document", entry.Document)
	return nil
}

// Entry returns the entry for document id.
func (c *Cache) Entry(id string) (core.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.state.Documents[id]
	if !ok {
		return core.CacheEntry{}, false
	}
	return toEntry(id, e), true
}

// Entries returns all entries sorted by document.
func (c *Cache) Entries() []core.CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.state.Documents))
	for id := range c.state.Documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]core.CacheEntry, len(ids))
	for i, id := range ids {
		out[i] = toEntry(id, c.state.Documents[id])
	}
	return out
}

func toEntry(id string, e *entryData) core.CacheEntry {
	return core.CacheEntry{
		Document:     id,
		CompiledAt:   e.CompiledAt,
		Dependencies: e.Dependencies,
		Artifacts:    append([]string(nil), e.Artifacts...),
		Fingerprint:  e.Fingerprint,
	}
}

// Prune drops entries for documents not in keep and returns the removed
// entries.
func (c *Cache) Prune(keep []string) ([]core.CacheEntry, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []core.CacheEntry
	for id, e := range c.state.Documents {
		if _, ok := keepSet[id]; !ok {
			removed = append(removed, toEntry(id, e))
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Document < removed[j].Document })
	for _, e := range removed {
		delete(c.state.Documents, e.Document)
	}
	return removed, c.saveLocked()
}

// MarkBuild records the time of the last successful build and persists.
func (c *Cache) MarkBuild(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := t.UTC()
	c.state.LastBuild = &ts
	return c.saveLocked()
}

// LastBuild returns the last successful build time, if any.
func (c *Cache) LastBuild() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.LastBuild == nil {
		return time.Time{}, false
	}
	return *c.state.LastBuild, true
}

// Reset clears all entries and removes the cache file.
func (c *Cache) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = fileState{Version: FormatVersion, Documents: make(map[string]*entryData)}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// saveLocked must be called with mu held.
func (c *Cache) saveLocked() error {
	data, err := yaml.Marshal(&c.state)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := atomicfile.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write cache %s: %w", c.path, err)
	}
	return nil
}
