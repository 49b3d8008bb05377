// Package engine drives the layout compiler: it discovers documents,
// decides which are stale, compiles them in parallel, and records the
// outcome in the build cache and build history.
package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/leapstack-labs/leaplayout/internal/cache"
	"github.com/leapstack-labs/leaplayout/internal/convert"
	starconv "github.com/leapstack-labs/leaplayout/internal/convert/starlark"
	"github.com/leapstack-labs/leaplayout/internal/document"
	"github.com/leapstack-labs/leaplayout/internal/emit"
	"github.com/leapstack-labs/leaplayout/internal/resolve"
	"github.com/leapstack-labs/leaplayout/internal/state"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Config holds engine configuration.
type Config struct {
	// LayoutsDir holds top-level documents and partials.
	LayoutsDir string
	// StylesDir holds style documents.
	StylesDir string
	// ConvertersDir holds Starlark converters (optional).
	ConvertersDir string
	// OutputDir receives generated artifacts.
	OutputDir string
	// CachePath is the build cache file.
	CachePath string
	// HistoryPath is the SQLite build history database. Empty disables history.
	HistoryPath string
	// Target configures generated code.
	Target emit.Target
	// Workers bounds parallel compiles. Zero means GOMAXPROCS.
	Workers int
	// StrictBindings turns binding warnings into document failures.
	StrictBindings bool
	// Converters are Go converters registered before Starlark scripts (optional).
	Converters map[string]convert.Converter
	// History overrides the history store opened from HistoryPath (optional).
	History core.HistoryStore
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Engine compiles a project's layout documents.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	store    *document.Store
	resolver *resolve.Resolver
	cache    *cache.Cache
	emitter  *emit.Emitter
	history  core.HistoryStore

	// buildMu serializes builds and converter reloads.
	buildMu sync.Mutex

	mu          sync.RWMutex
	registry    *convert.Registry
	modules     []*starconv.Module
	fingerprint string
}

// New creates an engine, loading converters and opening the build cache
// and history.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.LayoutsDir == "" {
		return nil, errors.New("engine: layouts directory is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	logger.Debug("initializing engine", "layouts_dir", cfg.LayoutsDir, "output_dir", cfg.OutputDir)

	e := &Engine{
		cfg:     cfg,
		logger:  logger,
		store:   document.NewStore(cfg.LayoutsDir, cfg.StylesDir),
		emitter: emit.New(cfg.OutputDir, cfg.Target, logger),
	}
	e.resolver = resolve.New(e.store, resolve.Options{Logger: logger})

	if err := e.loadConverters(); err != nil {
		return nil, err
	}

	c, err := cache.Open(cfg.CachePath, cache.Options{
		Store:       e.store,
		OutputDir:   cfg.OutputDir,
		Fingerprint: e.fingerprint,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open build cache: %w", err)
	}
	e.cache = c

	switch {
	case cfg.History != nil:
		e.history = cfg.History
	case cfg.HistoryPath != "":
		hs := state.NewSQLiteStore(logger)
		if err := hs.Open(cfg.HistoryPath); err != nil {
			return nil, fmt.Errorf("failed to open build history: %w", err)
		}
		e.history = hs
	}
	return e, nil
}

// Close releases the history store.
func (e *Engine) Close() error {
	if e.history != nil {
		return e.history.Close()
	}
	return nil
}

// loadConverters builds a fresh registry from the configured Go
// converters and the scripts in the converters directory, and updates
// the fingerprint.
func (e *Engine) loadConverters() error {
	reg := convert.NewRegistry()
	kinds := make([]string, 0, len(e.cfg.Converters))
	for kind := range e.cfg.Converters {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		if err := reg.Register(kind, "go", e.cfg.Converters[kind]); err != nil {
			return err
		}
	}

	var modules []*starconv.Module
	if e.cfg.ConvertersDir != "" {
		var err error
		if modules, err = starconv.Register(reg, e.cfg.ConvertersDir); err != nil {
			return fmt.Errorf("failed to load converters: %w", err)
		}
	}
	for _, m := range modules {
		e.logger.Debug("loaded converter", "kind", m.Kind, "path", m.Path)
	}

	fp := fingerprint(e.cfg.Target, reg, modules)

	e.mu.Lock()
	e.registry = reg
	e.modules = modules
	e.fingerprint = fp
	e.mu.Unlock()
	if e.cache != nil {
		e.cache.SetFingerprint(fp)
	}
	return nil
}

// ReloadConverters reloads Starlark converters. Documents compiled with
// different converters become stale.
func (e *Engine) ReloadConverters() error {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	return e.loadConverters()
}

// fingerprint identifies everything besides the documents that shapes
// generated output: the output format, the target settings, and the
// converters.
func fingerprint(target emit.Target, reg *convert.Registry, modules []*starconv.Module) string {
	h := sha256.New()
	fmt.Fprintf(h, "format=%s cache=%d\n", emit.FormatVersion, cache.FormatVersion)
	fmt.Fprintf(h, "target=%s|%s|%s|%s\n", target.Module, target.ViewSuffix, target.DataSuffix, target.GroupPrefix)
	digests := make(map[string]string, len(modules))
	for _, m := range modules {
		digests[m.Kind] = m.Digest
	}
	for _, kind := range reg.Kinds() {
		fmt.Fprintf(h, "converter=%s source=%s digest=%s\n", kind, reg.Source(kind), digests[kind])
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// Fingerprint returns the current toolchain fingerprint.
func (e *Engine) Fingerprint() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fingerprint
}

// Registry returns the converter registry in use.
func (e *Engine) Registry() *convert.Registry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry
}

// Converters returns the loaded Starlark converter modules.
func (e *Engine) Converters() []*starconv.Module {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*starconv.Module(nil), e.modules...)
}

// Store returns the document store.
func (e *Engine) Store() *document.Store { return e.store }

// Cache returns the build cache.
func (e *Engine) Cache() *cache.Cache { return e.cache }

// Emitter returns the artifact emitter.
func (e *Engine) Emitter() *emit.Emitter { return e.emitter }

// History returns the history store, or nil when history is disabled.
func (e *Engine) History() core.HistoryStore { return e.history }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }
