package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/leaplayout/internal/binding"
	"github.com/leapstack-labs/leaplayout/internal/convert"
	"github.com/leapstack-labs/leaplayout/internal/emit"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// DocumentResult is the outcome of compiling one top-level document.
type DocumentResult struct {
	Document     string
	Status       core.DocumentStatus
	Reason       core.Staleness
	Err          error
	Warnings     []*core.InvalidAttributeError
	Artifacts    []core.Artifact
	Dependencies core.DependencyRecord
	Placeholders []string
	StartedAt    time.Time
	Duration     time.Duration
}

// Failed reports whether the document failed to compile.
func (r *DocumentResult) Failed() bool { return r.Status == core.DocumentStatusFailed }

// ErrorKind classifies the failure, if any.
func (r *DocumentResult) ErrorKind() core.ErrorKind { return core.ErrorKindOf(r.Err) }

// Compile compiles a single document regardless of its cache state.
func (e *Engine) Compile(id string) *DocumentResult {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	return e.compile(id, core.Staleness{Reason: core.StaleForced})
}

// compile runs the full pipeline for one document. The cache entry is
// replaced only when every step, including the artifact write, succeeded.
// A panic in a converter fails this document only.
func (e *Engine) compile(id string, reason core.Staleness) (res *DocumentResult) {
	res = &DocumentResult{Document: id, Reason: reason, StartedAt: time.Now()}
	logger := e.logger.With("document", id)
	logger.Debug("compiling document", "reason", reason.String())

	fail := func(err error) *DocumentResult {
		res.Status = core.DocumentStatusFailed
		res.Err = err
		res.Duration = time.Since(res.StartedAt)
		logger.Error("document failed", "kind", string(core.ErrorKindOf(err)), "error", err)
		return res
	}
	defer func() {
		if r := recover(); r != nil {
			res = fail(fmt.Errorf("panic while compiling %s: %v", id, r))
		}
	}()

	resolved, err := e.resolver.Resolve(id)
	if err != nil {
		return fail(err)
	}
	res.Dependencies = resolved.Dependencies
	res.Warnings = append(res.Warnings, resolved.Warnings...)

	bindings := binding.Extract(id, resolved.Root)
	if e.cfg.StrictBindings && len(bindings.Warnings) > 0 {
		errs := make([]error, len(bindings.Warnings))
		for i, w := range bindings.Warnings {
			errs[i] = w
		}
		return fail(errors.Join(errs...))
	}
	res.Warnings = append(res.Warnings, bindings.Warnings...)

	out, err := convert.Tree(id, resolved.Root, convert.Options{Registry: e.Registry(), Logger: e.logger})
	if err != nil {
		return fail(err)
	}
	res.Warnings = append(res.Warnings, out.Warnings...)
	res.Placeholders = out.Placeholders

	files, err := e.emitter.Render(emit.Input{
		Document: id,
		Source:   e.sourcePath(id),
		Body:     out.Body,
		Bindings: bindings,
	})
	if err != nil {
		return fail(err)
	}
	artifacts, err := e.emitter.Write(files)
	if err != nil {
		return fail(err)
	}
	res.Artifacts = artifacts

	paths := make([]string, len(artifacts))
	for i, a := range artifacts {
		paths[i] = a.Path
	}
	if err := e.cache.Commit(core.CacheEntry{
		Document:     id,
		CompiledAt:   res.StartedAt,
		Dependencies: res.Dependencies,
		Artifacts:    paths,
	}); err != nil {
		return fail(fmt.Errorf("commit cache entry: %w", err))
	}

	for _, w := range res.Warnings {
		logger.Warn(w.Msg, "path", w.NodePath, "attribute", w.Attribute)
	}
	res.Status = core.DocumentStatusSuccess
	res.Duration = time.Since(res.StartedAt)
	logger.Debug("document compiled", "artifacts", len(artifacts), "warnings", len(res.Warnings), "duration", res.Duration)
	return res
}

// sourcePath returns the layouts-relative file of a document for headers.
func (e *Engine) sourcePath(id string) string {
	rel, err := filepath.Rel(e.cfg.LayoutsDir, e.store.DocumentPath(id))
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}
