package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leaplayout/internal/dag"
	"github.com/leapstack-labs/leaplayout/internal/document"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// BuildOptions selects what a build compiles.
type BuildOptions struct {
	// Force recompiles every selected document.
	Force bool
	// Select restricts the build to these document identities.
	Select []string
	// DependentsOf adds every document depending on these partials or
	// styles, per the recorded dependency graph. Entries are node IDs
	// ("partial:components/_header.json", "style:title") or bare names,
	// which match both a partial and a style.
	DependentsOf []string
	// Workers overrides the configured worker count.
	Workers int
}

// BuildResult summarizes a batch build.
type BuildResult struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Documents []*DocumentResult
	// Pruned lists documents removed from the cache because their files
	// no longer exist.
	Pruned []string
}

// Compiled returns the documents compiled successfully.
func (r *BuildResult) Compiled() []*DocumentResult {
	return r.filter(core.DocumentStatusSuccess)
}

// Failed returns the documents that failed.
func (r *BuildResult) Failed() []*DocumentResult {
	return r.filter(core.DocumentStatusFailed)
}

// Skipped returns the documents that were up to date or not reached.
func (r *BuildResult) Skipped() []*DocumentResult {
	return r.filter(core.DocumentStatusSkipped)
}

func (r *BuildResult) filter(status core.DocumentStatus) []*DocumentResult {
	var out []*DocumentResult
	for _, d := range r.Documents {
		if d.Status == status {
			out = append(out, d)
		}
	}
	return out
}

// Err joins the errors of all failed documents.
func (r *BuildResult) Err() error {
	var errs []error
	for _, d := range r.Failed() {
		errs = append(errs, d.Err)
	}
	return errors.Join(errs...)
}

// Status returns the overall run status.
func (r *BuildResult) Status() core.RunStatus {
	failed := len(r.Failed())
	switch {
	case failed == 0:
		return core.RunStatusCompleted
	case failed == len(r.Documents)-len(r.Skipped()):
		return core.RunStatusFailed
	default:
		return core.RunStatusPartial
	}
}

// Manifest lists every artifact of the documents compiled in this build,
// with its logical group, for the external project-manifest mutator.
func (r *BuildResult) Manifest() core.Manifest {
	m := core.Manifest{Entries: []core.ManifestEntry{}}
	for _, d := range r.Compiled() {
		for _, a := range d.Artifacts {
			m.Entries = append(m.Entries, core.ManifestEntry{Path: a.Path, Group: a.Group})
		}
	}
	sort.Slice(m.Entries, func(i, j int) bool { return m.Entries[i].Path < m.Entries[j].Path })
	return m
}

// Build compiles every stale document. Documents fail independently: a
// failure never touches another document's cache entry or artifacts.
func (e *Engine) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	result := &BuildResult{StartedAt: time.Now()}
	e.logger.Info("starting build", "force", opts.Force, "select", opts.Select)

	docs, err := e.store.List()
	if err != nil {
		return nil, err
	}
	selected, err := e.selectDocuments(docs, opts)
	if err != nil {
		return nil, err
	}

	var runID string
	if e.history != nil {
		run, err := e.history.CreateRun(len(selected))
		if err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
		runID = run.ID
		result.RunID = runID
		e.logger.Debug("created run", "run_id", runID)
	}

	result.Documents = e.compileAll(ctx, selected, e.artifactConflicts(docs), opts)

	if opts.fullBuild() {
		keep := make([]string, len(docs))
		for i, d := range docs {
			keep[i] = d.ID
		}
		pruned, err := e.prune(keep)
		if err != nil {
			e.logger.Warn("failed to prune cache", "error", err)
		}
		result.Pruned = pruned
	}

	failed := result.Failed()
	if len(failed) == 0 && ctx.Err() == nil {
		if err := e.cache.MarkBuild(result.StartedAt); err != nil {
			e.logger.Warn("failed to record build time", "error", err)
		}
	}
	result.Duration = time.Since(result.StartedAt)

	if e.history != nil {
		e.recordHistory(runID, result)
	}

	e.logger.Info("build finished",
		"compiled", len(result.Compiled()),
		"failed", len(failed),
		"skipped", len(result.Skipped()),
		"duration", result.Duration)
	return result, ctx.Err()
}

func (o BuildOptions) fullBuild() bool {
	return len(o.Select) == 0 && len(o.DependentsOf) == 0
}

type candidate struct {
	info  document.Info
	stale core.Staleness
}

// selectDocuments applies the selection options and computes staleness.
func (e *Engine) selectDocuments(docs []document.Info, opts BuildOptions) ([]candidate, error) {
	byID := make(map[string]document.Info, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	chosen := docs
	if !opts.fullBuild() {
		names := make(map[string]bool)
		var unknown []string
		for _, id := range opts.Select {
			if _, ok := byID[id]; !ok {
				unknown = append(unknown, id)
				continue
			}
			names[id] = true
		}
		if len(unknown) > 0 {
			return nil, &core.NotFoundError{Kind: core.NotFoundDocument, Name: strings.Join(unknown, ", ")}
		}
		for _, id := range e.dependents(opts.DependentsOf) {
			if _, ok := byID[id]; ok {
				names[id] = true
			}
		}
		chosen = nil
		for _, d := range docs {
			if names[d.ID] {
				chosen = append(chosen, d)
			}
		}
	}

	out := make([]candidate, len(chosen))
	for i, d := range chosen {
		out[i] = candidate{info: d, stale: core.Staleness{Reason: core.StaleForced}}
		// Dependents are rebuilt even when their recorded inputs look current.
		if !opts.Force && len(opts.DependentsOf) == 0 {
			out[i].stale = e.cache.Check(d.ID, d.ModTime)
		}
	}
	return out, nil
}

// dependents expands partial and style references to dependent documents.
func (e *Engine) dependents(refs []string) []string {
	if len(refs) == 0 {
		return nil
	}
	var ids []string
	for _, ref := range refs {
		if _, _, err := dag.ParseNodeID(ref); err == nil {
			ids = append(ids, ref)
			continue
		}
		ids = append(ids, e.dependentIDs(ref)...)
	}
	return e.Graph().Affected(ids)
}

// dependentIDs returns the partial and style node IDs a bare name may refer to.
func (e *Engine) dependentIDs(name string) []string {
	var ids []string
	for _, rel := range document.PartialCandidates(name) {
		ids = append(ids, dag.NodeID(dag.KindPartial, rel))
	}
	return append(ids, dag.NodeID(dag.KindStyle, name))
}

// artifactConflicts maps each document whose artifact path is already
// generated by an earlier document (in identity order) to the error it
// fails with. Paths compare case-insensitively, as on default macOS
// volumes.
func (e *Engine) artifactConflicts(docs []document.Info) map[string]error {
	owners := make(map[string]string)
	conflicts := make(map[string]error)
	for _, d := range docs {
		data, view := e.emitter.ArtifactPaths(d.ID)
		for _, rel := range []string{data, view} {
			key := strings.ToLower(rel)
			owner, taken := owners[key]
			if !taken {
				owners[key] = d.ID
				continue
			}
			if owner != d.ID {
				if _, seen := conflicts[d.ID]; !seen {
					conflicts[d.ID] = &core.WriteFailureError{
						Path: filepath.Join(e.emitter.OutputDir(), filepath.FromSlash(rel)),
						Err:  fmt.Errorf("artifact also generated by document %q", owner),
					}
				}
			}
		}
	}
	return conflicts
}

// compileAll compiles stale candidates on a bounded worker pool. Results
// keep candidate order. Documents not started before ctx is cancelled are
// reported as skipped. Documents with conflicting artifact paths fail
// without compiling.
func (e *Engine) compileAll(ctx context.Context, cands []candidate, conflicts map[string]error, opts BuildOptions) []*DocumentResult {
	workers := opts.Workers
	if workers <= 0 {
		workers = e.cfg.Workers
	}
	results := make([]*DocumentResult, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range cands {
		if err, ok := conflicts[c.info.ID]; ok {
			results[i] = &DocumentResult{
				Document:  c.info.ID,
				Status:    core.DocumentStatusFailed,
				Reason:    c.stale,
				Err:       err,
				StartedAt: time.Now(),
			}
			e.logger.Error("document failed", "document", c.info.ID, "kind", string(core.ErrorKindOf(err)), "error", err)
			continue
		}
		if !c.stale.Stale() {
			results[i] = &DocumentResult{Document: c.info.ID, Status: core.DocumentStatusSkipped, Reason: c.stale}
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = &DocumentResult{Document: c.info.ID, Status: core.DocumentStatusSkipped, Reason: c.stale, Err: gctx.Err()}
				return nil
			}
			results[i] = e.compile(c.info.ID, c.stale)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// prune drops cache entries of deleted documents and removes their artifacts.
func (e *Engine) prune(keep []string) ([]string, error) {
	removed, err := e.cache.Prune(keep)
	var names []string
	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	for _, entry := range removed {
		names = append(names, entry.Document)
		if err := e.emitter.Remove(entry.Artifacts); err != nil {
			errs = append(errs, err)
		}
		e.logger.Info("pruned deleted document", "document", entry.Document)
	}
	return names, errors.Join(errs...)
}

func (e *Engine) recordHistory(runID string, result *BuildResult) {
	for _, d := range result.Documents {
		run := &core.DocumentRun{
			RunID:      runID,
			Document:   d.Document,
			Status:     d.Status,
			Reason:     d.Reason.Reason,
			ErrorKind:  d.ErrorKind(),
			Warnings:   len(d.Warnings),
			Artifacts:  len(d.Artifacts),
			StartedAt:  d.StartedAt,
			DurationMS: d.Duration.Milliseconds(),
		}
		if d.StartedAt.IsZero() {
			run.StartedAt = result.StartedAt
		}
		if d.Err != nil {
			run.Error = d.Err.Error()
		}
		if err := e.history.RecordDocumentRun(run); err != nil {
			e.logger.Warn("failed to record document run", "document", d.Document, "error", err)
		}
	}

	var msg string
	if n := len(result.Failed()); n > 0 {
		msg = fmt.Sprintf("%d document(s) failed", n)
	}
	if err := e.history.CompleteRun(runID, result.Status(), msg); err != nil {
		e.logger.Warn("failed to complete run", "run_id", runID, "error", err)
	}
}
