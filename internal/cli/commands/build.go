package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplayout/internal/atomicfile"
	"github.com/leapstack-labs/leaplayout/internal/cli/output"
	"github.com/leapstack-labs/leaplayout/internal/engine"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// BuildOptions holds options for the build command.
type BuildOptions struct {
	Force        bool
	Select       []string
	DependentsOf []string
	Workers      int
	JSONOutput   bool
	ManifestOut  string
}

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	opts := &BuildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile stale layout documents",
		Long: `Compile layout documents into SwiftUI views and observable data classes.

By default only documents whose source, included partials, styles, or
generated files changed since the last build are compiled. Use --force to
recompile everything, --select to compile specific documents, and
--dependents-of to recompile every document that reads a partial or style.`,
		Example: `  # Compile stale documents
  leaplayout build

  # Recompile everything
  leaplayout build --force

  # Compile specific documents
  leaplayout build --select login,settings/profile

  # Recompile every document including the header partial
  leaplayout build --dependents-of components/header

  # JSON lines for CI, plus a manifest for the project generator
  leaplayout build --json --manifest-out generated/manifest.json`,
		Aliases: []string{"compile"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Recompile every selected document")
	cmd.Flags().StringSliceVarP(&opts.Select, "select", "s", nil, "Comma-separated list of documents to compile")
	cmd.Flags().StringSliceVar(&opts.DependentsOf, "dependents-of", nil, "Compile documents depending on these partials or styles")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Parallel compiles (default: configured workers)")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Output as JSON lines for progress tracking")
	cmd.Flags().StringVar(&opts.ManifestOut, "manifest-out", "", "Write generated artifact paths and groups to this JSON file")

	return cmd
}

func runBuild(cmd *cobra.Command, opts *BuildOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	jsonOut := opts.JSONOutput || r.EffectiveMode() == output.ModeJSON

	if jsonOut {
		emitBuildEvent(r, output.BuildEvent{Event: "build_start"})
	}

	res, err := cmdCtx.Engine.Build(cmd.Context(), engine.BuildOptions{
		Force:        opts.Force,
		Select:       trimAll(opts.Select),
		DependentsOf: trimAll(opts.DependentsOf),
		Workers:      opts.Workers,
	})
	if err != nil && res == nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if opts.ManifestOut != "" {
		if err := writeManifest(opts.ManifestOut, res); err != nil {
			return err
		}
	}

	if jsonOut {
		renderBuildJSON(r, res)
	} else {
		renderBuildText(r, res, opts.ManifestOut)
	}

	if err != nil {
		return err
	}
	if n := len(res.Failed()); n > 0 {
		return fmt.Errorf("%d document(s) failed to compile", n)
	}
	return nil
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func writeManifest(path string, res *engine.BuildResult) error {
	data, err := json.MarshalIndent(res.Manifest(), "", "  ")
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(abs, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func renderBuildText(r *output.Renderer, res *engine.BuildResult, manifestOut string) {
	r.Header(2, "Build")
	for _, d := range res.Documents {
		switch {
		case d.Failed():
			r.StatusLine(d.Document, "failed", d.Err.Error())
		case d.Status == core.DocumentStatusSkipped:
			if r.IsTTY() {
				continue
			}
			r.StatusLine(d.Document, "skipped", d.Reason.String())
		case len(d.Warnings) > 0:
			r.StatusLine(d.Document, "warning", fmt.Sprintf("%s, %d warning(s)", d.Reason.String(), len(d.Warnings)))
		default:
			r.StatusLine(d.Document, "success", fmt.Sprintf("%s %s", d.Reason.String(), d.Duration.Round(time.Millisecond)))
		}
		for _, w := range d.Warnings {
			r.Warning(d.Document + ": " + w.Error())
		}
	}
	for _, name := range res.Pruned {
		r.Muted("pruned " + name)
	}

	r.Println("")
	r.KeyValue("Compiled", fmt.Sprint(len(res.Compiled())))
	r.KeyValue("Failed", fmt.Sprint(len(res.Failed())))
	r.KeyValue("Up to date", fmt.Sprint(len(res.Skipped())))
	r.KeyValue("Duration", res.Duration.Round(time.Millisecond).String())
	if manifestOut != "" {
		r.KeyValue("Manifest", manifestOut)
	}
}

func renderBuildJSON(r *output.Renderer, res *engine.BuildResult) {
	for _, d := range res.Documents {
		event := output.BuildEvent{
			Event:      "document_complete",
			RunID:      res.RunID,
			Document:   d.Document,
			Status:     string(d.Status),
			Reason:     d.Reason.String(),
			DurationMS: d.Duration.Milliseconds(),
		}
		if d.Err != nil {
			event.Error = d.Err.Error()
			event.ErrorKind = string(d.ErrorKind())
		}
		for _, w := range d.Warnings {
			event.Warnings = append(event.Warnings, w.Error())
		}
		for _, a := range d.Artifacts {
			event.Artifacts = append(event.Artifacts, a.Path)
		}
		emitBuildEvent(r, event)
	}
	emitBuildEvent(r, output.BuildEvent{
		Event:    "build_complete",
		RunID:    res.RunID,
		Status:   string(res.Status()),
		Compiled: len(res.Compiled()),
		Failed:   len(res.Failed()),
		Skipped:  len(res.Skipped()),
		Pruned:   res.Pruned,
		TotalMS:  res.Duration.Milliseconds(),
	})
}

// emitBuildEvent outputs a build event as a JSON line.
func emitBuildEvent(r *output.Renderer, event output.BuildEvent) {
	event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	data, _ := json.Marshal(event)
	r.Println(string(data))
}
