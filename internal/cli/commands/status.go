package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplayout/internal/cli/output"
	"github.com/leapstack-labs/leaplayout/internal/engine"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	var staleOnly bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which documents need recompilation",
		Long: `Report the build cache verdict for every layout document without compiling.

Each document is up-to-date or stale with a reason: new, modified,
dependency-changed (naming the partial or style), artifact-missing, or
config-changed.`,
		Example: `  # Show all documents
  leaplayout status

  # Only stale documents, as JSON
  leaplayout status --stale -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			statuses, err := cmdCtx.Engine.Status()
			if err != nil {
				return err
			}
			if staleOnly {
				statuses = filterStale(statuses)
			}
			return renderStatus(cmdCtx.Renderer, cmdCtx.Engine, statuses)
		},
	}

	cmd.Flags().BoolVar(&staleOnly, "stale", false, "Only show documents that need recompilation")

	return cmd
}

func filterStale(in []engine.DocumentStatus) []engine.DocumentStatus {
	var out []engine.DocumentStatus
	for _, s := range in {
		if s.Staleness.Stale() {
			out = append(out, s)
		}
	}
	return out
}

func renderStatus(r *output.Renderer, eng *engine.Engine, statuses []engine.DocumentStatus) error {
	out := output.StatusOutput{Documents: make([]output.DocumentStatus, 0, len(statuses))}
	if t, ok := eng.Cache().LastBuild(); ok {
		out.LastBuild = t.Format(time.RFC3339)
	}
	for _, s := range statuses {
		ds := output.DocumentStatus{
			Document: s.Document,
			Stale:    s.Staleness.Stale(),
			Reason:   string(s.Staleness.Reason),
			Detail:   s.Staleness.Detail,
		}
		if s.Entry != nil {
			ds.CompiledAt = s.Entry.CompiledAt.Format(time.RFC3339)
		}
		out.Documents = append(out.Documents, ds)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Header(2, "Status")
	if len(out.Documents) == 0 {
		r.Muted("No documents to report")
		return nil
	}
	rows := make([][]string, len(out.Documents))
	stale := 0
	for i, d := range out.Documents {
		state := "up to date"
		if d.Stale {
			state = "stale"
			stale++
		}
		rows[i] = []string{d.Document, state, d.Reason, d.Detail, d.CompiledAt}
	}
	r.Table([]string{"Document", "State", "Reason", "Detail", "Compiled At"}, rows)
	r.Println("")
	if out.LastBuild != "" {
		r.KeyValue("Last clean build", out.LastBuild)
	}
	r.KeyValue("Stale", formatCount(stale, len(out.Documents)))
	return nil
}
