package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplayout/internal/cli/output"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent builds",
		Long: `List recent build runs recorded in the history database.

With a run ID, shows the outcome of every document in that run.`,
		Example: `  # Last 10 builds
  leaplayout history

  # Documents of one run
  leaplayout history 3f1c2a9e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			store := cmdCtx.Engine.History()
			if store == nil {
				return fmt.Errorf("build history is disabled (history_path is empty)")
			}
			if len(args) == 1 {
				return renderRun(cmdCtx.Renderer, store, args[0])
			}
			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			return renderRuns(cmdCtx.Renderer, runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")

	return cmd
}

func renderRuns(r *output.Renderer, runs []*core.BuildRun) error {
	infos := make([]output.RunInfo, len(runs))
	for i, run := range runs {
		infos[i] = output.RunInfo{
			ID:        run.ID,
			Status:    string(run.Status),
			Documents: run.Documents,
			StartedAt: run.StartedAt.Format(time.RFC3339),
			Error:     run.Error,
		}
		if run.CompletedAt != nil {
			infos[i].CompletedAt = run.CompletedAt.Format(time.RFC3339)
		}
	}
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	r.Header(2, "Build History")
	if len(infos) == 0 {
		r.Muted("No builds recorded yet")
		return nil
	}
	rows := make([][]string, len(runs))
	for i, run := range runs {
		dur := "-"
		if run.CompletedAt != nil {
			dur = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		rows[i] = []string{run.ID, string(run.Status), fmt.Sprint(run.Documents), infos[i].StartedAt, dur}
	}
	r.Table([]string{"Run", "Status", "Documents", "Started", "Duration"}, rows)
	return nil
}

func renderRun(r *output.Renderer, store core.HistoryStore, id string) error {
	run, err := store.GetRun(id)
	if err != nil {
		return err
	}
	docs, err := store.GetDocumentRuns(run.ID)
	if err != nil {
		return err
	}
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(struct {
			Run       *core.BuildRun      `json:"run"`
			Documents []*core.DocumentRun `json:"documents"`
		}{run, docs})
	}

	r.Header(2, "Run "+run.ID)
	r.KeyValue("Status", string(run.Status))
	r.KeyValue("Started", run.StartedAt.Format(time.RFC3339))
	if run.Error != "" {
		r.KeyValue("Error", run.Error)
	}
	r.Println("")
	rows := make([][]string, len(docs))
	for i, d := range docs {
		rows[i] = []string{d.Document, string(d.Status), string(d.Reason), string(d.ErrorKind), fmt.Sprint(d.Warnings), fmt.Sprintf("%dms", d.DurationMS)}
	}
	r.Table([]string{"Document", "Status", "Reason", "Error", "Warnings", "Duration"}, rows)
	return nil
}
