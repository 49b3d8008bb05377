package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplayout/internal/cli/output"
	"github.com/leapstack-labs/leaplayout/internal/engine"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var debounce time.Duration
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild when layouts, styles, or converters change",
		Long: `Build once, then watch the layouts, styles, and converters directories
and rebuild whenever a file changes. Only documents affected by the change
are recompiled. Editing a Starlark converter reloads the registry, which
recompiles every document.

Stop with Ctrl-C.`,
		Example: `  # Watch with the default debounce
  leaplayout watch

  # Wait longer for editors that save in several steps
  leaplayout watch --debounce 500ms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r := cmdCtx.Renderer
			jsonMode := jsonOut || r.EffectiveMode() == output.ModeJSON
			if !jsonMode {
				r.Muted("Watching " + cmdCtx.Cfg.LayoutsDir + " (Ctrl-C to stop)")
			}
			return cmdCtx.Engine.Watch(ctx, engine.WatchOptions{
				Debounce: debounce,
				OnBuild:  watchReporter(ctx, r, jsonMode),
			})
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", engine.DefaultDebounce, "Wait this long for changes to settle before rebuilding")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON lines")

	return cmd
}

func watchReporter(ctx context.Context, r *output.Renderer, jsonMode bool) func(*engine.BuildResult, error) {
	return func(res *engine.BuildResult, err error) {
		if ctx.Err() != nil {
			return
		}
		if res == nil {
			if err != nil {
				r.Error(err.Error())
			}
			return
		}
		if jsonMode {
			renderBuildJSON(r, res)
			return
		}
		if len(res.Compiled())+len(res.Failed())+len(res.Pruned) == 0 {
			return
		}
		renderBuildText(r, res, "")
	}
}
