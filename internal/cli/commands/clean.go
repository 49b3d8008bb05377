package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCleanCommand creates the clean command.
func NewCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove generated files and the build cache",
		Long: `Delete every artifact recorded in the build cache and reset the cache,
so the next build compiles every document. Files in the output directory
that leaplayout did not generate are left alone. Build history is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			removed, err := cmdCtx.Engine.Clean()
			for _, p := range removed {
				cmdCtx.Renderer.Muted("removed " + p)
			}
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Removed %d generated file(s) and reset the build cache", len(removed)))
			return nil
		},
	}
}
