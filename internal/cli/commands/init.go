package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplayout/internal/cli/output"
	intconfig "github.com/leapstack-labs/leaplayout/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new leaplayout project",
		Long: `Initialize a new leaplayout project with the default directory structure
and configuration.

This creates:
  - layouts/ directory for layout documents and _partials
  - styles/ directory for named style documents
  - converters/ directory for Starlark component converters
  - leaplayout.yaml configuration file

Use --example to create a working demo with a login screen, a settings
screen sharing a header partial, button styles, and a custom converter.`,
		Example: `  # Initialize in current directory
  leaplayout init

  # Initialize with a full working example
  leaplayout init --example

  # Initialize in a new directory
  leaplayout init my-app --example

  # Force overwrite existing config
  leaplayout init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			// init runs before a project exists, so it reads -o directly
			// instead of loading a configuration.
			mode := output.ModeAuto
			if f := cmd.Flag("output"); f != nil {
				mode = output.Mode(f.Value.String())
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			template := "minimal"
			if example {
				template = "example"
			}
			return runInit(r, dir, template, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Create a full example project")

	return cmd
}

func runInit(r *output.Renderer, dir, template string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if existing := intconfig.FindConfigFile(dir); existing != "" && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", filepath.Base(existing))
	}

	files, err := scaffold(template, dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	groups := groupTemplateFiles(files)
	for _, group := range []string{"config", "layouts", "styles", "converters"} {
		for _, f := range groups[group] {
			r.StatusLine(f, "success", "")
		}
	}

	r.Println("")
	r.Success("leaplayout project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Add layout documents to layouts/")
	r.Println("  2. Run 'leaplayout build' to generate SwiftUI sources into generated/")
	r.Println("  3. Run 'leaplayout watch' to rebuild on every save")

	return nil
}
