package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leaplayout/internal/cli/output"
	"github.com/leapstack-labs/leaplayout/internal/dag"
	"github.com/leapstack-labs/leaplayout/internal/engine"
)

// NewDepsCommand creates the deps command.
func NewDepsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps [document|partial|style]",
		Short: "Show recorded dependencies",
		Long: `Display the dependency graph recorded by the last successful compile of
each document.

For a document, lists the partials and styles it reads. For a partial or
style, lists the documents that read it. Without an argument, prints every
document with its dependencies and the partials and styles no document uses.

Node IDs (doc:login, partial:components/_header.json, style:title) select a
node exactly; bare names match a document first, then partials and styles.`,
		Example: `  # What does the login screen read?
  leaplayout deps login

  # Who includes the header partial?
  leaplayout deps components/header

  # Whole graph as JSON
  leaplayout deps -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			var nodes []engine.Deps
			if len(args) == 0 {
				nodes = allDeps(cmdCtx.Engine.Graph())
			} else {
				nodes, err = cmdCtx.Engine.Dependencies(args[0])
				if err != nil {
					return err
				}
			}
			return renderDeps(cmdCtx.Renderer, nodes, len(args) == 0, cmdCtx.Engine.Graph().Unused())
		},
	}
	return cmd
}

func allDeps(g *dag.Graph) []engine.Deps {
	docs := g.Nodes(dag.KindDocument)
	out := make([]engine.Deps, len(docs))
	for i, n := range docs {
		out[i] = engine.Deps{ID: n.ID, Dependencies: g.Dependencies(n.ID), Dependents: g.Dependents(n.ID)}
	}
	return out
}

func renderDeps(r *output.Renderer, nodes []engine.Deps, all bool, unused []string) error {
	if r.EffectiveMode() == output.ModeJSON {
		out := make([]output.DepsNode, len(nodes))
		for i, n := range nodes {
			out[i] = output.DepsNode{ID: n.ID, Dependencies: nonNil(n.Dependencies), Dependents: nonNil(n.Dependents)}
		}
		return r.JSON(out)
	}

	r.Header(2, "Dependencies")
	if len(nodes) == 0 {
		r.Muted("No compiled documents. Run 'leaplayout build' first.")
		return nil
	}
	for _, n := range nodes {
		kind, _, _ := dag.ParseNodeID(n.ID)
		if kind == dag.KindDocument {
			r.KeyValue(n.ID, joinOrNone(n.Dependencies))
		} else {
			r.KeyValue(n.ID, "read by "+joinOrNone(n.Dependents))
		}
	}
	if all && len(unused) > 0 {
		r.Println("")
		r.Muted(fmt.Sprintf("Unused: %s", strings.Join(unused, ", ")))
	}
	return nil
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func formatCount(n, total int) string {
	return fmt.Sprintf("%d of %d", n, total)
}
