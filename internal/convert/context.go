// Package convert turns resolved layout trees into SwiftUI code fragments.
//
// Built-in widget kinds are converted by a closed switch. Other kinds are
// looked up in a Registry, which external converters (Go or Starlark)
// extend at startup. Kinds nobody handles become placeholder fragments.
package convert

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/leapstack-labs/leaplayout/internal/layout"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Options configures tree conversion.
type Options struct {
	Registry *Registry
	Logger   *slog.Logger
}

// Output is the converted body of a document.
type Output struct {
	Body         *Fragment
	Warnings     []*core.InvalidAttributeError
	Placeholders []string // kinds that had no converter
}

// Tree converts a resolved document tree.
func Tree(doc string, root *core.Node, opts Options) (*Output, error) {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx := &Context{
		Document: doc,
		Path:     "$",
		state:    &treeState{registry: opts.Registry, logger: opts.Logger},
	}

	body, err := ctx.convert(root)
	if err != nil {
		return nil, err
	}
	return &Output{
		Body:         body,
		Warnings:     ctx.state.warnings,
		Placeholders: ctx.state.placeholders,
	}, nil
}

// Context carries the position of the node being converted.
type Context struct {
	Document string
	Path     string
	state    *treeState
}

type treeState struct {
	registry     *Registry
	logger       *slog.Logger
	warnings     []*core.InvalidAttributeError
	placeholders []string
}

func (c *Context) at(path string) *Context {
	return &Context{Document: c.Document, Path: path, state: c.state}
}

func (c *Context) convert(n *core.Node) (*Fragment, error) {
	if n == nil {
		return &Fragment{Head: "EmptyView()"}, nil
	}
	return c.state.registry.Convert(c, n)
}

// Warn records an ignored attribute at the current node.
func (c *Context) Warn(attr, msg string) {
	c.state.warnings = append(c.state.warnings, &core.InvalidAttributeError{
		Document:  c.Document,
		NodePath:  c.Path,
		Attribute: attr,
		Msg:       msg,
	})
	c.state.logger.Warn("invalid attribute", "document", c.Document, "path", c.Path, "attribute", attr, "reason", msg)
}

// Logger returns the conversion logger.
func (c *Context) Logger() *slog.Logger { return c.state.logger }

// Children converts the node's children in declaration order without
// applying a layout plan.
func (c *Context) Children(n *core.Node) ([]*Fragment, error) {
	items := n.Items()
	out := make([]*Fragment, 0, len(items))
	for i, child := range items {
		f, err := c.at(childPath(c.Path, n, i)).convert(child)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func childPath(parent string, n *core.Node, i int) string {
	if n.Child != nil {
		return parent + ".child"
	}
	return fmt.Sprintf("%s.child[%d]", parent, i)
}

// Container converts n's children as a laid-out stack according to the
// layout plan chosen for n.
func (c *Context) Container(n *core.Node) (*Fragment, error) {
	items := n.Items()
	plan := layout.Select(n, items)
	for _, w := range plan.Warnings {
		c.Warn(w.Attribute, w.Msg)
	}

	converted, err := c.Children(n)
	if err != nil {
		return nil, err
	}
	c.state.logger.Debug("layout selected",
		"document", c.Document, "path", c.Path,
		"strategy", plan.Strategy.String(), "axis", plan.Axis.String())

	switch plan.Strategy {
	case core.StrategySequential:
		return sequentialStack(plan, converted), nil
	case core.StrategyWeighted:
		return weightedStack(plan, converted), nil
	case core.StrategyRelative:
		return relativeStack(plan, items, converted), nil
	default:
		return layeredStack(plan, converted), nil
	}
}
