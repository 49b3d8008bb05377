package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/leaplayout/internal/convert"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Convert calls the script's convert(node) with a fresh thread.
// Loaded modules are frozen, so calls may run concurrently.
func (m *Module) Convert(ctx *convert.Context, n *core.Node) (*convert.Fragment, error) {
	node, err := nodeValue(ctx, n)
	if err != nil {
		return nil, err
	}
	thread := &starlark.Thread{
		Name: fmt.Sprintf("convert:%s:%s", m.Kind, ctx.Path),
		Print: func(_ *starlark.Thread, msg string) {
			ctx.Logger().Debug("converter print", "kind", m.Kind, "path", ctx.Path, "msg", msg)
		},
	}
	out, err := starlark.Call(thread, m.fn, starlark.Tuple{node}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Path, err)
	}
	return m.fragment(ctx, n, out)
}

func (m *Module) fragment(ctx *convert.Context, n *core.Node, out starlark.Value) (*convert.Fragment, error) {
	switch v := out.(type) {
	case starlark.String:
		return &convert.Fragment{Head: string(v)}, nil
	case *starlark.Dict, *starlarkstruct.Struct:
	default:
		return nil, fmt.Errorf("%s: convert must return a string, dict or struct, got %s", m.Path, out.Type())
	}

	raw, err := ToGo(out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Path, err)
	}
	spec := raw.(*core.Object)

	f := &convert.Fragment{}
	var ok bool
	if f.Head, ok = spec.String("head"); !ok || f.Head == "" {
		return nil, fmt.Errorf("%s: result has no head", m.Path)
	}
	f.Comment, _ = spec.String("comment")
	f.Params, _ = spec.String("params")
	if b, isBool := spec.Get("block"); isBool {
		f.Block, _ = b.(bool)
	}
	if mods, has := spec.Array("modifiers"); has {
		for i, mod := range mods {
			s, isStr := mod.(string)
			if !isStr {
				return nil, fmt.Errorf("%s: modifiers[%d] is not a string", m.Path, i)
			}
			f.Modify(s)
		}
	}

	content, _ := spec.String("content")
	switch content {
	case "":
	case "children":
		children, err := ctx.Children(n)
		if err != nil {
			return nil, err
		}
		f.Children = children
	case "layout":
		stack, err := ctx.Container(n)
		if err != nil {
			return nil, err
		}
		f.Children = []*convert.Fragment{stack}
	default:
		return nil, fmt.Errorf("%s: unknown content %q (want \"children\" or \"layout\")", m.Path, content)
	}
	return f, nil
}

// nodeValue exposes n to scripts as a struct with its kind, id, path,
// attributes, and helpers that render attributes as Swift expressions.
func nodeValue(ctx *convert.Context, n *core.Node) (starlark.Value, error) {
	attrs, err := ToStarlark(n.Attrs)
	if err != nil {
		return nil, fmt.Errorf("attributes of %s: %w", ctx.Path, err)
	}

	render := func(name string, fn func(v any) (string, bool)) *starlark.Builtin {
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var attr string
			var fallback starlark.Value = starlark.None
			if err := starlark.UnpackArgs(b.Name(), args, kwargs, "attr", &attr, "default?", &fallback); err != nil {
				return nil, err
			}
			if v, ok := n.Attr(attr); ok {
				if s, ok := fn(v); ok {
					return starlark.String(s), nil
				}
				ctx.Warn(attr, fmt.Sprintf("cannot render %s as %s", attr, name))
			}
			return fallback, nil
		})
	}
	byAttr := func(name string, fn func(n *core.Node, attr string) (string, bool)) *starlark.Builtin {
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var attr string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &attr); err != nil {
				return nil, err
			}
			if s, ok := fn(n, attr); ok {
				return starlark.String(s), nil
			}
			return starlark.None, nil
		})
	}

	fields := starlark.StringDict{
		"kind":    starlark.String(n.Kind),
		"id":      starlark.String(n.ID()),
		"path":    starlark.String(ctx.Path),
		"attrs":   attrs,
		"value":   render("value", func(v any) (string, bool) { return ctx.Value(v), true }),
		"text":    render("text", func(v any) (string, bool) { return ctx.TextValue(v), true }),
		"color":   render("color", ctx.Color),
		"number":  render("number", ctx.Number),
		"action":  byAttr("action", ctx.Action),
		"binding": byAttr("binding", ctx.TwoWay),
		"warn": starlark.NewBuiltin("warn", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var attr, msg string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &attr, &msg); err != nil {
				return nil, err
			}
			ctx.Warn(attr, msg)
			return starlark.None, nil
		}),
	}
	return starlarkstruct.FromStringDict(starlark.String("node"), fields), nil
}
