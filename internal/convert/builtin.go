package convert

import (
	"fmt"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

func convertBuiltin(ctx *Context, kind core.Kind, n *core.Node) (*Fragment, error) {
	var (
		f   *Fragment
		err error
	)
	switch kind {
	case core.KindView:
		f, err = ctx.Container(n)
	case core.KindScroll:
		f, err = convertScroll(ctx, n)
	case core.KindList:
		f, err = convertList(ctx, n)
	case core.KindText:
		f = convertText(ctx, n)
	case core.KindButton:
		f, err = convertButton(ctx, n)
	case core.KindImage:
		f = convertImage(ctx, n)
	case core.KindTextField:
		f = convertTextField(ctx, n)
	case core.KindToggle:
		f = convertToggle(ctx, n)
	case core.KindSlider:
		f = convertSlider(ctx, n)
	case core.KindSpacer:
		f = &Fragment{Head: "Spacer()"}
	case core.KindDivider:
		f = &Fragment{Head: "Divider()"}
	case core.KindProgress:
		f = convertProgress(ctx, n)
	default:
		return placeholder(ctx, n), nil
	}
	if err != nil {
		return nil, err
	}
	return f.Modify(commonModifiers(ctx, n)...), nil
}

func convertScroll(ctx *Context, n *core.Node) (*Fragment, error) {
	content, err := ctx.Container(n)
	if err != nil {
		return nil, err
	}
	axis := ".vertical"
	if o, _ := n.StringAttr("orientation"); o == "horizontal" {
		axis = ".horizontal"
	}
	return &Fragment{Head: "ScrollView(" + axis + ")", Children: []*Fragment{content}}, nil
}

func convertList(ctx *Context, n *core.Node) (*Fragment, error) {
	children, err := ctx.Children(n)
	if err != nil {
		return nil, err
	}
	f := &Fragment{Head: "List", Block: true}

	if items, ok := n.StringAttr("items"); ok {
		if expr, wrapped := core.ParseBindingExpr(items); wrapped && expr != "" {
			row := &Fragment{Head: "ForEach(" + ctx.Expr(expr) + ".indices, id: \\.self)", Params: "index in", Children: children}
			f.Children = []*Fragment{row}
			return f, nil
		}
		ctx.Warn("items", "items must be a binding expression")
	}
	f.Children = children
	return f, nil
}

func convertText(ctx *Context, n *core.Node) *Fragment {
	v, _ := n.Attr("text")
	f := &Fragment{Head: "Text(" + ctx.TextValue(v) + ")"}
	f.Modify(fontModifiers(ctx, n)...)
	return f
}

func convertButton(ctx *Context, n *core.Node) (*Fragment, error) {
	call, ok := ctx.Action(n, "onClick")
	if !ok {
		call, ok = ctx.Action(n, "onTap")
	}
	action := "{}"
	if ok {
		action = "{ " + call + " }"
	}

	var label []*Fragment
	if len(n.Items()) > 0 {
		children, err := ctx.Children(n)
		if err != nil {
			return nil, err
		}
		label = children
	} else {
		v, _ := n.Attr("text")
		label = []*Fragment{(&Fragment{Head: "Text(" + ctx.TextValue(v) + ")"}).Modify(fontModifiers(ctx, n)...)}
	}
	return &Fragment{Head: "Button(action: " + action + ")", Children: label}, nil
}

func convertImage(ctx *Context, n *core.Node) *Fragment {
	src, ok := n.Attr("src")
	if !ok {
		src, ok = n.Attr("image")
	}
	if !ok {
		ctx.Warn("src", "image has no src")
		return &Fragment{Head: `Image(systemName: "photo")`}
	}
	f := &Fragment{Head: "Image(" + ctx.Value(src) + ")"}
	if mode, ok := n.StringAttr("contentMode"); ok {
		f.Modify(".resizable()")
		switch mode {
		case "aspectFill":
			f.Modify(".aspectRatio(contentMode: .fill)")
		case "aspectFit":
			f.Modify(".aspectRatio(contentMode: .fit)")
		case "fill":
		default:
			ctx.Warn("contentMode", fmt.Sprintf("unknown content mode %q", mode))
		}
	}
	return f
}

func convertTextField(ctx *Context, n *core.Node) *Fragment {
	hint, _ := n.Attr("hint")
	binding, ok := ctx.TwoWay(n, "text")
	if !ok {
		ctx.Warn("text", "text field needs a binding expression for its text")
		binding = ".constant(\"\")"
	}
	head := "TextField(" + ctx.TextValue(hint) + ", text: " + binding + ")"
	if secure, _ := n.Attr("secure"); secure == true {
		head = "SecureField(" + ctx.TextValue(hint) + ", text: " + binding + ")"
	}
	f := &Fragment{Head: head}
	f.Modify(fontModifiers(ctx, n)...)
	if call, ok := ctx.Action(n, "onTextChange"); ok && binding[0] == '$' {
		f.Modify(fmt.Sprintf(".onChange(of: %s) { _ in %s }", binding[1:], call))
	}
	return f
}

func convertToggle(ctx *Context, n *core.Node) *Fragment {
	binding, ok := ctx.TwoWay(n, "checked")
	if !ok {
		binding, ok = ctx.TwoWay(n, "isOn")
	}
	if !ok {
		ctx.Warn("checked", "toggle needs a binding expression for its state")
		binding = ".constant(false)"
	}
	label, _ := n.Attr("text")
	f := &Fragment{Head: "Toggle(" + ctx.TextValue(label) + ", isOn: " + binding + ")"}
	if call, ok := ctx.Action(n, "onValueChange"); ok && binding[0] == '$' {
		f.Modify(fmt.Sprintf(".onChange(of: %s) { _ in %s }", binding[1:], call))
	}
	return f
}

func convertSlider(ctx *Context, n *core.Node) *Fragment {
	binding, ok := ctx.TwoWay(n, "value")
	if !ok {
		ctx.Warn("value", "slider needs a binding expression for its value")
		binding = ".constant(0)"
	}
	lo, hi := "0", "1"
	if v, ok := n.Attr("minimum"); ok {
		if s, ok := ctx.Number(v); ok {
			lo = s
		}
	}
	if v, ok := n.Attr("maximum"); ok {
		if s, ok := ctx.Number(v); ok {
			hi = s
		}
	}
	f := &Fragment{Head: fmt.Sprintf("Slider(value: %s, in: %s...%s)", binding, lo, hi)}
	if call, ok := ctx.Action(n, "onValueChange"); ok && binding[0] == '$' {
		f.Modify(fmt.Sprintf(".onChange(of: %s) { _ in %s }", binding[1:], call))
	}
	return f
}

func convertProgress(ctx *Context, n *core.Node) *Fragment {
	if v, ok := n.Attr("progress"); ok {
		if s, ok := ctx.Number(v); ok {
			return &Fragment{Head: "ProgressView(value: " + s + ")"}
		}
		ctx.Warn("progress", "progress must be a number or binding")
	}
	return &Fragment{Head: "ProgressView()"}
}
