package convert

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// matchParent values for width and height.
var matchParent = map[string]bool{
	"matchParent":  true,
	"match_parent": true,
	"infinity":     true,
}

func fontModifiers(ctx *Context, n *core.Node) []string {
	var mods []string
	size, hasSize := "", false
	if v, ok := n.Attr("fontSize"); ok {
		if size, hasSize = ctx.Number(v); !hasSize {
			ctx.Warn("fontSize", "fontSize must be a number")
		}
	}
	weight, _ := n.StringAttr("font")
	switch {
	case hasSize && weight == "bold":
		mods = append(mods, fmt.Sprintf(".font(.system(size: %s, weight: .bold))", size))
	case hasSize:
		mods = append(mods, fmt.Sprintf(".font(.system(size: %s))", size))
	case weight == "bold":
		mods = append(mods, ".bold()")
	}
	if v, ok := n.Attr("fontColor"); ok {
		if color, ok := ctx.Color(v); ok {
			mods = append(mods, ".foregroundColor("+color+")")
		} else {
			ctx.Warn("fontColor", "fontColor must be a color string")
		}
	}
	if align, ok := n.StringAttr("textAlign"); ok {
		switch align {
		case "left", "leading":
			mods = append(mods, ".multilineTextAlignment(.leading)")
		case "center":
			mods = append(mods, ".multilineTextAlignment(.center)")
		case "right", "trailing":
			mods = append(mods, ".multilineTextAlignment(.trailing)")
		default:
			ctx.Warn("textAlign", fmt.Sprintf("unknown text alignment %q", align))
		}
	}
	if lines, ok := n.NumberAttr("lines"); ok && lines > 0 {
		mods = append(mods, fmt.Sprintf(".lineLimit(%s)", formatFloat(lines)))
	}
	return mods
}

// commonModifiers applies attributes every kind understands.
func commonModifiers(ctx *Context, n *core.Node) []string {
	var mods []string
	if m := frameModifier(ctx, n); m != "" {
		mods = append(mods, m)
	}
	if v, ok := n.Attr("padding"); ok {
		if m, ok := paddingModifier(ctx, v); ok {
			mods = append(mods, m)
		} else {
			ctx.Warn("padding", "padding must be a number, [top, right, bottom, left], or an object")
		}
	}
	if v, ok := n.Attr("background"); ok {
		if color, ok := ctx.Color(v); ok {
			mods = append(mods, ".background("+color+")")
		} else {
			ctx.Warn("background", "background must be a color string")
		}
	}
	if v, ok := n.Attr("cornerRadius"); ok {
		if r, ok := ctx.Number(v); ok {
			mods = append(mods, ".cornerRadius("+r+")")
		} else {
			ctx.Warn("cornerRadius", "cornerRadius must be a number")
		}
	}
	for _, attr := range []string{"opacity", "alpha"} {
		if v, ok := n.Attr(attr); ok {
			if o, ok := ctx.Number(v); ok {
				mods = append(mods, ".opacity("+o+")")
			} else {
				ctx.Warn(attr, attr+" must be a number")
			}
		}
	}
	if m, ok := visibilityModifier(ctx, n); ok {
		mods = append(mods, m)
	}
	if v, ok := n.Attr("enabled"); ok {
		switch val := v.(type) {
		case bool:
			if !val {
				mods = append(mods, ".disabled(true)")
			}
		case string:
			if expr, wrapped := core.ParseBindingExpr(val); wrapped && expr != "" {
				mods = append(mods, ".disabled(!"+ctx.Expr(expr)+")")
			} else {
				ctx.Warn("enabled", "enabled must be a boolean or binding")
			}
		}
	}
	if core.ParseKind(n.Kind) != core.KindButton {
		if call, ok := ctx.Action(n, "onClick"); ok {
			mods = append(mods, ".onTapGesture { "+call+" }")
		} else if call, ok := ctx.Action(n, "onTap"); ok {
			mods = append(mods, ".onTapGesture { "+call+" }")
		}
	}
	for _, attr := range []string{"onLongPress", "onLongClick"} {
		if call, ok := ctx.Action(n, attr); ok {
			mods = append(mods, ".onLongPressGesture { "+call+" }")
			break
		}
	}
	if id := n.ID(); id != "" {
		mods = append(mods, ".accessibilityIdentifier("+SwiftString(id)+")")
	}
	return mods
}

func frameModifier(ctx *Context, n *core.Node) string {
	var args []string
	for _, dim := range []struct{ attr, fixed, max string }{
		{"width", "width", "maxWidth"},
		{"height", "height", "maxHeight"},
	} {
		v, ok := n.Attr(dim.attr)
		if !ok {
			continue
		}
		if s, isString := v.(string); isString {
			switch {
			case matchParent[s]:
				args = append(args, dim.max+": .infinity")
				continue
			case s == "wrapContent" || s == "wrap_content":
				continue
			}
		}
		f, isNum := core.Float(v)
		switch {
		case isNum && f < 0:
			args = append(args, dim.max+": .infinity")
		case isNum && f == 0:
			// Zero sizes mark weighted children; the parent stack sizes them.
		case isNum:
			args = append(args, dim.fixed+": "+formatFloat(f))
		default:
			ctx.Warn(dim.attr, fmt.Sprintf("unsupported %s %v", dim.attr, v))
		}
	}
	if len(args) == 0 {
		return ""
	}
	// SwiftUI requires fixed and max arguments in separate frame calls.
	var fixed, max []string
	for _, a := range args {
		if strings.HasPrefix(a, "max") {
			max = append(max, a)
		} else {
			fixed = append(fixed, a)
		}
	}
	switch {
	case len(fixed) > 0 && len(max) > 0:
		return ".frame(" + strings.Join(fixed, ", ") + ").frame(" + strings.Join(max, ", ") + ")"
	case len(fixed) > 0:
		return ".frame(" + strings.Join(fixed, ", ") + ")"
	default:
		return ".frame(" + strings.Join(max, ", ") + ")"
	}
}

func paddingModifier(ctx *Context, v any) (string, bool) {
	if s, ok := ctx.Number(v); ok {
		return ".padding(" + s + ")", true
	}
	var top, right, bottom, left any
	switch val := v.(type) {
	case []any:
		if len(val) != 4 {
			return "", false
		}
		top, right, bottom, left = val[0], val[1], val[2], val[3]
	case *core.Object:
		top, _ = val.Get("top")
		bottom, _ = val.Get("bottom")
		left, _ = val.Get("left")
		right, _ = val.Get("right")
	default:
		return "", false
	}
	edge := func(e any) string {
		if e == nil {
			return "0"
		}
		s, ok := ctx.Number(e)
		if !ok {
			return "0"
		}
		return s
	}
	return fmt.Sprintf(".padding(EdgeInsets(top: %s, leading: %s, bottom: %s, trailing: %s))",
		edge(top), edge(left), edge(bottom), edge(right)), true
}

func visibilityModifier(ctx *Context, n *core.Node) (string, bool) {
	if hidden, ok := n.Attr("hidden"); ok {
		switch val := hidden.(type) {
		case bool:
			if val {
				return ".hidden()", true
			}
			return "", false
		case string:
			if expr, wrapped := core.ParseBindingExpr(val); wrapped && expr != "" {
				return ".opacity(" + ctx.Expr(expr) + " ? 0 : 1)", true
			}
		}
		ctx.Warn("hidden", "hidden must be a boolean or binding")
		return "", false
	}
	if vis, ok := n.StringAttr("visibility"); ok {
		switch vis {
		case "gone", "invisible":
			return ".hidden()", true
		case "visible":
			return "", false
		default:
			ctx.Warn("visibility", fmt.Sprintf("unknown visibility %q", vis))
		}
	}
	return "", false
}
