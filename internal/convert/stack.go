package convert

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaplayout/internal/layout"
	"github.com/leapstack-labs/leaplayout/pkg/core"
)

func stackHead(name string, args ...string) string {
	var parts []string
	for _, a := range args {
		if a != "" {
			parts = append(parts, a)
		}
	}
	if len(parts) == 0 {
		return name
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func spacingArg(plan *layout.Plan) string {
	if plan.Spacing == nil {
		return ""
	}
	return "spacing: " + formatFloat(*plan.Spacing)
}

// crossAlignment is the stack alignment across the primary axis.
func crossAlignment(plan *layout.Plan) string {
	if plan.Axis == core.AxisVertical {
		if plan.Anchor.Horizontal == "center" {
			return ""
		}
		return "alignment: ." + plan.Anchor.Horizontal
	}
	if plan.Anchor.Vertical == "center" {
		return ""
	}
	return "alignment: ." + plan.Anchor.Vertical
}

func stackName(axis core.Axis) string {
	if axis == core.AxisHorizontal {
		return "HStack"
	}
	return "VStack"
}

func sequentialStack(plan *layout.Plan, children []*Fragment) *Fragment {
	f := &Fragment{
		Head:  stackHead(stackName(plan.Axis), crossAlignment(plan), spacingArg(plan)),
		Block: true,
	}
	for _, s := range plan.Slots {
		if s.IsFiller() {
			f.Children = append(f.Children, &Fragment{Head: "Spacer(minLength: 0)"})
			continue
		}
		f.Children = append(f.Children, children[s.Child])
	}
	return f
}

// weightedStack sizes weighted children as fractions of the container
// along the axis. Unweighted children keep their intrinsic size.
func weightedStack(plan *layout.Plan, children []*Fragment) *Fragment {
	total := 0.0
	for _, s := range plan.Slots {
		total += s.Weight
	}
	dim, size := "height", "proxy.size.height"
	if plan.Axis == core.AxisHorizontal {
		dim, size = "width", "proxy.size.width"
	}

	stack := &Fragment{
		Head:  stackHead(stackName(plan.Axis), crossAlignment(plan), "spacing: 0"),
		Block: true,
	}
	for _, s := range plan.Slots {
		child := children[s.Child]
		if s.Weight > 0 && total > 0 {
			child.Modify(fmt.Sprintf(".frame(%s: %s * %s)", dim, size, formatFloat(s.Weight/total)))
		}
		stack.Children = append(stack.Children, child)
	}
	return &Fragment{
		Head:     "GeometryReader",
		Params:   "proxy in",
		Children: []*Fragment{stack},
	}
}

// relativeStack emits a RelativeStack, a runtime container that positions
// children by the anchors attached to them.
func relativeStack(plan *layout.Plan, items []*core.Node, children []*Fragment) *Fragment {
	f := &Fragment{Head: "RelativeStack", Block: true}
	if len(plan.Warnings) > 0 {
		f.Comment = plan.Warnings[0].Msg
	}
	for i, child := range children {
		n := items[i]
		if id := n.ID(); id != "" {
			child.Modify(fmt.Sprintf(".relativeID(%s)", SwiftString(id)))
		}
		for _, a := range relativeAnchors {
			if target, ok := n.StringAttr(a.attr); ok && target != "" {
				child.Modify(fmt.Sprintf(".relativeAnchor(.%s, of: %s)", a.edge, SwiftString(target)))
			}
		}
		f.Children = append(f.Children, child)
	}
	return f
}

var relativeAnchors = []struct{ attr, edge string }{
	{"above", "above"},
	{"alignTopOfView", "above"},
	{"below", "below"},
	{"alignBottomOfView", "below"},
	{"toLeftOf", "leading"},
	{"alignLeftOfView", "leading"},
	{"toRightOf", "trailing"},
	{"alignRightOfView", "trailing"},
	{"alignTop", "alignTop"},
	{"alignBottom", "alignBottom"},
	{"alignLeft", "alignLeading"},
	{"alignRight", "alignTrailing"},
	{"alignCenterHorizontal", "alignCenterX"},
	{"alignCenterVertical", "alignCenterY"},
}

func layeredStack(plan *layout.Plan, children []*Fragment) *Fragment {
	return &Fragment{
		Head:     stackHead("ZStack", "alignment: ."+plan.Anchor.Name()),
		Block:    true,
		Children: children,
	}
}
