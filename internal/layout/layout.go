// Package layout chooses the composition strategy for container nodes.
//
// Select never fails. Conditions it cannot honor are reported as
// warnings and the container falls back to a layered stack anchored at
// the top leading corner.
package layout

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leaplayout/pkg/core"
)

// Container attributes.
const (
	AttrOrientation  = "orientation"
	AttrWeight       = "weight"
	AttrWidth        = "width"
	AttrHeight       = "height"
	AttrGravity      = "gravity"
	AttrDistribution = "distribution"
	AttrDirection    = "direction"
	AttrSpacing      = "spacing"
)

// Slot is one position in the emitted child sequence.
type Slot struct {
	// Child is the index of the child in declaration order, or -1 for a filler.
	Child  int
	Weight float64 // proportional share, Weighted strategy only
}

// IsFiller reports whether the slot is an inserted filler element.
func (s Slot) IsFiller() bool { return s.Child < 0 }

var filler = Slot{Child: -1}

// Plan is the layout decision for one container.
type Plan struct {
	Strategy core.Strategy
	Axis     core.Axis
	Anchor   core.Anchor
	Spacing  *float64
	Reversed bool
	Slots    []Slot
	Warnings []*core.InvalidAttributeError
}

func (p *Plan) warn(attr, format string, args ...any) {
	p.Warnings = append(p.Warnings, &core.InvalidAttributeError{
		Attribute: attr,
		Msg:       fmt.Sprintf(format, args...),
	})
}

// Select decides how a container lays out its children.
//
// In priority order:
//  1. Relative when two children anchor against each other in opposite
//     directions, or when the container has no axis and any child anchors
//     to a sibling.
//  2. Weighted when the container has an axis and some child has a
//     nonzero weight or a zero size along the axis.
//  3. Sequential along the axis otherwise, with fillers from gravity and
//     distribution.
//  4. Layered in declaration order when there is no axis.
func Select(container *core.Node, children []*core.Node) *Plan {
	p := &Plan{Anchor: core.AnchorTopLeading}

	axis, ok := parseAxis(container)
	if !ok {
		raw, _ := container.Attr(AttrOrientation)
		p.warn(AttrOrientation, "unknown orientation %v; using layered top-leading layout", raw)
		p.Strategy = core.StrategyLayered
		p.Slots = sequence(len(children))
		return p
	}
	p.Axis = axis

	anchor, declared := parseGravity(container, p)
	p.Anchor = anchor

	if s, ok := container.NumberAttr(AttrSpacing); ok {
		p.Spacing = &s
	} else if container.Attrs.Has(AttrSpacing) {
		p.warn(AttrSpacing, "spacing must be a number")
	}

	anchors := collectAnchors(children)
	if conflict := anchors.conflict(); conflict != "" || (axis == core.AxisNone && anchors.any()) {
		p.Strategy = core.StrategyRelative
		p.Axis = core.AxisNone
		if conflict != "" {
			p.warn("child", "conflicting sibling anchors: %s", conflict)
		}
		p.Slots = sequence(len(children))
		return p
	}

	if axis == core.AxisNone {
		p.Strategy = core.StrategyLayered
		if reversedDirection(container, p) {
			p.warn(AttrDirection, "direction applies to axis-based containers only; ignored")
		}
		p.Slots = sequence(len(children))
		return p
	}

	if anchors.any() {
		p.warn("child", "sibling anchors are ignored in %s containers", axis)
	}
	p.Reversed = reversedDirection(container, p)

	order := sequence(len(children))
	if p.Reversed {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	if weights, weighted := childWeights(children, axis, p); weighted {
		p.Strategy = core.StrategyWeighted
		for i := range order {
			order[i].Weight = weights[order[i].Child]
		}
		p.Slots = order
		return p
	}

	p.Strategy = core.StrategySequential
	p.Slots = withFillers(order, axis, declared, container, p)
	return p
}

func sequence(n int) []Slot {
	slots := make([]Slot, n)
	for i := range slots {
		slots[i] = Slot{Child: i}
	}
	return slots
}

func parseAxis(n *core.Node) (core.Axis, bool) {
	raw, ok := n.Attr(AttrOrientation)
	if !ok {
		return core.AxisNone, true
	}
	s, _ := raw.(string)
	switch strings.ToLower(s) {
	case "vertical":
		return core.AxisVertical, true
	case "horizontal":
		return core.AxisHorizontal, true
	default:
		return core.AxisNone, false
	}
}

// childWeights returns each child's proportional weight and whether any
// child is weighted. A zero size along the axis without a weight counts
// as weight 1.
func childWeights(children []*core.Node, axis core.Axis, p *Plan) ([]float64, bool) {
	sizeAttr := AttrHeight
	if axis == core.AxisHorizontal {
		sizeAttr = AttrWidth
	}

	weights := make([]float64, len(children))
	weighted := false
	for i, c := range children {
		if raw, ok := c.Attr(AttrWeight); ok {
			w, isNum := core.Float(raw)
			switch {
			case !isNum:
				p.warn(AttrWeight, "child %d: weight must be a number", i)
			case w < 0:
				p.warn(AttrWeight, "child %d: negative weight %v ignored", i, w)
			case w != 0:
				weights[i] = w
				weighted = true
				continue
			}
		}
		if size, ok := c.NumberAttr(sizeAttr); ok && size == 0 {
			weights[i] = 1
			weighted = true
		}
	}
	return weights, weighted
}

// withFillers inserts filler slots for gravity along the axis and for
// the distribution mode.
func withFillers(order []Slot, axis core.Axis, declared gravityAxes, container *core.Node, p *Plan) []Slot {
	var along string
	var alongDeclared bool
	if axis == core.AxisVertical {
		along, alongDeclared = p.Anchor.Vertical, declared.vertical
	} else {
		along, alongDeclared = p.Anchor.Horizontal, declared.horizontal
	}

	between, ends := false, false
	if raw, ok := container.Attr(AttrDistribution); ok {
		mode, _ := raw.(string)
		switch mode {
		case "equalSpacing", "spaceBetween":
			between = true
		case "equalCentering", "spaceEvenly":
			between, ends = true, true
		case "fill", "":
		default:
			p.warn(AttrDistribution, "unknown distribution %v; ignored", raw)
		}
	}

	leading, trailing := false, false
	if alongDeclared {
		switch along {
		case "top", "leading":
			trailing = true
		case "bottom", "trailing":
			leading = true
		case "center":
			leading, trailing = true, true
		}
	}
	if ends {
		leading, trailing = true, true
	}

	out := make([]Slot, 0, len(order)*2+2)
	if leading {
		out = append(out, filler)
	}
	for i, s := range order {
		if between && i > 0 {
			out = append(out, filler)
		}
		out = append(out, s)
	}
	if trailing {
		out = append(out, filler)
	}
	return out
}

func reversedDirection(n *core.Node, p *Plan) bool {
	raw, ok := n.Attr(AttrDirection)
	if !ok {
		return false
	}
	s, _ := raw.(string)
	switch s {
	case "bottomToTop", "rightToLeft":
		return true
	case "topToBottom", "leftToRight":
		return false
	default:
		p.warn(AttrDirection, "unknown direction %v; ignored", raw)
		return false
	}
}
