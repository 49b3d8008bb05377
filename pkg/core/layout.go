package core

// Strategy is the composition strategy chosen for a container.
type Strategy int

// Layout strategies.
const (
	StrategyLayered Strategy = iota
	StrategySequential
	StrategyWeighted
	StrategyRelative
)

func (s Strategy) String() string {
	switch s {
	case StrategySequential:
		return "sequential"
	case StrategyWeighted:
		return "weighted"
	case StrategyRelative:
		return "relative"
	default:
		return "layered"
	}
}

// Axis is a container's primary axis.
type Axis int

// Axes.
const (
	AxisNone Axis = iota
	AxisHorizontal
	AxisVertical
)

func (a Axis) String() string {
	switch a {
	case AxisHorizontal:
		return "horizontal"
	case AxisVertical:
		return "vertical"
	default:
		return "none"
	}
}

// Anchor is a two-dimensional alignment inside a container.
type Anchor struct {
	Vertical   string // top, center, bottom
	Horizontal string // leading, center, trailing
}

// Common anchors.
var (
	AnchorTopLeading = Anchor{Vertical: "top", Horizontal: "leading"}
	AnchorCenter     = Anchor{Vertical: "center", Horizontal: "center"}
)

// Name returns the anchor in lowerCamel form, e.g. "topLeading" or "center".
func (a Anchor) Name() string {
	v, h := a.Vertical, a.Horizontal
	switch {
	case v == "center" && h == "center":
		return "center"
	case v == "center":
		return h
	case h == "center":
		return v
	default:
		return v + string(h[0]-'a'+'A') + h[1:]
	}
}
